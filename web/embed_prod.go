//go:build prod

package web

import (
	"io/fs"
	"log/slog"
)

// Assets serves from the embedded filesystem so the binary ships
// self-contained.
var Assets fs.FS

func init() {
	slog.Info("serving web assets from embedded filesystem", "build_tag", "prod")
	Assets = FS
}
