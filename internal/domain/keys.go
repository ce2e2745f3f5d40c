package domain

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// maxSlugLen bounds the title-derived portion of a generated key.
const maxSlugLen = 50

// allowedExts is the case-insensitive extension allow-list applied to the
// public listing. Objects outside it are never displayed, even when a
// manifest entry references them.
var allowedExts = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
}

// allowedContentTypes gates uploads.
var allowedContentTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
}

// AllowedExt reports whether the object name carries a displayable image
// extension.
func AllowedExt(name string) bool {
	_, ok := allowedExts[strings.ToLower(path.Ext(name))]
	return ok
}

// AllowedContentType reports whether an upload content type is accepted.
// Parameters (e.g. "; charset=") are not expected and not stripped.
func AllowedContentType(ct string) bool {
	_, ok := allowedContentTypes[strings.ToLower(ct)]
	return ok
}

// Slugify lowercases the title and collapses every run of non-alphanumeric
// characters into a single hyphen, trimmed to maxSlugLen. An empty result
// means the title contributed nothing usable.
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	s := strings.Trim(b.String(), "-")
	if len(s) > maxSlugLen {
		s = strings.Trim(s[:maxSlugLen], "-")
	}
	return s
}

// NewKey derives a unique object key under prefix from the optional title
// and the original filename's extension. The uniqueness component is a
// timestamp plus a short random fragment, so equal titles never collide.
func NewKey(prefix, title, filename string, now time.Time) string {
	base := Slugify(title)
	if base == "" {
		base = fmt.Sprintf("image-%d", now.UnixMilli())
	}
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".jpg"
	}
	frag := uuid.New().String()[:8]
	return fmt.Sprintf("%s%s-%s%s", prefix, base, frag, ext)
}

// DeriveTitle produces a fallback display title for an object with no
// manifest entry: the basename with its extension stripped, or "Untitled".
func DeriveTitle(key string) string {
	base := path.Base(key)
	base = strings.TrimSuffix(base, path.Ext(base))
	if base == "" || base == "." || base == "/" {
		return "Untitled"
	}
	return base
}
