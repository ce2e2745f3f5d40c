// Package store provides the manifest adapter: the single JSON document
// holding display metadata, persisted as one object in whatever backend the
// ObjectStore port wraps. External packages construct it via NewManifest and
// interact only through the app.ManifestStore interface.
package store

import (
	"bytes"
	"context"
	"io"
	"log/slog"

	"github.com/mstreet/easel/internal/app"
	"github.com/mstreet/easel/internal/domain"
)

// ManifestKey is the fixed object key of the manifest document.
const ManifestKey = "manifest.json"

var _ app.ManifestStore = (*Manifest)(nil)

// Manifest implements app.ManifestStore over an ObjectStore. The document is
// read before every mutation and rewritten wholesale after it; there is no
// compare-and-swap, so concurrent saves race and the later write wins in
// full. Accepted for single-admin usage.
type Manifest struct {
	objects app.ObjectStore
	log     *slog.Logger
}

// NewManifest returns a manifest adapter over the given object store.
func NewManifest(objects app.ObjectStore, log *slog.Logger) *Manifest {
	if log == nil {
		log = slog.Default()
	}
	return &Manifest{objects: objects, log: log}
}

// Load fetches and parses the manifest document. Any failure (absent
// document, transport error, parse error) yields an empty manifest:
// absence is the normal initial state, not a fault. Failures are logged at
// debug level only, since a missing manifest is routine.
func (m *Manifest) Load(ctx context.Context) domain.Manifest {
	rc, err := m.objects.Get(ctx, ManifestKey)
	if err != nil {
		m.log.Debug("manifest load", "result", "empty", "reason", "get", "err", err)
		return domain.Manifest{Items: []domain.Item{}}
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		m.log.Debug("manifest load", "result", "empty", "reason", "read", "err", err)
		return domain.Manifest{Items: []domain.Item{}}
	}
	doc, err := domain.DecodeManifest(b)
	if err != nil {
		m.log.Debug("manifest load", "result", "empty", "reason", "parse", "err", err)
		return domain.Manifest{Items: []domain.Item{}}
	}
	return doc
}

// Save serializes the full manifest and overwrites the backing document.
func (m *Manifest) Save(ctx context.Context, doc domain.Manifest) error {
	b, err := domain.EncodeManifest(doc)
	if err != nil {
		return err
	}
	_, err = m.objects.Put(ctx, ManifestKey, "application/json", bytes.NewReader(b), int64(len(b)))
	return err
}
