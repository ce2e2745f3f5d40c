// Package app defines the application layer "ports" (interfaces) and data
// contracts the gallery use-cases depend upon. It follows a hexagonal
// (ports & adapters) design: this package declares what the core needs,
// while adapter packages (S3 or filesystem object storage, the manifest
// adapter, the HTTP layer, the janitor) provide concrete implementations.
// No I/O, logging, SQL, or network concerns belong here.
package app

import (
	"context"
	"io"
	"time"

	"github.com/mstreet/easel/internal/domain"
)

// ObjectInfo describes one stored object as reported by the backend. The
// backend owns existence and bytes; all display metadata lives in the
// manifest.
type ObjectInfo struct {
	Key        string
	URL        string
	Size       int64
	UploadedAt time.Time
}

// Clock abstracts time to enable deterministic testing of key generation
// and upload timestamps.
type Clock interface {
	// Now returns the current wall-clock time.
	Now() time.Time
}

// ObjectStore is the storage port over the blob backend. Implementations
// wrap a hosted object store (S3-compatible) or the local filesystem; the
// rest of the application never sees which.
type ObjectStore interface {
	// List returns every object whose key starts with prefix.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// Get opens the object's content for reading.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Put stores exactly size bytes from r under key, overwriting any
	// existing object, and returns the resulting object info.
	Put(ctx context.Context, key, contentType string, r io.Reader, size int64) (ObjectInfo, error)

	// Delete removes the object. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// PublicURL returns the publicly resolvable address for a key.
	PublicURL(key string) string
}

// ManifestStore is the port for the single manifest document. Load must
// treat absence or unreadability as the normal empty initial state, never
// as a fault; Save overwrites the document wholesale (last writer wins).
type ManifestStore interface {
	Load(ctx context.Context) domain.Manifest
	Save(ctx context.Context, m domain.Manifest) error
}
