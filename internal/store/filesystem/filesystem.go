// Package filesystem provides an ObjectStore implementation backed by the
// local filesystem, the second historical storage variant. Keys are
// slash-separated paths under a fixed root; the HTTP layer serves the root
// at /media/ so PublicURL stays resolvable.
package filesystem

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/mstreet/easel/internal/app"
	"github.com/mstreet/easel/internal/domain"
)

// Ensure Store implements app.ObjectStore
var _ app.ObjectStore = (*Store)(nil)

// URLPrefix is the path under which the HTTP layer serves stored objects.
const URLPrefix = "/media/"

// Store implements app.ObjectStore on the local filesystem.
type Store struct {
	root string
}

// New returns a filesystem-backed object store rooted at dir. The directory
// must already exist.
func New(root string) (*Store, error) {
	fi, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return nil, errors.New("object root is not a directory")
	}
	return &Store{root: root}, nil
}

// path maps an object key onto the filesystem, rejecting traversal.
func (s *Store) path(key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(key)), nil
}

// List walks the root and returns every object whose key starts with prefix.
func (s *Store) List(_ context.Context, prefix string) ([]app.ObjectInfo, error) {
	var out []app.ObjectInfo
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, rErr := filepath.Rel(s.root, p)
		if rErr != nil {
			return rErr
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		info, iErr := d.Info()
		if iErr != nil {
			return iErr
		}
		out = append(out, app.ObjectInfo{
			Key:        key,
			URL:        s.PublicURL(key),
			Size:       info.Size(),
			UploadedAt: info.ModTime().UTC(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get opens the object's file for reading.
func (s *Store) Get(_ context.Context, key string) (io.ReadCloser, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	return os.Open(p) // #nosec G304 path constructed from validated key under fixed root
}

// Put stores exactly size bytes from r under key, overwriting any existing
// object. The write goes to a temp file first and is renamed into place so
// readers never observe a partial object.
func (s *Store) Put(_ context.Context, key, _ string, r io.Reader, size int64) (app.ObjectInfo, error) {
	p, err := s.path(key)
	if err != nil {
		return app.ObjectInfo{}, err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return app.ObjectInfo{}, err
	}
	tmp := p + ".tmp-" + time.Now().UTC().Format("20060102150405.000000000")
	// #nosec G304: path derived from a validated key under a fixed root.
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return app.ObjectInfo{}, err
	}
	if _, err = io.CopyN(f, r, size); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return app.ObjectInfo{}, err
	}
	if err = f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return app.ObjectInfo{}, err
	}
	if err = f.Close(); err != nil {
		_ = os.Remove(tmp)
		return app.ObjectInfo{}, err
	}
	if err = os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return app.ObjectInfo{}, err
	}
	return app.ObjectInfo{Key: key, URL: s.PublicURL(key), Size: size, UploadedAt: time.Now().UTC()}, nil
}

// Delete removes the object's file. Deleting an absent key is not an error.
func (s *Store) Delete(_ context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// PublicURL maps a key to the path the HTTP layer serves it from.
func (s *Store) PublicURL(key string) string { return URLPrefix + key }

// validateKey enforces clean, rooted, relative slash paths. This both
// prevents traversal out of the root and keeps keys portable across
// backends.
func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return domain.ErrInvalidKey
	}
	if path.Clean(key) != key || key == "." || strings.Contains(key, "..") {
		return domain.ErrInvalidKey
	}
	return nil
}
