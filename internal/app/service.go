package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/mstreet/easel/internal/domain"
)

// ErrNotFound indicates the referenced manifest entry does not exist.
var ErrNotFound = errors.New("manifest entry not found")

// ErrSizeExceeded indicates the upload is empty or larger than the
// configured maximum.
var ErrSizeExceeded = errors.New("size exceeded")

// ErrManifestWrite marks a manifest save failure that happened after the
// primary storage mutation already succeeded. Callers must surface it
// distinctly so the operator knows the object itself was stored or deleted
// and only the bookkeeping needs a retry.
var ErrManifestWrite = errors.New("manifest update failed")

// DisplayImage is one entry of the public gallery listing: a live stored
// object enriched with manifest metadata, or with derived fallbacks when no
// entry exists for it.
type DisplayImage struct {
	Key        string `json:"pathname"`
	URL        string `json:"url"`
	Title      string `json:"title"`
	Order      int    `json:"order"`
	Size       int64  `json:"size"`
	UploadedAt string `json:"uploadedAt,omitempty"`
}

// ReconcileReport summarizes one consistency pass between the object
// listing and the manifest.
type ReconcileReport struct {
	Objects  int // live objects under the prefix
	Entries  int // manifest entries
	Orphans  int // objects with no manifest entry
	Dangling int // manifest entries whose object is gone
	Pruned   int // dangling entries removed (only when pruning is enabled)
}

// Service orchestrates the gallery use-cases over the injected ports.
// Each request performs its own read-modify-write of the manifest; there is
// no in-process manifest cache and no cross-request locking. Concurrent
// saves race and the later write wins in full (single-admin usage).
type Service struct {
	Objects  ObjectStore
	Manifest ManifestStore
	Clock    Clock
	Prefix   string // object key namespace, e.g. "portfolio/"
	MaxBytes int64  // upload size ceiling
}

// ListPublic merges the live object listing with the manifest and returns
// the display list sorted ascending by order. Objects without a manifest
// entry get a derived title and sort after every ordered item; objects
// outside the image extension allow-list are excluded entirely. Read-only
// and safe under arbitrary concurrency.
func (s *Service) ListPublic(ctx context.Context) ([]DisplayImage, error) {
	objs, err := s.Objects.List(ctx, s.Prefix)
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}
	m := s.Manifest.Load(ctx)
	byKey := make(map[string]domain.Item, len(m.Items))
	for _, it := range m.Items {
		byKey[it.Key] = it
	}
	images := make([]DisplayImage, 0, len(objs))
	for _, o := range objs {
		if !domain.AllowedExt(o.Key) {
			continue
		}
		img := DisplayImage{
			Key:   o.Key,
			URL:   o.URL,
			Title: domain.DeriveTitle(o.Key),
			Order: domain.UnorderedRank,
			Size:  o.Size,
		}
		if !o.UploadedAt.IsZero() {
			img.UploadedAt = o.UploadedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
		}
		if it, ok := byKey[o.Key]; ok {
			if it.Title != "" {
				img.Title = it.Title
			}
			img.Order = it.Order
		}
		images = append(images, img)
	}
	// stable: ties keep the arrival order of the storage listing
	sort.SliceStable(images, func(i, j int) bool { return images[i].Order < images[j].Order })
	return images, nil
}

// Items returns the current manifest items. Absence of the document reads
// as an empty list.
func (s *Service) Items(ctx context.Context) []domain.Item {
	return s.Manifest.Load(ctx).Items
}

// Upload validates and stores a new image, then appends a manifest entry
// with the next monotonic order (new items always sort last until
// explicitly reordered). A manifest save failure after a successful put is
// reported as ErrManifestWrite alongside the stored image, so the caller
// can retry the bookkeeping without re-uploading.
func (s *Service) Upload(ctx context.Context, r io.Reader, size int64, contentType, filename, title string) (DisplayImage, error) {
	if !domain.AllowedContentType(contentType) {
		return DisplayImage{}, domain.ErrInvalidType
	}
	if size <= 0 || (s.MaxBytes > 0 && size > s.MaxBytes) {
		return DisplayImage{}, ErrSizeExceeded
	}
	key := domain.NewKey(s.Prefix, title, filename, s.Clock.Now())
	obj, err := s.Objects.Put(ctx, key, contentType, r, size)
	if err != nil {
		return DisplayImage{}, fmt.Errorf("put object: %w", err)
	}
	if title == "" {
		title = "Untitled"
	}
	m := s.Manifest.Load(ctx)
	item := domain.Item{
		Key:   obj.Key,
		URL:   obj.URL,
		Title: title,
		Order: domain.NextOrder(m.Items),
	}
	m.Items = append(m.Items, item)
	img := DisplayImage{Key: item.Key, URL: item.URL, Title: item.Title, Order: item.Order, Size: obj.Size}
	if err := s.Manifest.Save(ctx, m); err != nil {
		return img, fmt.Errorf("%w: %w", ErrManifestWrite, err)
	}
	return img, nil
}

// Delete removes the object and its manifest entry, then renumbers the
// remaining items to a contiguous 0-based sequence preserving their
// relative order. A key without a manifest entry is not an error; the
// storage deletion still proceeds.
func (s *Service) Delete(ctx context.Context, key string) error {
	if key == "" {
		return domain.ErrInvalidKey
	}
	if err := s.Objects.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	m := s.Manifest.Load(ctx)
	kept := m.Items[:0]
	for _, it := range m.Items {
		if it.Key != key {
			kept = append(kept, it)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Order < kept[j].Order })
	m.Items = domain.Renumber(kept)
	if err := s.Manifest.Save(ctx, m); err != nil {
		return fmt.Errorf("%w: %w", ErrManifestWrite, err)
	}
	return nil
}

// Rename updates only the title of one entry; order is untouched.
func (s *Service) Rename(ctx context.Context, key, title string) error {
	if key == "" {
		return domain.ErrInvalidKey
	}
	m := s.Manifest.Load(ctx)
	found := false
	for i := range m.Items {
		if m.Items[i].Key == key {
			m.Items[i].Title = title
			found = true
			break
		}
	}
	if !found {
		return ErrNotFound
	}
	return s.Manifest.Save(ctx, m)
}

// Reorder moves one entry by one position (clamped at both ends) and saves
// the fully renumbered list as a wholesale replacement.
func (s *Service) Reorder(ctx context.Context, key, direction string) error {
	m := s.Manifest.Load(ctx)
	sort.SliceStable(m.Items, func(i, j int) bool { return m.Items[i].Order < m.Items[j].Order })
	items, err := domain.Move(m.Items, key, direction)
	if err != nil {
		return err
	}
	return s.Manifest.Save(ctx, domain.Manifest{Items: items})
}

// Replace normalizes an arbitrary client-submitted item list and persists
// it as the new manifest in its entirety. No diffing is performed: entries
// the client omitted are dropped.
func (s *Service) Replace(ctx context.Context, raw []domain.RawItem) ([]domain.Item, error) {
	items := domain.Normalize(raw)
	if err := s.Manifest.Save(ctx, domain.Manifest{Items: items}); err != nil {
		return nil, err
	}
	return items, nil
}

// Reconcile compares the live listing against the manifest. Orphan objects
// (stored but unmanifested) are only counted; the read path already shows
// them with derived titles. Dangling entries (manifested but gone from
// storage) are counted and, when prune is set, removed with the usual
// renumbering.
func (s *Service) Reconcile(ctx context.Context, prune bool) (ReconcileReport, error) {
	objs, err := s.Objects.List(ctx, s.Prefix)
	if err != nil {
		return ReconcileReport{}, fmt.Errorf("list objects: %w", err)
	}
	live := make(map[string]struct{}, len(objs))
	for _, o := range objs {
		live[o.Key] = struct{}{}
	}
	m := s.Manifest.Load(ctx)
	rep := ReconcileReport{Objects: len(objs), Entries: len(m.Items)}
	manifested := make(map[string]struct{}, len(m.Items))
	kept := m.Items[:0]
	for _, it := range m.Items {
		manifested[it.Key] = struct{}{}
		if _, ok := live[it.Key]; !ok {
			rep.Dangling++
			if prune {
				continue
			}
		}
		kept = append(kept, it)
	}
	for _, o := range objs {
		if !domain.AllowedExt(o.Key) {
			continue
		}
		if _, ok := manifested[o.Key]; !ok {
			rep.Orphans++
		}
	}
	if prune && rep.Dangling > 0 {
		sort.SliceStable(kept, func(i, j int) bool { return kept[i].Order < kept[j].Order })
		if err := s.Manifest.Save(ctx, domain.Manifest{Items: domain.Renumber(kept)}); err != nil {
			return rep, fmt.Errorf("%w: %w", ErrManifestWrite, err)
		}
		rep.Pruned = rep.Dangling
	}
	return rep, nil
}
