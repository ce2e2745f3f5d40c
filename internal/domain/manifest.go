// Package domain contains the pure value logic of the gallery: the manifest
// item model, lenient normalization of client-submitted item lists, order
// renumbering, and object key derivation. No I/O, logging, or storage
// concerns belong here.
package domain

import "encoding/json"

// UnorderedRank is the sort rank assigned to stored objects that have no
// manifest entry. It places them after every explicitly ordered item.
const UnorderedRank = 999999

// Item is one manifest entry: display metadata for a single stored object.
// The key is the object's storage path and is stable once assigned; title
// and order live only here, never on the object itself.
type Item struct {
	Key   string `json:"key"`
	URL   string `json:"url,omitempty"`
	Title string `json:"title"`
	Order int    `json:"order"`
}

// Manifest is the single JSON document describing the ordered gallery.
// Slice position in the stored document carries no meaning; display order is
// governed purely by Order.
type Manifest struct {
	Items []Item `json:"items"`
}

// RawItem mirrors Item with untyped fields so that arbitrary client JSON can
// be decoded without failing the whole request on one malformed field.
// Normalize coerces it into a well-formed Item or drops it.
type RawItem struct {
	Key   any `json:"key"`
	URL   any `json:"url"`
	Title any `json:"title"`
	Order any `json:"order"`
}

// Normalize converts an arbitrary client-submitted item list into a
// well-formed one:
//   - entries without a non-empty string key are dropped
//   - the first occurrence wins when a key repeats
//   - non-string urls and titles become ""
//   - a missing or non-numeric order becomes the entry's positional index
//
// It does not renumber orders to be contiguous; that is the business of the
// delete and reorder paths. Normalize is idempotent: feeding its output back
// through Raw yields the same result.
func Normalize(in []RawItem) []Item {
	out := make([]Item, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for idx, r := range in {
		key, ok := r.Key.(string)
		if !ok || key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		it := Item{Key: key, Order: idx}
		if s, ok := r.URL.(string); ok {
			it.URL = s
		}
		if s, ok := r.Title.(string); ok {
			it.Title = s
		}
		if n, ok := r.Order.(float64); ok {
			it.Order = int(n)
		} else if n, ok := r.Order.(int); ok {
			it.Order = n
		}
		out = append(out, it)
	}
	return out
}

// Raw converts well-formed items back into the untyped form, mainly so tests
// can assert Normalize idempotence and callers can reuse the replace path.
func Raw(items []Item) []RawItem {
	out := make([]RawItem, len(items))
	for i, it := range items {
		out[i] = RawItem{Key: it.Key, URL: it.URL, Title: it.Title, Order: float64(it.Order)}
	}
	return out
}

// Renumber rewrites orders to the contiguous sequence 0..n-1, preserving
// slice order. Callers sort first if slice order does not already reflect
// the intended display order.
func Renumber(items []Item) []Item {
	for i := range items {
		items[i].Order = i
	}
	return items
}

// NextOrder returns the order a newly appended item should receive: one past
// the maximum existing order, starting at 0 for an empty manifest.
func NextOrder(items []Item) int {
	max := -1
	for _, it := range items {
		if it.Order > max {
			max = it.Order
		}
	}
	return max + 1
}

// Move directions.
const (
	MoveUp   = "up"
	MoveDown = "down"
)

// Move swaps the item with the given key with its immediate neighbor in the
// stated direction, then renumbers the whole list 0..n-1. Moving the first
// item up or the last item down is a no-op (still renumbered). The slice is
// assumed to be in display order. Returns ErrInvalidKey if the key is absent
// and ErrInvalidDirection for an unknown direction.
func Move(items []Item, key, direction string) ([]Item, error) {
	if direction != MoveUp && direction != MoveDown {
		return nil, ErrInvalidDirection
	}
	at := -1
	for i, it := range items {
		if it.Key == key {
			at = i
			break
		}
	}
	if at < 0 {
		return nil, ErrInvalidKey
	}
	to := at - 1
	if direction == MoveDown {
		to = at + 1
	}
	if to >= 0 && to < len(items) {
		items[at], items[to] = items[to], items[at]
	}
	return Renumber(items), nil
}

// DecodeManifest parses a stored manifest document. Unknown fields are
// ignored; a nil items array decodes to an empty slice.
func DecodeManifest(b []byte) (Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return Manifest{}, err
	}
	if m.Items == nil {
		m.Items = []Item{}
	}
	return m, nil
}

// EncodeManifest serializes the manifest with two-space indentation, the
// exact layout the document has always been stored with.
func EncodeManifest(m Manifest) ([]byte, error) {
	if m.Items == nil {
		m.Items = []Item{}
	}
	return json.MarshalIndent(m, "", "  ")
}
