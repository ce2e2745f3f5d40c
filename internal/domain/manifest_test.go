package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCoercion(t *testing.T) {
	in := []RawItem{
		{Key: "a", URL: "https://cdn/a.jpg", Title: "A", Order: float64(3)},
		{Key: 42, Title: "dropped, key not a string"},
		{Key: "", Title: "dropped, empty key"},
		{Key: "b", URL: 7, Title: nil}, // url/title wrong type, order missing
		{Key: "a", Title: "dup, first wins"},
	}
	got := Normalize(in)
	require.Len(t, got, 2)
	assert.Equal(t, Item{Key: "a", URL: "https://cdn/a.jpg", Title: "A", Order: 3}, got[0])
	// positional index of the raw entry, not of the output slice
	assert.Equal(t, Item{Key: "b", URL: "", Title: "", Order: 3}, got[1])
}

func TestNormalizeIdempotent(t *testing.T) {
	in := []RawItem{
		{Key: "x", Order: "not a number"},
		{Key: "y", Title: 12, Order: float64(7.9)},
		{Key: nil},
		{Key: "x", Order: float64(1)},
	}
	once := Normalize(in)
	twice := Normalize(Raw(once))
	assert.Equal(t, once, twice)
}

func TestNormalizeFromJSON(t *testing.T) {
	var body struct {
		Items []RawItem `json:"items"`
	}
	payload := `{"items":[{"key":"p/a.jpg","title":"A","order":0},{"key":null},{"title":"no key"},{"key":"p/b.jpg","order":"x"}]}`
	require.NoError(t, json.Unmarshal([]byte(payload), &body))
	got := Normalize(body.Items)
	require.Len(t, got, 2)
	assert.Equal(t, "p/a.jpg", got[0].Key)
	assert.Equal(t, 0, got[0].Order)
	assert.Equal(t, "p/b.jpg", got[1].Key)
	assert.Equal(t, 3, got[1].Order) // positional fallback
}

func TestRenumber(t *testing.T) {
	items := []Item{{Key: "a", Order: 5}, {Key: "b", Order: 2}, {Key: "c", Order: 9}}
	got := Renumber(items)
	for i, it := range got {
		if it.Order != i {
			t.Fatalf("item %d has order %d", i, it.Order)
		}
	}
}

func TestNextOrder(t *testing.T) {
	tests := []struct {
		name  string
		items []Item
		want  int
	}{
		{"empty", nil, 0},
		{"single", []Item{{Key: "a", Order: 0}}, 1},
		{"gapped", []Item{{Key: "a", Order: 0}, {Key: "b", Order: 7}}, 8},
		{"negative", []Item{{Key: "a", Order: -3}}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NextOrder(tc.items))
		})
	}
}

func TestMove(t *testing.T) {
	mk := func() []Item {
		return []Item{{Key: "A", Order: 0}, {Key: "B", Order: 1}, {Key: "C", Order: 2}}
	}

	// moving index 1 up yields [B,A,C] with orders 0,1,2
	got, err := Move(mk(), "B", MoveUp)
	require.NoError(t, err)
	assert.Equal(t, []Item{{Key: "B", Order: 0}, {Key: "A", Order: 1}, {Key: "C", Order: 2}}, got)

	// clamped at the top: first item up is a no-op
	got, err = Move(mk(), "A", MoveUp)
	require.NoError(t, err)
	assert.Equal(t, []Item{{Key: "A", Order: 0}, {Key: "B", Order: 1}, {Key: "C", Order: 2}}, got)

	// clamped at the bottom
	got, err = Move(mk(), "C", MoveDown)
	require.NoError(t, err)
	assert.Equal(t, "C", got[2].Key)

	_, err = Move(mk(), "missing", MoveUp)
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = Move(mk(), "A", "sideways")
	assert.ErrorIs(t, err, ErrInvalidDirection)
}

func TestManifestRoundTrip(t *testing.T) {
	m := Manifest{Items: []Item{{Key: "portfolio/a.jpg", URL: "https://cdn/a.jpg", Title: "A", Order: 0}}}
	b, err := EncodeManifest(m)
	require.NoError(t, err)
	got, err := DecodeManifest(b)
	require.NoError(t, err)
	assert.Equal(t, m, got)

	// nil items encodes as an empty array, never null
	b, err = EncodeManifest(Manifest{})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"items": []`)

	// empty document decodes to an empty, non-nil slice
	got, err = DecodeManifest([]byte(`{}`))
	require.NoError(t, err)
	assert.NotNil(t, got.Items)
	assert.Empty(t, got.Items)
}
