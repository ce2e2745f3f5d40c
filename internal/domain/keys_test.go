package domain

import (
	"strings"
	"testing"
	"time"
)

func TestAllowedExt(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"portfolio/a.jpg", true},
		{"portfolio/a.JPEG", true},
		{"a.png", true},
		{"a.gif", true},
		{"a.WebP", true},
		{"a.svg", false},
		{"a.txt", false},
		{"noext", false},
		{"manifest.json", false},
	}
	for _, tc := range tests {
		if got := AllowedExt(tc.name); got != tc.want {
			t.Errorf("AllowedExt(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestAllowedContentType(t *testing.T) {
	for _, ct := range []string{"image/jpeg", "image/png", "image/gif", "image/webp", "IMAGE/PNG"} {
		if !AllowedContentType(ct) {
			t.Errorf("expected %q allowed", ct)
		}
	}
	for _, ct := range []string{"image/svg+xml", "text/html", "application/octet-stream", ""} {
		if AllowedContentType(ct) {
			t.Errorf("expected %q rejected", ct)
		}
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Sunset Over Water", "sunset-over-water"},
		{"  lots   of--punctuation!! ", "lots-of-punctuation"},
		{"ALLCAPS", "allcaps"},
		{"日本語のみ", ""},
		{"", ""},
	}
	for _, tc := range tests {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
	long := Slugify(strings.Repeat("abc ", 40))
	if len(long) > 50 {
		t.Errorf("slug not trimmed: %d chars", len(long))
	}
}

func TestNewKey(t *testing.T) {
	now := time.Unix(1700000000, 0)
	k := NewKey("portfolio/", "My Piece", "original.PNG", now)
	if !strings.HasPrefix(k, "portfolio/my-piece-") {
		t.Fatalf("unexpected key %q", k)
	}
	if !strings.HasSuffix(k, ".png") {
		t.Fatalf("extension not preserved: %q", k)
	}

	// untitled uploads fall back to a timestamped name
	k = NewKey("portfolio/", "", "x", now)
	if !strings.HasPrefix(k, "portfolio/image-1700000000000-") {
		t.Fatalf("unexpected fallback key %q", k)
	}
	if !strings.HasSuffix(k, ".jpg") {
		t.Fatalf("missing default extension: %q", k)
	}

	// uniqueness component differs between calls with identical inputs
	if NewKey("p/", "t", "a.jpg", now) == NewKey("p/", "t", "a.jpg", now) {
		t.Fatal("expected distinct keys for identical inputs")
	}
}

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"portfolio/sunset-over-water-ab12cd34.jpg", "sunset-over-water-ab12cd34"},
		{"a.png", "a"},
		{"nested/dir/piece.webp", "piece"},
		{"", "Untitled"},
	}
	for _, tc := range tests {
		if got := DeriveTitle(tc.in); got != tc.want {
			t.Errorf("DeriveTitle(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
