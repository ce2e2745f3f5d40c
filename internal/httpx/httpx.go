// Package httpx contains the HTTP delivery layer (net/http handlers) for
// the Easel service. It maps HTTP requests to the application service while
// enforcing authentication, validation, size limits, security headers, and
// error translation. Handlers are split across files (auth.go, gallery.go,
// manifest.go, admin.go, health.go, errors.go).
package httpx

import (
	"context"
	"io"
	"net/http"

	"github.com/mstreet/easel/internal/app"
	"github.com/mstreet/easel/internal/domain"
	"github.com/mstreet/easel/internal/store/filesystem"
)

// ServicePort abstracts the subset of app.Service used by the HTTP layer.
// It is satisfied by *app.Service in production and mocked in tests.
type ServicePort interface {
	ListPublic(ctx context.Context) ([]app.DisplayImage, error)
	Items(ctx context.Context) []domain.Item
	Upload(ctx context.Context, r io.Reader, size int64, contentType, filename, title string) (app.DisplayImage, error)
	Delete(ctx context.Context, key string) error
	Rename(ctx context.Context, key, title string) error
	Reorder(ctx context.Context, key, direction string) error
	Replace(ctx context.Context, raw []domain.RawItem) ([]domain.Item, error)
}

// SessionPort abstracts the session token codec.
type SessionPort interface {
	Create() string
	Verify(token string) bool
}

// Recorder abstracts the metrics sink; nil-safe via the noop default.
type Recorder interface {
	Inc(name string, delta int64)
	Observe(name string, value int64)
}

// Metric names recorded by this layer.
const (
	MetricGalleryLists  = "gallery_lists_total"
	MetricUploads       = "images_uploaded_total"
	MetricDeletes       = "images_deleted_total"
	MetricManifestSaves = "manifest_saves_total"
	MetricUploadBytes   = "upload_bytes"
)

// Handler wires HTTP endpoints to the application service.
// It is safe for concurrent use. Zero-value is not valid; construct via New.
type Handler struct {
	Service       ServicePort
	Sessions      SessionPort
	AdminPassword string
	CookieSecure  bool
	MaxBody       int64                       // mirror service MaxBytes (defense-in-depth)
	Readiness     func(context.Context) error // optional readiness probe
	Metrics       Recorder                    // optional; nil means no recording
	IndexTmpl     IndexRenderer               // optional renderer for the public grid page
	AdminTmpl     IndexRenderer               // optional renderer for the admin console page
	Assets        http.FileSystem             // static assets filesystem (optional)
	MediaDir      string                      // filesystem backend root, served at /media/ (optional)
	MetricsProbe  http.HandlerFunc            // optional /metricz handler
}

// New returns a configured Handler.
func New(svc ServicePort, sessions SessionPort, adminPassword string, maxBody int64) *Handler {
	return &Handler{Service: svc, Sessions: sessions, AdminPassword: adminPassword, MaxBody: maxBody}
}

// Router constructs an http.Handler with all routes mounted and the
// correlation-ID and security-header middleware applied.
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", h.handleIndex)
	mux.HandleFunc("/admin", h.handleAdminPage)
	mux.HandleFunc("/gallery", h.handleGallery)
	mux.HandleFunc("/admin/login", h.handleLogin)
	mux.HandleFunc("/admin/manifest", h.handleManifest)
	mux.HandleFunc("/admin/delete", h.handleDelete)
	mux.HandleFunc("/admin/reorder", h.handleReorder)
	mux.HandleFunc("/admin/rename", h.handleRename)
	mux.HandleFunc("/healthz", h.handleHealth)
	mux.HandleFunc("/readyz", h.handleReady)
	if h.MetricsProbe != nil {
		mux.Handle("/metricz", h.MetricsProbe)
	}
	if h.Assets != nil {
		mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(h.Assets)))
	}
	if h.MediaDir != "" {
		mux.Handle(filesystem.URLPrefix, http.StripPrefix(filesystem.URLPrefix, http.FileServer(http.Dir(h.MediaDir))))
	}
	return CorrelationIDMiddleware(h.secureHeaders(mux))
}

// secureHeaders middleware adds standard security & cache control headers.
func (h *Handler) secureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "no-referrer")
		// Cache defaults per route: API handlers stay no-store; the media and
		// static handlers may override with long-lived caching.
		if ct := w.Header().Get("Content-Type"); ct == "" {
			w.Header().Set("Cache-Control", "no-store")
			w.Header().Set("Pragma", "no-cache")
		}
		w.Header().Set("Content-Security-Policy", "default-src 'none'; script-src 'self'; style-src 'self'; img-src 'self' data: https:; connect-src 'self'; font-src 'self'; frame-ancestors 'none'; base-uri 'none'; form-action 'self'")
		next.ServeHTTP(w, r)
	})
}

// inc records a counter if a recorder is attached.
func (h *Handler) inc(name string, delta int64) {
	if h.Metrics != nil {
		h.Metrics.Inc(name, delta)
	}
}

// observe records a summary observation if a recorder is attached.
func (h *Handler) observe(name string, value int64) {
	if h.Metrics != nil {
		h.Metrics.Observe(name, value)
	}
}
