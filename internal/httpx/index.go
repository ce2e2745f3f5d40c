package httpx

import (
	"bytes"
	"html/template"
	"io"
	"log/slog"
	"net/http"

	"github.com/mstreet/easel/internal/app"
)

// IndexRenderer abstracts template execution so tests can substitute
// failing or recording implementations.
type IndexRenderer interface {
	Execute(w io.Writer, data any) error
}

// TemplateRenderer adapts html/template to IndexRenderer.
type TemplateRenderer struct{ T *template.Template }

// Execute renders the named template tree with data.
func (tr TemplateRenderer) Execute(w io.Writer, data any) error { return tr.T.Execute(w, data) }

// indexData supplies fields to the public grid template.
type indexData struct {
	Images []app.DisplayImage
}

// handleIndex renders the public gallery grid. Without a configured
// template the route answers 404 for anything but the API paths.
func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if r.URL.Path != "/" {
		h.writeError(ctx, w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodGet {
		h.writeError(ctx, w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.IndexTmpl == nil {
		h.writeError(ctx, w, http.StatusNotFound, "not found")
		return
	}
	images, err := h.Service.ListPublic(ctx)
	if err != nil {
		h.mapServiceError(ctx, w, err)
		return
	}
	// Buffer the render so a template error never leaks a half page.
	var buf bytes.Buffer
	if err := h.IndexTmpl.Execute(&buf, indexData{Images: images}); err != nil {
		cid, _ := GetCorrelationID(ctx)
		slog.Error("render", "domain", "ui", "cid", cid)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("template error"))
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, &buf)
}

// handleAdminPage serves the admin console shell. The page itself is static;
// authentication happens against the JSON API, so no session gate here.
func (h *Handler) handleAdminPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if r.Method != http.MethodGet {
		h.writeError(ctx, w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.AdminTmpl == nil {
		h.writeError(ctx, w, http.StatusNotFound, "not found")
		return
	}
	var buf bytes.Buffer
	if err := h.AdminTmpl.Execute(&buf, nil); err != nil {
		cid, _ := GetCorrelationID(ctx)
		slog.Error("render", "domain", "ui", "cid", cid)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("template error"))
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, &buf)
}
