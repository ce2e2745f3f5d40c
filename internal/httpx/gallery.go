package httpx

import (
	"net/http"

	"github.com/mstreet/easel/internal/app"
)

// handleGallery implements GET /gallery (public listing) and POST /gallery
// (authenticated multipart upload).
func (h *Handler) handleGallery(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listGallery(w, r)
	case http.MethodPost:
		h.upload(w, r)
	default:
		h.writeError(r.Context(), w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) listGallery(w http.ResponseWriter, r *http.Request) {
	images, err := h.Service.ListPublic(r.Context())
	if err != nil {
		h.mapServiceError(r.Context(), w, err)
		return
	}
	h.inc(MetricGalleryLists, 1)
	writeJSON(w, http.StatusOK, struct {
		Images []app.DisplayImage `json:"images"`
	}{Images: images})
}

// upload accepts multipart form data with a "file" part and an optional
// "title" field. The session check runs before the body is parsed so an
// unauthenticated caller never costs a storage round trip.
func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.requireSession(w, r) {
		return
	}
	if h.MaxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxBody)
	}
	// Multipart metadata is small; file content streams from the part.
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		h.writeError(ctx, w, http.StatusBadRequest, "multipart form required")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()
	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(ctx, w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()
	title := r.FormValue("title")
	contentType := header.Header.Get("Content-Type")

	img, err := h.Service.Upload(ctx, file, header.Size, contentType, header.Filename, title)
	if err != nil {
		h.mapServiceError(ctx, w, err)
		return
	}
	h.inc(MetricUploads, 1)
	h.inc(MetricManifestSaves, 1)
	h.observe(MetricUploadBytes, header.Size)
	writeJSON(w, http.StatusOK, struct {
		Success bool             `json:"success"`
		Image   app.DisplayImage `json:"image"`
	}{Success: true, Image: img})
}
