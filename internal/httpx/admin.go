package httpx

import (
	"encoding/json"
	"net/http"
)

// handleDelete implements POST /admin/delete: remove the object and its
// manifest entry, renumbering the remainder.
func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if r.Method != http.MethodPost {
		h.writeError(ctx, w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !h.requireSession(w, r) {
		return
	}
	var body struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10)).Decode(&body); err != nil {
		h.writeError(ctx, w, http.StatusBadRequest, "bad request")
		return
	}
	if body.Key == "" {
		h.writeError(ctx, w, http.StatusBadRequest, "key required")
		return
	}
	if err := h.Service.Delete(ctx, body.Key); err != nil {
		h.mapServiceError(ctx, w, err)
		return
	}
	h.inc(MetricDeletes, 1)
	h.inc(MetricManifestSaves, 1)
	writeJSON(w, http.StatusOK, okBody())
}

// handleReorder implements POST /admin/reorder: move one entry by one
// position and persist the renumbered list.
func (h *Handler) handleReorder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if r.Method != http.MethodPost {
		h.writeError(ctx, w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !h.requireSession(w, r) {
		return
	}
	var body struct {
		Key       string `json:"key"`
		Direction string `json:"direction"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10)).Decode(&body); err != nil {
		h.writeError(ctx, w, http.StatusBadRequest, "bad request")
		return
	}
	if err := h.Service.Reorder(ctx, body.Key, body.Direction); err != nil {
		h.mapServiceError(ctx, w, err)
		return
	}
	h.inc(MetricManifestSaves, 1)
	writeJSON(w, http.StatusOK, okBody())
}

// handleRename implements POST /admin/rename: title-only update of one
// entry.
func (h *Handler) handleRename(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if r.Method != http.MethodPost {
		h.writeError(ctx, w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !h.requireSession(w, r) {
		return
	}
	var body struct {
		Key   string `json:"key"`
		Title string `json:"title"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&body); err != nil {
		h.writeError(ctx, w, http.StatusBadRequest, "bad request")
		return
	}
	if err := h.Service.Rename(ctx, body.Key, body.Title); err != nil {
		h.mapServiceError(ctx, w, err)
		return
	}
	h.inc(MetricManifestSaves, 1)
	writeJSON(w, http.StatusOK, okBody())
}
