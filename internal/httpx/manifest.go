package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/mstreet/easel/internal/domain"
)

// handleManifest implements GET /admin/manifest (public read, the gallery
// page consumes it too) and PUT /admin/manifest (authenticated wholesale
// replacement).
func (h *Handler) handleManifest(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, struct {
			Items []domain.Item `json:"items"`
		}{Items: h.Service.Items(r.Context())})
	case http.MethodPut:
		h.replaceManifest(w, r)
	default:
		h.writeError(r.Context(), w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// replaceManifest persists a client-submitted full item list. Normalization
// happens in the service; the save does no diffing, so entries the client
// omitted are dropped.
func (h *Handler) replaceManifest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.requireSession(w, r) {
		return
	}
	var body struct {
		Items []domain.RawItem `json:"items"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&body); err != nil {
		h.writeError(ctx, w, http.StatusBadRequest, "bad request")
		return
	}
	if _, err := h.Service.Replace(ctx, body.Items); err != nil {
		h.mapServiceError(ctx, w, err)
		return
	}
	h.inc(MetricManifestSaves, 1)
	writeJSON(w, http.StatusOK, okBody())
}
