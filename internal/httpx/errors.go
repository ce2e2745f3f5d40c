package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mstreet/easel/internal/app"
	"github.com/mstreet/easel/internal/domain"
)

// writeJSON writes a JSON body with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error body with the given status code.
func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, struct {
		Error string `json:"error"`
	}{Error: msg})
	if cid, ok := GetCorrelationID(ctx); ok {
		slog.Debug("wrote error response", "cid", cid, "status", code, "msg", msg)
	}
}

// writeUnauthorized is the single 401 shape used before any storage or
// manifest access happens.
func (h *Handler) writeUnauthorized(ctx context.Context, w http.ResponseWriter) {
	h.writeError(ctx, w, http.StatusUnauthorized, "Unauthorized")
}

// mapServiceError maps domain/store/service errors to HTTP responses.
// Storage detail is logged server-side; callers receive generic messages.
func (h *Handler) mapServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	cid, _ := GetCorrelationID(ctx)
	switch {
	case errors.Is(err, app.ErrManifestWrite):
		// The primary storage action already succeeded; say so explicitly so
		// the operator retries only the bookkeeping.
		slog.Error("service error", "cid", cid, "code", "manifest_write", "err", err)
		h.writeError(ctx, w, http.StatusInternalServerError, "stored, but manifest update failed; retry the manifest save")
	case errors.Is(err, domain.ErrInvalidKey):
		slog.Warn("service error", "cid", cid, "code", "invalid_key")
		h.writeError(ctx, w, http.StatusBadRequest, "invalid key")
	case errors.Is(err, domain.ErrInvalidDirection):
		slog.Warn("service error", "cid", cid, "code", "invalid_direction")
		h.writeError(ctx, w, http.StatusBadRequest, "invalid direction")
	case errors.Is(err, domain.ErrInvalidType):
		slog.Warn("service error", "cid", cid, "code", "invalid_type")
		h.writeError(ctx, w, http.StatusUnsupportedMediaType, "file type not allowed")
	case errors.Is(err, app.ErrSizeExceeded):
		slog.Warn("service error", "cid", cid, "code", "size_exceeded")
		h.writeError(ctx, w, http.StatusRequestEntityTooLarge, "size exceeded")
	case errors.Is(err, app.ErrNotFound):
		slog.Info("service error", "cid", cid, "code", "not_found")
		h.writeError(ctx, w, http.StatusNotFound, "not found")
	default:
		slog.Error("upstream storage error", "cid", cid, "code", "upstream", "err", err)
		h.writeError(ctx, w, http.StatusInternalServerError, "operation failed")
	}
}
