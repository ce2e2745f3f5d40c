package httpx

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mstreet/easel/internal/session"
)

// CookieName carries the opaque session token. HTTP-only and same-site; the
// client only stores and replays it.
const CookieName = "admin_session"

// handleLogin implements GET/POST/DELETE /admin/login: session check, login,
// and logout.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, struct {
			Authenticated bool `json:"authenticated"`
		}{Authenticated: h.authenticated(r)})
	case http.MethodPost:
		h.login(w, r)
	case http.MethodDelete:
		h.clearCookie(w)
		writeJSON(w, http.StatusOK, okBody())
	default:
		h.writeError(r.Context(), w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var body struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10)).Decode(&body); err != nil {
		h.writeError(ctx, w, http.StatusBadRequest, "bad request")
		return
	}
	if body.Password == "" {
		h.writeError(ctx, w, http.StatusBadRequest, "password required")
		return
	}
	if subtle.ConstantTimeCompare([]byte(body.Password), []byte(h.AdminPassword)) != 1 {
		cid, _ := GetCorrelationID(ctx)
		slog.Warn("login rejected", "cid", cid)
		h.writeError(ctx, w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	h.setCookie(w, h.Sessions.Create())
	writeJSON(w, http.StatusOK, okBody())
}

// authenticated reports whether the request carries a valid session cookie.
func (h *Handler) authenticated(r *http.Request) bool {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return false
	}
	return h.Sessions.Verify(c.Value)
}

// requireSession enforces authentication before any storage or manifest
// access. Returns false after writing the 401 when the session is missing,
// invalid, or expired.
func (h *Handler) requireSession(w http.ResponseWriter, r *http.Request) bool {
	if !h.authenticated(r) {
		h.writeUnauthorized(r.Context(), w)
		return false
	}
	return true
}

func (h *Handler) setCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(session.Lifetime.Seconds()),
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func okBody() any {
	return struct {
		OK bool `json:"ok"`
	}{OK: true}
}
