package httpx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionCheck(t *testing.T) {
	h := newTestHandler(&fakeService{})
	router := h.Router()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/login", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"authenticated":false}`, rr.Body.String())

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, withSession(httptest.NewRequest(http.MethodGet, "/admin/login", nil)))
	assert.JSONEq(t, `{"authenticated":true}`, rr.Body.String())
}

func TestLoginWrongPassword(t *testing.T) {
	h := newTestHandler(&fakeService{})
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(`{"password":"wrong"}`))
	rr := httptest.NewRecorder()
	h.Router().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Empty(t, rr.Result().Cookies())
}

func TestLoginSetsSessionCookie(t *testing.T) {
	h := newTestHandler(&fakeService{})
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(`{"password":"hunter2"}`))
	rr := httptest.NewRecorder()
	h.Router().ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"ok":true}`, rr.Body.String())

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, CookieName, c.Name)
	assert.Equal(t, "valid-token", c.Value)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 30*24*3600, c.MaxAge)
}

func TestLoginValidation(t *testing.T) {
	h := newTestHandler(&fakeService{})
	router := h.Router()
	for _, body := range []string{"", "{", `{"password":""}`} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rr.Code, "body %q", body)
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	h := newTestHandler(&fakeService{})
	rr := httptest.NewRecorder()
	h.Router().ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/admin/login", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestExpiredOrGarbageCookieIsUnauthenticated(t *testing.T) {
	h := newTestHandler(&fakeService{})
	router := h.Router()
	for _, val := range []string{"garbage", "123.tampered", "valid-token-x"} {
		req := httptest.NewRequest(http.MethodGet, "/admin/login", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: val})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.JSONEq(t, `{"authenticated":false}`, rr.Body.String(), "cookie %q", val)
	}
}
