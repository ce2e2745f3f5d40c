// Package session implements the signed, expiring admin session token.
//
// A token is "<unix-expiry>.<base64url(HMAC-SHA256(secret, expiry))>" with
// base64url padding stripped. Verification is stateless: there is no
// server-side session table and no revocation; rotating the secret
// invalidates every outstanding token at once.
package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"
)

// Lifetime is the fixed validity window of a freshly created token.
const Lifetime = 30 * 24 * time.Hour

// ErrNoSecret indicates the codec was constructed without a signing secret.
// An unset secret is a misconfiguration, never an implicit default.
var ErrNoSecret = errors.New("session secret not configured")

// Codec creates and verifies session tokens with a process-wide secret.
type Codec struct {
	secret []byte
	now    func() time.Time
}

// New returns a Codec for the given secret. The secret must be non-empty.
func New(secret string) (*Codec, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	return &Codec{secret: []byte(secret), now: time.Now}, nil
}

// NewAt is New with an injectable clock, for expiry tests.
func NewAt(secret string, now func() time.Time) (*Codec, error) {
	c, err := New(secret)
	if err != nil {
		return nil, err
	}
	c.now = now
	return c, nil
}

// Create issues a token expiring Lifetime from now.
func (c *Codec) Create() string {
	expiry := strconv.FormatInt(c.now().Add(Lifetime).Unix(), 10)
	return expiry + "." + c.sign(expiry)
}

// Verify reports whether the token is well-formed, unexpired, and carries a
// signature matching this codec's secret. It fails closed: any malformed
// input simply verifies false.
func (c *Codec) Verify(token string) bool {
	expiry, sig, ok := strings.Cut(token, ".")
	if !ok || expiry == "" || sig == "" {
		return false
	}
	exp, err := strconv.ParseInt(expiry, 10, 64)
	if err != nil {
		return false
	}
	if exp < c.now().Unix() {
		return false
	}
	return hmac.Equal([]byte(sig), []byte(c.sign(expiry)))
}

// sign computes the base64url (unpadded) HMAC-SHA256 of the expiry string.
func (c *Codec) sign(expiry string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(expiry))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
