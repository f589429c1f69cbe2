// session.go - HMAC-signed cookie sessions.
//
// The session cookie carries the logged-in user id, the email staged
// mid-verification, and any pending flash messages as a signed base64
// JSON payload. Nothing is stored server-side.
package server

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
)

const defaultCookieName = "fsw_session"

// SessionConfig holds the signing secret and cookie settings.
type SessionConfig struct {
	Secret     string
	TTL        time.Duration
	CookieName string
}

func (c SessionConfig) cookieName() string {
	if c.CookieName == "" {
		return defaultCookieName
	}
	return c.CookieName
}

func (c SessionConfig) ttl() time.Duration {
	if c.TTL <= 0 {
		return 12 * time.Hour
	}
	return c.TTL
}

// flash is one transient user-visible notice, shown on the next page render.
type flash struct {
	Category string `json:"c"` // success, info, warning, danger
	Message  string `json:"m"`
}

type sessionData struct {
	UserID       string  `json:"uid,omitempty"`
	PendingEmail string  `json:"pe,omitempty"`
	Flashes      []flash `json:"f,omitempty"`
	Exp          int64   `json:"exp"`
}

func (d *sessionData) addFlash(category, message string) {
	d.Flashes = append(d.Flashes, flash{Category: category, Message: message})
}

// popFlashes returns pending flashes and clears them from the session.
func (d *sessionData) popFlashes() []flash {
	f := d.Flashes
	d.Flashes = nil
	return f
}

func signPayload(secret []byte, msg string) string {
	m := hmac.New(sha256.New, secret)
	_, _ = m.Write([]byte(msg))
	return hex.EncodeToString(m.Sum(nil))
}

// encodeSession returns "payload.signature".
func (c SessionConfig) encodeSession(d sessionData) (string, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	payload := base64.RawURLEncoding.EncodeToString(b)
	sig := signPayload([]byte(c.Secret), payload)
	return payload + "." + sig, nil
}

func (c SessionConfig) decodeSession(tok string) (sessionData, error) {
	var d sessionData
	parts := strings.Split(tok, ".")
	if len(parts) != 2 {
		return d, errors.New("invalid token format")
	}
	payload, sig := parts[0], parts[1]
	want := signPayload([]byte(c.Secret), payload)
	if !hmac.Equal([]byte(sig), []byte(want)) {
		return d, errors.New("invalid signature")
	}
	b, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return d, err
	}
	if err := json.Unmarshal(b, &d); err != nil {
		return d, err
	}
	if d.Exp <= time.Now().Unix() {
		return d, errors.New("expired")
	}
	return d, nil
}

// loadSession reads the session cookie. Any missing, tampered or expired
// cookie yields a fresh empty session.
func (c SessionConfig) loadSession(r *http.Request) sessionData {
	ck, err := r.Cookie(c.cookieName())
	if err != nil {
		return sessionData{}
	}
	d, err := c.decodeSession(ck.Value)
	if err != nil {
		return sessionData{}
	}
	return d
}

// saveSession re-signs the session and sets the cookie. The expiry window
// slides forward on every save.
func (c SessionConfig) saveSession(w http.ResponseWriter, d sessionData) {
	exp := time.Now().Add(c.ttl())
	d.Exp = exp.Unix()
	tok, err := c.encodeSession(d)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.cookieName(),
		Value:    tok,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSession drops the cookie entirely. Idempotent.
func (c SessionConfig) clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.cookieName(),
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
