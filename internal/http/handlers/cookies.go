package handlers

import (
	"net/http"
	"time"

	"github.com/crypteax/crypteax-be/internal/middleware"
)

const maxBodyBytes = 64 << 10

// nonceSessionCookie binds issued nonces to the browser that requested them.
const nonceSessionCookie = "crypteax_nonce_session"

// CookieConfig controls the attributes of cookies set by handlers.
type CookieConfig struct {
	Secure     bool
	SessionTTL time.Duration
	NonceTTL   time.Duration
}

func (c CookieConfig) set(w http.ResponseWriter, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c CookieConfig) clear(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c CookieConfig) setSession(w http.ResponseWriter, token string) {
	c.set(w, middleware.SessionCookie, token, c.SessionTTL)
}
