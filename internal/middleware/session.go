package middleware

import (
	"net/http"
	"strings"

	"github.com/crypteax/crypteax-be/internal/auth"
	"github.com/crypteax/crypteax-be/internal/http/respond"
)

// SessionCookie carries the session token for browser clients.
const SessionCookie = "crypteax_session"

// SessionDecoder reads a session out of a token.
type SessionDecoder interface {
	Decode(token string) (auth.Session, bool)
}

// OptionalSession attaches the caller's session to the context when a valid
// token is present and passes anonymous requests through untouched.
func OptionalSession(codec SessionDecoder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s, ok := codec.Decode(SessionToken(r)); ok {
				r = r.WithContext(auth.WithSession(r.Context(), s))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession rejects requests without a valid session with 401.
func RequireSession(codec SessionDecoder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := codec.Decode(SessionToken(r))
			if !ok {
				respond.Error(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), s)))
		})
	}
}

// SessionToken returns the bearer token, falling back to the session cookie.
func SessionToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if found && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}
