package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCodec issues and reads signed session tokens.
type SessionCodec struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

type sessionClaims struct {
	Session
	jwt.RegisteredClaims
}

// NewSessionCodec creates a codec with the provided secret, issuer, and lifetime.
func NewSessionCodec(secret, issuer string, ttl time.Duration) *SessionCodec {
	return &SessionCodec{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Encode signs a token carrying every session field.
func (c *SessionCodec) Encode(s Session) (string, error) {
	if s.UserID == "" {
		return "", errors.New("session has no user id")
	}
	now := c.now()
	claims := sessionClaims{
		Session: s,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   s.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Decode returns the session in token. Missing, expired, malformed or
// badly signed tokens report false: an anonymous visitor is not an error.
func (c *SessionCodec) Decode(token string) (Session, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Session{}, false
	}
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !parsed.Valid {
		return Session{}, false
	}
	if claims.UserID == "" || claims.Subject != claims.UserID || !claims.Role.Valid() {
		return Session{}, false
	}
	return claims.Session, true
}
