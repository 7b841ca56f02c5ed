package auth

import (
	"context"

	"github.com/crypteax/crypteax-be/internal/models"
)

// Session is the identity snapshot carried by a session token. It is taken
// when the token is issued and is not refreshed from the store afterwards.
type Session struct {
	UserID       string      `json:"id"`
	Address      string      `json:"address"`
	Username     string      `json:"username"`
	Image        *string     `json:"image"`
	Role         models.Role `json:"role"`
	Points       int         `json:"points"`
	ReferralCode string      `json:"referralCode"`
	ChainID      int         `json:"chainId,omitempty"`
}

// NewSession snapshots user for a session on chainID.
func NewSession(user models.User, chainID int) Session {
	return Session{
		UserID:       user.ID,
		Address:      user.Address,
		Username:     user.Username,
		Image:        user.Image,
		Role:         user.Role,
		Points:       user.Points,
		ReferralCode: user.ReferralCode,
		ChainID:      chainID,
	}
}

// IsAdmin reports whether the snapshot carries the admin role.
func (s Session) IsAdmin() bool {
	return s.Role == models.RoleAdmin
}

type sessionKey struct{}

// WithSession returns ctx carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext returns the session stored by WithSession.
func SessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}
