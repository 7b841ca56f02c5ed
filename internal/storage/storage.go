package storage

import (
	"context"
	"errors"

	"github.com/crypteax/crypteax-be/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a user already exists for the wallet address.
var ErrAlreadyExists = errors.New("record already exists")

// ErrUsernameTaken indicates another user holds the username.
var ErrUsernameTaken = errors.New("username already taken")

// ErrReferralCodeTaken indicates another user holds the referral code.
var ErrReferralCodeTaken = errors.New("referral code already taken")

// UserStore captures persistence operations needed by the auth and profile flows.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByAddress(ctx context.Context, address string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	UpdateUsername(ctx context.Context, id, username string) (models.User, error)
	UpdateImage(ctx context.Context, id, image string) (models.User, error)
	ToggleBlocked(ctx context.Context, id string) (models.User, error)
}

// Pinger reports backend reachability for health checks.
type Pinger interface {
	Ping(ctx context.Context) error
}
