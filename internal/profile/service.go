// Package profile implements the user-facing profile edits and the admin
// block toggle. Every mutation reports a Result rather than an error so the
// message can be shown to the user as-is.
package profile

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/crypteax/crypteax-be/internal/auth"
	"github.com/crypteax/crypteax-be/internal/models"
	"github.com/crypteax/crypteax-be/internal/storage"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 30
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Kind classifies a Result for transports that need a status code.
type Kind int

const (
	KindOK Kind = iota
	KindUnauthorized
	KindForbidden
	KindInvalid
	KindConflict
	KindNotFound
	KindInternal
)

const (
	msgUnauthorized  = "Unauthorized: please sign in first."
	msgForbidden     = "Forbidden: admin permission required."
	msgBlocked       = "Forbidden: your account is blocked."
	msgUsernameTaken = "Username is already taken."
	msgNotFound      = "User not found."
	msgInternal      = "Something went wrong. Please try again."
)

// Result is the outcome of a profile mutation.
type Result struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    *models.User `json:"user,omitempty"`
	Kind    Kind         `json:"-"`
}

func ok(message string, user models.User) Result {
	return Result{Success: true, Message: message, User: &user, Kind: KindOK}
}

func fail(kind Kind, message string) Result {
	return Result{Success: false, Message: message, Kind: kind}
}

// Service applies profile mutations against the user store.
type Service struct {
	store storage.UserStore
	log   zerolog.Logger
}

// NewService creates a profile service.
func NewService(store storage.UserStore, log zerolog.Logger) *Service {
	return &Service{store: store, log: log.With().Str("component", "profile").Logger()}
}

// ValidateUsername reports why username is unacceptable, or "" when it is fine.
func ValidateUsername(username string) string {
	switch {
	case len(username) < minUsernameLen || len(username) > maxUsernameLen:
		return "Username must be between 3 and 30 characters."
	case !usernamePattern.MatchString(username):
		return "Username may only contain letters, numbers and underscores."
	}
	return ""
}

// UpdateUsername renames the actor. A username held by another user is
// rejected and the actor's record is left unchanged. Blocked actors are
// refused even while their session is still valid.
func (s *Service) UpdateUsername(ctx context.Context, actor *auth.Session, username string) Result {
	if actor == nil {
		return fail(KindUnauthorized, msgUnauthorized)
	}
	username = strings.TrimSpace(username)
	if reason := ValidateUsername(username); reason != "" {
		return fail(KindInvalid, reason)
	}

	if res, ok := s.activeActor(ctx, actor); !ok {
		return res
	}

	holder, err := s.store.FindByUsername(ctx, username)
	switch {
	case err == nil && holder.ID != actor.UserID:
		return fail(KindConflict, msgUsernameTaken)
	case err != nil && !errors.Is(err, storage.ErrNotFound):
		return s.internal(err, "lookup username")
	}

	user, err := s.store.UpdateUsername(ctx, actor.UserID, username)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrUsernameTaken):
			return fail(KindConflict, msgUsernameTaken)
		case errors.Is(err, storage.ErrNotFound):
			return fail(KindNotFound, msgNotFound)
		}
		return s.internal(err, "update username")
	}
	s.log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("username updated")
	return ok("Username updated.", user)
}

// UpdateProfileImage replaces the actor's image reference.
func (s *Service) UpdateProfileImage(ctx context.Context, actor *auth.Session, imageRef string) Result {
	if actor == nil {
		return fail(KindUnauthorized, msgUnauthorized)
	}
	imageRef = strings.TrimSpace(imageRef)
	if imageRef == "" {
		return fail(KindInvalid, "Image is required.")
	}
	if res, ok := s.activeActor(ctx, actor); !ok {
		return res
	}

	user, err := s.store.UpdateImage(ctx, actor.UserID, imageRef)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fail(KindNotFound, msgNotFound)
		}
		return s.internal(err, "update image")
	}
	return ok("Profile image updated.", user)
}

// ToggleBlockUser flips the target's blocked flag. The actor's role is read
// from the store, not from the session snapshot, so a demoted admin loses
// the permission immediately.
func (s *Service) ToggleBlockUser(ctx context.Context, actor *auth.Session, targetID string) Result {
	if actor == nil {
		return fail(KindUnauthorized, msgUnauthorized)
	}
	current, err := s.store.FindByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fail(KindForbidden, msgForbidden)
		}
		return s.internal(err, "load actor")
	}
	if current.Role != models.RoleAdmin || current.IsBlocked {
		s.log.Warn().Str("user_id", actor.UserID).Str("target_id", targetID).Msg("non-admin attempted block toggle")
		return fail(KindForbidden, msgForbidden)
	}
	if strings.TrimSpace(targetID) == "" {
		return fail(KindInvalid, "Target user is required.")
	}

	user, err := s.store.ToggleBlocked(ctx, targetID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fail(KindNotFound, msgNotFound)
		}
		return s.internal(err, "toggle blocked")
	}
	s.log.Info().
		Str("admin_id", current.ID).
		Str("target_id", user.ID).
		Bool("blocked", user.IsBlocked).
		Msg("block status toggled")
	msg := "User unblocked."
	if user.IsBlocked {
		msg = "User blocked."
	}
	return ok(msg, user)
}

// GetUserProfile returns the public projection of the user at address.
func (s *Service) GetUserProfile(ctx context.Context, address string) (*models.PublicProfile, error) {
	user, err := s.store.FindByAddress(ctx, strings.ToLower(strings.TrimSpace(address)))
	if err != nil {
		return nil, err
	}
	p := user.Profile()
	return &p, nil
}

// activeActor re-reads the actor so a block applied after sign-in takes
// effect on the next edit.
func (s *Service) activeActor(ctx context.Context, actor *auth.Session) (Result, bool) {
	current, err := s.store.FindByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fail(KindNotFound, msgNotFound), false
		}
		return s.internal(err, "load actor"), false
	}
	if current.IsBlocked {
		s.log.Warn().Str("user_id", current.ID).Msg("blocked user attempted profile edit")
		return fail(KindForbidden, msgBlocked), false
	}
	return Result{}, true
}

func (s *Service) internal(err error, op string) Result {
	s.log.Error().Err(err).Str("op", op).Msg("profile operation failed")
	return fail(KindInternal, msgInternal)
}
