package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/crypteax/crypteax-be/internal/metrics"
	"github.com/crypteax/crypteax-be/internal/models"
	"github.com/crypteax/crypteax-be/internal/nonce"
	"github.com/crypteax/crypteax-be/internal/siwe"
	"github.com/crypteax/crypteax-be/internal/storage"
)

// maxCreateAttempts bounds regeneration of colliding usernames/referral codes.
const maxCreateAttempts = 5

var (
	// ErrMissingCredentials is returned before any verification when the
	// message or signature is absent.
	ErrMissingCredentials = errors.New("message and signature are required")
	// ErrNotAuthorized covers every refusal: bad message, bad signature,
	// stale nonce, blocked account.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrInternal is an infrastructure failure; details are only logged.
	ErrInternal = errors.New("authorization failed")
)

// SignatureVerifier confirms a SIWE signature.
type SignatureVerifier interface {
	Verify(ctx context.Context, msg *siwe.Message, signature string) error
}

// NonceConsumer redeems a nonce issued to a pre-auth session.
type NonceConsumer interface {
	Consume(ctx context.Context, nonce, sessionID string) error
}

// Credentials is a client-submitted sign-in attempt.
type Credentials struct {
	Message   string
	Signature string
	// ReferralCode is accepted but not attributed.
	ReferralCode string
	// NonceSession identifies the pre-auth session the nonce was issued to.
	NonceSession string
}

// Authenticator turns signed challenges into sessions, provisioning users on
// first contact.
type Authenticator struct {
	store    storage.UserStore
	verifier SignatureVerifier
	nonces   NonceConsumer
	metrics  *metrics.Recorder
	log      zerolog.Logger
}

// NewAuthenticator wires the orchestrator's collaborators.
func NewAuthenticator(store storage.UserStore, verifier SignatureVerifier, nonces NonceConsumer, rec *metrics.Recorder, log zerolog.Logger) *Authenticator {
	return &Authenticator{
		store:    store,
		verifier: verifier,
		nonces:   nonces,
		metrics:  rec,
		log:      log.With().Str("component", "authenticator").Logger(),
	}
}

// Authorize verifies creds and returns a session for the signing address.
// It either returns a session or leaves the store untouched, except for
// inserting the user on first sign-in.
func (a *Authenticator) Authorize(ctx context.Context, creds Credentials) (Session, error) {
	if strings.TrimSpace(creds.Message) == "" || strings.TrimSpace(creds.Signature) == "" {
		a.metrics.Authorization(metrics.OutcomeMalformed)
		return Session{}, ErrMissingCredentials
	}

	msg, err := siwe.Parse(creds.Message)
	if err != nil {
		a.log.Warn().Err(err).Msg("rejecting unparseable siwe message")
		a.metrics.Authorization(metrics.OutcomeInvalidMessage)
		return Session{}, ErrNotAuthorized
	}
	address := msg.NormalizedAddress()
	log := a.log.With().Str("address", address).Int("chain_id", msg.ChainID).Logger()

	if err := a.verifier.Verify(ctx, msg, creds.Signature); err != nil {
		log.Warn().Err(err).Msg("signature verification failed")
		a.metrics.Authorization(metrics.OutcomeInvalidSignature)
		return Session{}, ErrNotAuthorized
	}

	if err := a.nonces.Consume(ctx, msg.Nonce, creds.NonceSession); err != nil {
		if errors.Is(err, nonce.ErrNonceInvalid) {
			log.Warn().Msg("rejecting unknown or reused nonce")
			a.metrics.Authorization(metrics.OutcomeInvalidNonce)
			return Session{}, ErrNotAuthorized
		}
		log.Error().Err(err).Msg("nonce check failed")
		a.metrics.Authorization(metrics.OutcomeError)
		return Session{}, ErrInternal
	}

	if creds.ReferralCode != "" {
		log.Debug().Str("referral_code", creds.ReferralCode).Msg("referral code supplied; attribution not implemented")
	}

	user, err := a.resolveUser(ctx, address, log)
	if err != nil {
		log.Error().Err(err).Msg("resolve user failed")
		a.metrics.Authorization(metrics.OutcomeError)
		return Session{}, ErrInternal
	}
	if user.IsBlocked {
		log.Warn().Str("user_id", user.ID).Msg("blocked user attempted sign-in")
		a.metrics.Authorization(metrics.OutcomeBlocked)
		return Session{}, ErrNotAuthorized
	}

	a.metrics.Authorization(metrics.OutcomeSuccess)
	log.Info().Str("user_id", user.ID).Msg("signed in")
	return NewSession(user, msg.ChainID), nil
}

// resolveUser finds the user for address or creates it. A duplicate-address
// conflict means a concurrent sign-in won the insert; the row is re-read.
func (a *Authenticator) resolveUser(ctx context.Context, address string, log zerolog.Logger) (models.User, error) {
	user, err := a.store.FindByAddress(ctx, address)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return models.User{}, fmt.Errorf("find user: %w", err)
	}

	for attempt := 1; attempt <= maxCreateAttempts; attempt++ {
		candidate, err := newUser(address)
		if err != nil {
			return models.User{}, err
		}
		created, err := a.store.CreateUser(ctx, candidate)
		switch {
		case err == nil:
			a.metrics.UserCreated()
			log.Info().Str("user_id", created.ID).Msg("provisioned new user")
			return created, nil
		case errors.Is(err, storage.ErrAlreadyExists):
			log.Warn().Msg("user created concurrently; re-reading")
			a.metrics.CreateRace()
			existing, err := a.store.FindByAddress(ctx, address)
			if err != nil {
				return models.User{}, fmt.Errorf("re-read user after create conflict: %w", err)
			}
			return existing, nil
		case errors.Is(err, storage.ErrUsernameTaken), errors.Is(err, storage.ErrReferralCodeTaken):
			log.Debug().Err(err).Int("attempt", attempt).Msg("generated identifier collided; regenerating")
		default:
			return models.User{}, fmt.Errorf("create user: %w", err)
		}
	}
	return models.User{}, fmt.Errorf("create user: identifiers collided %d times", maxCreateAttempts)
}
