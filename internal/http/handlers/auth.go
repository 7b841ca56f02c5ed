package handlers

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/crypteax/crypteax-be/internal/auth"
	"github.com/crypteax/crypteax-be/internal/http/respond"
	"github.com/crypteax/crypteax-be/internal/middleware"
	"github.com/crypteax/crypteax-be/internal/models/dto"
	"github.com/crypteax/crypteax-be/internal/nonce"
	"github.com/crypteax/crypteax-be/internal/storage"
)

// AuthHandler owns the SIWE sign-in endpoints and session lifecycle.
type AuthHandler struct {
	authn   *auth.Authenticator
	nonces  *nonce.Store
	codec   *auth.SessionCodec
	store   storage.UserStore
	cookies CookieConfig
	debug   bool
	log     zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(authn *auth.Authenticator, nonces *nonce.Store, codec *auth.SessionCodec, store storage.UserStore, cookies CookieConfig, debug bool, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authn:   authn,
		nonces:  nonces,
		codec:   codec,
		store:   store,
		cookies: cookies,
		debug:   debug,
		log:     log.With().Str("component", "auth_handler").Logger(),
	}
}

// Register attaches auth routes under r.
func (h *AuthHandler) Register(r chi.Router) {
	r.Get("/nonce", h.handleNonce)
	r.Post("/verify", h.handleVerify)
	r.With(middleware.OptionalSession(h.codec)).Get("/session", h.handleSession)
	r.With(middleware.RequireSession(h.codec)).Post("/refresh", h.handleRefresh)
	r.Post("/signout", h.handleSignOut)
}

func (h *AuthHandler) handleNonce(w http.ResponseWriter, r *http.Request) {
	sessionID := ""
	if c, err := r.Cookie(nonceSessionCookie); err == nil {
		sessionID = strings.TrimSpace(c.Value)
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	n, err := h.nonces.Issue(r.Context(), sessionID)
	if err != nil {
		h.log.Error().Err(err).Msg("issue nonce failed")
		respond.Internal(w, "failed to issue nonce", err, h.debug)
		return
	}
	h.cookies.set(w, nonceSessionCookie, sessionID, h.cookies.NonceTTL)
	respond.JSON(w, http.StatusOK, "nonce issued", dto.NonceResponse{Nonce: n})
}

func (h *AuthHandler) handleVerify(w http.ResponseWriter, r *http.Request) {
	req, err := decodeVerifyRequest(w, r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	creds := auth.Credentials{
		Message:      req.Message,
		Signature:    req.Signature,
		ReferralCode: strings.TrimSpace(req.ReferralCode),
	}
	if c, err := r.Cookie(nonceSessionCookie); err == nil {
		creds.NonceSession = c.Value
	}

	session, err := h.authn.Authorize(r.Context(), creds)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingCredentials):
			respond.Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, auth.ErrNotAuthorized):
			respond.Error(w, http.StatusUnauthorized, "invalid signature or nonce")
		default:
			respond.Internal(w, "failed to sign in", err, h.debug)
		}
		return
	}

	token, err := h.codec.Encode(session)
	if err != nil {
		h.log.Error().Err(err).Msg("encode session failed")
		respond.Internal(w, "failed to issue session", err, h.debug)
		return
	}
	h.cookies.clear(w, nonceSessionCookie)
	h.cookies.setSession(w, token)
	respond.JSON(w, http.StatusOK, "signed in", dto.SessionResponse{Token: token, Session: session})
}

func (h *AuthHandler) handleSession(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		respond.JSON(w, http.StatusOK, "no active session", nil)
		return
	}
	respond.JSON(w, http.StatusOK, "active session", session)
}

// handleRefresh re-snapshots the caller from the store so profile edits and
// role changes reach the token.
func (h *AuthHandler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	current, _ := auth.SessionFromContext(r.Context())
	user, err := h.store.FindByID(r.Context(), current.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.cookies.clear(w, middleware.SessionCookie)
			respond.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		h.log.Error().Err(err).Str("user_id", current.UserID).Msg("load user for refresh failed")
		respond.Internal(w, "failed to refresh session", err, h.debug)
		return
	}
	if user.IsBlocked {
		h.cookies.clear(w, middleware.SessionCookie)
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	session := auth.NewSession(user, current.ChainID)
	token, err := h.codec.Encode(session)
	if err != nil {
		respond.Internal(w, "failed to refresh session", err, h.debug)
		return
	}
	h.cookies.setSession(w, token)
	respond.JSON(w, http.StatusOK, "session refreshed", dto.SessionResponse{Token: token, Session: session})
}

func (h *AuthHandler) handleSignOut(w http.ResponseWriter, _ *http.Request) {
	h.cookies.clear(w, middleware.SessionCookie)
	respond.JSON(w, http.StatusOK, "signed out", nil)
}

func decodeVerifyRequest(w http.ResponseWriter, r *http.Request) (dto.VerifyRequest, error) {
	var req dto.VerifyRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req)
		return req, err
	}
	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.Message = r.PostFormValue("message")
	req.Signature = r.PostFormValue("signature")
	req.ReferralCode = r.PostFormValue("referralCode")
	return req, nil
}
