package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/crypteax/crypteax-be/internal/auth"
	"github.com/crypteax/crypteax-be/internal/http/respond"
	"github.com/crypteax/crypteax-be/internal/middleware"
	"github.com/crypteax/crypteax-be/internal/models/dto"
	"github.com/crypteax/crypteax-be/internal/profile"
	"github.com/crypteax/crypteax-be/internal/storage"
)

// ProfileHandler exposes profile edits, the admin block toggle and address lookup.
type ProfileHandler struct {
	profiles *profile.Service
	codec    *auth.SessionCodec
	cookies  CookieConfig
	debug    bool
	log      zerolog.Logger
}

// NewProfileHandler constructs the handler.
func NewProfileHandler(profiles *profile.Service, codec *auth.SessionCodec, cookies CookieConfig, debug bool, log zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		codec:    codec,
		cookies:  cookies,
		debug:    debug,
		log:      log.With().Str("component", "profile_handler").Logger(),
	}
}

// RegisterUsers attaches /users routes under r.
func (h *ProfileHandler) RegisterUsers(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalSession(h.codec))
		r.Post("/me/username", h.handleUpdateUsername)
		r.Post("/me/image", h.handleUpdateImage)
	})
	r.Get("/{address}", h.handleGetProfile)
}

// RegisterAdmin attaches /admin routes under r.
func (h *ProfileHandler) RegisterAdmin(r chi.Router) {
	r.With(middleware.OptionalSession(h.codec)).Post("/users/{id}/block", h.handleToggleBlock)
}

func (h *ProfileHandler) handleUpdateUsername(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	res := h.profiles.UpdateUsername(r.Context(), actor, formValue(w, r, "username"))
	h.writeResult(w, actor, res, true)
}

func (h *ProfileHandler) handleUpdateImage(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	res := h.profiles.UpdateProfileImage(r.Context(), actor, formValue(w, r, "imageUrl"))
	h.writeResult(w, actor, res, true)
}

func (h *ProfileHandler) handleToggleBlock(w http.ResponseWriter, r *http.Request) {
	res := h.profiles.ToggleBlockUser(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	h.writeResult(w, nil, res, false)
}

func (h *ProfileHandler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.GetUserProfile(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "user not found")
			return
		}
		h.log.Error().Err(err).Msg("lookup profile failed")
		respond.Internal(w, "failed to load profile", err, h.debug)
		return
	}
	respond.JSON(w, http.StatusOK, "profile", p)
}

// writeResult renders res, re-issuing the actor's token when their own
// record changed. Blocked users never get a fresh token.
func (h *ProfileHandler) writeResult(w http.ResponseWriter, actor *auth.Session, res profile.Result, renew bool) {
	out := dto.ProfileResponse{Result: res}
	if renew && res.Success && actor != nil && res.User != nil && !res.User.IsBlocked {
		token, err := h.codec.Encode(auth.NewSession(*res.User, actor.ChainID))
		if err != nil {
			h.log.Error().Err(err).Str("user_id", actor.UserID).Msg("re-issue session failed")
		} else {
			out.Token = token
			h.cookies.setSession(w, token)
		}
	}
	respond.Raw(w, statusFor(res.Kind), out)
}

func statusFor(kind profile.Kind) int {
	switch kind {
	case profile.KindOK:
		return http.StatusOK
	case profile.KindUnauthorized:
		return http.StatusUnauthorized
	case profile.KindForbidden:
		return http.StatusForbidden
	case profile.KindInvalid:
		return http.StatusBadRequest
	case profile.KindConflict:
		return http.StatusConflict
	case profile.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func actorFrom(r *http.Request) *auth.Session {
	s, ok := auth.SessionFromContext(r.Context())
	if !ok {
		return nil
	}
	return &s
}

func formValue(w http.ResponseWriter, r *http.Request, key string) string {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return r.PostFormValue(key)
}
