package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crypteax/crypteax-be/internal/profile"
	"github.com/crypteax/crypteax-be/internal/storage"
)

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthReportsDependencies(t *testing.T) {
	up := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("refused") })

	r := chi.NewRouter()
	NewHealthHandler(time.Now(), map[string]storage.Pinger{"postgres": up}).Register(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"postgres":"up"`)

	r = chi.NewRouter()
	NewHealthHandler(time.Now(), map[string]storage.Pinger{"postgres": up, "redis": down}).Register(r)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redis":"down"`)
	assert.Contains(t, rec.Body.String(), `"DEGRADED"`)
}

func TestStatusForKinds(t *testing.T) {
	cases := map[profile.Kind]int{
		profile.KindOK:           http.StatusOK,
		profile.KindUnauthorized: http.StatusUnauthorized,
		profile.KindForbidden:    http.StatusForbidden,
		profile.KindInvalid:      http.StatusBadRequest,
		profile.KindConflict:     http.StatusConflict,
		profile.KindNotFound:     http.StatusNotFound,
		profile.KindInternal:     http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, statusFor(kind))
	}
}

func TestDecodeVerifyRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/auth/verify", strings.NewReader(`{"message":"m","signature":"0x1","referralCode":"R"}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	got, err := decodeVerifyRequest(httptest.NewRecorder(), req)
	require.NoError(t, err)
	assert.Equal(t, "m", got.Message)
	assert.Equal(t, "0x1", got.Signature)
	assert.Equal(t, "R", got.ReferralCode)

	form := url.Values{"message": {"m2"}, "signature": {"0x2"}}
	req = httptest.NewRequest(http.MethodPost, "/auth/verify", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	got, err = decodeVerifyRequest(httptest.NewRecorder(), req)
	require.NoError(t, err)
	assert.Equal(t, "m2", got.Message)
	assert.Empty(t, got.ReferralCode)

	req = httptest.NewRequest(http.MethodPost, "/auth/verify", strings.NewReader(`{`))
	req.Header.Set("Content-Type", "application/json")
	_, err = decodeVerifyRequest(httptest.NewRecorder(), req)
	assert.Error(t, err)
}
