package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crypteax/crypteax-be/internal/models"
)

func testSession() Session {
	image := "https://cdn.crypteax.io/a.png"
	return Session{
		UserID:       "5b0c2f0e-7d0a-4b7a-9c1e-0d3f1a2b3c4d",
		Address:      "0x52908400098527886e0f7030069857d2e4169ee7",
		Username:     "user_ABC123",
		Image:        &image,
		Role:         models.RoleAdmin,
		Points:       42,
		ReferralCode: "K9X2M4QA",
		ChainID:      10218,
	}
}

func TestSessionCodecRoundTrip(t *testing.T) {
	codec := NewSessionCodec("secret", "crypteax", time.Hour)
	token, err := codec.Encode(testSession())
	require.NoError(t, err)

	got, ok := codec.Decode(token)
	require.True(t, ok)
	assert.Equal(t, testSession(), got)
	assert.True(t, got.IsAdmin())
}

func TestSessionCodecRejects(t *testing.T) {
	codec := NewSessionCodec("secret", "crypteax", time.Hour)
	token, err := codec.Encode(testSession())
	require.NoError(t, err)

	t.Run("empty", func(t *testing.T) {
		_, ok := codec.Decode("  ")
		assert.False(t, ok)
	})
	t.Run("garbage", func(t *testing.T) {
		_, ok := codec.Decode("not.a.jwt")
		assert.False(t, ok)
	})
	t.Run("tampered", func(t *testing.T) {
		dot := strings.LastIndexByte(token, '.')
		flip := byte('A')
		if token[dot+1] == 'A' {
			flip = 'B'
		}
		tampered := token[:dot+1] + string(flip) + token[dot+2:]
		_, ok := codec.Decode(tampered)
		assert.False(t, ok)
	})
	t.Run("wrong secret", func(t *testing.T) {
		_, ok := NewSessionCodec("other", "crypteax", time.Hour).Decode(token)
		assert.False(t, ok)
	})
	t.Run("wrong issuer", func(t *testing.T) {
		_, ok := NewSessionCodec("secret", "someone-else", time.Hour).Decode(token)
		assert.False(t, ok)
	})
	t.Run("expired", func(t *testing.T) {
		late := NewSessionCodec("secret", "crypteax", time.Hour)
		late.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, ok := late.Decode(token)
		assert.False(t, ok)
	})
	t.Run("unknown role", func(t *testing.T) {
		forged := testSession()
		forged.Role = "SUPERUSER"
		tok, err := codec.Encode(forged)
		require.NoError(t, err)
		_, ok := codec.Decode(tok)
		assert.False(t, ok)
	})
	t.Run("unsigned", func(t *testing.T) {
		none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"id": "x", "sub": "x", "iss": "crypteax", "exp": time.Now().Add(time.Hour).Unix(),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, ok := codec.Decode(none)
		assert.False(t, ok)
	})
}

func TestSessionCodecRequiresUserID(t *testing.T) {
	codec := NewSessionCodec("secret", "crypteax", time.Hour)
	_, err := codec.Encode(Session{Address: "0xabc"})
	assert.Error(t, err)
}

func TestSessionContext(t *testing.T) {
	ctx := WithSession(t.Context(), testSession())
	got, ok := SessionFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, testSession().UserID, got.UserID)

	_, ok = SessionFromContext(t.Context())
	assert.False(t, ok)
}
