package auth

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crypteax/crypteax-be/internal/models"
)

func TestRandomCodeProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("length and alphabet", prop.ForAll(
		func(n int) bool {
			code, err := randomCode(n)
			if err != nil || len(code) != n {
				return false
			}
			for _, r := range code {
				if !strings.ContainsRune(codeAlphabet, r) {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 64),
	))

	properties.TestingRun(t)
}

func TestNewUserDefaults(t *testing.T) {
	u, err := newUser("0xAbC0000000000000000000000000000000000001")
	require.NoError(t, err)

	assert.Equal(t, "0xabc0000000000000000000000000000000000001", u.Address)
	assert.Regexp(t, `^user_[0-9A-Z]{6}$`, u.Username)
	assert.Len(t, u.ReferralCode, referralCodeLen)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.Zero(t, u.Points)
	assert.False(t, u.IsBlocked)
	assert.Nil(t, u.Image)
	assert.Empty(t, u.ID)
}
