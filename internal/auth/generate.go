package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/crypteax/crypteax-be/internal/models"
)

const codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

const (
	usernameSuffixLen = 6
	referralCodeLen   = 8
)

// randomCode returns n characters drawn uniformly from codeAlphabet.
func randomCode(n int) (string, error) {
	var b strings.Builder
	b.Grow(n)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		b.WriteByte(codeAlphabet[idx.Int64()])
	}
	return b.String(), nil
}

// newUser builds the first-login record for address.
func newUser(address string) (models.User, error) {
	suffix, err := randomCode(usernameSuffixLen)
	if err != nil {
		return models.User{}, err
	}
	referral, err := randomCode(referralCodeLen)
	if err != nil {
		return models.User{}, err
	}
	return models.User{
		Address:      strings.ToLower(address),
		Username:     "user_" + suffix,
		Role:         models.RoleUser,
		Points:       0,
		ReferralCode: referral,
		IsBlocked:    false,
	}, nil
}
