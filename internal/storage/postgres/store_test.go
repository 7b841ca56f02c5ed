package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/crypteax/crypteax-be/internal/storage"
)

func TestMapUniqueViolation(t *testing.T) {
	violation := func(constraint string) error {
		return fmt.Errorf("insert: %w", &pgconn.PgError{Code: uniqueViolation, ConstraintName: constraint})
	}

	assert.ErrorIs(t, mapUniqueViolation(violation("users_address_key")), storage.ErrAlreadyExists)
	assert.ErrorIs(t, mapUniqueViolation(violation("users_username_key")), storage.ErrUsernameTaken)
	assert.ErrorIs(t, mapUniqueViolation(violation("users_referral_code_key")), storage.ErrReferralCodeTaken)

	other := violation("users_pkey")
	assert.Equal(t, other, mapUniqueViolation(other))
	assert.NotErrorIs(t, mapUniqueViolation(other), storage.ErrAlreadyExists)

	checkFailed := &pgconn.PgError{Code: "23514", ConstraintName: "users_address_key"}
	assert.Equal(t, error(checkFailed), mapUniqueViolation(checkFailed))

	plain := errors.New("connection reset")
	assert.Equal(t, plain, mapUniqueViolation(plain))
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	assert.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "000001_create_users.up.sql")
	assert.Contains(t, names, "000001_create_users.down.sql")
}
