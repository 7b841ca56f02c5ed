package nonce

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T, ttl time.Duration) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client, ttl), mr
}

func TestIssueAndConsume(t *testing.T) {
	store, _ := setupStore(t, time.Minute)
	ctx := context.Background()

	n, err := store.Issue(ctx, "session-a")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[a-f0-9]{32}$`), n)

	require.NoError(t, store.Consume(ctx, n, "session-a"))
	assert.ErrorIs(t, store.Consume(ctx, n, "session-a"), ErrNonceInvalid, "nonce must be single use")
}

func TestConsumeRejectsForeignSession(t *testing.T) {
	store, _ := setupStore(t, time.Minute)
	ctx := context.Background()

	n, err := store.Issue(ctx, "session-a")
	require.NoError(t, err)

	assert.ErrorIs(t, store.Consume(ctx, n, "session-b"), ErrNonceInvalid)
	assert.ErrorIs(t, store.Consume(ctx, n, "session-a"), ErrNonceInvalid, "a failed attempt still burns the nonce")
}

func TestConsumeRejectsExpired(t *testing.T) {
	store, mr := setupStore(t, time.Minute)
	ctx := context.Background()

	n, err := store.Issue(ctx, "session-a")
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)

	assert.ErrorIs(t, store.Consume(ctx, n, "session-a"), ErrNonceInvalid)
}

func TestIssueRequiresSession(t *testing.T) {
	store, _ := setupStore(t, time.Minute)
	_, err := store.Issue(context.Background(), " ")
	assert.ErrorIs(t, err, ErrMissingSession)
}

func TestNoncesAreDistinct(t *testing.T) {
	store, _ := setupStore(t, time.Minute)
	ctx := context.Background()
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		n, err := store.Issue(ctx, "session-a")
		require.NoError(t, err)
		_, dup := seen[n]
		require.False(t, dup)
		seen[n] = struct{}{}
	}
}

func TestConsumeSurfacesRedisFailure(t *testing.T) {
	store, mr := setupStore(t, time.Minute)
	mr.Close()
	err := store.Consume(context.Background(), "abc", "session-a")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNonceInvalid)
}
