// Package nonce issues single-use SIWE nonces bound to a pre-auth session.
package nonce

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "siwe:nonce:"

const defaultTTL = 10 * time.Minute

var (
	// ErrNonceInvalid covers unknown, expired, reused, and foreign-session nonces.
	ErrNonceInvalid = errors.New("nonce invalid or already used")
	// ErrMissingSession is returned when no pre-auth session is supplied.
	ErrMissingSession = errors.New("missing pre-auth session")
)

// Store keeps issued nonces in Redis until they are consumed or expire.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore returns a Store issuing nonces that live for ttl.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Store{client: client, ttl: ttl}
}

// Issue creates a nonce owned by sessionID.
func (s *Store) Issue(ctx context.Context, sessionID string) (string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", ErrMissingSession
	}
	n := strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := s.client.Set(ctx, keyPrefix+n, sessionID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store nonce: %w", err)
	}
	return n, nil
}

// Consume atomically removes nonce and checks it was issued to sessionID.
// A nonce can be consumed at most once, even by a mismatching session.
func (s *Store) Consume(ctx context.Context, nonce, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrNonceInvalid
	}
	owner, err := s.client.GetDel(ctx, keyPrefix+nonce).Result()
	if errors.Is(err, redis.Nil) {
		return ErrNonceInvalid
	}
	if err != nil {
		return fmt.Errorf("consume nonce: %w", err)
	}
	if owner != sessionID {
		return ErrNonceInvalid
	}
	return nil
}

// Ping checks that Redis is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}
