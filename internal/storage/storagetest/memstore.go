// Package storagetest provides an in-memory storage.UserStore for tests.
package storagetest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/crypteax/crypteax-be/internal/models"
	"github.com/crypteax/crypteax-be/internal/storage"
	"github.com/google/uuid"
)

var _ storage.UserStore = (*MemStore)(nil)

// MemStore enforces the same uniqueness rules as the Postgres schema.
type MemStore struct {
	mu    sync.Mutex
	users map[string]models.User

	// CreateErr, when set, is returned by CreateUser instead of inserting.
	CreateErr error
	// FindHook runs after FindByAddress computes its result and before it returns.
	FindHook func(address string)

	creates int
}

// NewMemStore returns an empty store.
func NewMemStore() *MemStore {
	return &MemStore{users: make(map[string]models.User)}
}

// Seed inserts user as-is, bypassing uniqueness checks.
func (s *MemStore) Seed(user models.User) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.Address = strings.ToLower(user.Address)
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	s.users[user.ID] = user
	return user
}

// Count returns the number of stored users.
func (s *MemStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// Creates returns the number of successful CreateUser calls.
func (s *MemStore) Creates() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creates
}

func (s *MemStore) CreateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateErr != nil {
		return models.User{}, s.CreateErr
	}
	user.Address = strings.ToLower(user.Address)
	for _, existing := range s.users {
		switch {
		case existing.Address == user.Address:
			return models.User{}, storage.ErrAlreadyExists
		case existing.Username == user.Username:
			return models.User{}, storage.ErrUsernameTaken
		case existing.ReferralCode == user.ReferralCode:
			return models.User{}, storage.ErrReferralCodeTaken
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	s.users[user.ID] = user
	s.creates++
	return user, nil
}

func (s *MemStore) FindByID(_ context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return user, nil
}

func (s *MemStore) FindByAddress(_ context.Context, address string) (models.User, error) {
	user, err := s.findBy(func(u models.User) bool { return u.Address == strings.ToLower(address) })
	if s.FindHook != nil {
		s.FindHook(address)
	}
	return user, err
}

func (s *MemStore) FindByUsername(_ context.Context, username string) (models.User, error) {
	return s.findBy(func(u models.User) bool { return u.Username == username })
}

func (s *MemStore) UpdateUsername(_ context.Context, id, username string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	for otherID, other := range s.users {
		if otherID != id && other.Username == username {
			return models.User{}, storage.ErrUsernameTaken
		}
	}
	user.Username = username
	user.UpdatedAt = time.Now().UTC()
	s.users[id] = user
	return user, nil
}

func (s *MemStore) UpdateImage(_ context.Context, id, image string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	user.Image = &image
	user.UpdatedAt = time.Now().UTC()
	s.users[id] = user
	return user, nil
}

func (s *MemStore) ToggleBlocked(_ context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	user.IsBlocked = !user.IsBlocked
	user.UpdatedAt = time.Now().UTC()
	s.users[id] = user
	return user, nil
}

func (s *MemStore) findBy(match func(models.User) bool) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if match(u) {
			return u, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}
