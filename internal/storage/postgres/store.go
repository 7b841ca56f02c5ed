package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/crypteax/crypteax-be/internal/models"
	"github.com/crypteax/crypteax-be/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Ensure Store satisfies the storage interfaces at compile time.
var (
	_ storage.UserStore = (*Store)(nil)
	_ storage.Pinger    = (*Store)(nil)
)

const uniqueViolation = "23505"

const userColumns = `id, address, username, image, role, points, referral_code, is_blocked, created_at, updated_at`

// Store provides Postgres-backed persistence for users.
type Store struct {
	pool *pgxpool.Pool
}

// NewUserStore applies pending migrations and opens a connection pool.
func NewUserStore(ctx context.Context, databaseURL string) (*Store, error) {
	if err := MigrateUp(databaseURL); err != nil {
		return nil, err
	}

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 30 * time.Minute
	cfg.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping checks if the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// CreateUser inserts a new user row. A duplicate address yields
// storage.ErrAlreadyExists; duplicate generated identifiers yield
// storage.ErrUsernameTaken or storage.ErrReferralCodeTaken.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	query := `
		INSERT INTO users (id, address, username, image, role, points, referral_code, is_blocked)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + userColumns
	row := s.pool.QueryRow(ctx, query,
		user.ID,
		strings.ToLower(user.Address),
		user.Username,
		user.Image,
		user.Role,
		user.Points,
		user.ReferralCode,
		user.IsBlocked,
	)
	created, err := scanUser(row)
	if err != nil {
		return models.User{}, mapUniqueViolation(err)
	}
	return created, nil
}

// FindByID fetches a user by primary key.
func (s *Store) FindByID(ctx context.Context, id string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// FindByAddress fetches a user by wallet address.
func (s *Store) FindByAddress(ctx context.Context, address string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE address = $1`, strings.ToLower(address))
	return scanUser(row)
}

// FindByUsername fetches a user by username.
func (s *Store) FindByUsername(ctx context.Context, username string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	return scanUser(row)
}

// UpdateUsername sets a new username for the user.
func (s *Store) UpdateUsername(ctx context.Context, id, username string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE users SET username = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns, id, username)
	updated, err := scanUser(row)
	if err != nil {
		return models.User{}, mapUniqueViolation(err)
	}
	return updated, nil
}

// UpdateImage sets the profile image reference for the user.
func (s *Store) UpdateImage(ctx context.Context, id, image string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE users SET image = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns, id, image)
	return scanUser(row)
}

// ToggleBlocked flips the blocked flag in a single statement.
func (s *Store) ToggleBlocked(ctx context.Context, id string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE users SET is_blocked = NOT is_blocked, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns, id)
	return scanUser(row)
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(
		&user.ID,
		&user.Address,
		&user.Username,
		&user.Image,
		&user.Role,
		&user.Points,
		&user.ReferralCode,
		&user.IsBlocked,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case "users_address_key":
		return storage.ErrAlreadyExists
	case "users_username_key":
		return storage.ErrUsernameTaken
	case "users_referral_code_key":
		return storage.ErrReferralCodeTaken
	default:
		return err
	}
}
