package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/abhinav121122/intellect-quiz-app/internal/model"
)

// ErrEmailTaken is returned when a password account already uses the email.
var ErrEmailTaken = errors.New("email already registered")

const userColumns = `id, email, display_name, password_hash, provider, created_at`

// CreateUser inserts a new user and returns it with ID and CreatedAt set.
// An empty ID is replaced with a random one. A second account for the same
// provider and email fails with ErrEmailTaken, including when two sign-ups
// race.
func (s *Store) CreateUser(ctx context.Context, u model.User) (*model.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (provider, email) DO NOTHING`,
		u.ID, u.Email, u.DisplayName, u.PasswordHash, string(u.Provider), u.CreatedAt.UnixNano(),
	)
	if err != nil {
		slog.Error("failed to create user", "email", u.Email, "error", err)
		return nil, fmt.Errorf("insert user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	if n == 0 {
		return nil, ErrEmailTaken
	}
	slog.Info("created user", "id", u.ID, "provider", u.Provider)
	return &u, nil
}

// UpsertUserIfMissing inserts u unless a user with the same ID exists, and
// returns the stored row. Repeated calls leave the first profile untouched.
func (s *Store) UpsertUserIfMissing(ctx context.Context, u model.User) (*model.User, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO NOTHING`,
		u.ID, u.Email, u.DisplayName, u.PasswordHash, string(u.Provider), time.Now().UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		slog.Info("provisioned user profile", "id", u.ID, "provider", u.Provider)
	}
	stored, err := s.GetUserByID(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("upsert user %s: row missing after insert", u.ID)
	}
	return stored, nil
}

// GetUserByEmail returns the password account for email, or nil.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getUserWhere(ctx, `provider = $1 AND email = $2`, string(model.ProviderPassword), email)
}

// GetUserByID returns a user by ID, or nil.
func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return s.getUserWhere(ctx, `id = $1`, id)
}

func (s *Store) getUserWhere(ctx context.Context, where string, args ...any) (*model.User, error) {
	var (
		u        model.User
		provider string
		created  int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+where, args...,
	).Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &provider, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	u.Provider = model.AuthProvider(provider)
	u.CreatedAt = time.Unix(0, created)
	return &u, nil
}

// UserCount returns the total number of users.
func (s *Store) UserCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}
