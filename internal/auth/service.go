// Package auth provisions and verifies user identities.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/abhinav121122/intellect-quiz-app/internal/model"
	"github.com/abhinav121122/intellect-quiz-app/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password too short")
	ErrEmailRequired      = errors.New("valid email required")
	ErrGoogleDisabled     = errors.New("google sign-in not configured")
	ErrGoogleSignIn       = errors.New("google sign-in failed")
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// UserStore is the persistence the service needs.
type UserStore interface {
	CreateUser(ctx context.Context, u model.User) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpsertUserIfMissing(ctx context.Context, u model.User) (*model.User, error)
}

// Service signs users up and in.
type Service struct {
	users    UserStore
	google   *Google
	validate *validator.Validate
}

// NewService creates a Service. google may be nil to disable federated sign-in.
func NewService(users UserStore, google *Google) *Service {
	return &Service{users: users, google: google, validate: validator.New()}
}

// GoogleEnabled reports whether federated sign-in is configured.
func (s *Service) GoogleEnabled() bool { return s.google != nil }

// GoogleAuthURL returns the Google consent URL for state.
func (s *Service) GoogleAuthURL(state string) (string, error) {
	if s.google == nil {
		return "", ErrGoogleDisabled
	}
	return s.google.AuthCodeURL(state), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp creates a password account.
func (s *Service) SignUp(ctx context.Context, email, password, displayName string) (*model.User, error) {
	email = normalizeEmail(email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, ErrEmailRequired
	}
	if len(password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName, _, _ = strings.Cut(email, "@")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.users.CreateUser(ctx, model.User{
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: string(hash),
		Provider:     model.ProviderPassword,
	})
	if errors.Is(err, store.ErrEmailTaken) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Login checks a password account's credentials.
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, error) {
	u, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// GoogleSignIn completes the code flow and provisions the profile on first sign-in.
func (s *Service) GoogleSignIn(ctx context.Context, code string) (*model.User, error) {
	if s.google == nil {
		return nil, ErrGoogleDisabled
	}
	p, err := s.google.Profile(ctx, code)
	if err != nil {
		slog.Warn("google sign-in failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrGoogleSignIn, err)
	}

	name := p.Name
	if name == "" {
		name, _, _ = strings.Cut(p.Email, "@")
	}
	return s.users.UpsertUserIfMissing(ctx, model.User{
		ID:          "google:" + p.Subject,
		Email:       normalizeEmail(p.Email),
		DisplayName: name,
		Provider:    model.ProviderGoogle,
	})
}
