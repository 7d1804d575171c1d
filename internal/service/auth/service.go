// Package auth implements the registration, login and logout workflows on top
// of the credential store and the session store.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/marloe/showbill/internal/domain"
	"github.com/marloe/showbill/internal/repository"
	"github.com/marloe/showbill/internal/session"
	"github.com/marloe/showbill/pkg/crypto"
)

// ErrInvalidCredentials is returned when a password does not match the stored
// hash. Unknown usernames surface as repository.ErrNotFound instead, because
// the web layer routes them to registration.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// Service handles authentication workflows.
type Service struct {
	users    repository.UserRepository
	sessions session.Store
	logger   *slog.Logger
}

// New constructs a Service.
func New(users repository.UserRepository, sessions session.Store, logger *slog.Logger) Service {
	return Service{users: users, sessions: sessions, logger: logger}
}

// Register creates a new account. Uniqueness of the username is decided by the
// store's unique index; a duplicate surfaces as repository.ErrDuplicateUsername.
func (s Service) Register(ctx context.Context, username, password string) (*domain.User, error) {
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login verifies credentials and opens a session. It returns the session token
// to bind to the response.
func (s Service) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, "", err
	}
	if err := crypto.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", ErrInvalidCredentials
	}
	token, err := s.sessions.Create(ctx, *user)
	if err != nil {
		return nil, "", err
	}
	s.logger.Info("user logged in", "user_id", user.ID)
	return user, token, nil
}

// Authorize resolves a session token to its user.
func (s Service) Authorize(ctx context.Context, token string) (*domain.User, error) {
	sess, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	return &sess.User, nil
}

// Logout destroys the session. Destruction failures are logged, not surfaced:
// the caller's view is always "no longer logged in".
func (s Service) Logout(ctx context.Context, token string) {
	if err := s.sessions.Destroy(ctx, token); err != nil {
		s.logger.Error("session destroy failed", "error", err)
	}
}
