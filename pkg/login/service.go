package login

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// LoginService validates primary credentials against stored bcrypt hashes.
type LoginService struct {
	repo Repository
}

// NewLoginService creates a new login service.
func NewLoginService(repo Repository) *LoginService {
	return &LoginService{
		repo: repo,
	}
}

// Login validates a username/password pair. Both unknown-user and
// wrong-password return ErrInvalidCredentials.
func (s *LoginService) Login(ctx context.Context, username, password string) (User, error) {
	record, err := s.repo.FindUserByUsername(ctx, username)
	if err != nil {
		slog.Info("Login failed", "username", username)
		return User{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte(password)); err != nil {
		slog.Info("Login failed", "username", username)
		return User{}, ErrInvalidCredentials
	}

	return User{ID: record.ID, Username: record.Username}, nil
}

// FindUser resolves a username to its user identity without checking a
// password. Used when a suspended login resumes with a verification code.
func (s *LoginService) FindUser(ctx context.Context, username string) (User, error) {
	record, err := s.repo.FindUserByUsername(ctx, username)
	if err != nil {
		return User{}, err
	}
	return User{ID: record.ID, Username: record.Username}, nil
}

// CreateUser registers a new user with a bcrypt-hashed password and
// returns the created identity.
func (s *LoginService) CreateUser(ctx context.Context, username, password string) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	record := UserRecord{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
	}
	if err := s.repo.CreateUser(ctx, record); err != nil {
		return User{}, err
	}

	slog.Info("Created user", "username", username, "userId", record.ID)
	return User{ID: record.ID, Username: record.Username}, nil
}
