// Package login is a minimal username/password authenticator used as the
// primary-credential collaborator in front of the verification gate. Real
// deployments are expected to plug their own host authentication system
// into verification.PrimaryResult; this package exists so the server runs
// end to end out of the box.
package login

import (
	"context"
	"errors"
)

// ErrInvalidCredentials is returned when the username is unknown or the
// password does not match. Callers must not distinguish the two cases.
var ErrInvalidCredentials = errors.New("invalid username or password")

// User is the authenticated identity handed to the verification gate.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// UserRecord is a stored credential record.
type UserRecord struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
}

// Repository defines credential storage.
type Repository interface {
	// FindUserByUsername returns ErrInvalidCredentials for unknown users.
	FindUserByUsername(ctx context.Context, username string) (UserRecord, error)

	// CreateUser stores a new credential record.
	CreateUser(ctx context.Context, record UserRecord) error
}
