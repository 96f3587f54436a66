// Package profile stores per-user second-factor settings: the phone
// number codes are delivered to and whether SMS verification is enabled
// for the account.
package profile

import (
	"errors"
	"time"
)

// ErrProfileNotFound is returned when no profile exists for a user.
var ErrProfileNotFound = errors.New("profile not found")

// Profile holds the second-factor settings for one user. UserID is an
// opaque identifier owned by the host authentication system.
type Profile struct {
	UserID string `json:"user_id"`
	// Phone is stored normalized: digits only, country code included.
	Phone          string    `json:"phone"`
	Enabled        bool      `json:"enabled"`
	CreatedAt      time.Time `json:"created_at"`
	LastModifiedAt time.Time `json:"last_modified_at"`
}
