package credential

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("credential: not found")
	ErrAlreadyExists = errors.New("credential: already exists")
)

// Credential binds an email and a user reference to a password hash. The
// user_id points at the record owned by the identity provider; it is not a
// foreign key because the two stores are independent.
type Credential struct {
	ID           string
	UserID       string
	Email        string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Store describes persistence operations for credentials. Uniqueness of
// email and user_id is enforced by the backing store, not by callers.
type Store interface {
	Create(ctx context.Context, c *Credential) error
	FindByEmail(ctx context.Context, email string) (*Credential, error)
	UpdatePassword(ctx context.Context, email, passwordHash string) error
	Deactivate(ctx context.Context, email string) error
}
