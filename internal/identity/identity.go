package identity

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is a true negative lookup: the provider answered and has
	// no matching identity.
	ErrNotFound = errors.New("identity: not found")
	// ErrConflict is the provider refusing a create because the identity
	// already exists.
	ErrConflict = errors.New("identity: already exists")
	// ErrUnavailable covers transport failures and unexpected provider
	// responses.
	ErrUnavailable = errors.New("identity: provider unavailable")
)

// Identity is the profile record owned by the user directory service. The
// auth service holds only transient, request-scoped copies and never
// mutates one directly.
type Identity struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Active    bool     `json:"isActive"`
	Roles     []string `json:"roles"`
}

// NewIdentity is the creation payload sent during registration. Passwords
// deliberately never travel in it; credentials live in the auth service's
// own store.
type NewIdentity struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone,omitempty"`
}

// Resolver turns emails and ids into identities by calling the provider.
// Reads are safe to retry by an external policy layer; Create and Delete
// must not be retried automatically.
type Resolver interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	GetByEmail(ctx context.Context, email string) (*Identity, error)
	GetByID(ctx context.Context, id string) (*Identity, error)
	Create(ctx context.Context, in NewIdentity) (*Identity, error)
	Delete(ctx context.Context, id string) error
}
