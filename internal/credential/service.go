package credential

import (
	"context"
	"strings"

	"shopauth.org/internal/ids"
)

// Service wraps a Store with normalization and password verification.
type Service struct {
	store Store
}

// NewService constructs a Service over the given store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create persists a new credential for the given user reference. The email
// must not already hold a credential; conflicts surface as ErrAlreadyExists.
func (s *Service) Create(ctx context.Context, userID, email, passwordHash string) (*Credential, error) {
	c := &Credential{
		ID:           ids.New(),
		UserID:       strings.TrimSpace(userID),
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		Active:       true,
	}
	if err := s.store.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// FindByEmail resolves the credential for an email.
func (s *Service) FindByEmail(ctx context.Context, email string) (*Credential, error) {
	return s.store.FindByEmail(ctx, NormalizeEmail(email))
}

// VerifyPassword resolves the credential by email and compares the raw
// password against the stored hash. A mismatch or an inactive credential
// returns false without an error; an absent credential propagates
// ErrNotFound for the caller to collapse at its boundary.
func (s *Service) VerifyPassword(ctx context.Context, rawPassword, email string) (bool, error) {
	c, err := s.store.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return false, err
	}
	if !c.Active {
		return false, nil
	}
	if err := VerifyPassword(c.PasswordHash, rawPassword); err != nil {
		return false, nil
	}
	return true, nil
}

// UpdatePassword overwrites the stored hash for an email. Idempotent.
func (s *Service) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	return s.store.UpdatePassword(ctx, NormalizeEmail(email), passwordHash)
}

// Deactivate soft-disables the credential without touching the identity.
func (s *Service) Deactivate(ctx context.Context, email string) error {
	return s.store.Deactivate(ctx, NormalizeEmail(email))
}

// NormalizeEmail lower-cases and trims the login key.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
