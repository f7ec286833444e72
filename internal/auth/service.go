package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shopauth.org/internal/credential"
	"shopauth.org/internal/identity"
	"shopauth.org/internal/obs"
	"shopauth.org/internal/token"
)

// Service orchestrates login, registration, refresh and validation across
// the token codec, the local credential store and the remote identity
// provider. It keeps no per-request state; concurrent use is safe.
type Service struct {
	codec *token.Codec
	creds *credential.Service
	dir   identity.Resolver
}

// RegisterInput carries the registration fields. Phone is optional.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// NewService wires the orchestrator.
func NewService(codec *token.Codec, creds *credential.Service, dir identity.Resolver) *Service {
	return &Service{codec: codec, creds: creds, dir: dir}
}

// Login verifies the password against the local credential store, resolves
// the caller's identity for display fields and current roles, and issues a
// fresh token pair. A missing credential and a wrong password are the same
// error to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = credential.NormalizeEmail(email)
	if email == "" || password == "" {
		return Session{}, ErrInvalidCredentials
	}

	ok, err := s.creds.VerifyPassword(ctx, password, email)
	if err != nil {
		if errors.Is(err, credential.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return Session{}, ErrInvalidCredentials
	}

	// The caller proved who they are; if the profile is unreachable we
	// still refuse to issue tokens rather than guess at roles.
	id, err := s.dir.GetByEmail(ctx, email)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if !id.Active {
		return Session{}, ErrInvalidCredentials
	}

	return s.mint(id)
}

// Register creates the identity in the provider, then the credential in the
// local store, then issues a token pair. The email pre-check is best-effort;
// the store's unique constraint is the real guarantee, and its violation is
// reported the same way. If the credential write fails after the identity
// was created, the identity is deleted again so no orphan is left behind.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Session, error) {
	email := credential.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return Session{}, ErrInvalidCredentials
	}

	exists, err := s.dir.EmailExists(ctx, email)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if exists {
		return Session{}, ErrEmailTaken
	}

	created, err := s.dir.Create(ctx, identity.NewIdentity{
		Email:     email,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Phone:     strings.TrimSpace(in.Phone),
	})
	if err != nil {
		if errors.Is(err, identity.ErrConflict) {
			return Session{}, ErrEmailTaken
		}
		return Session{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	hash, err := credential.HashPassword(in.Password)
	if err != nil {
		s.compensate(ctx, created.ID, email)
		return Session{}, fmt.Errorf("hash password: %w", err)
	}

	if _, err := s.creds.Create(ctx, created.ID, email, hash); err != nil {
		s.compensate(ctx, created.ID, email)
		if errors.Is(err, credential.ErrAlreadyExists) {
			return Session{}, ErrEmailTaken
		}
		return Session{}, fmt.Errorf("create credential: %w", err)
	}

	return s.mint(created)
}

// Refresh exchanges a valid refresh token for a new access token carrying
// the identity's current roles. The original refresh token is echoed back
// unchanged; there is no rotation.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	claims, err := s.codec.Verify(refreshToken)
	if err != nil {
		return Session{}, ErrInvalidRefreshToken
	}

	id, err := s.dir.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return Session{}, ErrInvalidRefreshToken
		}
		return Session{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if !id.Active {
		return Session{}, ErrInvalidRefreshToken
	}

	access, _, err := s.codec.IssueAccess(id.Email, id.Roles)
	if err != nil {
		return Session{}, fmt.Errorf("issue access token: %w", err)
	}

	return Session{
		AccessToken:  access,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.codec.AccessTTL().Seconds()),
		User:         summarize(id),
	}, nil
}

// Validate reports whether the token verifies and has not expired. Every
// failure mode reduces to false; it never returns an error.
func (s *Service) Validate(tokenString string) bool {
	return s.codec.IsValid(tokenString)
}

// Authenticate verifies a bearer token and resolves the caller's identity,
// returning the request-scoped principal. Roles come from the provider's
// current answer, not from the token.
func (s *Service) Authenticate(ctx context.Context, tokenString string) (Principal, error) {
	claims, err := s.codec.Verify(tokenString)
	if err != nil {
		return Principal{}, err
	}
	id, err := s.dir.GetByEmail(ctx, claims.Subject)
	if err != nil {
		return Principal{}, err
	}
	if !id.Active {
		return Principal{}, identity.ErrNotFound
	}
	return Principal{UserID: id.ID, Email: id.Email, Roles: id.Roles}, nil
}

func (s *Service) mint(id *identity.Identity) (Session, error) {
	access, _, err := s.codec.IssueAccess(id.Email, id.Roles)
	if err != nil {
		return Session{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, _, err := s.codec.IssueRefresh(id.Email)
	if err != nil {
		return Session{}, fmt.Errorf("issue refresh token: %w", err)
	}
	return Session{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.codec.AccessTTL().Seconds()),
		User:         summarize(id),
	}, nil
}

// compensate undoes identity creation after a failed credential write. The
// delete is best-effort: the two stores cannot be made atomic, so a failure
// here is logged and the inconsistency surfaces in the provider's books.
func (s *Service) compensate(ctx context.Context, userID, email string) {
	err := s.dir.Delete(ctx, userID)
	entry := map[string]any{
		"ts":      time.Now().UTC().Format(time.RFC3339Nano),
		"level":   "warn",
		"msg":     "registration compensated: identity deleted after credential failure",
		"user_id": userID,
		"email":   email,
	}
	if err != nil {
		entry["level"] = "error"
		entry["msg"] = "registration compensation failed: orphaned identity remains"
		entry["error"] = err.Error()
	}
	obs.LogEvent(entry)
}

func summarize(id *identity.Identity) UserSummary {
	return UserSummary{
		ID:        id.ID,
		Email:     id.Email,
		FirstName: id.FirstName,
		LastName:  id.LastName,
		Roles:     append([]string(nil), id.Roles...),
	}
}
