package auth

import "errors"

// User-visible error kinds. Internal distinctions (missing credential vs.
// wrong password, token malformed vs. expired) are collapsed into these at
// the service boundary so callers learn nothing they should not.
var (
	ErrInvalidCredentials  = errors.New("auth: invalid credentials")
	ErrEmailTaken          = errors.New("auth: email already registered")
	ErrInvalidRefreshToken = errors.New("auth: invalid refresh token")
	ErrProviderUnavailable = errors.New("auth: identity provider unavailable")
)

// Principal is the request-scoped authenticated caller. It is deliberately
// distinct from UserSummary, the outward response shape.
type Principal struct {
	UserID string
	Email  string
	Roles  []string
}

// HasRole checks whether the principal carries the given role.
func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// UserSummary is the user part of an authentication response.
type UserSummary struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Roles     []string
}

// Session is the outcome of a successful login, registration or refresh.
// Tokens are stateless; nothing about a Session is persisted.
type Session struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int64
	User         UserSummary
}
