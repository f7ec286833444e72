package token

import (
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Verification failures, most specific first. Signature errors take
// precedence over expiry: an expired-but-forged token reports a signature
// failure, not an expiry.
var (
	ErrMalformed        = errors.New("token: malformed")
	ErrSignatureInvalid = errors.New("token: signature invalid")
	ErrExpired          = errors.New("token: expired")
)

// Claims carries the verified token payload. Access tokens embed the role
// set; refresh tokens carry registered claims only.
type Claims struct {
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// Codec signs and verifies compact HS256 tokens with a static process-wide
// secret. Safe for unsynchronized concurrent use.
type Codec struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// Option configures Codec behavior.
type Option func(*Codec)

// WithIssuer sets the issuer claim stamped on and required of every token.
func WithIssuer(issuer string) Option {
	return func(c *Codec) {
		c.issuer = strings.TrimSpace(issuer)
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(c *Codec) {
		if fn != nil {
			c.now = fn
		}
	}
}

// NewCodec constructs a Codec. The secret and both lifetimes are required.
func NewCodec(secret string, accessTTL, refreshTTL time.Duration, opts ...Option) (*Codec, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("token: signing secret is required")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("token: lifetimes must be greater than zero")
	}
	c := &Codec{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// AccessTTL reports the configured access token lifetime.
func (c *Codec) AccessTTL() time.Duration { return c.accessTTL }

// IssueAccess signs a short-lived token carrying the subject and its roles.
func (c *Codec) IssueAccess(subject string, roles []string) (string, time.Time, error) {
	return c.issue(subject, dedupeRoles(roles), c.accessTTL)
}

// IssueRefresh signs a long-lived token carrying the subject only.
func (c *Codec) IssueRefresh(subject string) (string, time.Time, error) {
	return c.issue(subject, nil, c.refreshTTL)
}

func (c *Codec) issue(subject string, roles []string, ttl time.Duration) (string, time.Time, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", time.Time{}, errors.New("token: subject is required")
	}

	now := c.now().UTC()
	exp := now.Add(ttl)
	claims := Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify checks the signature and claims of a compact token and returns its
// payload. Failures map onto ErrMalformed, ErrSignatureInvalid or ErrExpired.
func (c *Codec) Verify(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrMalformed
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return c.now().UTC() }),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	}, opts...)
	if err != nil {
		return nil, translateJWTError(err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrMalformed
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrMalformed
	}
	claims.Roles = dedupeRoles(claims.Roles)
	return claims, nil
}

// IsValid reports whether the token verifies and has not expired. It never
// propagates an error.
func (c *Codec) IsValid(raw string) bool {
	_, err := c.Verify(raw)
	return err == nil
}

// IsValidForSubject additionally checks that the token was issued for the
// expected subject. The comparison is constant-time.
func (c *Codec) IsValidForSubject(raw, subject string) bool {
	claims, err := c.Verify(raw)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(claims.Subject), []byte(subject)) == 1
}

func translateJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrSignatureInvalid
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	default:
		return ErrMalformed
	}
}

func dedupeRoles(roles []string) []string {
	if len(roles) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(roles))
	var normalized []string
	for _, role := range roles {
		role = strings.TrimSpace(role)
		if role == "" {
			continue
		}
		if _, ok := seen[role]; ok {
			continue
		}
		seen[role] = struct{}{}
		normalized = append(normalized, role)
	}
	return normalized
}
