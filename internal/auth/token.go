package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Identity is the authenticated principal attached to a request.
type Identity struct {
	UserID int64
	Role   string
}

// Claims is the JWT payload issued at sign-in. Subject carries the user id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 bearer credentials.
type Tokens struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption customizes a Tokens instance.
type TokenOption func(*Tokens)

// WithIssuer sets the iss claim on issued tokens.
func WithIssuer(issuer string) TokenOption {
	return func(t *Tokens) { t.issuer = issuer }
}

// WithTTL overrides the default token lifetime.
func WithTTL(ttl time.Duration) TokenOption {
	return func(t *Tokens) { t.ttl = ttl }
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) TokenOption {
	return func(t *Tokens) { t.now = now }
}

// NewTokens builds a token authority around the shared signing secret.
func NewTokens(secret string, opts ...TokenOption) (*Tokens, error) {
	if secret == "" {
		return nil, errors.New("auth: empty signing secret")
	}
	t := &Tokens{
		secret: []byte(secret),
		ttl:    15 * time.Minute,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// TTL reports the configured token lifetime.
func (t *Tokens) TTL() time.Duration { return t.ttl }

// Generate signs a credential for the given user. The returned expiry matches
// the exp claim embedded in the token.
func (t *Tokens) Generate(userID int64, role string) (string, time.Time, error) {
	now := t.now()
	expiresAt := now.Add(t.ttl)

	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify parses and validates a credential and returns the identity it
// carries. Every failure wraps ErrInvalidToken.
func (t *Tokens) Verify(credential string) (Identity, error) {
	if credential == "" {
		return Identity{}, ErrTokenMissing
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(credential, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Identity{}, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Identity{}, ErrBadSignature
		default:
			return Identity{}, ErrTokenMalformed
		}
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return Identity{}, ErrTokenMalformed
	}
	return Identity{UserID: userID, Role: claims.Role}, nil
}
