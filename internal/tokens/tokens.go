// Package tokens issues and verifies the HS256 bearer tokens handed to clients.
// Access and refresh tokens share one format and one secret; only their
// lifetime differs, and that is chosen by the caller.
package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalid          = errors.New("invalid token")
	ErrMalformed        = fmt.Errorf("%w: malformed", ErrInvalid)
	ErrInvalidSignature = fmt.Errorf("%w: signature mismatch", ErrInvalid)
	ErrExpired          = fmt.Errorf("%w: expired", ErrInvalid)
)

type Claims struct {
	jwt.RegisteredClaims
}

// UserID returns the subject the token was issued for.
func (c *Claims) UserID() string {
	return c.Subject
}

type Issued struct {
	Value     string
	ExpiresAt time.Time
}

type Manager struct {
	secret []byte
	now    func() time.Time
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

func NewManager(secret []byte, opts ...Option) (*Manager, error) {
	if len(secret) == 0 {
		return nil, errors.New("tokens: empty signing secret")
	}
	m := &Manager{
		secret: secret,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func (m *Manager) Issue(userID string, ttl time.Duration) (Issued, error) {
	if userID == "" {
		return Issued{}, errors.New("tokens: empty subject")
	}
	if ttl <= 0 {
		return Issued{}, fmt.Errorf("tokens: non-positive ttl %s", ttl)
	}

	now := m.now()
	exp := now.Add(ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return Issued{}, fmt.Errorf("tokens: sign: %w", err)
	}

	return Issued{Value: signed, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Verify checks signature and expiry and returns the embedded claims. Failures
// are one of ErrMalformed, ErrInvalidSignature or ErrExpired.
func (m *Manager) Verify(tokenStr string) (*Claims, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)

	switch {
	case err == nil && tkn.Valid:
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, ErrInvalidSignature
	default:
		return nil, ErrMalformed
	}

	if claims.Subject == "" {
		return nil, ErrMalformed
	}
	return &claims, nil
}
