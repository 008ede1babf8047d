// Package auth issues and checks admin sessions.
//
// A session is an HS256 JWT whose subject is the user id and whose "role"
// claim is the user's role. The token travels in an HttpOnly cookie set by the
// login handlers; API clients may send it as a Bearer token instead.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	issuer = "portfolio"

	// DefaultSessionTTL is used when NewTokenService is given a zero TTL.
	DefaultSessionTTL = 24 * time.Hour
)

// TokenService signs and validates session tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService requires a secret of at least 16 bytes.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// TTL is how long issued tokens stay valid. Handlers use it for cookie MaxAge.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// Identity is what a valid token proves about its bearer.
type Identity struct {
	UserID string
	Role   string
}

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Generate signs a session token with the configured lifetime.
func (s *TokenService) Generate(userID, role string) (string, error) {
	return s.GenerateWithDuration(userID, role, s.ttl)
}

// GenerateWithDuration signs a token with an explicit lifetime. A negative d
// produces an already expired token, which tests rely on.
func (s *TokenService) GenerateWithDuration(userID, role string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Validate checks signature, algorithm, issuer and expiry.
func (s *TokenService) Validate(tokenStr string) (*Identity, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.New("auth: token expired")
		}
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, errors.New("auth: invalid token claims")
	}
	if c.Subject == "" {
		return nil, errors.New("auth: token has no subject")
	}

	return &Identity{UserID: c.Subject, Role: c.Role}, nil
}
