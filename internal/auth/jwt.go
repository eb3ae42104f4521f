// Package auth issues and verifies the bearer tokens handed out at login and
// hashes account passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/minisocial/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
)

// TokenTTL is the fixed lifetime of an issued token. There is no refresh.
const TokenTTL = 7 * 24 * time.Hour

// ErrInvalidToken covers missing, malformed, wrongly signed and expired tokens.
var ErrInvalidToken = errors.New("invalid token")

// TokenManager signs and parses HS256 tokens carrying a user id claim.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: TokenTTL}
}

// Generate returns a signed token for userID valid for TokenTTL.
func (m *TokenManager) Generate(userID string) (string, error) {
	now := time.Now()
	claims := &models.JwtCustomClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse validates tokenString and returns the user id it carries.
func (m *TokenManager) Parse(tokenString string) (string, error) {
	if tokenString == "" {
		return "", ErrInvalidToken
	}

	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" || claims.ExpiresAt == nil {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}
