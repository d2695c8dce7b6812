// Package auth holds the credential primitives: bcrypt password hashing and
// HS256 session tokens. It is a leaf package with no domain dependencies,
// used by internal/domain/auth and the API session middleware.
package auth

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ===== CONSTANTS =====

// BCryptCost is the bcrypt work factor.
const BCryptCost = 12

// DefaultSessionTTLHours is the session lifetime when JWT_EXPIRY is unset (7 days).
const DefaultSessionTTLHours = 168

const (
	envJWTSecret = "JWT_SECRET"
	envJWTExpiry = "JWT_EXPIRY"
)

// ErrEmptyToken is returned by ParseJWT for a blank token string.
var ErrEmptyToken = errors.New("token is empty")

// ===== ENVIRONMENT =====

// getJWTSecret reads JWT_SECRET. Panics if not set: the server must not
// start issuing sessions without a signing key.
func getJWTSecret() []byte {
	secret := os.Getenv(envJWTSecret)
	if secret == "" {
		panic(envJWTSecret + " environment variable not set, cannot sign sessions")
	}
	return []byte(secret)
}

// parseSessionTTL parses an hour count. Empty, invalid or non-positive
// values fall back to DefaultSessionTTLHours.
func parseSessionTTL(hoursStr string) time.Duration {
	hours, err := strconv.Atoi(hoursStr)
	if err != nil || hours <= 0 {
		return DefaultSessionTTLHours * time.Hour
	}
	return time.Duration(hours) * time.Hour
}

// SessionTTL returns the configured session lifetime (JWT_EXPIRY, in hours).
func SessionTTL() time.Duration {
	return parseSessionTTL(os.Getenv(envJWTExpiry))
}

// ===== BCRYPT =====

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BCryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches hash. Malformed hashes
// simply do not match.
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ===== JWT =====

// Claims identifies the user and the server-side session row backing the token.
type Claims struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// GenerateJWT signs a token for the given session, expiring at expiresAt.
func GenerateJWT(userID, sessionID string, expiresAt time.Time) (string, error) {
	now := time.Now()

	claims := &Claims{
		UserID:    userID,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        sessionID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(getJWTSecret())
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT: %w", err)
	}
	return signed, nil
}

// ParseJWT validates a token's signature and expiry and returns its claims.
func ParseJWT(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrEmptyToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Only HMAC; rejects "none" and asymmetric algorithm substitution.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return getJWTSecret(), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWT: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" || claims.SessionID == "" {
		return nil, fmt.Errorf("invalid JWT claims or signature")
	}
	return claims, nil
}
