// internal/auth/auth.go
package auth

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/artbattle/sms-marketing-backend/internal/repository"
)

// Minimum privilege levels for admin endpoints.
const (
	LevelAdmin      = 1
	LevelSuperAdmin = 10
)

// Authenticator resolves bearer tokens to users and checks them against the
// admin-roles table. The dispatcher uses the cron secret path instead since
// it has no human caller.
type Authenticator struct {
	JWTSecret  []byte
	CronSecret string
	AdminRepo  repository.AdminRepositoryInterface
}

// ErrUnauthorized means the token was missing or invalid (401).
// ErrForbidden means the user lacks the required admin level (403).
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string { return e.Message }

func unauthorized(msg string) error { return &AuthError{Status: http.StatusUnauthorized, Message: msg} }
func forbidden(msg string) error    { return &AuthError{Status: http.StatusForbidden, Message: msg} }

// StatusFor maps an auth error to its HTTP status, defaulting to 401.
func StatusFor(err error) int {
	if ae, ok := err.(*AuthError); ok {
		return ae.Status
	}
	return http.StatusUnauthorized
}

// RequireAdmin verifies the Authorization bearer token and checks the
// resolved user against the admin table at or above minLevel. Runs before
// any data access on admin endpoints.
func (a *Authenticator) RequireAdmin(r *http.Request, minLevel int) (userID string, err error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", unauthorized("Authorization required")
	}
	raw := strings.TrimPrefix(header, "Bearer ")

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.JWTSecret, nil
	})
	if err != nil || !token.Valid {
		return "", unauthorized("Invalid authorization")
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", unauthorized("Invalid authorization")
	}

	level, ok, err := a.AdminRepo.GetAdminLevel(sub)
	if err != nil {
		return "", err
	}
	if !ok || level < minLevel {
		return "", forbidden("Admin access required")
	}
	return sub, nil
}

// RequireCronSecret authenticates scheduler-triggered requests via the
// X-Cron-Secret header.
func (a *Authenticator) RequireCronSecret(r *http.Request) error {
	secret := r.Header.Get("X-Cron-Secret")
	if secret == "" {
		return unauthorized("Missing X-Cron-Secret header")
	}
	if subtle.ConstantTimeCompare([]byte(secret), []byte(a.CronSecret)) != 1 {
		return unauthorized("Invalid X-Cron-Secret")
	}
	return nil
}
