package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/artbattle/sms-marketing-backend/internal/auth"
)

var secret = []byte("test-secret")

type fakeAdminRepo struct {
	levels map[string]int
}

func (f *fakeAdminRepo) GetAdminLevel(userID string) (int, bool, error) {
	level, ok := f.levels[userID]
	return level, ok, nil
}

func newAuthenticator(levels map[string]int) *auth.Authenticator {
	return &auth.Authenticator{
		JWTSecret:  secret,
		CronSecret: "cron-secret",
		AdminRepo:  &fakeAdminRepo{levels: levels},
	}
}

func signedToken(t *testing.T, claims jwt.MapClaims, key []byte) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func requestWithToken(token string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return r
}

func TestRequireAdmin(t *testing.T) {
	a := newAuthenticator(map[string]int{"user-1": 1, "super-1": 10})

	userID, err := a.RequireAdmin(requestWithToken(signedToken(t, jwt.MapClaims{"sub": "user-1"}, secret)), auth.LevelAdmin)
	if err != nil {
		t.Fatalf("RequireAdmin failed for a valid admin: %v", err)
	}
	if userID != "user-1" {
		t.Errorf("userID = %q", userID)
	}

	// Level 1 is not enough for super-admin endpoints.
	_, err = a.RequireAdmin(requestWithToken(signedToken(t, jwt.MapClaims{"sub": "user-1"}, secret)), auth.LevelSuperAdmin)
	if auth.StatusFor(err) != http.StatusForbidden {
		t.Errorf("status = %d, want 403 for insufficient level", auth.StatusFor(err))
	}

	if _, err := a.RequireAdmin(requestWithToken(signedToken(t, jwt.MapClaims{"sub": "super-1"}, secret)), auth.LevelSuperAdmin); err != nil {
		t.Errorf("RequireAdmin failed for a super admin: %v", err)
	}
}

func TestRequireAdminRejectsBadTokens(t *testing.T) {
	a := newAuthenticator(map[string]int{"user-1": 1})

	cases := []struct {
		name  string
		token string
	}{
		{"missing token", ""},
		{"wrong key", signedToken(t, jwt.MapClaims{"sub": "user-1"}, []byte("other-secret"))},
		{"no subject", signedToken(t, jwt.MapClaims{}, secret)},
		{"expired", signedToken(t, jwt.MapClaims{"sub": "user-1", "exp": time.Now().Add(-time.Hour).Unix()}, secret)},
		{"garbage", "not.a.jwt"},
	}
	for _, tc := range cases {
		_, err := a.RequireAdmin(requestWithToken(tc.token), auth.LevelAdmin)
		if auth.StatusFor(err) != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", tc.name, auth.StatusFor(err))
		}
	}
}

func TestRequireAdminRejectsNonAdmins(t *testing.T) {
	a := newAuthenticator(nil)

	_, err := a.RequireAdmin(requestWithToken(signedToken(t, jwt.MapClaims{"sub": "stranger"}, secret)), auth.LevelAdmin)
	if auth.StatusFor(err) != http.StatusForbidden {
		t.Errorf("status = %d, want 403 for a user with no admin row", auth.StatusFor(err))
	}
}

func TestRequireCronSecret(t *testing.T) {
	a := newAuthenticator(nil)

	r := httptest.NewRequest(http.MethodPost, "/", nil)
	if err := a.RequireCronSecret(r); err == nil {
		t.Error("expected an error with no secret header")
	}

	r.Header.Set("X-Cron-Secret", "wrong")
	if err := a.RequireCronSecret(r); err == nil {
		t.Error("expected an error for a wrong secret")
	}

	r.Header.Set("X-Cron-Secret", "cron-secret")
	if err := a.RequireCronSecret(r); err != nil {
		t.Errorf("RequireCronSecret failed for the right secret: %v", err)
	}
}
