package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/msomdec/userdesk/internal/domain"
	"github.com/msomdec/userdesk/internal/service"
)

const testJWTSecret = "test-secret-key-for-unit-tests-0123456789"

func newTestAuthService(t *testing.T) (*service.AuthService, *fakeDirectory, domain.CacheStore) {
	t.Helper()
	cache := newTestCache(t)
	dir := newFakeDirectory()
	// Use cost 4 for fast tests.
	return service.NewAuthService(dir, cache, testJWTSecret, 4), dir, cache
}

func TestAuthService_Login_Success(t *testing.T) {
	auth, _, cache := newTestAuthService(t)
	ctx := context.Background()

	token, claims, err := auth.Login(ctx, "eve.holt@reqres.in", "cityslicka")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" || claims.SessionID == "" {
		t.Fatalf("expected token and session id, got %q %+v", token, claims)
	}
	if !auth.HasSession(ctx) {
		t.Fatal("expected session flag to be set")
	}
	if hash, _ := cache.CredentialHash(ctx); hash == "" {
		t.Fatal("expected credential hash to be stored")
	}

	got, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if got != claims {
		t.Fatalf("expected %+v, got %+v", claims, got)
	}
}

func TestAuthService_Login_Rejected(t *testing.T) {
	auth, dir, _ := newTestAuthService(t)
	dir.loginErr = domain.ErrUnauthorized

	_, _, err := auth.Login(context.Background(), "eve.holt@reqres.in", "wrong")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if auth.HasSession(context.Background()) {
		t.Fatal("expected no session after rejected login")
	}
}

func TestAuthService_Login_EmptyFields(t *testing.T) {
	auth, _, _ := newTestAuthService(t)

	_, _, err := auth.Login(context.Background(), "  ", "")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAuthService_Login_OfflineFallback(t *testing.T) {
	auth, dir, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, _, err := auth.Login(ctx, "eve.holt@reqres.in", "cityslicka"); err != nil {
		t.Fatalf("online Login: %v", err)
	}
	if err := auth.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	dir.loginErr = domain.ErrNetwork

	if _, _, err := auth.Login(ctx, "eve.holt@reqres.in", "cityslicka"); err != nil {
		t.Fatalf("expected cached credentials to be accepted offline, got %v", err)
	}
	if !auth.HasSession(ctx) {
		t.Fatal("expected session after offline login")
	}

	_, _, err := auth.Login(ctx, "eve.holt@reqres.in", "guess")
	if !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("expected ErrNetwork for unknown offline credentials, got %v", err)
	}
}

func TestAuthService_Login_OfflineLongCredentials(t *testing.T) {
	auth, dir, cache := newTestAuthService(t)
	ctx := context.Background()

	email := strings.Repeat("a", 48) + "@example-domain.com"
	password := strings.Repeat("p", 40)

	if _, _, err := auth.Login(ctx, email, password); err != nil {
		t.Fatalf("online Login: %v", err)
	}
	if hash, _ := cache.CredentialHash(ctx); hash == "" {
		t.Fatal("expected credential hash to be stored for long credentials")
	}

	dir.loginErr = domain.ErrNetwork

	if _, _, err := auth.Login(ctx, email, password); err != nil {
		t.Fatalf("expected long cached credentials to be accepted offline, got %v", err)
	}
	// A different password sharing the first 72 bytes must not match.
	if _, _, err := auth.Login(ctx, email, password+"x"); !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("expected ErrNetwork for a different long password, got %v", err)
	}
}

func TestAuthService_Login_OfflineWithoutCache(t *testing.T) {
	auth, dir, _ := newTestAuthService(t)
	dir.loginErr = domain.ErrNetwork

	_, _, err := auth.Login(context.Background(), "eve.holt@reqres.in", "cityslicka")
	if !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
}

func TestAuthService_Logout(t *testing.T) {
	auth, _, cache := newTestAuthService(t)
	ctx := context.Background()

	if _, _, err := auth.Login(ctx, "eve.holt@reqres.in", "cityslicka"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := cache.Save(ctx, domain.UserCollection{ann}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := auth.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if auth.HasSession(ctx) {
		t.Fatal("expected session cleared")
	}
	if users := loadCache(t, cache); len(users) != 0 {
		t.Fatalf("expected cached users cleared, got %+v", users)
	}
}

func TestAuthService_ValidateToken_Invalid(t *testing.T) {
	auth, _, _ := newTestAuthService(t)

	token, _, err := auth.Login(context.Background(), "eve.holt@reqres.in", "cityslicka")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	other := service.NewAuthService(newFakeDirectory(), newTestCache(t), "another-secret-key-for-unit-tests-xyz", 4)

	tests := []struct {
		name  string
		auth  *service.AuthService
		token string
	}{
		{"garbage", auth, "invalid.jwt.token"},
		{"tampered", auth, tamperSignature(token)},
		{"wrong secret", other, token},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.auth.ValidateToken(tc.token); !errors.Is(err, domain.ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
		})
	}
}

// tamperSignature changes the first character of the signature segment.
func tamperSignature(token string) string {
	i := strings.LastIndex(token, ".") + 1
	c := byte('A')
	if token[i] == 'A' {
		c = 'B'
	}
	return token[:i] + string(c) + token[i+1:]
}
