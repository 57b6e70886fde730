package service

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/msomdec/userdesk/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// SessionTTL is the lifetime of a browser session token.
const SessionTTL = 24 * time.Hour

// Claims identifies an authenticated browser session.
type Claims struct {
	Email     string
	SessionID string
}

// AuthService handles login, logout and the browser session token.
//
// The directory's own token is only a presence flag: a successful login sets
// the session flag in the cache and remembers a bcrypt hash of the
// credentials so the same user can log in again while the directory is down.
type AuthService struct {
	dir        domain.Directory
	cache      domain.CacheStore
	jwtSecret  []byte
	bcryptCost int
}

// NewAuthService creates a new AuthService.
func NewAuthService(dir domain.Directory, cache domain.CacheStore, jwtSecret string, bcryptCost int) *AuthService {
	return &AuthService{
		dir:        dir,
		cache:      cache,
		jwtSecret:  []byte(jwtSecret),
		bcryptCost: bcryptCost,
	}
}

// Login verifies credentials against the directory, falling back to the
// cached credential hash when the directory is unreachable, and returns a
// signed session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, Claims, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", Claims{}, fmt.Errorf("%w: email and password are required", domain.ErrInvalidInput)
	}

	_, err := s.dir.Login(ctx, email, password)
	switch {
	case err == nil:
		s.rememberCredentials(ctx, email, password)
	case errors.Is(err, domain.ErrUnauthorized):
		return "", Claims{}, domain.ErrUnauthorized
	case errors.Is(err, domain.ErrNetwork):
		if !s.matchesCachedCredentials(ctx, email, password) {
			return "", Claims{}, fmt.Errorf("login: %w", err)
		}
		slog.Warn("directory unreachable, accepted cached credentials", "email", email)
	default:
		return "", Claims{}, fmt.Errorf("login: %w", err)
	}

	if err := s.cache.SetSession(ctx, true); err != nil {
		return "", Claims{}, fmt.Errorf("set session: %w", err)
	}

	claims := Claims{Email: email, SessionID: uuid.NewString()}
	token, err := s.generateJWT(claims)
	if err != nil {
		return "", Claims{}, fmt.Errorf("generate jwt: %w", err)
	}
	return token, claims, nil
}

// Logout clears the session flag and the cached user list.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.cache.SetSession(ctx, false); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	if err := s.cache.Save(ctx, domain.UserCollection{}); err != nil {
		return fmt.Errorf("clear cached users: %w", err)
	}
	return nil
}

// HasSession reports whether the session flag is set.
func (s *AuthService) HasSession(ctx context.Context) bool {
	present, err := s.cache.HasSession(ctx)
	if err != nil {
		slog.Error("read session flag", "error", err)
		return false
	}
	return present
}

// ValidateToken parses and validates a session token.
func (s *AuthService) ValidateToken(tokenString string) (Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return Claims{}, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Claims{}, domain.ErrUnauthorized
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return Claims{}, domain.ErrUnauthorized
	}
	sid, _ := claims["jti"].(string)
	if sid == "" {
		return Claims{}, domain.ErrUnauthorized
	}

	return Claims{Email: sub, SessionID: sid}, nil
}

func (s *AuthService) generateJWT(c Claims) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": c.Email,
		"jti": c.SessionID,
		"iat": now.Unix(),
		"exp": now.Add(SessionTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// credentialSecret digests email and password to a fixed-size input;
// bcrypt rejects anything longer than 72 bytes.
func credentialSecret(email, password string) []byte {
	sum := sha256.Sum256([]byte(password + "\x00" + strings.ToLower(email)))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

func (s *AuthService) rememberCredentials(ctx context.Context, email, password string) {
	hash, err := bcrypt.GenerateFromPassword(credentialSecret(email, password), s.bcryptCost)
	if err != nil {
		slog.Error("hash credentials", "error", err)
		return
	}
	if err := s.cache.SetCredentialHash(ctx, string(hash)); err != nil {
		slog.Error("store credential hash", "error", err)
	}
}

func (s *AuthService) matchesCachedCredentials(ctx context.Context, email, password string) bool {
	hash, err := s.cache.CredentialHash(ctx)
	if err != nil {
		slog.Error("read credential hash", "error", err)
		return false
	}
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), credentialSecret(email, password)) == nil
}
