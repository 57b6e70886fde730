package handler

import (
	"context"
	"net"
	"net/http"

	"github.com/msomdec/userdesk/internal/service"
	"github.com/starfederation/datastar-go/datastar"
)

type contextKey string

const claimsContextKey contextKey = "claims"

const authCookieName = "auth_token"

// ClaimsFromContext extracts the authenticated session from the request context.
func ClaimsFromContext(ctx context.Context) (service.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(service.Claims)
	return claims, ok
}

// RequireSession protects the user screens. It needs a valid auth_token
// cookie and the session flag in the cache; otherwise the browser is sent
// to the login screen.
func RequireSession(auth *service.AuthService, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := authenticateRequest(r, auth)
		if !ok || !auth.HasSession(r.Context()) {
			redirect(w, r, "/login")
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func authenticateRequest(r *http.Request, auth *service.AuthService) (service.Claims, bool) {
	cookie, err := r.Cookie(authCookieName)
	if err != nil {
		return service.Claims{}, false
	}
	claims, err := auth.ValidateToken(cookie.Value)
	if err != nil {
		return service.Claims{}, false
	}
	return claims, true
}

// redirect sends the browser to path. Datastar requests get an SSE redirect
// since they cannot follow an HTTP one.
func redirect(w http.ResponseWriter, r *http.Request, path string) {
	if r.Header.Get("Datastar-Request") == "true" {
		sse := datastar.NewSSE(w, r)
		sse.Redirect(path)
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// SecurityHeaders sets conservative browser security headers on every response.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "same-origin")
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
