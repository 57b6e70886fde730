package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/userdesk/internal/domain"
	"github.com/msomdec/userdesk/internal/service"
	"github.com/msomdec/userdesk/internal/view"
)

// AuthHandler handles the login screen and logout.
type AuthHandler struct {
	auth         *service.AuthService
	screens      *service.Screens
	limiter      *service.TokenBucket
	cookieSecure bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService, screens *service.Screens, limiter *service.TokenBucket, cookieSecure bool) *AuthHandler {
	return &AuthHandler{auth: auth, screens: screens, limiter: limiter, cookieSecure: cookieSecure}
}

// HandleLoginPage renders the login form.
// GET /login
func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	view.LoginPage("", "").Render(r.Context(), w)
}

// HandleLogin processes the login form.
// POST /login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	password := r.FormValue("password")

	if h.limiter != nil && !h.limiter.Allow(clientIP(r)) {
		w.WriteHeader(http.StatusTooManyRequests)
		view.LoginPage(email, "Too many login attempts. Please wait a moment.").Render(r.Context(), w)
		return
	}

	token, claims, err := h.auth.Login(r.Context(), email, password)
	if err != nil {
		var msg string
		status := http.StatusUnauthorized
		switch {
		case errors.Is(err, domain.ErrUnauthorized):
			msg = "Invalid email or password."
		case errors.Is(err, domain.ErrInvalidInput):
			msg = "Email and password are required."
			status = http.StatusUnprocessableEntity
		case errors.Is(err, domain.ErrNetwork):
			msg = "Login service unavailable. Please try again."
			status = http.StatusBadGateway
		default:
			slog.Error("login", "error", err)
			msg = "An unexpected error occurred. Please try again."
			status = http.StatusInternalServerError
		}
		w.WriteHeader(status)
		view.LoginPage(email, msg).Render(r.Context(), w)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(service.SessionTTL.Seconds()),
	})

	slog.Info("user logged in", "email", claims.Email, "session", claims.SessionID)
	http.Redirect(w, r, domain.PathUsers, http.StatusSeeOther)
}

// HandleLogout clears the session and the cached users.
// POST /logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if claims, ok := authenticateRequest(r, h.auth); ok {
		h.screens.Drop(claims.SessionID)
	}
	if err := h.auth.Logout(r.Context()); err != nil {
		slog.Error("logout", "error", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})

	http.Redirect(w, r, domain.PathLogin, http.StatusSeeOther)
}
