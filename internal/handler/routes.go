package handler

import (
	"net/http"

	"github.com/msomdec/userdesk/internal/domain"
	"github.com/msomdec/userdesk/internal/service"
)

// Deps groups what the routes need.
type Deps struct {
	Auth         *service.AuthService
	Screens      *service.Screens
	Limiter      *service.TokenBucket
	DB           Pinger
	CookieSecure bool
}

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, d Deps) {
	authHandler := NewAuthHandler(d.Auth, d.Screens, d.Limiter, d.CookieSecure)
	usersHandler := NewUsersHandler(d.Screens)
	editHandler := NewEditHandler(d.Screens)

	protected := func(h http.HandlerFunc) http.Handler {
		return RequireSession(d.Auth, h)
	}

	mux.Handle("GET /healthz", HandleHealthz(d.DB))

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, domain.PathLogin, http.StatusFound)
	})
	mux.HandleFunc("GET /login", authHandler.HandleLoginPage)
	mux.HandleFunc("POST /login", authHandler.HandleLogin)
	mux.HandleFunc("POST /logout", authHandler.HandleLogout)

	mux.Handle("GET /users", protected(usersHandler.HandleList))
	mux.Handle("GET /users/current", protected(usersHandler.HandleCurrent))
	mux.Handle("GET /users/search", protected(usersHandler.HandleSearch))
	mux.Handle("POST /users/page", protected(usersHandler.HandlePage))
	mux.Handle("POST /users/{id}/delete", protected(usersHandler.HandleDelete))
	mux.Handle("POST /users/{id}/edit", protected(usersHandler.HandleEdit))

	mux.Handle("GET /edit/{id}", protected(editHandler.HandleShow))
	mux.Handle("POST /edit/{id}", protected(editHandler.HandleSubmit))
	mux.Handle("POST /edit/{id}/cancel", protected(editHandler.HandleCancel))
}
