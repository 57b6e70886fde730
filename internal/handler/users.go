package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/msomdec/userdesk/internal/domain"
	"github.com/msomdec/userdesk/internal/service"
	"github.com/msomdec/userdesk/internal/view"
	"github.com/starfederation/datastar-go/datastar"
)

// UsersHandler serves the list screen.
type UsersHandler struct {
	screens *service.Screens
}

// NewUsersHandler creates a new UsersHandler.
func NewUsersHandler(screens *service.Screens) *UsersHandler {
	return &UsersHandler{screens: screens}
}

// HandleList mounts a fresh list screen, applying any navigation state
// addressed to it.
// GET /users
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())

	env := h.screens.TakeNavigation(claims.SessionID, domain.PathUsers)
	engine := h.screens.MountList(claims.SessionID)
	v := engine.Activate(r.Context(), env)
	if v.Unauthenticated() {
		redirect(w, r, domain.PathLogin)
		return
	}
	view.UsersPage(v).Render(r.Context(), w)
}

// HandleCurrent re-renders the active list screen without remounting it.
// GET /users/current
func (h *UsersHandler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.activeEngine(w, r)
	if !ok {
		return
	}
	view.UsersPage(engine.View()).Render(r.Context(), w)
}

// HandleSearch patches the user grid with the users matching the search signal.
// GET /users/search
func (h *UsersHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	var signals struct {
		Search string `json:"search"`
	}
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	engine, ok := h.activeEngine(w, r)
	if !ok {
		return
	}

	matches := engine.Search(signals.Search)
	sse := datastar.NewSSE(w, r)
	sse.PatchElementTempl(view.UserGrid(matches, engine.View().UpdatedAt))
}

// HandlePage switches the list to another page.
// POST /users/page
// Form: page=N
func (h *UsersHandler) HandlePage(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.activeEngine(w, r)
	if !ok {
		return
	}
	// A malformed page number becomes 0, which the engine treats as a re-fetch.
	n, _ := strconv.Atoi(r.FormValue("page"))
	engine.ChangePage(r.Context(), n)
	http.Redirect(w, r, "/users/current", http.StatusSeeOther)
}

// HandleDelete deletes a user from the current page.
// POST /users/{id}/delete
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	engine, ok := h.activeEngine(w, r)
	if !ok {
		return
	}
	engine.Delete(r.Context(), id)
	http.Redirect(w, r, "/users/current", http.StatusSeeOther)
}

// HandleEdit navigates to the edit screen carrying the user's record.
// POST /users/{id}/edit
func (h *UsersHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	engine, ok := h.activeEngine(w, r)
	if !ok {
		return
	}

	claims, _ := ClaimsFromContext(r.Context())
	if u, found := engine.Find(id); found {
		h.screens.Navigate(claims.SessionID, domain.NewEnvelope(domain.PathEdit, domain.NavigationMessage{User: &u}))
	}
	http.Redirect(w, r, fmt.Sprintf("%s%d", domain.PathEdit, id), http.StatusSeeOther)
}

// activeEngine returns the session's list engine, or redirects to mount one.
func (h *UsersHandler) activeEngine(w http.ResponseWriter, r *http.Request) (*service.SyncEngine, bool) {
	claims, _ := ClaimsFromContext(r.Context())
	engine, ok := h.screens.List(claims.SessionID)
	if !ok {
		redirect(w, r, domain.PathUsers)
		return nil, false
	}
	return engine, true
}
