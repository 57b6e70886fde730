package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/msomdec/userdesk/internal/domain"
	"github.com/msomdec/userdesk/internal/service"
	"github.com/msomdec/userdesk/internal/view"
)

// EditHandler serves the edit screen.
type EditHandler struct {
	screens *service.Screens
}

// NewEditHandler creates a new EditHandler.
func NewEditHandler(screens *service.Screens) *EditHandler {
	return &EditHandler{screens: screens}
}

// HandleShow mounts the edit screen from the record carried by navigation.
// Reloading the page keeps showing an edit screen that is already open.
// GET /edit/{id}
func (h *EditHandler) HandleShow(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		renderNotFound(w, r)
		return
	}
	claims, _ := ClaimsFromContext(r.Context())

	env := h.screens.TakeNavigation(claims.SessionID, domain.PathEdit)
	if env == nil {
		if edit, ok := h.screens.Edit(claims.SessionID, id); ok {
			view.EditPage(edit.View()).Render(r.Context(), w)
			return
		}
	}

	edit, err := h.screens.MountEdit(claims.SessionID, id, env)
	if err != nil {
		renderNotFound(w, r)
		return
	}
	view.EditPage(edit.View()).Render(r.Context(), w)
}

// HandleSubmit sends the edited fields and returns to the list screen.
// POST /edit/{id}
func (h *EditHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		renderNotFound(w, r)
		return
	}
	claims, _ := ClaimsFromContext(r.Context())

	edit, ok := h.screens.Edit(claims.SessionID, id)
	if !ok {
		renderNotFound(w, r)
		return
	}

	env, err := edit.Submit(r.Context(), domain.UserFields{
		FirstName: r.FormValue("first_name"),
		LastName:  r.FormValue("last_name"),
		Email:     r.FormValue("email"),
	})
	if err != nil {
		if errors.Is(err, service.ErrScreenClosed) {
			http.Redirect(w, r, domain.PathUsers, http.StatusSeeOther)
			return
		}
		if !errors.Is(err, domain.ErrNetwork) && !errors.Is(err, domain.ErrInvalidInput) {
			slog.Error("submit edit", "id", id, "error", err)
		}
		view.EditPage(edit.View()).Render(r.Context(), w)
		return
	}

	h.screens.Navigate(claims.SessionID, env)
	http.Redirect(w, r, domain.PathUsers, http.StatusSeeOther)
}

// HandleCancel returns to the list screen without carrying anything.
// POST /edit/{id}/cancel
func (h *EditHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, domain.PathUsers, http.StatusSeeOther)
}

func renderNotFound(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	view.NotFoundPage(service.MsgNoUser).Render(r.Context(), w)
}
