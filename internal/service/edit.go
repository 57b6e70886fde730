package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"sync"

	"github.com/msomdec/userdesk/internal/domain"
)

// User-facing messages produced by the edit screen.
const (
	MsgUpdateFailed = "Failed to update user. Please try again."
	MsgUpdated      = "User updated successfully!"
	MsgNoUser       = "No user found"
)

// ErrScreenClosed is returned when a screen finished an operation after it
// was torn down. The result has been discarded.
var ErrScreenClosed = errors.New("screen closed")

// EditView is a snapshot of the edit screen for rendering.
type EditView struct {
	Record domain.UserRecord
	Form   domain.UserFields
	Status domain.Status
}

// EditScreen holds the state of one edit form. The record context comes
// from the navigation that opened the screen; the cache is never touched
// here, the list screen merges the result.
type EditScreen struct {
	dir domain.Directory

	mu     sync.Mutex
	record domain.UserRecord
	form   domain.UserFields
	status domain.Status
	closed bool
}

// NewEditScreen opens the edit screen for user id. It fails with
// domain.ErrNotFound when env does not carry that user.
func NewEditScreen(dir domain.Directory, id int64, env *domain.Envelope) (*EditScreen, error) {
	msg := env.Take()
	if msg == nil || msg.User == nil || msg.User.ID != id {
		return nil, fmt.Errorf("%w: no record context for user %d", domain.ErrNotFound, id)
	}
	return &EditScreen{
		dir:    dir,
		record: *msg.User,
		form:   msg.User.Fields(),
		status: domain.Ready(),
	}, nil
}

// ID returns the ID of the user being edited.
func (s *EditScreen) ID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.ID
}

// Submit sends the edited fields to the directory, trimmed and with invalid
// UTF-8 replaced. On success it returns the envelope to deliver to the list
// screen. On failure the form keeps the values exactly as submitted and the
// status carries the error.
func (s *EditScreen) Submit(ctx context.Context, submitted domain.UserFields) (*domain.Envelope, error) {
	fields := normalizeFields(submitted)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrScreenClosed
	}
	s.form = submitted
	if reason := invalidReason(fields); reason != "" {
		s.status = domain.Failed(reason)
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, reason)
	}
	id := s.record.ID
	s.status = domain.Loading()
	s.mu.Unlock()

	_, err := s.dir.Update(ctx, id, fields)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		slog.Debug("discard update result after teardown", "id", id)
		return nil, ErrScreenClosed
	}
	if err != nil {
		slog.Warn("update user", "id", id, "error", err)
		s.status = domain.Failed(MsgUpdateFailed)
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}

	s.status = domain.Ready()
	patch := domain.PatchFromFields(id, fields)
	return domain.NewEnvelope(domain.PathUsers, domain.NavigationMessage{
		UpdatedUser:    &patch,
		SuccessMessage: MsgUpdated,
	}), nil
}

// View returns a snapshot of the form.
func (s *EditScreen) View() EditView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return EditView{Record: s.record, Form: s.form, Status: s.status}
}

// Close tears the screen down.
func (s *EditScreen) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func invalidReason(f domain.UserFields) string {
	if f.FirstName == "" || f.LastName == "" || f.Email == "" {
		return "First name, last name, and email are required."
	}
	// ParseAddress also accepts "Name <addr>"; only a bare address is valid.
	if addr, err := mail.ParseAddress(f.Email); err != nil || addr.Address != f.Email {
		return "Email address is not valid."
	}
	return ""
}

// normalizeFields makes the values safe to send and cache: the JSON encoder
// would otherwise rewrite invalid UTF-8, and the cached copy would drift from
// the merged one.
func normalizeFields(f domain.UserFields) domain.UserFields {
	clean := func(v string) string {
		return strings.TrimSpace(strings.ToValidUTF8(v, "\uFFFD"))
	}
	return domain.UserFields{
		FirstName: clean(f.FirstName),
		LastName:  clean(f.LastName),
		Email:     clean(f.Email),
	}
}
