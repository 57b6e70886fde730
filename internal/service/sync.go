package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/msomdec/userdesk/internal/domain"
)

// User-facing messages produced by the list screen.
const (
	MsgFetchFailed  = "Failed to fetch users. Showing local data (if any)."
	MsgDeleteFailed = "Failed to delete user. Please try again."
	MsgDeleted      = "User deleted successfully!"
)

// ListView is a snapshot of the list screen for rendering.
type ListView struct {
	Users      domain.UserCollection
	Pagination domain.Pagination
	Phase      domain.Phase
	Status     domain.Status
	Notice     string
	UpdatedAt  time.Time
}

// Unauthenticated reports whether the screen must redirect to login.
func (v ListView) Unauthenticated() bool {
	return v.Phase == domain.PhaseUnauthenticated
}

// SyncEngine drives one list screen instance. It owns the in-memory user
// collection and pagination, and keeps the cache equal to the collection
// after every successful fetch, merge or delete.
//
// Remote calls run without holding the lock. Each fetch takes a new epoch;
// results that come back for an older epoch, or after Close, are dropped.
type SyncEngine struct {
	cache domain.CacheStore
	dir   domain.Directory

	mu        sync.Mutex
	users     domain.UserCollection
	pages     domain.Pagination
	phase     domain.Phase
	status    domain.Status
	notice    string
	updatedAt time.Time
	epoch     uint64
	closed    bool
}

// NewSyncEngine creates an engine in the Init phase.
func NewSyncEngine(cache domain.CacheStore, dir domain.Directory) *SyncEngine {
	return &SyncEngine{
		cache:  cache,
		dir:    dir,
		users:  domain.UserCollection{},
		pages:  domain.Pagination{CurrentPage: 1, TotalPages: 1},
		phase:  domain.PhaseInit,
		status: domain.Idle(),
	}
}

// Activate runs the mount sequence: session check, hydration from the cache
// (applying any update carried by env), then a fetch of the current page.
// Calling it on an engine that already left Init only returns the view.
func (e *SyncEngine) Activate(ctx context.Context, env *domain.Envelope) ListView {
	e.mu.Lock()
	if e.phase != domain.PhaseInit || e.closed {
		defer e.mu.Unlock()
		return e.viewLocked()
	}
	e.mu.Unlock()

	present, err := e.cache.HasSession(ctx)
	if err != nil {
		slog.Error("read session flag", "error", err)
	}
	if !present {
		e.mu.Lock()
		e.phase = domain.PhaseUnauthenticated
		e.status = domain.Idle()
		e.mu.Unlock()
		return e.View()
	}

	e.hydrate(ctx, env.Take())
	e.fetch(ctx)
	return e.View()
}

func (e *SyncEngine) hydrate(ctx context.Context, msg *domain.NavigationMessage) {
	cached, err := e.cache.Load(ctx)
	if err != nil {
		slog.Error("load cached users", "error", err)
		cached = domain.UserCollection{}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}

	e.phase = domain.PhaseHydrating
	e.users = cached
	if msg == nil {
		return
	}
	if msg.SuccessMessage != "" {
		e.notice = msg.SuccessMessage
	}
	if msg.UpdatedUser != nil {
		e.mergeLocked(ctx, *msg.UpdatedUser)
	}
}

// fetch loads the current page. On failure the hydrated collection stays in
// place and the status carries the error.
func (e *SyncEngine) fetch(ctx context.Context) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.epoch++
	epoch := e.epoch
	page := e.pages.CurrentPage
	e.phase = domain.PhaseFetching
	e.status = domain.Loading()
	e.mu.Unlock()

	result, err := e.dir.List(ctx, page)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || epoch != e.epoch {
		slog.Debug("discard stale fetch", "page", page)
		return
	}

	e.phase = domain.PhaseReady
	if err != nil {
		slog.Warn("fetch users", "page", page, "error", err)
		e.status = domain.Failed(MsgFetchFailed)
		return
	}

	e.users = result.Records.Clone()
	e.pages.TotalPages = max(result.TotalPages, 1)
	e.status = domain.Ready()
	e.persistLocked(ctx)
}

// ChangePage moves to page n and fetches it. A page outside
// [1, TotalPages] re-fetches the current page instead.
func (e *SyncEngine) ChangePage(ctx context.Context, n int) ListView {
	e.mu.Lock()
	if !e.acceptingLocked() {
		defer e.mu.Unlock()
		return e.viewLocked()
	}
	if n >= 1 && n <= e.pages.TotalPages {
		e.pages.CurrentPage = n
	} else {
		slog.Debug("ignore invalid page", "page", n, "total_pages", e.pages.TotalPages)
	}
	e.mu.Unlock()

	e.fetch(ctx)
	return e.View()
}

// Delete removes a user remotely and then locally. A remote failure leaves
// the collection untouched and sets the error status.
func (e *SyncEngine) Delete(ctx context.Context, id int64) ListView {
	e.mu.Lock()
	if !e.acceptingLocked() {
		defer e.mu.Unlock()
		return e.viewLocked()
	}
	e.mu.Unlock()

	err := e.dir.Delete(ctx, id)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		slog.Debug("discard delete result after teardown", "id", id)
		return e.viewLocked()
	}
	if err != nil {
		slog.Warn("delete user", "id", id, "error", err)
		e.status = domain.Failed(MsgDeleteFailed)
		return e.viewLocked()
	}

	e.users, _ = e.users.Remove(id)
	e.updatedAt = time.Now()
	e.notice = MsgDeleted
	e.status = domain.Ready()
	e.persistLocked(ctx)
	return e.viewLocked()
}

// MergeUpdate applies an update made on another screen. Updates for users
// not on the current page are dropped.
func (e *SyncEngine) MergeUpdate(ctx context.Context, patch domain.UserPatch) ListView {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closed {
		e.mergeLocked(ctx, patch)
	}
	return e.viewLocked()
}

func (e *SyncEngine) mergeLocked(ctx context.Context, patch domain.UserPatch) {
	merged, ok := e.users.Merge(patch)
	if !ok {
		slog.Debug("drop update for user not on page", "id", patch.ID)
		return
	}
	e.users = merged
	e.updatedAt = time.Now()
	e.persistLocked(ctx)
}

// Search returns the users whose full name contains term, ignoring case.
func (e *SyncEngine) Search(term string) domain.UserCollection {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.users.Filter(term)
}

// Find returns the user with the given ID from the current page.
func (e *SyncEngine) Find(id int64) (domain.UserRecord, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.users.Find(id)
}

// View returns a snapshot of the screen state.
func (e *SyncEngine) View() ListView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewLocked()
}

// Close tears the engine down. Results of calls still in flight are ignored.
func (e *SyncEngine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.epoch++
}

func (e *SyncEngine) acceptingLocked() bool {
	return !e.closed && e.phase != domain.PhaseInit && e.phase != domain.PhaseUnauthenticated
}

func (e *SyncEngine) persistLocked(ctx context.Context) {
	if err := e.cache.Save(ctx, e.users); err != nil {
		slog.Error("persist users", "error", err)
	}
}

func (e *SyncEngine) viewLocked() ListView {
	return ListView{
		Users:      e.users.Clone(),
		Pagination: e.pages,
		Phase:      e.phase,
		Status:     e.status,
		Notice:     e.notice,
		UpdatedAt:  e.updatedAt,
	}
}
