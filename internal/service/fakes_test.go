package service_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/msomdec/userdesk/internal/domain"
	"github.com/msomdec/userdesk/internal/repository/sqlite"
)

// fakeDirectory is an in-memory domain.Directory with injectable failures.
type fakeDirectory struct {
	mu        sync.Mutex
	pages     map[int]domain.Page
	listErr   error
	updateErr error
	deleteErr error
	loginErr  error

	// onList runs before List returns, outside the fake's lock.
	onList func(page int)

	listCalls []int
	deleted   []int64
	updated   map[int64]domain.UserFields
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		pages:   make(map[int]domain.Page),
		updated: make(map[int64]domain.UserFields),
	}
}

func (f *fakeDirectory) List(ctx context.Context, page int) (domain.Page, error) {
	f.mu.Lock()
	f.listCalls = append(f.listCalls, page)
	p, err, hook := f.pages[page], f.listErr, f.onList
	f.mu.Unlock()

	if hook != nil {
		hook(page)
	}
	if err != nil {
		return domain.Page{}, err
	}
	p.Records = p.Records.Clone()
	return p, nil
}

func (f *fakeDirectory) Update(ctx context.Context, id int64, fields domain.UserFields) (domain.UserRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return domain.UserRecord{}, f.updateErr
	}
	f.updated[id] = fields
	return domain.UserRecord{ID: id, FirstName: fields.FirstName, LastName: fields.LastName, Email: fields.Email}, nil
}

func (f *fakeDirectory) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeDirectory) Login(ctx context.Context, email, password string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return "QpwL5tke4Pnpja7X4", nil
}

func (f *fakeDirectory) calls() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.listCalls...)
}

func newTestCache(t *testing.T) *sqlite.CacheStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db.Cache()
}

func newSessionCache(t *testing.T) *sqlite.CacheStore {
	t.Helper()
	cache := newTestCache(t)
	if err := cache.SetSession(context.Background(), true); err != nil {
		t.Fatalf("SetSession: %v", err)
	}
	return cache
}

func loadCache(t *testing.T, cache domain.CacheStore) domain.UserCollection {
	t.Helper()
	users, err := cache.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return users
}

func strPtr(s string) *string { return &s }

var (
	ann  = domain.UserRecord{ID: 1, FirstName: "Ann", LastName: "Lee", Email: "ann@example.com", AvatarURL: "https://example.com/1.jpg"}
	bob  = domain.UserRecord{ID: 2, FirstName: "Bob", LastName: "Marsh", Email: "bob@example.com", AvatarURL: "https://example.com/2.jpg"}
	cleo = domain.UserRecord{ID: 3, FirstName: "Cleo", LastName: "Annand", Email: "cleo@example.com", AvatarURL: "https://example.com/3.jpg"}
	dan  = domain.UserRecord{ID: 4, FirstName: "Dan", LastName: "Ortiz", Email: "dan@example.com", AvatarURL: "https://example.com/4.jpg"}
)
