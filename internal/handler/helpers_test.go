package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"slices"
	"strconv"
	"sync"
	"testing"

	"github.com/msomdec/userdesk/internal/directory"
	"github.com/msomdec/userdesk/internal/handler"
	"github.com/msomdec/userdesk/internal/repository/sqlite"
	"github.com/msomdec/userdesk/internal/service"
)

const testJWTSecret = "test-secret-for-handler-tests-0123456789"

type upstreamUser struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Avatar    string `json:"avatar"`
}

// fakeUpstream is a stateful stand-in for the reqres.in API.
type fakeUpstream struct {
	mu      sync.Mutex
	users   []upstreamUser
	perPage int
	down    bool
}

func (f *fakeUpstream) setDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = down
}

func (f *fakeUpstream) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /users", func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		page = max(page, 1)

		f.mu.Lock()
		defer f.mu.Unlock()
		start := min((page-1)*f.perPage, len(f.users))
		end := min(start+f.perPage, len(f.users))
		total := (len(f.users) + f.perPage - 1) / f.perPage
		json.NewEncoder(w).Encode(map[string]any{
			"page":        page,
			"total_pages": total,
			"data":        f.users[start:end],
		})
	})

	mux.HandleFunc("PUT /users/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)

		f.mu.Lock()
		defer f.mu.Unlock()
		for i := range f.users {
			if f.users[i].ID == id {
				f.users[i].FirstName = body["first_name"]
				f.users[i].LastName = body["last_name"]
				f.users[i].Email = body["email"]
			}
		}
		json.NewEncoder(w).Encode(body)
	})

	mux.HandleFunc("DELETE /users/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)

		f.mu.Lock()
		defer f.mu.Unlock()
		f.users = slices.DeleteFunc(f.users, func(u upstreamUser) bool { return u.ID == id })
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "eve.holt@reqres.in" || body["password"] != "cityslicka" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "user not found"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"token": "QpwL5tke4Pnpja7X4"})
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		down := f.down
		f.mu.Unlock()
		if down {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		mux.ServeHTTP(w, r)
	})
}

type testApp struct {
	srv      *httptest.Server
	upstream *fakeUpstream
	client   *http.Client
	db       *sqlite.DB
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	upstream := &fakeUpstream{
		perPage: 3,
		users: []upstreamUser{
			{ID: 1, Email: "george.bluth@reqres.in", FirstName: "George", LastName: "Bluth", Avatar: "https://reqres.in/img/faces/1-image.jpg"},
			{ID: 2, Email: "janet.weaver@reqres.in", FirstName: "Janet", LastName: "Weaver", Avatar: "https://reqres.in/img/faces/2-image.jpg"},
			{ID: 3, Email: "emma.wong@reqres.in", FirstName: "Emma", LastName: "Wong", Avatar: "https://reqres.in/img/faces/3-image.jpg"},
			{ID: 4, Email: "eve.holt@reqres.in", FirstName: "Eve", LastName: "Holt", Avatar: "https://reqres.in/img/faces/4-image.jpg"},
		},
	}
	upstreamSrv := httptest.NewServer(upstream.handler())
	t.Cleanup(upstreamSrv.Close)

	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	dir := directory.New(upstreamSrv.URL)
	cache := db.Cache()

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.Deps{
		Auth:    service.NewAuthService(dir, cache, testJWTSecret, 4),
		Screens: service.NewScreens(cache, dir),
		Limiter: service.NewTokenBucket(1, 20),
		DB:      db.SqlDB,
	})

	srv := httptest.NewServer(handler.SecurityHeaders(mux))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("create cookie jar: %v", err)
	}
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse // don't follow redirects automatically
		},
	}

	return &testApp{srv: srv, upstream: upstream, client: client, db: db}
}
