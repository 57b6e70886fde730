package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/msomdec/userdesk/internal/domain"
)

// Cache keys.
const (
	keyUsers      = "users"
	keySession    = "authToken"
	keyCredential = "credential"
)

// CacheStore implements domain.CacheStore on a SQLite key/value table.
type CacheStore struct {
	db *sql.DB
}

// NewCacheStore creates a new SQLite-backed CacheStore.
func NewCacheStore(db *DB) *CacheStore {
	return &CacheStore{db: db.SqlDB}
}

// cachedUser is the persisted shape of a user. It keeps the directory's
// field names so cached lists read the same as API payloads.
type cachedUser struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Avatar    string `json:"avatar"`
}

// Load returns the cached user list. A missing or unparsable entry yields an
// empty collection; only storage failures are returned as errors.
func (c *CacheStore) Load(ctx context.Context) (domain.UserCollection, error) {
	raw, ok, err := c.get(ctx, keyUsers)
	if err != nil {
		return domain.UserCollection{}, err
	}
	if !ok {
		return domain.UserCollection{}, nil
	}
	return decodeUsers(raw), nil
}

// decodeUsers parses a cached list. Entries whose fields have the wrong type
// are kept with whatever decoded; a document that is not a JSON array is
// discarded.
func decodeUsers(raw string) domain.UserCollection {
	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		slog.Debug("discard cached users", "error", fmt.Errorf("%w: %v", domain.ErrMalformedCache, err))
		return domain.UserCollection{}
	}

	users := make(domain.UserCollection, 0, len(entries))
	for _, entry := range entries {
		var cu cachedUser
		if err := json.Unmarshal(entry, &cu); err != nil {
			var typeErr *json.UnmarshalTypeError
			if !errors.As(err, &typeErr) {
				slog.Debug("discard cached users", "error", fmt.Errorf("%w: %v", domain.ErrMalformedCache, err))
				return domain.UserCollection{}
			}
		}
		users = append(users, domain.UserRecord{
			ID:        cu.ID,
			FirstName: cu.FirstName,
			LastName:  cu.LastName,
			Email:     cu.Email,
			AvatarURL: cu.Avatar,
		})
	}
	return users
}

// Save replaces the cached user list.
func (c *CacheStore) Save(ctx context.Context, users domain.UserCollection) error {
	entries := make([]cachedUser, len(users))
	for i, u := range users {
		entries[i] = cachedUser{
			ID:        u.ID,
			Email:     u.Email,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Avatar:    u.AvatarURL,
		}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}
	return c.put(ctx, keyUsers, string(data))
}

// HasSession reports whether the session flag is set.
func (c *CacheStore) HasSession(ctx context.Context) (bool, error) {
	v, ok, err := c.get(ctx, keySession)
	if err != nil {
		return false, err
	}
	return ok && v != "", nil
}

// SetSession sets or clears the session flag.
func (c *CacheStore) SetSession(ctx context.Context, present bool) error {
	if !present {
		return c.delete(ctx, keySession)
	}
	return c.put(ctx, keySession, "1")
}

// CredentialHash returns the stored credential hash, or "" if none.
func (c *CacheStore) CredentialHash(ctx context.Context) (string, error) {
	v, _, err := c.get(ctx, keyCredential)
	return v, err
}

// SetCredentialHash stores hash; an empty hash removes the entry.
func (c *CacheStore) SetCredentialHash(ctx context.Context, hash string) error {
	if hash == "" {
		return c.delete(ctx, keyCredential)
	}
	return c.put(ctx, keyCredential, hash)
}

func (c *CacheStore) get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := c.db.QueryRowContext(ctx,
		`SELECT value FROM cache_entries WHERE key = ?`, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("query cache entry %s: %w", key, err)
	}
	return value, true, nil
}

func (c *CacheStore) put(ctx context.Context, key, value string) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO cache_entries (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("write cache entry %s: %w", key, err)
	}
	return nil
}

func (c *CacheStore) delete(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete cache entry %s: %w", key, err)
	}
	return nil
}
