package domain

import "context"

// Database defines lifecycle operations for the underlying database.
// Each implementation owns its own migration files and strategy.
type Database interface {
	Migrate(ctx context.Context) error
	Close() error
}

// CacheStore is the durable mirror of the last-known user list and the
// session-presence flag. Load never fails on malformed content; it degrades
// to an empty collection. Errors are reserved for storage failures.
type CacheStore interface {
	Load(ctx context.Context) (UserCollection, error)
	Save(ctx context.Context, users UserCollection) error
	HasSession(ctx context.Context) (bool, error)
	SetSession(ctx context.Context, present bool) error
	CredentialHash(ctx context.Context) (string, error)
	SetCredentialHash(ctx context.Context, hash string) error
}
