// Package datastore persists the saved book id set between sessions and
// sends saved books to the remote account service.
package datastore

import (
	"context"
	"fmt"
)

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// IDStore holds the saved book id set.
type IDStore interface {
	// LoadSavedIDs returns every saved id. An empty store yields an empty slice.
	LoadSavedIDs(ctx context.Context) ([]string, error)

	// PersistSavedIDs replaces the stored set with ids.
	PersistSavedIDs(ctx context.Context, ids []string) error

	// ClearSavedIDs removes every stored id.
	ClearSavedIDs(ctx context.Context) error

	// Close releases the underlying connection.
	Close() error
}

// Options selects and configures an IDStore backend.
type Options struct {
	Backend string
	DBFile  string
	Redis   RedisOptions
}

// Open connects the backend named by opts.Backend.
func Open(ctx context.Context, opts Options) (IDStore, error) {
	switch opts.Backend {
	case "", BackendSQLite:
		store := NewSQLiteStore(opts.DBFile)
		if err := store.Connect(ctx); err != nil {
			return nil, err
		}
		return store, nil
	case BackendRedis:
		store := NewRedisStore(opts.Redis)
		if err := store.Connect(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
