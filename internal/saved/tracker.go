// Package saved tracks which search results the user has already saved.
package saved

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/lepinkainen/bookfinder/internal/book"
	apperrors "github.com/lepinkainen/bookfinder/internal/errors"
)

// Saver persists a book on behalf of the user identified by token.
type Saver interface {
	SaveBook(ctx context.Context, record book.Record, token string) error
}

// Authenticator reports whether the user holds a usable credential.
type Authenticator interface {
	IsLoggedIn() bool
	CurrentToken() (string, bool)
}

// IDStore is the durable home of the saved id set between sessions.
type IDStore interface {
	LoadSavedIDs(ctx context.Context) ([]string, error)
	PersistSavedIDs(ctx context.Context, ids []string) error
}

// Tracker holds the set of saved book ids for one session.
type Tracker struct {
	saver Saver
	auth  Authenticator

	mu  sync.RWMutex
	ids map[string]struct{}
}

// NewTracker creates a tracker seeded with ids.
func NewTracker(saver Saver, auth Authenticator, ids ...string) *Tracker {
	t := &Tracker{
		saver: saver,
		auth:  auth,
		ids:   make(map[string]struct{}, len(ids)),
	}
	for _, id := range ids {
		t.ids[id] = struct{}{}
	}
	return t
}

// Load creates a tracker seeded from store.
func Load(ctx context.Context, store IDStore, saver Saver, auth Authenticator) (*Tracker, error) {
	ids, err := store.LoadSavedIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load saved book ids: %w", err)
	}
	slog.Debug("Loaded saved book ids", "count", len(ids))
	return NewTracker(saver, auth, ids...), nil
}

// IsSaved reports whether bookID has been saved.
func (t *Tracker) IsSaved(bookID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.ids[bookID]
	return ok
}

// MarkSaved adds bookID to the set. Marking twice is harmless.
func (t *Tracker) MarkSaved(bookID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ids[bookID] = struct{}{}
}

// CanSave reports whether saving is offered at all: it needs a credential.
func (t *Tracker) CanSave() bool {
	if t.auth == nil || !t.auth.IsLoggedIn() {
		return false
	}
	_, ok := t.auth.CurrentToken()
	return ok
}

// Save persists record through the Saver and marks it saved on success.
// Without a credential it returns apperrors.ErrNotLoggedIn and never
// contacts the Saver. A record already saved is not sent again. Failures
// are logged and returned as *apperrors.SaveError; the set is unchanged.
func (t *Tracker) Save(ctx context.Context, record book.Record) error {
	if !t.CanSave() {
		slog.Debug("Save refused, not logged in", "book_id", record.BookID)
		return apperrors.ErrNotLoggedIn
	}
	token, _ := t.auth.CurrentToken()

	if t.IsSaved(record.BookID) {
		slog.Debug("Book already saved", "book_id", record.BookID)
		return nil
	}

	if err := t.saver.SaveBook(ctx, record, token); err != nil {
		saveErr := apperrors.NewSaveError(record.BookID, err)
		slog.Error("Failed to save book", "book_id", record.BookID, "title", record.Title, "error", err)
		return saveErr
	}

	t.MarkSaved(record.BookID)
	slog.Info("Saved book", "book_id", record.BookID, "title", record.Title)
	return nil
}

// IDs returns the saved ids, sorted.
func (t *Tracker) IDs() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := make([]string, 0, len(t.ids))
	for id := range t.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Persist writes the current id set to store. Called on teardown.
func (t *Tracker) Persist(ctx context.Context, store IDStore) error {
	ids := t.IDs()
	if err := store.PersistSavedIDs(ctx, ids); err != nil {
		return fmt.Errorf("failed to persist saved book ids: %w", err)
	}
	slog.Debug("Persisted saved book ids", "count", len(ids))
	return nil
}
