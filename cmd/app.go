package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/lepinkainen/bookfinder/internal/auth"
	"github.com/lepinkainen/bookfinder/internal/cache"
	"github.com/lepinkainen/bookfinder/internal/config"
	"github.com/lepinkainen/bookfinder/internal/datastore"
	"github.com/lepinkainen/bookfinder/internal/googlebooks"
	"github.com/lepinkainen/bookfinder/internal/ratelimit"
	"github.com/lepinkainen/bookfinder/internal/saved"
	"github.com/lepinkainen/bookfinder/internal/search"
)

// app holds the components shared by the commands.
type app struct {
	cfg     config.Config
	orch    *search.Orchestrator
	store   datastore.IDStore
	library *datastore.SQLiteStore
	tracker *saved.Tracker
	closers []func() error
}

var newCatalog = func(cfg config.Config) search.Fetcher {
	return googlebooks.NewClient(
		googlebooks.WithHTTPClient(&http.Client{Timeout: cfg.GoogleBooks.Timeout}),
		googlebooks.WithBaseURL(cfg.GoogleBooks.BaseURL),
		googlebooks.WithAPIKey(cfg.GoogleBooks.APIKey),
		googlebooks.WithMaxResults(cfg.GoogleBooks.MaxResults),
	)
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}
	a.orch = search.NewOrchestrator(
		newCatalog(cfg),
		cache.New(),
		ratelimit.NewInterval("googlebooks", cfg.Search.MinInterval),
	)

	store, err := datastore.Open(ctx, datastore.Options{
		Backend: cfg.Storage.Backend,
		DBFile:  cfg.Storage.DBFile,
		Redis: datastore.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Key:      cfg.Redis.Key,
		},
	})
	if err != nil {
		return nil, err
	}
	a.store = store
	a.closers = append(a.closers, store.Close)

	saver, err := a.saver(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	session, err := auth.Load(cfg.Auth.Token, cfg.Auth.TokenFile)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	if session.IsLoggedIn() {
		if profile, err := session.Profile(); err == nil {
			slog.Debug("Signed in", "user", profile.Username)
		}
	} else {
		slog.Debug("No valid account token, saving disabled")
	}

	a.tracker, err = saved.Load(ctx, store, saver, session)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

// saver picks the remote endpoint when configured and the local SQLite
// library otherwise.
func (a *app) saver(ctx context.Context) (saved.Saver, error) {
	if a.cfg.Save.Endpoint != "" {
		return datastore.NewGraphQLSaveClient(a.cfg.Save.Endpoint, ratelimit.New("save", a.cfg.Save.RPS))
	}

	library, err := a.localLibrary(ctx)
	if err != nil {
		return nil, err
	}
	return library, nil
}

// localLibrary returns the SQLite store holding saved books, opening one
// when saved ids live elsewhere.
func (a *app) localLibrary(ctx context.Context) (*datastore.SQLiteStore, error) {
	if a.library != nil {
		return a.library, nil
	}
	if sqlite, ok := a.store.(*datastore.SQLiteStore); ok {
		a.library = sqlite
		return sqlite, nil
	}

	library := datastore.NewSQLiteStore(a.cfg.Storage.DBFile)
	if err := library.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to open local library: %w", err)
	}
	a.library = library
	a.closers = append(a.closers, library.Close)
	return library, nil
}

// persist writes the saved ids back to the store.
func (a *app) persist(ctx context.Context) error {
	return a.tracker.Persist(ctx, a.store)
}

// clearSaved empties the saved id store and the local library, whichever
// backend holds the ids. It returns how many ids and books were removed.
func (a *app) clearSaved(ctx context.Context) (int, int64, error) {
	removedIDs := len(a.tracker.IDs())
	if err := a.store.ClearSavedIDs(ctx); err != nil {
		return 0, 0, err
	}

	library, err := a.localLibrary(ctx)
	if err != nil {
		return removedIDs, 0, err
	}
	removedBooks, err := library.ClearSavedBooks(ctx)
	if err != nil {
		return removedIDs, 0, err
	}
	return removedIDs, removedBooks, nil
}

// Close releases every opened store.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
