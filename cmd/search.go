package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lepinkainen/bookfinder/internal/book"
	"github.com/lepinkainen/bookfinder/internal/search"
	"github.com/lepinkainen/bookfinder/internal/tui"
)

var (
	runSearchScreen           = tui.Run
	stdout          io.Writer = os.Stdout
)

// SearchCmd opens the interactive search screen
type SearchCmd struct {
	LogFile string `help:"Write logs to this file while the screen is open (defaults to log.file)"`
}

// QueryCmd runs one search cycle without the interactive screen
type QueryCmd struct {
	Query  []string `arg:"" help:"Search terms"`
	Format string   `short:"F" help:"Output format" enum:"text,json,yaml" default:"text"`
}

// SavedCmd groups the saved book commands
type SavedCmd struct {
	List  SavedListCmd  `cmd:"" default:"1" help:"List saved book ids"`
	Clear SavedClearCmd `cmd:"" help:"Remove every saved book id and locally saved book"`
}

// SavedListCmd prints saved book ids
type SavedListCmd struct {
	Format string `short:"F" help:"Output format" enum:"text,json,yaml" default:"text"`
}

// SavedClearCmd empties the saved book store
type SavedClearCmd struct{}

func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func (s *SearchCmd) Run() error {
	ctx, cancel := commandContext()
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	logFile := s.LogFile
	if logFile == "" {
		logFile = a.cfg.LogFile
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = f.Close() }()

	// The screen owns the terminal until it exits.
	initLogging(f, logLevel())
	defer initLogging(stdout, logLevel())

	runErr := runSearchScreen(ctx, tui.Options{
		Orchestrator:      a.orch,
		Tracker:           a.tracker,
		Debounce:          a.cfg.Search.Debounce,
		SurfaceSaveErrors: a.cfg.Save.SurfaceErrors,
	})

	// Persist even when the screen failed; saved ids must not be lost.
	if err := a.persist(context.Background()); err != nil {
		slog.Error("Failed to persist saved books", "error", err)
		if runErr == nil {
			runErr = err
		}
	}
	return runErr
}

func (q *QueryCmd) Run() error {
	ctx, cancel := commandContext()
	defer cancel()

	query := strings.Join(q.Query, " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("search terms are required")
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	out := a.orch.Search(ctx, query)
	switch out.State {
	case search.RateLimited, search.Failed:
		if out.Err == nil || out.Err.Error() == out.Message {
			return out.Err
		}
		return fmt.Errorf("%s: %w", out.Message, out.Err)
	}

	if q.Format == "text" {
		return writeRecordsText(stdout, out.Records, out.Message, a.tracker.IsSaved)
	}
	return writeFormatted(stdout, q.Format, out.Records)
}

func (l *SavedListCmd) Run() error {
	ctx, cancel := commandContext()
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ids := a.tracker.IDs()
	if l.Format != "text" {
		return writeFormatted(stdout, l.Format, ids)
	}

	library, err := a.localLibrary(ctx)
	if err != nil {
		return err
	}
	books, err := library.SavedBooks(ctx)
	if err != nil {
		return err
	}

	if len(ids) == 0 {
		_, err := fmt.Fprintln(stdout, "No saved books.")
		return err
	}
	for _, id := range ids {
		line := id
		if rec, ok := book.Find(books, id); ok {
			line = fmt.Sprintf("%s  %s (%s)", id, rec.Title, strings.Join(rec.Authors, ", "))
		}
		if _, err := fmt.Fprintln(stdout, line); err != nil {
			return err
		}
	}
	return nil
}

func (c *SavedClearCmd) Run() error {
	ctx, cancel := commandContext()
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	removedIDs, removedBooks, err := a.clearSaved(ctx)
	if err != nil {
		return err
	}
	slog.Info("Cleared saved books", "removed_ids", removedIDs, "removed_books", removedBooks)
	return nil
}

func writeRecordsText(w io.Writer, records []book.Record, message string, isSaved func(string) bool) error {
	if len(records) == 0 {
		if message == "" {
			message = search.NoResultsMessage
		}
		_, err := fmt.Fprintln(w, message)
		return err
	}

	if _, err := fmt.Fprintf(w, "Viewing %d results:\n", len(records)); err != nil {
		return err
	}
	for _, rec := range records {
		marker := " "
		if isSaved(rec.BookID) {
			marker = "*"
		}
		if _, err := fmt.Fprintf(w, "%s %s  %s\n    Authors: %s\n", marker, rec.BookID, rec.Title, strings.Join(rec.Authors, ", ")); err != nil {
			return err
		}
	}
	return nil
}

func writeFormatted(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}
