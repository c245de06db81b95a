package datastore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lepinkainen/bookfinder/internal/book"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS saved_book_ids (
	book_id TEXT PRIMARY KEY
);
CREATE TABLE IF NOT EXISTS saved_books (
	book_id     TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	authors     TEXT NOT NULL,
	description TEXT NOT NULL,
	image       TEXT NOT NULL,
	saved_at    TIMESTAMP NOT NULL
);`

// SQLiteStore keeps saved ids, and optionally the saved books themselves,
// in a local SQLite file.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLiteStore instance
func NewSQLiteStore(dbPath string) *SQLiteStore {
	return &SQLiteStore{
		dbPath: dbPath,
	}
}

// Connect opens the database and creates the tables if needed.
func (s *SQLiteStore) Connect(ctx context.Context) error {
	db, err := sql.Open("sqlite", s.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to create tables: %w", err)
	}
	s.db = db
	return nil
}

// LoadSavedIDs returns the stored ids in ascending order.
func (s *SQLiteStore) LoadSavedIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT book_id FROM saved_book_ids ORDER BY book_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query saved ids: %w", err)
	}
	defer func() { _ = rows.Close() }()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan saved id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// PersistSavedIDs replaces the stored ids in one transaction.
func (s *SQLiteStore) PersistSavedIDs(ctx context.Context, ids []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		// Rollback if we don't commit - ignore errors as they're expected if transaction was committed
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM saved_book_ids"); err != nil {
		return fmt.Errorf("failed to clear saved ids: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT OR IGNORE INTO saved_book_ids (book_id) VALUES (?)")
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, id); err != nil {
			return fmt.Errorf("failed to insert saved id %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ClearSavedIDs removes every stored id.
func (s *SQLiteStore) ClearSavedIDs(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM saved_book_ids"); err != nil {
		return fmt.Errorf("failed to clear saved book ids: %w", err)
	}
	return nil
}

// ClearSavedBooks removes every locally saved book and reports how many
// rows were deleted.
func (s *SQLiteStore) ClearSavedBooks(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM saved_books")
	if err != nil {
		return 0, fmt.Errorf("failed to clear saved books: %w", err)
	}
	return res.RowsAffected()
}

// SaveBook stores record locally. It is the Saver used when no remote save
// endpoint is configured; the token is not needed.
func (s *SQLiteStore) SaveBook(ctx context.Context, record book.Record, _ string) error {
	authors, err := json.Marshal(record.Authors)
	if err != nil {
		return fmt.Errorf("failed to encode authors: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO saved_books (book_id, title, authors, description, image, saved_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(book_id) DO UPDATE SET
			title = excluded.title,
			authors = excluded.authors,
			description = excluded.description,
			image = excluded.image`,
		record.BookID, record.Title, string(authors), record.Description, record.Image, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save book %s: %w", record.BookID, err)
	}
	return nil
}

// SavedBooks returns the locally saved books ordered by title.
func (s *SQLiteStore) SavedBooks(ctx context.Context) ([]book.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT book_id, title, authors, description, image FROM saved_books ORDER BY title, book_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query saved books: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := []book.Record{}
	for rows.Next() {
		var rec book.Record
		var authors string
		if err := rows.Scan(&rec.BookID, &rec.Title, &authors, &rec.Description, &rec.Image); err != nil {
			return nil, fmt.Errorf("failed to scan saved book: %w", err)
		}
		if err := json.Unmarshal([]byte(authors), &rec.Authors); err != nil {
			return nil, fmt.Errorf("failed to decode authors for %s: %w", rec.BookID, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
