package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// sqliteFileName is the database file created inside the cache directory.
const sqliteFileName = "dupespotter.db"

// SQLiteStore keeps bodies in a single SQLite database.
//
// Design decision: rows are keyed by the same md5 key as FileStore files and
// Put uses ON CONFLICT DO NOTHING, so both backends keep the first body for
// a URL. The pure-Go modernc driver keeps the binary free of cgo.
type SQLiteStore struct {
	db *sql.DB
	// dbPath is the database file inside the cache directory.
	dbPath string
	logger *slog.Logger
}

// SQLiteOptions configures SQLiteStore.
type SQLiteOptions struct {
	// CreateIfNotExists creates the directory and database when missing.
	CreateIfNotExists bool

	// EnableWAL switches the journal to write-ahead logging.
	EnableWAL bool
}

// DefaultSQLiteOptions returns options that create the database with WAL.
func DefaultSQLiteOptions() SQLiteOptions {
	return SQLiteOptions{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// OpenSQLite opens or creates the database in dir.
func OpenSQLite(dir string, sopts SQLiteOptions, opts ...Option) (*SQLiteStore, error) {
	dbPath := filepath.Join(dir, sqliteFileName)

	if !sopts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrStoreNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	// mode=rw refuses to create a missing file, mode=rwc creates it.
	dsn := dbPath + "?mode=rw"
	if sopts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite has a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	o := buildOptions(opts)
	s := &SQLiteStore{db: db, dbPath: dbPath, logger: o.logger}

	if sopts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// createTables creates the pages table and its index when missing.
func (s *SQLiteStore) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pages (
		key TEXT PRIMARY KEY,
		url TEXT NOT NULL,
		body BLOB NOT NULL,
		stored_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_pages_stored_at ON pages(stored_at);
	`
	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, rawURL string) ([]byte, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx, `SELECT body FROM pages WHERE key = ?`, Key(rawURL)).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, rawURL)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached body: %w", err)
	}
	if body == nil {
		body = []byte{}
	}
	return body, nil
}

// Put implements Store. An existing row for the URL is left untouched.
func (s *SQLiteStore) Put(ctx context.Context, rawURL string, body []byte) error {
	if body == nil {
		body = []byte{}
	}
	query := `
	INSERT INTO pages (key, url, body)
	VALUES (?, ?, ?)
	ON CONFLICT(key) DO NOTHING
	`
	res, err := s.db.ExecContext(ctx, query, Key(rawURL), rawURL, body)
	if err != nil {
		return fmt.Errorf("failed to store body: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		s.logger.Debug("body already cached", "url", rawURL)
		return nil
	}
	s.logger.Debug("cached body", "url", rawURL, "bytes", len(body))
	return nil
}

// List implements Store, oldest entries first.
func (s *SQLiteStore) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, url, length(body), stored_at FROM pages ORDER BY stored_at, key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cache: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e        Entry
			storedAt string
		)
		if err := rows.Scan(&e.Key, &e.URL, &e.Size, &storedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cache entry: %w", err)
		}
		e.StoredAt = parseTimestamp(storedAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list cache: %w", err)
	}
	return entries, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// timestampFormats are the forms SQLite and the driver use for DATETIME.
var timestampFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999",
}

// parseTimestamp returns the zero time when no format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
