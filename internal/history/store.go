package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	mdwerror "github.com/msto63/spi/foundation/core/error"
	"github.com/msto63/spi/foundation/pascal"
	mdwinterp "github.com/msto63/spi/foundation/pascal/interpreter"
)

// Source identifies the shell that ran an input
type Source string

const (
	SourceCLI       Source = "cli"
	SourceREPL      Source = "repl"
	SourceWebsocket Source = "ws"
	SourceGRPC      Source = "grpc"
)

// Entry is one recorded evaluation
type Entry struct {
	ID        string              `json:"id" yaml:"id"`
	Timestamp time.Time           `json:"timestamp" yaml:"timestamp"`
	Source    Source              `json:"source" yaml:"source"`
	Mode      pascal.Mode         `json:"mode" yaml:"mode"`
	Input     string              `json:"input" yaml:"input"`
	OK        bool                `json:"ok" yaml:"ok"`
	Value     *int64              `json:"value,omitempty" yaml:"value,omitempty"`
	Bindings  []mdwinterp.Binding `json:"bindings,omitempty" yaml:"bindings,omitempty"`
	ErrorCode string              `json:"error_code,omitempty" yaml:"error_code,omitempty"`
	Error     string              `json:"error,omitempty" yaml:"error,omitempty"`
	Duration  time.Duration       `json:"duration_ns" yaml:"duration"`
}

// NewEntry builds an entry from the outcome of pascal.Engine.Execute
func NewEntry(source Source, mode pascal.Mode, input string, res *pascal.Result, err error) *Entry {
	entry := &Entry{
		Source: source,
		Mode:   mode,
		Input:  input,
		OK:     err == nil,
	}
	if err != nil {
		entry.ErrorCode = string(mdwerror.GetCode(err))
		entry.Error = err.Error()
		return entry
	}
	if res != nil {
		entry.Value = res.Value
		entry.Bindings = res.Bindings
		entry.Duration = res.Duration
	}
	return entry
}

// Recorder stores evaluations in the journal
type Recorder interface {
	Record(ctx context.Context, entry *Entry) error
}

// Filter defines criteria for listing entries
type Filter struct {
	Source     Source
	Mode       pascal.Mode
	FailedOnly bool
	Limit      int
}

const columns = `id, timestamp, source, mode, input, ok, value, bindings, error_code, error, duration_ns`

// Store persists evaluation entries in SQLite
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Config holds configuration for the store
type Config struct {
	Path string
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		Path: "./data/spi-history.db",
	}
}

// Open opens or creates the journal database
func Open(cfg Config) (*Store, error) {
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, storeError(err, "failed to create directory", "history.Open").
			WithDetail("path", dir)
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, storeError(err, "failed to open database", "history.Open")
	}

	store := &Store{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, storeError(err, "failed to initialize schema", "history.Open").
			WithDetail("path", cfg.Path)
	}

	return store, nil
}

// initSchema creates the necessary tables
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		timestamp DATETIME NOT NULL,
		source TEXT NOT NULL,
		mode TEXT NOT NULL,
		input TEXT NOT NULL,
		ok INTEGER NOT NULL,
		value INTEGER,
		bindings TEXT,
		error_code TEXT,
		error TEXT,
		duration_ns INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_runs_source ON runs(source);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Record stores an entry, assigning an ID and timestamp when missing
func (s *Store) Record(ctx context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	var bindingsJSON []byte
	if len(entry.Bindings) > 0 {
		var err error
		if bindingsJSON, err = json.Marshal(entry.Bindings); err != nil {
			return storeError(err, "failed to encode bindings", "history.Record")
		}
	}

	var value sql.NullInt64
	if entry.Value != nil {
		value = sql.NullInt64{Int64: *entry.Value, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, timestamp, source, mode, input, ok, value, bindings, error_code, error, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.Timestamp, string(entry.Source), string(entry.Mode), entry.Input, entry.OK,
		value, nullString(string(bindingsJSON)), nullString(entry.ErrorCode), nullString(entry.Error),
		int64(entry.Duration))
	if err != nil {
		return storeError(err, "failed to insert run", "history.Record")
	}

	return nil
}

// List returns entries matching filter, newest first
func (s *Store) List(ctx context.Context, filter Filter) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + columns + ` FROM runs WHERE 1=1`
	var args []interface{}

	if filter.Source != "" {
		query += " AND source = ?"
		args = append(args, string(filter.Source))
	}
	if filter.Mode != "" {
		query += " AND mode = ?"
		args = append(args, string(filter.Mode))
	}
	if filter.FailedOnly {
		query += " AND ok = 0"
	}

	query += " ORDER BY timestamp DESC, rowid DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeError(err, "failed to query runs", "history.List")
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError(err, "failed to read runs", "history.List")
	}

	return entries, nil
}

// Get returns a single entry by ID
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `SELECT `+columns+` FROM runs WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, mdwerror.Newf("run not found: %s", id).
			WithCode(mdwerror.CodeNotFound).
			WithOperation("history.Get").
			WithDetail("id", id)
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanEntry reads one row selected with columns
func scanEntry(row scanner) (*Entry, error) {
	var (
		entry        Entry
		source, mode string
		value        sql.NullInt64
		bindingsJSON sql.NullString
		errorCode    sql.NullString
		errorMessage sql.NullString
		durationNS   int64
	)

	if err := row.Scan(&entry.ID, &entry.Timestamp, &source, &mode, &entry.Input, &entry.OK,
		&value, &bindingsJSON, &errorCode, &errorMessage, &durationNS); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, storeError(err, "failed to scan run", "history.scan")
	}

	entry.Source = Source(source)
	entry.Mode = pascal.Mode(mode)
	entry.Duration = time.Duration(durationNS)
	if value.Valid {
		v := value.Int64
		entry.Value = &v
	}
	if bindingsJSON.Valid && bindingsJSON.String != "" {
		if err := json.Unmarshal([]byte(bindingsJSON.String), &entry.Bindings); err != nil {
			return nil, storeError(err, "failed to decode bindings", "history.scan").
				WithDetail("id", entry.ID)
		}
	}
	entry.ErrorCode = errorCode.String
	entry.Error = errorMessage.String

	return &entry, nil
}

// Count returns the number of recorded runs
func (s *Store) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&n); err != nil {
		return 0, storeError(err, "failed to count runs", "history.Count")
	}
	return n, nil
}

// Clear deletes all runs and returns how many were removed
func (s *Store) Clear(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM runs`)
	if err != nil {
		return 0, storeError(err, "failed to clear runs", "history.Clear")
	}
	return res.RowsAffected()
}

// Ping verifies the database connection
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return storeError(err, "history database unreachable", "history.Ping")
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func storeError(err error, message, op string) *mdwerror.Error {
	code := mdwerror.CodeDatabaseError
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		code = mdwerror.CodeCanceled
	}
	return mdwerror.Wrap(err, message).
		WithCode(code).
		WithOperation(op)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
