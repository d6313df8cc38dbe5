package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/seqdex/seqdex/internal/errors"
)

// SQLiteStore persists sequences in a single SQLite database with WAL
// mode. A flock on the data directory enforces the single-logical-index
// contract across processes: the first opener wins, later openers fail
// with ERR_203_LOCK_HELD.
type SQLiteStore struct {
	mu      sync.RWMutex
	db      *sql.DB
	path    string
	lock    *flock.Flock
	entropy *ulid.MonotonicEntropy
	closed  bool
}

// Verify interface implementation at compile time
var _ Store = (*SQLiteStore)(nil)

// validateSQLiteIntegrity checks the database before opening.
// Returns nil if valid or absent, an error describing corruption if not.
func validateSQLiteIntegrity(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil // Database doesn't exist, will be created
	}

	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return fmt.Errorf("cannot open for validation: %w", err)
	}
	defer db.Close()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("database corrupted: %s", result)
	}
	return nil
}

// NewSQLiteStore opens or creates the sequence database at
// <dataDir>/sequences.db and acquires the data-dir lock.
func NewSQLiteStore(dataDir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, errors.StorageFailure("create data dir", err)
	}

	lock := flock.New(filepath.Join(dataDir, ".seqdex.lock"))
	acquired, err := lock.TryLock()
	if err != nil {
		return nil, errors.StorageFailure("acquire data dir lock", err)
	}
	if !acquired {
		return nil, errors.Newf(errors.ErrCodeLockHeld,
			"data dir %s is in use by another seqdex process", dataDir)
	}

	path := filepath.Join(dataDir, "sequences.db")
	if validErr := validateSQLiteIntegrity(path); validErr != nil {
		_ = lock.Unlock()
		slog.Error("sequence database corrupted",
			slog.String("path", path),
			slog.String("error", validErr.Error()))
		return nil, errors.New(errors.ErrCodeStorageCorrupt, validErr.Error(), validErr)
	}

	// _busy_timeout handles lock contention gracefully
	dsn := path + "?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)&_pragma=synchronous(normal)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		_ = lock.Unlock()
		return nil, errors.StorageFailure("open database", err)
	}

	// Single writer to prevent lock contention
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &SQLiteStore{
		db:      db,
		path:    path,
		lock:    lock,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}

	if err := s.migrate(); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, errors.StorageFailure("migrate schema", err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sequences (
		id          TEXT PRIMARY KEY,
		symbols     TEXT NOT NULL,
		name        TEXT NOT NULL DEFAULT '',
		tags        TEXT NOT NULL DEFAULT '[]',
		description TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sequences_name ON sequences(name);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

// Create assigns a fresh ULID and inserts the record.
func (s *SQLiteStore) Create(ctx context.Context, symbols string, meta Metadata) (*Sequence, error) {
	if err := validateSymbols(symbols); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errors.StorageFailure("store is closed", nil)
	}

	now := time.Now().UTC()
	seq := &Sequence{
		ID:          s.newID(),
		Symbols:     symbols,
		Name:        meta.Name,
		Tags:        append([]string(nil), meta.Tags...),
		Description: meta.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	tags, err := json.Marshal(normalizeTags(seq.Tags))
	if err != nil {
		return nil, errors.StorageFailure("encode tags", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sequences (id, symbols, name, tags, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		seq.ID, seq.Symbols, seq.Name, string(tags), seq.Description,
		now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano))
	if err != nil {
		return nil, errors.StorageFailure("insert sequence", err)
	}
	return seq, nil
}

// Get returns the sequence with the given ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Sequence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, errors.StorageFailure("store is closed", nil)
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, symbols, name, tags, description, created_at, updated_at
		 FROM sequences WHERE id = ?`, id)
	return scanSequence(row, id)
}

// Update replaces symbols and metadata; the ID is unchanged.
func (s *SQLiteStore) Update(ctx context.Context, id, symbols string, meta Metadata) (*Sequence, error) {
	if err := validateSymbols(symbols); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errors.StorageFailure("store is closed", nil)
	}

	tags, err := json.Marshal(normalizeTags(meta.Tags))
	if err != nil {
		return nil, errors.StorageFailure("encode tags", err)
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE sequences SET symbols = ?, name = ?, tags = ?, description = ?, updated_at = ?
		 WHERE id = ?`,
		symbols, meta.Name, string(tags), meta.Description, now.Format(time.RFC3339Nano), id)
	if err != nil {
		return nil, errors.StorageFailure("update sequence", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, errors.StorageFailure("update sequence", err)
	}
	if n == 0 {
		return nil, errors.NotFound(id)
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, symbols, name, tags, description, created_at, updated_at
		 FROM sequences WHERE id = ?`, id)
	return scanSequence(row, id)
}

// Delete removes the record and returns it.
func (s *SQLiteStore) Delete(ctx context.Context, id string) (*Sequence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errors.StorageFailure("store is closed", nil)
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, symbols, name, tags, description, created_at, updated_at
		 FROM sequences WHERE id = ?`, id)
	seq, err := scanSequence(row, id)
	if err != nil {
		return nil, err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM sequences WHERE id = ?`, id); err != nil {
		return nil, errors.StorageFailure("delete sequence", err)
	}
	return seq, nil
}

// List pages through sequences in ascending ID order.
func (s *SQLiteStore) List(ctx context.Context, cursor string, limit int) ([]*Sequence, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, "", errors.StorageFailure("store is closed", nil)
	}

	query := `SELECT id, symbols, name, tags, description, created_at, updated_at
	          FROM sequences WHERE id > ? ORDER BY id ASC`
	args := []any{cursor}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, "", errors.StorageFailure("list sequences", err)
	}
	defer rows.Close()

	var out []*Sequence
	for rows.Next() {
		seq, err := scanSequenceRows(rows)
		if err != nil {
			return nil, "", err
		}
		out = append(out, seq)
	}
	if err := rows.Err(); err != nil {
		return nil, "", errors.StorageFailure("list sequences", err)
	}

	next := ""
	if limit > 0 && len(out) == limit {
		next = out[len(out)-1].ID
	}
	return out, next, nil
}

// Count returns the number of stored sequences.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, errors.StorageFailure("store is closed", nil)
	}

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sequences`).Scan(&n); err != nil {
		return 0, errors.StorageFailure("count sequences", err)
	}
	return n, nil
}

// Close closes the database and releases the data-dir lock.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	err := s.db.Close()
	if unlockErr := s.lock.Unlock(); unlockErr != nil && err == nil {
		err = unlockErr
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSequence(row *sql.Row, id string) (*Sequence, error) {
	seq, err := scanFrom(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound(id)
	}
	return seq, err
}

func scanSequenceRows(rows *sql.Rows) (*Sequence, error) {
	return scanFrom(rows)
}

func scanFrom(r rowScanner) (*Sequence, error) {
	var seq Sequence
	var tags, createdAt, updatedAt string

	err := r.Scan(&seq.ID, &seq.Symbols, &seq.Name, &tags, &seq.Description, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, errors.StorageFailure("scan sequence", err)
	}

	if err := json.Unmarshal([]byte(tags), &seq.Tags); err != nil {
		return nil, errors.StorageFailure("decode tags", err)
	}
	if seq.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, errors.StorageFailure("parse created_at", err)
	}
	if seq.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, errors.StorageFailure("parse updated_at", err)
	}
	return &seq, nil
}

func normalizeTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
