// Package store provides the canonical sequence records behind the
// search index: an in-memory store for tests and ephemeral use, and a
// SQLite store for durable data, plus the bleve name index and FASTA
// import/export helpers.
package store

import (
	"context"
	"time"

	"github.com/seqdex/seqdex/internal/errors"
)

// Sequence is a stored record: an ordered string of symbols plus
// optional naming metadata. ID is a ULID, immutable once assigned;
// ascending ID order is creation order.
type Sequence struct {
	ID          string
	Symbols     string
	Name        string
	Tags        []string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Metadata is the optional naming part of a sequence.
type Metadata struct {
	Name        string
	Tags        []string
	Description string
}

// Store persists sequences. Implementations must keep List order stable
// (ascending ID) so pagination is reproducible. Mutating calls validate
// input; the caller (the index coordinator) is responsible for keeping
// derived structures in step.
type Store interface {
	// Create assigns a fresh ID and stores the record.
	// Fails with ERR_402_EMPTY_SYMBOLS when symbols is empty.
	Create(ctx context.Context, symbols string, meta Metadata) (*Sequence, error)

	// Get returns the sequence with the given ID.
	// Fails with ERR_410_SEQUENCE_NOT_FOUND when absent.
	Get(ctx context.Context, id string) (*Sequence, error)

	// Update replaces symbols and metadata; the ID is unchanged.
	// Returns the updated record.
	Update(ctx context.Context, id, symbols string, meta Metadata) (*Sequence, error)

	// Delete removes the record and returns it, so callers can purge
	// index traces of the old content.
	Delete(ctx context.Context, id string) (*Sequence, error)

	// List returns up to limit sequences with ID greater than cursor,
	// in ascending ID order, plus the cursor for the next page.
	// An empty next cursor means the listing is exhausted.
	// limit <= 0 means no limit.
	List(ctx context.Context, cursor string, limit int) ([]*Sequence, string, error)

	// Count returns the number of stored sequences.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}

// validateSymbols enforces the non-empty symbols invariant.
func validateSymbols(symbols string) error {
	if symbols == "" {
		return errors.New(errors.ErrCodeEmptySymbols, "symbols must not be empty", nil)
	}
	return nil
}

// clone returns a copy so callers cannot mutate stored state.
func (s *Sequence) clone() *Sequence {
	cp := *s
	if s.Tags != nil {
		cp.Tags = append([]string(nil), s.Tags...)
	}
	return &cp
}
