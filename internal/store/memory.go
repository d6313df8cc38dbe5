package store

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/seqdex/seqdex/internal/errors"
)

// MemoryStore keeps sequences in a map. It is the backend for tests and
// for `--storage memory` runs; contents are lost on exit.
type MemoryStore struct {
	mu      sync.RWMutex
	seqs    map[string]*Sequence
	entropy *ulid.MonotonicEntropy
}

// Verify interface implementation at compile time
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	source := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &MemoryStore{
		seqs:    make(map[string]*Sequence),
		entropy: ulid.Monotonic(source, 0),
	}
}

func (m *MemoryStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), m.entropy).String()
}

// Create assigns a fresh ULID and stores the record.
func (m *MemoryStore) Create(ctx context.Context, symbols string, meta Metadata) (*Sequence, error) {
	if err := validateSymbols(symbols); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	seq := &Sequence{
		ID:          m.newID(),
		Symbols:     symbols,
		Name:        meta.Name,
		Tags:        append([]string(nil), meta.Tags...),
		Description: meta.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.seqs[seq.ID] = seq
	return seq.clone(), nil
}

// Get returns the sequence with the given ID.
func (m *MemoryStore) Get(ctx context.Context, id string) (*Sequence, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seq, ok := m.seqs[id]
	if !ok {
		return nil, errors.NotFound(id)
	}
	return seq.clone(), nil
}

// Update replaces symbols and metadata in place.
func (m *MemoryStore) Update(ctx context.Context, id, symbols string, meta Metadata) (*Sequence, error) {
	if err := validateSymbols(symbols); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	seq, ok := m.seqs[id]
	if !ok {
		return nil, errors.NotFound(id)
	}

	seq.Symbols = symbols
	seq.Name = meta.Name
	seq.Tags = append([]string(nil), meta.Tags...)
	seq.Description = meta.Description
	seq.UpdatedAt = time.Now().UTC()
	return seq.clone(), nil
}

// Delete removes the record and returns it.
func (m *MemoryStore) Delete(ctx context.Context, id string) (*Sequence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seq, ok := m.seqs[id]
	if !ok {
		return nil, errors.NotFound(id)
	}
	delete(m.seqs, id)
	return seq, nil
}

// List pages through sequences in ascending ID order.
func (m *MemoryStore) List(ctx context.Context, cursor string, limit int) ([]*Sequence, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.seqs))
	for id := range m.seqs {
		if id > cursor {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	out := make([]*Sequence, len(ids))
	for i, id := range ids {
		out[i] = m.seqs[id].clone()
	}

	next := ""
	if limit > 0 && len(out) == limit {
		next = out[len(out)-1].ID
	}
	return out, next, nil
}

// Count returns the number of stored sequences.
func (m *MemoryStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.seqs), nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}
