package index

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/seqdex/seqdex/internal/errors"
	"github.com/seqdex/seqdex/internal/store"
)

// Coordinator keeps the derived index structures consistent with the
// store. Every mutation runs store write plus index update under one
// write-lock scope, so a mutation that has returned is always visible
// to the next query and no reader ever observes a half-applied one.
//
// Recovery policy: if an incremental index update fails, the
// coordinator rebuilds from the store's full contents before the
// mutation returns; a failed rebuild escalates to a storage failure.
type Coordinator struct {
	mu      sync.RWMutex
	store   store.Store
	builder *Builder
	names   *store.NameIndex // optional, nil disables metadata search

	// epoch increments on every applied mutation; query caches key on
	// it so stale entries die with the epoch that produced them.
	epoch atomic.Uint64

	rebuilds singleflight.Group
}

// NewCoordinator wires a store and a builder together and performs the
// initial rebuild, which doubles as recovery after an unclean stop.
// names may be nil.
func NewCoordinator(ctx context.Context, st store.Store, builder *Builder, names *store.NameIndex) (*Coordinator, error) {
	c := &Coordinator{
		store:   st,
		builder: builder,
		names:   names,
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.rebuildLocked(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Create stores a new sequence and indexes it before returning.
func (c *Coordinator) Create(ctx context.Context, symbols string, meta store.Metadata) (*store.Sequence, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	seq, err := c.store.Create(ctx, symbols, meta)
	if err != nil {
		return nil, err
	}

	if err := c.builder.OnCreate(seq.ID, seq.Symbols); err != nil {
		if err := c.recoverLocked(ctx, err); err != nil {
			return nil, err
		}
	}
	c.indexNamesLocked(ctx, seq)
	c.epoch.Add(1)
	return seq, nil
}

// Get reads a sequence. Readers block until in-flight writes finish.
func (c *Coordinator) Get(ctx context.Context, id string) (*store.Sequence, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.Get(ctx, id)
}

// Update replaces a sequence's content and re-indexes exactly that
// sequence's contribution: old traces out, new traces in.
func (c *Coordinator) Update(ctx context.Context, id, symbols string, meta store.Metadata) (*store.Sequence, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	old, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	seq, err := c.store.Update(ctx, id, symbols, meta)
	if err != nil {
		return nil, err
	}

	if err := c.builder.OnUpdate(id, old.Symbols, seq.Symbols); err != nil {
		if err := c.recoverLocked(ctx, err); err != nil {
			return nil, err
		}
	}
	c.indexNamesLocked(ctx, seq)
	c.epoch.Add(1)
	return seq, nil
}

// Delete removes a sequence and purges all its index traces. After
// Delete returns, no query can return the id.
func (c *Coordinator) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	seq, err := c.store.Delete(ctx, id)
	if err != nil {
		return err
	}

	if err := c.builder.OnDelete(id, seq.Symbols); err != nil {
		if err := c.recoverLocked(ctx, err); err != nil {
			return err
		}
	}
	if c.names != nil {
		if err := c.names.Delete(ctx, id); err != nil {
			slog.Warn("name index delete failed",
				slog.String("id", id),
				slog.String("error", err.Error()))
		}
	}
	c.epoch.Add(1)
	return nil
}

// List pages through sequences in stable (creation) order.
func (c *Coordinator) List(ctx context.Context, cursor string, limit int) ([]*store.Sequence, string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.List(ctx, cursor, limit)
}

// Count returns the number of stored sequences.
func (c *Coordinator) Count(ctx context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.Count(ctx)
}

// FindByName searches sequence metadata (names, tags, descriptions).
// Returns an empty slice when the name index is disabled.
func (c *Coordinator) FindByName(ctx context.Context, query string, limit int) ([]store.NameMatch, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.names == nil {
		return []store.NameMatch{}, nil
	}
	return c.names.Search(ctx, query, limit)
}

// Read runs fn against the index under the read lock. fn must not
// retain the builder past its return.
func (c *Coordinator) Read(fn func(ix *Builder) error) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return fn(c.builder)
}

// Epoch returns the current mutation epoch.
func (c *Coordinator) Epoch() uint64 {
	return c.epoch.Load()
}

// Stats returns index statistics.
func (c *Coordinator) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.builder.Stats()
}

// Rebuild reconstructs the index from the store's full contents.
// Concurrent calls coalesce into a single rebuild.
func (c *Coordinator) Rebuild(ctx context.Context) error {
	_, err, _ := c.rebuilds.Do("rebuild", func() (any, error) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if err := c.rebuildLocked(ctx); err != nil {
			return nil, err
		}
		c.epoch.Add(1)
		return nil, nil
	})
	return err
}

// rebuildLocked loads the full snapshot and rebuilds all derived
// structures. Caller holds the write lock.
func (c *Coordinator) rebuildLocked(ctx context.Context) error {
	seqs, err := c.snapshotLocked(ctx)
	if err != nil {
		return err
	}

	if err := c.builder.Rebuild(seqs); err != nil {
		return errors.New(errors.ErrCodeRebuildFailed, "index rebuild failed", err)
	}

	if c.names != nil {
		if err := c.names.Index(ctx, seqs...); err != nil {
			slog.Warn("name index rebuild failed", slog.String("error", err.Error()))
		}
	}

	slog.Debug("index rebuilt", slog.Int("sequences", len(seqs)))
	return nil
}

// snapshotLocked pages the whole store into memory.
func (c *Coordinator) snapshotLocked(ctx context.Context) ([]*store.Sequence, error) {
	var seqs []*store.Sequence
	cursor := ""
	for {
		page, next, err := c.store.List(ctx, cursor, snapshotPageSize)
		if err != nil {
			return nil, err
		}
		seqs = append(seqs, page...)
		if next == "" {
			break
		}
		cursor = next
	}
	return seqs, nil
}

const snapshotPageSize = 1024

// recoverLocked handles a failed incremental index update: rebuild
// from the store once, escalating to a storage failure if the rebuild
// itself fails. Caller holds the write lock.
func (c *Coordinator) recoverLocked(ctx context.Context, cause error) error {
	slog.Warn("incremental index update failed, rebuilding",
		slog.String("error", cause.Error()))

	if err := c.rebuildLocked(ctx); err != nil {
		return errors.StorageFailure("index rebuild after inconsistency failed", err)
	}
	return nil
}

// indexNamesLocked upserts a sequence's metadata document, best-effort.
func (c *Coordinator) indexNamesLocked(ctx context.Context, seq *store.Sequence) {
	if c.names == nil {
		return
	}
	if err := c.names.Index(ctx, seq); err != nil {
		slog.Warn("name index update failed",
			slog.String("id", seq.ID),
			slog.String("error", err.Error()))
	}
}

// Close releases the store and the name index.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.store.Close()
	if c.names != nil {
		if nerr := c.names.Close(); nerr != nil && err == nil {
			err = nerr
		}
	}
	return err
}
