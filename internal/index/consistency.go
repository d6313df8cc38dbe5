package index

import (
	"context"
	"log/slog"
	"time"

	"github.com/seqdex/seqdex/internal/errors"
)

// InconsistencyType categorizes detected store/index mismatches.
type InconsistencyType int

const (
	// InconsistencyOrphan indicates an index entry whose sequence no
	// longer exists in the store.
	InconsistencyOrphan InconsistencyType = iota
	// InconsistencyMissing indicates a stored sequence absent from the
	// index.
	InconsistencyMissing
	// InconsistencyStale indicates an indexed content differing from
	// the stored content.
	InconsistencyStale
)

// String returns a human-readable description of the inconsistency type.
func (t InconsistencyType) String() string {
	switch t {
	case InconsistencyOrphan:
		return "orphan"
	case InconsistencyMissing:
		return "missing"
	case InconsistencyStale:
		return "stale"
	default:
		return "unknown"
	}
}

// Inconsistency represents a single detected issue.
type Inconsistency struct {
	Type InconsistencyType
	ID   string
}

// CheckResult contains the outcome of a consistency check.
type CheckResult struct {
	// Checked is the number of stored sequences verified.
	Checked int
	// Inconsistencies contains all detected issues.
	Inconsistencies []Inconsistency
	// Duration is how long the check took.
	Duration time.Duration
}

// Consistent reports whether no issues were found.
func (r *CheckResult) Consistent() bool {
	return len(r.Inconsistencies) == 0
}

// Verify compares the store (source of truth) against the index entry
// by entry: orphans, missing entries, and stale content.
func (c *Coordinator) Verify(ctx context.Context) (*CheckResult, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	start := time.Now()

	seqs, err := c.snapshotLocked(ctx)
	if err != nil {
		return nil, err
	}

	var issues []Inconsistency
	stored := make(map[string]string, len(seqs))
	for _, seq := range seqs {
		stored[seq.ID] = seq.Symbols

		if !c.builder.Contains(seq.ID) {
			issues = append(issues, Inconsistency{Type: InconsistencyMissing, ID: seq.ID})
			continue
		}
		ord := c.builder.ordByID[seq.ID]
		if c.builder.symByOrd[ord] != c.builder.Normalize(seq.Symbols) {
			issues = append(issues, Inconsistency{Type: InconsistencyStale, ID: seq.ID})
		}
	}

	for _, id := range c.builder.AllIDs() {
		if _, ok := stored[id]; !ok {
			issues = append(issues, Inconsistency{Type: InconsistencyOrphan, ID: id})
		}
	}

	return &CheckResult{
		Checked:         len(seqs),
		Inconsistencies: issues,
		Duration:        time.Since(start),
	}, nil
}

// QuickCheck only verifies that counts match across store and index.
func (c *Coordinator) QuickCheck(ctx context.Context) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	storeCount, err := c.store.Count(ctx)
	if err != nil {
		return false, err
	}

	indexCount := c.builder.Len()
	if storeCount != indexCount {
		slog.Debug("store/index count mismatch",
			slog.Int("store", storeCount),
			slog.Int("index", indexCount))
		return false, nil
	}
	return true, nil
}

// VerifyAndRepair runs Verify and, when issues are found, rebuilds the
// index from the store. Returns the pre-repair result.
func (c *Coordinator) VerifyAndRepair(ctx context.Context) (*CheckResult, error) {
	result, err := c.Verify(ctx)
	if err != nil {
		return nil, err
	}
	if result.Consistent() {
		return result, nil
	}

	slog.Warn("index inconsistent, rebuilding",
		slog.Int("issues", len(result.Inconsistencies)))

	if err := c.Rebuild(ctx); err != nil {
		return result, errors.StorageFailure("repair rebuild failed", err)
	}
	return result, nil
}
