package watcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectBatch(t *testing.T, d *Debouncer) []Event {
	t.Helper()
	select {
	case batch := <-d.Output():
		return batch
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for debounced batch")
		return nil
	}
}

func TestDebouncer_EmitsAfterWindow(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	d.Add(Event{Path: "a.fasta", Op: OpCreate})

	batch := collectBatch(t, d)
	require.Len(t, batch, 1)
	assert.Equal(t, OpCreate, batch[0].Op)
}

func TestDebouncer_CoalescesSamePath(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	// A typical editor save: create followed by several writes
	d.Add(Event{Path: "a.fasta", Op: OpCreate})
	d.Add(Event{Path: "a.fasta", Op: OpModify})
	d.Add(Event{Path: "a.fasta", Op: OpModify})

	batch := collectBatch(t, d)
	require.Len(t, batch, 1)
	assert.Equal(t, OpCreate, batch[0].Op)
}

func TestDebouncer_CreateDeleteCancelsOut(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	d.Add(Event{Path: "tmp.fasta", Op: OpCreate})
	d.Add(Event{Path: "tmp.fasta", Op: OpDelete})
	d.Add(Event{Path: "keep.fasta", Op: OpCreate})

	batch := collectBatch(t, d)
	require.Len(t, batch, 1)
	assert.Equal(t, "keep.fasta", batch[0].Path)
}

func TestDebouncer_DeleteCreateBecomesModify(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	// Atomic replace: remove then recreate
	d.Add(Event{Path: "a.fasta", Op: OpDelete})
	d.Add(Event{Path: "a.fasta", Op: OpCreate})

	batch := collectBatch(t, d)
	require.Len(t, batch, 1)
	assert.Equal(t, OpModify, batch[0].Op)
}

func TestDebouncer_SeparatePathsStaySeparate(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	d.Add(Event{Path: "a.fasta", Op: OpModify})
	d.Add(Event{Path: "b.fasta", Op: OpDelete})

	batch := collectBatch(t, d)
	assert.Len(t, batch, 2)
}

func TestDebouncer_AddAfterStopIsNoop(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	d.Stop()
	d.Stop() // idempotent

	d.Add(Event{Path: "a.fasta", Op: OpCreate})

	_, open := <-d.Output()
	assert.False(t, open)
}
