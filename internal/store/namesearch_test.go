package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNameIndex(t *testing.T) *NameIndex {
	t.Helper()
	idx, err := NewNameIndex("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func TestNameIndex_IndexAndSearch(t *testing.T) {
	// Given: metadata for three sequences
	idx := newTestNameIndex(t)
	ctx := context.Background()

	err := idx.Index(ctx,
		&Sequence{ID: "1", Name: "promoter region", Tags: []string{"dna", "upstream"}},
		&Sequence{ID: "2", Name: "coding fragment", Tags: []string{"dna"}},
		&Sequence{ID: "3", Name: "control token", Description: "synthetic test input"},
	)
	require.NoError(t, err)

	// When: searching by name word
	matches, err := idx.Search(ctx, "promoter", 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "1", matches[0].ID)

	// And: searching by tag and description also hits
	matches, err = idx.Search(ctx, "dna", 10)
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	matches, err = idx.Search(ctx, "synthetic", 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "3", matches[0].ID)
}

func TestNameIndex_ReindexReplacesDocument(t *testing.T) {
	idx := newTestNameIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Index(ctx, &Sequence{ID: "1", Name: "alpha"}))
	require.NoError(t, idx.Index(ctx, &Sequence{ID: "1", Name: "beta"}))

	matches, err := idx.Search(ctx, "alpha", 10)
	require.NoError(t, err)
	assert.Empty(t, matches)

	matches, err = idx.Search(ctx, "beta", 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
}

func TestNameIndex_DeleteRemovesDocument(t *testing.T) {
	idx := newTestNameIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Index(ctx, &Sequence{ID: "1", Name: "alpha"}))
	require.NoError(t, idx.Delete(ctx, "1"))

	matches, err := idx.Search(ctx, "alpha", 10)
	require.NoError(t, err)
	assert.Empty(t, matches)

	n, err := idx.Count()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNameIndex_EmptyQueryReturnsNoMatches(t *testing.T) {
	idx := newTestNameIndex(t)

	matches, err := idx.Search(context.Background(), "   ", 10)
	require.NoError(t, err)
	assert.Empty(t, matches)
}
