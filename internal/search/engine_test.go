package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seqdex/seqdex/internal/config"
	seqerrors "github.com/seqdex/seqdex/internal/errors"
	"github.com/seqdex/seqdex/internal/index"
	"github.com/seqdex/seqdex/internal/store"
)

type fixture struct {
	coord  *index.Coordinator
	engine *Engine
	ids    map[string]string // content -> id
}

// newFixture stores the given sequences (k=3, case sensitive) and
// returns an engine over them.
func newFixture(t *testing.T, symbols ...string) *fixture {
	t.Helper()

	builder, err := index.NewBuilder(3, index.NewNormalizer(true))
	require.NoError(t, err)
	coord, err := index.NewCoordinator(context.Background(), store.NewMemoryStore(), builder, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = coord.Close() })

	ids := make(map[string]string, len(symbols))
	for _, s := range symbols {
		seq, err := coord.Create(context.Background(), s, store.Metadata{})
		require.NoError(t, err)
		ids[s] = seq.ID
	}

	engine, err := NewEngine(coord, config.Default().Search)
	require.NoError(t, err)
	return &fixture{coord: coord, engine: engine, ids: ids}
}

func resultIDs(results []Result) []string {
	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestParseMode(t *testing.T) {
	for _, valid := range []string{"exact", "contains", "fuzzy"} {
		mode, err := ParseMode(valid)
		require.NoError(t, err)
		assert.Equal(t, Mode(valid), mode)
	}

	_, err := ParseMode("regex")
	require.Error(t, err)
	assert.Equal(t, seqerrors.ErrCodeUnknownMode, seqerrors.GetCode(err))
}

func TestSearch_EmptyPatternIsInvalidInput(t *testing.T) {
	f := newFixture(t, "ACGT")

	_, err := f.engine.Search(context.Background(), "", ModeExact)
	assert.True(t, seqerrors.IsInvalidInput(err))
}

func TestSearch_SpecimenScenario(t *testing.T) {
	// Given: two sequences where only the first contains "ACG"
	f := newFixture(t, "ACGTAC", "TTCAGG")
	ctx := context.Background()
	id1 := f.ids["ACGTAC"]

	// When: contains "ACG"
	results, err := f.engine.Search(ctx, "ACG", ModeContains)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, id1, results[0].ID)
	assert.Equal(t, 1.0, results[0].Score)

	// When: exact "ACGTAC"
	results, err = f.engine.Search(ctx, "ACGTAC", ModeExact)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, id1, results[0].ID)
	assert.Equal(t, 1.0, results[0].Score)

	// When: id1 is deleted, the contains query returns nothing
	require.NoError(t, f.coord.Delete(ctx, id1))
	results, err = f.engine.Search(ctx, "ACG", ModeContains)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_ContainsReturnsEveryTrueMatch(t *testing.T) {
	// Both sequences truly contain "ACG": id1 at offset 0, id2 at
	// offset 2 inside "TTACGG".
	f := newFixture(t, "ACGTAC", "TTACGG")

	results, err := f.engine.Search(context.Background(), "ACG", ModeContains)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Equal scores, ascending-id order
	assert.Equal(t, []string{f.ids["ACGTAC"], f.ids["TTACGG"]}, resultIDs(results))
	assert.Equal(t, []Range{{Start: 0, End: 3}}, results[0].Highlights)
	assert.Equal(t, []Range{{Start: 2, End: 5}}, results[1].Highlights)

	// Deleting id1 leaves the other occurrence findable
	require.NoError(t, f.coord.Delete(context.Background(), f.ids["ACGTAC"]))
	results, err = f.engine.Search(context.Background(), "ACG", ModeContains)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, f.ids["TTACGG"], results[0].ID)
}

func TestSearch_ExactMissReturnsEmpty(t *testing.T) {
	f := newFixture(t, "ACGTAC")

	results, err := f.engine.Search(context.Background(), "ACGT", ModeExact)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_ContainsCountsOverlappingOccurrences(t *testing.T) {
	f := newFixture(t, "AAAA")

	results, err := f.engine.Search(context.Background(), "AAA", ModeContains)
	require.NoError(t, err)
	require.Len(t, results, 1)
	// AAA occurs at offsets 0 and 1
	assert.Equal(t, 2, results[0].Occurrences)
	assert.Equal(t, []Range{{Start: 0, End: 3}, {Start: 1, End: 4}}, results[0].Highlights)
}

func TestSearch_ContainsShortPatternLinearScan(t *testing.T) {
	// Pattern shorter than k has no indexed k-mers; the engine must
	// still find it by scanning.
	f := newFixture(t, "ACGTAC", "TTACGG", "GG")

	results, err := f.engine.Search(context.Background(), "GG", ModeContains)
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]string{f.ids["TTACGG"], f.ids["GG"]},
		resultIDs(results))
}

func TestSearch_FuzzyScoresAndThreshold(t *testing.T) {
	// ACGTAC vs ACGTAG: distance 1 over length 6 -> score ~0.833
	// ACGTAC vs TTACGG: well below the 0.5 default threshold
	f := newFixture(t, "ACGTAC", "TTACGG")

	results, err := f.engine.Search(context.Background(), "ACGTAG", ModeFuzzy)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, f.ids["ACGTAC"], results[0].ID)
	assert.Equal(t, 1, results[0].Distance)
	assert.InDelta(t, 5.0/6.0, results[0].Score, 1e-9)
}

func TestSearch_FuzzyShortPatternScansAll(t *testing.T) {
	// "AC" is shorter than k=3, so no indexed k-mer can prune for it;
	// the stored "ACG" must still be reachable (distance 1 over
	// length 3 scores ~0.67, above the 0.5 default threshold).
	f := newFixture(t, "ACG", "TTTTTT")

	results, err := f.engine.Search(context.Background(), "AC", ModeFuzzy)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, f.ids["ACG"], results[0].ID)
	assert.Equal(t, 1, results[0].Distance)
	assert.InDelta(t, 2.0/3.0, results[0].Score, 1e-9)
}

func TestSearch_FuzzyExactContentScoresOne(t *testing.T) {
	f := newFixture(t, "ACGTAC")

	results, err := f.engine.Search(context.Background(), "ACGTAC", ModeFuzzy)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1.0, results[0].Score)
	assert.Equal(t, 0, results[0].Distance)
}

func TestSearch_RankingIsScoreDescIDAsc(t *testing.T) {
	// Two sequences with identical content score identically; order
	// must fall back to ascending id.
	f := newFixture(t, "ACGTAC")
	ctx := context.Background()

	second, err := f.coord.Create(ctx, "ACGTAC", store.Metadata{})
	require.NoError(t, err)

	results, err := f.engine.Search(ctx, "ACGTAC", ModeExact)
	require.NoError(t, err)
	require.Len(t, results, 2)
	// ULIDs are lexicographically ordered by creation time
	assert.Equal(t, f.ids["ACGTAC"], results[0].ID)
	assert.Equal(t, second.ID, results[1].ID)

	// Fuzzy mixes scores: the closer sequence must rank first
	third, err := f.coord.Create(ctx, "ACGTAG", store.Metadata{})
	require.NoError(t, err)
	results, err = f.engine.Search(ctx, "ACGTAC", ModeFuzzy)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, []string{f.ids["ACGTAC"], second.ID, third.ID}, resultIDs(results))
}

func TestSearch_DeterministicAcrossCalls(t *testing.T) {
	f := newFixture(t, "ACGTAC", "TTACGG", "TACGTA")
	ctx := context.Background()

	first, err := f.engine.Search(ctx, "TAC", ModeContains)
	require.NoError(t, err)
	second, err := f.engine.Search(ctx, "TAC", ModeContains)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSearch_CacheInvalidatedByMutation(t *testing.T) {
	f := newFixture(t, "ACGTAC")
	ctx := context.Background()

	results, err := f.engine.Search(ctx, "ACG", ModeContains)
	require.NoError(t, err)
	require.Len(t, results, 1)

	// A mutation bumps the epoch, so the cached result must not leak
	require.NoError(t, f.coord.Delete(ctx, f.ids["ACGTAC"]))

	results, err = f.engine.Search(ctx, "ACG", ModeContains)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_CaseInsensitiveIndex(t *testing.T) {
	builder, err := index.NewBuilder(3, index.NewNormalizer(false))
	require.NoError(t, err)
	coord, err := index.NewCoordinator(context.Background(), store.NewMemoryStore(), builder, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = coord.Close() })

	seq, err := coord.Create(context.Background(), "AcGtAc", store.Metadata{})
	require.NoError(t, err)

	engine, err := NewEngine(coord, config.Default().Search)
	require.NoError(t, err)

	results, err := engine.Search(context.Background(), "acgtac", ModeExact)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, seq.ID, results[0].ID)
}

func TestNewEngine_ZeroCacheSizeDisablesCaching(t *testing.T) {
	f := newFixture(t, "ACGTAC")
	cfg := config.Default().Search
	cfg.CacheSize = 0

	engine, err := NewEngine(f.coord, cfg)
	require.NoError(t, err)
	assert.Nil(t, engine.cache)

	// Queries still work, every call hitting the index directly
	for range 2 {
		results, err := engine.Search(context.Background(), "ACG", ModeContains)
		require.NoError(t, err)
		require.Len(t, results, 1)
	}
}

func TestSearch_MaxResultsCap(t *testing.T) {
	f := newFixture(t, "ACGTA", "ACGTC", "ACGTG", "ACGTT")
	cfg := config.Default().Search
	cfg.MaxResults = 2

	engine, err := NewEngine(f.coord, cfg)
	require.NoError(t, err)

	results, err := engine.Search(context.Background(), "ACGT", ModeContains)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSnippet(t *testing.T) {
	out := Snippet("TTACGG", []Range{{Start: 2, End: 5}}, "[", "]")
	assert.Equal(t, "TT[ACG]G", out)

	assert.Equal(t, "TTACGG", Snippet("TTACGG", nil, "[", "]"))
}
