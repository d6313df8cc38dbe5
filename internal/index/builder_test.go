package index

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	seqerrors "github.com/seqdex/seqdex/internal/errors"
	"github.com/seqdex/seqdex/internal/store"
)

func newTestBuilder(t *testing.T, k int, caseSensitive bool) *Builder {
	t.Helper()
	b, err := NewBuilder(k, NewNormalizer(caseSensitive))
	require.NoError(t, err)
	return b
}

func TestNewBuilder_RejectsInvalidK(t *testing.T) {
	_, err := NewBuilder(0, NewNormalizer(true))
	assert.Error(t, err)
}

func TestKmers_SplitsAndDeduplicates(t *testing.T) {
	b := newTestBuilder(t, 3, true)

	// "ACGACG" repeats ACG and CGA windows
	assert.Equal(t, []string{"ACG", "CGA", "GAC"}, b.Kmers("ACGACG"))
}

func TestKmers_ShortContentIsDegenerate(t *testing.T) {
	b := newTestBuilder(t, 3, true)

	// Shorter than k: whole content as a single token
	assert.Equal(t, []string{"AC"}, b.Kmers("AC"))
	assert.Empty(t, b.Kmers(""))
}

func TestNormalizer_CaseFolding(t *testing.T) {
	folded := NewNormalizer(false)
	strict := NewNormalizer(true)

	assert.Equal(t, folded.Normalize("ACGT"), folded.Normalize("acgt"))
	assert.NotEqual(t, strict.Normalize("ACGT"), strict.Normalize("acgt"))
}

func TestOnCreate_IndexesExactAndKmers(t *testing.T) {
	// Given: the spec scenario store {1: ACGTAC, 2: TTACGG}, k=3
	b := newTestBuilder(t, 3, true)
	require.NoError(t, b.OnCreate("1", "ACGTAC"))
	require.NoError(t, b.OnCreate("2", "TTACGG"))

	// Then: exact lookup finds exactly the matching id
	assert.Equal(t, []string{"1"}, b.ExactIDs("ACGTAC"))
	assert.Empty(t, b.ExactIDs("ACGT"))

	// And: shared k-mers land in both postings
	both := b.IntersectKmers([]string{"ACG"})
	assert.Equal(t, uint64(2), both.GetCardinality())

	// And: intersection filters ids lacking any pattern k-mer
	only1 := b.IntersectKmers([]string{"ACG", "CGT"})
	require.Equal(t, uint64(1), only1.GetCardinality())
	assert.Equal(t, "1", b.IDOf(only1.Minimum()))
}

func TestOnCreate_DuplicateContentSharesKey(t *testing.T) {
	b := newTestBuilder(t, 3, true)
	require.NoError(t, b.OnCreate("1", "ACGT"))
	require.NoError(t, b.OnCreate("2", "ACGT"))

	// Duplicates at the data level, deduplicated at the key level
	assert.Equal(t, []string{"1", "2"}, b.ExactIDs("ACGT"))
	assert.Equal(t, 1, b.Stats().ExactKeys)
}

func TestOnCreate_DoubleIndexIsInconsistency(t *testing.T) {
	b := newTestBuilder(t, 3, true)
	require.NoError(t, b.OnCreate("1", "ACGT"))

	err := b.OnCreate("1", "ACGT")
	assert.True(t, seqerrors.IsInconsistency(err))
}

func TestOnDelete_PurgesAllTraces(t *testing.T) {
	b := newTestBuilder(t, 3, true)
	require.NoError(t, b.OnCreate("1", "ACGTAC"))
	require.NoError(t, b.OnCreate("2", "TTACGG"))

	// When: sequence 1 is deleted
	require.NoError(t, b.OnDelete("1", "ACGTAC"))

	// Then: no posting references it anymore
	assert.Empty(t, b.ExactIDs("ACGTAC"))
	assert.True(t, b.IntersectKmers([]string{"CGT"}).IsEmpty())
	assert.Equal(t, []string{"2"}, b.AllIDs())

	// And: k-mers still shared with sequence 2 survive for it
	shared := b.IntersectKmers([]string{"ACG"})
	require.Equal(t, uint64(1), shared.GetCardinality())
	assert.Equal(t, "2", b.IDOf(shared.Minimum()))
}

func TestOnUpdate_RemovesOldTracesAddsNew(t *testing.T) {
	b := newTestBuilder(t, 3, true)
	require.NoError(t, b.OnCreate("1", "AAAA"))

	// When: content is replaced
	require.NoError(t, b.OnUpdate("1", "AAAA", "CCCC"))

	// Then: old content is unfindable, new content resolves
	assert.Empty(t, b.ExactIDs("AAAA"))
	assert.Equal(t, []string{"1"}, b.ExactIDs("CCCC"))
	assert.True(t, b.IntersectKmers([]string{"AAA"}).IsEmpty())
}

func TestCaseFolding_AppliesToKeys(t *testing.T) {
	b := newTestBuilder(t, 3, false)
	require.NoError(t, b.OnCreate("1", "AcGt"))

	assert.Equal(t, []string{"1"}, b.ExactIDs(b.Normalize("ACGT")))
	assert.False(t, b.IntersectKmers(b.Kmers(b.Normalize("acg"))).IsEmpty())
}

func TestRebuild_IsIdempotent(t *testing.T) {
	// Given: a snapshot
	seqs := []*store.Sequence{
		{ID: "1", Symbols: "ACGTAC"},
		{ID: "2", Symbols: "TTACGG"},
		{ID: "3", Symbols: "AC"},
	}
	b := newTestBuilder(t, 3, true)

	// When: rebuilding twice from the same snapshot
	require.NoError(t, b.Rebuild(seqs))
	var first bytes.Buffer
	require.NoError(t, b.Dump(&first))

	require.NoError(t, b.Rebuild(seqs))
	var second bytes.Buffer
	require.NoError(t, b.Dump(&second))

	// Then: index contents are byte-identical
	assert.Equal(t, first.String(), second.String())
}

func TestDump_GoldenFormat(t *testing.T) {
	// The dump format is the determinism contract; pin it
	b := newTestBuilder(t, 3, true)
	require.NoError(t, b.OnCreate("1", "ACGTAC"))
	require.NoError(t, b.OnCreate("2", "TTACGG"))

	var buf bytes.Buffer
	require.NoError(t, b.Dump(&buf))

	g := goldie.New(t, goldie.WithNameSuffix(".golden"))
	g.Assert(t, "dump", buf.Bytes())
}
