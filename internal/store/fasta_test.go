package store

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFasta_MultiRecord(t *testing.T) {
	input := `>frag-1 sample fragment
ACGTAC
GGTT
>frag-2
TTACGG
`
	records, err := ParseFasta(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "frag-1 sample fragment", records[0].Header)
	assert.Equal(t, "ACGTACGGTT", records[0].Symbols)
	assert.Equal(t, "TTACGG", records[1].Symbols)

	meta := records[0].Meta()
	assert.Equal(t, "frag-1", meta.Name)
	assert.Equal(t, "sample fragment", meta.Description)
}

func TestParseFasta_SkipsEmptyRecords(t *testing.T) {
	input := ">empty\n>frag\nACGT\n"
	records, err := ParseFasta(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "frag", records[0].Header)
}

func TestWriteFasta_WrapsAndRoundTrips(t *testing.T) {
	long := strings.Repeat("ACGT", 40) // 160 symbols, forces wrapping
	seqs := []*Sequence{
		{ID: "01A", Name: "frag-1", Description: "long one", Symbols: long},
		{ID: "01B", Symbols: "TTACGG"}, // unnamed falls back to ID
	}

	var buf bytes.Buffer
	require.NoError(t, WriteFasta(&buf, seqs))

	out := buf.String()
	assert.Contains(t, out, ">frag-1 long one\n")
	assert.Contains(t, out, ">01B\n")
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, len(line), fastaLineWidth+1)
	}

	records, err := ParseFasta(&buf)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, long, records[0].Symbols)
	assert.Equal(t, "TTACGG", records[1].Symbols)
}

func TestFastaFiles_GzipRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.fasta.gz")
	seqs := []*Sequence{{ID: "01A", Name: "frag", Symbols: "ACGTAC"}}

	// When: writing through the gzip path
	w, closeW, err := CreateFasta(path)
	require.NoError(t, err)
	require.NoError(t, WriteFasta(w, seqs))
	require.NoError(t, closeW())

	// Then: reading decompresses transparently
	r, closeR, err := OpenFasta(path)
	require.NoError(t, err)
	defer func() { _ = closeR() }()

	records, err := ParseFasta(r)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ACGTAC", records[0].Symbols)
}
