package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLI_ImportExport(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	fasta := filepath.Join(dir, "reads.fasta")
	require.NoError(t, os.WriteFile(fasta,
		[]byte(">alpha first read\nACGTAC\n>beta\nTTACGG\n"), 0o644))

	out, err := runCLI(t, "import", fasta)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 2 sequences")

	// Imported sequences are searchable; snippets render the
	// normalized (folded) form with the match bracketed
	out, err = runCLI(t, "search", "TTA", "--mode", "contains")
	require.NoError(t, err)
	assert.Contains(t, out, "[tta]cgg")

	// Metadata search finds the header name
	out, err = runCLI(t, "find", "alpha")
	require.NoError(t, err)
	assert.Contains(t, out, "alpha")

	// Export and re-import round-trips
	exported := filepath.Join(dir, "backup.fasta.gz")
	out, err = runCLI(t, "export", exported)
	require.NoError(t, err)
	assert.Contains(t, out, "exported 2 sequences")

	out, err = runCLI(t, "import", exported)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 2 sequences")

	out, err = runCLI(t, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "sequences:   4")
}

func TestCLI_ImportMissingFileFails(t *testing.T) {
	isolate(t)

	_, err := runCLI(t, "import", "/does/not/exist.fasta")
	assert.Error(t, err)
}
