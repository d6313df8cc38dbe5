//go:build ignore

// Generates a synthetic FASTA corpus for import/search benchmarking.
// Usage: go run scripts/generate-corpus.go -files 100 -seqs 500 -output testdata/bench
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
)

var (
	numFiles = flag.Int("files", 100, "Number of FASTA files to generate")
	numSeqs  = flag.Int("seqs", 500, "Sequences per file")
	minLen   = flag.Int("min-len", 20, "Minimum sequence length")
	maxLen   = flag.Int("max-len", 200, "Maximum sequence length")
	outDir   = flag.String("output", "testdata/bench", "Output directory")
	seed     = flag.Int64("seed", 42, "Random seed for reproducibility")
)

const alphabet = "ACGT"

func main() {
	flag.Parse()
	rng := rand.New(rand.NewSource(*seed))

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create output dir: %v\n", err)
		os.Exit(1)
	}

	total := 0
	for f := 0; f < *numFiles; f++ {
		path := filepath.Join(*outDir, fmt.Sprintf("corpus-%04d.fasta", f))
		file, err := os.Create(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "create %s: %v\n", path, err)
			os.Exit(1)
		}

		for s := 0; s < *numSeqs; s++ {
			length := *minLen + rng.Intn(*maxLen-*minLen+1)
			symbols := make([]byte, length)
			for i := range symbols {
				symbols[i] = alphabet[rng.Intn(len(alphabet))]
			}
			fmt.Fprintf(file, ">seq-%04d-%04d synthetic benchmark sequence\n%s\n", f, s, symbols)
			total++
		}
		if err := file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "close %s: %v\n", path, err)
			os.Exit(1)
		}
	}

	fmt.Printf("generated %d sequences across %d files in %s\n", total, *numFiles, *outDir)
}
