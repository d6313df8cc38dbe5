package store

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// FastaRecord is a parsed FASTA record: the header line (without '>')
// and the concatenated sequence lines.
type FastaRecord struct {
	Header  string
	Symbols string
}

// Meta splits the header into a name (first word) and description
// (the rest), the conventional FASTA reading.
func (r FastaRecord) Meta() Metadata {
	name, desc, _ := strings.Cut(strings.TrimSpace(r.Header), " ")
	return Metadata{Name: name, Description: strings.TrimSpace(desc)}
}

// ParseFasta reads FASTA records from r. Lines beginning with '>'
// denote headers; sequence lines are concatenated. Records with no
// symbols are skipped.
func ParseFasta(r io.Reader) ([]FastaRecord, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var records []FastaRecord
	var current *FastaRecord

	flush := func() {
		if current != nil && current.Symbols != "" {
			records = append(records, *current)
		}
		current = nil
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
		case strings.HasPrefix(line, ">"):
			flush()
			current = &FastaRecord{Header: strings.TrimPrefix(line, ">")}
		default:
			if current == nil {
				// Headerless leading sequence; give it an empty header
				current = &FastaRecord{}
			}
			current.Symbols += line
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read fasta: %w", err)
	}
	flush()
	return records, nil
}

// fastaLineWidth is the symbol wrap column on export.
const fastaLineWidth = 70

// WriteFasta writes sequences as FASTA, one record per sequence.
// The header is "<name> <description>"; unnamed sequences use their ID.
func WriteFasta(w io.Writer, seqs []*Sequence) error {
	bw := bufio.NewWriter(w)
	for _, seq := range seqs {
		header := seq.Name
		if header == "" {
			header = seq.ID
		}
		if seq.Description != "" {
			header += " " + seq.Description
		}
		if _, err := fmt.Fprintf(bw, ">%s\n", header); err != nil {
			return err
		}
		for i := 0; i < len(seq.Symbols); i += fastaLineWidth {
			end := min(i+fastaLineWidth, len(seq.Symbols))
			if _, err := fmt.Fprintln(bw, seq.Symbols[i:end]); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// OpenFasta opens a FASTA file for reading, transparently decompressing
// .gz files. The returned closer closes both readers.
func OpenFasta(path string) (io.Reader, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	if !strings.HasSuffix(path, ".gz") {
		return f, f.Close, nil
	}

	gz, err := gzip.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("open gzip %s: %w", path, err)
	}
	closer := func() error {
		gzErr := gz.Close()
		if err := f.Close(); err != nil {
			return err
		}
		return gzErr
	}
	return gz, closer, nil
}

// CreateFasta opens a FASTA file for writing, gzip-compressing when the
// path ends in .gz. The returned closer flushes and closes.
func CreateFasta(path string) (io.Writer, func() error, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}

	if !strings.HasSuffix(path, ".gz") {
		return f, f.Close, nil
	}

	gz := gzip.NewWriter(f)
	closer := func() error {
		if err := gz.Close(); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	}
	return gz, closer, nil
}
