package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/seqdex/seqdex/internal/store"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printSequence(w io.Writer, seq *store.Sequence) {
	fmt.Fprintf(w, "id:       %s\n", seq.ID)
	fmt.Fprintf(w, "symbols:  %s\n", seq.Symbols)
	if seq.Name != "" {
		fmt.Fprintf(w, "name:     %s\n", seq.Name)
	}
	if len(seq.Tags) > 0 {
		fmt.Fprintf(w, "tags:     %s\n", strings.Join(seq.Tags, ", "))
	}
	if seq.Description != "" {
		fmt.Fprintf(w, "desc:     %s\n", seq.Description)
	}
	fmt.Fprintf(w, "created:  %s\n", seq.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "updated:  %s\n", seq.UpdatedAt.Format("2006-01-02 15:04:05"))
}

func printSequenceRow(w io.Writer, seq *store.Sequence) {
	name := seq.Name
	if name == "" {
		name = "-"
	}
	fmt.Fprintf(w, "%s  %-20s  %s\n", seq.ID, name, seq.Symbols)
}
