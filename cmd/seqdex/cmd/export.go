package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seqdex/seqdex/internal/corpus"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export all sequences to a FASTA file",
		Long: `Export every stored sequence to a FASTA file, gzip-compressed when
the path ends in .gz.

Examples:
  seqdex export backup.fasta
  seqdex export backup.fasta.gz`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			n, err := corpus.Export(cmd.Context(), app.coord, args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "exported %d sequences to %s\n", n, args[0])
			return nil
		},
	}

	return cmd
}
