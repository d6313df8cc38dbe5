package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Import sequences from FASTA files",
		Long: `Import sequences from FASTA files (plain or gzip). The first word
of each header line becomes the sequence name, the rest its
description.

Examples:
  seqdex import reads.fasta
  seqdex import corpus/*.fasta.gz --workers 4`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			total, err := app.importer.ImportFiles(cmd.Context(), args, workers)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "imported %d sequences from %d files\n", total, len(args))
			return nil
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 2, "Parallel file readers")

	return cmd
}
