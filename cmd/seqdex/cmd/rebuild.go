package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRebuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Rebuild the search index from the store",
		Long: `Discard the search index and reconstruct it from the store's full
contents. Rebuilding is idempotent: running it twice over an
unchanged store yields an identical index.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.coord.Rebuild(cmd.Context()); err != nil {
				return err
			}

			stats := app.coord.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "rebuilt index: %d sequences, %d k-mers\n",
				stats.Sequences, stats.Kmers)
			return nil
		},
	}

	return cmd
}
