package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show store and index statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			count, err := app.coord.Count(cmd.Context())
			if err != nil {
				return err
			}
			stats := app.coord.Stats()

			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"sequences":  count,
					"exact_keys": stats.ExactKeys,
					"kmers":      stats.Kmers,
					"k":          app.cfg.Index.K,
					"backend":    app.cfg.Storage.Backend,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "sequences:   %d\n", count)
			fmt.Fprintf(out, "exact keys:  %d\n", stats.ExactKeys)
			fmt.Fprintf(out, "k-mers:      %d (k=%d)\n", stats.Kmers, app.cfg.Index.K)
			fmt.Fprintf(out, "backend:     %s\n", app.cfg.Storage.Backend)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
