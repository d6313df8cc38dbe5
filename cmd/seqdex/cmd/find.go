package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFindCmd() *cobra.Command {
	var (
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "find <query>",
		Short: "Search sequence metadata (names, tags, descriptions)",
		Long: `Full-text search over sequence metadata, as opposed to 'search'
which matches sequence content.

Examples:
  seqdex find spike
  seqdex find "surface protein" --limit 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			matches, err := app.coord.FindByName(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), matches)
			}

			if len(matches) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no matches")
				return nil
			}
			for _, m := range matches {
				seq, err := app.coord.Get(cmd.Context(), m.ID)
				if err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%.3f  %s\n", m.Score, m.ID)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%.3f  ", m.Score)
				printSequenceRow(cmd.OutOrStdout(), seq)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of matches")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
