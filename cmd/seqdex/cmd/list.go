package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	var (
		limit      int
		cursor     string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored sequences in creation order",
		Long: `List sequences in stable creation order. The order does not change
when sequences are edited, so pagination with --cursor is restartable.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			page, next, err := app.coord.List(cmd.Context(), cursor, limit)
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"sequences":   page,
					"next_cursor": next,
				})
			}

			for _, seq := range page {
				printSequenceRow(cmd.OutOrStdout(), seq)
			}
			if next != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "\nnext: seqdex list --cursor %s\n", next)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum sequences per page")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Resume listing after this cursor")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
