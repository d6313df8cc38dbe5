package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seqdex/seqdex/internal/store"
)

func newAddCmd() *cobra.Command {
	var meta store.Metadata

	cmd := &cobra.Command{
		Use:   "add <symbols>",
		Short: "Store a new sequence",
		Long: `Store a new sequence and index it. The sequence is searchable as
soon as the command returns.

Examples:
  seqdex add ACGTAC --name spike --tag viral
  seqdex add TTACGG`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			seq, err := app.coord.Create(cmd.Context(), args[0], meta)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), seq.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&meta.Name, "name", "", "Sequence name")
	cmd.Flags().StringSliceVar(&meta.Tags, "tag", nil, "Tag (repeatable)")
	cmd.Flags().StringVar(&meta.Description, "desc", "", "Description")

	return cmd
}
