package cmd

import (
	"github.com/spf13/cobra"

	"github.com/seqdex/seqdex/internal/store"
)

func newSetCmd() *cobra.Command {
	var meta store.Metadata

	cmd := &cobra.Command{
		Use:   "set <id> <symbols>",
		Short: "Replace a sequence's content and metadata",
		Long: `Replace a stored sequence's content. All index traces of the old
content are removed before the command returns.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			seq, err := app.coord.Update(cmd.Context(), args[0], args[1], meta)
			if err != nil {
				return err
			}

			printSequence(cmd.OutOrStdout(), seq)
			return nil
		},
	}

	cmd.Flags().StringVar(&meta.Name, "name", "", "Sequence name")
	cmd.Flags().StringSliceVar(&meta.Tags, "tag", nil, "Tag (repeatable)")
	cmd.Flags().StringVar(&meta.Description, "desc", "", "Description")

	return cmd
}
