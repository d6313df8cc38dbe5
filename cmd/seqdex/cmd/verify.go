package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seqdex/seqdex/internal/index"
)

func newVerifyCmd() *cobra.Command {
	var (
		repair bool
		quick  bool
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check store/index consistency",
		Long: `Compare the store (source of truth) against the search index and
report orphaned, missing, and stale index entries.

Examples:
  seqdex verify
  seqdex verify --quick
  seqdex verify --repair`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			out := cmd.OutOrStdout()

			if quick {
				ok, err := app.coord.QuickCheck(cmd.Context())
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("store and index counts differ; run 'seqdex verify' for details")
				}
				fmt.Fprintln(out, "counts match")
				return nil
			}

			var result *index.CheckResult
			if repair {
				result, err = app.coord.VerifyAndRepair(cmd.Context())
			} else {
				result, err = app.coord.Verify(cmd.Context())
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "checked %d sequences in %s\n", result.Checked, result.Duration.Round(0))
			if result.Consistent() {
				fmt.Fprintln(out, "store and index are consistent")
				return nil
			}

			for _, issue := range result.Inconsistencies {
				fmt.Fprintf(out, "  %s: %s\n", issue.Type, issue.ID)
			}
			if repair {
				fmt.Fprintln(out, "index rebuilt")
				return nil
			}
			return fmt.Errorf("%d inconsistencies found; run 'seqdex verify --repair'", len(result.Inconsistencies))
		},
	}

	cmd.Flags().BoolVar(&repair, "repair", false, "Rebuild the index when inconsistencies are found")
	cmd.Flags().BoolVar(&quick, "quick", false, "Only compare store and index counts")

	return cmd
}
