package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seqdex/seqdex/internal/index"
	"github.com/seqdex/seqdex/internal/search"
)

func newSearchCmd() *cobra.Command {
	var (
		mode       string
		boolQuery  bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "search <pattern>",
		Short: "Search stored sequences",
		Long: `Search sequence content. Modes:

  exact     whole-content match
  contains  substring match via the k-mer index
  fuzzy     bounded edit-distance match

Results are ordered by descending score, ties broken by ascending id.

With --bool the pattern is a boolean combination of substring
patterns: AND, OR, parentheses, and double quotes.

Examples:
  seqdex search ACG
  seqdex search ACGTAC --mode exact
  seqdex search ACGTAG --mode fuzzy
  seqdex search 'ACG AND (TTA OR CGG)' --bool`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			var results []search.Result
			if boolQuery {
				results, err = app.engine.SearchBoolean(cmd.Context(), args[0])
			} else {
				var m search.Mode
				m, err = search.ParseMode(mode)
				if err != nil {
					return err
				}
				results, err = app.engine.Search(cmd.Context(), args[0], m)
			}
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), results)
			}

			if len(results) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no matches")
				return nil
			}
			for _, r := range results {
				printResult(cmd, app, r)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "contains", "Match mode: exact, contains, fuzzy")
	cmd.Flags().BoolVar(&boolQuery, "bool", false, "Treat pattern as a boolean query")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func printResult(cmd *cobra.Command, app *app, r search.Result) {
	out := cmd.OutOrStdout()

	seq, err := app.coord.Get(cmd.Context(), r.ID)
	if err != nil {
		fmt.Fprintf(out, "%.3f  %s\n", r.Score, r.ID)
		return
	}

	line := seq.Symbols
	if len(r.Highlights) > 0 {
		// Highlight ranges are rune offsets into the normalized
		// symbols, which can differ from the stored form.
		display := seq.Symbols
		_ = app.coord.Read(func(ix *index.Builder) error {
			display = ix.Normalize(seq.Symbols)
			return nil
		})
		line = search.Snippet(display, r.Highlights, "[", "]")
	}
	fmt.Fprintf(out, "%.3f  %s  %s", r.Score, r.ID, line)
	if r.Occurrences > 1 {
		fmt.Fprintf(out, "  (%d occurrences)", r.Occurrences)
	}
	if r.Distance > 0 {
		fmt.Fprintf(out, "  (distance %d)", r.Distance)
	}
	fmt.Fprintln(out)
}
