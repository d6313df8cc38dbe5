package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/seqdex/seqdex/internal/watcher"
)

func newWatchCmd() *cobra.Command {
	var (
		debounce time.Duration
		initial  bool
	)

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Keep the store in sync with a FASTA corpus directory",
		Long: `Watch a directory tree for FASTA file changes and mirror them into
the store: new files are imported, edited files re-imported, and
deleted files have their sequences removed. Runs until interrupted.

Examples:
  seqdex watch ./corpus
  seqdex watch ./corpus --initial`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			root := args[0]
			if initial {
				paths, err := corpusFiles(root)
				if err != nil {
					return err
				}
				total, err := app.importer.ImportFiles(cmd.Context(), paths, 2)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d sequences from %d files\n", total, len(paths))
			}

			w, err := watcher.New(watcher.Options{DebounceWindow: debounce})
			if err != nil {
				return err
			}
			defer func() { _ = w.Stop() }()

			go func() {
				if err := w.Start(cmd.Context(), root); err != nil && !errors.Is(err, context.Canceled) {
					fmt.Fprintf(cmd.ErrOrStderr(), "watcher stopped: %v\n", err)
				}
			}()

			fmt.Fprintf(cmd.OutOrStdout(), "watching %s (ctrl-c to stop)\n", root)
			err = app.importer.Watch(cmd.Context(), w)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", 200*time.Millisecond, "Event settle window")
	cmd.Flags().BoolVar(&initial, "initial", false, "Import existing corpus files before watching")

	return cmd
}

// corpusFiles lists FASTA files under root, recursively.
func corpusFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := strings.ToLower(d.Name())
		for _, ext := range []string{".fa", ".fasta", ".fa.gz", ".fasta.gz"} {
			if strings.HasSuffix(name, ext) {
				paths = append(paths, path)
				break
			}
		}
		return nil
	})
	return paths, err
}
