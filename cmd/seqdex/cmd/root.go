// Package cmd provides the CLI commands for seqdex.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/seqdex/seqdex/internal/config"
	"github.com/seqdex/seqdex/internal/corpus"
	"github.com/seqdex/seqdex/internal/index"
	"github.com/seqdex/seqdex/internal/logging"
	"github.com/seqdex/seqdex/internal/search"
	"github.com/seqdex/seqdex/internal/store"
	"github.com/seqdex/seqdex/pkg/version"
)

var (
	cfgPath        string
	debugMode      bool
	loggingCleanup func()
)

// Execute runs the root command with signal-aware cancellation.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd creates the root command for the seqdex CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seqdex",
		Short: "Sequence store with exact, substring, and fuzzy search",
		Long: `seqdex stores named symbol sequences and answers exact, substring
(k-mer), and fuzzy queries over them, keeping the search index in
lock-step with every mutation.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.SetVersionTemplate("seqdex version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to config file")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.seqdex/logs/")
	cmd.PersistentPreRunE = setupLogging
	cmd.PersistentPostRun = func(_ *cobra.Command, _ []string) {
		if loggingCleanup != nil {
			loggingCleanup()
		}
	}

	cmd.AddCommand(newAddCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newRmCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newFindCmd())
	cmd.AddCommand(newImportCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newRebuildCmd())
	cmd.AddCommand(newVerifyCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func setupLogging(_ *cobra.Command, _ []string) error {
	logCfg := logging.DefaultConfig()
	if debugMode {
		logCfg = logging.DebugConfig()
	}

	logger, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	return nil
}

// app bundles the wired engine components for one command invocation.
type app struct {
	cfg      *config.Config
	coord    *index.Coordinator
	engine   *search.Engine
	importer *corpus.Importer
}

// openApp loads configuration and wires store, index, and engine.
// The caller must Close it.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	var st store.Store
	namePath := ""
	switch cfg.Storage.Backend {
	case "memory":
		st = store.NewMemoryStore()
	default:
		s, err := store.NewSQLiteStore(cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		st = s
		namePath = cfg.NameIndexPath()
	}

	var names *store.NameIndex
	if cfg.Index.NameIndex {
		names, err = store.NewNameIndex(namePath)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
	}

	builder, err := index.NewBuilder(cfg.Index.K, index.NewNormalizer(cfg.Index.CaseSensitive))
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	coord, err := index.NewCoordinator(ctx, st, builder, names)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	engine, err := search.NewEngine(coord, cfg.Search)
	if err != nil {
		_ = coord.Close()
		return nil, err
	}

	return &app{
		cfg:      cfg,
		coord:    coord,
		engine:   engine,
		importer: corpus.NewImporter(coord),
	}, nil
}

func (a *app) Close() {
	if err := a.coord.Close(); err != nil {
		slog.Warn("close failed", slog.String("error", err.Error()))
	}
}
