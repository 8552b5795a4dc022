package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sandeepkv93/coachd/internal/config"
)

type rootOptions struct {
	configDir string
	dataDir   string
	name      string
	logFile   string
	verbose   bool

	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "coachd",
		Short: "Daily coaching tips in the terminal.",
		Long: `coachd shows today's coaching tips, lets you browse earlier days on a
timeline, and tracks the tips you complete, skip, and save.

Run without arguments to start the interactive view.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd.Name() == "coachd" || cmd.Name() == "ui")
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUI(cmd.Context(), opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configDir, "config-dir", "", "directory holding .coachd.yaml")
	flags.StringVar(&opts.dataDir, "data-dir", "", "directory for the tip database and session state")
	flags.StringVar(&opts.name, "name", "", "display name used in today's greeting")
	flags.StringVar(&opts.logFile, "log-file", "", "write logs to this file")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		newUICmd(opts),
		newTimelineCmd(opts),
		newTipsCmd(opts),
		newSeedCmd(opts),
		newCompleteCmd(opts),
		newSkipCmd(opts),
		newSaveCmd(opts),
		newSessionCmd(opts),
	)
	return cmd
}

// setup resolves configuration and builds the logger. Interactive runs log
// to a file so output never lands on the terminal the TUI draws on.
func (o *rootOptions) setup(interactive bool) error {
	cfg, err := config.Load(o.configDir)
	if err != nil {
		return err
	}
	if o.dataDir != "" {
		cfg.DataDir = o.dataDir
	}
	if o.name != "" {
		cfg.DisplayName = o.name
	}
	if o.logFile != "" {
		cfg.LogFile = o.logFile
	}
	if o.verbose {
		cfg.LogLevel = "debug"
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if interactive && cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(cfg.DataDir, "coachd.log")
	}
	o.cfg = cfg

	logger, err := buildLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	o.logger = logger
	return nil
}

func buildLogger(cfg config.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	zc.Level = level
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if cfg.LogFile != "" {
		zc.OutputPaths = []string{cfg.LogFile}
		zc.ErrorOutputPaths = []string{cfg.LogFile}
	}
	return zc.Build()
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
