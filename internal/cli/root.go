// Package cli implements the clump command line: read record files, run a
// verb pipeline over them and write the result.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/paveg/clump/internal/collection"
	"github.com/paveg/clump/internal/config"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigFile string
	Verbose    bool
	LogFormat  string // "text" | "json"
	Metrics    bool
}

// ValidLogFormats defines the allowed log formats.
var ValidLogFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the clump CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "clump",
		Short: "Split-apply-combine for JSON, CSV, YAML and Parquet records",
		Long: `clump reads collections of records from files, glob patterns or URLs,
filters, groups and summarises them, and writes the result in any supported
format.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid configuration", err)
			}
			config.SetGlobalConfig(cfg)

			logger := newLogger(cmd.ErrOrStderr(), cfg)
			slog.SetDefault(logger)
			if cfg.VerboseLogging {
				collection.SetLogger(logger)
			} else {
				collection.SetLogger(nil)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "configuration file (.json, .yaml or .yml)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", config.DefaultLogFormat, "log format (text|json)")
	cmd.PersistentFlags().BoolVar(&opts.Metrics, "metrics", false, "log per-verb metrics")

	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewJoinCommand(opts))
	cmd.AddCommand(NewKeysCommand(opts))
	cmd.AddCommand(NewHeadCommand(opts))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// loadConfig layers the config file (or CLUMP_* variables when there is no
// file) under the flags that were set explicitly.
func loadConfig(cmd *cobra.Command, opts *RootOptions) (config.Config, error) {
	cfg := config.LoadFromEnv()
	if opts.ConfigFile != "" {
		var err error
		if cfg, err = config.LoadFromFile(opts.ConfigFile); err != nil {
			return config.Config{}, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("verbose") {
		cfg.VerboseLogging = opts.Verbose
	}
	if flags.Changed("log-format") {
		if !slices.Contains(ValidLogFormats, opts.LogFormat) {
			return config.Config{}, fmt.Errorf("invalid log format %q: must be one of %v", opts.LogFormat, ValidLogFormats)
		}
		cfg.LogFormat = opts.LogFormat
	}
	if flags.Changed("metrics") {
		cfg.MetricsCollection = opts.Metrics
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newLogger(w io.Writer, cfg config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.VerboseLogging {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}
