package cli

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/paveg/clump/internal/collection"
	clumpio "github.com/paveg/clump/internal/io"
	"github.com/paveg/clump/internal/monitoring"
	"github.com/spf13/cobra"
)

// defaultOutputFormat is used when writing to stdout without --format.
const defaultOutputFormat = clumpio.FormatJSONL

// SourceOptions are the flags shared by commands that read records.
type SourceOptions struct {
	InputFormat string
	N           int
}

func (o *SourceOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.InputFormat, "input-format", "", "input format (json|jsonl|csv|tsv|yaml|parquet); inferred from the extension by default")
	cmd.Flags().IntVarP(&o.N, "limit", "n", 0, "read at most n records from each source (0 reads everything)")
}

func (o *SourceOptions) read(cmd *cobra.Command, path string) (*collection.Collection, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	opts := clumpio.ReadOptions{N: o.N}
	var (
		c   *collection.Collection
		err error
	)
	if o.InputFormat == "" {
		c, err = clumpio.ReadFile(ctx, path, opts)
	} else {
		var format clumpio.Format
		if format, err = clumpio.ParseFormat(o.InputFormat); err == nil {
			c, err = clumpio.ReadFormat(ctx, path, format, opts)
		}
	}
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to read "+path, err)
	}
	slog.Debug("read collection", "source", path, "records", c.Len())
	return c, nil
}

// OutputOptions are the flags shared by commands that write records.
type OutputOptions struct {
	Output string
	Format string
}

func (o *OutputOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.Output, "output", "o", "", "output file; stdout when empty")
	cmd.Flags().StringVar(&o.Format, "format", "", "output format (json|jsonl|csv|tsv|yaml|parquet); inferred from --output or jsonl")
}

func (o *OutputOptions) write(cmd *cobra.Command, c *collection.Collection) error {
	format, err := o.format()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid output format", err)
	}

	if o.Output == "" {
		w, err := clumpio.NewWriter(cmd.OutOrStdout(), format)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid output format", err)
		}
		if err := w.Write(c); err != nil {
			return WrapExitError(ExitFailure, "failed to write output", err)
		}
		return nil
	}

	if dir := filepath.Dir(o.Output); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return WrapExitError(ExitCommandError, "failed to create output directory", err)
		}
	}
	if err := clumpio.WriteFormat(o.Output, c, format); err != nil {
		return WrapExitError(ExitFailure, "failed to write "+o.Output, err)
	}
	slog.Info("wrote collection", "path", o.Output, "format", format, "records", c.Len())
	return nil
}

func (o *OutputOptions) format() (clumpio.Format, error) {
	switch {
	case o.Format != "":
		return clumpio.ParseFormat(o.Format)
	case o.Output != "":
		return clumpio.FormatFromPath(o.Output)
	default:
		return defaultOutputFormat, nil
	}
}

// logMetrics writes one log line per recorded verb and a summary line.
func logMetrics(m *monitoring.MetricsCollector) {
	if m == nil || !m.IsEnabled() {
		return
	}
	for _, verb := range m.GetMetrics() {
		slog.Info("verb",
			"operation", verb.Operation,
			"duration", verb.Duration,
			"rows_in", verb.RowsIn,
			"rows_out", verb.RowsOut,
			"grouped", verb.Grouped,
			"failed", verb.Failed,
		)
	}
	summary := m.GetSummary()
	slog.Info("pipeline",
		"operations", summary.TotalOperations,
		"duration", summary.TotalDuration,
		"memory", summary.TotalMemory,
		"failures", summary.Failures,
	)
}
