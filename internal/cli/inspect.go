package cli

import (
	"fmt"

	"github.com/paveg/clump/internal/config"
	"github.com/paveg/clump/internal/version"
	"github.com/spf13/cobra"
)

// KeysOptions holds flags for the keys command.
type KeysOptions struct {
	*RootOptions
	SourceOptions
	Overlap bool
}

// NewKeysCommand creates the keys command.
func NewKeysCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &KeysOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "keys <source>",
		Short: "List the keys of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.read(cmd, args[0])
			if err != nil {
				return err
			}
			keys, err := c.Keys(opts.Overlap)
			if err != nil {
				return WrapExitError(ExitFailure, "cannot list keys", err)
			}
			for _, k := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}

	opts.SourceOptions.register(cmd)
	cmd.Flags().BoolVar(&opts.Overlap, "overlap", false, "only keys present on every record")
	return cmd
}

// HeadOptions holds flags for the head command.
type HeadOptions struct {
	*RootOptions
	SourceOptions
	OutputOptions
	Rows int
}

// NewHeadCommand creates the head command.
func NewHeadCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HeadOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "head <source>",
		Short: "Show the first records of a collection",
		Long:  "Show the first records of a collection. The default count comes from the default_head setting.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := opts.Rows
			if !cmd.Flags().Changed("rows") {
				rows = config.GetGlobalConfig().DefaultHead
			}
			c, err := opts.read(cmd, args[0])
			if err != nil {
				return err
			}
			out, err := c.Head(rows)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid row count", err)
			}
			return opts.write(cmd, out)
		},
	}

	opts.SourceOptions.register(cmd)
	opts.OutputOptions.register(cmd)
	cmd.Flags().IntVar(&opts.Rows, "rows", config.DefaultHeadRows, "number of records to show")
	return cmd
}

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprint(cmd.OutOrStdout(), version.Info().String())
		},
	}
}
