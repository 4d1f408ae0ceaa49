package cli

import (
	"fmt"
	"strings"

	"github.com/paveg/clump/internal/collection"
	"github.com/spf13/cobra"
)

// JoinOptions holds flags for the join command.
type JoinOptions struct {
	*RootOptions
	SourceOptions
	OutputOptions

	On       []string
	Inner    bool
	Suffixes string
}

// NewJoinCommand creates the join command.
func NewJoinCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &JoinOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "join <left> <right>",
		Short: "Join two collections on matching keys",
		Long: `Join every left record with every right record whose mapped keys hold
equal values. Keys present on both sides are suffixed; without --on every pair
of records is joined.

Example:
  clump join orders.jsonl customers.csv --on customer=id --inner
  clump join a.json b.json --on id --suffixes _a,_b -o joined.csv`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJoin(cmd, opts, args[0], args[1])
		},
	}

	opts.SourceOptions.register(cmd)
	opts.OutputOptions.register(cmd)
	cmd.Flags().StringSliceVar(&opts.On, "on", nil, "join keys: key or left=right")
	cmd.Flags().BoolVar(&opts.Inner, "inner", false, "drop left records without a match")
	cmd.Flags().StringVar(&opts.Suffixes, "suffixes", "", "left,right suffixes for colliding keys")

	return cmd
}

func runJoin(cmd *cobra.Command, opts *JoinOptions, leftPath, rightPath string) error {
	mapping, err := parseJoinKeys(opts.On)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid join keys", err)
	}

	var joinOpts []collection.JoinOption
	if opts.Suffixes != "" {
		left, right, ok := strings.Cut(opts.Suffixes, ",")
		if !ok {
			return WrapExitError(ExitCommandError, "invalid suffixes", fmt.Errorf("want left,right, got %q", opts.Suffixes))
		}
		joinOpts = append(joinOpts, collection.WithSuffixes(left, right))
	}

	left, err := opts.read(cmd, leftPath)
	if err != nil {
		return err
	}
	right, err := opts.read(cmd, rightPath)
	if err != nil {
		return err
	}

	chain := left.Lazy()
	if opts.Inner {
		chain = chain.InnerJoin(right, mapping, joinOpts...)
	} else {
		chain = chain.LeftJoin(right, mapping, joinOpts...)
	}

	out, err := chain.Collect()
	logMetrics(chain.Metrics())
	if err != nil {
		return WrapExitError(ExitFailure, "join failed", err)
	}
	return opts.write(cmd, out)
}
