package cli

import (
	"fmt"
	"strings"

	"github.com/paveg/clump/internal/collection"
	"github.com/paveg/clump/internal/expr"
	"github.com/paveg/clump/internal/monitoring"
	"github.com/paveg/clump/internal/record"
	"github.com/paveg/clump/internal/sequence"
	"github.com/spf13/cobra"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	SourceOptions
	OutputOptions

	Where     []string
	GroupBy   []string
	Mutate    []string
	RowNumber string
	Explode   []string
	Aggs      []string
	Transform bool
	Rename    []string
	Select    []string
	Drop      []string
	Dedupe    bool
	Sort      string
	Reverse   bool
	Head      int
	Tail      int
	Sample    int
	Seed      uint64
	Explain   bool
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <source>",
		Short: "Run a verb pipeline over a collection",
		Long: `Read a collection and run a fixed pipeline over it:

  where -> group-by -> mutate/row-number -> explode -> agg|transform ->
  rename -> select -> drop -> dedupe -> sort -> head/tail -> sample

Every stage is optional. The source is a file, a glob pattern or a URL.

Example:
  clump query 'data/*.jsonl' --where 'salary >= 80' --group-by dept \
    --agg total=salary:sum --agg n=name:count --sort total --reverse
  clump query people.csv --mutate 'shout=upper(name)' --select name,shout -o out.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, opts, args[0])
		},
	}

	opts.SourceOptions.register(cmd)
	opts.OutputOptions.register(cmd)

	flags := cmd.Flags()
	flags.StringArrayVarP(&opts.Where, "where", "w", nil, "keep records matching the expression (repeatable)")
	flags.StringSliceVarP(&opts.GroupBy, "group-by", "g", nil, "group keys for mutate, row-number and agg")
	flags.StringArrayVarP(&opts.Mutate, "mutate", "m", nil, "add a key: name=expression (repeatable)")
	flags.StringVar(&opts.RowNumber, "row-number", "", "add a per-group row number under this key")
	flags.StringSliceVar(&opts.Explode, "explode", nil, "explode list-valued keys")
	flags.StringArrayVarP(&opts.Aggs, "agg", "a", nil, "summarise: name=key:summary (repeatable)")
	flags.BoolVar(&opts.Transform, "transform", false, "attach aggregates to every record instead of collapsing groups")
	flags.StringSliceVar(&opts.Rename, "rename", nil, "rename keys: new=old")
	flags.StringSliceVarP(&opts.Select, "select", "s", nil, "keep only these keys")
	flags.StringSliceVar(&opts.Drop, "drop", nil, "remove these keys")
	flags.BoolVar(&opts.Dedupe, "dedupe", false, "drop duplicate records")
	flags.StringVar(&opts.Sort, "sort", "", "sort by this key")
	flags.BoolVarP(&opts.Reverse, "reverse", "r", false, "sort descending")
	flags.IntVar(&opts.Head, "head", -1, "keep the first n records")
	flags.IntVar(&opts.Tail, "tail", -1, "keep the last n records")
	flags.IntVar(&opts.Sample, "sample", -1, "draw n records without replacement")
	flags.Uint64Var(&opts.Seed, "seed", 0, "seed for --sample (0 uses the configured seed)")
	flags.BoolVar(&opts.Explain, "explain", false, "print the executed plan to stderr")

	return cmd
}

func runQuery(cmd *cobra.Command, opts *QueryOptions, source string) error {
	c, err := opts.read(cmd, source)
	if err != nil {
		return err
	}

	chain, err := opts.chain(c)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid pipeline", err)
	}
	if opts.Explain {
		chain = chain.WithMetrics(monitoring.NewMetricsCollector(true))
	}
	out, err := chain.Collect()
	logMetrics(chain.Metrics())
	if opts.Explain {
		plan := chain.Explain()
		fmt.Fprint(cmd.ErrOrStderr(), plan.String())
	}
	if err != nil {
		return WrapExitError(ExitFailure, "pipeline failed", err)
	}
	return opts.write(cmd, out)
}

// chain translates the flags into a deferred pipeline over c.
func (o *QueryOptions) chain(c *collection.Collection) (*collection.Chain, error) {
	ch := c.Lazy()

	if len(o.Where) > 0 {
		preds := make([]record.Predicate, len(o.Where))
		for i, src := range o.Where {
			e, err := expr.Parse(src)
			if err != nil {
				return nil, fmt.Errorf("where %q: %w", src, err)
			}
			preds[i] = expr.Predicate(e)
		}
		ch = ch.Keep(preds...)
	}

	if len(o.GroupBy) > 0 {
		ch = ch.GroupBy(o.GroupBy...)
	}

	assignments := make([]collection.Assignment, 0, len(o.Mutate)+1)
	for _, spec := range o.Mutate {
		a, err := parseAssignment(spec)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	if o.RowNumber != "" {
		assignments = append(assignments, collection.Assign(o.RowNumber, sequence.NewRowNumber()))
	}
	if len(assignments) > 0 {
		ch = ch.Mutate(assignments...)
	}

	if len(o.Explode) > 0 {
		ch = ch.Explode(o.Explode...)
	}

	if len(o.Aggs) > 0 {
		aggs := make([]collection.Aggregation, len(o.Aggs))
		for i, spec := range o.Aggs {
			a, err := parseAggregation(spec)
			if err != nil {
				return nil, err
			}
			aggs[i] = a
		}
		if o.Transform {
			ch = ch.Transform(aggs...)
		} else {
			ch = ch.Aggregate(aggs...)
		}
	} else if o.Transform {
		return nil, fmt.Errorf("--transform needs at least one --agg")
	}
	if len(o.GroupBy) > 0 {
		ch = ch.Ungroup()
	}

	if len(o.Rename) > 0 {
		aliases, err := parseAliases(o.Rename)
		if err != nil {
			return nil, err
		}
		ch = ch.Rename(aliases...)
	}
	if len(o.Select) > 0 {
		ch = ch.Select(o.Select...)
	}
	if len(o.Drop) > 0 {
		ch = ch.Drop(o.Drop...)
	}
	if o.Dedupe {
		ch = ch.DropDuplicates()
	}
	if o.Sort != "" {
		ch = ch.Sort(collection.By(strings.TrimSpace(o.Sort)), o.Reverse)
	}
	if o.Head >= 0 {
		ch = ch.Head(o.Head)
	}
	if o.Tail >= 0 {
		ch = ch.Tail(o.Tail)
	}
	if o.Sample >= 0 {
		ch = ch.Sample(o.Sample, collection.SampleOptions{Seed: o.Seed})
	}
	return ch, nil
}
