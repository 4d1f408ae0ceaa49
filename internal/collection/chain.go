package collection

import (
	"fmt"
	"slices"
	"strings"

	"github.com/paveg/clump/internal/config"
	"github.com/paveg/clump/internal/monitoring"
	"github.com/paveg/clump/internal/record"
)

// Operation is a deferred step of a Chain.
type Operation interface {
	Apply(c *Collection) (*Collection, error)
	String() string
}

// verbOperation defers one Collection verb.
type verbOperation struct {
	name string
	args string
	fn   func(c *Collection) (*Collection, error)
}

func (v *verbOperation) Apply(c *Collection) (*Collection, error) {
	return v.fn(c)
}

func (v *verbOperation) String() string {
	return fmt.Sprintf("%s(%s)", v.name, v.args)
}

// Chain holds a Collection and a sequence of deferred verbs. Nothing runs
// until Collect, which stops at the first failing verb.
type Chain struct {
	source     *Collection
	operations []Operation
	metrics    *monitoring.MetricsCollector
}

// Lazy starts a Chain over c. Metrics are recorded when enabled in the
// global configuration.
func (c *Collection) Lazy() *Chain {
	return &Chain{
		source:     c,
		operations: make([]Operation, 0),
		metrics:    monitoring.NewMetricsCollector(config.GetGlobalConfig().MetricsCollection),
	}
}

// WithMetrics records per-verb metrics into m.
func (ch *Chain) WithMetrics(m *monitoring.MetricsCollector) *Chain {
	return &Chain{source: ch.source, operations: ch.operations, metrics: m}
}

// Metrics returns the collector used by Collect.
func (ch *Chain) Metrics() *monitoring.MetricsCollector {
	return ch.metrics
}

// Then appends a custom operation.
func (ch *Chain) Then(op Operation) *Chain {
	ops := make([]Operation, len(ch.operations)+1)
	copy(ops, ch.operations)
	ops[len(ch.operations)] = op
	return &Chain{source: ch.source, operations: ops, metrics: ch.metrics}
}

func (ch *Chain) then(name, args string, fn func(c *Collection) (*Collection, error)) *Chain {
	return ch.Then(&verbOperation{name: name, args: args, fn: fn})
}

// Keep defers Collection.Keep.
func (ch *Chain) Keep(preds ...record.Predicate) *Chain {
	return ch.then("Keep", fmt.Sprintf("%d predicates", len(preds)), func(c *Collection) (*Collection, error) {
		return c.Keep(preds...)
	})
}

// Select defers Collection.Select.
func (ch *Chain) Select(keys ...string) *Chain {
	return ch.then("Select", strings.Join(keys, ", "), func(c *Collection) (*Collection, error) {
		return c.Select(keys...)
	})
}

// Drop defers Collection.Drop.
func (ch *Chain) Drop(keys ...string) *Chain {
	return ch.then("Drop", strings.Join(keys, ", "), func(c *Collection) (*Collection, error) {
		return c.Drop(keys...)
	})
}

// Mutate defers Collection.Mutate.
func (ch *Chain) Mutate(assignments ...Assignment) *Chain {
	names := make([]string, len(assignments))
	for i, a := range assignments {
		names[i] = a.Name
	}
	return ch.then("Mutate", strings.Join(names, ", "), func(c *Collection) (*Collection, error) {
		return c.Mutate(assignments...)
	})
}

// Sort defers Collection.Sort.
func (ch *Chain) Sort(key SortKey, reverse bool) *Chain {
	return ch.then("Sort", fmt.Sprintf("reverse=%t", reverse), func(c *Collection) (*Collection, error) {
		return c.Sort(key, reverse)
	})
}

// Head defers Collection.Head.
func (ch *Chain) Head(n int) *Chain {
	return ch.then("Head", fmt.Sprint(n), func(c *Collection) (*Collection, error) {
		return c.Head(n)
	})
}

// Tail defers Collection.Tail.
func (ch *Chain) Tail(n int) *Chain {
	return ch.then("Tail", fmt.Sprint(n), func(c *Collection) (*Collection, error) {
		return c.Tail(n)
	})
}

// Map defers Collection.Map.
func (ch *Chain) Map(fn func(item any) (any, error)) *Chain {
	return ch.then("Map", "", func(c *Collection) (*Collection, error) {
		return c.Map(fn)
	})
}

// Reduce defers Collection.Reduce.
func (ch *Chain) Reduce(reducers ...Reducer) *Chain {
	return ch.then("Reduce", fmt.Sprintf("%d reducers", len(reducers)), func(c *Collection) (*Collection, error) {
		return c.Reduce(reducers...)
	})
}

// DropDuplicates defers Collection.DropDuplicates.
func (ch *Chain) DropDuplicates() *Chain {
	return ch.then("DropDuplicates", "", func(c *Collection) (*Collection, error) {
		return c.DropDuplicates(), nil
	})
}

// Rename defers Collection.Rename.
func (ch *Chain) Rename(aliases ...Alias) *Chain {
	return ch.then("Rename", aliasArgs(aliases), func(c *Collection) (*Collection, error) {
		return c.Rename(aliases...)
	})
}

// Explode defers Collection.Explode.
func (ch *Chain) Explode(keys ...string) *Chain {
	return ch.then("Explode", strings.Join(keys, ", "), func(c *Collection) (*Collection, error) {
		return c.Explode(keys...)
	})
}

// ExplodeAs defers Collection.ExplodeAs.
func (ch *Chain) ExplodeAs(aliases ...Alias) *Chain {
	return ch.then("Explode", aliasArgs(aliases), func(c *Collection) (*Collection, error) {
		return c.ExplodeAs(aliases...)
	})
}

// Implode defers Collection.Implode.
func (ch *Chain) Implode(aliases ...Alias) *Chain {
	return ch.then("Implode", aliasArgs(aliases), func(c *Collection) (*Collection, error) {
		return c.Implode(aliases...)
	})
}

// Unpack defers Collection.Unpack.
func (ch *Chain) Unpack(key string) *Chain {
	return ch.then("Unpack", key, func(c *Collection) (*Collection, error) {
		return c.Unpack(key)
	})
}

// GroupBy sets group keys for the following verbs. Unlike
// Collection.GroupBy it leaves the source collection alone.
func (ch *Chain) GroupBy(keys ...string) *Chain {
	return ch.then("GroupBy", strings.Join(keys, ", "), func(c *Collection) (*Collection, error) {
		return &Collection{items: c.items, groups: slices.Clone(keys)}, nil
	})
}

// Ungroup clears group keys for the following verbs.
func (ch *Chain) Ungroup() *Chain {
	return ch.then("Ungroup", "", func(c *Collection) (*Collection, error) {
		return &Collection{items: c.items}, nil
	})
}

// Aggregate defers Collection.Aggregate.
func (ch *Chain) Aggregate(aggs ...Aggregation) *Chain {
	return ch.then("Aggregate", aggArgs(aggs), func(c *Collection) (*Collection, error) {
		return c.Aggregate(aggs...)
	})
}

// Transform defers Collection.Transform.
func (ch *Chain) Transform(aggs ...Aggregation) *Chain {
	return ch.then("Transform", aggArgs(aggs), func(c *Collection) (*Collection, error) {
		return c.Transform(aggs...)
	})
}

// LeftJoin defers Collection.LeftJoin.
func (ch *Chain) LeftJoin(other *Collection, mapping []JoinKey, opts ...JoinOption) *Chain {
	return ch.then("LeftJoin", joinArgs(mapping), func(c *Collection) (*Collection, error) {
		return c.LeftJoin(other, mapping, opts...)
	})
}

// InnerJoin defers Collection.InnerJoin.
func (ch *Chain) InnerJoin(other *Collection, mapping []JoinKey, opts ...JoinOption) *Chain {
	return ch.then("InnerJoin", joinArgs(mapping), func(c *Collection) (*Collection, error) {
		return c.InnerJoin(other, mapping, opts...)
	})
}

// Sample defers Collection.Sample.
func (ch *Chain) Sample(n int, opts SampleOptions) *Chain {
	return ch.then("Sample", fmt.Sprint(n), func(c *Collection) (*Collection, error) {
		return c.Sample(n, opts)
	})
}

// Pipe defers Collection.Pipe.
func (ch *Chain) Pipe(fn func(*Collection) (*Collection, error)) *Chain {
	return ch.then("Pipe", "", func(c *Collection) (*Collection, error) {
		return c.Pipe(fn)
	})
}

// Collect runs the deferred verbs in order and returns the result. The
// result is never the source collection itself.
func (ch *Chain) Collect() (*Collection, error) {
	if ch.source == nil {
		return New(nil), nil
	}

	current := ch.source
	for i, op := range ch.operations {
		name := op.String()
		if v, ok := op.(*verbOperation); ok {
			name = v.name
		}

		var next *Collection
		err := ch.metrics.RecordVerb(name, current.Len(), current.IsGrouped(), func() (int, error) {
			var err error
			next, err = op.Apply(current)
			if err != nil {
				return 0, err
			}
			return next.Len(), nil
		})
		if err != nil {
			return nil, fmt.Errorf("step %d %s: %w", i+1, op.String(), err)
		}
		current = next
	}
	if current == ch.source {
		return current.Copy(), nil
	}
	return current, nil
}

// Explain describes the source and the deferred steps. Steps that already
// ran under an enabled metrics collector carry their row counts and timing.
func (ch *Chain) Explain() monitoring.Plan {
	rows := 0
	var groups []string
	if ch.source != nil {
		rows = ch.source.Len()
		groups = ch.source.Groups()
	}

	pb := monitoring.NewPlanBuilder(rows, groups)
	for _, op := range ch.operations {
		if v, ok := op.(*verbOperation); ok {
			pb.AddStep(v.name, v.args)
			continue
		}
		pb.AddStep(op.String(), "")
	}
	return pb.WithMetrics(ch.metrics.GetMetrics()).Build()
}

// String describes the source and the deferred steps.
func (ch *Chain) String() string {
	var b strings.Builder
	b.WriteString("Chain:\n")
	if ch.source != nil {
		fmt.Fprintf(&b, "  source: %s\n", ch.source.String())
	}
	b.WriteString("  operations:\n")
	for i, op := range ch.operations {
		fmt.Fprintf(&b, "    %d. %s\n", i+1, op.String())
	}
	return b.String()
}

func aliasArgs(aliases []Alias) string {
	parts := make([]string, len(aliases))
	for i, a := range aliases {
		parts[i] = a.New + "=" + a.Old
	}
	return strings.Join(parts, ", ")
}

func aggArgs(aggs []Aggregation) string {
	parts := make([]string, len(aggs))
	for i, a := range aggs {
		parts[i] = fmt.Sprintf("%s=%s(%s)", a.Name, a.Summary, a.Key)
	}
	return strings.Join(parts, ", ")
}

func joinArgs(mapping []JoinKey) string {
	parts := make([]string, len(mapping))
	for i, m := range mapping {
		parts[i] = m.Left + "=" + m.Right
	}
	return strings.Join(parts, ", ")
}
