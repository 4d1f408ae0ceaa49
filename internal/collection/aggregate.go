package collection

import (
	"github.com/paveg/clump/internal/errors"
	"github.com/paveg/clump/internal/record"
	"github.com/paveg/clump/internal/summary"
)

// Aggregation stores the summary of Key's values under Name.
type Aggregation struct {
	Name    string
	Key     string
	Summary summary.Summary
}

// Agg builds an Aggregation using a registered summary name.
func Agg(name, key, summaryName string) Aggregation {
	return Aggregation{Name: name, Key: key, Summary: summary.Named(summaryName)}
}

// AggFunc builds an Aggregation using a custom summary function.
func AggFunc(name, key string, fn summary.Fn) Aggregation {
	return Aggregation{Name: name, Key: key, Summary: summary.Func(fn)}
}

type resolvedAgg struct {
	name string
	key  string
	fn   summary.Fn
}

func resolveAggs(op string, aggs []Aggregation) ([]resolvedAgg, error) {
	out := make([]resolvedAgg, len(aggs))
	for i, a := range aggs {
		fn, err := a.Summary.Resolve()
		if err != nil {
			if ce, ok := err.(*errors.CollectionError); ok {
				return nil, errors.NewValueError(op, a.Key, ce.Message)
			}
			return nil, err
		}
		out[i] = resolvedAgg{name: a.Name, key: a.Key, fn: fn}
	}
	return out, nil
}

// presentValues returns copies of the values of key on the records that
// have it.
func presentValues(recs []record.Record, key string) []any {
	values := make([]any, 0, len(recs))
	for _, r := range recs {
		if v, ok := r[key]; ok {
			values = append(values, record.CloneValue(v))
		}
	}
	return values
}

// summarise builds one summary record over recs, stamped with combination.
// Summary fields win over group keys of the same name.
func summarise(op string, recs []record.Record, combination record.Record, aggs []resolvedAgg) (record.Record, error) {
	out := record.Clone(combination)
	for _, a := range aggs {
		v, err := a.fn(presentValues(recs, a.key))
		if err != nil {
			return nil, errors.Wrap(op, err)
		}
		out[a.name] = record.CloneValue(v)
	}
	return out, nil
}

// Aggregate reduces the collection to one summary record, or one per
// non-empty group when grouped. Group records carry their group key values.
func (c *Collection) Aggregate(aggs ...Aggregation) (*Collection, error) {
	resolved, err := resolveAggs("Aggregate", aggs)
	if err != nil {
		return nil, err
	}
	return c.grouped("Aggregate", func(recs []record.Record, combination record.Record) ([]any, error) {
		out, err := summarise("Aggregate", recs, combination, resolved)
		if err != nil {
			return nil, err
		}
		return []any{out}, nil
	})
}

// Transform attaches the aggregate of each record's group to the record
// itself. It is the grouped Aggregate left-joined back onto the records on
// the group keys; ungrouped, the single summary joins onto every record.
func (c *Collection) Transform(aggs ...Aggregation) (*Collection, error) {
	resolved, err := resolveAggs("Transform", aggs)
	if err != nil {
		return nil, err
	}
	opts := newJoinOptions(nil)
	mapping := Same(c.groups...)

	return c.grouped("Transform", func(recs []record.Record, combination record.Record) ([]any, error) {
		agg, err := summarise("Transform", recs, combination, resolved)
		if err != nil {
			return nil, err
		}
		part := &Collection{items: fromRecordSlice(recs)}
		joined, err := part.join("Transform", &Collection{items: []any{agg}}, mapping, true, opts)
		if err != nil {
			return nil, err
		}
		return joined.items, nil
	})
}

// Summarise applies s to the present values of key, ignoring groups.
func (c *Collection) Summarise(s summary.Summary, key string) (any, error) {
	recs, err := c.dictOnly("Summarise")
	if err != nil {
		return nil, err
	}
	v, err := s.Apply(presentValues(recs, key))
	if err != nil {
		return nil, err
	}
	return record.CloneValue(v), nil
}

func (c *Collection) summariseNamed(name, key string) (any, error) {
	return c.Summarise(summary.Named(name), key)
}

// Sum adds the values of key. Nil when no record has it.
func (c *Collection) Sum(key string) (any, error) { return c.summariseNamed("sum", key) }

// Mean averages the values of key. Nil when no record has it.
func (c *Collection) Mean(key string) (any, error) { return c.summariseNamed("mean", key) }

// Count counts the records that have key.
func (c *Collection) Count(key string) (any, error) { return c.summariseNamed("count", key) }

// NUnique counts the distinct values of key.
func (c *Collection) NUnique(key string) (any, error) { return c.summariseNamed("n_unique", key) }

// Min returns the smallest value of key.
func (c *Collection) Min(key string) (any, error) { return c.summariseNamed("min", key) }

// Max returns the largest value of key.
func (c *Collection) Max(key string) (any, error) { return c.summariseNamed("max", key) }

// Unique returns the distinct values of key in first-seen order.
func (c *Collection) Unique(key string) (any, error) { return c.summariseNamed("unique", key) }

// Median returns the median value of key.
func (c *Collection) Median(key string) (any, error) { return c.summariseNamed("median", key) }

// Variance returns the sample variance of key.
func (c *Collection) Variance(key string) (any, error) { return c.summariseNamed("var", key) }

// Std returns the sample standard deviation of key.
func (c *Collection) Std(key string) (any, error) { return c.summariseNamed("std", key) }

// First returns the first value of key.
func (c *Collection) First(key string) (any, error) { return c.summariseNamed("first", key) }

// Last returns the last value of key.
func (c *Collection) Last(key string) (any, error) { return c.summariseNamed("last", key) }
