package collection

import (
	"fmt"
	"slices"

	"github.com/paveg/clump/internal/errors"
	"github.com/paveg/clump/internal/record"
)

// Assignment binds a Mapper's output to a key in Mutate.
type Assignment struct {
	Name   string
	Mapper record.Mapper
}

// Assign pairs name with m.
func Assign(name string, m record.Mapper) Assignment {
	return Assignment{Name: name, Mapper: m}
}

// AssignFunc pairs name with a plain function.
func AssignFunc(name string, fn func(record.Record) (any, error)) Assignment {
	return Assignment{Name: name, Mapper: record.MapperFunc(fn)}
}

// SortKey extracts the value records are ordered by.
type SortKey func(r record.Record) (any, error)

// By orders records by the value of key. Records without it are a key error.
func By(key string) SortKey {
	return func(r record.Record) (any, error) {
		v, ok := r[key]
		if !ok {
			return nil, errors.NewKeyError("Sort", key, "key does not exist on record")
		}
		return v, nil
	}
}

// Reducer folds all items into one value under Name.
type Reducer struct {
	Name string
	Fn   func(acc, item any) (any, error)
}

// Alias names a key: New is the output name, Old the source key.
type Alias struct {
	New string
	Old string
}

// As builds an Alias storing old under newName.
func As(newName, old string) Alias {
	return Alias{New: newName, Old: old}
}

// Keep retains the records for which every predicate holds. Predicates run
// one after another as successive filters and see a copy of each record.
func (c *Collection) Keep(preds ...record.Predicate) (*Collection, error) {
	recs, err := c.dictOnly("Keep")
	if err != nil {
		return nil, err
	}
	for _, pred := range preds {
		kept := recs[:0:0]
		for _, r := range recs {
			ok, err := pred(record.Clone(r))
			if err != nil {
				return nil, errors.Wrap("Keep", err)
			}
			if ok {
				kept = append(kept, r)
			}
		}
		recs = kept
	}
	return c.derive(fromRecordSlice(recs)), nil
}

// Select projects every record onto keys. A record lacking one of them is
// a key error.
func (c *Collection) Select(keys ...string) (*Collection, error) {
	recs, err := c.dictOnly("Select")
	if err != nil {
		return nil, err
	}
	items := make([]any, len(recs))
	for i, r := range recs {
		out := make(record.Record, len(keys))
		for _, k := range keys {
			v, ok := r[k]
			if !ok {
				return nil, errors.NewKeyNotFoundError("Select", k, i)
			}
			out[k] = v
		}
		items[i] = out
	}
	return c.derive(items), nil
}

// Drop removes keys from every record. Missing keys are ignored.
func (c *Collection) Drop(keys ...string) (*Collection, error) {
	recs, err := c.dictOnly("Drop")
	if err != nil {
		return nil, err
	}
	items := make([]any, len(recs))
	for i, r := range recs {
		out := make(record.Record, len(r))
		for k, v := range r {
			if !slices.Contains(keys, k) {
				out[k] = v
			}
		}
		items[i] = out
	}
	return c.derive(items), nil
}

// Mutate adds or replaces keys. Each assignment sees the record as updated
// by the earlier assignments of the same call. Stateful mappers are cloned
// before use, once per partition when grouped, so the caller's mappers are
// never advanced.
func (c *Collection) Mutate(assignments ...Assignment) (*Collection, error) {
	for _, a := range assignments {
		if a.Mapper == nil {
			return nil, errors.NewValueError("Mutate", a.Name, "mapper is nil")
		}
	}

	return c.grouped("Mutate", func(recs []record.Record, _ record.Record) ([]any, error) {
		mappers := make([]record.Mapper, len(assignments))
		for i, a := range assignments {
			mappers[i] = record.Fresh(a.Mapper)
		}

		items := make([]any, len(recs))
		for i, r := range recs {
			next := record.Clone(r)
			for j, a := range assignments {
				v, err := mappers[j].Apply(next)
				if err != nil {
					return nil, errors.Wrap("Mutate", err)
				}
				next[a.Name] = v
			}
			items[i] = next
		}
		return items, nil
	})
}

// Sort orders records stably by key. Under grouping each partition is
// sorted on its own.
func (c *Collection) Sort(key SortKey, reverse bool) (*Collection, error) {
	return c.grouped("Sort", func(recs []record.Record, _ record.Record) ([]any, error) {
		type keyed struct {
			key any
			rec record.Record
		}
		rows := make([]keyed, len(recs))
		for i, r := range recs {
			k, err := key(record.Clone(r))
			if err != nil {
				return nil, errors.Wrap("Sort", err)
			}
			rows[i] = keyed{key: k, rec: r}
		}

		slices.SortStableFunc(rows, func(a, b keyed) int {
			if reverse {
				return record.Compare(b.key, a.key)
			}
			return record.Compare(a.key, b.key)
		})

		items := make([]any, len(rows))
		for i, row := range rows {
			items[i] = row.rec
		}
		return items, nil
	})
}

// Head returns the first n items, or all of them when there are fewer.
func (c *Collection) Head(n int) (*Collection, error) {
	if n < 0 {
		return nil, errors.NewArgumentError("Head", fmt.Sprintf("n must be non-negative, got %d", n))
	}
	n = min(n, len(c.items))
	return c.derive(slices.Clone(c.items[:n])), nil
}

// Tail returns the last n items, or all of them when there are fewer.
func (c *Collection) Tail(n int) (*Collection, error) {
	if n < 0 {
		return nil, errors.NewArgumentError("Tail", fmt.Sprintf("n must be non-negative, got %d", n))
	}
	n = min(n, len(c.items))
	return c.derive(slices.Clone(c.items[len(c.items)-n:])), nil
}

// Map replaces every item with fn's result. fn receives a copy and may
// return values that are not records.
func (c *Collection) Map(fn func(item any) (any, error)) (*Collection, error) {
	items := make([]any, len(c.items))
	for i, item := range c.items {
		v, err := fn(record.CloneValue(item))
		if err != nil {
			return nil, errors.Wrap("Map", err)
		}
		items[i] = v
	}
	return c.derive(items), nil
}

// Reduce folds every item left to right with each reducer and returns a
// one-record Collection holding one key per reducer.
func (c *Collection) Reduce(reducers ...Reducer) (*Collection, error) {
	if len(c.items) == 0 {
		return nil, errors.NewArgumentError("Reduce", "cannot reduce an empty collection")
	}
	out := make(record.Record, len(reducers))
	for _, red := range reducers {
		acc := record.CloneValue(c.items[0])
		for _, item := range c.items[1:] {
			var err error
			acc, err = red.Fn(acc, record.CloneValue(item))
			if err != nil {
				return nil, errors.Wrap("Reduce", err)
			}
		}
		out[red.Name] = acc
	}
	return c.derive([]any{out}), nil
}

// DropDuplicates removes items equal to an earlier item.
func (c *Collection) DropDuplicates() *Collection {
	items := make([]any, 0, len(c.items))
	buckets := make(map[uint64][]any)
	for _, item := range c.items {
		h := record.Fingerprint(item)
		if record.Contains(buckets[h], item) {
			continue
		}
		buckets[h] = append(buckets[h], item)
		items = append(items, item)
	}
	return c.derive(items)
}

// Rename moves the value at each alias' Old key to its New key, in order.
// A record lacking Old is a key error.
func (c *Collection) Rename(aliases ...Alias) (*Collection, error) {
	recs, err := c.dictOnly("Rename")
	if err != nil {
		return nil, err
	}
	items := make([]any, len(recs))
	for i, r := range recs {
		out := make(record.Record, len(r))
		for k, v := range r {
			out[k] = v
		}
		for _, a := range aliases {
			v, ok := out[a.Old]
			if !ok {
				return nil, errors.NewKeyNotFoundError("Rename", a.Old, i)
			}
			out[a.New] = v
			if a.New != a.Old {
				delete(out, a.Old)
			}
		}
		items[i] = out
	}
	return c.derive(items), nil
}
