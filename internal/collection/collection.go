// Package collection implements the record collection and its verbs.
//
// A Collection is an ordered sequence of records plus an ordered tuple of
// group keys. Every verb returns a new Collection and leaves the receiver's
// records untouched; only GroupBy and Ungroup change the receiver, and only
// its group keys.
package collection

import (
	"fmt"
	"slices"

	"github.com/paveg/clump/internal/errors"
	"github.com/paveg/clump/internal/record"
)

// Collection is an ordered sequence of items with optional group keys.
// Items are records, or arbitrary values for the few verbs that accept them.
type Collection struct {
	items  []any
	groups []string
}

// New builds a Collection from a deep copy of items.
func New(items []any) *Collection {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = record.CloneValue(item)
	}
	return &Collection{items: out}
}

// FromRecords builds a Collection from a deep copy of records.
func FromRecords(records []record.Record) *Collection {
	out := make([]any, len(records))
	for i, r := range records {
		out[i] = record.Clone(r)
	}
	return &Collection{items: out}
}

// FromRecord wraps a single record as a one-record Collection.
func FromRecord(r record.Record) *Collection {
	return FromRecords([]record.Record{r})
}

// derive returns a Collection sharing the receiver's group keys. items is
// taken as is; callers must not hand in slices they still write to.
func (c *Collection) derive(items []any) *Collection {
	return &Collection{items: items, groups: slices.Clone(c.groups)}
}

// Len returns the number of items.
func (c *Collection) Len() int {
	return len(c.items)
}

// Shape returns the number of items and the number of distinct keys.
func (c *Collection) Shape() (rows, keys int, err error) {
	k, err := c.Keys(false)
	if err != nil {
		return 0, 0, err
	}
	return len(c.items), len(k), nil
}

// Collect returns a deep copy of the items.
func (c *Collection) Collect() []any {
	out := make([]any, len(c.items))
	for i, item := range c.items {
		out[i] = record.CloneValue(item)
	}
	return out
}

// Records returns deep copies of the records. It fails if any item is not
// a record.
func (c *Collection) Records() ([]record.Record, error) {
	recs, err := c.dictOnly("Records")
	if err != nil {
		return nil, err
	}
	out := make([]record.Record, len(recs))
	for i, r := range recs {
		out[i] = record.Clone(r)
	}
	return out, nil
}

// OnlyRecords reports whether every item is a record.
func (c *Collection) OnlyRecords() bool {
	_, err := c.dictOnly("OnlyRecords")
	return err == nil
}

// dictOnly returns the items viewed as records, or a shape error naming the
// first item that is not one.
func (c *Collection) dictOnly(op string) ([]record.Record, error) {
	recs := make([]record.Record, len(c.items))
	for i, item := range c.items {
		r, ok := record.AsRecord(item)
		if !ok {
			return nil, errors.NewShapeError(op, i, item)
		}
		recs[i] = r
	}
	return recs, nil
}

func fromRecordSlice(recs []record.Record) []any {
	out := make([]any, len(recs))
	for i, r := range recs {
		out[i] = r
	}
	return out
}

// Copy returns a Collection with independent copies of the items and the
// same group keys.
func (c *Collection) Copy() *Collection {
	return c.derive(c.Collect())
}

// Concat appends the items of others after the receiver's.
func (c *Collection) Concat(others ...*Collection) *Collection {
	items := c.Collect()
	for _, o := range others {
		items = append(items, o.Collect()...)
	}
	return c.derive(items)
}

// Pipe calls fn with a copy of the receiver, for chaining user-defined steps.
func (c *Collection) Pipe(fn func(*Collection) (*Collection, error)) (*Collection, error) {
	out, err := fn(c.Copy())
	if err != nil {
		return nil, errors.Wrap("Pipe", err)
	}
	return out, nil
}

// Equals reports whether every item of the receiver appears in other and
// every item of other appears in the receiver. Order and multiplicity are
// ignored.
func (c *Collection) Equals(other []any) bool {
	for _, item := range c.items {
		if !record.Contains(other, item) {
			return false
		}
	}
	for _, item := range other {
		if !record.Contains(c.items, item) {
			return false
		}
	}
	return true
}

// Keys returns the keys found on the records. With overlap false it is the
// union in first-seen order; with overlap true only keys present on every
// record, in the order of the first record.
func (c *Collection) Keys(overlap bool) ([]string, error) {
	recs, err := c.dictOnly("Keys")
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return []string{}, nil
	}

	if overlap {
		keys := sortedKeys(recs[0])
		return slices.DeleteFunc(keys, func(k string) bool {
			for _, r := range recs[1:] {
				if !record.Has(r, k) {
					return true
				}
			}
			return false
		}), nil
	}

	seen := make(map[string]struct{})
	keys := make([]string, 0)
	for _, r := range recs {
		for _, k := range sortedKeys(r) {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// sortedKeys gives map iteration a stable order.
func sortedKeys(r record.Record) []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// String returns a short description of the collection.
func (c *Collection) String() string {
	return fmt.Sprintf("Collection(len=%d, groups=%v)", len(c.items), c.groups)
}
