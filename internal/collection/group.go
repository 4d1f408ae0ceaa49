package collection

import (
	"slices"

	"github.com/paveg/clump/internal/errors"
	"github.com/paveg/clump/internal/record"
)

// GroupBy sets the group keys on the receiver, replacing any previous
// ones, and returns it.
func (c *Collection) GroupBy(keys ...string) *Collection {
	c.groups = slices.Clone(keys)
	return c
}

// Ungroup clears the group keys on the receiver and returns it.
func (c *Collection) Ungroup() *Collection {
	c.groups = nil
	return c
}

// Groups returns the active group keys.
func (c *Collection) Groups() []string {
	if c.groups == nil {
		return []string{}
	}
	return slices.Clone(c.groups)
}

// IsGrouped reports whether any group key is set.
func (c *Collection) IsGrouped() bool {
	return len(c.groups) > 0
}

// distinctValues tracks the first-seen distinct values of one key.
type distinctValues struct {
	values  []any
	buckets map[uint64][]int
}

func newDistinctValues() *distinctValues {
	return &distinctValues{buckets: make(map[uint64][]int)}
}

// index returns the position of v, adding it when unseen.
func (d *distinctValues) index(v any) int {
	h := record.Fingerprint(v)
	for _, i := range d.buckets[h] {
		if record.Equal(d.values[i], v) {
			return i
		}
	}
	d.values = append(d.values, v)
	d.buckets[h] = append(d.buckets[h], len(d.values)-1)
	return len(d.values) - 1
}

// partition is the records matching one group combination.
type partition struct {
	combination record.Record
	position    []int
	records     []record.Record
}

// enumerate scans the records once and returns the distinct values of each
// group key together with the non-empty partitions, ordered as their
// combinations appear in the Cartesian product of those values.
func (c *Collection) enumerate(op string) ([]*distinctValues, []*partition, error) {
	recs, err := c.dictOnly(op)
	if err != nil {
		return nil, nil, err
	}

	distinct := make([]*distinctValues, len(c.groups))
	for i := range distinct {
		distinct[i] = newDistinctValues()
	}

	byPosition := make(map[string]*partition)
	parts := make([]*partition, 0)
	for i, r := range recs {
		position := make([]int, len(c.groups))
		for g, key := range c.groups {
			v, ok := r[key]
			if !ok {
				return nil, nil, errors.NewKeyNotFoundError(op, key, i)
			}
			position[g] = distinct[g].index(v)
		}

		id := positionID(position)
		p, ok := byPosition[id]
		if !ok {
			combination := make(record.Record, len(c.groups))
			for g, key := range c.groups {
				combination[key] = distinct[g].values[position[g]]
			}
			p = &partition{combination: combination, position: position}
			byPosition[id] = p
			parts = append(parts, p)
		}
		p.records = append(p.records, r)
	}

	slices.SortFunc(parts, func(a, b *partition) int {
		return slices.Compare(a.position, b.position)
	})
	return distinct, parts, nil
}

func positionID(position []int) string {
	b := make([]byte, 0, len(position)*4)
	for _, p := range position {
		b = append(b, byte(p>>24), byte(p>>16), byte(p>>8), byte(p))
	}
	return string(b)
}

// GroupCombinations returns every combination of the distinct values of the
// group keys, including combinations no record carries. An ungrouped
// collection has exactly one, empty, combination.
func (c *Collection) GroupCombinations() ([]record.Record, error) {
	distinct, _, err := c.enumerate("GroupCombinations")
	if err != nil {
		return nil, err
	}

	combos := []record.Record{{}}
	for g, key := range c.groups {
		next := make([]record.Record, 0, len(combos)*len(distinct[g].values))
		for _, combo := range combos {
			for _, v := range distinct[g].values {
				r := make(record.Record, len(combo)+1)
				for k, cv := range combo {
					r[k] = cv
				}
				r[key] = record.CloneValue(v)
				next = append(next, r)
			}
		}
		combos = next
	}
	return combos, nil
}

// Partitions splits the collection into one Collection per group
// combination that has at least one record, in combination order. Each
// partition keeps the group keys.
func (c *Collection) Partitions() ([]*Collection, error) {
	_, parts, err := c.enumerate("Partitions")
	if err != nil {
		return nil, err
	}
	out := make([]*Collection, len(parts))
	for i, p := range parts {
		out[i] = c.derive(fromRecordSlice(p.records)).Copy()
	}
	return out, nil
}

// partitionVerb runs a verb over the records of one partition. combination
// is empty when the collection is ungrouped.
type partitionVerb func(records []record.Record, combination record.Record) ([]any, error)

// grouped applies verb to the whole collection when ungrouped, and to each
// non-empty partition otherwise, concatenating results in combination
// order. The dict-only check always runs first.
func (c *Collection) grouped(op string, verb partitionVerb) (*Collection, error) {
	recs, err := c.dictOnly(op)
	if err != nil {
		return nil, err
	}
	if !c.IsGrouped() {
		out, err := verb(recs, record.Record{})
		if err != nil {
			return nil, err
		}
		return c.derive(out), nil
	}

	_, parts, err := c.enumerate(op)
	if err != nil {
		return nil, err
	}
	logger().Debug("grouped verb", "op", op, "groups", c.groups, "partitions", len(parts), "records", len(recs))

	items := make([]any, 0, len(recs))
	for _, p := range parts {
		out, err := verb(p.records, p.combination)
		if err != nil {
			return nil, err
		}
		items = append(items, out...)
	}
	return c.derive(items), nil
}

