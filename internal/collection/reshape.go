package collection

import (
	"fmt"

	"github.com/paveg/clump/internal/errors"
	"github.com/paveg/clump/internal/record"
)

// Explode turns every record into one record per element of the listed
// list-valued keys. Several keys produce their Cartesian product.
func (c *Collection) Explode(keys ...string) (*Collection, error) {
	aliases := make([]Alias, len(keys))
	for i, k := range keys {
		aliases[i] = Alias{New: k, Old: k}
	}
	return c.ExplodeAs(aliases...)
}

// ExplodeAs is Explode with renaming: the elements of each alias' Old list
// are stored under New. Sources are dropped unless they are also a New name.
func (c *Collection) ExplodeAs(aliases ...Alias) (*Collection, error) {
	recs, err := c.dictOnly("Explode")
	if err != nil {
		return nil, err
	}

	newNames := make(map[string]struct{}, len(aliases))
	for _, a := range aliases {
		newNames[a.New] = struct{}{}
	}

	items := make([]any, 0, len(recs))
	for i, r := range recs {
		lists := make([][]any, len(aliases))
		for j, a := range aliases {
			v, ok := r[a.Old]
			if !ok {
				return nil, errors.NewKeyNotFoundError("Explode", a.Old, i)
			}
			list, ok := record.AsList(v)
			if !ok {
				return nil, errors.NewValueError("Explode", a.Old, fmt.Sprintf("value on record %d is not a list: %v", i, v))
			}
			lists[j] = list
		}

		for _, combo := range product(lists) {
			out := make(record.Record, len(r)+len(aliases))
			for k, v := range r {
				out[k] = v
			}
			for _, a := range aliases {
				if _, keep := newNames[a.Old]; !keep {
					delete(out, a.Old)
				}
			}
			for j, a := range aliases {
				out[a.New] = combo[j]
			}
			items = append(items, out)
		}
	}
	return c.derive(items), nil
}

// product returns the Cartesian product of lists, the first list varying
// slowest. Any empty list gives an empty product.
func product(lists [][]any) [][]any {
	out := [][]any{{}}
	for _, list := range lists {
		next := make([][]any, 0, len(out)*len(list))
		for _, prefix := range out {
			for _, v := range list {
				combo := make([]any, len(prefix), len(prefix)+1)
				copy(combo, prefix)
				next = append(next, append(combo, v))
			}
		}
		out = next
	}
	return out
}

// Implode is the inverse of Explode. Records that agree on every key other
// than the sources form one group; each alias' New key receives the list of
// Old values in that group, in record order. One record is returned per
// group, in first-seen order.
func (c *Collection) Implode(aliases ...Alias) (*Collection, error) {
	if len(aliases) == 0 {
		return nil, errors.NewArgumentError("Implode", "at least one alias is required")
	}
	recs, err := c.dictOnly("Implode")
	if err != nil {
		return nil, err
	}

	sources := make(map[string]struct{}, len(aliases))
	for _, a := range aliases {
		sources[a.Old] = struct{}{}
	}

	type group struct {
		identity record.Record
		values   [][]any
	}
	groups := make([]*group, 0)
	buckets := make(map[uint64][]*group)

	for _, r := range recs {
		identity := make(record.Record, len(r))
		for k, v := range r {
			if _, ok := sources[k]; !ok {
				identity[k] = v
			}
		}

		h := record.Fingerprint(identity)
		var g *group
		for _, candidate := range buckets[h] {
			if record.Equal(candidate.identity, identity) {
				g = candidate
				break
			}
		}
		if g == nil {
			g = &group{identity: identity, values: make([][]any, len(aliases))}
			for j := range g.values {
				g.values[j] = []any{}
			}
			buckets[h] = append(buckets[h], g)
			groups = append(groups, g)
		}

		for j, a := range aliases {
			if v, ok := r[a.Old]; ok {
				g.values[j] = append(g.values[j], v)
			}
		}
	}

	items := make([]any, len(groups))
	for i, g := range groups {
		out := record.Clone(g.identity)
		for j, a := range aliases {
			out[a.New] = record.CloneValue(g.values[j])
		}
		items[i] = out
	}
	return c.derive(items), nil
}

// Unpack explodes key, a list of records, and merges each element into its
// parent record. Element keys win over parent keys.
func (c *Collection) Unpack(key string) (*Collection, error) {
	recs, err := c.dictOnly("Unpack")
	if err != nil {
		return nil, err
	}

	items := make([]any, 0, len(recs))
	for i, r := range recs {
		v, ok := r[key]
		if !ok {
			return nil, errors.NewKeyNotFoundError("Unpack", key, i)
		}
		list, ok := record.AsList(v)
		if !ok {
			return nil, errors.NewValueError("Unpack", key, fmt.Sprintf("value on record %d is not a list: %v", i, v))
		}
		for j, elem := range list {
			inner, ok := record.AsRecord(elem)
			if !ok {
				return nil, errors.NewValueError("Unpack", key, fmt.Sprintf("element %d on record %d is not a record: %v", j, i, elem))
			}
			out := make(record.Record, len(r)+len(inner))
			for k, pv := range r {
				if k != key {
					out[k] = pv
				}
			}
			for k, iv := range inner {
				out[k] = iv
			}
			items = append(items, out)
		}
	}
	return c.derive(items), nil
}

// FlattenKeys turns a record of records into one record per entry, storing
// the entry's key under keyName. Entries are emitted in sorted key order.
func (c *Collection) FlattenKeys(keyName string) (*Collection, error) {
	recs, err := c.dictOnly("FlattenKeys")
	if err != nil {
		return nil, err
	}

	items := make([]any, 0)
	for _, r := range recs {
		for _, k := range sortedKeys(r) {
			inner, ok := record.AsRecord(r[k])
			if !ok {
				return nil, errors.NewValueError("FlattenKeys", k, fmt.Sprintf("value is not a record: %v", r[k]))
			}
			out := make(record.Record, len(inner)+1)
			for ik, iv := range inner {
				out[ik] = iv
			}
			out[keyName] = k
			items = append(items, out)
		}
	}
	return c.derive(items), nil
}
