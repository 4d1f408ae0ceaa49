package collection

import (
	"github.com/paveg/clump/internal/config"
	"github.com/paveg/clump/internal/record"
)

// JoinKey pairs a key on the left collection with a key on the right one.
type JoinKey struct {
	Left  string
	Right string
}

// On builds a JoinKey.
func On(left, right string) JoinKey {
	return JoinKey{Left: left, Right: right}
}

// Same joins on a key of the same name on both sides.
func Same(keys ...string) []JoinKey {
	out := make([]JoinKey, len(keys))
	for i, k := range keys {
		out[i] = JoinKey{Left: k, Right: k}
	}
	return out
}

type joinOptions struct {
	leftSuffix  string
	rightSuffix string
}

// JoinOption configures LeftJoin and InnerJoin.
type JoinOption func(*joinOptions)

// WithSuffixes sets the suffixes appended to keys found on both sides.
func WithSuffixes(left, right string) JoinOption {
	return func(o *joinOptions) {
		o.leftSuffix = left
		o.rightSuffix = right
	}
}

func newJoinOptions(opts []JoinOption) joinOptions {
	cfg := config.GetGlobalConfig()
	o := joinOptions{leftSuffix: cfg.JoinLeftSuffix, rightSuffix: cfg.JoinRightSuffix}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// LeftJoin merges every left record with each right record that matches on
// all of mapping. Left records without a match are kept unchanged. An empty
// mapping is a cross join.
func (c *Collection) LeftJoin(other *Collection, mapping []JoinKey, opts ...JoinOption) (*Collection, error) {
	return c.join("LeftJoin", other, mapping, true, newJoinOptions(opts))
}

// InnerJoin is LeftJoin without the unmatched left records.
func (c *Collection) InnerJoin(other *Collection, mapping []JoinKey, opts ...JoinOption) (*Collection, error) {
	return c.join("InnerJoin", other, mapping, false, newJoinOptions(opts))
}

func (c *Collection) join(op string, other *Collection, mapping []JoinKey, keepUnmatched bool, o joinOptions) (*Collection, error) {
	left, err := c.dictOnly(op)
	if err != nil {
		return nil, err
	}
	right, err := other.dictOnly(op)
	if err != nil {
		return nil, err
	}

	mapped := make(map[string]struct{}, 2*len(mapping))
	for _, m := range mapping {
		mapped[m.Left] = struct{}{}
		mapped[m.Right] = struct{}{}
	}

	items := make([]any, 0, len(left))
	for _, l := range left {
		matched := false
		for _, r := range right {
			if !joinMatch(l, r, mapping) {
				continue
			}
			items = append(items, mergeRecords(l, r, mapped, o))
			matched = true
		}
		if !matched && keepUnmatched {
			items = append(items, l)
		}
	}

	logger().Debug("join", "op", op, "left", len(left), "right", len(right), "rows", len(items))
	return c.derive(items), nil
}

// joinMatch requires every mapped key on both sides with equal values.
func joinMatch(l, r record.Record, mapping []JoinKey) bool {
	for _, m := range mapping {
		lv, ok := l[m.Left]
		if !ok {
			return false
		}
		rv, ok := r[m.Right]
		if !ok {
			return false
		}
		if !record.Equal(lv, rv) {
			return false
		}
	}
	return true
}

// mergeRecords suffixes keys present on both sides, apart from mapped
// keys, and lets right values win for the rest.
func mergeRecords(l, r record.Record, mapped map[string]struct{}, o joinOptions) record.Record {
	collides := func(k string) bool {
		if _, ok := mapped[k]; ok {
			return false
		}
		_, inLeft := l[k]
		_, inRight := r[k]
		return inLeft && inRight
	}

	out := make(record.Record, len(l)+len(r))
	for k, v := range l {
		if collides(k) {
			k += o.leftSuffix
		}
		out[k] = v
	}
	for k, v := range r {
		if collides(k) {
			k += o.rightSuffix
		}
		out[k] = v
	}
	return out
}
