package cli

import (
	"fmt"
	"strings"

	"github.com/paveg/clump/internal/collection"
	"github.com/paveg/clump/internal/expr"
	"github.com/paveg/clump/internal/summary"
)

// parseAggregation parses "name=key:summary" or "key:summary". Without a
// name the output is called "<summary>_<key>".
func parseAggregation(spec string) (collection.Aggregation, error) {
	name, rest, named := strings.Cut(spec, "=")
	if !named {
		rest = spec
	}
	key, fn, ok := strings.Cut(rest, ":")
	if !ok || key == "" || fn == "" {
		return collection.Aggregation{}, fmt.Errorf("aggregation %q: want name=key:summary", spec)
	}
	if _, known := summary.Lookup(fn); !known {
		return collection.Aggregation{}, fmt.Errorf("aggregation %q: unknown summary %q, want one of %s",
			spec, fn, strings.Join(summary.Names(), ", "))
	}
	if !named {
		name = fn + "_" + key
	}
	if name == "" {
		return collection.Aggregation{}, fmt.Errorf("aggregation %q: empty name", spec)
	}
	return collection.Agg(name, key, fn), nil
}

// parseAssignment parses "name=expression".
func parseAssignment(spec string) (collection.Assignment, error) {
	name, src, ok := strings.Cut(spec, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" || strings.HasPrefix(src, "=") {
		return collection.Assignment{}, fmt.Errorf("mutation %q: want name=expression", spec)
	}
	e, err := expr.Parse(src)
	if err != nil {
		return collection.Assignment{}, fmt.Errorf("mutation %q: %w", spec, err)
	}
	return collection.Assign(name, expr.Mapper(e)), nil
}

// parseJoinKeys parses "key" or "left=right" pairs.
func parseJoinKeys(specs []string) ([]collection.JoinKey, error) {
	keys := make([]collection.JoinKey, 0, len(specs))
	for _, spec := range specs {
		left, right, pair := strings.Cut(spec, "=")
		if !pair {
			right = left
		}
		if left == "" || right == "" {
			return nil, fmt.Errorf("join key %q: want key or left=right", spec)
		}
		keys = append(keys, collection.On(left, right))
	}
	return keys, nil
}

// parseAliases parses "new=old" pairs.
func parseAliases(specs []string) ([]collection.Alias, error) {
	aliases := make([]collection.Alias, 0, len(specs))
	for _, spec := range specs {
		newName, old, ok := strings.Cut(spec, "=")
		if !ok || newName == "" || old == "" {
			return nil, fmt.Errorf("rename %q: want new=old", spec)
		}
		aliases = append(aliases, collection.As(newName, old))
	}
	return aliases, nil
}
