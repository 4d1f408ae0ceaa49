package io

import (
	"fmt"

	"github.com/paveg/clump/internal/collection"
	"github.com/paveg/clump/internal/errors"
	"gopkg.in/yaml.v3"
)

// Read decodes the first YAML document. A sequence yields one item per
// element; a single mapping yields a one-record collection.
func (r *YAMLReader) Read() (*collection.Collection, error) {
	if err := r.options.validate("ReadYAML"); err != nil {
		return nil, err
	}

	var doc any
	if err := yaml.NewDecoder(r.reader).Decode(&doc); err != nil && !isEOF(err) {
		return nil, fmt.Errorf("decoding YAML: %w", err)
	}

	var items []any
	switch v := normalizeYAML(doc).(type) {
	case nil:
		items = []any{}
	case []any:
		items = v
	case map[string]any:
		items = []any{v}
	default:
		return nil, errors.NewArgumentError("ReadYAML", fmt.Sprintf("expected a sequence or a mapping, got %T", v))
	}

	if r.options.N > 0 && len(items) > r.options.N {
		items = items[:r.options.N]
	}
	return collection.New(items), nil
}

// normalizeYAML turns mappings with non-string keys into records and int
// into int64, matching what the JSON reader produces.
func normalizeYAML(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, inner := range val {
			val[k] = normalizeYAML(inner)
		}
		return val
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[fmt.Sprint(k)] = normalizeYAML(inner)
		}
		return out
	case []any:
		for i, inner := range val {
			val[i] = normalizeYAML(inner)
		}
		return val
	case int:
		return int64(val)
	default:
		return v
	}
}

// Write encodes the Collection as a YAML sequence. Mapping keys are sorted.
func (w *YAMLWriter) Write(c *collection.Collection) error {
	enc := yaml.NewEncoder(w.writer)
	enc.SetIndent(2)
	if err := enc.Encode(c.Collect()); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("closing YAML encoder: %w", err)
	}
	return nil
}
