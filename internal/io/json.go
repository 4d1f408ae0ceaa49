package io

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/paveg/clump/internal/collection"
	"github.com/paveg/clump/internal/errors"
)

const maxLineSize = 16 << 20

// Read reads JSON data and returns a Collection.
func (r *JSONReader) Read() (*collection.Collection, error) {
	if err := r.options.validate("ReadJSON"); err != nil {
		return nil, err
	}
	switch r.options.Format {
	case JSONArray:
		return r.readJSONArray()
	case JSONLines:
		return r.readJSONLines()
	default:
		return nil, errors.NewArgumentError("ReadJSON", fmt.Sprintf("unsupported JSON format: %d", r.options.Format))
	}
}

// readJSONArray reads JSON array format.
func (r *JSONReader) readJSONArray() (*collection.Collection, error) {
	data, err := io.ReadAll(r.reader)
	if err != nil {
		return nil, fmt.Errorf("reading JSON data: %w", err)
	}

	v, err := decodeJSON(data)
	if err != nil {
		return nil, fmt.Errorf("unmarshaling JSON: %w", err)
	}

	var items []any
	switch doc := v.(type) {
	case []any:
		items = doc
	case map[string]any:
		items = []any{doc}
	default:
		return nil, errors.NewArgumentError("ReadJSON", fmt.Sprintf("expected an array or an object, got %T", v))
	}

	if r.options.N > 0 && len(items) > r.options.N {
		items = items[:r.options.N]
	}
	return collection.New(items), nil
}

// readJSONLines reads JSON Lines format. Blank lines are skipped.
func (r *JSONReader) readJSONLines() (*collection.Collection, error) {
	scanner := bufio.NewScanner(r.reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	items := make([]any, 0)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		v, err := decodeJSON([]byte(line))
		if err != nil {
			return nil, fmt.Errorf("unmarshaling JSON line %d: %w", lineNum, err)
		}
		items = append(items, v)

		if r.options.limit(len(items)) {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning JSON lines: %w", err)
	}
	return collection.New(items), nil
}

// decodeJSON decodes one JSON value keeping integers as int64.
func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after the first JSON value")
	}
	return normalizeNumbers(v), nil
}

func normalizeNumbers(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := strconv.ParseInt(val.String(), 10, 64); err == nil {
			return i
		}
		f, _ := val.Float64()
		return f
	case map[string]any:
		for k, inner := range val {
			val[k] = normalizeNumbers(inner)
		}
		return val
	case []any:
		for i, inner := range val {
			val[i] = normalizeNumbers(inner)
		}
		return val
	default:
		return v
	}
}

// Write writes the Collection as JSON. Object keys are sorted.
func (w *JSONWriter) Write(c *collection.Collection) error {
	switch w.options.Format {
	case JSONArray:
		enc := w.encoder(w.writer)
		if err := enc.Encode(c.Collect()); err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		return nil
	case JSONLines:
		enc := json.NewEncoder(w.writer)
		enc.SetEscapeHTML(false)
		for i, item := range c.Collect() {
			if err := enc.Encode(item); err != nil {
				return fmt.Errorf("encoding JSON line %d: %w", i+1, err)
			}
		}
		return nil
	default:
		return errors.NewArgumentError("WriteJSON", fmt.Sprintf("unsupported JSON format: %d", w.options.Format))
	}
}

func (w *JSONWriter) encoder(out io.Writer) *json.Encoder {
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	if w.options.Indent > 0 {
		enc.SetIndent("", strings.Repeat(" ", w.options.Indent))
	}
	return enc
}
