package io

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/paveg/clump/internal/collection"
	"github.com/paveg/clump/internal/errors"
)

// Format names a supported file format.
type Format string

const (
	FormatJSON    Format = "json"
	FormatJSONL   Format = "jsonl"
	FormatCSV     Format = "csv"
	FormatTSV     Format = "tsv"
	FormatYAML    Format = "yaml"
	FormatParquet Format = "parquet"
)

var formatsByExtension = map[string]Format{
	".json":    FormatJSON,
	".jsonl":   FormatJSONL,
	".ndjson":  FormatJSONL,
	".csv":     FormatCSV,
	".tsv":     FormatTSV,
	".yaml":    FormatYAML,
	".yml":     FormatYAML,
	".parquet": FormatParquet,
}

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(name))
	switch f {
	case FormatJSON, FormatJSONL, FormatCSV, FormatTSV, FormatYAML, FormatParquet:
		return f, nil
	}
	return "", errors.NewArgumentError("Format", fmt.Sprintf("unknown format %q", name))
}

// FormatFromPath infers the format from a path or URL extension.
func FormatFromPath(path string) (Format, error) {
	if i := strings.IndexAny(path, "?#"); i >= 0 && IsURL(path) {
		path = path[:i]
	}
	if f, ok := formatsByExtension[strings.ToLower(filepath.Ext(path))]; ok {
		return f, nil
	}
	return "", errors.NewArgumentError("Format", fmt.Sprintf("cannot infer format from %q", path))
}

// NewReader returns the reader for format over r.
func NewReader(r io.Reader, format Format, opts ReadOptions) (DataReader, error) {
	switch format {
	case FormatJSON:
		return NewJSONReader(r, JSONOptions{ReadOptions: opts, Format: JSONArray}), nil
	case FormatJSONL:
		return NewJSONReader(r, JSONOptions{ReadOptions: opts, Format: JSONLines}), nil
	case FormatCSV, FormatTSV:
		csvOpts := DefaultCSVOptions()
		csvOpts.ReadOptions = opts
		if format == FormatTSV {
			csvOpts.Delimiter = '\t'
		}
		return NewCSVReader(r, csvOpts), nil
	case FormatYAML:
		return NewYAMLReader(r, YAMLOptions{ReadOptions: opts}), nil
	case FormatParquet:
		pqOpts := DefaultParquetOptions()
		pqOpts.ReadOptions = opts
		return NewParquetReader(r, pqOpts, nil), nil
	default:
		return nil, errors.NewArgumentError("Read", fmt.Sprintf("unknown format %q", format))
	}
}

// NewWriter returns the writer for format over w.
func NewWriter(w io.Writer, format Format) (DataWriter, error) {
	switch format {
	case FormatJSON:
		return NewJSONWriter(w, JSONOptions{Format: JSONArray}), nil
	case FormatJSONL:
		return NewJSONWriter(w, JSONOptions{Format: JSONLines}), nil
	case FormatCSV:
		return NewCSVWriter(w, DefaultCSVOptions()), nil
	case FormatTSV:
		opts := DefaultCSVOptions()
		opts.Delimiter = '\t'
		return NewCSVWriter(w, opts), nil
	case FormatYAML:
		return NewYAMLWriter(w), nil
	case FormatParquet:
		return NewParquetWriter(w, DefaultParquetOptions(), nil), nil
	default:
		return nil, errors.NewArgumentError("Write", fmt.Sprintf("unknown format %q", format))
	}
}

// ReadFile reads path, a file, glob pattern or URL, in the format given by
// its extension. A pattern's matches are read in order and concatenated;
// opts.N applies to each source.
func ReadFile(ctx context.Context, path string, opts ReadOptions) (*collection.Collection, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	return ReadFormat(ctx, path, format, opts)
}

// ReadFormat is ReadFile with an explicit format.
func ReadFormat(ctx context.Context, path string, format Format, opts ReadOptions) (*collection.Collection, error) {
	if err := opts.validate("Read"); err != nil {
		return nil, err
	}
	return readSources(ctx, path, func(r io.Reader) (*collection.Collection, error) {
		reader, err := NewReader(r, format, opts)
		if err != nil {
			return nil, err
		}
		return reader.Read()
	})
}

// ReadJSON reads JSON array files.
func ReadJSON(ctx context.Context, path string, n int) (*collection.Collection, error) {
	return ReadFormat(ctx, path, FormatJSON, ReadOptions{N: n})
}

// ReadJSONL reads JSON Lines files.
func ReadJSONL(ctx context.Context, path string, n int) (*collection.Collection, error) {
	return ReadFormat(ctx, path, FormatJSONL, ReadOptions{N: n})
}

// ReadYAML reads YAML files.
func ReadYAML(ctx context.Context, path string, n int) (*collection.Collection, error) {
	return ReadFormat(ctx, path, FormatYAML, ReadOptions{N: n})
}

// ReadCSV reads CSV files with explicit options.
func ReadCSV(ctx context.Context, path string, opts CSVOptions) (*collection.Collection, error) {
	if err := opts.validate("ReadCSV"); err != nil {
		return nil, err
	}
	return readSources(ctx, path, func(r io.Reader) (*collection.Collection, error) {
		return NewCSVReader(r, opts).Read()
	})
}

// ReadParquet reads Parquet files with explicit options.
func ReadParquet(ctx context.Context, path string, opts ParquetOptions) (*collection.Collection, error) {
	if err := opts.validate("ReadParquet"); err != nil {
		return nil, err
	}
	return readSources(ctx, path, func(r io.Reader) (*collection.Collection, error) {
		return NewParquetReader(r, opts, nil).ReadContext(ctx)
	})
}

// WriteFile writes c to path in the format given by its extension,
// replacing any existing file.
func WriteFile(path string, c *collection.Collection) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	return WriteFormat(path, c, format)
}

// WriteFormat is WriteFile with an explicit format.
func WriteFormat(path string, c *collection.Collection, format Format) error {
	if _, err := ParseFormat(string(format)); err != nil {
		return err
	}
	return writeFile(path, func(w io.Writer) error {
		writer, err := NewWriter(w, format)
		if err != nil {
			return err
		}
		return writer.Write(c)
	})
}

// WriteJSON writes c as a JSON array, pretty-printed when indent > 0.
func WriteJSON(path string, c *collection.Collection, indent int) error {
	return writeFile(path, func(w io.Writer) error {
		return NewJSONWriter(w, JSONOptions{Format: JSONArray, Indent: indent}).Write(c)
	})
}

// WriteJSONL writes c as JSON Lines.
func WriteJSONL(path string, c *collection.Collection) error {
	return writeFile(path, func(w io.Writer) error {
		return NewJSONWriter(w, JSONOptions{Format: JSONLines}).Write(c)
	})
}

// WriteCSV writes c as CSV.
func WriteCSV(path string, c *collection.Collection, opts CSVOptions) error {
	return writeFile(path, func(w io.Writer) error {
		return NewCSVWriter(w, opts).Write(c)
	})
}

// WriteYAML writes c as a YAML sequence.
func WriteYAML(path string, c *collection.Collection) error {
	return writeFile(path, func(w io.Writer) error {
		return NewYAMLWriter(w).Write(c)
	})
}

// WriteParquet writes c as Parquet.
func WriteParquet(path string, c *collection.Collection, opts ParquetOptions) error {
	return writeFile(path, func(w io.Writer) error {
		return NewParquetWriter(w, opts, nil).Write(c)
	})
}
