// Package io reads and writes record collections.
//
// Supported formats are JSON arrays, JSON Lines, CSV, YAML and Parquet.
// Readers accept local paths, glob patterns (every match is read and the
// results concatenated in lexical path order) and http(s) URLs.
//
// Parquet goes through Apache Arrow: records are converted to an Arrow
// record batch with an inferred schema and written with pqarrow. Arrow
// buffers are released before the call returns.
package io

import (
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/clump/internal/collection"
	"github.com/paveg/clump/internal/config"
	"github.com/paveg/clump/internal/errors"
)

// DefaultBatchSize is the default batch size for Parquet I/O
const DefaultBatchSize = 1000

// DataReader reads one source into a Collection.
type DataReader interface {
	Read() (*collection.Collection, error)
}

// DataWriter writes a Collection to one destination.
type DataWriter interface {
	Write(c *collection.Collection) error
}

// ReadOptions are shared by every reader.
type ReadOptions struct {
	// N limits the number of records read. Zero reads everything.
	N int
}

func (o ReadOptions) validate(op string) error {
	if o.N < 0 {
		return errors.NewArgumentError(op, fmt.Sprintf("number of records to read must be > 0, got %d", o.N))
	}
	return nil
}

// limit reports whether n records are enough.
func (o ReadOptions) limit(n int) bool {
	return o.N > 0 && n >= o.N
}

// CSVOptions contains configuration options for CSV operations
type CSVOptions struct {
	ReadOptions
	// Delimiter is the field delimiter (default: comma)
	Delimiter rune
	// FieldNames replaces the header row. When set the first row is data.
	FieldNames []string
	// NullValues are cells dropped from the record. Nil uses the configured
	// null values.
	NullValues []string
	// KeepNulls keeps every cell as read.
	KeepNulls bool
	// DType converts every cell: "int", "float" or "str".
	DType string
	// DTypes converts the cells of individual keys and wins over DType.
	DTypes map[string]string
	// RestKey holds the extra cells of rows longer than the header.
	RestKey string
}

// DefaultCSVOptions returns CSV options taken from the global config.
func DefaultCSVOptions() CSVOptions {
	cfg := config.GetGlobalConfig()
	return CSVOptions{
		Delimiter:  ',',
		NullValues: append([]string(nil), cfg.NullValues...),
		KeepNulls:  cfg.KeepNulls,
		RestKey:    "_rest",
	}
}

// CSVReader reads CSV data into a Collection
type CSVReader struct {
	reader  io.Reader
	options CSVOptions
}

// NewCSVReader creates a new CSV reader with the specified options
func NewCSVReader(reader io.Reader, options CSVOptions) *CSVReader {
	return &CSVReader{reader: reader, options: options}
}

// CSVWriter writes a Collection as CSV
type CSVWriter struct {
	writer  io.Writer
	options CSVOptions
}

// NewCSVWriter creates a new CSV writer with the specified options
func NewCSVWriter(writer io.Writer, options CSVOptions) *CSVWriter {
	return &CSVWriter{writer: writer, options: options}
}

// JSONFormat selects JSON arrays or JSON Lines.
type JSONFormat int

const (
	// JSONArray is a single JSON array of objects. A single top-level
	// object is read as a one-record collection.
	JSONArray JSONFormat = iota
	// JSONLines is one JSON value per line.
	JSONLines
)

// JSONOptions contains configuration options for JSON operations
type JSONOptions struct {
	ReadOptions
	Format JSONFormat
	// Indent pretty-prints with that many spaces. Zero writes compact JSON.
	Indent int
}

// JSONReader reads JSON data into a Collection
type JSONReader struct {
	reader  io.Reader
	options JSONOptions
}

// NewJSONReader creates a new JSON reader with the specified options
func NewJSONReader(reader io.Reader, options JSONOptions) *JSONReader {
	return &JSONReader{reader: reader, options: options}
}

// JSONWriter writes a Collection as JSON
type JSONWriter struct {
	writer  io.Writer
	options JSONOptions
}

// NewJSONWriter creates a new JSON writer with the specified options
func NewJSONWriter(writer io.Writer, options JSONOptions) *JSONWriter {
	return &JSONWriter{writer: writer, options: options}
}

// YAMLOptions contains configuration options for YAML operations
type YAMLOptions struct {
	ReadOptions
}

// YAMLReader reads a YAML document into a Collection
type YAMLReader struct {
	reader  io.Reader
	options YAMLOptions
}

// NewYAMLReader creates a new YAML reader with the specified options
func NewYAMLReader(reader io.Reader, options YAMLOptions) *YAMLReader {
	return &YAMLReader{reader: reader, options: options}
}

// YAMLWriter writes a Collection as a YAML sequence
type YAMLWriter struct {
	writer io.Writer
}

// NewYAMLWriter creates a new YAML writer
func NewYAMLWriter(writer io.Writer) *YAMLWriter {
	return &YAMLWriter{writer: writer}
}

// ParquetOptions contains configuration options for Parquet operations
type ParquetOptions struct {
	ReadOptions
	// Compression type for Parquet files
	Compression string
	// BatchSize for reading/writing operations
	BatchSize int
}

// DefaultParquetOptions returns default Parquet options
func DefaultParquetOptions() ParquetOptions {
	return ParquetOptions{
		Compression: "snappy",
		BatchSize:   DefaultBatchSize,
	}
}

// ParquetReader reads Parquet data into a Collection
type ParquetReader struct {
	reader  io.Reader
	options ParquetOptions
	mem     memory.Allocator
}

// NewParquetReader creates a new Parquet reader with the specified options
func NewParquetReader(reader io.Reader, options ParquetOptions, mem memory.Allocator) *ParquetReader {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	return &ParquetReader{reader: reader, options: options, mem: mem}
}

// ParquetWriter writes a Collection as Parquet
type ParquetWriter struct {
	writer  io.Writer
	options ParquetOptions
	mem     memory.Allocator
}

// NewParquetWriter creates a new Parquet writer with the specified options
func NewParquetWriter(writer io.Writer, options ParquetOptions, mem memory.Allocator) *ParquetWriter {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	return &ParquetWriter{writer: writer, options: options, mem: mem}
}
