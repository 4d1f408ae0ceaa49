// Package clump provides split-apply-combine verbs over in-memory
// collections of semi-structured records.
// This package is the sole public API for the library.
//
// A Collection is an ordered list of records (map[string]any). Verbs such as
// Keep, Mutate, Sort and Aggregate return new collections and never modify
// their input. GroupBy makes Mutate, Sort, Aggregate and Transform run once
// per group:
//
//	c, _ := clump.ReadJSONL(ctx, "pokemon.jsonl", 0)
//	out, err := c.GroupBy("type").Aggregate(
//		clump.Agg("mean_hp", "hp", "mean"),
//		clump.Agg("n", "name", "count"),
//	)
package clump

import (
	"context"
	"log/slog"

	"github.com/paveg/clump/internal/collection"
	"github.com/paveg/clump/internal/config"
	"github.com/paveg/clump/internal/errors"
	"github.com/paveg/clump/internal/expr"
	clumpio "github.com/paveg/clump/internal/io"
	"github.com/paveg/clump/internal/record"
	"github.com/paveg/clump/internal/sequence"
	"github.com/paveg/clump/internal/summary"
)

type (
	// Record is a single item of a collection.
	Record = record.Record
	// Collection is an ordered collection of records with optional group keys.
	Collection = collection.Collection
	// Chain defers verbs until Collect.
	Chain = collection.Chain

	Predicate   = record.Predicate
	Mapper      = record.Mapper
	MapperFunc  = record.MapperFunc
	Assignment  = collection.Assignment
	Aggregation = collection.Aggregation
	Alias       = collection.Alias
	JoinKey     = collection.JoinKey
	JoinOption  = collection.JoinOption
	SortKey     = collection.SortKey
	Reducer     = collection.Reducer

	SampleOptions = collection.SampleOptions

	// Summary is a registered summary name or a custom summary function.
	Summary   = summary.Summary
	SummaryFn = summary.Fn

	// Accessor reads the input value of a sequence mapper.
	Accessor = sequence.Accessor
	// Strategy selects how Impute fills missing values.
	Strategy = sequence.Strategy

	// Expr is a predicate or value expression over a record.
	Expr = expr.Expr

	Config          = config.Config
	CollectionError = errors.CollectionError

	Format         = clumpio.Format
	ReadOptions    = clumpio.ReadOptions
	CSVOptions     = clumpio.CSVOptions
	ParquetOptions = clumpio.ParquetOptions
)

// Error kinds, for use with errors.Is.
var (
	ErrShape    = errors.ErrShape
	ErrKey      = errors.ErrKey
	ErrArgument = errors.ErrArgument
	ErrFunction = errors.ErrFunction
)

// Impute strategies.
const (
	ImputePrev  = sequence.StrategyPrev
	ImputeValue = sequence.StrategyValue
)

// New creates a Collection holding deep copies of items.
func New(items []any) *Collection {
	return collection.New(items)
}

// FromRecords creates a Collection holding deep copies of records.
func FromRecords(records []Record) *Collection {
	return collection.FromRecords(records)
}

// FromRecord creates a one-record Collection.
func FromRecord(r Record) *Collection {
	return collection.FromRecord(r)
}

// Verb arguments

// Agg summarises key with a registered summary and stores it under name.
func Agg(name, key, summaryName string) Aggregation {
	return collection.Agg(name, key, summaryName)
}

// AggFunc summarises key with fn and stores it under name.
func AggFunc(name, key string, fn SummaryFn) Aggregation {
	return collection.AggFunc(name, key, fn)
}

// Assign stores the output of m under name in Mutate.
func Assign(name string, m Mapper) Assignment {
	return collection.Assign(name, m)
}

// AssignFunc stores the output of fn under name in Mutate.
func AssignFunc(name string, fn func(Record) (any, error)) Assignment {
	return collection.AssignFunc(name, fn)
}

// As renames old to newName in Rename, Explode and Implode.
func As(newName, old string) Alias {
	return collection.As(newName, old)
}

// By sorts on the value of key.
func By(key string) SortKey {
	return collection.By(key)
}

// On matches left's key with right's key in a join.
func On(left, right string) JoinKey {
	return collection.On(left, right)
}

// Same matches keys with the same name on both sides of a join.
func Same(keys ...string) []JoinKey {
	return collection.Same(keys...)
}

// WithSuffixes sets the suffixes added to colliding join keys.
func WithSuffixes(left, right string) JoinOption {
	return collection.WithSuffixes(left, right)
}

// SummaryNames lists the registered summary names.
func SummaryNames() []string {
	return summary.Names()
}

// Sequence mappers

// Key reads a key from each record.
func Key(name string) Accessor {
	return sequence.Key(name)
}

// Derived computes the input value from each record.
func Derived(fn func(Record) (any, error)) Accessor {
	return sequence.Derived(fn)
}

// RowNumber numbers records 1, 2, 3 and so on.
func RowNumber() Mapper {
	return sequence.NewRowNumber()
}

// Rolling returns the last window values read by access.
func Rolling(window int, access Accessor) (Mapper, error) {
	m, err := sequence.NewRolling(window, access)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Expanding returns every value read by access so far.
func Expanding(access Accessor) Mapper {
	return sequence.NewExpanding(access)
}

// Smoothing returns the exponentially smoothed value read by access.
func Smoothing(access Accessor, weight float64) (Mapper, error) {
	m, err := sequence.NewSmoothing(access, weight)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Impute fills key for records that lack it.
func Impute(key string, strategy Strategy, fallback any) (Mapper, error) {
	m, err := sequence.NewImpute(key, strategy, fallback)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// RoundDatetime truncates a datetime string to frequency.
func RoundDatetime(value, frequency, layout string) (string, error) {
	return sequence.RoundDatetime(value, frequency, layout)
}

// Expressions

// Col refers to a key, or to a nested key when nested names are given.
func Col(name string, nested ...string) *expr.ColumnExpr {
	return expr.Col(name, nested...)
}

// Lit wraps a constant.
func Lit(value any) *expr.LiteralExpr {
	return expr.Lit(value)
}

// ParseExpr parses an expression such as `age >= 30 and has(email)`.
func ParseExpr(src string) (Expr, error) {
	return expr.Parse(src)
}

// Where turns an expression into a Keep predicate.
func Where(e Expr) Predicate {
	return expr.Predicate(e)
}

// Compute turns an expression into a Mutate mapper.
func Compute(e Expr) Mapper {
	return expr.Mapper(e)
}

// Readers and writers

// ReadFile reads a file, glob pattern or URL in the format given by its
// extension. n limits the records read from each source; zero reads all.
func ReadFile(ctx context.Context, path string, n int) (*Collection, error) {
	return clumpio.ReadFile(ctx, path, clumpio.ReadOptions{N: n})
}

// ReadJSON reads JSON arrays.
func ReadJSON(ctx context.Context, path string, n int) (*Collection, error) {
	return clumpio.ReadJSON(ctx, path, n)
}

// ReadJSONL reads JSON Lines.
func ReadJSONL(ctx context.Context, path string, n int) (*Collection, error) {
	return clumpio.ReadJSONL(ctx, path, n)
}

// ReadYAML reads YAML sequences.
func ReadYAML(ctx context.Context, path string, n int) (*Collection, error) {
	return clumpio.ReadYAML(ctx, path, n)
}

// ReadCSV reads CSV files.
func ReadCSV(ctx context.Context, path string, opts CSVOptions) (*Collection, error) {
	return clumpio.ReadCSV(ctx, path, opts)
}

// ReadParquet reads Parquet files.
func ReadParquet(ctx context.Context, path string, opts ParquetOptions) (*Collection, error) {
	return clumpio.ReadParquet(ctx, path, opts)
}

// DefaultCSVOptions returns CSV options taken from the current config.
func DefaultCSVOptions() CSVOptions {
	return clumpio.DefaultCSVOptions()
}

// DefaultParquetOptions returns snappy compression and the default batch size.
func DefaultParquetOptions() ParquetOptions {
	return clumpio.DefaultParquetOptions()
}

// WriteFile writes c in the format given by the extension of path.
func WriteFile(path string, c *Collection) error {
	return clumpio.WriteFile(path, c)
}

// WriteJSON writes a JSON array, indented when indent > 0.
func WriteJSON(path string, c *Collection, indent int) error {
	return clumpio.WriteJSON(path, c, indent)
}

// WriteJSONL writes JSON Lines.
func WriteJSONL(path string, c *Collection) error {
	return clumpio.WriteJSONL(path, c)
}

// WriteCSV writes CSV.
func WriteCSV(path string, c *Collection, opts CSVOptions) error {
	return clumpio.WriteCSV(path, c, opts)
}

// WriteYAML writes a YAML sequence.
func WriteYAML(path string, c *Collection) error {
	return clumpio.WriteYAML(path, c)
}

// WriteParquet writes Parquet.
func WriteParquet(path string, c *Collection, opts ParquetOptions) error {
	return clumpio.WriteParquet(path, c, opts)
}

// Configuration

// GetConfig returns the current configuration.
func GetConfig() Config {
	return config.GetGlobalConfig()
}

// SetConfig validates cfg and makes it the current configuration.
func SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	config.SetGlobalConfig(cfg)
	return nil
}

// LoadConfig reads a JSON or YAML configuration file and applies it.
func LoadConfig(path string) (Config, error) {
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return Config{}, err
	}
	return cfg, SetConfig(cfg)
}

// SetLogger routes debug output of grouping and joins to l. A nil logger
// discards it.
func SetLogger(l *slog.Logger) {
	collection.SetLogger(l)
}
