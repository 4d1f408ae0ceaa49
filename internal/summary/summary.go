// Package summary holds the functions that reduce the present values of one
// key to a single result. A Summary is either a registered name or a
// caller-supplied function.
package summary

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/paveg/clump/internal/errors"
	"github.com/paveg/clump/internal/record"
)

// Fn reduces a sequence of values to one result.
type Fn func(values []any) (any, error)

// Summary is a tagged union over a registered name and a custom Fn.
type Summary struct {
	name string
	fn   Fn
}

// Named refers to a registered summary by name. The name is checked by
// Resolve, not here.
func Named(name string) Summary {
	return Summary{name: name}
}

// Func wraps a caller-supplied summary function.
func Func(fn Fn) Summary {
	return Summary{fn: fn}
}

// IsNamed reports whether s refers to the registry.
func (s Summary) IsNamed() bool {
	return s.fn == nil
}

// String returns the registered name, or "func" for custom summaries.
func (s Summary) String() string {
	if s.IsNamed() {
		return s.name
	}
	return "func"
}

// Resolve returns the function s stands for.
func (s Summary) Resolve() (Fn, error) {
	if !s.IsNamed() {
		return s.fn, nil
	}
	fn, ok := registry[s.name]
	if !ok {
		return nil, errors.NewArgumentError("Summarise",
			fmt.Sprintf("summary must be one of [%s], got %q", strings.Join(Names(), " "), s.name))
	}
	return fn, nil
}

// Apply resolves s and runs it over values.
func (s Summary) Apply(values []any) (any, error) {
	fn, err := s.Resolve()
	if err != nil {
		return nil, err
	}
	out, err := fn(values)
	if err != nil {
		return nil, errors.Wrap("Summarise", err)
	}
	return out, nil
}

var registry = map[string]Fn{
	"sum":      Sum,
	"mean":     Mean,
	"count":    Count,
	"n_unique": NUnique,
	"unique":   Unique,
	"min":      Min,
	"max":      Max,
	"median":   Median,
	"var":      Variance,
	"std":      Std,
	"values":   Values,
	"first":    First,
	"last":     Last,
}

// Names lists the registered summary names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Lookup returns the registered function for name.
func Lookup(name string) (Fn, bool) {
	fn, ok := registry[name]
	return fn, ok
}

func numbers(op string, values []any) ([]float64, bool, error) {
	out := make([]float64, len(values))
	allInt := true
	for i, v := range values {
		f, ok := record.ToFloat(v)
		if !ok {
			return nil, false, errors.NewArgumentError(op, fmt.Sprintf("non-numeric value %v (%T)", v, v))
		}
		if _, isInt := record.ToInt(v); !isInt {
			allInt = false
		}
		out[i] = f
	}
	return out, allInt, nil
}

// Sum adds numeric values. Integers sum to int64, anything else to float64.
// An integer sum that would overflow int64 is returned as float64.
func Sum(values []any) (any, error) {
	if len(values) == 0 {
		return nil, nil
	}
	nums, allInt, err := numbers("sum", values)
	if err != nil {
		return nil, err
	}
	if allInt {
		ints := make([]int64, len(values))
		for i, v := range values {
			ints[i], _ = record.ToInt(v)
		}
		if total, ok := record.TotalChecked(ints); ok {
			return total, nil
		}
	}
	return record.Total(nums), nil
}

// Mean is the arithmetic mean as float64.
func Mean(values []any) (any, error) {
	if len(values) == 0 {
		return nil, nil
	}
	nums, _, err := numbers("mean", values)
	if err != nil {
		return nil, err
	}
	return record.Average(nums), nil
}

// Count is the number of present values.
func Count(values []any) (any, error) {
	return len(values), nil
}

// Unique returns distinct values in first-seen order.
func Unique(values []any) (any, error) {
	return distinct(values), nil
}

// NUnique counts distinct values.
func NUnique(values []any) (any, error) {
	return len(distinct(values)), nil
}

func distinct(values []any) []any {
	out := make([]any, 0, len(values))
	buckets := make(map[uint64][]any, len(values))
	for _, v := range values {
		h := record.Fingerprint(v)
		if record.Contains(buckets[h], v) {
			continue
		}
		buckets[h] = append(buckets[h], v)
		out = append(out, v)
	}
	return out
}

func extreme(op string, values []any, want int) (any, error) {
	if len(values) == 0 {
		return nil, nil
	}
	best := values[0]
	for _, v := range values[1:] {
		if !record.Comparable(best, v) {
			return nil, errors.NewArgumentError(op, fmt.Sprintf("cannot order %v (%T) against %v (%T)", best, best, v, v))
		}
		if record.Compare(v, best) == want {
			best = v
		}
	}
	return best, nil
}

// Min returns the smallest value; the first one wins ties.
func Min(values []any) (any, error) {
	return extreme("min", values, -1)
}

// Max returns the largest value; the first one wins ties.
func Max(values []any) (any, error) {
	return extreme("max", values, 1)
}

// Median returns the middle value. For an even count the two middle values
// are averaged, which requires numbers.
func Median(values []any) (any, error) {
	if len(values) == 0 {
		return nil, nil
	}
	sorted := slices.Clone(values)
	for _, v := range sorted[1:] {
		if !record.Comparable(sorted[0], v) {
			return nil, errors.NewArgumentError("median", fmt.Sprintf("cannot order %v (%T) against %v (%T)", sorted[0], sorted[0], v, v))
		}
	}
	slices.SortStableFunc(sorted, record.Compare)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid], nil
	}
	lo, okLo := record.ToFloat(sorted[mid-1])
	hi, okHi := record.ToFloat(sorted[mid])
	if !okLo || !okHi {
		return nil, errors.NewArgumentError("median", "even-length median needs numeric values")
	}
	return (lo + hi) / 2, nil
}

// Variance is the sample variance. Fewer than two values yields nil.
func Variance(values []any) (any, error) {
	if len(values) < 2 {
		return nil, nil
	}
	nums, _, err := numbers("var", values)
	if err != nil {
		return nil, err
	}
	return sampleVariance(nums), nil
}

// Std is the sample standard deviation. Fewer than two values yields nil.
func Std(values []any) (any, error) {
	if len(values) < 2 {
		return nil, nil
	}
	nums, _, err := numbers("std", values)
	if err != nil {
		return nil, err
	}
	return math.Sqrt(sampleVariance(nums)), nil
}

func sampleVariance(nums []float64) float64 {
	mean := record.Average(nums)

	var ss float64
	for _, f := range nums {
		d := f - mean
		ss += d * d
	}
	return ss / float64(len(nums)-1)
}

// Values returns the values unchanged, as a fresh slice.
func Values(values []any) (any, error) {
	out := make([]any, len(values))
	copy(out, values)
	return out, nil
}

// First returns the first value.
func First(values []any) (any, error) {
	if len(values) == 0 {
		return nil, nil
	}
	return values[0], nil
}

// Last returns the last value.
func Last(values []any) (any, error) {
	if len(values) == 0 {
		return nil, nil
	}
	return values[len(values)-1], nil
}
