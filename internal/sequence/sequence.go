// Package sequence provides stateful mappers for Mutate: row numbers,
// rolling and expanding windows, exponential smoothing and imputation.
//
// Each mapper is called once per record in iteration order. Grouped verbs
// clone the mapper per partition, which is what makes counters and windows
// restart at every group.
package sequence

import (
	"fmt"

	"github.com/paveg/clump/internal/errors"
	"github.com/paveg/clump/internal/record"
)

// Accessor extracts the value a mapper tracks from a record.
type Accessor struct {
	key string
	fn  func(record.Record) (any, error)
}

// Key reads the named key. A record without it is a key error.
func Key(name string) Accessor {
	return Accessor{key: name}
}

// Derived computes the tracked value with fn.
func Derived(fn func(record.Record) (any, error)) Accessor {
	return Accessor{fn: fn}
}

// Name is the key read by the accessor, or "derived" for Derived accessors.
func (a Accessor) Name() string {
	if a.fn != nil || a.key == "" {
		return "derived"
	}
	return a.key
}

// Get returns the accessor's value for r.
func (a Accessor) Get(op string, r record.Record) (any, error) {
	if a.fn != nil {
		v, err := a.fn(r)
		if err != nil {
			return nil, errors.Wrap(op, err)
		}
		return v, nil
	}
	v, ok := r[a.key]
	if !ok {
		return nil, errors.NewKeyError(op, a.key, "key does not exist on record")
	}
	return v, nil
}

// RowNumber counts calls: 1, 2, 3, ...
type RowNumber struct {
	state int
}

// NewRowNumber returns a counter starting at zero.
func NewRowNumber() *RowNumber {
	return &RowNumber{}
}

// Apply increments and returns the count.
func (m *RowNumber) Apply(record.Record) (any, error) {
	m.state++
	return m.state, nil
}

// Clone implements record.Cloner.
func (m *RowNumber) Clone() record.Mapper {
	c := *m
	return &c
}

// Rolling keeps the last window values.
type Rolling struct {
	window int
	access Accessor
	state  []any
}

// NewRolling returns a rolling window mapper. window must be at least 1.
func NewRolling(window int, access Accessor) (*Rolling, error) {
	if window < 1 {
		return nil, errors.NewArgumentError("Rolling", fmt.Sprintf("window must be >= 1, got %d", window))
	}
	return &Rolling{window: window, access: access}, nil
}

// Apply appends the record's value, evicts the oldest beyond the window and
// returns a snapshot.
func (m *Rolling) Apply(r record.Record) (any, error) {
	v, err := m.access.Get("Rolling", r)
	if err != nil {
		return nil, err
	}
	m.state = append(m.state, v)
	if len(m.state) > m.window {
		m.state = m.state[len(m.state)-m.window:]
	}
	return snapshot(m.state), nil
}

// Clone implements record.Cloner.
func (m *Rolling) Clone() record.Mapper {
	return &Rolling{window: m.window, access: m.access, state: snapshot(m.state)}
}

// Expanding keeps every value seen.
type Expanding struct {
	access Accessor
	state  []any
}

// NewExpanding returns an expanding window mapper.
func NewExpanding(access Accessor) *Expanding {
	return &Expanding{access: access}
}

// Apply appends the record's value and returns a snapshot of all values.
func (m *Expanding) Apply(r record.Record) (any, error) {
	v, err := m.access.Get("Expanding", r)
	if err != nil {
		return nil, err
	}
	m.state = append(m.state, v)
	return snapshot(m.state), nil
}

// Clone implements record.Cloner.
func (m *Expanding) Clone() record.Mapper {
	return &Expanding{access: m.access, state: snapshot(m.state)}
}

func snapshot(state []any) []any {
	out := make([]any, len(state))
	for i, v := range state {
		out[i] = record.CloneValue(v)
	}
	return out
}

// Smoothing is an exponentially weighted running value.
type Smoothing struct {
	access      Accessor
	weight      float64
	state       float64
	initialized bool
}

// NewSmoothing returns a smoothing mapper. weight must lie in [0, 1]; a
// weight of 1 ignores the past entirely.
func NewSmoothing(access Accessor, weight float64) (*Smoothing, error) {
	if weight < 0 || weight > 1 {
		return nil, errors.NewArgumentError("Smoothing", fmt.Sprintf("weight must be in [0, 1], got %v", weight))
	}
	return &Smoothing{access: access, weight: weight}, nil
}

// Apply folds the record's value into the state and returns it.
func (m *Smoothing) Apply(r record.Record) (any, error) {
	v, err := m.access.Get("Smoothing", r)
	if err != nil {
		return nil, err
	}
	f, ok := record.ToFloat(v)
	if !ok {
		return nil, errors.NewValueError("Smoothing", m.access.Name(), fmt.Sprintf("non-numeric value %v (%T)", v, v))
	}
	if !m.initialized {
		m.state = f
		m.initialized = true
	}
	m.state = m.state*(1-m.weight) + f*m.weight
	return m.state, nil
}

// Clone implements record.Cloner.
func (m *Smoothing) Clone() record.Mapper {
	c := *m
	return &c
}

// Strategy selects what Impute returns for a record missing its key.
type Strategy string

const (
	// StrategyPrev returns the last value seen, or the fallback before any.
	StrategyPrev Strategy = "prev"
	// StrategyValue always returns the fallback.
	StrategyValue Strategy = "value"
)

// Impute fills in values for records that lack a key.
type Impute struct {
	key      string
	strategy Strategy
	fallback any
	last     any
	seen     bool
}

// NewImpute returns an imputation mapper for key.
func NewImpute(key string, strategy Strategy, fallback any) (*Impute, error) {
	switch strategy {
	case StrategyPrev, StrategyValue:
	default:
		return nil, errors.NewArgumentError("Impute",
			fmt.Sprintf("strategy must be one of [%s %s], got %q", StrategyPrev, StrategyValue, strategy))
	}
	return &Impute{key: key, strategy: strategy, fallback: fallback}, nil
}

// Apply returns the key's value when present. When it is missing the state
// is left alone and the fallback or last seen value is returned.
func (m *Impute) Apply(r record.Record) (any, error) {
	v, ok := r[m.key]
	if !ok {
		if m.strategy == StrategyPrev && m.seen {
			return record.CloneValue(m.last), nil
		}
		return record.CloneValue(m.fallback), nil
	}
	if m.strategy == StrategyPrev {
		m.last = record.CloneValue(v)
		m.seen = true
	}
	return v, nil
}

// Clone implements record.Cloner.
func (m *Impute) Clone() record.Mapper {
	c := *m
	c.last = record.CloneValue(m.last)
	c.fallback = record.CloneValue(m.fallback)
	return &c
}
