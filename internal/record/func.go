package record

// Predicate decides whether a record is kept.
type Predicate func(r Record) (bool, error)

// Mapper computes a value from a record. Mappers may hold state across
// calls; see Cloner.
type Mapper interface {
	Apply(r Record) (any, error)
}

// Cloner is implemented by stateful mappers. Grouped verbs hand each
// partition its own clone so state never crosses partition boundaries.
type Cloner interface {
	Clone() Mapper
}

// MapperFunc adapts a plain function to Mapper.
type MapperFunc func(r Record) (any, error)

// Apply calls f(r).
func (f MapperFunc) Apply(r Record) (any, error) {
	return f(r)
}

// Fresh returns an independent copy of m when it is stateful, and m itself
// otherwise.
func Fresh(m Mapper) Mapper {
	if c, ok := m.(Cloner); ok {
		return c.Clone()
	}
	return m
}
