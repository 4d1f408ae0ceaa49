package collection_test

import (
	"testing"

	"github.com/paveg/clump/internal/collection"
	"github.com/paveg/clump/internal/errors"
	"github.com/paveg/clump/internal/record"
	"github.com/paveg/clump/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSample_Sizes(t *testing.T) {
	c := ints(10)

	tests := []struct {
		name    string
		n       int
		replace bool
	}{
		{"none", 0, false},
		{"some", 3, false},
		{"all", 10, false},
		{"oversample with replacement", 25, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			must := testutil.Must(t)
			out := must(c.Sample(tt.n, collection.SampleOptions{Replace: tt.replace, Seed: 7}))
			assert.Equal(t, tt.n, out.Len())
		})
	}
}

func TestSample_WithoutReplacementIsDistinct(t *testing.T) {
	must := testutil.Must(t)
	out := must(ints(20).Sample(20, collection.SampleOptions{Seed: 42}))

	seen := map[any]bool{}
	recs, err := out.Records()
	require.NoError(t, err)
	for _, r := range recs {
		assert.False(t, seen[r["a"]], "duplicate %v", r["a"])
		seen[r["a"]] = true
	}
	assert.Len(t, seen, 20)
}

func TestSample_SeedIsReproducible(t *testing.T) {
	must := testutil.Must(t)
	opts := collection.SampleOptions{Seed: 1234}

	first := must(ints(50).Sample(10, opts))
	second := must(ints(50).Sample(10, opts))
	assert.Equal(t, first.Collect(), second.Collect())
}

func TestSample_Weights(t *testing.T) {
	must := testutil.Must(t)
	c := collection.FromRecords([]record.Record{
		{"id": "never", "w": 0},
		{"id": "always", "w": 5},
	})

	out := must(c.Sample(20, collection.SampleOptions{Replace: true, Weights: "w", Seed: 3}))
	unique, err := out.Unique("id")
	require.NoError(t, err)
	assert.Equal(t, []any{"always"}, unique)
}

func TestSample_Errors(t *testing.T) {
	tests := []struct {
		name string
		c    *collection.Collection
		n    int
		opts collection.SampleOptions
		kind error
	}{
		{"negative", ints(3), -1, collection.SampleOptions{}, errors.ErrArgument},
		{"too many", ints(3), 4, collection.SampleOptions{}, errors.ErrArgument},
		{"empty with replacement", ints(0), 1, collection.SampleOptions{Replace: true}, errors.ErrArgument},
		{"missing weight key", ints(3), 1, collection.SampleOptions{Weights: "w"}, errors.ErrKey},
		{"bad weight", collection.FromRecord(record.Record{"w": "x"}), 1, collection.SampleOptions{Weights: "w"}, errors.ErrArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.c.Sample(tt.n, tt.opts)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestSampleFrac(t *testing.T) {
	must := testutil.Must(t)
	out := must(ints(10).SampleFrac(0.25, collection.SampleOptions{Seed: 9}))
	assert.Equal(t, 3, out.Len())

	_, err := ints(10).SampleFrac(1.5, collection.SampleOptions{})
	assert.ErrorIs(t, err, errors.ErrArgument)
}
