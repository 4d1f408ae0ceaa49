package collection_test

import (
	"fmt"
	"testing"

	"github.com/paveg/clump/internal/collection"
	"github.com/paveg/clump/internal/errors"
	"github.com/paveg/clump/internal/record"
	"github.com/paveg/clump/internal/sequence"
	"github.com/paveg/clump/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleABC() *collection.Collection {
	return collection.FromRecords([]record.Record{
		{"a": 1, "b": 2},
		{"a": 2, "b": 3, "c": 4},
		{"a": 1, "b": 6},
	})
}

func gt(key string, v int) record.Predicate {
	return func(r record.Record) (bool, error) { return r[key].(int) > v, nil }
}

func lt(key string, v int) record.Predicate {
	return func(r record.Record) (bool, error) { return r[key].(int) < v, nil }
}

func ints(n int) *collection.Collection {
	recs := make([]record.Record, n)
	for i := range n {
		recs[i] = record.Record{"a": i}
	}
	return collection.FromRecords(recs)
}

func TestSelect_DropsOtherKeys(t *testing.T) {
	must := testutil.Must(t)
	out := must(sampleABC().Select("a", "b"))

	recs, err := out.Records()
	require.NoError(t, err)
	for _, r := range recs {
		assert.NotContains(t, r, "c")
	}
	testutil.AssertHasKeys(t, out, []string{"a", "b"})
}

func TestSelect_MissingKey(t *testing.T) {
	_, err := sampleABC().Select("a", "c")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrKey)
	assert.Contains(t, err.Error(), "'c'")
	assert.Contains(t, err.Error(), "record 0")
}

func TestDrop_IgnoresMissingKeys(t *testing.T) {
	must := testutil.Must(t)
	out := must(sampleABC().Drop("c", "zzz"))
	testutil.AssertHasKeys(t, out, []string{"a", "b"})
}

func TestKeep_ComposesAsAnd(t *testing.T) {
	c := ints(20)
	preds := [][2]record.Predicate{
		{gt("a", 3), lt("a", 10)},
		{gt("a", 15), lt("a", 5)},
		{lt("a", 100), gt("a", -1)},
	}

	for i, pair := range preds {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			must := testutil.Must(t)
			chained := must(must(c.Keep(pair[0])).Keep(pair[1]))
			single := must(c.Keep(func(r record.Record) (bool, error) {
				a, _ := pair[0](r)
				b, _ := pair[1](r)
				return a && b, nil
			}))
			assert.Equal(t, single.Collect(), chained.Collect())
		})
	}
}

func TestKeep_PredicateError(t *testing.T) {
	_, err := ints(3).Keep(func(record.Record) (bool, error) { return false, assert.AnError })
	assert.ErrorIs(t, err, errors.ErrFunction)
}

func TestMutate_SeesEarlierAssignments(t *testing.T) {
	must := testutil.Must(t)
	c := collection.FromRecords([]record.Record{{"a": 1}, {"a": 2}})

	out := must(c.Mutate(
		collection.AssignFunc("b", func(r record.Record) (any, error) { return r["a"].(int) * 10, nil }),
		collection.AssignFunc("c", func(r record.Record) (any, error) { return r["b"].(int) + 1, nil }),
	))

	testutil.AssertRecords(t, []record.Record{
		{"a": 1, "b": 10, "c": 11},
		{"a": 2, "b": 20, "c": 21},
	}, out)
	testutil.AssertRecords(t, []record.Record{{"a": 1}, {"a": 2}}, c)
}

func TestMutate_DoesNotAdvanceCallerMapper(t *testing.T) {
	must := testutil.Must(t)
	counter := sequence.NewRowNumber()
	c := ints(3)

	first := must(c.Mutate(collection.Assign("r", counter)))
	second := must(c.Mutate(collection.Assign("r", counter)))

	assert.Equal(t, first.Collect(), second.Collect())
}

func TestMutate_ErrorsPropagate(t *testing.T) {
	rolling, err := sequence.NewRolling(2, sequence.Key("missing"))
	require.NoError(t, err)

	_, err = ints(2).Mutate(collection.Assign("r", rolling))
	assert.ErrorIs(t, err, errors.ErrKey)
}

func TestSort_StableAndReverse(t *testing.T) {
	must := testutil.Must(t)
	c := collection.FromRecords([]record.Record{
		{"k": 2, "id": "a"},
		{"k": 1, "id": "b"},
		{"k": 2, "id": "c"},
		{"k": 1, "id": "d"},
	})

	asc := must(c.Sort(collection.By("k"), false))
	testutil.AssertRecords(t, []record.Record{
		{"k": 1, "id": "b"},
		{"k": 1, "id": "d"},
		{"k": 2, "id": "a"},
		{"k": 2, "id": "c"},
	}, asc)

	desc := must(c.Sort(collection.By("k"), true))
	testutil.AssertRecords(t, []record.Record{
		{"k": 2, "id": "a"},
		{"k": 2, "id": "c"},
		{"k": 1, "id": "b"},
		{"k": 1, "id": "d"},
	}, desc)
}

func TestSort_MissingKey(t *testing.T) {
	_, err := sampleABC().Sort(collection.By("c"), false)
	assert.ErrorIs(t, err, errors.ErrKey)
}

func TestHeadTail_Clamp(t *testing.T) {
	for _, length := range []int{0, 1, 5} {
		c := ints(length)
		for _, n := range []int{0, 1, 3, 5, 10} {
			t.Run(fmt.Sprintf("len=%d n=%d", length, n), func(t *testing.T) {
				want := min(n, length)

				must := testutil.Must(t)
				head := must(c.Head(n))
				tail := must(c.Tail(n))
				require.Equal(t, want, head.Len())
				require.Equal(t, want, tail.Len())

				headRecs, _ := head.Records()
				for i, r := range headRecs {
					assert.Equal(t, i, r["a"])
				}
				tailRecs, _ := tail.Records()
				for i, r := range tailRecs {
					assert.Equal(t, length-want+i, r["a"])
				}
			})
		}
	}
}

func TestHeadTail_Negative(t *testing.T) {
	_, err := ints(3).Head(-1)
	assert.ErrorIs(t, err, errors.ErrArgument)

	_, err = ints(3).Tail(-1)
	assert.ErrorIs(t, err, errors.ErrArgument)
}

func TestMap_ProducesNonRecords(t *testing.T) {
	must := testutil.Must(t)
	out := must(ints(3).Map(func(item any) (any, error) {
		return item.(map[string]any)["a"].(int) * 2, nil
	}))

	assert.Equal(t, []any{0, 2, 4}, out.Collect())
	assert.False(t, out.OnlyRecords())
}

func TestReduce(t *testing.T) {
	must := testutil.Must(t)
	c := collection.New([]any{1, 2, 3, 4, 5})

	out := must(c.Reduce(
		collection.Reducer{Name: "sum_a", Fn: func(acc, item any) (any, error) { return acc.(int) + item.(int), nil }},
		collection.Reducer{Name: "max_a", Fn: func(acc, item any) (any, error) { return max(acc.(int), item.(int)), nil }},
	))

	testutil.AssertRecords(t, []record.Record{{"sum_a": 15, "max_a": 5}}, out)
}

func TestReduce_Empty(t *testing.T) {
	_, err := collection.New(nil).Reduce(collection.Reducer{Name: "x", Fn: func(acc, _ any) (any, error) { return acc, nil }})
	assert.ErrorIs(t, err, errors.ErrArgument)
}

func TestDropDuplicates(t *testing.T) {
	c := collection.FromRecords([]record.Record{{"a": 1}, {"a": 2}, {"a": 2.0}, {"a": 1, "b": nil}, {"a": 1}})

	out := c.DropDuplicates()
	testutil.AssertRecords(t, []record.Record{{"a": 1}, {"a": 2}, {"a": 1, "b": nil}}, out)
}

func TestRename(t *testing.T) {
	must := testutil.Must(t)
	c := collection.FromRecords([]record.Record{{"a": 1, "b": 3}, {"a": 2, "b": 4}})

	out := must(c.Rename(collection.As("c", "b")))
	testutil.AssertRecords(t, []record.Record{{"a": 1, "c": 3}, {"a": 2, "c": 4}}, out)

	_, err := c.Rename(collection.As("x", "zzz"))
	assert.ErrorIs(t, err, errors.ErrKey)
}

func TestVerbs_PreserveGroups(t *testing.T) {
	must := testutil.Must(t)
	c := sampleABC().GroupBy("a")

	selected := must(c.Select("a", "b"))
	assert.Equal(t, []string{"a"}, selected.Groups())

	head := must(c.Head(1))
	assert.Equal(t, []string{"a"}, head.Groups())
}

func TestCallbacks_DoNotModifySource(t *testing.T) {
	tests := []struct {
		name string
		run  func(c *collection.Collection) (*collection.Collection, error)
	}{
		{
			name: "keep predicate",
			run: func(c *collection.Collection) (*collection.Collection, error) {
				return c.Keep(func(r record.Record) (bool, error) {
					r["a"] = 99
					return true, nil
				})
			},
		},
		{
			name: "sort key",
			run: func(c *collection.Collection) (*collection.Collection, error) {
				return c.Sort(func(r record.Record) (any, error) {
					r["a"] = 7
					return r["b"], nil
				}, false)
			},
		},
		{
			name: "summary function",
			run: func(c *collection.Collection) (*collection.Collection, error) {
				return c.Aggregate(collection.AggFunc("n", "tags", func(values []any) (any, error) {
					for _, v := range values {
						v.([]any)[0] = "changed"
					}
					return len(values), nil
				}))
			},
		},
		{
			name: "pipe",
			run: func(c *collection.Collection) (*collection.Collection, error) {
				return c.Pipe(func(in *collection.Collection) (*collection.Collection, error) {
					return in.GroupBy("a"), nil
				})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := collection.FromRecords([]record.Record{
				{"a": 1, "b": 2, "tags": []any{"x"}},
				{"a": 2, "b": 1, "tags": []any{"y"}},
			})
			before := src.Collect()

			out, err := tt.run(src)
			require.NoError(t, err)
			require.NotNil(t, out)

			assert.Equal(t, before, src.Collect())
			assert.Empty(t, src.Groups())
		})
	}
}

func TestKeep_OutputUnaffectedByPredicateWrites(t *testing.T) {
	src := collection.FromRecords([]record.Record{{"a": 1}})
	out, err := src.Keep(func(r record.Record) (bool, error) {
		r["a"] = 99
		return true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []any{record.Record{"a": 1}}, out.Collect())
}
