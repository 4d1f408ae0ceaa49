package collection_test

import (
	"testing"

	"github.com/paveg/clump/internal/collection"
	"github.com/paveg/clump/internal/errors"
	"github.com/paveg/clump/internal/record"
	"github.com/paveg/clump/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func joinSides() (*collection.Collection, *collection.Collection) {
	left := collection.FromRecords([]record.Record{
		{"a": 1, "b": 4},
		{"a": 2, "b": 6},
		{"a": 3, "b": 7},
	})
	right := collection.FromRecords([]record.Record{
		{"c": 9, "b": 4},
		{"c": 8, "b": 5},
		{"c": 7, "b": 6},
		{"c": 6, "b": 6},
	})
	return left, right
}

func TestLeftJoin(t *testing.T) {
	must := testutil.Must(t)
	left, right := joinSides()

	out := must(left.LeftJoin(right, collection.Same("b")))
	testutil.AssertRecords(t, []record.Record{
		{"a": 1, "b": 4, "c": 9},
		{"a": 2, "b": 6, "c": 7},
		{"a": 2, "b": 6, "c": 6},
		{"a": 3, "b": 7},
	}, out)
}

func TestInnerJoin(t *testing.T) {
	must := testutil.Must(t)
	left, right := joinSides()

	out := must(left.InnerJoin(right, collection.Same("b")))
	testutil.AssertRecords(t, []record.Record{
		{"a": 1, "b": 4, "c": 9},
		{"a": 2, "b": 6, "c": 7},
		{"a": 2, "b": 6, "c": 6},
	}, out)
}

func TestJoin_Cardinality(t *testing.T) {
	must := testutil.Must(t)
	left, right := joinSides()

	inner := must(left.InnerJoin(right, collection.Same("b")))
	leftJoined := must(left.LeftJoin(right, collection.Same("b")))

	assert.LessOrEqual(t, inner.Len(), left.Len()*right.Len())
	assert.GreaterOrEqual(t, leftJoined.Len(), left.Len())
	assert.GreaterOrEqual(t, leftJoined.Len(), inner.Len())
}

func TestJoin_DifferentKeyNames(t *testing.T) {
	must := testutil.Must(t)
	left := collection.FromRecords([]record.Record{{"id": 1, "v": "l"}})
	right := collection.FromRecords([]record.Record{{"ref": 1, "v": "r"}})

	out := must(left.InnerJoin(right, []collection.JoinKey{collection.On("id", "ref")}))
	testutil.AssertRecords(t, []record.Record{
		{"id": 1, "ref": 1, "v": "l", "v_joined": "r"},
	}, out)
}

func TestJoin_Suffixes(t *testing.T) {
	must := testutil.Must(t)
	left := collection.FromRecords([]record.Record{{"k": 1, "v": "l"}})
	right := collection.FromRecords([]record.Record{{"k": 1, "v": "r"}})

	out := must(left.InnerJoin(right, collection.Same("k"), collection.WithSuffixes("_l", "_r")))
	testutil.AssertRecords(t, []record.Record{
		{"k": 1, "v_l": "l", "v_r": "r"},
	}, out)
}

func TestJoin_CrossJoin(t *testing.T) {
	must := testutil.Must(t)
	left, right := joinSides()

	out := must(left.InnerJoin(right, nil))
	assert.Equal(t, left.Len()*right.Len(), out.Len())
}

func TestJoin_MissingKeysNeverMatch(t *testing.T) {
	must := testutil.Must(t)
	left := collection.FromRecords([]record.Record{{"a": 1}, {"a": 2, "k": 1}})
	right := collection.FromRecords([]record.Record{{"c": 1}, {"c": 2, "k": 1}})

	inner := must(left.InnerJoin(right, collection.Same("k")))
	testutil.AssertRecords(t, []record.Record{{"a": 2, "c": 2, "k": 1}}, inner)

	outer := must(left.LeftJoin(right, collection.Same("k")))
	testutil.AssertRecords(t, []record.Record{{"a": 1}, {"a": 2, "c": 2, "k": 1}}, outer)
}

func TestJoin_NumericKindsMatch(t *testing.T) {
	must := testutil.Must(t)
	left := collection.FromRecords([]record.Record{{"k": 1}})
	right := collection.FromRecords([]record.Record{{"k": 1.0, "v": true}})

	out := must(left.InnerJoin(right, collection.Same("k")))
	assert.Equal(t, 1, out.Len())
}

func TestJoin_RequiresRecords(t *testing.T) {
	left, _ := joinSides()
	bad := collection.New([]any{1, 2})

	_, err := left.LeftJoin(bad, collection.Same("b"))
	assert.ErrorIs(t, err, errors.ErrShape)
}

func TestJoin_DoesNotAliasInputs(t *testing.T) {
	must := testutil.Must(t)
	left, right := joinSides()

	out := must(left.LeftJoin(right, collection.Same("b")))
	recs, _ := out.Records()
	recs[0]["a"] = 100

	first, _ := left.Records()
	assert.Equal(t, 1, first[0]["a"])
}
