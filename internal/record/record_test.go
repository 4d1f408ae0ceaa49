package record_test

import (
	"testing"
	"time"

	"github.com/paveg/clump/internal/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClone_IsDeep(t *testing.T) {
	orig := record.Record{
		"a":     1,
		"items": []any{1, 2, map[string]any{"x": "y"}},
		"ints":  []int{1, 2, 3},
		"inner": map[string]any{"b": []any{"c"}},
	}

	cloned := record.Clone(orig)
	require.True(t, record.Equal(orig, cloned))

	cloned["a"] = 2
	cloned["items"].([]any)[2].(map[string]any)["x"] = "z"
	cloned["ints"].([]int)[0] = 99
	cloned["inner"].(map[string]any)["b"].([]any)[0] = "d"

	assert.Equal(t, 1, orig["a"])
	assert.Equal(t, "y", orig["items"].([]any)[2].(map[string]any)["x"])
	assert.Equal(t, 1, orig["ints"].([]int)[0])
	assert.Equal(t, "c", orig["inner"].(map[string]any)["b"].([]any)[0])
}

func TestClone_Nil(t *testing.T) {
	assert.Nil(t, record.Clone(nil))
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name     string
		a, b     any
		expected bool
	}{
		{"int and int64", 1, int64(1), true},
		{"int and float", 2, 2.0, true},
		{"int and fractional float", 2, 2.5, false},
		{"number and string", 1, "1", false},
		{"nil and nil", nil, nil, true},
		{"nil and zero", nil, 0, false},
		{"strings", "a", "a", true},
		{"bools", true, false, false},
		{"lists of mixed slice types", []any{1, 2}, []int{1, 2}, true},
		{"lists of different length", []any{1}, []any{1, 2}, false},
		{"list vs scalar", []any{1}, 1, false},
		{"nested records", map[string]any{"a": []any{1.0}}, map[string]any{"a": []any{1}}, true},
		{"records with different keys", map[string]any{"a": 1}, map[string]any{"b": 1}, false},
		{"absent vs nil value", map[string]any{"a": nil}, map[string]any{}, false},
		{"times", time.Unix(10, 0), time.Unix(10, 0).UTC(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, record.Equal(tt.a, tt.b))
			assert.Equal(t, tt.expected, record.Equal(tt.b, tt.a))
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name     string
		a, b     any
		expected int
	}{
		{"ints", 1, 2, -1},
		{"int and float", 3, 2.5, 1},
		{"equal numbers", int32(4), 4.0, 0},
		{"strings", "b", "a", 1},
		{"bools", false, true, -1},
		{"nil before numbers", nil, -100, -1},
		{"numbers before strings", 100, "1", -1},
		{"lists lexicographic", []any{1, 2}, []any{1, 3}, -1},
		{"list prefix", []any{1}, []any{1, 0}, -1},
		{"times", time.Unix(5, 0), time.Unix(3, 0), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, record.Compare(tt.a, tt.b))
			assert.Equal(t, -tt.expected, record.Compare(tt.b, tt.a))
		})
	}
}

func TestComparable(t *testing.T) {
	assert.True(t, record.Comparable(1, 2.5))
	assert.True(t, record.Comparable("a", "b"))
	assert.False(t, record.Comparable(1, "a"))
	assert.False(t, record.Comparable(nil, nil))
}

func TestFingerprint_FollowsEqual(t *testing.T) {
	pairs := [][2]any{
		{1, 1.0},
		{int64(7), uint8(7)},
		{[]any{1, "a"}, []any{1.0, "a"}},
		{map[string]any{"a": 1, "b": 2}, map[string]any{"b": 2.0, "a": 1}},
		{0.0, -0.0},
	}
	for _, p := range pairs {
		require.True(t, record.Equal(p[0], p[1]))
		assert.Equal(t, record.Fingerprint(p[0]), record.Fingerprint(p[1]), "%v vs %v", p[0], p[1])
	}

	assert.NotEqual(t, record.Fingerprint("1"), record.Fingerprint(1))
	assert.NotEqual(t, record.Fingerprint([]any{"ab"}), record.Fingerprint([]any{"a", "b"}))
}

func TestFingerprintOf_DistinguishesAbsentFromNil(t *testing.T) {
	withNil := record.Record{"a": nil}
	without := record.Record{}

	assert.NotEqual(t,
		record.FingerprintOf(withNil, []string{"a"}),
		record.FingerprintOf(without, []string{"a"}))
}

func TestAsList(t *testing.T) {
	list, ok := record.AsList([]string{"x", "y"})
	require.True(t, ok)
	assert.Equal(t, []any{"x", "y"}, list)

	_, ok = record.AsList("xy")
	assert.False(t, ok)

	_, ok = record.AsList(nil)
	assert.False(t, ok)
}

func TestToInt_RejectsFloats(t *testing.T) {
	_, ok := record.ToInt(1.0)
	assert.False(t, ok)

	n, ok := record.ToInt(uint16(9))
	require.True(t, ok)
	assert.Equal(t, int64(9), n)
}
