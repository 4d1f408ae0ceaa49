// Package testutil provides common testing utilities shared by the clump
// test files.
//
// It consolidates the patterns that repeat across packages:
// - Arrow allocator setup with leak checks
// - Standard test record and collection creation
// - Order-aware and order-independent record assertions
package testutil

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/clump/internal/collection"
	"github.com/paveg/clump/internal/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	// defaultRowCount is the default number of records in test collections.
	defaultRowCount = 4
)

// TestMemoryContext provides an Arrow allocator that checks for leaks.
type TestMemoryContext struct {
	Allocator *memory.CheckedAllocator
	cleanup   func()
}

// Release verifies that every Arrow buffer was released.
func (tmc *TestMemoryContext) Release() {
	if tmc.cleanup != nil {
		tmc.cleanup()
	}
}

// SetupMemoryTest creates a checked Arrow allocator for tests.
// Returns a TestMemoryContext that should be released with defer.
//
// Example usage:
//
//	mem := testutil.SetupMemoryTest(t)
//	defer mem.Release()
func SetupMemoryTest(tb testing.TB) *TestMemoryContext {
	tb.Helper()
	allocator := memory.NewCheckedAllocator(memory.NewGoAllocator())

	return &TestMemoryContext{
		Allocator: allocator,
		cleanup: func() {
			allocator.AssertSize(tb, 0)
		},
	}
}

// TestRecordsOption configures test record creation.
type TestRecordsOption func(*testRecordsConfig)

type testRecordsConfig struct {
	includeMissing bool
	rowCount       int
	withActive     bool
}

// WithMissing drops the salary key from every third record.
func WithMissing() TestRecordsOption {
	return func(cfg *testRecordsConfig) {
		cfg.includeMissing = true
	}
}

// WithRowCount sets the number of records.
func WithRowCount(count int) TestRecordsOption {
	return func(cfg *testRecordsConfig) {
		cfg.rowCount = count
	}
}

// WithActiveKey adds an 'active' boolean key.
func WithActiveKey() TestRecordsOption {
	return func(cfg *testRecordsConfig) {
		cfg.withActive = true
	}
}

// CreateTestRecords creates standard employee records.
//
// Default records have:
// - name (string): ["Alice", "Bob", "Charlie", "David"]
// - age (int): [25, 30, 35, 28]
// - department (string): ["Engineering", "Sales", "Engineering", "Marketing"]
// - salary (int): [100000, 80000, 120000, 75000]
func CreateTestRecords(opts ...TestRecordsOption) []record.Record {
	cfg := &testRecordsConfig{
		includeMissing: false,
		rowCount:       defaultRowCount,
		withActive:     false,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	names := generateNames(cfg.rowCount)
	ages := generateAges(cfg.rowCount)
	departments := generateDepartments(cfg.rowCount)
	salaries := generateSalaries(cfg.rowCount)
	active := generateActiveFlags(cfg.rowCount)

	records := make([]record.Record, cfg.rowCount)
	for i := range cfg.rowCount {
		r := record.Record{
			"name":       names[i],
			"age":        ages[i],
			"department": departments[i],
			"salary":     salaries[i],
		}
		if cfg.includeMissing && i%3 == 2 {
			delete(r, "salary")
		}
		if cfg.withActive {
			r["active"] = active[i]
		}
		records[i] = r
	}
	return records
}

// CreateTestCollection wraps CreateTestRecords in a Collection.
//
// Example usage:
//
//	c := testutil.CreateTestCollection(testutil.WithRowCount(8))
func CreateTestCollection(opts ...TestRecordsOption) *collection.Collection {
	return collection.FromRecords(CreateTestRecords(opts...))
}

// Items converts records to the []any form used by collection.New and
// Collection.Equals.
func Items(records ...record.Record) []any {
	out := make([]any, len(records))
	for i, r := range records {
		out[i] = r
	}
	return out
}

// Must returns a function that fails the test on a verb error and
// otherwise returns the collection.
//
// Example usage:
//
//	must := testutil.Must(t)
//	out := must(c.Select("a"))
func Must(t *testing.T) func(*collection.Collection, error) *collection.Collection {
	t.Helper()
	return func(c *collection.Collection, err error) *collection.Collection {
		t.Helper()
		require.NoError(t, err)
		require.NotNil(t, c)
		return c
	}
}

// AssertRecords checks that c holds exactly expected, in order.
func AssertRecords(t *testing.T, expected []record.Record, c *collection.Collection) {
	t.Helper()
	require.NotNil(t, c, "collection should not be nil")

	actual, err := c.Records()
	require.NoError(t, err)
	require.Len(t, actual, len(expected), "collection lengths should match")

	for i := range expected {
		assert.True(t, record.Equal(expected[i], actual[i]),
			"record %d differs:\nexpected: %v\nactual:   %v", i, expected[i], actual[i])
	}
}

// AssertSameRecords checks that c holds the same records as expected in any
// order, with the same count.
func AssertSameRecords(t *testing.T, expected []record.Record, c *collection.Collection) {
	t.Helper()
	require.NotNil(t, c, "collection should not be nil")

	assert.Equal(t, len(expected), c.Len(), "collection lengths should match")
	assert.True(t, c.Equals(Items(expected...)),
		"collections differ:\nexpected: %v\nactual:   %v", expected, c.Collect())
}

// AssertHasKeys verifies that every record of c has the expected keys and
// no others.
func AssertHasKeys(t *testing.T, c *collection.Collection, expectedKeys []string) {
	t.Helper()
	require.NotNil(t, c, "collection should not be nil")

	keys, err := c.Keys(false)
	require.NoError(t, err)
	assert.ElementsMatch(t, expectedKeys, keys, "keys should match")

	overlap, err := c.Keys(true)
	require.NoError(t, err)
	assert.ElementsMatch(t, keys, overlap, "every record should have every key")
}

// Helper functions for generating test data

func generateNames(count int) []string {
	baseNames := []string{"Alice", "Bob", "Charlie", "David", "Eve", "Frank", "Grace", "Henry"}
	names := make([]string, count)
	for i := range count {
		names[i] = baseNames[i%len(baseNames)]
	}
	return names
}

func generateAges(count int) []int {
	baseAges := []int{25, 30, 35, 28, 32, 45, 29, 38}
	ages := make([]int, count)
	for i := range count {
		ages[i] = baseAges[i%len(baseAges)]
	}
	return ages
}

func generateDepartments(count int) []string {
	baseDepts := []string{"Engineering", "Sales", "Engineering", "Marketing", "HR", "Finance", "Engineering", "Sales"}
	departments := make([]string, count)
	for i := range count {
		departments[i] = baseDepts[i%len(baseDepts)]
	}
	return departments
}

func generateSalaries(count int) []int {
	baseSalaries := []int{100000, 80000, 120000, 75000, 90000, 110000, 95000, 85000}
	salaries := make([]int, count)
	for i := range count {
		salaries[i] = baseSalaries[i%len(baseSalaries)]
	}
	return salaries
}

func generateActiveFlags(count int) []bool {
	baseFlags := []bool{true, true, false, true, true, false, true, false}
	flags := make([]bool, count)
	for i := range count {
		flags[i] = baseFlags[i%len(baseFlags)]
	}
	return flags
}
