package io_test

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paveg/clump/internal/collection"
	"github.com/paveg/clump/internal/errors"
	clumpio "github.com/paveg/clump/internal/io"
	"github.com/paveg/clump/internal/record"
	"github.com/paveg/clump/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, src string, opts clumpio.CSVOptions) (*collection.Collection, error) {
	t.Helper()
	return clumpio.NewCSVReader(strings.NewReader(src), opts).Read()
}

func TestReadCSV(t *testing.T) {
	c, err := clumpio.ReadCSV(context.Background(), dataPath("monopoly.csv"), clumpio.DefaultCSVOptions())
	require.NoError(t, err)
	assert.Equal(t, 5, c.Len())

	recs, err := c.Records()
	require.NoError(t, err)
	assert.Equal(t, "Old Kent Road", recs[0]["name"])
	assert.Equal(t, "60", recs[0]["cost"])
	assert.NotContains(t, recs[2], "color", "NA is dropped by default")
}

func TestReadCSV_Limit(t *testing.T) {
	opts := clumpio.DefaultCSVOptions()
	opts.N = 2
	c, err := clumpio.ReadCSV(context.Background(), dataPath("monopoly.csv"), opts)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	opts.N = -3
	_, err = clumpio.ReadCSV(context.Background(), dataPath("monopoly.csv"), opts)
	assert.ErrorIs(t, err, errors.ErrArgument)
}

func TestReadCSV_Nulls(t *testing.T) {
	src := "a,b,c\n1,,NA\n"

	dropped, err := readCSV(t, src, clumpio.DefaultCSVOptions())
	require.NoError(t, err)
	testutil.AssertRecords(t, []record.Record{{"a": "1"}}, dropped)

	opts := clumpio.DefaultCSVOptions()
	opts.KeepNulls = true
	kept, err := readCSV(t, src, opts)
	require.NoError(t, err)
	testutil.AssertRecords(t, []record.Record{{"a": "1", "b": "", "c": "NA"}}, kept)

	opts = clumpio.DefaultCSVOptions()
	opts.NullValues = []string{"1"}
	custom, err := readCSV(t, src, opts)
	require.NoError(t, err)
	testutil.AssertRecords(t, []record.Record{{"b": "", "c": "NA"}}, custom)
}

func TestReadCSV_FieldNames(t *testing.T) {
	opts := clumpio.DefaultCSVOptions()
	opts.FieldNames = []string{"x", "y"}

	c, err := readCSV(t, "x1,y1\nx2,y2,extra\nx3\n", opts)
	require.NoError(t, err)
	testutil.AssertRecords(t, []record.Record{
		{"x": "x1", "y": "y1"},
		{"x": "x2", "y": "y2", "_rest": []any{"extra"}},
		{"x": "x3", "y": nil},
	}, c)
}

func TestReadCSV_Delimiter(t *testing.T) {
	opts := clumpio.DefaultCSVOptions()
	opts.Delimiter = ';'

	c, err := readCSV(t, "a;b\n1;2\n", opts)
	require.NoError(t, err)
	testutil.AssertRecords(t, []record.Record{{"a": "1", "b": "2"}}, c)
}

func TestReadCSV_DTypes(t *testing.T) {
	src := "a,b,c\n1,2.5,x\n"

	opts := clumpio.DefaultCSVOptions()
	opts.DTypes = map[string]string{"a": clumpio.DTypeInt, "b": clumpio.DTypeFloat}
	c, err := readCSV(t, src, opts)
	require.NoError(t, err)
	testutil.AssertRecords(t, []record.Record{{"a": int64(1), "b": 2.5, "c": "x"}}, c)

	opts = clumpio.DefaultCSVOptions()
	opts.DType = clumpio.DTypeFloat
	_, err = readCSV(t, src, opts)
	assert.ErrorIs(t, err, errors.ErrArgument)
	assert.Contains(t, err.Error(), "line 2")

	opts = clumpio.DefaultCSVOptions()
	opts.DType = "decimal"
	_, err = readCSV(t, src, opts)
	assert.ErrorIs(t, err, errors.ErrArgument)
}

func TestReadCSV_NormalizesHeader(t *testing.T) {
	// A byte order mark, then "cafe" with a combining acute accent.
	src := "\ufeffcafe\u0301\n1\n"

	c, err := readCSV(t, src, clumpio.DefaultCSVOptions())
	require.NoError(t, err)
	testutil.AssertHasKeys(t, c, []string{"caf\u00e9"})
}

func TestReadCSV_HeaderOnly(t *testing.T) {
	c, err := readCSV(t, "a,b\n", clumpio.DefaultCSVOptions())
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestCSVWriter_Golden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, clumpio.NewCSVWriter(&buf, clumpio.DefaultCSVOptions()).Write(writerSample()))
	golden(t).Assert(t, "csv_writer", buf.Bytes())
}

func TestCSVWriter_RequiresRecords(t *testing.T) {
	var buf bytes.Buffer
	err := clumpio.NewCSVWriter(&buf, clumpio.DefaultCSVOptions()).Write(collection.New([]any{1}))
	assert.ErrorIs(t, err, errors.ErrShape)
}

func TestCSV_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monopoly.csv")
	original, err := clumpio.ReadCSV(context.Background(), dataPath("monopoly.csv"), clumpio.DefaultCSVOptions())
	require.NoError(t, err)

	require.NoError(t, clumpio.WriteCSV(path, original, clumpio.DefaultCSVOptions()))
	back, err := clumpio.ReadCSV(context.Background(), path, clumpio.DefaultCSVOptions())
	require.NoError(t, err)
	assert.Equal(t, original.Collect(), back.Collect())
}
