package io

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/paveg/clump/internal/collection"
	"github.com/paveg/clump/internal/config"
	"github.com/paveg/clump/internal/errors"
	"github.com/paveg/clump/internal/record"
	"golang.org/x/text/unicode/norm"
)

// Data types accepted by CSVOptions.DType and DTypes
const (
	DTypeInt   = "int"
	DTypeFloat = "float"
	DTypeStr   = "str"
)

const utf8BOM = "\ufeff"

// normalizeKey puts header names in NFC so that keys typed by hand match
// keys read from files written on other platforms.
func normalizeKey(name string) string {
	return norm.NFC.String(name)
}

func validDType(dtype string) bool {
	return dtype == "" || dtype == DTypeInt || dtype == DTypeFloat || dtype == DTypeStr
}

// Read reads CSV data and returns a Collection. Every cell is a string
// unless a dtype converts it. Null cells drop their key; rows shorter than
// the header get nil for the missing cells.
func (r *CSVReader) Read() (*collection.Collection, error) {
	opts := r.options
	if err := opts.validate("ReadCSV"); err != nil {
		return nil, err
	}
	if !validDType(opts.DType) {
		return nil, errors.NewArgumentError("ReadCSV", fmt.Sprintf("dtype must be one of int, float, str, got %q", opts.DType))
	}
	for key, dtype := range opts.DTypes {
		if !validDType(dtype) {
			return nil, errors.NewValueError("ReadCSV", key, fmt.Sprintf("dtype must be one of int, float, str, got %q", dtype))
		}
	}

	csvReader := csv.NewReader(r.reader)
	if opts.Delimiter != 0 {
		csvReader.Comma = opts.Delimiter
	}
	csvReader.FieldsPerRecord = -1

	nulls := opts.NullValues
	if nulls == nil {
		nulls = config.GetGlobalConfig().NullValues
	}
	restKey := opts.RestKey
	if restKey == "" {
		restKey = "_rest"
	}

	var header []string
	if opts.FieldNames != nil {
		header = make([]string, len(opts.FieldNames))
		for i, name := range opts.FieldNames {
			header[i] = normalizeKey(name)
		}
	}

	items := make([]any, 0)
	for line := 1; ; line++ {
		row, err := csvReader.Read()
		if err != nil {
			if isEOF(err) {
				break
			}
			return nil, fmt.Errorf("reading CSV: %w", err)
		}

		if header == nil {
			header = make([]string, len(row))
			for i, name := range row {
				if i == 0 {
					name = strings.TrimPrefix(name, utf8BOM)
				}
				header[i] = normalizeKey(name)
			}
			continue
		}

		rec := make(record.Record, len(header))
		for i, key := range header {
			if i >= len(row) {
				rec[key] = nil
				continue
			}
			cell := row[i]
			if !opts.KeepNulls && slices.Contains(nulls, cell) {
				continue
			}
			v, err := convertCell(key, cell, opts.dtypeFor(key))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			rec[key] = v
		}
		if len(row) > len(header) {
			rest := make([]any, 0, len(row)-len(header))
			for _, cell := range row[len(header):] {
				rest = append(rest, cell)
			}
			rec[restKey] = rest
		}

		items = append(items, rec)
		if opts.limit(len(items)) {
			break
		}
	}
	return collection.New(items), nil
}

func (o CSVOptions) dtypeFor(key string) string {
	if dtype, ok := o.DTypes[key]; ok {
		return dtype
	}
	return o.DType
}

func convertCell(key, cell, dtype string) (any, error) {
	switch dtype {
	case DTypeInt:
		v, err := strconv.ParseInt(strings.TrimSpace(cell), 10, 64)
		if err != nil {
			return nil, errors.NewValueError("ReadCSV", key, fmt.Sprintf("cannot convert %q to int", cell))
		}
		return v, nil
	case DTypeFloat:
		v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err != nil {
			return nil, errors.NewValueError("ReadCSV", key, fmt.Sprintf("cannot convert %q to float", cell))
		}
		return v, nil
	default:
		return cell, nil
	}
}

// Write writes the Collection as CSV. The header is the union of keys in
// first-seen order; missing keys and nil values become empty cells.
func (w *CSVWriter) Write(c *collection.Collection) error {
	header, err := c.Keys(false)
	if err != nil {
		return err
	}
	recs, err := c.Records()
	if err != nil {
		return err
	}

	csvWriter := csv.NewWriter(w.writer)
	if w.options.Delimiter != 0 {
		csvWriter.Comma = w.options.Delimiter
	}

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	row := make([]string, len(header))
	for i, rec := range recs {
		for j, key := range header {
			cell, err := formatCell(rec[key])
			if err != nil {
				return fmt.Errorf("formatting record %d key %s: %w", i, key, err)
			}
			row[j] = cell
		}
		if err := csvWriter.Write(row); err != nil {
			return fmt.Errorf("writing CSV record %d: %w", i, err)
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

func formatCell(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case bool:
		return strconv.FormatBool(val), nil
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case time.Time:
		return val.Format(time.RFC3339Nano), nil
	}
	if i, ok := record.ToInt(v); ok {
		return strconv.FormatInt(i, 10), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
