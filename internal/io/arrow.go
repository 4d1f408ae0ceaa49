package io

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/clump/internal/collection"
	"github.com/paveg/clump/internal/record"
)

// Field metadata marking a string column whose cells are JSON documents.
const (
	encodingMetadataKey = "clump.encoding"
	encodingJSON        = "json"
)

type columnKind int

const (
	kindNull columnKind = iota
	kindInt
	kindFloat
	kindBool
	kindString
	kindTime
	kindJSON
)

// inferKind folds the kind of v into the kind seen so far for a column.
func inferKind(seen columnKind, v any) columnKind {
	var k columnKind
	switch v.(type) {
	case nil:
		return seen
	case bool:
		k = kindBool
	case string:
		k = kindString
	case time.Time:
		k = kindTime
	case float32, float64:
		k = kindFloat
	default:
		if _, ok := record.ToInt(v); ok {
			k = kindInt
		} else {
			k = kindJSON
		}
	}

	switch {
	case seen == kindNull || seen == k:
		return k
	case (seen == kindInt && k == kindFloat) || (seen == kindFloat && k == kindInt):
		return kindFloat
	default:
		return kindJSON
	}
}

func (k columnKind) field(name string) arrow.Field {
	f := arrow.Field{Name: name, Nullable: true}
	switch k {
	case kindInt:
		f.Type = arrow.PrimitiveTypes.Int64
	case kindFloat:
		f.Type = arrow.PrimitiveTypes.Float64
	case kindBool:
		f.Type = arrow.FixedWidthTypes.Boolean
	case kindTime:
		f.Type = &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}
	case kindJSON:
		f.Type = arrow.BinaryTypes.String
		f.Metadata = arrow.NewMetadata([]string{encodingMetadataKey}, []string{encodingJSON})
	default:
		f.Type = arrow.BinaryTypes.String
	}
	return f
}

// ToArrow converts the records of c into one Arrow record batch. Columns
// follow Keys(false); each column's type is inferred from its values, and
// columns mixing kinds or holding nested values are stored as JSON text.
// Missing keys and nil values become nulls. The caller releases the result.
func ToArrow(c *collection.Collection, mem memory.Allocator) (arrow.Record, error) {
	keys, err := c.Keys(false)
	if err != nil {
		return nil, err
	}
	recs, err := c.Records()
	if err != nil {
		return nil, err
	}

	kinds := make([]columnKind, len(keys))
	for _, r := range recs {
		for i, key := range keys {
			kinds[i] = inferKind(kinds[i], r[key])
		}
	}

	fields := make([]arrow.Field, len(keys))
	for i, key := range keys {
		fields[i] = kinds[i].field(key)
	}
	schema := arrow.NewSchema(fields, nil)

	builder := array.NewRecordBuilder(mem, schema)
	defer builder.Release()

	for _, r := range recs {
		for i, key := range keys {
			if err := appendValue(builder.Field(i), kinds[i], r[key]); err != nil {
				return nil, fmt.Errorf("converting key %s: %w", key, err)
			}
		}
	}
	return builder.NewRecord(), nil
}

func appendValue(b array.Builder, kind columnKind, v any) error {
	if v == nil {
		b.AppendNull()
		return nil
	}

	switch kind {
	case kindInt:
		i, _ := record.ToInt(v)
		b.(*array.Int64Builder).Append(i)
	case kindFloat:
		f, _ := record.ToFloat(v)
		b.(*array.Float64Builder).Append(f)
	case kindBool:
		b.(*array.BooleanBuilder).Append(v.(bool))
	case kindTime:
		b.(*array.TimestampBuilder).Append(arrow.Timestamp(v.(time.Time).UnixMicro()))
	case kindJSON:
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		b.(*array.StringBuilder).Append(string(data))
	default:
		b.(*array.StringBuilder).Append(v.(string))
	}
	return nil
}

// FromArrow converts a record batch into records. Null cells leave their
// key out of the record.
func FromArrow(rec arrow.Record) ([]record.Record, error) {
	out := make([]record.Record, rec.NumRows())
	for i := range out {
		out[i] = make(record.Record, rec.NumCols())
	}

	schema := rec.Schema()
	for j, col := range rec.Columns() {
		field := schema.Field(j)
		jsonText := false
		if idx := field.Metadata.FindKey(encodingMetadataKey); idx >= 0 {
			jsonText = field.Metadata.Values()[idx] == encodingJSON
		}

		for i := range out {
			if col.IsNull(i) {
				continue
			}
			v, err := arrowValue(col, i, jsonText)
			if err != nil {
				return nil, fmt.Errorf("converting column %s row %d: %w", field.Name, i, err)
			}
			out[i][field.Name] = v
		}
	}
	return out, nil
}

func arrowValue(arr arrow.Array, i int, jsonText bool) (any, error) {
	switch a := arr.(type) {
	case *array.Int8:
		return int64(a.Value(i)), nil
	case *array.Int16:
		return int64(a.Value(i)), nil
	case *array.Int32:
		return int64(a.Value(i)), nil
	case *array.Int64:
		return a.Value(i), nil
	case *array.Uint8:
		return int64(a.Value(i)), nil
	case *array.Uint16:
		return int64(a.Value(i)), nil
	case *array.Uint32:
		return int64(a.Value(i)), nil
	case *array.Uint64:
		return int64(a.Value(i)), nil //nolint:gosec // values beyond MaxInt64 are not expected in records
	case *array.Float32:
		return float64(a.Value(i)), nil
	case *array.Float64:
		return a.Value(i), nil
	case *array.Boolean:
		return a.Value(i), nil
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return a.Value(i).ToTime(unit).UTC(), nil
	case *array.String:
		if jsonText {
			return decodeJSON([]byte(a.Value(i)))
		}
		return strings.Clone(a.Value(i)), nil
	case *array.LargeString:
		return strings.Clone(a.Value(i)), nil
	}

	v := arr.GetOneForMarshal(i)
	if raw, ok := v.(json.RawMessage); ok {
		return decodeJSON(raw)
	}
	return v, nil
}
