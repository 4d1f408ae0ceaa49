// Package record defines the Record value model shared by every verb:
// deep copies, structural equality, a total ordering for sorting and
// summaries, numeric coercion and content fingerprints.
package record

import (
	"reflect"
	"time"
)

// Record is a single row: string keys mapped to scalars, nested records or
// sequences. Keys may differ between records of one collection.
type Record = map[string]any

// AsRecord reports whether v is a Record.
func AsRecord(v any) (Record, bool) {
	r, ok := v.(map[string]any)
	return r, ok
}

// Has reports whether key is present on r. A key holding nil is present.
func Has(r Record, key string) bool {
	_, ok := r[key]
	return ok
}

// Clone returns a deep copy of r.
func Clone(r Record) Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = CloneValue(v)
	}
	return out
}

// CloneValue deep-copies maps and slices; scalars are returned as is.
func CloneValue(v any) any {
	switch val := v.(type) {
	case nil, string, bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64, time.Time:
		return v
	case map[string]any:
		return Clone(val)
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = CloneValue(e)
		}
		return out
	case []map[string]any:
		out := make([]map[string]any, len(val))
		for i, e := range val {
			out[i] = Clone(e)
		}
		return out
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return v
		}
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			cloned := CloneValue(rv.Index(i).Interface())
			if cloned == nil {
				continue
			}
			out.Index(i).Set(reflect.ValueOf(cloned))
		}
		return out.Interface()
	case reflect.Map:
		if rv.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			cloned := CloneValue(iter.Value().Interface())
			if cloned == nil {
				out.SetMapIndex(iter.Key(), reflect.Zero(rv.Type().Elem()))
				continue
			}
			out.SetMapIndex(iter.Key(), reflect.ValueOf(cloned))
		}
		return out.Interface()
	default:
		return v
	}
}

// AsList converts any slice (other than string bytes) into []any.
func AsList(v any) ([]any, bool) {
	switch val := v.(type) {
	case []any:
		return val, true
	case []byte, string, nil:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// ToFloat converts any Go numeric value to float64.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return toFloat(n), true
	case int8:
		return toFloat(n), true
	case int16:
		return toFloat(n), true
	case int32:
		return toFloat(n), true
	case int64:
		return toFloat(n), true
	case uint:
		return toFloat(n), true
	case uint8:
		return toFloat(n), true
	case uint16:
		return toFloat(n), true
	case uint32:
		return toFloat(n), true
	case uint64:
		return toFloat(n), true
	case float32:
		return toFloat(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// ToInt converts integer kinds to int64. Floats and unsigned values above
// math.MaxInt64 are rejected.
func ToInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return unsignedToInt(n)
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return unsignedToInt(n)
	default:
		return 0, false
	}
}

// IsNumeric reports whether v is a Go numeric value.
func IsNumeric(v any) bool {
	_, ok := ToFloat(v)
	return ok
}
