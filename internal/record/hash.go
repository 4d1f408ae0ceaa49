package record

import (
	"encoding/binary"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint hashes v so that Equal values share a fingerprint. Unequal
// values may collide; callers confirm matches with Equal.
func Fingerprint(v any) uint64 {
	d := xxhash.New()
	writeCanonical(d, v)
	return d.Sum64()
}

// FingerprintOf hashes the values of keys on r in order.
func FingerprintOf(r Record, keys []string) uint64 {
	d := xxhash.New()
	for _, k := range keys {
		v, ok := r[k]
		if !ok {
			_, _ = d.WriteString("\x00absent")
			continue
		}
		writeCanonical(d, v)
	}
	return d.Sum64()
}

func writeCanonical(d *xxhash.Digest, v any) {
	var buf [8]byte

	if f, ok := ToFloat(v); ok {
		_, _ = d.WriteString("n")
		if f == 0 {
			f = 0 // folds -0 onto +0
		}
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		_, _ = d.Write(buf[:])
		return
	}

	switch val := v.(type) {
	case nil:
		_, _ = d.WriteString("z")
	case bool:
		if val {
			_, _ = d.WriteString("t")
		} else {
			_, _ = d.WriteString("f")
		}
	case string:
		_, _ = d.WriteString("s")
		binary.LittleEndian.PutUint64(buf[:], uint64(len(val)))
		_, _ = d.Write(buf[:])
		_, _ = d.WriteString(val)
	case time.Time:
		_, _ = d.WriteString("d")
		binary.LittleEndian.PutUint64(buf[:], uint64(val.UnixNano())) //nolint:gosec // bit pattern only
		_, _ = d.Write(buf[:])
	case map[string]any:
		_, _ = d.WriteString("{")
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			writeCanonical(d, k)
			writeCanonical(d, val[k])
		}
		_, _ = d.WriteString("}")
	default:
		if list, ok := AsList(v); ok {
			_, _ = d.WriteString("[")
			for _, e := range list {
				writeCanonical(d, e)
			}
			_, _ = d.WriteString("]")
			return
		}
		_, _ = fmt.Fprintf(d, "?%T:%v", v, v)
	}
}
