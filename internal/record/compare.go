package record

import (
	"reflect"
	"strings"
	"time"
)

// Equal reports structural equality. Numbers compare by value across Go
// kinds, so 1, int64(1) and 1.0 are equal.
func Equal(a, b any) bool {
	if fa, ok := ToFloat(a); ok {
		fb, ok := ToFloat(b)
		if !ok {
			return false
		}
		if ia, aInt := ToInt(a); aInt {
			if ib, bInt := ToInt(b); bInt {
				return ia == ib
			}
		}
		return fa == fb
	}

	switch va := a.(type) {
	case nil:
		return b == nil
	case string:
		vb, ok := b.(string)
		return ok && va == vb
	case bool:
		vb, ok := b.(bool)
		return ok && va == vb
	case time.Time:
		vb, ok := b.(time.Time)
		return ok && va.Equal(vb)
	case map[string]any:
		vb, ok := b.(map[string]any)
		if !ok || len(va) != len(vb) {
			return false
		}
		for k, av := range va {
			bv, present := vb[k]
			if !present || !Equal(av, bv) {
				return false
			}
		}
		return true
	}

	la, aList := AsList(a)
	lb, bList := AsList(b)
	if aList || bList {
		if !aList || !bList || len(la) != len(lb) {
			return false
		}
		for i := range la {
			if !Equal(la[i], lb[i]) {
				return false
			}
		}
		return true
	}

	return reflect.DeepEqual(a, b)
}

// Contains reports whether items holds an element equal to v.
func Contains(items []any, v any) bool {
	for _, item := range items {
		if Equal(item, v) {
			return true
		}
	}
	return false
}

// rank orders values of different kinds relative to each other.
func rank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case string:
		return 3
	case time.Time:
		return 4
	}
	if IsNumeric(v) {
		return 2
	}
	if _, ok := AsList(v); ok {
		return 5
	}
	return 6
}

// Compare returns -1, 0 or +1 ordering a before, equal to, or after b.
// Values of different kinds order as nil < bool < number < string < time <
// list < other.
func Compare(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return cmpInt(ra, rb)
	}

	switch ra {
	case 0:
		return 0
	case 1:
		ba, bb := a.(bool), b.(bool)
		switch {
		case ba == bb:
			return 0
		case !ba:
			return -1
		default:
			return 1
		}
	case 2:
		if ia, ok := ToInt(a); ok {
			if ib, ok := ToInt(b); ok {
				return cmpInt64(ia, ib)
			}
		}
		fa, _ := ToFloat(a)
		fb, _ := ToFloat(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	case 3:
		return strings.Compare(a.(string), b.(string))
	case 4:
		return a.(time.Time).Compare(b.(time.Time))
	case 5:
		la, _ := AsList(a)
		lb, _ := AsList(b)
		for i := 0; i < len(la) && i < len(lb); i++ {
			if c := Compare(la[i], lb[i]); c != 0 {
				return c
			}
		}
		return cmpInt(len(la), len(lb))
	default:
		if Equal(a, b) {
			return 0
		}
		return strings.Compare(reflect.TypeOf(a).String(), reflect.TypeOf(b).String())
	}
}

// Comparable reports whether a and b have a meaningful order.
func Comparable(a, b any) bool {
	ra, rb := rank(a), rank(b)
	return ra == rb && ra >= 1 && ra <= 5
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
