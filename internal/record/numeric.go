package record

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Number is any Go integer or floating-point kind.
type Number interface {
	constraints.Integer | constraints.Float
}

func toFloat[T Number](v T) float64 {
	return float64(v)
}

func unsignedToInt[T constraints.Unsigned](n T) (int64, bool) {
	if uint64(n) > math.MaxInt64 {
		return 0, false
	}
	return int64(n), true
}

// Total adds xs in order.
func Total[T Number](xs []T) T {
	var total T
	for _, x := range xs {
		total += x
	}
	return total
}

// Average is the arithmetic mean of xs, or NaN when xs is empty.
func Average[T Number](xs []T) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	return toFloat(Total(xs)) / float64(len(xs))
}

// AddChecked adds a and b, reporting false when the sum overflows T.
func AddChecked[T constraints.Signed](a, b T) (T, bool) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, false
	}
	return sum, true
}

// TotalChecked adds xs, reporting false on the first overflow.
func TotalChecked[T constraints.Signed](xs []T) (T, bool) {
	var total T
	for _, x := range xs {
		var ok bool
		if total, ok = AddChecked(total, x); !ok {
			return 0, false
		}
	}
	return total, true
}
