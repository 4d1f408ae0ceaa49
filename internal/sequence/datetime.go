package sequence

import (
	"fmt"
	"slices"
	"time"

	"github.com/paveg/clump/internal/errors"
)

// DefaultDatetimeLayout matches "2006-01-02 15:04:05.000000".
const DefaultDatetimeLayout = "2006-01-02 15:04:05.000000"

// Frequencies supported by RoundDatetime, finest first.
var Frequencies = []string{"second", "minute", "hour", "day", "month"}

// RoundDatetime parses value with layout, truncates it down to the start
// of its frequency bucket and formats it back with the same layout. An
// empty layout means DefaultDatetimeLayout. Time zones are ignored.
func RoundDatetime(value, frequency, layout string) (string, error) {
	if !slices.Contains(Frequencies, frequency) {
		return "", errors.NewArgumentError("RoundDatetime",
			fmt.Sprintf("frequency %q is not supported, use one of %v", frequency, Frequencies))
	}
	if layout == "" {
		layout = DefaultDatetimeLayout
	}

	t, err := time.Parse(layout, value)
	if err != nil {
		return "", errors.NewArgumentError("RoundDatetime", err.Error())
	}

	y, mo, d := t.Date()
	h, mi, s := t.Clock()
	switch frequency {
	case "second":
	case "minute":
		s = 0
	case "hour":
		s, mi = 0, 0
	case "day":
		s, mi, h = 0, 0, 0
	case "month":
		s, mi, h, d = 0, 0, 0, 1
	}
	return time.Date(y, mo, d, h, mi, s, 0, t.Location()).Format(layout), nil
}
