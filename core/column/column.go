// Package column defines the statically declared column model used by the
// row-model pipeline. Each column pairs an accessor with a declared value
// type; the declared type alone selects the comparator used for sorting, so
// no runtime type inspection of records ever happens on the hot path.
package column

import (
	"fmt"
	"strings"
	"time"

	"github.com/akbargherbal/gridcore/utils"
)

// Type declares the value domain of a column. It drives comparator selection.
type Type string

// Supported column types.
const (
	TypeText    Type = "text"
	TypeNumeric Type = "numeric"
	TypeDate    Type = "date"
)

// Comparator orders two column values. Negative means a < b, zero means
// equal, positive means a > b.
type Comparator func(a, b any) int

// Accessor extracts a column's value from a record. Accessors must be pure:
// the pipeline caches stage results and assumes the same record always yields
// the same value.
type Accessor[T any] func(record T) any

// Column describes one column of a table: a stable identifier, a declared
// value type, the accessor that reads the value off a record, and an optional
// comparator override for custom orderings.
type Column[T any] struct {
	ID      string
	Type    Type
	Access  Accessor[T]
	Compare Comparator
}

// Comparator returns the comparator in effect for the column: the explicit
// override when present, otherwise the comparator selected by the declared type.
func (c Column[T]) Comparator() Comparator {
	if c.Compare != nil {
		return c.Compare
	}
	switch c.Type {
	case TypeNumeric:
		return CompareNumeric
	case TypeDate:
		return CompareDate
	default:
		return CompareText
	}
}

// CompareText orders values lexicographically by their string form.
func CompareText(a, b any) int {
	return strings.Compare(stringValue(a), stringValue(b))
}

// CompareNumeric orders values numerically. Values that cannot be coerced to
// a float sort before values that can, and equal to each other.
func CompareNumeric(a, b any) int {
	fa, oka := utils.ToFloat64(a)
	fb, okb := utils.ToFloat64(b)
	if !oka || !okb {
		if oka == okb {
			return 0
		}
		if !oka {
			return -1
		}
		return 1
	}
	switch {
	case fa < fb:
		return -1
	case fa > fb:
		return 1
	default:
		return 0
	}
}

// CompareDate orders values chronologically. time.Time values are compared
// directly; strings are parsed as RFC 3339. Unparseable values sort first.
func CompareDate(a, b any) int {
	ta, oka := timeValue(a)
	tb, okb := timeValue(b)
	if !oka || !okb {
		if oka == okb {
			return 0
		}
		if !oka {
			return -1
		}
		return 1
	}
	return ta.Compare(tb)
}

func timeValue(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, true
	case *time.Time:
		if val == nil {
			return time.Time{}, false
		}
		return *val, true
	case string:
		t, err := time.Parse(time.RFC3339, val)
		return t, err == nil
	default:
		return time.Time{}, false
	}
}

func stringValue(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// StringValue renders a column value for predicate matching. Filtering
// operates on the string form of whatever the accessor returned.
func StringValue(v any) string {
	return stringValue(v)
}
