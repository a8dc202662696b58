package pipeline

import "slices"

// SortDirection specifies the direction for sorting.
type SortDirection string

// Supported sort directions.
const (
	SortAscending  SortDirection = "asc"
	SortDescending SortDirection = "desc"
)

// SortDescriptor names a column and a direction. Descriptor position in the
// slice passed to SetSort is its priority: the first descriptor is primary
// and later descriptors break ties.
type SortDescriptor struct {
	ColumnID  string
	Direction SortDirection
}

// Asc builds an ascending sort descriptor.
func Asc(columnID string) SortDescriptor {
	return SortDescriptor{ColumnID: columnID, Direction: SortAscending}
}

// Desc builds a descending sort descriptor.
func Desc(columnID string) SortDescriptor {
	return SortDescriptor{ColumnID: columnID, Direction: SortDescending}
}

// compareRecords composes the active sort descriptors lexicographically.
// Each descriptor compares with its column's typed comparator, negated for
// descending order; equal records fall through to the next descriptor.
func (p *Pipeline[T]) compareRecords(a, b T) int {
	for _, desc := range p.sorts {
		col, ok := p.columns.Lookup(desc.ColumnID)
		if !ok {
			continue
		}
		c := col.Comparator()(col.Access(a), col.Access(b))
		if desc.Direction == SortDescending {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

// applySort produces the sorted row model from the filtered rows. The sort is
// stable: records comparing equal under every descriptor keep their relative
// filtered order, which also makes the operation idempotent.
func (p *Pipeline[T]) applySort(filtered []T) []T {
	sorted := append([]T(nil), filtered...)
	if len(p.sorts) == 0 {
		return sorted
	}
	slices.SortStableFunc(sorted, p.compareRecords)
	return sorted
}
