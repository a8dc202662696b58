package pipeline

import (
	"strings"

	"github.com/akbargherbal/gridcore/core/column"
)

// FilterPredicate decides whether a column value matches a filter value. The
// column value is rendered to its string form before matching. Predicates
// must be pure functions of their inputs: filtering is a total function of
// (records, predicates) with no hidden state.
type FilterPredicate func(value string, filterValue string) bool

// MatchExact matches when the value equals the filter value exactly.
func MatchExact(value, filterValue string) bool {
	return value == filterValue
}

// MatchContains matches when the value contains the filter value as a
// case-sensitive substring.
func MatchContains(value, filterValue string) bool {
	return strings.Contains(value, filterValue)
}

// MatchContainsFold matches when the value contains the filter value as a
// case-insensitive substring. This is the pipeline's default predicate.
func MatchContainsFold(value, filterValue string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(filterValue))
}

// matchesGlobal reports whether any registered column of the record matches
// the global filter value.
func (p *Pipeline[T]) matchesGlobal(record T) bool {
	for _, id := range p.columns.IDs() {
		col, _ := p.columns.Lookup(id)
		if p.globalPredicate(column.StringValue(col.Access(record)), p.globalFilter) {
			return true
		}
	}
	return false
}

// matchesColumn reports whether the record matches one column filter.
func (p *Pipeline[T]) matchesColumn(record T, id, filterValue string) bool {
	col, ok := p.columns.Lookup(id)
	if !ok {
		// Column filters are validated at set time; a missing column here
		// means the filter map was mutated outside the pipeline.
		return false
	}
	pred := p.defaultPredicate
	if override, ok := p.columnPredicates[id]; ok {
		pred = override
	}
	return pred(column.StringValue(col.Access(record)), filterValue)
}

// applyFilters produces the filtered row model. The global filter runs first
// across all columns, then each column filter narrows the previous result, so
// column predicates never re-evaluate records already excluded globally.
func (p *Pipeline[T]) applyFilters() []T {
	rows := p.records
	if p.globalFilter != "" {
		narrowed := make([]T, 0, len(rows))
		for _, record := range rows {
			if p.matchesGlobal(record) {
				narrowed = append(narrowed, record)
			}
		}
		rows = narrowed
	}

	for _, id := range p.columns.IDs() {
		filterValue, ok := p.columnFilters[id]
		if !ok || filterValue == "" {
			continue
		}
		narrowed := make([]T, 0, len(rows))
		for _, record := range rows {
			if p.matchesColumn(record, id, filterValue) {
				narrowed = append(narrowed, record)
			}
		}
		rows = narrowed
	}

	if len(rows) == len(p.records) {
		// Nothing was excluded; clone so the cache never aliases the raw
		// dataset slice handed in by the caller.
		rows = append([]T(nil), rows...)
	}
	return rows
}
