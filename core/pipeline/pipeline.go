// Package pipeline implements the headless row-model pipeline: raw records
// flow through filter, sort, and paginate stages, each stage caching its
// output behind a dirty flag so that unchanged stages cost nothing on
// repeated reads. The pipeline renders nothing and holds no callbacks; an
// external control loop mutates state and pulls row models back out.
package pipeline

import (
	"fmt"
	"sync"

	"github.com/akbargherbal/gridcore/core/column"
	"go.uber.org/zap"
)

// DefaultPageSize is the page size in effect before the first SetPagination
// call. Pagination state always satisfies pageSize > 0.
const DefaultPageSize = 10

// PaginationState holds the current page index and page size. PageIndex is
// clamped to the valid page range whenever the filtered row count changes.
type PaginationState struct {
	PageIndex int
	PageSize  int
}

// Pipeline derives displayable row models from raw records through filter,
// sort, and paginate stages. All operations are synchronous; reads are
// side-effect-free for callers but lazily settle internal caches.
type Pipeline[T any] struct {
	mu      sync.Mutex
	columns *column.Set[T]
	logger  *zap.Logger

	records []T

	globalFilter     string
	globalPredicate  FilterPredicate
	defaultPredicate FilterPredicate
	columnFilters    map[string]string
	columnPredicates map[string]FilterPredicate

	sorts []SortDescriptor
	page  PaginationState

	filteredDirty bool
	sortedDirty   bool
	pageDirty     bool
	filtered      []T
	sorted        []T
	pageRows      []T
}

// New creates a pipeline over the given column set. A nil logger is replaced
// with a no-op logger. The pipeline starts with no records, no filters, no
// sort, and the default pagination state.
func New[T any](columns *column.Set[T], logger *zap.Logger) *Pipeline[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline[T]{
		columns:          columns,
		logger:           logger,
		globalPredicate:  MatchContainsFold,
		defaultPredicate: MatchContainsFold,
		columnFilters:    make(map[string]string),
		columnPredicates: make(map[string]FilterPredicate),
		page:             PaginationState{PageIndex: 0, PageSize: DefaultPageSize},
		filteredDirty:    true,
		sortedDirty:      true,
		pageDirty:        true,
	}
}

// Columns returns the column set the pipeline was built over.
func (p *Pipeline[T]) Columns() *column.Set[T] {
	return p.columns
}

// SetRecords replaces the raw dataset and invalidates every stage. Cost is
// O(1) beyond the reference swap; recomputation happens on the next read.
func (p *Pipeline[T]) SetRecords(records []T) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = records
	p.invalidateFrom(stageFiltered)
	p.logger.Debug("records replaced", zap.Int("count", len(records)))
}

// SetGlobalFilter updates the global filter value, which is matched against
// every registered column. An empty value disables the global filter.
func (p *Pipeline[T]) SetGlobalFilter(value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.globalFilter == value {
		return
	}
	p.globalFilter = value
	p.invalidateFrom(stageFiltered)
}

// SetGlobalPredicate replaces the predicate used by the global filter. A nil
// predicate restores the default case-insensitive substring match.
func (p *Pipeline[T]) SetGlobalPredicate(pred FilterPredicate) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pred == nil {
		pred = MatchContainsFold
	}
	p.globalPredicate = pred
	p.invalidateFrom(stageFiltered)
}

// SetColumnFilter updates one column's filter value. An empty value clears
// the filter for that column. Fails with ErrUnknownColumn when the column id
// has no registered accessor.
func (p *Pipeline[T]) SetColumnFilter(columnID, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.columns.Lookup(columnID); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, columnID)
	}
	if value == "" {
		delete(p.columnFilters, columnID)
	} else {
		p.columnFilters[columnID] = value
	}
	p.invalidateFrom(stageFiltered)
	return nil
}

// SetColumnPredicate overrides the predicate used for one column's filter.
// A nil predicate removes the override. Fails with ErrUnknownColumn for an
// unregistered column id.
func (p *Pipeline[T]) SetColumnPredicate(columnID string, pred FilterPredicate) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.columns.Lookup(columnID); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, columnID)
	}
	if pred == nil {
		delete(p.columnPredicates, columnID)
	} else {
		p.columnPredicates[columnID] = pred
	}
	p.invalidateFrom(stageFiltered)
	return nil
}

// ClearColumnFilters removes every column filter while leaving the global
// filter in place.
func (p *Pipeline[T]) ClearColumnFilters() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.columnFilters) == 0 {
		return
	}
	p.columnFilters = make(map[string]string)
	p.invalidateFrom(stageFiltered)
}

// SetSort replaces the active sort descriptors. Every referenced column id is
// validated before any state changes; a single unknown id rejects the whole
// call with ErrUnknownColumn and leaves the previous sort untouched.
func (p *Pipeline[T]) SetSort(descriptors ...SortDescriptor) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, d := range descriptors {
		if _, ok := p.columns.Lookup(d.ColumnID); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownColumn, d.ColumnID)
		}
	}
	p.sorts = append([]SortDescriptor(nil), descriptors...)
	p.invalidateFrom(stageSorted)
	return nil
}

// SetPagination updates the pagination state. Fails with ErrInvalidPageSize
// when pageSize <= 0; the page index is clamped to the valid range for the
// current filtered row count, never negative and never past the last page.
func (p *Pipeline[T]) SetPagination(pageIndex, pageSize int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pageSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, pageSize)
	}
	p.page = PaginationState{PageIndex: pageIndex, PageSize: pageSize}
	p.clampPageIndex(len(p.refreshFiltered()))
	p.invalidateFrom(stagePage)
	return nil
}

// FilteredRows returns the rows that survive the global and column filters,
// in their original relative order. The returned slice is a snapshot.
func (p *Pipeline[T]) FilteredRows() []T {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]T(nil), p.refreshFiltered()...)
}

// SortedRows returns the filtered rows in sorted order. Without active sort
// descriptors this equals FilteredRows. The returned slice is a snapshot.
func (p *Pipeline[T]) SortedRows() []T {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]T(nil), p.refreshSorted()...)
}

// PageRows returns the current page of the sorted rows. The returned slice is
// a snapshot. An empty result is a valid state, not an error.
func (p *Pipeline[T]) PageRows() []T {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]T(nil), p.refreshPage()...)
}

// RowCount returns the number of rows after filtering, before pagination.
// This is the authoritative total for page-count math.
func (p *Pipeline[T]) RowCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.refreshFiltered())
}

// PageCount returns the number of pages the filtered rows span under the
// current page size. An empty filtered set has zero pages.
func (p *Pipeline[T]) PageCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return pageCount(len(p.refreshFiltered()), p.page.PageSize)
}

// GlobalFilter returns the current global filter value.
func (p *Pipeline[T]) GlobalFilter() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.globalFilter
}

// ColumnFilter returns the filter value for one column, if set.
func (p *Pipeline[T]) ColumnFilter(columnID string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.columnFilters[columnID]
	return v, ok
}

// ColumnFilters returns a snapshot of all active column filter values.
func (p *Pipeline[T]) ColumnFilters() map[string]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]string, len(p.columnFilters))
	for id, v := range p.columnFilters {
		out[id] = v
	}
	return out
}

// SortState returns a snapshot of the active sort descriptors in priority
// order, suitable for rendering sort indicators.
func (p *Pipeline[T]) SortState() []SortDescriptor {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]SortDescriptor(nil), p.sorts...)
}

// Pagination returns the pagination state with the page index clamped against
// the current filtered row count.
func (p *Pipeline[T]) Pagination() PaginationState {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clampPageIndex(len(p.refreshFiltered()))
	return p.page
}

// pipeline stages, in dependency order.
type stage int

const (
	stageFiltered stage = iota
	stageSorted
	stagePage
)

// invalidateFrom marks a stage and everything downstream of it dirty.
func (p *Pipeline[T]) invalidateFrom(s stage) {
	if s <= stageFiltered {
		p.filteredDirty = true
	}
	if s <= stageSorted {
		p.sortedDirty = true
	}
	p.pageDirty = true
}

// refreshFiltered settles the filtered stage and re-clamps the page index
// whenever the filtered count may have changed.
func (p *Pipeline[T]) refreshFiltered() []T {
	if p.filteredDirty {
		p.filtered = p.applyFilters()
		p.filteredDirty = false
		p.clampPageIndex(len(p.filtered))
		p.logger.Debug("filtered stage recomputed", zap.Int("rows", len(p.filtered)))
	}
	return p.filtered
}

func (p *Pipeline[T]) refreshSorted() []T {
	filtered := p.refreshFiltered()
	if p.sortedDirty {
		p.sorted = p.applySort(filtered)
		p.sortedDirty = false
		p.logger.Debug("sorted stage recomputed", zap.Int("rows", len(p.sorted)))
	}
	return p.sorted
}

func (p *Pipeline[T]) refreshPage() []T {
	sorted := p.refreshSorted()
	if p.pageDirty {
		start := p.page.PageIndex * p.page.PageSize
		end := start + p.page.PageSize
		if start > len(sorted) {
			start = len(sorted)
		}
		if end > len(sorted) {
			end = len(sorted)
		}
		p.pageRows = sorted[start:end]
		p.pageDirty = false
	}
	return p.pageRows
}

// clampPageIndex keeps the page index inside [0, pageCount-1] for the given
// filtered row count. A shrinking filter can never leave the index pointing
// past the last valid page.
func (p *Pipeline[T]) clampPageIndex(filteredCount int) {
	last := pageCount(filteredCount, p.page.PageSize) - 1
	if last < 0 {
		last = 0
	}
	if p.page.PageIndex > last {
		p.page.PageIndex = last
		p.pageDirty = true
	}
	if p.page.PageIndex < 0 {
		p.page.PageIndex = 0
		p.pageDirty = true
	}
}

func pageCount(rows, pageSize int) int {
	if pageSize <= 0 || rows <= 0 {
		return 0
	}
	return (rows + pageSize - 1) / pageSize
}
