// Package virtual implements windowed list virtualization: given a scrollable
// viewport over N items of known or estimated size, it computes the minimal
// contiguous index range that must be materialized and each item's pixel
// offset, so rendering cost stays proportional to the visible window instead
// of the list length.
package virtual

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// ErrInvalidConfiguration indicates the virtualizer was configured or
// measured with out-of-domain values: a negative count, a missing size
// estimator, a negative viewport or overscan, or a measurement outside the
// item range.
var ErrInvalidConfiguration = errors.New("invalid virtualizer configuration")

// SizeEstimator supplies the assumed size of an item before it has been
// rendered and measured.
type SizeEstimator func(index int) float64

// ConstEstimator returns an estimator that assumes a uniform item size.
func ConstEstimator(size float64) SizeEstimator {
	return func(int) float64 { return size }
}

// Align controls where ScrollToIndex places the target item in the viewport.
type Align string

// Supported alignments.
const (
	AlignStart  Align = "start"
	AlignCenter Align = "center"
	AlignEnd    Align = "end"
)

// Item is one materialized list entry: its index, its cumulative pixel offset
// from the top of the list, and its measured or estimated size.
type Item struct {
	Index int
	Start float64
	Size  float64
}

// Virtualizer owns viewport geometry and per-item size information for an
// ordered list. It is a pure state machine: mutators update state, reads
// lazily settle the cumulative-offset prefix and answer window queries via
// binary search.
type Virtualizer struct {
	count     int
	viewport  float64
	overscan  int
	estimator SizeEstimator

	scrollOffset float64
	measured     map[int]float64

	// prefix[i] is the start offset of item i; prefix[count] is the total
	// size. Entries at index >= dirtyFrom are stale.
	prefix    []float64
	dirtyFrom int

	logger *zap.Logger
}

// New creates an unconfigured virtualizer. A nil logger is replaced with a
// no-op logger; Configure must be called before reads return anything.
func New(logger *zap.Logger) *Virtualizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Virtualizer{
		measured: make(map[int]float64),
		logger:   logger,
	}
}

// Configure (re)initializes layout state: item count, viewport extent along
// the scroll axis, size estimator, and overscan item count beyond each
// viewport edge. Previous measurements and scroll position are discarded.
func (v *Virtualizer) Configure(count int, viewportSize float64, estimator SizeEstimator, overscan int) error {
	if count < 0 {
		return fmt.Errorf("%w: count %d is negative", ErrInvalidConfiguration, count)
	}
	if estimator == nil {
		return fmt.Errorf("%w: size estimator is required", ErrInvalidConfiguration)
	}
	if viewportSize < 0 {
		return fmt.Errorf("%w: viewport size %v is negative", ErrInvalidConfiguration, viewportSize)
	}
	if overscan < 0 {
		return fmt.Errorf("%w: overscan %d is negative", ErrInvalidConfiguration, overscan)
	}
	v.count = count
	v.viewport = viewportSize
	v.estimator = estimator
	v.overscan = overscan
	v.scrollOffset = 0
	v.measured = make(map[int]float64)
	v.prefix = make([]float64, count+1)
	v.dirtyFrom = 0
	v.logger.Debug("virtualizer configured",
		zap.Int("count", count),
		zap.Float64("viewport", viewportSize),
		zap.Int("overscan", overscan))
	return nil
}

// SetCount updates the item count without touching viewport geometry, for
// example after the row pipeline's filtered count changes. Measurements for
// indices that survive are kept; measurements past the new count are dropped.
func (v *Virtualizer) SetCount(count int) error {
	if count < 0 {
		return fmt.Errorf("%w: count %d is negative", ErrInvalidConfiguration, count)
	}
	if v.estimator == nil {
		return fmt.Errorf("%w: Configure must be called before SetCount", ErrInvalidConfiguration)
	}
	if count == v.count {
		return nil
	}
	for index := range v.measured {
		if index >= count {
			delete(v.measured, index)
		}
	}
	newPrefix := make([]float64, count+1)
	copy(newPrefix, v.prefix)
	v.prefix = newPrefix
	// Offsets settled up to the shorter of the two counts stay valid.
	if boundary := min(count, v.count); v.dirtyFrom > boundary {
		v.dirtyFrom = boundary
	}
	v.count = count
	return nil
}

// Count returns the configured item count.
func (v *Virtualizer) Count() int {
	return v.count
}

// SetScrollOffset records the current scroll position. It is a pure state
// update; window recomputation happens on the next read, so rapid successive
// calls cost nothing beyond the final one (last write wins).
func (v *Virtualizer) SetScrollOffset(offset float64) {
	v.scrollOffset = offset
}

// ScrollOffset returns the last recorded scroll position, unclamped.
func (v *Virtualizer) ScrollOffset() float64 {
	return v.scrollOffset
}

// Measure records an authoritative size for one rendered item, replacing the
// estimate. Only the offset prefix from index onward is invalidated; settled
// offsets before it stay valid. A negative size or out-of-range index fails
// with ErrInvalidConfiguration.
func (v *Virtualizer) Measure(index int, size float64) error {
	if index < 0 || index >= v.count {
		return fmt.Errorf("%w: measure index %d out of range [0,%d)", ErrInvalidConfiguration, index, v.count)
	}
	if size < 0 {
		return fmt.Errorf("%w: measured size %v is negative", ErrInvalidConfiguration, size)
	}
	if prev, ok := v.measured[index]; ok && prev == size {
		return nil
	}
	v.measured[index] = size
	if index < v.dirtyFrom {
		v.dirtyFrom = index
	}
	return nil
}

// MeasuredSize returns the recorded size for an index, if any.
func (v *Virtualizer) MeasuredSize(index int) (float64, bool) {
	size, ok := v.measured[index]
	return size, ok
}

// TotalSize returns the sum of all item sizes, measured where known and
// estimated otherwise. Callers use it as the scrollable container's logical
// extent so scrollbar proportions stay correct.
func (v *Virtualizer) TotalSize() float64 {
	if v.count == 0 {
		return 0
	}
	v.settlePrefix(v.count)
	return v.prefix[v.count]
}

// Items returns the materialized window for the current scroll offset: every
// index whose extent intersects [offset, offset+viewport], expanded by
// overscan on both ends and clamped to [0, count-1]. The result is always a
// contiguous range, and empty iff count is zero.
func (v *Virtualizer) Items() []Item {
	first, last := v.Range()
	if last < first {
		return nil
	}
	items := make([]Item, 0, last-first+1)
	for i := first; i <= last; i++ {
		items = append(items, Item{
			Index: i,
			Start: v.prefix[i],
			Size:  v.itemSize(i),
		})
	}
	return items
}

// Range returns the first and last index of the current window including
// overscan, without materializing items. When count is zero it returns
// (0, -1).
func (v *Virtualizer) Range() (first, last int) {
	if v.count == 0 {
		return 0, -1
	}
	v.settlePrefix(v.count)

	total := v.prefix[v.count]
	offset := clamp(v.scrollOffset, 0, max(0, total-v.viewport))

	// First index whose extent ends after the clamped offset.
	first = sort.Search(v.count, func(i int) bool {
		return v.prefix[i+1] > offset
	})
	// Last index starting strictly above the viewport's bottom edge; an item
	// whose start coincides with the bottom edge is not visible.
	last = sort.Search(v.count, func(i int) bool {
		return v.prefix[i] >= offset+v.viewport
	}) - 1

	first -= v.overscan
	last += v.overscan
	if first < 0 {
		first = 0
	}
	if first > v.count-1 {
		first = v.count - 1
	}
	if last > v.count-1 {
		last = v.count - 1
	}
	if last < first {
		last = first
	}
	return first, last
}

// ScrollToIndex computes the scroll offset that brings index into view with
// the requested alignment and returns it for the caller to apply. The
// virtualizer itself never moves a viewport.
func (v *Virtualizer) ScrollToIndex(index int, align Align) (float64, error) {
	if index < 0 || index >= v.count {
		return 0, fmt.Errorf("%w: scroll target %d out of range [0,%d)", ErrInvalidConfiguration, index, v.count)
	}
	v.settlePrefix(v.count)

	start := v.prefix[index]
	size := v.itemSize(index)

	var target float64
	switch align {
	case AlignCenter:
		target = start + size/2 - v.viewport/2
	case AlignEnd:
		target = start + size - v.viewport
	default:
		target = start
	}

	total := v.prefix[v.count]
	return clamp(target, 0, max(0, total-v.viewport)), nil
}

// itemSize returns the measured size for an index, falling back to the
// estimator.
func (v *Virtualizer) itemSize(index int) float64 {
	if size, ok := v.measured[index]; ok {
		return size
	}
	return v.estimator(index)
}

// settlePrefix extends the cumulative-offset prefix so that entries up to and
// including upTo are valid. Work is proportional to the dirty suffix only;
// offsets before the first changed index are never recomputed.
func (v *Virtualizer) settlePrefix(upTo int) {
	if upTo > v.count {
		upTo = v.count
	}
	for i := v.dirtyFrom; i < upTo; i++ {
		v.prefix[i+1] = v.prefix[i] + v.itemSize(i)
	}
	if upTo > v.dirtyFrom {
		v.dirtyFrom = upTo
	}
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
