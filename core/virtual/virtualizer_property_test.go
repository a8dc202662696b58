//go:build property
// +build property

package virtual

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestVirtualizerProperties tests invariant properties of the windowing engine
func TestVirtualizerProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	// Property 1: total size equals the sum of per-item sizes, with
	// measurements overriding estimates
	properties.Property("total size is the sum of item sizes", prop.ForAll(
		func(count int, estimate float64, measured []float64) bool {
			v := New(nil)
			if err := v.Configure(count, 400, ConstEstimator(estimate), 2); err != nil {
				return false
			}
			for i, size := range measured {
				if i >= count {
					break
				}
				if err := v.Measure(i, size); err != nil {
					return false
				}
			}

			expected := 0.0
			for i := 0; i < count; i++ {
				if size, ok := v.MeasuredSize(i); ok {
					expected += size
				} else {
					expected += estimate
				}
			}
			return math.Abs(v.TotalSize()-expected) < 1e-6
		},
		gen.IntRange(0, 200),
		gen.Float64Range(1, 100),
		gen.SliceOf(gen.Float64Range(0, 150)),
	))

	// Property 2: the window is a contiguous range covering the viewport
	properties.Property("window is contiguous and covers the viewport", prop.ForAll(
		func(count int, offset float64, viewport float64, overscan int) bool {
			v := New(nil)
			if err := v.Configure(count, viewport, ConstEstimator(25), overscan); err != nil {
				return false
			}
			v.SetScrollOffset(offset)

			items := v.Items()
			if count == 0 {
				return len(items) == 0
			}
			if len(items) == 0 {
				return false
			}

			for i := 1; i < len(items); i++ {
				if items[i].Index != items[i-1].Index+1 {
					return false
				}
			}

			total := v.TotalSize()
			top := offset
			if top > total-viewport {
				top = total - viewport
			}
			if top < 0 {
				top = 0
			}
			bottom := top + viewport

			first := items[0]
			last := items[len(items)-1]
			if first.Index < 0 || last.Index > count-1 {
				return false
			}
			if first.Start > top {
				return false
			}
			if bottom <= total && last.Start+last.Size < bottom {
				return false
			}
			return true
		},
		gen.IntRange(0, 500),
		gen.Float64Range(-1000, 100000),
		gen.Float64Range(1, 2000),
		gen.IntRange(0, 10),
	))

	// Property 3: item starts are consistent cumulative offsets
	properties.Property("item starts accumulate item sizes", prop.ForAll(
		func(count int, offset float64) bool {
			v := New(nil)
			if err := v.Configure(count, 300, ConstEstimator(40), 3); err != nil {
				return false
			}
			v.SetScrollOffset(offset)

			items := v.Items()
			for i := 1; i < len(items); i++ {
				if math.Abs(items[i].Start-(items[i-1].Start+items[i-1].Size)) > 1e-6 {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 300),
		gen.Float64Range(0, 20000),
	))

	// Property 4: ScrollToIndex returns an offset whose window includes the
	// target index
	properties.Property("scroll-to-index lands on the target", prop.ForAll(
		func(count int, target int, alignPick int) bool {
			if target >= count {
				target = count - 1
			}
			v := New(nil)
			if err := v.Configure(count, 300, ConstEstimator(40), 0); err != nil {
				return false
			}
			align := []Align{AlignStart, AlignCenter, AlignEnd}[alignPick%3]
			offset, err := v.ScrollToIndex(target, align)
			if err != nil {
				return false
			}
			v.SetScrollOffset(offset)
			first, last := v.Range()
			return target >= first && target <= last
		},
		gen.IntRange(1, 400),
		gen.IntRange(0, 399),
		gen.IntRange(0, 2),
	))

	properties.TestingRun(t)
}
