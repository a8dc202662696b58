package pipeline

import (
	"testing"
	"time"

	"github.com/akbargherbal/gridcore/core/column"
	"github.com/stretchr/testify/assert"
)

func TestPipeline_SortStability(t *testing.T) {
	// Two records share price 10; ascending sort must keep their original
	// relative order (index 1 before index 3).
	p := New(productColumns(), nil)
	p.SetRecords([]product{
		{ID: "r0", Price: 30},
		{ID: "r1", Price: 10},
		{ID: "r2", Price: 20},
		{ID: "r3", Price: 10},
		{ID: "r4", Price: 5},
	})

	assert.NoError(t, p.SetSort(Asc("price")))
	rows := p.SortedRows()

	prices := make([]float64, len(rows))
	ids := make([]string, len(rows))
	for i, r := range rows {
		prices[i] = r.Price
		ids[i] = r.ID
	}
	assert.Equal(t, []float64{5, 10, 10, 20, 30}, prices)
	assert.Equal(t, []string{"r4", "r1", "r3", "r2", "r0"}, ids)
}

func TestPipeline_SortIdempotence(t *testing.T) {
	p := New(productColumns(), nil)
	p.SetRecords(makeProducts(100))
	assert.NoError(t, p.SetSort(Asc("price")))

	first := p.SortedRows()

	// Re-sorting an already-sorted list with the same keys is a no-op.
	p.SetRecords(first)
	assert.NoError(t, p.SetSort(Asc("price")))
	assert.Equal(t, first, p.SortedRows())
}

func TestPipeline_SortDescending(t *testing.T) {
	p := New(productColumns(), nil)
	p.SetRecords([]product{
		{ID: "a", Price: 1},
		{ID: "b", Price: 3},
		{ID: "c", Price: 2},
	})

	assert.NoError(t, p.SetSort(Desc("price")))
	rows := p.SortedRows()
	assert.Equal(t, "b", rows[0].ID)
	assert.Equal(t, "c", rows[1].ID)
	assert.Equal(t, "a", rows[2].ID)
}

func TestPipeline_MultiDescriptorSort(t *testing.T) {
	p := New(productColumns(), nil)
	p.SetRecords([]product{
		{ID: "a", Name: "Gadget", Price: 10},
		{ID: "b", Name: "Widget", Price: 10},
		{ID: "c", Name: "Widget", Price: 5},
		{ID: "d", Name: "Gadget", Price: 5},
	})

	// Primary descriptor orders by price, the secondary breaks ties by name.
	assert.NoError(t, p.SetSort(Asc("price"), Asc("name")))
	rows := p.SortedRows()
	ids := []string{rows[0].ID, rows[1].ID, rows[2].ID, rows[3].ID}
	assert.Equal(t, []string{"d", "c", "a", "b"}, ids)
}

func TestPipeline_SortUnknownColumn(t *testing.T) {
	p := New(productColumns(), nil)
	p.SetRecords(makeProducts(5))
	assert.NoError(t, p.SetSort(Asc("price")))

	err := p.SetSort(Asc("price"), Asc("missing"))
	assert.ErrorIs(t, err, ErrUnknownColumn)

	// The rejected change left the previous sort in place.
	assert.Equal(t, []SortDescriptor{Asc("price")}, p.SortState())
}

func TestPipeline_SortDateColumn(t *testing.T) {
	type event struct {
		ID string
		At time.Time
	}
	set := column.NewSet[event]()
	set.MustRegister(column.Column[event]{
		ID:     "at",
		Type:   column.TypeDate,
		Access: func(e event) any { return e.At },
	})

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	p := New(set, nil)
	p.SetRecords([]event{
		{ID: "later", At: base.Add(48 * time.Hour)},
		{ID: "earliest", At: base},
		{ID: "middle", At: base.Add(24 * time.Hour)},
	})

	assert.NoError(t, p.SetSort(Asc("at")))
	rows := p.SortedRows()
	assert.Equal(t, "earliest", rows[0].ID)
	assert.Equal(t, "middle", rows[1].ID)
	assert.Equal(t, "later", rows[2].ID)
}

func TestPipeline_CustomComparator(t *testing.T) {
	// Columns can override the typed comparator, e.g. ordering a text status
	// by severity rather than lexicographically.
	type ticket struct {
		ID     string
		Status string
	}
	rank := map[string]int{"low": 0, "medium": 1, "high": 2}
	set := column.NewSet[ticket]()
	set.MustRegister(column.Column[ticket]{
		ID:     "status",
		Type:   column.TypeText,
		Access: func(tk ticket) any { return tk.Status },
		Compare: func(a, b any) int {
			return rank[a.(string)] - rank[b.(string)]
		},
	})

	p := New(set, nil)
	p.SetRecords([]ticket{
		{ID: "a", Status: "high"},
		{ID: "b", Status: "low"},
		{ID: "c", Status: "medium"},
	})
	assert.NoError(t, p.SetSort(Asc("status")))
	rows := p.SortedRows()
	assert.Equal(t, "b", rows[0].ID)
	assert.Equal(t, "c", rows[1].ID)
	assert.Equal(t, "a", rows[2].ID)
}
