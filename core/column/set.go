package column

import "fmt"

// Set is an ordered, registration-time collection of columns. The pipeline
// validates every column reference against a Set before applying sorts or
// filters, and evaluates global filters across the Set in registration order.
type Set[T any] struct {
	columns map[string]Column[T]
	order   []string
}

// NewSet creates an empty column set.
func NewSet[T any]() *Set[T] {
	return &Set[T]{
		columns: make(map[string]Column[T]),
	}
}

// Register adds a column to the set. It fails on an empty id, a nil accessor,
// or a duplicate id; registration order is preserved for iteration.
func (s *Set[T]) Register(col Column[T]) error {
	if col.ID == "" {
		return fmt.Errorf("column id cannot be empty")
	}
	if col.Access == nil {
		return fmt.Errorf("column %q has no accessor", col.ID)
	}
	if _, exists := s.columns[col.ID]; exists {
		return fmt.Errorf("column %q is already registered", col.ID)
	}
	if col.Type == "" {
		col.Type = TypeText
	}
	s.columns[col.ID] = col
	s.order = append(s.order, col.ID)
	return nil
}

// MustRegister registers a column and panics on error. Intended for static
// configuration at startup.
func (s *Set[T]) MustRegister(col Column[T]) *Set[T] {
	if err := s.Register(col); err != nil {
		panic(err)
	}
	return s
}

// Lookup returns the column with the given id.
func (s *Set[T]) Lookup(id string) (Column[T], bool) {
	col, ok := s.columns[id]
	return col, ok
}

// IDs returns the registered column ids in registration order.
func (s *Set[T]) IDs() []string {
	ids := make([]string, len(s.order))
	copy(ids, s.order)
	return ids
}

// Len returns the number of registered columns.
func (s *Set[T]) Len() int {
	return len(s.order)
}
