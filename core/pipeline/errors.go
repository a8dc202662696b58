package pipeline

import "errors"

// Sentinel errors returned by pipeline state changes. All failures are
// synchronous and caller-correctable; a rejected change leaves prior state
// completely unmodified.
var (
	// ErrUnknownColumn indicates a sort or filter referenced a column id with
	// no registered accessor.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrInvalidPageSize indicates a pagination change with a page size of
	// zero or less.
	ErrInvalidPageSize = errors.New("invalid page size")
)
