// Package sqlite provides a record source backed by a SQLite database. It is
// an external collaborator of the row-model pipeline: it materializes query
// results as in-memory records which the caller hands to the pipeline via
// SetRecords. The pipeline itself never touches storage.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/akbargherbal/gridcore/utils"
	"go.uber.org/zap"
)

// RowMapper converts one scanned row, keyed by column name, into a caller
// record.
type RowMapper[T any] func(row map[string]any) (T, error)

// StructMapper returns a RowMapper that decodes rows into T by JSON field
// tags.
func StructMapper[T any]() RowMapper[T] {
	return func(row map[string]any) (T, error) {
		return utils.MapToStruct[T](row)
	}
}

// Source loads records for a pipeline from a SQLite query.
type Source[T any] struct {
	db     *sql.DB
	query  string
	args   []any
	mapper RowMapper[T]
	logger *zap.Logger
}

// NewSource creates a record source over an open database handle. A nil
// logger is replaced with a no-op logger.
func NewSource[T any](db *sql.DB, query string, mapper RowMapper[T], logger *zap.Logger, args ...any) (*Source[T], error) {
	if db == nil {
		return nil, fmt.Errorf("sqlite source requires a database handle")
	}
	if query == "" {
		return nil, fmt.Errorf("sqlite source requires a query")
	}
	if mapper == nil {
		return nil, fmt.Errorf("sqlite source requires a row mapper")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source[T]{
		db:     db,
		query:  query,
		args:   args,
		mapper: mapper,
		logger: logger,
	}, nil
}

// Load runs the query and returns all rows mapped to records, in result-set
// order. The returned slice is the ordered raw dataset the pipeline expects.
func (s *Source[T]) Load(ctx context.Context) ([]T, error) {
	rows, err := s.db.QueryContext(ctx, s.query, s.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute source query: %w", err)
	}
	defer rows.Close()

	raw, err := readRows(rows)
	if err != nil {
		return nil, err
	}

	records := make([]T, 0, len(raw))
	for i, row := range raw {
		record, err := s.mapper(row)
		if err != nil {
			return nil, fmt.Errorf("failed to map row %d: %w", i, err)
		}
		records = append(records, record)
	}
	s.logger.Debug("records loaded", zap.Int("count", len(records)))
	return records, nil
}

// readRows drains a *sql.Rows into column-keyed maps. Byte slices are
// converted to strings since SQLite reports TEXT columns as []byte.
func readRows(rows *sql.Rows) ([]map[string]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	var results []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		scanArgs := make([]any, len(columns))
		for i := range values {
			scanArgs[i] = &values[i]
		}
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(map[string]any, len(columns))
		for i, name := range columns {
			if b, ok := values[i].([]byte); ok {
				row[name] = string(b)
			} else {
				row[name] = values[i]
			}
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed while iterating rows: %w", err)
	}
	return results, nil
}
