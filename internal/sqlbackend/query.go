package sqlbackend

import (
	"context"
	"fmt"
	"log/slog"
)

// Row is one result row, exposing columns by their SELECT alias so callers
// never need to know pgx's field-description machinery.
type Row struct {
	values map[string]string
}

// Get returns the value of the named column and whether it was present
// (non-empty is a separate question the caller decides).
func (r Row) Get(col string) (string, bool) {
	v, ok := r.values[col]
	return v, ok
}

// Query runs selectClause+fromClause+whereClause+limitClause against the
// backend's table, binding args positionally, and returns the matched rows
// shaped by column alias.
func (b *Backend) Query(ctx context.Context, selectClause, whereClause string, limit int, args []string) ([]Row, error) {
	query := selectClause + "FROM " + b.table + " " + whereClause
	if limit > 0 {
		query += fmt.Sprintf("LIMIT %d", limit)
	}

	bound := make([]any, len(args))
	for i, a := range args {
		bound[i] = a
	}

	if b.debug {
		slog.Debug("executing query", "sql", query, "bindings", args)
	}

	rows, err := b.pool.Query(ctx, query, bound...)
	if err != nil {
		return nil, fmt.Errorf("sqlbackend: query: %w", err)
	}
	defer rows.Close()

	var result []Row
	fields := rows.FieldDescriptions()
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("sqlbackend: scan row: %w", err)
		}
		row := Row{values: make(map[string]string, len(vals))}
		for i, v := range vals {
			row.values[string(fields[i].Name)] = stringify(v)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlbackend: rows: %w", err)
	}
	return result, nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case [16]byte: // pgx uuid-ish fixed arrays
		return fmt.Sprintf("%x", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
