package store

import (
	"context"
	"fmt"
)

// StatementResult holds the raw output of ExecuteStatement.
type StatementResult struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// ExecuteStatement runs text as-is and returns whatever rows it yields.
// Statements without a result set return no columns and no rows.
//
// This is a diagnostic escape hatch: nothing is validated and engine errors
// are returned unchanged.
func (s *Store) ExecuteStatement(ctx context.Context, text string) (*StatementResult, error) {
	rows, err := s.query(ctx, s.db, text)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	result := &StatementResult{Columns: cols, Rows: [][]any{}}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
