package store

import (
	"context"
	"database/sql"
	"fmt"
	"iter"

	"github.com/roach88/sqlitejson/internal/codec"
)

// Result is the outcome of an ad-hoc query.
type Result struct {
	Columns []string
	Rows    [][]any
}

// Table returns the rows, preceded by a header row of column names when
// includeHeader is set. Rows are never nil.
func (r *Result) Table(includeHeader bool) [][]any {
	out := make([][]any, 0, len(r.Rows)+1)
	if includeHeader {
		header := make([]any, len(r.Columns))
		for i, c := range r.Columns {
			header[i] = c
		}
		out = append(out, header)
	}
	return append(out, r.Rows...)
}

// Query runs sqlText against the database and returns every row. The text
// is passed to SQLite unchanged; engine errors are returned as they are.
//
// Column values keep their SQLite storage class: int64, float64, string,
// nil, or []byte for BLOBs.
func (s *Store) Query(ctx context.Context, sqlText string) (*Result, error) {
	if s.closed {
		return nil, ErrClosed
	}

	rows, err := s.conn.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &Result{Columns: columns, Rows: [][]any{}}
	for rows.Next() {
		row := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range row {
			ptrs[i] = &row[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		result.Rows = append(result.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// QueryTable is Query flattened to rows, header first when includeHeader
// is set.
func (s *Store) QueryTable(ctx context.Context, sqlText string, includeHeader bool) ([][]any, error) {
	result, err := s.Query(ctx, sqlText)
	if err != nil {
		return nil, err
	}
	return result.Table(includeHeader), nil
}

// IterateAll yields the stored body of every document in id order. Each
// range over the returned sequence runs a new scan. Breaking out of the loop
// releases the scan.
//
// The first error ends the sequence. Bodies stored as NULL are yielded as
// "null".
func (s *Store) IterateAll(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if s.closed {
			yield("", ErrClosed)
			return
		}

		query := fmt.Sprintf("SELECT %s FROM %s ORDER BY id", s.column, s.table)
		rows, err := s.conn.QueryContext(ctx, query)
		if err != nil {
			yield("", fmt.Errorf("iterate documents: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var body sql.NullString
			if err := rows.Scan(&body); err != nil {
				yield("", fmt.Errorf("scan document: %w", err))
				return
			}
			text := "null"
			if body.Valid {
				text = body.String
			}
			if !yield(text, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield("", fmt.Errorf("iterate documents: %w", err))
		}
	}
}

// IterateDocuments is IterateAll with every body decoded from JSON. A body
// that is not valid JSON yields a *codec.DecodingError and ends the
// sequence.
func (s *Store) IterateDocuments(ctx context.Context) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		for text, err := range s.IterateAll(ctx) {
			if err != nil {
				yield(nil, err)
				return
			}
			doc, err := codec.Decode(text)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(doc, nil) {
				return
			}
		}
	}
}

// Count returns the highest id in the table, 0 when it is empty. Ids are
// never reused, so after deletions this overstates the number of rows. Use
// ExactCount for the row count.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.scalarInt(ctx, fmt.Sprintf("SELECT max(id) FROM %s", s.table), "count")
}

// ExactCount returns the number of rows in the table.
func (s *Store) ExactCount(ctx context.Context) (int64, error) {
	return s.scalarInt(ctx, fmt.Sprintf("SELECT count(*) FROM %s", s.table), "exact count")
}

func (s *Store) scalarInt(ctx context.Context, query, op string) (int64, error) {
	if s.closed {
		return 0, ErrClosed
	}
	var n sql.NullInt64
	if err := s.conn.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n.Int64, nil
}
