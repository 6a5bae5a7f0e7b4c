package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrEmptyQuery is returned for input with no statements.
	ErrEmptyQuery = errors.New("empty query")
	// ErrWriteDenied is returned when a write statement is sent on a
	// read-only connection.
	ErrWriteDenied = errors.New("write statements are not allowed on this connection")
)

// Header describes one result column.
type Header struct {
	Name string
	Type string // declared database type, may be empty
}

// Grid is a query result: ordered rows of typed cells with a header per
// column.
type Grid struct {
	Headers      []Header
	Rows         [][]any
	RowsAffected int64
	IsSelect     bool
	Duration     time.Duration
}

// Execute runs every statement in query in order and returns the result of
// the last one. The first failing statement stops execution.
func Execute(ctx context.Context, conn *Connection, query string) (*Grid, error) {
	stmts := SplitStatements(query)
	if len(stmts) == 0 {
		return nil, ErrEmptyQuery
	}

	if conn.ReadOnly && !IsReadOnly(query) {
		return nil, ErrWriteDenied
	}

	start := time.Now()
	var grid *Grid
	for _, s := range stmts {
		var err error
		if ReturnsRows(s) {
			grid, err = executeSelect(ctx, conn, s)
		} else {
			grid, err = executeExec(ctx, conn, s)
		}
		if err != nil {
			return nil, err
		}
	}
	grid.Duration = time.Since(start)
	return grid, nil
}

// ExecuteRaw runs query as one statement. The driver sees the text exactly
// as given, which allows statements the splitter does not understand.
func ExecuteRaw(ctx context.Context, conn *Connection, query string) (*Grid, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if conn.ReadOnly && !IsReadOnly(query) {
		return nil, ErrWriteDenied
	}

	start := time.Now()
	run := executeExec
	if ReturnsRows(query) {
		run = executeSelect
	}
	grid, err := run(ctx, conn, query)
	if err != nil {
		return nil, err
	}
	grid.Duration = time.Since(start)
	return grid, nil
}

// executeSelect runs a query that returns rows.
func executeSelect(ctx context.Context, conn *Connection, query string) (*Grid, error) {
	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	grid := &Grid{
		Headers:  make([]Header, len(types)),
		Rows:     make([][]any, 0),
		IsSelect: true,
	}
	for i, ct := range types {
		grid.Headers[i] = Header{Name: ct.Name(), Type: strings.ToLower(ct.DatabaseTypeName())}
	}

	for rows.Next() {
		values := make([]any, len(types))
		valuePtrs := make([]any, len(types))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		// Convert []byte to string for readability
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		grid.Rows = append(grid.Rows, values)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return grid, nil
}

// executeExec runs a statement that modifies data or schema.
func executeExec(ctx context.Context, conn *Connection, query string) (*Grid, error) {
	res, err := conn.ExecContext(ctx, query)
	if err != nil {
		return nil, err
	}

	grid := &Grid{}
	grid.RowsAffected, _ = res.RowsAffected()
	return grid, nil
}

// ReturnsRows reports whether a statement produces a result set.
func ReturnsRows(stmt string) bool {
	switch firstKeyword(stmt) {
	case "SELECT", "PRAGMA", "EXPLAIN", "WITH", "VALUES", "SHOW", "DESCRIBE", "DESC", "TABLE":
		return true
	}
	// INSERT ... RETURNING and friends
	return containsKeyword(stmt, "RETURNING")
}

// FormatValue formats a cell value for display.
func FormatValue(v any) string {
	if v == nil {
		return "NULL"
	}
	switch val := v.(type) {
	case []byte:
		return string(val)
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	case bool:
		if val {
			return "true"
		}
		return "false"
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format(time.DateOnly)
		}
		return val.Format(time.RFC3339)
	case sql.NullString:
		if val.Valid {
			return val.String
		}
		return "NULL"
	case sql.NullInt64:
		if val.Valid {
			return strconv.FormatInt(val.Int64, 10)
		}
		return "NULL"
	case sql.NullFloat64:
		if val.Valid {
			return strconv.FormatFloat(val.Float64, 'g', -1, 64)
		}
		return "NULL"
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

// FormatRows formats every cell of a grid.
func (g *Grid) FormatRows() [][]string {
	out := make([][]string, len(g.Rows))
	for i, row := range g.Rows {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = FormatValue(v)
		}
		out[i] = cells
	}
	return out
}

// HeaderNames returns the column names.
func (g *Grid) HeaderNames() []string {
	names := make([]string, len(g.Headers))
	for i, h := range g.Headers {
		names[i] = h.Name
	}
	return names
}

// quoteIdentifier safely quotes a SQL identifier.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteIdentifier quotes name for the dialect.
func QuoteIdentifier(d Dialect, name string) string {
	if d == MySQL {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
	return quoteIdentifier(name)
}
