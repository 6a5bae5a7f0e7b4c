package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
)

// SchemaNode is a schema with its tables, as shown in the menu.
type SchemaNode struct {
	Name   string
	Tables []TableNode
}

// TableNode is a table or view.
type TableNode struct {
	Name   string
	IsView bool
}

// PreviewKind selects which query a menu preview runs.
type PreviewKind int

const (
	PreviewRows PreviewKind = iota
	PreviewColumns
	PreviewConstraints
	PreviewIndexes
)

func (k PreviewKind) String() string {
	switch k {
	case PreviewColumns:
		return "columns"
	case PreviewConstraints:
		return "constraints"
	case PreviewIndexes:
		return "indexes"
	default:
		return "rows"
	}
}

// PreviewLimit is the row limit of a rows preview.
const PreviewLimit = 100

// LoadSchemas lists schemas and their tables. SQLite has a single "main"
// schema.
func LoadSchemas(ctx context.Context, conn *Connection) ([]SchemaNode, error) {
	var query string
	switch conn.Dialect {
	case SQLite:
		query = `
			SELECT 'main', name, type = 'view' FROM sqlite_master
			WHERE type IN ('table', 'view')
			AND name NOT LIKE 'sqlite_%'
			ORDER BY name`
	case Postgres:
		query = `
			SELECT table_schema, table_name, table_type = 'VIEW'
			FROM information_schema.tables
			WHERE table_schema NOT IN ('pg_catalog', 'information_schema')
			ORDER BY table_schema, table_name`
	case MySQL:
		query = `
			SELECT table_schema, table_name, table_type = 'VIEW'
			FROM information_schema.tables
			WHERE table_schema NOT IN ('mysql', 'information_schema', 'performance_schema', 'sys')
			ORDER BY table_schema, table_name`
	}

	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	bySchema := make(map[string]*SchemaNode)
	var order []string
	for rows.Next() {
		var schema, name string
		var isView bool
		if err := rows.Scan(&schema, &name, &isView); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		node, ok := bySchema[schema]
		if !ok {
			node = &SchemaNode{Name: schema}
			bySchema[schema] = node
			order = append(order, schema)
		}
		node.Tables = append(node.Tables, TableNode{Name: name, IsView: isView})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Strings(order)
	out := make([]SchemaNode, 0, len(order))
	for _, s := range order {
		out = append(out, *bySchema[s])
	}
	return out, nil
}

// PreviewQuery returns the query a menu preview runs for a table.
func PreviewQuery(d Dialect, kind PreviewKind, schema, table string) string {
	q := func(s string) string { return QuoteIdentifier(d, s) }

	qualified := q(table)
	if d != SQLite && schema != "" {
		qualified = q(schema) + "." + q(table)
	}

	switch kind {
	case PreviewColumns:
		if d == SQLite {
			return fmt.Sprintf("PRAGMA table_info(%s)", q(table))
		}
		return fmt.Sprintf(
			"SELECT column_name, data_type, is_nullable, column_default\n"+
				"FROM information_schema.columns\n"+
				"WHERE table_schema = %s AND table_name = %s\n"+
				"ORDER BY ordinal_position", quoteLiteral(schema), quoteLiteral(table))
	case PreviewConstraints:
		if d == SQLite {
			return fmt.Sprintf("PRAGMA foreign_key_list(%s)", q(table))
		}
		return fmt.Sprintf(
			"SELECT constraint_name, constraint_type\n"+
				"FROM information_schema.table_constraints\n"+
				"WHERE table_schema = %s AND table_name = %s\n"+
				"ORDER BY constraint_name", quoteLiteral(schema), quoteLiteral(table))
	case PreviewIndexes:
		switch d {
		case SQLite:
			return fmt.Sprintf("PRAGMA index_list(%s)", q(table))
		case Postgres:
			return fmt.Sprintf(
				"SELECT indexname, indexdef FROM pg_indexes\n"+
					"WHERE schemaname = %s AND tablename = %s\n"+
					"ORDER BY indexname", quoteLiteral(schema), quoteLiteral(table))
		default:
			return fmt.Sprintf("SHOW INDEX FROM %s", qualified)
		}
	default:
		return fmt.Sprintf("SELECT * FROM %s LIMIT %d", qualified, PreviewLimit)
	}
}

func quoteLiteral(s string) string {
	out := []byte{'\''}
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			out = append(out, '\'')
		}
		out = append(out, s[i])
	}
	return string(append(out, '\''))
}

// ColumnInfo contains information about a table column.
type ColumnInfo struct {
	CID          int
	Name         string
	Type         string
	NotNull      bool
	DefaultValue sql.NullString
	PrimaryKey   int // 0 if not PK, otherwise position in composite PK
}

// IndexInfo contains information about an index.
type IndexInfo struct {
	Name    string
	Unique  bool
	Columns []string
}

// Schema introspects a SQLite database in detail.
type Schema struct {
	conn *Connection
}

// NewSchema creates a new Schema introspector.
func NewSchema(conn *Connection) *Schema {
	return &Schema{conn: conn}
}

// GetColumns returns column information for a table.
func (s *Schema) GetColumns(ctx context.Context, tableName string) ([]ColumnInfo, error) {
	rows, err := s.conn.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoteIdentifier(tableName)))
	if err != nil {
		return nil, fmt.Errorf("failed to get column info: %w", err)
	}
	defer rows.Close()

	var columns []ColumnInfo
	for rows.Next() {
		var col ColumnInfo
		if err := rows.Scan(&col.CID, &col.Name, &col.Type, &col.NotNull, &col.DefaultValue, &col.PrimaryKey); err != nil {
			return nil, fmt.Errorf("failed to scan column info: %w", err)
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %q not found", tableName)
	}
	return columns, nil
}

// GetIndexes returns index information for a table.
func (s *Schema) GetIndexes(ctx context.Context, tableName string) ([]IndexInfo, error) {
	rows, err := s.conn.QueryContext(ctx, fmt.Sprintf("PRAGMA index_list(%s)", quoteIdentifier(tableName)))
	if err != nil {
		return nil, fmt.Errorf("failed to get index list: %w", err)
	}

	// Collect index info first, then close rows before making nested queries
	// (SQLite with MaxOpenConns=1 will block if we try to query while iterating)
	var indexes []IndexInfo
	for rows.Next() {
		var seq, unique, partial int
		var name, origin string
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan index info: %w", err)
		}
		indexes = append(indexes, IndexInfo{Name: name, Unique: unique == 1})
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, err
	}

	for i := range indexes {
		colRows, err := s.conn.QueryContext(ctx, fmt.Sprintf("PRAGMA index_info(%s)", quoteIdentifier(indexes[i].Name)))
		if err != nil {
			return nil, fmt.Errorf("failed to get index columns: %w", err)
		}
		for colRows.Next() {
			var seqno, cid int
			var colName sql.NullString
			if err := colRows.Scan(&seqno, &cid, &colName); err != nil {
				colRows.Close()
				return nil, fmt.Errorf("failed to scan index column: %w", err)
			}
			indexes[i].Columns = append(indexes[i].Columns, colName.String)
		}
		colRows.Close()
	}
	return indexes, nil
}

// GetRowCount returns the number of rows in a table.
func (s *Schema) GetRowCount(ctx context.Context, tableName string) (int64, error) {
	var count int64
	err := s.conn.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdentifier(tableName))).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return count, nil
}
