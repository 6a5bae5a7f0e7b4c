package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/johan-st/sqlpane/internal/database"
	"github.com/johan-st/sqlpane/internal/export"
)

func newTablesCommand(env EnvFunc) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "tables <connection>",
		Short: "List schemas, tables and views",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			e, err := env()
			if err != nil {
				return err
			}
			name, err := e.connection(args[0])
			if err != nil {
				return err
			}
			conn, err := e.Manager.OpenConnection(cmd.Context(), name, e.User)
			if err != nil {
				return err
			}
			schemas, err := database.LoadSchemas(cmd.Context(), conn)
			if err != nil {
				return err
			}

			var rows [][]string
			for _, s := range schemas {
				for _, t := range s.Tables {
					kind := "table"
					if t.IsView {
						kind = "view"
					}
					rows = append(rows, []string{s.Name, t.Name, kind})
				}
			}
			return export.Write(cmd.OutOrStdout(), f, []string{"schema", "name", "type"}, rows)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table, csv, tsv or json")
	return cmd
}

func newDescribeCommand(env EnvFunc) *cobra.Command {
	var schema string
	cmd := &cobra.Command{
		Use:   "describe <connection> <table>",
		Short: "Show the columns and indexes of a table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := env()
			if err != nil {
				return err
			}
			name, err := e.connection(args[0])
			if err != nil {
				return err
			}
			conn, err := e.Manager.OpenConnection(cmd.Context(), name, e.User)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if conn.Dialect == database.SQLite {
				return describeSQLite(cmd, w, conn, args[1])
			}

			if schema == "" {
				schema = defaultSchema(cmd.Context(), conn)
			}
			for _, kind := range []database.PreviewKind{database.PreviewColumns, database.PreviewIndexes} {
				q := database.PreviewQuery(conn.Dialect, kind, schema, args[1])
				grid, err := database.Execute(cmd.Context(), conn, q)
				if err != nil {
					return fmt.Errorf("%s: %w", kind, err)
				}
				fmt.Fprintln(w, kind)
				if err := printGrid(w, export.Table, grid); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&schema, "schema", "", "schema of the table (postgres and mysql)")
	return cmd
}

func describeSQLite(cmd *cobra.Command, w io.Writer, conn *database.Connection, table string) error {
	ctx := cmd.Context()
	s := database.NewSchema(conn)

	columns, err := s.GetColumns(ctx, table)
	if err != nil {
		return err
	}
	rows := make([][]string, len(columns))
	for i, c := range columns {
		pk := ""
		if c.PrimaryKey > 0 {
			pk = strconv.Itoa(c.PrimaryKey)
		}
		def := "NULL"
		if c.DefaultValue.Valid {
			def = c.DefaultValue.String
		}
		rows[i] = []string{c.Name, c.Type, strconv.FormatBool(!c.NotNull), def, pk}
	}
	fmt.Fprintln(w, "columns")
	if err := export.Write(w, export.Table, []string{"name", "type", "nullable", "default", "pk"}, rows); err != nil {
		return err
	}

	indexes, err := s.GetIndexes(ctx, table)
	if err != nil {
		return err
	}
	if len(indexes) > 0 {
		rows = rows[:0]
		for _, ix := range indexes {
			rows = append(rows, []string{ix.Name, strconv.FormatBool(ix.Unique), joinNonEmpty(", ", ix.Columns...)})
		}
		fmt.Fprintln(w, "indexes")
		if err := export.Write(w, export.Table, []string{"name", "unique", "columns"}, rows); err != nil {
			return err
		}
	}

	count, err := s.GetRowCount(ctx, table)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s rows\n", humanize.Comma(count))
	return err
}

// defaultSchema returns the schema a bare table name lives in.
func defaultSchema(ctx context.Context, conn *database.Connection) string {
	if conn.Dialect == database.Postgres {
		return "public"
	}
	var name string
	if err := conn.QueryRowContext(ctx, "SELECT DATABASE()").Scan(&name); err != nil {
		return ""
	}
	return name
}
