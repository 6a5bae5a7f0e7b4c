package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/johan-st/sqlpane/internal/database"
	"github.com/johan-st/sqlpane/internal/export"
)

func newQueryCommand(env EnvFunc) *cobra.Command {
	var (
		format string
		raw    bool
	)
	cmd := &cobra.Command{
		Use:   "query <connection> <sql>",
		Short: "Run SQL and print the result",
		Long: "Run SQL and print the result of the last statement.\n\n" +
			"Statements are split on semicolons unless --raw is given.",
		Example: `  sqlpane query main "SELECT * FROM users LIMIT 10"
  sqlpane query ./app.db "SELECT count(*) FROM orders" --format json`,
		Args: cobra.ExactArgs(2),
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

			query := args[1]
			var grid *database.Grid
			if raw {
				grid, err = e.Manager.ExecuteRaw(cmd.Context(), name, e.User, query)
			} else {
				grid, err = e.Manager.Execute(cmd.Context(), name, e.User, query)
			}
			e.record(cmd.Context(), name, query, grid, err)
			if err != nil {
				return err
			}
			return printGrid(cmd.OutOrStdout(), f, grid)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table, csv, tsv or json")
	cmd.Flags().BoolVar(&raw, "raw", false, "send the text as a single statement")
	return cmd
}

// printGrid writes a result. Statements without rows print the affected
// row count.
func printGrid(w io.Writer, f export.Format, grid *database.Grid) error {
	if !grid.IsSelect {
		if f == export.JSON {
			return export.WriteJSON(w, map[string]int64{"rows_affected": grid.RowsAffected})
		}
		_, err := fmt.Fprintf(w, "%s rows affected\n", humanize.Comma(grid.RowsAffected))
		return err
	}
	return export.Write(w, f, grid.HeaderNames(), grid.FormatRows())
}

// joinNonEmpty joins the non-empty parts with sep.
func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
