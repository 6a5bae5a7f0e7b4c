package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/johan-st/sqlpane/internal/export"
	"github.com/johan-st/sqlpane/internal/history"
)

func newConnectionsCommand(env EnvFunc) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:     "connections",
		Aliases: []string{"ls"},
		Short:   "List the connections you can use",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			e, err := env()
			if err != nil {
				return err
			}
			var rows [][]string
			for _, c := range e.Manager.ListConnections(e.User) {
				rows = append(rows, []string{c.Name, c.Dialect.String(), c.AccessLevel.String(), c.Description})
			}
			return export.Write(cmd.OutOrStdout(), f, []string{"name", "dialect", "access", "description"}, rows)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table, csv, tsv or json")
	return cmd
}

func newHistoryCommand(env EnvFunc) *cobra.Command {
	var (
		limit int
		wipe  bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show your recent queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := env()
			if err != nil {
				return err
			}
			if e.History == nil || e.Session == nil {
				return errors.New("history is not available")
			}
			w := cmd.OutOrStdout()

			if wipe {
				n, err := e.History.Clear(cmd.Context(), e.Session)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(w, "removed %s entries\n", humanize.Comma(n))
				return err
			}

			entries, err := e.History.Recent(cmd.Context(), e.Session, limit)
			if err != nil {
				return err
			}
			rows := make([][]string, len(entries))
			for i, en := range entries {
				rows[i] = historyRow(en)
			}
			return export.Write(w, export.Table, []string{"when", "connection", "rows", "query"}, rows)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries")
	cmd.Flags().BoolVar(&wipe, "clear", false, "remove all your entries")
	return cmd
}

func historyRow(e history.Entry) []string {
	rows := strconv.FormatInt(e.Rows, 10)
	if e.Failed() {
		rows = "error"
	}
	return []string{
		humanize.Time(e.CreatedAt),
		e.Connection,
		rows,
		strings.Join(strings.Fields(e.Query), " "),
	}
}

func newWhoamiCommand(env EnvFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show who you are connected as",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := env()
			if err != nil {
				return err
			}
			u := e.User
			kind := "user"
			switch {
			case u.IsAnonymous:
				kind = "anonymous"
			case u.IsAdmin:
				kind = "admin"
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), joinNonEmpty("  ", u.DisplayName(), kind, u.PublicKeyFP))
			return err
		},
	}
}
