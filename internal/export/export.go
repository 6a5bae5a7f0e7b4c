// Package export writes query results as CSV, TSV, JSON or a text table.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
)

// Format is an output format.
type Format int

const (
	CSV Format = iota
	TSV
	JSON
	Table
)

func (f Format) String() string {
	switch f {
	case TSV:
		return "tsv"
	case JSON:
		return "json"
	case Table:
		return "table"
	default:
		return "csv"
	}
}

// Ext returns the file extension for the format.
func (f Format) Ext() string {
	if f == Table {
		return ".txt"
	}
	return "." + f.String()
}

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range []Format{CSV, TSV, JSON, Table} {
		if strings.EqualFold(s, f.String()) {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown format: %s (use table, csv, tsv or json)", s)
}

// Write writes headers and rows to w.
func Write(w io.Writer, f Format, headers []string, rows [][]string) error {
	switch f {
	case TSV:
		_, err := io.WriteString(w, TabSeparated(headers, rows))
		return err
	case JSON:
		objects := make([]map[string]string, 0, len(rows))
		for _, row := range rows {
			m := make(map[string]string, len(headers))
			for i, h := range headers {
				if i < len(row) {
					m[h] = row[i]
				}
			}
			objects = append(objects, m)
		}
		return WriteJSON(w, objects)
	case Table:
		_, err := fmt.Fprintln(w, RenderTable(headers, rows))
		return err
	default:
		cw := csv.NewWriter(w)
		if err := cw.Write(headers); err != nil {
			return err
		}
		if err := cw.WriteAll(rows); err != nil {
			return err
		}
		return cw.Error()
	}
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// TabSeparated joins headers and rows with tabs and newlines. Tabs and
// newlines inside values become spaces.
func TabSeparated(headers []string, rows [][]string) string {
	clean := strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ", "\r", " ")

	var b strings.Builder
	line := func(cells []string) {
		for i, c := range cells {
			if i > 0 {
				b.WriteByte('\t')
			}
			b.WriteString(clean.Replace(c))
		}
		b.WriteByte('\n')
	}

	line(headers)
	for _, row := range rows {
		line(row)
	}
	return b.String()
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// RenderTable draws headers and rows as a bordered text table.
func RenderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		String()
}

// Result describes a finished file export.
type Result struct {
	Path  string
	Rows  int
	Bytes int64
}

// Summary is the status line shown after an export.
func (r Result) Summary() string {
	return fmt.Sprintf("exported %s rows (%s) to %s",
		humanize.Comma(int64(r.Rows)), humanize.Bytes(uint64(r.Bytes)), r.Path)
}

// FileName returns the export file name for a point in time.
func FileName(f Format, t time.Time) string {
	return "sqlpane_" + t.Format("20060102_150405") + f.Ext()
}

// WriteFile writes an export into dir, named after now. An existing file is
// never overwritten; a counter is appended instead.
func WriteFile(dir string, f Format, headers []string, rows [][]string, now time.Time) (Result, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Result{}, fmt.Errorf("failed to create export directory: %w", err)
	}

	base := FileName(f, now)
	path := filepath.Join(dir, base)
	var (
		file *os.File
		err  error
	)
	for i := 1; ; i++ {
		file, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil || !os.IsExist(err) || i > 100 {
			break
		}
		path = filepath.Join(dir, fmt.Sprintf("%s_%d%s", strings.TrimSuffix(base, f.Ext()), i, f.Ext()))
	}
	if err != nil {
		return Result{}, fmt.Errorf("failed to create export file: %w", err)
	}

	if err := Write(file, f, headers, rows); err != nil {
		file.Close()
		return Result{}, fmt.Errorf("failed to write export: %w", err)
	}
	if err := file.Close(); err != nil {
		return Result{}, fmt.Errorf("failed to write export: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return Result{}, err
	}
	return Result{Path: path, Rows: len(rows), Bytes: info.Size()}, nil
}
