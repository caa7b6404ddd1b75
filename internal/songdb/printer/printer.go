// Package printer renders query results as markdown tables.
package printer

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const (
	// NullText is printed in place of NULL values.
	NullText = "*[NULL]*"
	// UntitledText is printed in place of an empty column name.
	UntitledText = "*[UNTITLED]*"
)

// Cursor is the subset of db.ResultSet needed to print rows.
type Cursor interface {
	Next() bool
	Err() error
	ColumnCount() int
	ColumnName(i int) string
	StringAt(i int) (string, bool)
}

// PrintRows consumes cursor and writes its rows to w as a markdown table
// with a "| --- |" separator row, followed by the row count. It returns
// the number of rows printed.
func PrintRows(w io.Writer, cursor Cursor) (int, error) {
	if cursor.ColumnCount() == 0 {
		_, err := fmt.Fprintln(w, "ResultSet is empty")
		return 0, err
	}

	tw := table.NewWriter()
	tw.Style().Format.Header = text.FormatDefault
	header := table.Row{}
	for i := 0; i < cursor.ColumnCount(); i++ {
		name := cursor.ColumnName(i)
		if name == "" {
			name = UntitledText
		}
		header = append(header, name)
	}
	tw.AppendHeader(header)

	total := 0
	for cursor.Next() {
		total++
		row := make(table.Row, cursor.ColumnCount())
		for i := range row {
			value, ok := cursor.StringAt(i)
			if !ok {
				value = NullText
			}
			row[i] = value
		}
		tw.AppendRow(row)
	}
	if err := cursor.Err(); err != nil {
		return total, err
	}

	_, err := fmt.Fprintf(w, "\n%s\n\nTotal: %d row(s)\n\n", tw.RenderMarkdown(), total)
	return total, err
}
