package shell

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/nsqlite/songdb/internal/db"
	"github.com/nsqlite/songdb/internal/log"
	"github.com/nsqlite/songdb/internal/songdb/printer"
	"github.com/nsqlite/songdb/internal/songdb/styled"
)

func cmdQuery(s *Shell, input string) {
	tw := styled.NewTableWriter()

	res, err := s.db.Run(s.ctx, input)
	if err != nil {
		s.logger.DebugNs(log.NsShell, "statement failed", log.KV{"error": err})
		tw.AppendHeader(table.Row{"Error"})
		tw.AppendRow(table.Row{cleanError(err)})
		fmt.Fprintln(s.out, tw.Render())
		return
	}

	switch res.Type {
	case db.StatementTypeBegin:
		tw.AppendHeader(table.Row{"OK"})
		tw.AppendRow(table.Row{"Transaction started"})
	case db.StatementTypeCommit:
		tw.AppendHeader(table.Row{"OK"})
		tw.AppendRow(table.Row{"Transaction committed"})
	case db.StatementTypeRollback:
		tw.AppendHeader(table.Row{"OK"})
		tw.AppendRow(table.Row{"Transaction rolled back"})
	case db.StatementTypeWrite:
		tw.AppendHeader(table.Row{"-", "Rows Affected", "Last Insert ID"})
		tw.AppendRow(table.Row{"OK", res.WriteResult.RowsAffected, res.WriteResult.LastInsertID})
	case db.StatementTypeRead:
		header := table.Row{}
		for _, col := range res.ReadResult.Columns {
			header = append(header, col)
		}
		tw.AppendHeader(header)

		for _, values := range res.ReadResult.Values {
			row := table.Row{}
			for _, v := range values {
				if v == nil {
					v = printer.NullText
				}
				row = append(row, v)
			}
			tw.AppendRow(row)
		}
		tw.AppendFooter(table.Row{fmt.Sprintf("%d row(s)", len(res.ReadResult.Values))})
	}

	fmt.Fprintln(s.out, tw.Render())
}
