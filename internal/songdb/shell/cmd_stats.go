package shell

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/nsqlite/songdb/internal/songdb/styled"
	"github.com/nsqlite/songdb/internal/util/numutil"
)

func cmdStats(s *Shell) {
	stats := s.db.Stats()

	tw := styled.NewTableWriter()
	tw.AppendHeader(table.Row{"Reads", "Writes", "Begins", "Commits", "Rollbacks"})
	tw.AppendRow(table.Row{
		numutil.WithCommas(stats.Reads),
		numutil.WithCommas(stats.Writes),
		numutil.WithCommas(stats.Begins),
		numutil.WithCommas(stats.Commits),
		numutil.WithCommas(stats.Rollbacks),
	})

	fmt.Fprintln(s.out, tw.Render())
	styled.DimmedColor().Fprintf(s.out, "Counters since the database was opened\n")
	styled.DimmedColor().Fprintf(s.out, "Uptime: %s\n", time.Since(s.startedAt).Round(time.Second))
	fmt.Fprintln(s.out)
}
