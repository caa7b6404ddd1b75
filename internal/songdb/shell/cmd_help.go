package shell

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/nsqlite/songdb/internal/songdb/styled"
)

type dotCmd struct {
	name         string
	autocomplete string
	help         string
}

func cmdHelpCommands() []dotCmd {
	cmds := []dotCmd{
		{name: ".tables", autocomplete: ".tables", help: "List all tables in the database"},
		{name: ".schema", autocomplete: ".schema", help: "Show the CREATE statements of the database"},
		{name: ".stats", autocomplete: ".stats", help: "Show the statement counters of this session"},
		{name: ".clear", autocomplete: ".clear", help: "Clear the terminal screen"},
		{name: ".help", autocomplete: ".help", help: "Show the help message"},
		{name: ".quit", autocomplete: ".quit", help: "Exit the shell"},
		{name: ".exit", autocomplete: ".exit", help: "Exit the shell"},
		{name: "CTRL+c", help: "Exit the shell"},
	}

	sort.Slice(cmds, func(i, j int) bool {
		return cmds[i].name < cmds[j].name
	})

	return cmds
}

func cmdHelp(w io.Writer) {
	fmt.Fprintln(w, "Available commands:")

	tw := styled.NewTableWriter()
	tw.AppendHeader(table.Row{"Command", "Description"})
	for _, cmd := range cmdHelpCommands() {
		tw.AppendRow(table.Row{cmd.name, cmd.help})
	}

	fmt.Fprintln(w, tw.Render())
}

func cmdHelpCompleter(line string) []string {
	suggestions := []string{
		"SELECT ",
		"SELECT * FROM songs",
		"SELECT COUNT(*) FROM songs",
		"INSERT INTO songs (title, album, artist, play_count) VALUES ",
		"UPDATE songs SET ",
		"BEGIN",
		"COMMIT",
		"ROLLBACK",
	}

	for _, cmd := range cmdHelpCommands() {
		if cmd.autocomplete != "" {
			suggestions = append(suggestions, cmd.autocomplete)
		}
	}

	results := []string{}
	for _, suggestion := range suggestions {
		if strings.HasPrefix(strings.ToLower(suggestion), strings.ToLower(line)) {
			results = append(results, suggestion)
		}
	}

	return results
}
