package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/nsqlite/songdb/internal/db"
	"github.com/nsqlite/songdb/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestShell(t *testing.T) (*Shell, *bytes.Buffer) {
	t.Helper()
	database, err := db.Open(context.Background(), db.Config{
		Logger:    log.NewNopLogger(),
		Directory: t.TempDir(),
		Driver:    db.DriverMattn,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	out := &bytes.Buffer{}
	return New(ctx, cancel, log.NewNopLogger(), database, out), out
}

func TestExecute(t *testing.T) {
	t.Run("QuitCommands", func(t *testing.T) {
		s, _ := newTestShell(t)
		for _, input := range []string{".quit", ".exit", "exit", "  .quit  "} {
			assert.True(t, s.Execute(input), input)
		}
		assert.False(t, s.Execute(""))
	})

	t.Run("UnknownDotCommand", func(t *testing.T) {
		s, out := newTestShell(t)
		assert.False(t, s.Execute(".nope"))
		assert.Contains(t, out.String(), "Unknown command")
	})

	t.Run("Help", func(t *testing.T) {
		s, out := newTestShell(t)
		s.Execute(".help")
		assert.Contains(t, out.String(), "Available commands:")
		assert.Contains(t, out.String(), ".schema")
	})

	t.Run("TablesAndSchema", func(t *testing.T) {
		s, out := newTestShell(t)
		s.Execute(".tables")
		assert.Contains(t, out.String(), "songs")

		out.Reset()
		s.Execute(".schema")
		assert.Contains(t, out.String(), "song_id INTEGER PRIMARY KEY")
	})

	t.Run("WriteThenRead", func(t *testing.T) {
		s, out := newTestShell(t)
		s.Execute("INSERT INTO songs (title, album, artist) VALUES ('Girlfriend', 'The Best Damn Thing', 'Avril Lavigne')")
		assert.Contains(t, out.String(), "Rows Affected")

		out.Reset()
		s.Execute("SELECT title, play_count FROM songs")
		assert.Contains(t, out.String(), "Girlfriend")
		assert.Contains(t, out.String(), "*[NULL]*")
		assert.Contains(t, out.String(), "1 row(s)")
	})

	t.Run("TransactionPrompt", func(t *testing.T) {
		s, out := newTestShell(t)
		s.Execute("BEGIN")
		assert.Contains(t, out.String(), "Transaction started")
		require.NotEmpty(t, s.db.TxID())
		assert.Contains(t, promptLabel(s.db.TxID()), "songdb(")

		s.Execute("ROLLBACK")
		assert.Contains(t, out.String(), "Transaction rolled back")
		assert.Equal(t, "songdb> ", promptLabel(s.db.TxID()))
	})

	t.Run("EngineError", func(t *testing.T) {
		s, out := newTestShell(t)
		s.Execute("SELECT * FROM missing_table")
		assert.Contains(t, out.String(), "Error")
		assert.Contains(t, out.String(), "no such table: missing_table")
		assert.NotContains(t, out.String(), "statement failed")
	})

	t.Run("Stats", func(t *testing.T) {
		s, out := newTestShell(t)
		s.Execute("SELECT 1")
		s.Execute(".stats")
		assert.Contains(t, out.String(), "Reads")
		assert.Contains(t, out.String(), "Uptime:")
	})
}

func TestClose(t *testing.T) {
	t.Run("WaitsForRunningStatements", func(t *testing.T) {
		s, _ := newTestShell(t)
		s.Execute("CREATE TABLE counter (n INTEGER)")

		done := make(chan struct{})
		go func() {
			defer close(done)
			for i := 0; i < 200; i++ {
				if s.Execute(fmt.Sprintf("INSERT INTO counter (n) VALUES (%d)", i)) {
					return
				}
			}
		}()

		require.NoError(t, s.Close())
		<-done

		assert.True(t, s.Execute("SELECT 1"), "closed shell quits")
		assert.Equal(t, "songdb> ", s.label())
		_, err := s.db.Query(context.Background(), "SELECT 1")
		assert.ErrorIs(t, err, db.ErrClosed)
	})

	t.Run("Idempotent", func(t *testing.T) {
		s, _ := newTestShell(t)
		require.NoError(t, s.Close())
		assert.NoError(t, s.Close())
	})
}

func Test_cleanError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "wrapped engine error",
			err:  fmt.Errorf("%w: failed to query: %w", db.ErrStatementFailed, errors.New("no such table: x")),
			want: "no such table: x",
		},
		{
			name: "statement failed without operation",
			err:  fmt.Errorf("%w: empty statement", db.ErrStatementFailed),
			want: "empty statement",
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
			want: "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanError(tt.err))
		})
	}
}

func Test_promptLabel(t *testing.T) {
	assert.Equal(t, "songdb> ", promptLabel(""))
	assert.Equal(t, "songdb(abc)> ", promptLabel("abc"))
	assert.Equal(t, "songdb(4567890)> ", promptLabel("1234567890"))
}

func Test_cmdHelpCompleter(t *testing.T) {
	assert.Contains(t, cmdHelpCompleter(".sc"), ".schema")
	assert.Contains(t, cmdHelpCompleter("sel"), "SELECT * FROM songs")
	assert.Empty(t, cmdHelpCompleter("zzz"))
	assert.Len(t, cmdHelpCompleter(".t"), 1)
}
