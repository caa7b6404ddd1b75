// Package shell implements the interactive SQL shell of songdb.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/nsqlite/songdb/internal/db"
	"github.com/nsqlite/songdb/internal/log"
	"github.com/nsqlite/songdb/internal/util/sysutil"
	"github.com/peterh/liner"
)

type Shell struct {
	ctx         context.Context
	stop        context.CancelFunc
	logger      log.Logger
	db          *db.DB
	out         io.Writer
	startedAt   time.Time
	historyPath string

	// mu serialises statements against Close.
	mu     sync.Mutex
	closed bool
}

func New(
	ctx context.Context,
	stop context.CancelFunc,
	logger log.Logger,
	database *db.DB,
	out io.Writer,
) *Shell {
	return &Shell{
		ctx:         ctx,
		stop:        stop,
		logger:      logger,
		db:          database,
		out:         out,
		startedAt:   time.Now(),
		historyPath: filepath.Join(os.TempDir(), ".songdb_history"),
	}
}

// Start reads statements from the terminal until the user quits or the
// context is cancelled.
func (s *Shell) Start() error {
	fmt.Fprintln(s.out)
	fmt.Fprintf(s.out, "Connected to %s\n", s.db.Path())
	fmt.Fprintln(s.out, `Enter ".help" for usage hints and ".quit" or "CTRL+C" to quit`)
	fmt.Fprintln(s.out)

	for {
		select {
		case <-s.ctx.Done():
			return nil
		default:
			if quit := s.Execute(s.prompt()); quit {
				s.Shutdown()
				return nil
			}
		}
	}
}

// Execute runs a single line of input and reports whether the shell
// should quit. It always reports true once the shell is closed.
func (s *Shell) Execute(input string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return true
	}

	input = strings.TrimSpace(input)

	switch input {
	case "":
		return false
	case "exit", ".exit", ".quit":
		return true
	case "clear", ".clear":
		sysutil.ClearTerminal(s.out)
	case "help", ".help":
		cmdHelp(s.out)
	case ".tables":
		cmdQuery(s, "SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name")
	case ".schema":
		cmdQuery(s, "SELECT sql FROM sqlite_master WHERE sql IS NOT NULL ORDER BY name")
	case ".stats":
		cmdStats(s)
	default:
		if strings.HasPrefix(input, ".") {
			fmt.Fprintln(s.out, "Unknown command, type .help for usage hints")
			return false
		}
		cmdQuery(s, input)
	}
	return false
}

// Shutdown stops the shell.
func (s *Shell) Shutdown() {
	s.stop()
}

// Close waits for the running statement, if any, and closes the database.
// Input received afterwards is not executed.
func (s *Shell) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// cleanError removes the wrapping added by the db package so the engine
// message is what the user reads.
func cleanError(err error) string {
	errStr := err.Error()
	if errors.Is(err, db.ErrStatementFailed) {
		errStr = strings.TrimPrefix(errStr, db.ErrStatementFailed.Error()+":")
		errStr = strings.TrimSpace(errStr)
		if strings.HasPrefix(errStr, "failed to ") {
			if i := strings.Index(errStr, ":"); i >= 0 {
				errStr = errStr[i+1:]
			}
		}
	}
	return strings.TrimSpace(errStr)
}

// promptLabel returns the prompt, showing the tail of the transaction id
// while one is open.
func promptLabel(txId string) string {
	if txId == "" {
		return "songdb> "
	}
	if len(txId) > 7 {
		txId = txId[len(txId)-7:]
	}
	return fmt.Sprintf("songdb(%s)> ", txId)
}

// label returns the prompt for the current transaction state.
func (s *Shell) label() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return promptLabel("")
	}
	return promptLabel(s.db.TxID())
}

// prompt shows the prompt and reads the input from the user.
func (s *Shell) prompt() string {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(cmdHelpCompleter)

	if file, err := os.Open(s.historyPath); err == nil {
		_, _ = line.ReadHistory(file)
		file.Close()
	}

	input, err := line.Prompt(s.label())
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			fmt.Fprintln(s.out, "Exiting...")
			return ".quit"
		}
		s.logger.WarnNs(log.NsShell, "failed to read input", log.KV{"error": err})
		return ""
	}

	line.AppendHistory(input)
	if file, err := os.Create(s.historyPath); err == nil {
		_, _ = line.WriteHistory(file)
		file.Close()
	}

	return strings.TrimSpace(input)
}
