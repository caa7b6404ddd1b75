package db

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/mattn/go-sqlite3"
	"github.com/orsinium-labs/enum"
)

// Stats holds counters about DB usage.
type Stats struct {
	Reads     int64
	Writes    int64
	Begins    int64
	Commits   int64
	Rollbacks int64
}

// Stats returns a snapshot of the DB counters.
func (db *DB) Stats() Stats {
	return Stats{
		Reads:     atomic.LoadInt64(&db.stats.Reads),
		Writes:    atomic.LoadInt64(&db.stats.Writes),
		Begins:    atomic.LoadInt64(&db.stats.Begins),
		Commits:   atomic.LoadInt64(&db.stats.Commits),
		Rollbacks: atomic.LoadInt64(&db.stats.Rollbacks),
	}
}

// StatementType represents the kind of a given SQL statement.
type StatementType enum.Member[string]

var (
	StatementTypeUnknown  = StatementType{Value: "unknown"}
	StatementTypeRead     = StatementType{Value: "read"}
	StatementTypeWrite    = StatementType{Value: "write"}
	StatementTypeBegin    = StatementType{Value: "begin"}
	StatementTypeCommit   = StatementType{Value: "commit"}
	StatementTypeRollback = StatementType{Value: "rollback"}
)

// ReadResult holds the materialised rows of a read statement.
type ReadResult struct {
	Columns []string
	Values  [][]any
}

// QueryResult represents the result of a statement run through Run.
type QueryResult struct {
	Type        StatementType
	TxId        string
	WriteResult WriteResult
	ReadResult  ReadResult
}

// readKeywords are the leading keywords of statements that never write.
var readKeywords = []string{"select", "with", "explain", "values"}

// DetectStatementType detects the type of statement between read, write,
// begin, commit, and rollback.
func (db *DB) DetectStatementType(ctx context.Context, statement string) (StatementType, error) {
	trimmed := strings.ToLower(strings.TrimSpace(statement))

	switch {
	case trimmed == "":
		return StatementTypeUnknown, fmt.Errorf("%w: empty statement", ErrStatementFailed)
	case strings.HasPrefix(trimmed, "begin"):
		return StatementTypeBegin, nil
	case strings.HasPrefix(trimmed, "commit"), strings.HasPrefix(trimmed, "end"):
		return StatementTypeCommit, nil
	case strings.HasPrefix(trimmed, "rollback"):
		return StatementTypeRollback, nil
	}

	// The engine knows best, but asking it needs the raw connection which
	// is held by an open transaction.
	if db.Driver == DriverMattn && db.tx == nil {
		readOnly, err := db.mattnReadonly(ctx, statement)
		if err != nil {
			return StatementTypeUnknown, failed("prepare statement", err)
		}
		if readOnly {
			return StatementTypeRead, nil
		}
		return StatementTypeWrite, nil
	}

	for _, keyword := range readKeywords {
		if strings.HasPrefix(trimmed, keyword) {
			return StatementTypeRead, nil
		}
	}
	if strings.HasPrefix(trimmed, "pragma") && !strings.Contains(trimmed, "=") {
		return StatementTypeRead, nil
	}
	return StatementTypeWrite, nil
}

// mattnReadonly prepares statement on the raw mattn connection and asks
// SQLite whether it is read-only.
func (db *DB) mattnReadonly(ctx context.Context, statement string) (bool, error) {
	conn, err := db.conn.Conn(ctx)
	if err != nil {
		return false, err
	}
	defer conn.Close()

	isReadOnly := false
	err = conn.Raw(func(driverConn any) error {
		sqliteConn, ok := driverConn.(*sqlite3.SQLiteConn)
		if !ok {
			return fmt.Errorf("unexpected driver connection %T", driverConn)
		}
		drvStmt, err := sqliteConn.Prepare(statement)
		if err != nil {
			return err
		}
		defer drvStmt.Close()
		isReadOnly = drvStmt.(*sqlite3.SQLiteStmt).Readonly()
		return nil
	})
	return isReadOnly, err
}

// Run detects the type of a raw SQL statement and executes it. Read
// results are fully materialised.
func (db *DB) Run(ctx context.Context, statement string, args ...any) (QueryResult, error) {
	if err := db.prepare(); err != nil {
		return QueryResult{}, err
	}

	typeOfStatement, err := db.DetectStatementType(ctx, statement)
	if err != nil {
		return QueryResult{}, err
	}

	switch typeOfStatement {
	case StatementTypeBegin:
		err = db.Begin(ctx)
	case StatementTypeCommit:
		err = db.Commit()
	case StatementTypeRollback:
		err = db.Rollback()
	case StatementTypeRead:
		return db.runRead(ctx, statement, args...)
	case StatementTypeWrite:
		res, err := db.Exec(ctx, statement, args...)
		if err != nil {
			return QueryResult{}, err
		}
		return QueryResult{Type: StatementTypeWrite, TxId: db.TxID(), WriteResult: res}, nil
	}
	if err != nil {
		return QueryResult{}, err
	}

	return QueryResult{Type: typeOfStatement, TxId: db.TxID()}, nil
}

func (db *DB) runRead(ctx context.Context, statement string, args ...any) (QueryResult, error) {
	rs, err := db.Query(ctx, statement, args...)
	if err != nil {
		return QueryResult{}, err
	}
	defer rs.Close()

	values := [][]any{}
	for rs.Next() {
		row := rs.Values()
		for i, v := range row {
			if b, ok := v.([]byte); ok {
				row[i] = string(b)
			}
		}
		values = append(values, row)
	}
	if err := rs.Err(); err != nil {
		return QueryResult{}, err
	}

	return QueryResult{
		Type: StatementTypeRead,
		TxId: db.TxID(),
		ReadResult: ReadResult{
			Columns: rs.Columns(),
			Values:  values,
		},
	}, nil
}
