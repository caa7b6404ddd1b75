package db

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
)

// WriteResult represents the result of a statement that does not return
// rows.
type WriteResult struct {
	LastInsertID int64
	RowsAffected int64
}

// Exec executes a statement with optional positional (?) parameters.
func (db *DB) Exec(ctx context.Context, query string, args ...any) (WriteResult, error) {
	if err := db.prepare(); err != nil {
		return WriteResult{}, err
	}

	res, err := db.ext().ExecContext(ctx, query, args...)
	if err != nil {
		return WriteResult{}, failed("execute statement", err)
	}

	return db.writeResult(res)
}

// ExecNamed executes a statement with named (:name) parameters taken from
// params.
func (db *DB) ExecNamed(ctx context.Context, query string, params map[string]any) (WriteResult, error) {
	if err := db.prepare(); err != nil {
		return WriteResult{}, err
	}

	args, err := db.bindNamed(query, params)
	if err != nil {
		return WriteResult{}, err
	}

	res, err := db.ext().ExecContext(ctx, query, args...)
	if err != nil {
		return WriteResult{}, failed("execute statement", err)
	}

	return db.writeResult(res)
}

// ExecStatements executes a script of one or more semicolon separated
// statements without parameters.
func (db *DB) ExecStatements(ctx context.Context, script string) error {
	if err := db.prepare(); err != nil {
		return err
	}

	if _, err := db.ext().ExecContext(ctx, script); err != nil {
		return failed("execute statements", err)
	}

	atomic.AddInt64(&db.stats.Writes, 1)
	return nil
}

// LastInsertRowID returns the rowid of the most recent successful INSERT
// made through this DB.
func (db *DB) LastInsertRowID() int64 {
	return db.lastInsertID
}

func (db *DB) writeResult(res sql.Result) (WriteResult, error) {
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return WriteResult{}, failed("get rows affected", err)
	}

	lastInsertID, err := res.LastInsertId()
	if err != nil {
		return WriteResult{}, failed("get last insert ID", err)
	}

	if rowsAffected > 0 && lastInsertID > 0 {
		db.lastInsertID = lastInsertID
	}

	atomic.AddInt64(&db.stats.Writes, 1)
	return WriteResult{
		LastInsertID: lastInsertID,
		RowsAffected: rowsAffected,
	}, nil
}

// bindNamed turns params into named driver arguments for the :name
// parameters of query. Both drivers bind them natively, so the query text
// is sent to the engine unchanged. Every parameter of query must be present in params;
// entries the query does not use are left out.
func (db *DB) bindNamed(query string, params map[string]any) ([]any, error) {
	names := namedParameters(query)

	args := make([]any, 0, len(names))
	missing := []string{}
	for _, name := range names {
		value, ok := params[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		args = append(args, sql.Named(name, value))
	}
	if len(missing) > 0 {
		return nil, failed("bind named parameters", fmt.Errorf("%w: %v", ErrMissingParameter, missing))
	}

	return args, nil
}
