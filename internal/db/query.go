package db

import (
	"context"
	"sync/atomic"

	"github.com/jmoiron/sqlx"
)

// Query executes a query with optional positional (?) parameters and
// returns a forward-only cursor over its rows.
//
// The cursor stays valid until it is exhausted, closed, or another
// statement is issued on the DB.
func (db *DB) Query(ctx context.Context, query string, args ...any) (*ResultSet, error) {
	if err := db.prepare(); err != nil {
		return nil, err
	}

	rows, err := db.ext().QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, failed("execute query", err)
	}

	return db.newCursor(rows)
}

// QueryNamed executes a query with named (:name) parameters taken from
// params.
func (db *DB) QueryNamed(ctx context.Context, query string, params map[string]any) (*ResultSet, error) {
	if err := db.prepare(); err != nil {
		return nil, err
	}

	args, err := db.bindNamed(query, params)
	if err != nil {
		return nil, err
	}

	rows, err := db.ext().QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, failed("execute query", err)
	}

	return db.newCursor(rows)
}

func (db *DB) newCursor(rows *sqlx.Rows) (*ResultSet, error) {
	rs, err := newResultSet(rows)
	if err != nil {
		_ = rows.Close()
		return nil, failed("read columns", err)
	}

	atomic.AddInt64(&db.stats.Reads, 1)
	db.cursor = rs
	return rs, nil
}
