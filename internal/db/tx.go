package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/nsqlite/songdb/internal/log"
)

// transaction holds the open *sqlx.Tx and its identifier.
type transaction struct {
	id        string
	tx        *sqlx.Tx
	startedAt time.Time
}

// Begin starts a transaction. Until Commit or Rollback every statement
// issued on the DB runs inside it.
func (db *DB) Begin(ctx context.Context) error {
	if err := db.prepare(); err != nil {
		return err
	}
	if db.tx != nil {
		return failed("begin transaction", ErrTransactionInProgress)
	}

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return failed("begin transaction", err)
	}

	txId, err := uuid.NewRandom()
	if err != nil {
		_ = tx.Rollback()
		return failed("generate transaction ID", err)
	}

	db.tx = &transaction{
		id:        txId.String(),
		tx:        tx,
		startedAt: time.Now(),
	}
	atomic.AddInt64(&db.stats.Begins, 1)

	db.Logger.DebugNs(log.NsDatabase, "transaction started", log.KV{"txId": db.tx.id})
	return nil
}

// Commit makes every statement since Begin durable and visible.
func (db *DB) Commit() error {
	if err := db.prepare(); err != nil {
		return err
	}
	if db.tx == nil {
		return failed("commit transaction", ErrNoTransaction)
	}

	current := db.tx
	db.tx = nil
	if err := current.tx.Commit(); err != nil {
		return failed("commit transaction", err)
	}
	atomic.AddInt64(&db.stats.Commits, 1)

	db.Logger.DebugNs(log.NsDatabase, "transaction committed", log.KV{
		"txId":     current.id,
		"duration": time.Since(current.startedAt).String(),
	})
	return nil
}

// Rollback discards every statement since Begin.
func (db *DB) Rollback() error {
	if err := db.prepare(); err != nil {
		return err
	}
	if db.tx == nil {
		return failed("rollback transaction", ErrNoTransaction)
	}

	current := db.tx
	db.tx = nil
	if err := current.tx.Rollback(); err != nil {
		return failed("rollback transaction", err)
	}
	atomic.AddInt64(&db.stats.Rollbacks, 1)

	db.Logger.DebugNs(log.NsDatabase, "transaction rolled back", log.KV{
		"txId":     current.id,
		"duration": time.Since(current.startedAt).String(),
	})
	return nil
}

// RollbackAfter rolls back the open transaction because of cause and
// returns cause. A transaction that database/sql already rolled back when
// its context was cancelled is not an additional failure.
func (db *DB) RollbackAfter(cause error) error {
	if err := db.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("%w (rollback failed: %w)", cause, err)
	}
	return cause
}

// InTransaction reports whether a transaction is open.
func (db *DB) InTransaction() bool {
	return db.tx != nil
}

// TxID returns the identifier of the open transaction, or an empty string.
func (db *DB) TxID() string {
	if db.tx == nil {
		return ""
	}
	return db.tx.id
}
