// Package db provides the SQLite façade used by songdb.
//
// A DB owns a single database handle. Statements are sent to the engine as
// plain SQL text with positional (?) or named (:name) parameters, query
// results are exposed as forward-only cursors, and transactions follow the
// engine's own ACID semantics. Nothing is retried: every engine failure is
// returned to the caller wrapped with ErrStatementFailed.
package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/nsqlite/songdb/internal/db/migrations"
	"github.com/nsqlite/songdb/internal/log"
)

// MemoryDirectory can be used as Config.Directory to open a private
// in-memory database.
const MemoryDirectory = ":memory:"

var (
	// ErrStatementFailed is wrapped by every error returned from a
	// statement, query or transaction operation.
	ErrStatementFailed = errors.New("statement failed")
	// ErrNoTransaction is returned by Commit and Rollback when no
	// transaction is in progress.
	ErrNoTransaction = errors.New("no transaction in progress")
	// ErrTransactionInProgress is returned by Begin when a transaction
	// is already open.
	ErrTransactionInProgress = errors.New("transaction already in progress")
	// ErrClosed is returned when the DB has already been closed.
	ErrClosed = errors.New("database is closed")
	// ErrCursorClosed is reported by a ResultSet that was closed before it
	// was exhausted, because another statement ran or the DB was closed.
	ErrCursorClosed = errors.New("result set closed before it was exhausted")
	// ErrMissingParameter is returned when a :name parameter has no value.
	ErrMissingParameter = errors.New("missing named parameter")
)

// Config represents the configuration for a DB instance.
type Config struct {
	// Logger is the shared songdb logger.
	Logger log.Logger
	// Directory is where the database file is created. Use MemoryDirectory
	// for an in-memory database.
	Directory string
	// FileName is the database file name inside Directory. When empty a
	// timestamp based name is generated with NewFileName.
	FileName string
	// Driver is the database/sql driver name, DriverMattn or DriverModernc.
	// Defaults to DriverMattn.
	Driver string
	// DisableOptimizations disables the WAL and synchronous pragmas.
	DisableOptimizations bool
	// SkipMigrations opens the database without creating the songs table.
	SkipMigrations bool
}

// DB is the SQLite façade.
type DB struct {
	Config
	path         string
	conn         *sqlx.DB
	tx           *transaction
	cursor       *ResultSet
	lastInsertID int64
	stats        Stats
	closed       bool
}

// NewFileName returns the database file name for the given instant: the
// unix time in milliseconds with a .sqlite extension.
func NewFileName(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 10) + ".sqlite"
}

// Open creates the data directory if needed, opens the database file and
// applies the embedded migrations.
func Open(ctx context.Context, config Config) (*DB, error) {
	if !config.Logger.IsInitialized() {
		return nil, errors.New("logger is required")
	}
	if config.Directory == "" {
		return nil, errors.New("database directory is required")
	}
	if config.Driver == "" {
		config.Driver = DriverMattn
	}
	if err := ValidateDriver(config.Driver); err != nil {
		return nil, err
	}

	dbPath := MemoryDirectory
	if config.Directory != MemoryDirectory {
		if err := os.MkdirAll(config.Directory, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		if config.FileName == "" {
			config.FileName = NewFileName(time.Now())
		}
		dbPath = filepath.Join(config.Directory, config.FileName)
	}

	dsn := createDSN(config.Driver, dbPath, config.DisableOptimizations)
	config.Logger.DebugNs(log.NsDatabase, "opening database", log.KV{"dsn": dsn})

	conn, err := sqlx.Open(config.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	conn.SetConnMaxIdleTime(0)
	conn.SetConnMaxLifetime(0)
	conn.SetMaxIdleConns(1)
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if !config.SkipMigrations {
		applied, err := migrations.Up(ctx, conn.DB)
		if err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		config.Logger.DebugNs(log.NsDatabase, "migrations applied", log.KV{"count": applied})
	}

	config.Logger.InfoNs(log.NsDatabase, "database opened", log.KV{
		"path":   dbPath,
		"driver": config.Driver,
	})

	return &DB{
		Config: config,
		path:   dbPath,
		conn:   conn,
	}, nil
}

// Path returns the database file path, or MemoryDirectory.
func (db *DB) Path() string {
	return db.path
}

// Close rolls back any open transaction and releases the database handle.
// Calling Close more than once is a no-op.
func (db *DB) Close() error {
	if db.closed {
		return nil
	}
	db.closed = true
	db.closeCursor()

	if db.tx != nil {
		_ = db.tx.tx.Rollback()
		db.Logger.WarnNs(log.NsDatabase, "transaction rolled back on close", log.KV{"txId": db.tx.id})
		db.tx = nil
	}

	if err := db.conn.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	db.Logger.InfoNs(log.NsDatabase, "database closed", log.KV{"path": db.path})
	return nil
}

// ext returns the executor statements must go through: the open
// transaction if any, otherwise the database handle.
func (db *DB) ext() sqlx.ExtContext {
	if db.tx != nil {
		return db.tx.tx
	}
	return db.conn
}

// prepare makes the DB ready for a new statement. Only one cursor can be
// alive on the single handle, so the previous one is closed.
func (db *DB) prepare() error {
	if db.closed {
		return failed("run statement", ErrClosed)
	}
	db.closeCursor()
	return nil
}

// closeCursor invalidates the live cursor, if any. A cursor that was not
// exhausted reports ErrCursorClosed from Err.
func (db *DB) closeCursor() {
	if db.cursor != nil {
		db.cursor.invalidate(fmt.Errorf("%w: %w", ErrStatementFailed, ErrCursorClosed))
		db.cursor = nil
	}
}

// failed wraps err with ErrStatementFailed and the failed operation.
func failed(op string, err error) error {
	return fmt.Errorf("%w: failed to %s: %w", ErrStatementFailed, op, err)
}
