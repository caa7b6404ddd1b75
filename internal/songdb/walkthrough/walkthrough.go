// Package walkthrough contains the getting-started scenarios of songdb.
//
// Every scenario runs against its own freshly created database file: the
// runner opens the database and creates the songs table, runs the
// scenario, and always closes the database afterwards.
package walkthrough

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nsqlite/songdb/internal/db"
	"github.com/nsqlite/songdb/internal/log"
	"github.com/nsqlite/songdb/internal/songdb/printer"
	"github.com/nsqlite/songdb/internal/store"
)

// Config configures how scenario databases are created.
type Config struct {
	Logger               log.Logger
	Directory            string
	Driver               string
	DisableOptimizations bool
}

// Env is what a scenario gets to work with.
type Env struct {
	DB    *db.DB
	Store *store.Store
	Out   io.Writer
}

// Report holds the values a scenario observed.
type Report struct {
	Scenario     string
	DatabasePath string
	// Albums are the album names listed by the simple query.
	Albums []string
	// LastInsertID is the rowid of the last inserted song.
	LastInsertID int64
	// PlayCount is the play count read back after an update.
	PlayCount int64
	// Snapshots holds the songs table every time it was printed, keyed by
	// the moment it was taken (initial, inside, final).
	Snapshots map[string][]store.Song
}

// Scenario is a single walkthrough step.
type Scenario struct {
	Name        string
	Description string
	run         func(ctx context.Context, env Env, report *Report) error
}

// Scenarios returns every scenario in execution order.
func Scenarios() []Scenario {
	return []Scenario{
		{Name: "simple-query", Description: "Populate two rows and query them", run: simpleQuery},
		{Name: "hard-coded-query", Description: "SQL queries with hard-coded values", run: hardCodedQuery},
		{Name: "parameterized-query", Description: "SQL statements with named parameters", run: parameterizedQuery},
		{Name: "transaction-commit", Description: "Committing a transaction", run: transactionCommit},
		{Name: "transaction-rollback", Description: "Rolling back a transaction", run: transactionRollback},
	}
}

// ScenarioNames returns the names of every scenario.
func ScenarioNames() []string {
	names := []string{}
	for _, s := range Scenarios() {
		names = append(names, s.Name)
	}
	return names
}

// Lookup returns the scenario with the given name.
func Lookup(name string) (Scenario, error) {
	for _, s := range Scenarios() {
		if s.Name == name {
			return s, nil
		}
	}
	return Scenario{}, fmt.Errorf(
		"unknown scenario %q, valid values are: %s",
		name, strings.Join(ScenarioNames(), ", "),
	)
}

// Run runs the named scenarios, or all of them when names is empty, and
// stops at the first failure.
func Run(ctx context.Context, conf Config, names []string, out io.Writer) ([]Report, error) {
	scenarios := Scenarios()
	if len(names) > 0 {
		scenarios = scenarios[:0]
		for _, name := range names {
			s, err := Lookup(name)
			if err != nil {
				return nil, err
			}
			scenarios = append(scenarios, s)
		}
	}

	reports := []Report{}
	for _, s := range scenarios {
		report, err := RunScenario(ctx, conf, s, out)
		if err != nil {
			return reports, fmt.Errorf("scenario %s failed: %w", s.Name, err)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// RunScenario sets up a fresh database, runs s against it and tears the
// database down.
func RunScenario(ctx context.Context, conf Config, s Scenario, out io.Writer) (Report, error) {
	if err := os.MkdirAll(conf.Directory, 0755); err != nil {
		return Report{}, fmt.Errorf("failed to create database directory: %w", err)
	}

	database, err := db.Open(ctx, db.Config{
		Logger:               conf.Logger,
		Directory:            conf.Directory,
		FileName:             uniqueFileName(conf.Directory),
		Driver:               conf.Driver,
		DisableOptimizations: conf.DisableOptimizations,
	})
	if err != nil {
		return Report{}, err
	}
	defer func() {
		if err := database.Close(); err != nil {
			conf.Logger.ErrorNs(log.NsDemo, "error closing database", log.KV{"error": err})
		}
	}()

	fmt.Fprintf(out, "=== %s: %s\n", s.Name, s.Description)
	fmt.Fprintf(out, "Database created at: %s\n", filepath.Dir(database.Path()))

	report := Report{
		Scenario:     s.Name,
		DatabasePath: database.Path(),
		Snapshots:    map[string][]store.Song{},
	}
	env := Env{
		DB:    database,
		Store: store.New(database),
		Out:   out,
	}

	start := time.Now()
	if err := s.run(ctx, env, &report); err != nil {
		return report, err
	}

	conf.Logger.InfoNs(log.NsDemo, "scenario finished", log.KV{
		"scenario": s.Name,
		"elapsed":  time.Since(start).String(),
	})
	return report, nil
}

// uniqueFileName returns a timestamp based file name not yet present in
// dir. Scenarios started within the same millisecond get the next free
// millisecond.
func uniqueFileName(dir string) string {
	now := time.Now()
	for {
		name := db.NewFileName(now)
		if _, err := os.Stat(filepath.Join(dir, name)); os.IsNotExist(err) {
			return name
		}
		now = now.Add(time.Millisecond)
	}
}

// printSongsTable prints every song and records a snapshot in report.
func printSongsTable(ctx context.Context, env Env, report *Report, moment string) error {
	rs, err := env.DB.Query(ctx, "SELECT * FROM songs")
	if err != nil {
		return err
	}
	defer rs.Close()

	if _, err := printer.PrintRows(env.Out, rs); err != nil {
		return err
	}

	songs, err := env.Store.List(ctx)
	if err != nil {
		return err
	}
	report.Snapshots[moment] = songs
	return nil
}
