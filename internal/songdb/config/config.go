package config

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/alexflint/go-arg"
	"github.com/joho/godotenv"
	"github.com/nsqlite/songdb/internal/db"
	ilog "github.com/nsqlite/songdb/internal/log"
	"github.com/nsqlite/songdb/internal/songdb/walkthrough"
	"github.com/nsqlite/songdb/internal/version"
)

// DotEnvFile is loaded from the working directory before parsing.
const DotEnvFile = ".env"

// Config represents the configuration for songdb.
type Config struct {
	DataDirectory        string `arg:"--data-directory,env:SONGDB_DATA_DIRECTORY" help:"Directory for songdb database files" default:"./data"`
	Driver               string `arg:"--driver,env:SONGDB_DRIVER" help:"SQLite driver to use (sqlite3, sqlite)" default:"sqlite3"`
	DisableOptimizations bool   `arg:"--disable-optimizations,env:SONGDB_DISABLE_OPTIMIZATIONS" help:"Disable WAL journal and NORMAL synchronous pragmas on new databases" default:"false"`
	LogLevel             string `arg:"--log-level,env:SONGDB_LOG_LEVEL" help:"Log level (debug, info, warn, error)" default:"info"`
	LogFile              string `arg:"--log-file,env:SONGDB_LOG_FILE" help:"Write logs to this file instead of stdout, rotated by size"`

	Demo  *DemoCmd  `arg:"subcommand:demo" help:"Run the getting-started walkthrough"`
	Seed  *SeedCmd  `arg:"subcommand:seed" help:"Insert generated songs into a new database"`
	Shell *ShellCmd `arg:"subcommand:shell" help:"Open an interactive SQL shell"`
}

// DemoCmd runs walkthrough scenarios, all of them when none is named.
type DemoCmd struct {
	Scenarios []string `arg:"--scenario,separate" help:"Scenario to run, can be repeated (simple-query, hard-coded-query, parameterized-query, transaction-commit, transaction-rollback)"`
}

// SeedCmd inserts generated songs.
type SeedCmd struct {
	Count int    `arg:"--count,env:SONGDB_SEED_COUNT" help:"Number of songs to insert" default:"1000"`
	File  string `arg:"--file" help:"Database file name inside the data directory; a timestamped name is used when empty"`
}

// ShellCmd opens the interactive shell.
type ShellCmd struct {
	File string `arg:"--file" help:"Database file name inside the data directory; a timestamped name is used when empty"`
}

func (Config) Version() string {
	return fmt.Sprintf("songdb %s\n", version.Short())
}

func (Config) Description() string {
	return "songdb is a getting-started walkthrough of an embedded SQLite database"
}

// Parse loads the .env file, parses args (without the program name) and
// validates the result.
func Parse(args []string) (Config, error) {
	cfg := Config{}

	if err := LoadDotEnv(DotEnvFile); err != nil {
		return cfg, err
	}

	parser, err := arg.NewParser(arg.Config{Program: "songdb"}, &cfg)
	if err != nil {
		return cfg, err
	}
	if err := parser.Parse(args); err != nil {
		return cfg, err
	}

	return cfg, cfg.validate()
}

// MustParse parses and validates the configuration from the command
// line arguments. It returns a Config struct or exits the program
// with an error.
func MustParse(args []string) Config {
	cfg := Config{}

	if err := LoadDotEnv(DotEnvFile); err != nil {
		log.Fatal(err)
	}

	parser, err := arg.NewParser(arg.Config{Program: "songdb"}, &cfg)
	if err != nil {
		log.Fatal(err)
	}
	parser.MustParse(args[1:])

	if err := cfg.validate(); err != nil {
		parser.Fail(err.Error())
	}

	return cfg
}

// LoadDotEnv loads environment variables from path without overriding the
// ones already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", path, err)
}

func (cfg Config) validate() error {
	if cfg.Demo == nil && cfg.Seed == nil && cfg.Shell == nil {
		return errors.New("missing subcommand, valid values are: demo, seed, shell")
	}
	if err := db.ValidateDriver(cfg.Driver); err != nil {
		return err
	}
	if _, err := ilog.ParseLevel(cfg.LogLevel); err != nil {
		return err
	}
	if cfg.Demo != nil {
		if err := validateScenarios(cfg.Demo.Scenarios); err != nil {
			return err
		}
	}
	if cfg.Seed != nil {
		if err := validateSeedCount(cfg.Seed.Count); err != nil {
			return err
		}
	}
	return nil
}

// validateScenarios validates that every name is a known scenario.
func validateScenarios(names []string) error {
	for _, name := range names {
		if _, err := walkthrough.Lookup(name); err != nil {
			return err
		}
	}
	return nil
}

// validateSeedCount validates if count is greater than zero.
func validateSeedCount(count int) error {
	if count <= 0 {
		return errors.New("invalid seed count, must be greater than zero")
	}
	return nil
}
