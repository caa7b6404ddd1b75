package songdb

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/nsqlite/songdb/internal/db"
	"github.com/nsqlite/songdb/internal/log"
	"github.com/nsqlite/songdb/internal/songdb/config"
	"github.com/nsqlite/songdb/internal/songdb/seed"
	"github.com/nsqlite/songdb/internal/songdb/shell"
	"github.com/nsqlite/songdb/internal/songdb/styled"
	"github.com/nsqlite/songdb/internal/songdb/walkthrough"
	"github.com/nsqlite/songdb/internal/version"
)

// Run runs the songdb CLI.
func Run(ctx context.Context) error {
	conf := config.MustParse(os.Args)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, closer, err := newLogger(conf)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	fmt.Println(version.Banner())
	logger.Info("starting songdb", log.KV{
		"version": version.Short(),
		"build":   version.Version().Build,
		"driver":  conf.Driver,
	})

	switch {
	case conf.Demo != nil:
		return runDemo(ctx, logger, conf)
	case conf.Seed != nil:
		return runSeed(ctx, logger, conf)
	case conf.Shell != nil:
		return runShell(ctx, stop, logger, conf)
	}
	return nil
}

// newLogger logs to stdout unless a log file is configured, in which case
// the returned closer releases the file.
func newLogger(conf config.Config) (log.Logger, io.Closer, error) {
	level, err := log.ParseLevel(conf.LogLevel)
	if err != nil {
		return log.Logger{}, nil, err
	}

	if conf.LogFile != "" {
		logger, closer := log.NewFileLogger(conf.LogFile, level)
		return logger, closer, nil
	}
	return log.NewLogger(os.Stdout, level), nil, nil
}

func openDB(ctx context.Context, logger log.Logger, conf config.Config, fileName string) (*db.DB, error) {
	database, err := db.Open(ctx, db.Config{
		Logger:               logger,
		Directory:            conf.DataDirectory,
		FileName:             fileName,
		Driver:               conf.Driver,
		DisableOptimizations: conf.DisableOptimizations,
	})
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	return database, nil
}

func closeDB(logger log.Logger, database *db.DB) {
	if err := database.Close(); err != nil {
		logger.Error("error closing database:", log.KV{"error": err})
	}
}

func runDemo(ctx context.Context, logger log.Logger, conf config.Config) error {
	reports, err := walkthrough.Run(ctx, walkthrough.Config{
		Logger:               logger,
		Directory:            conf.DataDirectory,
		Driver:               conf.Driver,
		DisableOptimizations: conf.DisableOptimizations,
	}, conf.Demo.Scenarios, os.Stdout)
	if err != nil {
		return err
	}

	styled.DimmedColor().Printf("%d scenario(s) passed\n", len(reports))
	return nil
}

func runSeed(ctx context.Context, logger log.Logger, conf config.Config) error {
	database, err := openDB(ctx, logger, conf, conf.Seed.File)
	if err != nil {
		return err
	}
	defer closeDB(logger, database)

	res, err := seed.Run(ctx, logger, database, conf.Seed.Count, os.Stderr)
	if err != nil {
		return err
	}

	fmt.Printf("Inserted %d song(s) into %s\n", res.Inserted, database.Path())
	styled.DimmedColor().Printf("The songs table now has %d row(s), took %s\n", res.Total, res.Elapsed)
	return nil
}

func runShell(ctx context.Context, stop context.CancelFunc, logger log.Logger, conf config.Config) error {
	database, err := openDB(ctx, logger, conf, conf.Shell.File)
	if err != nil {
		return err
	}

	sh := shell.New(ctx, stop, logger, database, os.Stdout)
	defer sh.Shutdown()
	go func() {
		if err := sh.Start(); err != nil {
			styled.ErrorColor().Println(err)
			stop()
		}
	}()

	<-ctx.Done()
	// The prompt may still be waiting for input, so the database is closed
	// through the shell rather than after the goroutine returns.
	if err := sh.Close(); err != nil {
		logger.Error("error closing database:", log.KV{"error": err})
	}
	fmt.Printf("\nGoodbye!\n\n")
	return nil
}
