package db

import (
	"fmt"
	"net/url"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

const (
	// DriverMattn is the CGO driver from github.com/mattn/go-sqlite3.
	DriverMattn = "sqlite3"
	// DriverModernc is the pure Go driver from modernc.org/sqlite.
	DriverModernc = "sqlite"
)

// ValidateDriver checks that driver is one of the supported drivers.
func ValidateDriver(driver string) error {
	valid := []string{DriverMattn, DriverModernc}
	for _, v := range valid {
		if driver == v {
			return nil
		}
	}

	return fmt.Errorf(
		"invalid driver %q, valid values are: %s",
		driver, strings.Join(valid, ", "),
	)
}

// pragma is a single SQLite pragma applied on connect through the DSN.
type pragma struct {
	name  string
	value string
}

func pragmasFor(dbPath string, disableOptimizations bool) []pragma {
	pragmas := []pragma{
		{name: "foreign_keys", value: "1"},
		{name: "busy_timeout", value: "5000"},
	}

	if disableOptimizations || dbPath == MemoryDirectory {
		return pragmas
	}

	return append(pragmas,
		pragma{name: "journal_mode", value: "WAL"},
		pragma{name: "synchronous", value: "NORMAL"},
	)
}

// createDSN builds the connection string for the given driver.
//
// mattn uses file:path?_foreign_keys=1&_journal_mode=WAL while modernc uses
// file:path?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL).
func createDSN(driver string, dbPath string, disableOptimizations bool) string {
	qp := url.Values{}
	for _, p := range pragmasFor(dbPath, disableOptimizations) {
		if driver == DriverModernc {
			qp.Add("_pragma", fmt.Sprintf("%s(%s)", p.name, p.value))
			continue
		}
		qp.Add("_"+p.name, p.value)
	}

	return fmt.Sprintf("file:%s?%s", dbPath, qp.Encode())
}
