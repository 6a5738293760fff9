package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Supported catalog database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open connects to the catalog database for the named driver.
// dsn is a postgres URL for DriverPostgres and a file path for DriverSQLite.
func Open(driver, dsn string) (*sql.DB, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverPostgres, "pgx":
		return OpenPostgres(dsn)
	case DriverSQLite, "":
		return OpenSQLite(dsn)
	default:
		return nil, fmt.Errorf("openDB: unsupported driver %q", driver)
	}
}

func OpenPostgres(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("openDB: open postgres database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("openDB: verify postgres connection: %w", err)
	}

	return db, nil
}

func OpenSQLite(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("openDB: open sqlite database %q: %w", dbPath, err)
	}

	// A single writer avoids SQLITE_BUSY and keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("openDB: verify sqlite connection to %q: %w", dbPath, err)
	}

	return db, nil
}
