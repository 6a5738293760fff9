package db

import (
	"path/filepath"
	"testing"
)

func TestOpenSQLite(t *testing.T) {
	conn, err := Open(DriverSQLite, filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer conn.Close()

	if err := conn.Ping(); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestOpenSQLiteFailsForMissingDirectory(t *testing.T) {
	conn, err := OpenSQLite(filepath.Join(t.TempDir(), "missing", "app.db"))
	if err == nil {
		_ = conn.Close()
		t.Fatalf("expected error for a database in a missing directory")
	}
	if conn != nil {
		t.Fatalf("expected nil handle on failure")
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open("oracle", "x"); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}
