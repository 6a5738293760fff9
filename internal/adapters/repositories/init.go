package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
)

// Initialize the location catalog schema. The DDL is valid for both SQLite
// and Postgres.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createLocationsQuery := `
	CREATE TABLE IF NOT EXISTS locations (
		location_id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		province TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		district TEXT NOT NULL DEFAULT '',
		lon DOUBLE PRECISION NOT NULL,
		lat DOUBLE PRECISION NOT NULL,
		maps_url TEXT NOT NULL DEFAULT '',
		open_time TEXT NOT NULL DEFAULT '',
		close_time TEXT NOT NULL DEFAULT ''
	);
	`

	createAreaIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_locations_area
	ON locations(province, city, district);
	`

	statements := []string{
		createLocationsQuery,
		createAreaIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// LocationSeed is one row of the outlet catalog CSV.
type LocationSeed struct {
	ID        string  `csv:"id"`
	Name      string  `csv:"name"`
	Province  string  `csv:"province"`
	City      string  `csv:"city"`
	District  string  `csv:"district"`
	Longitude float64 `csv:"longitude"`
	Latitude  float64 `csv:"latitude"`
	MapsURL   string  `csv:"maps_url"`
	Open      string  `csv:"open"`
	Close     string  `csv:"close"`
}

// Populate the catalog from an outlet CSV file. Existing ids are updated.
// Returns the number of rows written.
func SeedFromCSV(ctx context.Context, db *sql.DB, dialect Dialect, csvPath string) (int, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return 0, fmt.Errorf("seed locations: open %q: %w", csvPath, err)
	}
	defer f.Close()

	var data []LocationSeed
	if err := gocsv.UnmarshalFile(f, &data); err != nil {
		return 0, fmt.Errorf("seed locations: parse csv: %w", err)
	}

	rows := make([]LocationSeed, 0, len(data))
	for i, item := range data {
		item.ID = strings.TrimSpace(item.ID)
		if item.ID == "" {
			return 0, fmt.Errorf("seed locations: row %d: id cannot be empty", i+1)
		}
		if item.Longitude == 0 && item.Latitude == 0 {
			return 0, fmt.Errorf("seed locations: row %d (%s): coordinates are missing", i+1, item.ID)
		}
		if _, err := parseHours(item.Open, item.Close); err != nil {
			return 0, fmt.Errorf("seed locations: row %d (%s): %w", i+1, item.ID, err)
		}
		rows = append(rows, item)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("seed locations: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	ph := make([]string, 0, 10)
	for i := 1; i <= 10; i++ {
		ph = append(ph, dialect.placeholder(i))
	}

	query := `
	INSERT INTO locations (
		location_id,
		name,
		province,
		city,
		district,
		lon,
		lat,
		maps_url,
		open_time,
		close_time
	)
	VALUES (` + strings.Join(ph, ", ") + `)
	ON CONFLICT (location_id) DO UPDATE
	SET name = EXCLUDED.name,
		province = EXCLUDED.province,
		city = EXCLUDED.city,
		district = EXCLUDED.district,
		lon = EXCLUDED.lon,
		lat = EXCLUDED.lat,
		maps_url = EXCLUDED.maps_url,
		open_time = EXCLUDED.open_time,
		close_time = EXCLUDED.close_time;
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("seed locations: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		_, err := stmt.ExecContext(ctx,
			r.ID,
			strings.TrimSpace(r.Name),
			strings.TrimSpace(r.Province),
			strings.TrimSpace(r.City),
			strings.TrimSpace(r.District),
			r.Longitude,
			r.Latitude,
			strings.TrimSpace(r.MapsURL),
			strings.TrimSpace(r.Open),
			strings.TrimSpace(r.Close),
		)
		if err != nil {
			return 0, fmt.Errorf("seed locations: insert location_id=%s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("seed locations: commit tx: %w", err)
	}

	return len(rows), nil
}
