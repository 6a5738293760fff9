package export

import (
	"fmt"
	"io"
	"math"
	"outlet-route-service/internal/domain"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"
)

const (
	TimeLayout     = "2006-01-02 15:04:05"
	StartPointName = "Start Point"
	SheetName      = "Routes"

	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Row is one line of the downloadable route table.
type Row struct {
	ID                 string  `csv:"id"`
	Name               string  `csv:"name"`
	Arrival            string  `csv:"arrival"`
	Departure          string  `csv:"departure"`
	MapsURL            string  `csv:"maps_url"`
	DurationToPrevious float64 `csv:"duration_to_previous_in_minutes"`
	DistanceToPrevious float64 `csv:"distance_to_previous_in_km"`
}

var header = []any{
	"id",
	"name",
	"arrival",
	"departure",
	"maps_url",
	"duration_to_previous_in_minutes",
	"distance_to_previous_in_km",
}

// Rows flattens an itinerary into table rows, formatting times in tz.
// A nil tz means UTC.
func Rows(it *domain.Itinerary, tz *time.Location) []Row {
	if it == nil {
		return []Row{}
	}
	if tz == nil {
		tz = time.UTC
	}

	rows := make([]Row, 0, len(it.Stops))
	for _, s := range it.Stops {
		name := s.Name
		if s.IsStart {
			name = StartPointName
		}
		rows = append(rows, Row{
			ID:                 s.LocationRef,
			Name:               name,
			Arrival:            time.Unix(s.Arrival, 0).In(tz).Format(TimeLayout),
			Departure:          time.Unix(s.Departure, 0).In(tz).Format(TimeLayout),
			MapsURL:            s.MapURL,
			DurationToPrevious: round2(float64(s.DurationToPrevious) / 60),
			DistanceToPrevious: round2(float64(s.DistanceToPrevious) / 1000),
		})
	}
	return rows
}

func WriteCSV(w io.Writer, rows []Row) error {
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("export csv: %w", err)
	}
	return nil
}

func WriteXLSX(w io.Writer, rows []Row) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("export xlsx: close workbook: %w", cerr)
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("export xlsx: rename sheet: %w", err)
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("export xlsx: write header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("export xlsx: row %d: %w", i, err)
		}
		values := []any{
			r.ID,
			r.Name,
			r.Arrival,
			r.Departure,
			r.MapsURL,
			r.DurationToPrevious,
			r.DistanceToPrevious,
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("export xlsx: write row %d: %w", i, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export xlsx: write workbook: %w", err)
	}
	return nil
}

// Write renders rows in the named format.
func Write(w io.Writer, format string, rows []Row) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, rows)
	case FormatXLSX:
		return WriteXLSX(w, rows)
	default:
		return fmt.Errorf("export: unsupported format %q", format)
	}
}

func ContentType(format string) string {
	switch format {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv; charset=utf-8"
	}
}

// FileName returns optimized_routes<YYYY-MM-DD>.<ext>.
func FileName(now time.Time, ext string) string {
	return "optimized_routes" + now.Format("2006-01-02") + "." + ext
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
