package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"outlet-route-service/internal/domain"
	"outlet-route-service/internal/platform/obs"
	"outlet-route-service/internal/ports"
	"strings"
)

const selectLocationColumns = `
	SELECT
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
	FROM locations`

// SQL-backed implementation of the LocationRepository port.
type SQLLocationRepository struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewSQLLocationRepository(db *sql.DB, dialect Dialect) *SQLLocationRepository {
	return &SQLLocationRepository{DB: db, Dialect: dialect}
}

// Return catalog locations matching filter, ordered by area then name.
func (s *SQLLocationRepository) ListLocations(
	ctx context.Context,
	filter ports.LocationFilter,
) (_ []domain.Location, err error) {
	defer obs.Time(ctx, "locations.List")(&err)

	if s.DB == nil {
		return nil, errors.New("location repository: DB is nil")
	}

	args := &argList{dialect: s.Dialect}
	where := make([]string, 0, 4)

	if v := cleanList(filter.Provinces); len(v) > 0 {
		where = append(where, "province IN "+args.in(v))
	}
	if v := cleanList(filter.Cities); len(v) > 0 {
		where = append(where, "city IN "+args.in(v))
	}
	if v := cleanList(filter.Districts); len(v) > 0 {
		where = append(where, "district IN "+args.in(v))
	}
	if q := strings.TrimSpace(filter.NameContains); q != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
		where = append(where, "LOWER(name) LIKE "+args.add(pattern)+` ESCAPE '\'`)
	}

	q := selectLocationColumns
	if len(where) > 0 {
		q += "\n\tWHERE " + strings.Join(where, "\n\t\tAND ")
	}
	q += "\n\tORDER BY province, city, district, name, location_id"
	if filter.Limit > 0 {
		q += "\n\tLIMIT " + args.add(filter.Limit)
	}

	rows, err := s.DB.QueryContext(ctx, q, args.args...)
	if err != nil {
		return nil, fmt.Errorf("list locations: query locations table: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Location, 0, 64)
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("list locations: %w", err)
		}
		out = append(out, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list locations: row iteration: %w", err)
	}

	return out, nil
}

// Return the locations found for ids keyed by id.
func (s *SQLLocationRepository) GetLocations(
	ctx context.Context,
	ids []string,
) (_ map[string]domain.Location, err error) {
	defer obs.Time(ctx, "locations.Get")(&err)

	if s.DB == nil {
		return nil, errors.New("location repository: DB is nil")
	}

	uniq := cleanList(ids)
	if len(uniq) == 0 {
		return map[string]domain.Location{}, nil
	}

	// Only the placeholder structure is interpolated; all values remain parameterized.
	args := &argList{dialect: s.Dialect}
	q := selectLocationColumns + "\n\tWHERE location_id IN " + args.in(uniq) + ";"

	rows, err := s.DB.QueryContext(ctx, q, args.args...)
	if err != nil {
		return nil, fmt.Errorf("get locations: query locations table: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.Location, len(uniq))
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("get locations: %w", err)
		}
		out[loc.ID] = loc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get locations: row iteration: %w", err)
	}

	return out, nil
}

func scanLocation(rows *sql.Rows) (domain.Location, error) {
	var (
		loc                 domain.Location
		openTime, closeTime string
	)

	err := rows.Scan(
		&loc.ID,
		&loc.Name,
		&loc.Province,
		&loc.City,
		&loc.District,
		&loc.Coordinates.Lon,
		&loc.Coordinates.Lat,
		&loc.MapURL,
		&openTime,
		&closeTime,
	)
	if err != nil {
		return domain.Location{}, fmt.Errorf("scan row: %w", err)
	}

	hours, err := parseHours(openTime, closeTime)
	if err != nil {
		return domain.Location{}, fmt.Errorf("location %q: %w", loc.ID, err)
	}
	loc.Hours = hours

	return loc, nil
}

// parseHours returns nil when either bound is blank.
func parseHours(openTime, closeTime string) (*domain.OpeningHours, error) {
	if strings.TrimSpace(openTime) == "" || strings.TrimSpace(closeTime) == "" {
		return nil, nil
	}

	o, err := domain.ParseClock(openTime)
	if err != nil {
		return nil, err
	}
	c, err := domain.ParseClock(closeTime)
	if err != nil {
		return nil, err
	}

	h := &domain.OpeningHours{Open: o, Close: c}
	if err := h.Validate(); err != nil {
		return nil, err
	}
	return h, nil
}

// likeEscaper makes user input match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func cleanList(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
