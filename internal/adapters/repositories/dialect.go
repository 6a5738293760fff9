package repositories

import (
	"strconv"
	"strings"
)

// Dialect selects placeholder syntax for the catalog database.
type Dialect int

const (
	DialectSQLite Dialect = iota
	DialectPostgres
)

// DialectFor maps a platform/db driver name to its Dialect.
func DialectFor(driver string) Dialect {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "postgres", "pgx":
		return DialectPostgres
	default:
		return DialectSQLite
	}
}

// placeholder returns the n-th (1-based) bind parameter.
func (d Dialect) placeholder(n int) string {
	if d == DialectPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// argList accumulates bind arguments and renders their placeholders.
type argList struct {
	dialect Dialect
	args    []any
}

func (a *argList) add(v any) string {
	a.args = append(a.args, v)
	return a.dialect.placeholder(len(a.args))
}

// in renders "(p1, p2, ...)" for values.
func (a *argList) in(values []string) string {
	ph := make([]string, 0, len(values))
	for _, v := range values {
		ph = append(ph, a.add(v))
	}
	return "(" + strings.Join(ph, ", ") + ")"
}
