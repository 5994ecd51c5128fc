package kvstore

import "fmt"

// Dialect holds the driver-specific SQL for the kv table.
type Dialect struct {
	Name   string
	Driver string // database/sql driver name
	Goose  string // goose dialect

	getQuery    string
	upsertQuery string
	deleteQuery string
}

var (
	SQLite = Dialect{
		Name:        "sqlite",
		Driver:      "sqlite",
		Goose:       "sqlite3",
		getQuery:    `SELECT value FROM kv WHERE key = ?`,
		upsertQuery: `INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		deleteQuery: `DELETE FROM kv WHERE key = ?`,
	}

	Postgres = Dialect{
		Name:        "postgres",
		Driver:      "pgx",
		Goose:       "postgres",
		getQuery:    `SELECT value FROM kv WHERE key = $1`,
		upsertQuery: `INSERT INTO kv (key, value) VALUES ($1, $2) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		deleteQuery: `DELETE FROM kv WHERE key = $1`,
	}
)

// DialectFor resolves a configured driver name ("sqlite", "postgres", "pgx").
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "", "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "pgx":
		return Postgres, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported storage driver %q", driver)
	}
}
