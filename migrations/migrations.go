// Package migrations embeds SQL migration files and provides a function to apply them.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

// FS contains the embedded SQL migration files, one directory per dialect.
//
//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS

// Dialect names the goose dialect and the migration directory for a driver.
type Dialect struct {
	Goose string
	Dir   string
}

var (
	SQLite   = Dialect{Goose: "sqlite3", Dir: "sqlite"}
	Postgres = Dialect{Goose: "postgres", Dir: "postgres"}
)

// Prepare points goose at the embedded files for d.
func Prepare(d Dialect) error {
	sub, err := fs.Sub(FS, d.Dir)
	if err != nil {
		return fmt.Errorf("open %s migrations: %w", d.Dir, err)
	}
	goose.SetBaseFS(sub)
	if err := goose.SetDialect(d.Goose); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	return nil
}

// Run applies all pending migrations to the given database.
func Run(db *sql.DB, d Dialect) error {
	if err := Prepare(d); err != nil {
		return err
	}
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
