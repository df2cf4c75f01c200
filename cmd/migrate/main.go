package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/bilgisen/sevennews/migrations"
)

func main() {
	dialect := flag.String("dialect", envOrDefault("STORE_BACKEND", "sqlite"), "sqlite or postgres")
	dsn := flag.String("dsn", "", "database path or connection string (default from SQLITE_PATH or DATABASE_URL)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: migrate [-dialect sqlite|postgres] [-dsn dsn] <command>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Commands:")
		fmt.Fprintln(os.Stderr, "  up          Migrate to the latest version")
		fmt.Fprintln(os.Stderr, "  up-one      Migrate one version up")
		fmt.Fprintln(os.Stderr, "  down        Roll back one version")
		fmt.Fprintln(os.Stderr, "  status      Show migration status")
		fmt.Fprintln(os.Stderr, "  version     Show current version")
		fmt.Fprintln(os.Stderr, "  reset       Roll back all migrations")
		os.Exit(1)
	}

	var (
		driver string
		d      migrations.Dialect
	)
	switch *dialect {
	case "sqlite":
		driver, d = "sqlite", migrations.SQLite
		if *dsn == "" {
			*dsn = envOrDefault("SQLITE_PATH", "./data/news.db")
		}
	case "postgres":
		driver, d = "pgx", migrations.Postgres
		if *dsn == "" {
			*dsn = os.Getenv("DATABASE_URL")
		}
	default:
		log.Fatalf("unknown dialect: %s", *dialect)
	}
	if *dsn == "" {
		log.Fatalf("no database given for %s", *dialect)
	}

	db, err := sql.Open(driver, *dsn)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	if err := migrations.Prepare(d); err != nil {
		log.Fatalf("prepare: %v", err)
	}

	cmd := args[0]
	switch cmd {
	case "up":
		err = goose.Up(db, ".")
	case "up-one":
		err = goose.UpByOne(db, ".")
	case "down":
		err = goose.Down(db, ".")
	case "status":
		err = goose.Status(db, ".")
	case "version":
		err = goose.Version(db, ".")
	case "reset":
		err = goose.Reset(db, ".")
	default:
		log.Fatalf("unknown command: %s", cmd)
	}

	if err != nil {
		log.Fatalf("%s: %v", cmd, err)
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
