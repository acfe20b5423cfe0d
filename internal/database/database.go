package database

import (
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Open connects using driver ("sqlite" or "pgx") and dsn.
func Open(driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case "sqlite", "pgx":
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	if driver == "sqlite" {
		// SQLite allows one writer; :memory: databases are per connection.
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// Connect opens the configured database or exits.
func Connect(driver, dsn string) *sqlx.DB {
	db, err := Open(driver, dsn)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	return db
}
