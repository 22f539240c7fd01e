package db

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// migrations is an ordered list of SQL statements to run.
// Every statement is idempotent and runs on each Open.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS listing_agents (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		name       TEXT    NOT NULL DEFAULT '',
		email      TEXT    NOT NULL UNIQUE COLLATE NOCASE,
		phone      TEXT    NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS listings (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		agent_id   INTEGER NOT NULL REFERENCES listing_agents(id) ON DELETE CASCADE,
		mls_id     TEXT    NOT NULL DEFAULT '',
		address    TEXT    NOT NULL DEFAULT '' COLLATE NOCASE,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		CHECK (mls_id <> '' OR address <> '')
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_listings_mls_id ON listings(mls_id) WHERE mls_id <> ''`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_listings_address ON listings(address) WHERE address <> ''`,
}

// migrate runs all migrations in order.
func migrate(db *sql.DB) error {
	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}

	// Column additions, skipped when the column already exists
	columnMigrations := []struct {
		table, column, definition string
	}{
		{"listing_agents", "brokerage", "TEXT NOT NULL DEFAULT ''"},
	}

	for _, cm := range columnMigrations {
		if err := addColumnIfNotExists(db, cm.table, cm.column, cm.definition); err != nil {
			return fmt.Errorf("adding %s.%s: %w", cm.table, cm.column, err)
		}
	}

	return nil
}

// addColumnIfNotExists adds a column to a table if it doesn't already exist.
func addColumnIfNotExists(db *sql.DB, table, column, definition string) error {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return fmt.Errorf("checking table info: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			slog.Warn("closing rows", "table", table, "error", cerr)
		}
	}()

	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return fmt.Errorf("scanning column info: %w", err)
		}
		if name == column {
			return nil // column already exists
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating columns: %w", err)
	}

	_, err = db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition))
	return err
}
