package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) string
		wantErr bool
	}{
		{
			name: "creates new database",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "contacts.db")
			},
		},
		{
			name: "creates nested directories",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "a", "b", "contacts.db")
			},
		},
		{
			name: "opens existing database",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "contacts.db")
				d, err := Open(path)
				if err != nil {
					t.Fatalf("setup: %v", err)
				}
				if err := d.Close(); err != nil {
					t.Fatalf("setup close: %v", err)
				}
				return path
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.setup(t)
			d, err := Open(path)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer func() {
				if err := d.Close(); err != nil {
					t.Errorf("close: %v", err)
				}
			}()

			if _, err := os.Stat(path); os.IsNotExist(err) {
				t.Error("database file was not created")
			}
		})
	}
}

func TestWALMode(t *testing.T) {
	d := openTestDB(t)

	var mode string
	if err := d.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want %q", mode, "wal")
	}
}

func TestForeignKeys(t *testing.T) {
	d := openTestDB(t)

	var fk int
	if err := d.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("foreign_keys = %d, want 1", fk)
	}
}

func TestMigrations(t *testing.T) {
	tests := []struct {
		name  string
		table string
		cols  []string
	}{
		{
			name:  "listing_agents table exists",
			table: "listing_agents",
			cols:  []string{"id", "name", "email", "phone", "created_at", "updated_at", "brokerage"},
		},
		{
			name:  "listings table exists",
			table: "listings",
			cols:  []string{"id", "agent_id", "mls_id", "address", "created_at"},
		},
	}

	d := openTestDB(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols := tableColumns(t, d, tt.table)
			if len(cols) != len(tt.cols) {
				t.Fatalf("got %d columns, want %d: %v", len(cols), len(tt.cols), cols)
			}
			for i, want := range tt.cols {
				if cols[i] != want {
					t.Errorf("column %d = %q, want %q", i, cols[i], want)
				}
			}
		})
	}
}

func TestListingConstraints(t *testing.T) {
	d := openTestDB(t)

	res, err := d.Exec(`INSERT INTO listing_agents (name, email) VALUES (?, ?)`, "Sara Agent", "sara@example.com")
	if err != nil {
		t.Fatalf("insert agent: %v", err)
	}
	agentID, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("last insert id: %v", err)
	}

	insert := `INSERT INTO listings (agent_id, mls_id, address) VALUES (?, ?, ?)`

	tests := []struct {
		name    string
		agentID int64
		mlsID   string
		address string
		wantErr bool
	}{
		{"mls id only", agentID, "1001", "", false},
		{"address only", agentID, "", "1 Elm St", false},
		{"both", agentID, "1002", "2 Elm St", false},
		{"neither", agentID, "", "", true},
		{"duplicate mls id", agentID, "1001", "3 Elm St", true},
		{"duplicate address ignoring case", agentID, "", "1 ELM ST", true},
		{"unknown agent", agentID + 100, "1003", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Exec(insert, tt.agentID, tt.mlsID, tt.address)
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestAgentEmailUnique(t *testing.T) {
	d := openTestDB(t)

	if _, err := d.Exec(`INSERT INTO listing_agents (email) VALUES (?)`, "mike@example.com"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := d.Exec(`INSERT INTO listing_agents (email) VALUES (?)`, "MIKE@example.com"); err == nil {
		t.Error("expected unique violation for same email in different case")
	}
}

func TestCascadeDelete(t *testing.T) {
	d := openTestDB(t)

	res, err := d.Exec(`INSERT INTO listing_agents (name, email) VALUES (?, ?)`, "Mike Listing", "mike@example.com")
	if err != nil {
		t.Fatalf("insert agent: %v", err)
	}
	agentID, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("last insert id: %v", err)
	}

	for i := 0; i < 3; i++ {
		_, err = d.Exec(
			`INSERT INTO listings (agent_id, mls_id) VALUES (?, ?)`,
			agentID, fmt.Sprintf("mls-%d", i),
		)
		if err != nil {
			t.Fatalf("insert listing %d: %v", i, err)
		}
	}

	var count int
	if err := d.QueryRow(`SELECT COUNT(*) FROM listings WHERE agent_id = ?`, agentID).Scan(&count); err != nil {
		t.Fatalf("count listings: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 listings, got %d", count)
	}

	if _, err := d.Exec(`DELETE FROM listing_agents WHERE id = ?`, agentID); err != nil {
		t.Fatalf("delete agent: %v", err)
	}

	if err := d.QueryRow(`SELECT COUNT(*) FROM listings WHERE agent_id = ?`, agentID).Scan(&count); err != nil {
		t.Fatalf("count listings after delete: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 listings after cascade delete, got %d", count)
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.db")

	// Second open must not fail on existing schema.
	d1, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := d1.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}

	d2, err := Open(path)
	if err != nil {
		t.Fatalf("second open (idempotency): %v", err)
	}
	if err := d2.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestDefaultPath(t *testing.T) {
	p, err := DefaultPath()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if filepath.Base(p) != "contacts.db" {
		t.Errorf("expected filename contacts.db, got %s", filepath.Base(p))
	}

	dir := filepath.Base(filepath.Dir(p))
	if dir != "resa" {
		t.Errorf("expected directory resa, got %s", dir)
	}
}

// openTestDB creates a temporary database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contacts.db")
	d, err := Open(path)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Errorf("close test db: %v", err)
		}
	})
	return d
}

// tableColumns returns column names for a table using PRAGMA table_info.
func tableColumns(t *testing.T, d *sql.DB, table string) []string {
	t.Helper()
	rows, err := d.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		t.Fatalf("pragma table_info(%s): %v", table, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			t.Errorf("close rows: %v", err)
		}
	}()

	var cols []string
	for rows.Next() {
		var cid int
		var name, typ string
		var notnull int
		var dflt *string
		var pk int
		if err := rows.Scan(&cid, &name, &typ, &notnull, &dflt, &pk); err != nil {
			t.Fatalf("scan: %v", err)
		}
		cols = append(cols, name)
	}
	return cols
}
