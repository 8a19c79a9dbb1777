package database

import (
	"path/filepath"
	"testing"
)

func TestNew(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}
}

func TestNew_InvalidPath(t *testing.T) {
	_, err := New("/invalid/path/that/does/not/exist/test.db")
	if err == nil {
		t.Fatal("Expected error for invalid path, got nil")
	}
}

func TestInitialize(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	if err := db.Initialize(); err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}

	tables := []string{
		"users",
		"projects",
		"tasks",
		"user_activities",
		"focus_sessions",
		"user_wallets",
		"notifications",
	}

	for _, table := range tables {
		var name string
		query := "SELECT name FROM sqlite_master WHERE type='table' AND name=?"
		if err := db.QueryRow(query, table).Scan(&name); err != nil {
			t.Errorf("Table %s was not created: %v", table, err)
		}
	}
}

func TestInitialize_Idempotent(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	if err := db.Initialize(); err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	if err := db.Initialize(); err != nil {
		t.Fatalf("Second initialize should be a no-op: %v", err)
	}
}

func TestInitialize_ActiveSessionIndex(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	if err := db.Initialize(); err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}

	// Seed one user, then prove the partial index rejects a second open
	// session while allowing one after the first closes.
	mustExec := func(query string, args ...any) {
		t.Helper()
		if _, err := db.Exec(query, args...); err != nil {
			t.Fatalf("Exec failed: %v", err)
		}
	}

	mustExec(`INSERT INTO users (id, name, email, password_hash, created_at, updated_at)
		VALUES ('u1', 'Test', 't@t.com', 'h', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`)
	mustExec(`INSERT INTO focus_sessions (id, user_id, start_time, duration, completed, ecoins_earned, created_at, updated_at)
		VALUES ('s1', 'u1', CURRENT_TIMESTAMP, 25, 0, 0, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`)

	_, err = db.Exec(`INSERT INTO focus_sessions (id, user_id, start_time, duration, completed, ecoins_earned, created_at, updated_at)
		VALUES ('s2', 'u1', CURRENT_TIMESTAMP, 25, 0, 0, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`)
	if err == nil {
		t.Fatal("Expected second open session to violate the partial unique index")
	}

	mustExec(`UPDATE focus_sessions SET completed = 1, end_time = CURRENT_TIMESTAMP WHERE id = 's1'`)
	mustExec(`INSERT INTO focus_sessions (id, user_id, start_time, duration, completed, ecoins_earned, created_at, updated_at)
		VALUES ('s3', 'u1', CURRENT_TIMESTAMP, 25, 0, 0, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`)
}
