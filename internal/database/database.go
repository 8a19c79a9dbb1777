package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQL database connection
type DB struct {
	*sql.DB
}

// New creates a new SQLite database connection at the given path
func New(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite handles one writer at a time; keep the pool small
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("✅ SQLite database connected")

	return &DB{db}, nil
}

// Initialize creates all required tables and runs migrations
func (db *DB) Initialize() error {
	log.Println("🔍 Checking database schema...")

	if err := db.createTables(); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	if err := db.runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("✅ Database initialized successfully")
	return nil
}

func (db *DB) createTables() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			last_login_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id),
			name TEXT NOT NULL,
			description TEXT,
			color TEXT NOT NULL DEFAULT '#3498db',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id),
			project_id TEXT REFERENCES projects(id),
			title TEXT NOT NULL,
			description TEXT,
			status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'in_progress', 'completed')),
			priority TEXT NOT NULL DEFAULT 'medium' CHECK (priority IN ('low', 'medium', 'high')),
			due_date TIMESTAMP,
			completed_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS user_activities (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id),
			date TEXT NOT NULL,
			activity_type TEXT NOT NULL CHECK (activity_type IN ('login', 'task_created', 'task_completed', 'focus_session')),
			activity_count INTEGER NOT NULL DEFAULT 1,
			duration INTEGER,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			UNIQUE (user_id, date, activity_type)
		)`,
		`CREATE TABLE IF NOT EXISTS focus_sessions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id),
			task_id TEXT REFERENCES tasks(id),
			start_time TIMESTAMP NOT NULL,
			end_time TIMESTAMP,
			duration INTEGER NOT NULL,
			completed INTEGER NOT NULL DEFAULT 0,
			ecoins_earned INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS user_wallets (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL UNIQUE REFERENCES users(id),
			e_coins INTEGER NOT NULL DEFAULT 0,
			lifetime_earned INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id),
			task_id TEXT REFERENCES tasks(id),
			message TEXT NOT NULL,
			motivational_quote TEXT,
			type TEXT NOT NULL DEFAULT 'system' CHECK (type IN ('task_pending', 'task_due_soon', 'task_overdue', 'task_completed', 'system')),
			is_read INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		// One open session per user. A session is open while completed = 0 and
		// end_time IS NULL; the partial index makes the second concurrent
		// insert fail instead of silently creating two active sessions.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_focus_sessions_active
			ON focus_sessions (user_id) WHERE completed = 0 AND end_time IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks (user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_due ON tasks (status, due_date)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_user_date ON user_activities (user_id, date)`,
		`CREATE INDEX IF NOT EXISTS idx_focus_sessions_user ON focus_sessions (user_id, start_time)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications (user_id, created_at)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	return nil
}

// runMigrations runs database migrations for schema updates on existing databases
func (db *DB) runMigrations() error {
	// Helper function to check if column exists
	columnExists := func(tableName, columnName string) (bool, error) {
		rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", tableName))
		if err != nil {
			return false, err
		}
		defer rows.Close()

		for rows.Next() {
			var cid int
			var name, colType string
			var notNull, pk int
			var dfltValue sql.NullString
			if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
				return false, err
			}
			if name == columnName {
				return true, nil
			}
		}
		return false, rows.Err()
	}

	// Migration: Add last_login_at column to users table (if missing)
	if exists, _ := columnExists("users", "last_login_at"); !exists {
		log.Println("📦 Running migration: Adding last_login_at to users table")
		if _, err := db.Exec("ALTER TABLE users ADD COLUMN last_login_at TIMESTAMP"); err != nil {
			return fmt.Errorf("failed to add last_login_at to users: %w", err)
		}
		log.Println("✅ Migration completed: users.last_login_at added")
	}

	// Migration: Add task_id column to focus_sessions table (if missing)
	if exists, _ := columnExists("focus_sessions", "task_id"); !exists {
		log.Println("📦 Running migration: Adding task_id to focus_sessions table")
		if _, err := db.Exec("ALTER TABLE focus_sessions ADD COLUMN task_id TEXT REFERENCES tasks(id)"); err != nil {
			return fmt.Errorf("failed to add task_id to focus_sessions: %w", err)
		}
		log.Println("✅ Migration completed: focus_sessions.task_id added")
	}

	// Migration: Add motivational_quote column to notifications table (if missing)
	if exists, _ := columnExists("notifications", "motivational_quote"); !exists {
		log.Println("📦 Running migration: Adding motivational_quote to notifications table")
		if _, err := db.Exec("ALTER TABLE notifications ADD COLUMN motivational_quote TEXT"); err != nil {
			return fmt.Errorf("failed to add motivational_quote to notifications: %w", err)
		}
		log.Println("✅ Migration completed: notifications.motivational_quote added")
	}

	return nil
}
