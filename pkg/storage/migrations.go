package storage

import (
	"database/sql"
	"fmt"
)

var migrations = []string{
	// Migration 1: subscriptions
	`CREATE TABLE IF NOT EXISTS subscriptions (
		id                TEXT PRIMARY KEY,
		name              TEXT NOT NULL,
		cost              REAL NOT NULL DEFAULT 0.0 CHECK(cost >= 0),
		billing_cycle     TEXT NOT NULL DEFAULT 'monthly',
		category          TEXT NOT NULL DEFAULT 'Other',
		next_billing_date TEXT NOT NULL DEFAULT '',
		last_used         TEXT,
		status            TEXT NOT NULL DEFAULT 'active'
		                  CHECK(status IN ('active', 'inactive', 'cancelled', 'paused')),
		notes             TEXT NOT NULL DEFAULT '',
		created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_subscriptions_status ON subscriptions(status);
	CREATE INDEX IF NOT EXISTS idx_subscriptions_category ON subscriptions(category);
	CREATE INDEX IF NOT EXISTS idx_subscriptions_next_billing ON subscriptions(next_billing_date);`,

	// Migration 2: single-row user settings
	`CREATE TABLE IF NOT EXISTS settings (
		id                    INTEGER PRIMARY KEY CHECK(id = 1),
		email_notifications   INTEGER NOT NULL DEFAULT 1,
		renewal_reminder_days INTEGER NOT NULL DEFAULT 7,
		unused_threshold_days INTEGER NOT NULL DEFAULT 90,
		renewal_window_days   INTEGER NOT NULL DEFAULT 30,
		updated_at            DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`,
}

// runMigrations applies pending schema migrations.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("create migration table: %w", err)
	}

	var current int
	if err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("check migration version: %w", err)
	}

	for i := current; i < len(migrations); i++ {
		if err := applyMigration(db, i+1, migrations[i]); err != nil {
			return err
		}
	}
	return nil
}

func applyMigration(db *sql.DB, version int, stmt string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin migration %d: %w", version, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(stmt); err != nil {
		return fmt.Errorf("run migration %d: %w", version, err)
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return fmt.Errorf("record migration %d: %w", version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %d: %w", version, err)
	}
	return nil
}

// SchemaVersion reports the highest applied migration.
func (s *SQLite) SchemaVersion() (int, error) {
	var v int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}
