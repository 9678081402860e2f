package storage

import (
	"database/sql"
	"fmt"
)

var migrations = []string{
	// Migration 1: Initial schema
	`CREATE TABLE IF NOT EXISTS tracked_items (
		id                 TEXT PRIMARY KEY,
		owner_id           TEXT NOT NULL DEFAULT '',
		platform           TEXT NOT NULL CHECK(platform IN ('amazon', 'ebay', 'walmart', 'bestbuy', 'target', 'newegg', 'custom')),
		product_uid        TEXT NOT NULL,
		canonical_id       TEXT NOT NULL DEFAULT '',
		title              TEXT NOT NULL DEFAULT '',
		image_url          TEXT NOT NULL DEFAULT '',
		product_url        TEXT NOT NULL DEFAULT '',
		brand              TEXT NOT NULL DEFAULT '',
		category           TEXT NOT NULL DEFAULT '',
		current_price      REAL NOT NULL DEFAULT 0,
		original_price     REAL NOT NULL DEFAULT 0,
		lowest_price       REAL NOT NULL DEFAULT 0,
		highest_price      REAL NOT NULL DEFAULT 0,
		currency           TEXT NOT NULL DEFAULT 'USD',
		target_price       REAL NOT NULL DEFAULT 0 CHECK(target_price >= 0),
		alert_status       TEXT NOT NULL DEFAULT 'pending' CHECK(alert_status IN ('pending', 'triggered', 'expired', 'disabled')),
		alert_triggered_at DATETIME,
		notify_email       TEXT NOT NULL DEFAULT '',
		is_active          INTEGER NOT NULL DEFAULT 1,
		check_count        INTEGER NOT NULL DEFAULT 0,
		last_checked       DATETIME,
		last_error         TEXT NOT NULL DEFAULT '',
		consecutive_errors INTEGER NOT NULL DEFAULT 0,
		created_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_items_platform_product ON tracked_items(platform, product_uid);
	CREATE INDEX IF NOT EXISTS idx_items_owner_active ON tracked_items(owner_id, is_active);

	CREATE TABLE IF NOT EXISTS price_observations (
		id           TEXT PRIMARY KEY,
		item_id      TEXT NOT NULL REFERENCES tracked_items(id) ON DELETE CASCADE,
		price        REAL NOT NULL,
		currency     TEXT NOT NULL DEFAULT 'USD',
		availability TEXT NOT NULL DEFAULT 'unknown',
		seller       TEXT NOT NULL DEFAULT '',
		condition    TEXT NOT NULL DEFAULT '',
		observed_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_observations_item_time ON price_observations(item_id, observed_at);

	CREATE TABLE IF NOT EXISTS alert_rules (
		id              TEXT PRIMARY KEY,
		item_id         TEXT NOT NULL REFERENCES tracked_items(id) ON DELETE CASCADE,
		kind            TEXT NOT NULL DEFAULT 'price_drop' CHECK(kind IN ('price_drop', 'price_increase', 'back_in_stock')),
		target_price    REAL NOT NULL DEFAULT 0,
		status          TEXT NOT NULL DEFAULT 'pending' CHECK(status IN ('pending', 'triggered', 'expired', 'disabled')),
		triggered_at    DATETIME,
		triggered_price REAL NOT NULL DEFAULT 0,
		expires_at      DATETIME,
		created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_rules_item_status ON alert_rules(item_id, status);

	CREATE TABLE IF NOT EXISTS notification_records (
		id        TEXT PRIMARY KEY,
		owner_id  TEXT NOT NULL DEFAULT '',
		item_id   TEXT NOT NULL DEFAULT '',
		channel   TEXT NOT NULL,
		recipient TEXT NOT NULL DEFAULT '',
		subject   TEXT NOT NULL DEFAULT '',
		status    TEXT NOT NULL CHECK(status IN ('sent', 'failed')),
		error     TEXT NOT NULL DEFAULT '',
		sent_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_notifications_item_time ON notification_records(item_id, sent_at);

	CREATE TABLE IF NOT EXISTS notification_settings (
		id                    TEXT PRIMARY KEY,
		owner_id              TEXT NOT NULL,
		channel               TEXT NOT NULL,
		enabled               INTEGER NOT NULL DEFAULT 1,
		recipient             TEXT NOT NULL DEFAULT '',
		secret                TEXT NOT NULL DEFAULT '',
		notify_price_drop     INTEGER NOT NULL DEFAULT 1,
		notify_price_increase INTEGER NOT NULL DEFAULT 0,
		notify_back_in_stock  INTEGER NOT NULL DEFAULT 1,
		created_at            DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at            DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(owner_id, channel)
	);

	CREATE TABLE IF NOT EXISTS daily_stats (
		id                  TEXT PRIMARY KEY,
		stat_date           DATETIME NOT NULL UNIQUE,
		total_items         INTEGER NOT NULL DEFAULT 0,
		checks_today        INTEGER NOT NULL DEFAULT 0,
		alerts_today        INTEGER NOT NULL DEFAULT 0,
		notifications_today INTEGER NOT NULL DEFAULT 0,
		errors_today        INTEGER NOT NULL DEFAULT 0,
		created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`,
}

// runMigrations applies pending schema migrations.
func runMigrations(db *sql.DB) error {
	// Ensure migration tracking table exists
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("create migration table: %w", err)
	}

	var currentVersion int
	row := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("check migration version: %w", err)
	}

	for i := currentVersion; i < len(migrations); i++ {
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", i+1, err)
		}

		if _, err := tx.Exec(migrations[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("run migration %d: %w", i+1, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", i+1); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", i+1, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", i+1, err)
		}
	}

	return nil
}
