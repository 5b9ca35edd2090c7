package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateLegacyStatuses(db); err != nil {
		return fmt.Errorf("normalizing legacy statuses: %w", err)
	}
	return nil
}

// legacyStatuses maps the four-state values written by older builds onto
// the six-state model.
var legacyStatuses = map[string]string{
	"planned":   "not_started",
	"delayed":   "at_risk",
	"completed": "done",
}

// migrateLegacyStatuses rewrites old status values in both the indexed
// column and the JSON snapshot so the two never disagree.
func migrateLegacyStatuses(db *sql.DB) error {
	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting migration transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	for from, to := range legacyStatuses {
		if _, err := tx.ExecContext(ctx,
			`UPDATE initiatives SET status = ?, data = json_set(data, '$.status', ?) WHERE status = ?`,
			to, to, from); err != nil {
			return fmt.Errorf("rewriting status %s: %w", from, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing status migration: %w", err)
	}
	committed = true
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		email      TEXT NOT NULL COLLATE NOCASE UNIQUE,
		role       TEXT NOT NULL
		           CHECK(role IN ('admin','team_lead','director','senior_director','vp','svp','portfolio_operations')),
		avatar     TEXT NOT NULL DEFAULT '',
		team       TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS initiatives (
		id         TEXT PRIMARY KEY,
		title      TEXT NOT NULL DEFAULT '',
		owner_id   TEXT NOT NULL DEFAULT '',
		status     TEXT NOT NULL DEFAULT 'not_started',
		version    INTEGER NOT NULL DEFAULT 0,
		data       TEXT NOT NULL,
		deleted_at TEXT,
		updated_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_initiatives_owner ON initiatives(owner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_initiatives_status ON initiatives(status)`,

	`CREATE TABLE IF NOT EXISTS change_records (
		id                  TEXT PRIMARY KEY,
		initiative_id       TEXT NOT NULL,
		initiative_title    TEXT NOT NULL DEFAULT '',
		task_id             TEXT NOT NULL DEFAULT '',
		field               TEXT NOT NULL,
		old_value           TEXT NOT NULL DEFAULT '',
		new_value           TEXT NOT NULL DEFAULT '',
		changed_by          TEXT NOT NULL DEFAULT '',
		trade_off_source_id TEXT NOT NULL DEFAULT '',
		timestamp           TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_change_records_initiative ON change_records(initiative_id, field)`,
	`CREATE INDEX IF NOT EXISTS idx_change_records_timestamp ON change_records(timestamp)`,

	`CREATE TABLE IF NOT EXISTS app_config (
		id         INTEGER PRIMARY KEY CHECK(id = 1),
		data       TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS notifications (
		id               TEXT PRIMARY KEY,
		type             TEXT NOT NULL
		                 CHECK(type IN ('delay','new_comment','mention','trade_off')),
		user_id          TEXT NOT NULL,
		initiative_id    TEXT NOT NULL DEFAULT '',
		initiative_title TEXT NOT NULL DEFAULT '',
		title            TEXT NOT NULL DEFAULT '',
		message          TEXT NOT NULL DEFAULT '',
		metadata         TEXT NOT NULL DEFAULT '{}',
		read             INTEGER NOT NULL DEFAULT 0,
		timestamp        TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, read)`,

	`ALTER TABLE initiatives ADD COLUMN quarter TEXT NOT NULL DEFAULT ''`,
}
