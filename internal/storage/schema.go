package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// The DDL is written once; Postgres gets zone-aware timestamps and double
// precision floats.
var postgresTypes = strings.NewReplacer(
	" TIMESTAMP", " TIMESTAMPTZ",
	" REAL", " DOUBLE PRECISION",
)

func Migrate(ctx context.Context, db *sql.DB, dialect Dialect) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS mandalarts (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMP NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sub_goals (
			id TEXT PRIMARY KEY,
			mandalart_id TEXT NOT NULL,
			title TEXT NOT NULL,
			position INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL,
			UNIQUE (mandalart_id, position),
			FOREIGN KEY(mandalart_id) REFERENCES mandalarts(id)
		);`,
		`CREATE TABLE IF NOT EXISTS actions (
			id TEXT PRIMARY KEY,
			sub_goal_id TEXT NOT NULL,
			title TEXT NOT NULL,
			position INTEGER NOT NULL,
			type TEXT NOT NULL,

			routine_frequency TEXT,
			routine_weekdays TEXT,
			routine_count_per_period INTEGER,

			mission_completion_type TEXT,
			mission_period_cycle TEXT,
			mission_current_period_start TIMESTAMP,
			mission_current_period_end TIMESTAMP,
			mission_status TEXT,

			ai_suggestion TEXT,
			created_at TIMESTAMP NOT NULL,

			FOREIGN KEY(sub_goal_id) REFERENCES sub_goals(id)
		);`,
		// Append-only. xp_awarded lets an uncheck reverse exactly what was paid.
		`CREATE TABLE IF NOT EXISTS check_history (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			action_id TEXT NOT NULL,
			checked_at TIMESTAMP NOT NULL,
			xp_awarded INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY(action_id) REFERENCES actions(id)
		);`,
		`CREATE TABLE IF NOT EXISTS user_bonus_xp (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			bonus_type TEXT NOT NULL,
			multiplier REAL NOT NULL,
			activated_at TIMESTAMP NOT NULL,
			expires_at TIMESTAMP NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS user_levels (
			user_id TEXT PRIMARY KEY,
			level INTEGER NOT NULL DEFAULT 1,
			total_xp INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS xp_awards (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			awarded_on TEXT NOT NULL,
			xp INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL,
			UNIQUE (user_id, kind, awarded_on)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_mandalarts_user_id ON mandalarts(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_actions_sub_goal_id ON actions(sub_goal_id);`,
		`CREATE INDEX IF NOT EXISTS idx_check_history_user_checked_at ON check_history(user_id, checked_at);`,
		`CREATE INDEX IF NOT EXISTS idx_check_history_action_id ON check_history(action_id);`,
		`CREATE INDEX IF NOT EXISTS idx_user_bonus_xp_user_type ON user_bonus_xp(user_id, bonus_type, expires_at);`,
	}

	for _, stmt := range stmts {
		if dialect == DialectPostgres {
			stmt = postgresTypes.Replace(stmt)
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
