package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const currentSchemaVersion = 2

var schema = []string{
	`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS companies (
		id         TEXT PRIMARY KEY,
		slug       TEXT NOT NULL UNIQUE,
		name       TEXT NOT NULL UNIQUE,
		website    TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tools (
		id         TEXT PRIMARY KEY,
		slug       TEXT NOT NULL UNIQUE,
		name       TEXT NOT NULL UNIQUE,
		category   TEXT NOT NULL,
		status     TEXT NOT NULL,
		company_id TEXT REFERENCES companies(id) ON DELETE SET NULL,
		info       TEXT NOT NULL,
		delta      TEXT NOT NULL DEFAULT '{}',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tools_status ON tools(status)`,
	`CREATE TABLE IF NOT EXISTS articles (
		id                TEXT PRIMARY KEY,
		slug              TEXT NOT NULL UNIQUE,
		title             TEXT NOT NULL,
		summary           TEXT NOT NULL DEFAULT '',
		content           TEXT NOT NULL DEFAULT '',
		ingestion_type    TEXT NOT NULL,
		source_url        TEXT NOT NULL DEFAULT '',
		source_name       TEXT NOT NULL DEFAULT '',
		category          TEXT NOT NULL DEFAULT '',
		tags              TEXT NOT NULL DEFAULT '[]',
		importance_score  REAL NOT NULL DEFAULT 0,
		sentiment_score   REAL NOT NULL DEFAULT 0,
		tool_mentions     TEXT NOT NULL DEFAULT '[]',
		company_mentions  TEXT NOT NULL DEFAULT '[]',
		qualitative       TEXT NOT NULL DEFAULT '[]',
		author            TEXT NOT NULL DEFAULT '',
		published_at      TEXT NOT NULL,
		ingested_at       TEXT NOT NULL,
		ingested_by       TEXT NOT NULL DEFAULT '',
		status            TEXT NOT NULL,
		is_processed      INTEGER NOT NULL DEFAULT 0,
		processed_at      TEXT,
		rankings_snapshot TEXT NOT NULL DEFAULT '[]',
		created_at        TEXT NOT NULL,
		updated_at        TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_articles_published ON articles(status, published_at)`,
	`CREATE TABLE IF NOT EXISTS rankings (
		id                TEXT PRIMARY KEY,
		period            TEXT NOT NULL UNIQUE,
		algorithm_version TEXT NOT NULL,
		is_current        INTEGER NOT NULL DEFAULT 0,
		published_at      TEXT,
		entries           TEXT NOT NULL,
		created_at        TEXT NOT NULL,
		updated_at        TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ranking_versions (
		id                  TEXT PRIMARY KEY,
		version             TEXT NOT NULL UNIQUE,
		period              TEXT NOT NULL,
		article_id          TEXT NOT NULL DEFAULT '',
		snapshot            BLOB NOT NULL,
		changes_summary     TEXT NOT NULL DEFAULT '',
		news_items_count    INTEGER NOT NULL DEFAULT 0,
		tools_affected      INTEGER NOT NULL DEFAULT 0,
		previous_version_id TEXT NOT NULL DEFAULT '',
		created_by          TEXT NOT NULL,
		created_at          TEXT NOT NULL,
		is_rollback         INTEGER NOT NULL DEFAULT 0,
		rolled_back_from_id TEXT NOT NULL DEFAULT '',
		seq                 INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS article_changes (
		id             TEXT PRIMARY KEY,
		article_id     TEXT NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
		ranking_id     TEXT NOT NULL DEFAULT '',
		tool_id        TEXT NOT NULL,
		tool_name      TEXT NOT NULL,
		article_url    TEXT NOT NULL DEFAULT '',
		metric_changes TEXT NOT NULL DEFAULT '{}',
		old_rank       INTEGER NOT NULL DEFAULT 0,
		new_rank       INTEGER NOT NULL DEFAULT 0,
		rank_change    INTEGER NOT NULL DEFAULT 0,
		old_score      REAL NOT NULL DEFAULT 0,
		new_score      REAL NOT NULL DEFAULT 0,
		score_change   REAL NOT NULL DEFAULT 0,
		change_type    TEXT NOT NULL,
		change_reason  TEXT NOT NULL DEFAULT '',
		is_applied     INTEGER NOT NULL DEFAULT 1,
		applied_at     TEXT NOT NULL,
		rolled_back    INTEGER NOT NULL DEFAULT 0,
		rolled_back_at TEXT,
		created_at     TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_article_changes_article ON article_changes(article_id)`,
	`CREATE TABLE IF NOT EXISTS processing_logs (
		id               TEXT PRIMARY KEY,
		article_id       TEXT NOT NULL DEFAULT '',
		action           TEXT NOT NULL,
		status           TEXT NOT NULL,
		started_at       TEXT NOT NULL,
		completed_at     TEXT,
		duration_ms      INTEGER NOT NULL DEFAULT 0,
		tools_affected   INTEGER NOT NULL DEFAULT 0,
		rankings_changed INTEGER NOT NULL DEFAULT 0,
		error_message    TEXT NOT NULL DEFAULT '',
		performed_by     TEXT NOT NULL,
		created_at       TEXT NOT NULL
	)`,
}

// upgrades holds the statements bringing a database from the previous
// schema version to the keyed one.
var upgrades = map[int][]string{
	2: {
		`ALTER TABLE article_changes ADD COLUMN ranking_id TEXT NOT NULL DEFAULT ''`,
		`UPDATE article_changes SET ranking_id = COALESCE((SELECT id FROM rankings WHERE is_current = 1), '')`,
	},
}

func (s *Store) migrate(ctx context.Context) error {
	return s.WithTx(ctx, func(tx *Store) error {
		for _, stmt := range schema {
			if _, err := tx.q.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("apply schema: %w", err)
			}
		}

		var version int
		err := tx.q.QueryRowContext(ctx, `SELECT version FROM schema_version`).Scan(&version)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			_, err = tx.q.ExecContext(ctx, `INSERT INTO schema_version(version) VALUES (?)`, currentSchemaVersion)
			if err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			for v := version + 1; v <= currentSchemaVersion; v++ {
				for _, stmt := range upgrades[v] {
					if _, err := tx.q.ExecContext(ctx, stmt); err != nil {
						return fmt.Errorf("upgrade schema to %d: %w", v, err)
					}
				}
			}
			if _, err := tx.q.ExecContext(ctx, `UPDATE schema_version SET version = ?`, currentSchemaVersion); err != nil {
				return err
			}
		}

		_, err = tx.q.ExecContext(ctx,
			`CREATE INDEX IF NOT EXISTS idx_article_changes_ranking ON article_changes(ranking_id, is_applied)`)

		return err
	})
}

func isUnique(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
