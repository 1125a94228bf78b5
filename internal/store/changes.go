package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/SergeyParamoshkin/toolrank/internal/model"
)

const changeColumns = `id, article_id, ranking_id, tool_id, tool_name, article_url, metric_changes, old_rank,
	new_rank, rank_change, old_score, new_score, score_change, change_type, change_reason, is_applied, applied_at,
	rolled_back, rolled_back_at, created_at`

func scanChange(row scanner) (*model.ArticleChange, error) {
	var (
		c                    model.ArticleChange
		metrics              string
		applied, rolledBack  int
		appliedAt, createdAt string
		rolledBackAt         sql.NullString
		err                  error
	)
	if err = row.Scan(&c.ID, &c.ArticleID, &c.RankingID, &c.ToolID, &c.ToolName, &c.ArticleURL, &metrics, &c.OldRank,
		&c.NewRank, &c.RankChange, &c.OldScore, &c.NewScore, &c.ScoreChange, &c.ChangeType, &c.ChangeReason,
		&applied, &appliedAt, &rolledBack, &rolledBackAt, &createdAt); err != nil {
		return nil, err
	}
	c.IsApplied, c.RolledBack = applied == 1, rolledBack == 1
	if err = decodeJSON(metrics, &c.MetricChanges); err != nil {
		return nil, err
	}
	if c.AppliedAt, err = parseTime(appliedAt); err != nil {
		return nil, err
	}
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if c.RolledBackAt, err = parseNullTime(rolledBackAt); err != nil {
		return nil, err
	}

	return &c, nil
}

// CreateChanges records the per-tool effects of an article.
func (s *Store) CreateChanges(ctx context.Context, changes []*model.ArticleChange) error {
	now := s.stamp()
	for _, c := range changes {
		metrics, err := encodeJSON(c.MetricChanges)
		if err != nil {
			return err
		}
		c.ID, c.CreatedAt = newID(), now
		if c.AppliedAt.IsZero() {
			c.AppliedAt = now
		}

		if _, err := s.q.ExecContext(ctx, `INSERT INTO article_changes(`+changeColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.ArticleID, c.RankingID, c.ToolID, c.ToolName, c.ArticleURL, metrics, c.OldRank, c.NewRank, c.RankChange,
			c.OldScore, c.NewScore, c.ScoreChange, c.ChangeType, c.ChangeReason, boolInt(c.IsApplied),
			formatTime(c.AppliedAt), boolInt(c.RolledBack), formatNullTime(c.RolledBackAt),
			formatTime(now)); err != nil {
			return err
		}
	}

	return nil
}

// AppliedChanges returns the changes of an article that are still in effect,
// on the ranking with rankingID or on any ranking when rankingID is empty.
func (s *Store) AppliedChanges(ctx context.Context, articleID, rankingID string) ([]*model.ArticleChange, error) {
	return s.listChanges(ctx, `WHERE article_id = ? AND (? = '' OR ranking_id = ?) AND is_applied = 1 AND rolled_back = 0`,
		articleID, rankingID, rankingID)
}

// ArticleChanges returns every change row recorded for an article.
func (s *Store) ArticleChanges(ctx context.Context, articleID string) ([]*model.ArticleChange, error) {
	return s.listChanges(ctx, `WHERE article_id = ?`, articleID)
}

func (s *Store) listChanges(ctx context.Context, where string, args ...any) ([]*model.ArticleChange, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+changeColumns+` FROM article_changes `+where+
		` ORDER BY created_at, tool_name`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*model.ArticleChange{}
	for rows.Next() {
		c, err := scanChange(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}

	return list, rows.Err()
}

// MarkRolledBack flags the changes of an article as reverted, on the ranking
// with rankingID or on every ranking when rankingID is empty.
func (s *Store) MarkRolledBack(ctx context.Context, articleID, rankingID string, at time.Time) (int, error) {
	res, err := s.q.ExecContext(ctx, `UPDATE article_changes SET rolled_back = 1, is_applied = 0, rolled_back_at = ?
		WHERE article_id = ? AND (? = '' OR ranking_id = ?) AND rolled_back = 0`,
		formatTime(at), articleID, rankingID, rankingID)

	return rowsAffected(res, err)
}

// SupersedeChanges unflags the applied changes of a ranking whose entries
// were rewritten. They stay on record but are no longer reverted.
func (s *Store) SupersedeChanges(ctx context.Context, rankingID string) (int, error) {
	res, err := s.q.ExecContext(ctx, `UPDATE article_changes SET is_applied = 0
		WHERE ranking_id = ? AND is_applied = 1 AND rolled_back = 0`, rankingID)

	return rowsAffected(res, err)
}

func rowsAffected(res sql.Result, err error) (int, error) {
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()

	return int(n), err
}

const logColumns = `id, article_id, action, status, started_at, completed_at, duration_ms, tools_affected,
	rankings_changed, error_message, performed_by, created_at`

// CreateLog stores a processing log entry.
func (s *Store) CreateLog(ctx context.Context, l *model.ProcessingLog) error {
	l.ID, l.CreatedAt = newID(), s.stamp()
	_, err := s.q.ExecContext(ctx, `INSERT INTO processing_logs(`+logColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.ArticleID, l.Action, l.Status, formatTime(l.StartedAt), formatNullTime(l.CompletedAt),
		l.DurationMs, l.ToolsAffected, l.RankingsChanged, l.ErrorMessage, l.PerformedBy, formatTime(l.CreatedAt))

	return err
}

// ListLogs returns processing logs newest first, optionally for one article.
// A limit of zero or less returns every log.
func (s *Store) ListLogs(ctx context.Context, articleID string, limit, offset int) ([]*model.ProcessingLog, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.q.QueryContext(ctx, `SELECT `+logColumns+` FROM processing_logs
		WHERE (? = '' OR article_id = ?) ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		articleID, articleID, limit, max(offset, 0))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*model.ProcessingLog{}
	for rows.Next() {
		var (
			l                    model.ProcessingLog
			startedAt, createdAt string
			completedAt          sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.ArticleID, &l.Action, &l.Status, &startedAt, &completedAt, &l.DurationMs,
			&l.ToolsAffected, &l.RankingsChanged, &l.ErrorMessage, &l.PerformedBy, &createdAt); err != nil {
			return nil, err
		}
		if l.StartedAt, err = parseTime(startedAt); err != nil {
			return nil, err
		}
		if l.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if l.CompletedAt, err = parseNullTime(completedAt); err != nil {
			return nil, err
		}
		list = append(list, &l)
	}

	return list, rows.Err()
}
