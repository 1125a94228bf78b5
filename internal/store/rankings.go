package store

import (
	"context"
	"database/sql"

	"github.com/SergeyParamoshkin/toolrank/internal/model"
)

const rankingColumns = `id, period, algorithm_version, is_current, published_at, entries, created_at, updated_at`

func scanRanking(row scanner) (*model.Ranking, error) {
	var (
		r                    model.Ranking
		current              int
		publishedAt          sql.NullString
		entries              string
		createdAt, updatedAt string
		err                  error
	)
	if err = row.Scan(&r.ID, &r.Period, &r.AlgorithmVersion, &current, &publishedAt, &entries,
		&createdAt, &updatedAt); err != nil {
		return nil, err
	}
	r.IsCurrent = current == 1
	if err = decodeJSON(entries, &r.Entries); err != nil {
		return nil, err
	}
	if r.PublishedAt, err = parseNullTime(publishedAt); err != nil {
		return nil, err
	}
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if r.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	return &r, nil
}

// SaveRanking inserts r or replaces the ranking stored for the same period.
// The current flag is left untouched; use SetCurrent.
func (s *Store) SaveRanking(ctx context.Context, r *model.Ranking) error {
	entries, err := encodeJSON(nonNil(r.Entries))
	if err != nil {
		return err
	}
	now := s.stamp()

	existing, err := s.GetRanking(ctx, r.Period)
	switch {
	case err == nil:
		r.ID, r.CreatedAt, r.IsCurrent = existing.ID, existing.CreatedAt, existing.IsCurrent
		r.UpdatedAt = now
		_, err = s.q.ExecContext(ctx,
			`UPDATE rankings SET algorithm_version = ?, published_at = ?, entries = ?, updated_at = ? WHERE id = ?`,
			r.AlgorithmVersion, formatNullTime(r.PublishedAt), entries, formatTime(now), r.ID)

		return err
	case isNotFound(err):
		r.ID, r.CreatedAt, r.UpdatedAt, r.IsCurrent = newID(), now, now, false
		_, err = s.q.ExecContext(ctx, `INSERT INTO rankings(`+rankingColumns+`) VALUES (?, ?, ?, 0, ?, ?, ?, ?)`,
			r.ID, r.Period, r.AlgorithmVersion, formatNullTime(r.PublishedAt), entries, formatTime(now), formatTime(now))

		return err
	default:
		return err
	}
}

// UpdateEntries replaces the entries of a stored ranking.
func (s *Store) UpdateEntries(ctx context.Context, id string, entries []model.RankingEntry) error {
	enc, err := encodeJSON(nonNil(entries))
	if err != nil {
		return err
	}
	res, err := s.q.ExecContext(ctx, `UPDATE rankings SET entries = ?, updated_at = ? WHERE id = ?`,
		enc, formatTime(s.stamp()), id)

	return affected(res, err, "ranking "+id)
}

// SetCurrent marks the ranking with id as the only current one.
func (s *Store) SetCurrent(ctx context.Context, id string) error {
	return s.WithTx(ctx, func(tx *Store) error {
		if _, err := tx.q.ExecContext(ctx, `UPDATE rankings SET is_current = 0 WHERE is_current = 1`); err != nil {
			return err
		}
		res, err := tx.q.ExecContext(ctx, `UPDATE rankings SET is_current = 1 WHERE id = ?`, id)

		return affected(res, err, "ranking "+id)
	})
}

func (s *Store) GetRanking(ctx context.Context, period string) (*model.Ranking, error) {
	r, err := scanRanking(s.q.QueryRowContext(ctx, `SELECT `+rankingColumns+` FROM rankings WHERE period = ?`, period))

	return r, notFound(err, "ranking "+period)
}

func (s *Store) GetRankingByID(ctx context.Context, id string) (*model.Ranking, error) {
	r, err := scanRanking(s.q.QueryRowContext(ctx, `SELECT `+rankingColumns+` FROM rankings WHERE id = ?`, id))

	return r, notFound(err, "ranking "+id)
}

func (s *Store) CurrentRanking(ctx context.Context) (*model.Ranking, error) {
	r, err := scanRanking(s.q.QueryRowContext(ctx, `SELECT `+rankingColumns+` FROM rankings WHERE is_current = 1`))

	return r, notFound(err, "current ranking")
}

// PreviousRanking returns the latest ranking strictly before period.
func (s *Store) PreviousRanking(ctx context.Context, period string) (*model.Ranking, error) {
	r, err := scanRanking(s.q.QueryRowContext(ctx,
		`SELECT `+rankingColumns+` FROM rankings WHERE period < ? ORDER BY period DESC LIMIT 1`, period))

	return r, notFound(err, "ranking before "+period)
}

// ListRankings returns every stored ranking, oldest period first.
func (s *Store) ListRankings(ctx context.Context) ([]*model.Ranking, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+rankingColumns+` FROM rankings ORDER BY period`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*model.Ranking{}
	for rows.Next() {
		r, err := scanRanking(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, r)
	}

	return list, rows.Err()
}

// Periods lists stored periods, newest first.
func (s *Store) Periods(ctx context.Context) ([]string, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT period FROM rankings ORDER BY period DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	periods := []string{}
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}

	return periods, rows.Err()
}
