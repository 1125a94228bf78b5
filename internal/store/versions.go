package store

import (
	"context"

	"github.com/SergeyParamoshkin/toolrank/internal/model"
)

// Version is a stored ranking version. Snapshot holds the encoded entries;
// the Entries field of the embedded model is not persisted.
type Version struct {
	model.RankingVersion
	Snapshot []byte
}

const versionColumns = `id, version, period, article_id, snapshot, changes_summary, news_items_count, tools_affected,
	previous_version_id, created_by, created_at, is_rollback, rolled_back_from_id`

func scanVersion(row scanner) (*Version, error) {
	var (
		v         Version
		createdAt string
		rollback  int
		err       error
	)
	if err = row.Scan(&v.ID, &v.Version, &v.Period, &v.ArticleID, &v.Snapshot, &v.ChangesSummary,
		&v.NewsItemsCount, &v.ToolsAffected, &v.PreviousID, &v.CreatedBy, &createdAt, &rollback,
		&v.RolledBackFromID); err != nil {
		return nil, err
	}
	v.IsRollback = rollback == 1
	if v.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}

	return &v, nil
}

// CreateVersion appends v to the history.
func (s *Store) CreateVersion(ctx context.Context, v *Version) error {
	v.ID = newID()
	v.CreatedAt = s.stamp()

	_, err := s.q.ExecContext(ctx, `INSERT INTO ranking_versions(`+versionColumns+`, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM ranking_versions))`,
		v.ID, v.Version, v.Period, v.ArticleID, v.Snapshot, v.ChangesSummary, v.NewsItemsCount, v.ToolsAffected,
		v.PreviousID, v.CreatedBy, formatTime(v.CreatedAt), boolInt(v.IsRollback), v.RolledBackFromID)
	if isUnique(err) {
		return ErrDuplicate
	}

	return err
}

func (s *Store) GetVersion(ctx context.Context, id string) (*Version, error) {
	v, err := scanVersion(s.q.QueryRowContext(ctx,
		`SELECT `+versionColumns+` FROM ranking_versions WHERE id = ? OR version = ?`, id, id))

	return v, notFound(err, "version "+id)
}

// LatestVersion returns the most recently created version.
func (s *Store) LatestVersion(ctx context.Context) (*Version, error) {
	v, err := scanVersion(s.q.QueryRowContext(ctx,
		`SELECT `+versionColumns+` FROM ranking_versions ORDER BY seq DESC LIMIT 1`))

	return v, notFound(err, "latest version")
}

// ListVersions returns versions newest first, without snapshots.
func (s *Store) ListVersions(ctx context.Context, limit, offset int) ([]*Version, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.q.QueryContext(ctx, `SELECT `+versionColumns+` FROM ranking_versions
		ORDER BY seq DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*Version{}
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		v.Snapshot = nil
		list = append(list, v)
	}

	return list, rows.Err()
}
