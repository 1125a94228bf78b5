package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	"github.com/SergeyParamoshkin/toolrank/internal/model"
)

// Slugify lowercases name and joins its alphanumeric runs with dashes.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
		default:
			dash = true
		}
	}

	return b.String()
}

func (s *Store) CreateCompany(ctx context.Context, c *model.Company) error {
	now := s.stamp()
	c.ID = newID()
	if c.Slug == "" {
		c.Slug = Slugify(c.Name)
	}
	c.CreatedAt, c.UpdatedAt = now, now

	_, err := s.q.ExecContext(ctx,
		`INSERT INTO companies(id, slug, name, website, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Slug, c.Name, c.Website, formatTime(now), formatTime(now))
	if isUnique(err) {
		return fmt.Errorf("company %q: %w", c.Name, ErrDuplicate)
	}

	return err
}

const companyColumns = `id, slug, name, website, created_at, updated_at`

func scanCompany(row scanner) (*model.Company, error) {
	var (
		c                    model.Company
		createdAt, updatedAt string
		err                  error
	)
	if err = row.Scan(&c.ID, &c.Slug, &c.Name, &c.Website, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	return &c, nil
}

// GetCompany looks a company up by id, slug or exact name.
func (s *Store) GetCompany(ctx context.Context, key string) (*model.Company, error) {
	c, err := scanCompany(s.q.QueryRowContext(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE id = ? OR slug = ? OR name = ? COLLATE NOCASE`, key, key, key))

	return c, notFound(err, "company "+key)
}

func (s *Store) ListCompanies(ctx context.Context) ([]*model.Company, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+companyColumns+` FROM companies ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*model.Company{}
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}

	return list, rows.Err()
}

const toolColumns = `id, slug, name, category, status, company_id, info, delta, created_at, updated_at`

func scanTool(row scanner) (*model.Tool, error) {
	var (
		t                    model.Tool
		companyID            sql.NullString
		info, delta          string
		createdAt, updatedAt string
		err                  error
	)
	if err = row.Scan(&t.ID, &t.Slug, &t.Name, &t.Category, &t.Status, &companyID,
		&info, &delta, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	t.CompanyID = companyID.String
	if err = decodeJSON(info, &t.Info); err != nil {
		return nil, err
	}
	if err = decodeJSON(delta, &t.Delta); err != nil {
		return nil, err
	}
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	return &t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (s *Store) CreateTool(ctx context.Context, t *model.Tool) error {
	now := s.stamp()
	t.ID = newID()
	if t.Slug == "" {
		t.Slug = Slugify(t.Name)
	}
	if t.Status == "" {
		t.Status = model.StatusActive
	}
	t.CreatedAt, t.UpdatedAt = now, now

	info, err := encodeJSON(t.Info)
	if err != nil {
		return err
	}
	delta, err := encodeJSON(t.Delta)
	if err != nil {
		return err
	}

	_, err = s.q.ExecContext(ctx,
		`INSERT INTO tools(`+toolColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Slug, t.Name, t.Category, t.Status, nullString(t.CompanyID), info, delta,
		formatTime(now), formatTime(now))
	if isUnique(err) {
		return fmt.Errorf("tool %q: %w", t.Name, ErrDuplicate)
	}

	return err
}

// UpdateTool replaces the mutable columns of t.
func (s *Store) UpdateTool(ctx context.Context, t *model.Tool) error {
	info, err := encodeJSON(t.Info)
	if err != nil {
		return err
	}
	delta, err := encodeJSON(t.Delta)
	if err != nil {
		return err
	}
	t.UpdatedAt = s.stamp()

	res, err := s.q.ExecContext(ctx,
		`UPDATE tools SET slug = ?, name = ?, category = ?, status = ?, company_id = ?, info = ?, delta = ?, updated_at = ?
		WHERE id = ?`,
		t.Slug, t.Name, t.Category, t.Status, nullString(t.CompanyID), info, delta, formatTime(t.UpdatedAt), t.ID)
	if isUnique(err) {
		return fmt.Errorf("tool %q: %w", t.Name, ErrDuplicate)
	}

	return affected(res, err, "tool "+t.ID)
}

func (s *Store) DeleteTool(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM tools WHERE id = ?`, id)

	return affected(res, err, "tool "+id)
}

func affected(res sql.Result, err error, what string) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}

	return nil
}

func (s *Store) GetTool(ctx context.Context, id string) (*model.Tool, error) {
	t, err := scanTool(s.q.QueryRowContext(ctx, `SELECT `+toolColumns+` FROM tools WHERE id = ?`, id))

	return t, notFound(err, "tool "+id)
}

func (s *Store) GetToolBySlug(ctx context.Context, slug string) (*model.Tool, error) {
	t, err := scanTool(s.q.QueryRowContext(ctx, `SELECT `+toolColumns+` FROM tools WHERE slug = ?`, slug))

	return t, notFound(err, "tool "+slug)
}

// ToolFilter narrows ListTools. Zero values match everything.
type ToolFilter struct {
	Status   string
	Category string
	Limit    int
	Offset   int
}

func (s *Store) ListTools(ctx context.Context, f ToolFilter) ([]*model.Tool, error) {
	query := `SELECT ` + toolColumns + ` FROM tools WHERE (? = '' OR status = ?) AND (? = '' OR category = ?) ORDER BY name`
	args := []any{f.Status, f.Status, f.Category, f.Category}
	if f.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*model.Tool{}
	for rows.Next() {
		t, err := scanTool(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}

	return list, rows.Err()
}

// SetToolDelta stores the curator score adjustments of a tool.
func (s *Store) SetToolDelta(ctx context.Context, id string, delta model.Scores) error {
	enc, err := encodeJSON(delta)
	if err != nil {
		return err
	}
	res, err := s.q.ExecContext(ctx, `UPDATE tools SET delta = ?, updated_at = ? WHERE id = ?`,
		enc, formatTime(s.stamp()), id)

	return affected(res, err, "tool "+id)
}
