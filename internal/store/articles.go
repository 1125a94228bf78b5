package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/SergeyParamoshkin/toolrank/internal/model"
)

const articleColumns = `id, slug, title, summary, content, ingestion_type, source_url, source_name, category, tags,
	importance_score, sentiment_score, tool_mentions, company_mentions, qualitative, author, published_at,
	ingested_at, ingested_by, status, is_processed, processed_at, rankings_snapshot, created_at, updated_at`

type articleJSON struct {
	tags, mentions, companies, qualitative, snapshot string
}

func encodeArticle(a *model.Article) (articleJSON, error) {
	var (
		enc articleJSON
		err error
	)
	if enc.tags, err = encodeJSON(nonNil(a.Tags)); err != nil {
		return enc, err
	}
	if enc.mentions, err = encodeJSON(nonNil(a.ToolMentions)); err != nil {
		return enc, err
	}
	if enc.companies, err = encodeJSON(nonNil(a.CompanyMentions)); err != nil {
		return enc, err
	}
	if enc.qualitative, err = encodeJSON(nonNil(a.Qualitative)); err != nil {
		return enc, err
	}
	if enc.snapshot, err = encodeJSON(nonNil(a.RankingsSnapshot)); err != nil {
		return enc, err
	}

	return enc, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}

	return s
}

func scanArticle(row scanner) (*model.Article, error) {
	var (
		a           model.Article
		enc         articleJSON
		processed   int
		processedAt sql.NullString
		published   string
		ingested    string
		created     string
		upd         string
		err         error
	)
	if err = row.Scan(&a.ID, &a.Slug, &a.Title, &a.Summary, &a.Content, &a.IngestionType, &a.SourceURL,
		&a.SourceName, &a.Category, &enc.tags, &a.ImportanceScore, &a.Sentiment, &enc.mentions, &enc.companies,
		&enc.qualitative, &a.Author, &published, &ingested, &a.IngestedBy, &a.Status, &processed, &processedAt,
		&enc.snapshot, &created, &upd); err != nil {
		return nil, err
	}
	a.IsProcessed = processed == 1

	for _, d := range []struct {
		src string
		dst any
	}{
		{enc.tags, &a.Tags},
		{enc.mentions, &a.ToolMentions},
		{enc.companies, &a.CompanyMentions},
		{enc.qualitative, &a.Qualitative},
		{enc.snapshot, &a.RankingsSnapshot},
	} {
		if err = decodeJSON(d.src, d.dst); err != nil {
			return nil, err
		}
	}

	for _, p := range []struct {
		src string
		dst *time.Time
	}{
		{published, &a.PublishedAt},
		{ingested, &a.IngestedAt},
		{created, &a.CreatedAt},
		{upd, &a.UpdatedAt},
	} {
		if *p.dst, err = parseTime(p.src); err != nil {
			return nil, err
		}
	}
	if a.ProcessedAt, err = parseNullTime(processedAt); err != nil {
		return nil, err
	}

	return &a, nil
}

// CreateArticle inserts a, assigning id, slug and timestamps.
func (s *Store) CreateArticle(ctx context.Context, a *model.Article) error {
	now := s.stamp()
	a.ID = newID()
	if a.Slug == "" {
		a.Slug = Slugify(a.Title)
	}
	a.Slug = fmt.Sprintf("%s-%s", a.Slug, a.ID[:8])
	if a.Status == "" {
		a.Status = model.ArticleActive
	}
	if a.IngestionType == "" {
		a.IngestionType = model.IngestText
	}
	if a.PublishedAt.IsZero() {
		a.PublishedAt = now
	}
	a.IngestedAt, a.CreatedAt, a.UpdatedAt = now, now, now

	enc, err := encodeArticle(a)
	if err != nil {
		return err
	}

	_, err = s.q.ExecContext(ctx, `INSERT INTO articles(`+articleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Slug, a.Title, a.Summary, a.Content, a.IngestionType, a.SourceURL, a.SourceName, a.Category,
		enc.tags, a.ImportanceScore, a.Sentiment, enc.mentions, enc.companies, enc.qualitative, a.Author,
		formatTime(a.PublishedAt), formatTime(now), a.IngestedBy, a.Status, boolInt(a.IsProcessed),
		formatNullTime(a.ProcessedAt), enc.snapshot, formatTime(now), formatTime(now))

	return err
}

// UpdateArticle rewrites every mutable column of a.
func (s *Store) UpdateArticle(ctx context.Context, a *model.Article) error {
	enc, err := encodeArticle(a)
	if err != nil {
		return err
	}
	a.UpdatedAt = s.stamp()

	res, err := s.q.ExecContext(ctx, `UPDATE articles SET title = ?, summary = ?, content = ?, source_url = ?,
		source_name = ?, category = ?, tags = ?, importance_score = ?, sentiment_score = ?, tool_mentions = ?,
		company_mentions = ?, qualitative = ?, author = ?, published_at = ?, status = ?, is_processed = ?,
		processed_at = ?, rankings_snapshot = ?, updated_at = ? WHERE id = ?`,
		a.Title, a.Summary, a.Content, a.SourceURL, a.SourceName, a.Category, enc.tags, a.ImportanceScore,
		a.Sentiment, enc.mentions, enc.companies, enc.qualitative, a.Author, formatTime(a.PublishedAt), a.Status,
		boolInt(a.IsProcessed), formatNullTime(a.ProcessedAt), enc.snapshot, formatTime(a.UpdatedAt), a.ID)

	return affected(res, err, "article "+a.ID)
}

func (s *Store) GetArticle(ctx context.Context, id string) (*model.Article, error) {
	a, err := scanArticle(s.q.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = ?`, id))

	return a, notFound(err, "article "+id)
}

func (s *Store) GetArticleBySlug(ctx context.Context, slug string) (*model.Article, error) {
	a, err := scanArticle(s.q.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE slug = ?`, slug))

	return a, notFound(err, "article "+slug)
}

// ArticleFilter narrows ListArticles. Zero values match everything.
type ArticleFilter struct {
	Status string
	Since  time.Time
	Until  time.Time
	Limit  int
	Offset int
}

// ListArticles returns articles newest first.
func (s *Store) ListArticles(ctx context.Context, f ArticleFilter) ([]*model.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles
		WHERE (? = '' OR status = ?) AND (? = '' OR published_at >= ?) AND (? = '' OR published_at <= ?)
		ORDER BY published_at DESC, created_at DESC`
	since, until := "", ""
	if !f.Since.IsZero() {
		since = formatTime(f.Since)
	}
	if !f.Until.IsZero() {
		until = formatTime(f.Until)
	}
	args := []any{f.Status, f.Status, since, since, until, until}
	if f.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*model.Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, a)
	}

	return list, rows.Err()
}
