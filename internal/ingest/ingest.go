// Package ingest runs the article workflows that change the live ranking:
// dry-run preview, ingestion, text updates, recalculation and rollback.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/toolrank/internal/model"
	"github.com/SergeyParamoshkin/toolrank/internal/preview"
	"github.com/SergeyParamoshkin/toolrank/internal/store"
	"github.com/SergeyParamoshkin/toolrank/internal/telemetry"
	"github.com/SergeyParamoshkin/toolrank/internal/toolmap"
	"github.com/SergeyParamoshkin/toolrank/internal/user"
	"github.com/SergeyParamoshkin/toolrank/internal/version"
)

var (
	ErrNoCurrentRanking  = errors.New("no current ranking")
	ErrAlreadyRolledBack = errors.New("article already rolled back")
	ErrSuperseded        = errors.New("article changes superseded by a ranking rebuild")
)

// Meta carries the article fields that are not part of the analysis.
type Meta struct {
	IngestionType string
	Author        string
}

// TextUpdate holds the editable article text. Empty fields are left as is.
type TextUpdate struct {
	Title      string
	Summary    string
	Content    string
	SourceName string
	SourceURL  string
	Category   string
	Author     string
	Tags       []string
}

// Outcome is what a persisted workflow did.
type Outcome struct {
	Article *model.Article         `json:"article"`
	Preview *preview.Result        `json:"preview,omitempty"`
	Version *model.RankingVersion  `json:"version,omitempty"`
	Changes []*model.ArticleChange `json:"changes"`
}

type Service struct {
	store   *store.Store
	metrics *telemetry.Recorder
	logger  *zap.SugaredLogger
	now     func() time.Time
}

func NewService(st *store.Store, rec *telemetry.Recorder, logger *zap.SugaredLogger) *Service {
	return &Service{store: st, metrics: rec, logger: logger, now: time.Now}
}

// catalogue is the store state a calculation needs.
type catalogue struct {
	current   *model.Ranking
	tools     []*model.Tool
	companies []string
	calc      *preview.Calculator
	mapper    *toolmap.Mapper
}

func loadCatalogue(ctx context.Context, st *store.Store) (*catalogue, error) {
	cur, err := st.CurrentRanking(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoCurrentRanking
	}
	if err != nil {
		return nil, err
	}

	tools, err := st.ListTools(ctx, store.ToolFilter{})
	if err != nil {
		return nil, err
	}
	companies, err := st.ListCompanies(ctx)
	if err != nil {
		return nil, err
	}

	c := &catalogue{current: cur, tools: tools}
	for _, co := range companies {
		c.companies = append(c.companies, co.Name)
	}
	c.mapper = toolmap.New(c.toolNames()...)
	c.calc = preview.NewCalculator(c.mapper)

	return c, nil
}

func (c *catalogue) toolNames() []string {
	names := make([]string, 0, len(c.tools))
	for _, t := range c.tools {
		names = append(names, t.Name)
	}

	return names
}

func (c *catalogue) calculate(an preview.Analysis, entries []model.RankingEntry) preview.Result {
	return c.calc.Calculate(an, entries, c.toolNames(), c.companies)
}

// resolve fills the catalogue id of every mention that names a known tool.
func (c *catalogue) resolve(mentions []model.ToolMention) []model.ToolMention {
	out := make([]model.ToolMention, len(mentions))
	for i, m := range mentions {
		name := c.mapper.Normalize(m.Tool)
		for _, t := range c.tools {
			if t.Name == name || strings.EqualFold(t.Slug, m.Tool) {
				m.ToolID = t.ID

				break
			}
		}
		out[i] = m
	}

	return out
}

type run struct {
	articleID string
	tools     int
	rankings  int
}

// track records a processing log and metrics for one workflow. The log is
// written outside the workflow transaction so failures are kept too.
func (s *Service) track(ctx context.Context, action, articleID string, fn func() (run, error)) error {
	start := s.now()
	res, err := fn()
	done := s.now()

	if res.articleID == "" {
		res.articleID = articleID
	}
	l := &model.ProcessingLog{
		ArticleID:       res.articleID,
		Action:          action,
		Status:          model.ProcessingCompleted,
		StartedAt:       start,
		CompletedAt:     &done,
		DurationMs:      done.Sub(start).Milliseconds(),
		ToolsAffected:   res.tools,
		RankingsChanged: res.rankings,
		PerformedBy:     user.Name(ctx),
	}
	if err != nil {
		l.Status, l.ErrorMessage = model.ProcessingFailed, err.Error()
	}
	if logErr := s.store.CreateLog(ctx, l); logErr != nil {
		s.logger.Warnw("failed to write processing log", "action", action, "error", logErr)
	}
	s.metrics.Workflow(ctx, action, err)

	if err != nil {
		s.logger.Errorw("article workflow failed", "action", action, "article", res.articleID, "error", err)

		return err
	}
	s.logger.Infow("article workflow completed", "action", action, "article", res.articleID,
		"tools", res.tools, "duration_ms", l.DurationMs)

	return nil
}

// Preview predicts the effect of an analysis on the current ranking without
// writing anything but the processing log.
func (s *Service) Preview(ctx context.Context, an preview.Analysis) (*preview.Result, error) {
	var res preview.Result
	err := s.track(ctx, model.ActionDryRun, "", func() (run, error) {
		if err := an.Validate(); err != nil {
			return run{}, err
		}
		c, err := loadCatalogue(ctx, s.store)
		if err != nil {
			return run{}, err
		}
		an.ToolMentions = c.resolve(an.ToolMentions)
		res = c.calculate(an, c.current.Entries)

		return run{tools: len(res.Changes)}, nil
	})
	if err != nil {
		return nil, err
	}

	return &res, nil
}

func changeType(scoreChange float64) string {
	switch {
	case scoreChange > 0:
		return model.ChangeIncrease
	case scoreChange < 0:
		return model.ChangeDecrease
	}

	return model.ChangeNone
}

func changeRecords(art *model.Article, rankingID string, changes []preview.Change, at time.Time) []*model.ArticleChange {
	out := make([]*model.ArticleChange, 0, len(changes))
	for _, c := range changes {
		out = append(out, &model.ArticleChange{
			ArticleID:     art.ID,
			RankingID:     rankingID,
			ToolID:        c.ToolID,
			ToolName:      c.ToolName,
			ArticleURL:    art.SourceURL,
			MetricChanges: c.Metrics,
			OldRank:       c.CurrentRank,
			NewRank:       c.PredictedRank,
			RankChange:    c.RankChange,
			OldScore:      c.CurrentScore,
			NewScore:      c.PredictedScore,
			ScoreChange:   c.ScoreChange,
			ChangeType:    changeType(c.ScoreChange),
			ChangeReason:  c.Reason,
			IsApplied:     true,
			AppliedAt:     at,
		})
	}

	return out
}

func values(records []*model.ArticleChange) []model.ArticleChange {
	out := make([]model.ArticleChange, len(records))
	for i, r := range records {
		out[i] = *r
	}

	return out
}

// Ingest stores the article, applies its predicted changes to the current
// ranking and records a new version, all in one transaction.
func (s *Service) Ingest(ctx context.Context, an preview.Analysis, meta Meta) (*Outcome, error) {
	var out Outcome
	err := s.track(ctx, model.ActionIngest, "", func() (run, error) {
		if err := an.Validate(); err != nil {
			return run{}, err
		}

		err := s.store.WithTx(ctx, func(tx *store.Store) error {
			c, err := loadCatalogue(ctx, tx)
			if err != nil {
				return err
			}
			an.ToolMentions = c.resolve(an.ToolMentions)
			res := c.calculate(an, c.current.Entries)

			now := s.now()
			art := an.Article()
			art.IngestionType = meta.IngestionType
			art.Author = meta.Author
			art.IngestedBy = user.Name(ctx)
			art.IsProcessed = true
			art.ProcessedAt = &now
			art.RankingsSnapshot = model.CloneEntries(c.current.Entries)
			if err := tx.CreateArticle(ctx, &art); err != nil {
				return fmt.Errorf("create article: %w", err)
			}

			if err := tx.UpdateEntries(ctx, c.current.ID, res.Entries); err != nil {
				return fmt.Errorf("apply changes: %w", err)
			}
			records := changeRecords(&art, c.current.ID, res.Changes, now)
			if err := tx.CreateChanges(ctx, records); err != nil {
				return fmt.Errorf("record changes: %w", err)
			}

			v, err := version.Record(ctx, tx, version.Params{
				Period:        c.current.Period,
				ArticleID:     art.ID,
				Summary:       fmt.Sprintf("Article: %s (%d tools affected)", art.Title, len(res.Changes)),
				NewsItems:     1,
				ToolsAffected: len(res.Changes),
				CreatedBy:     user.Name(ctx),
				Entries:       res.Entries,
			})
			if err != nil {
				return err
			}

			out = Outcome{Article: &art, Preview: &res, Version: v, Changes: records}

			return nil
		})
		if err != nil {
			return run{}, err
		}

		return run{articleID: out.Article.ID, tools: len(out.Changes), rankings: 1}, nil
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}

// Update edits the article text. Rankings are not recalculated.
func (s *Service) Update(ctx context.Context, id string, u TextUpdate) (*model.Article, error) {
	var art *model.Article
	err := s.track(ctx, model.ActionUpdate, id, func() (run, error) {
		var err error
		art, err = s.store.GetArticle(ctx, id)
		if err != nil {
			return run{}, err
		}
		if art.Status == model.ArticleDeleted {
			return run{}, ErrAlreadyRolledBack
		}

		for _, f := range []struct {
			dst *string
			src string
		}{
			{&art.Title, u.Title},
			{&art.Summary, u.Summary},
			{&art.Content, u.Content},
			{&art.SourceName, u.SourceName},
			{&art.SourceURL, u.SourceURL},
			{&art.Category, u.Category},
			{&art.Author, u.Author},
		} {
			if f.src != "" {
				*f.dst = f.src
			}
		}
		if u.Tags != nil {
			art.Tags = u.Tags
		}

		return run{}, s.store.UpdateArticle(ctx, art)
	})
	if err != nil {
		return nil, err
	}

	return art, nil
}

// revertOn undoes the changes of art still in effect on ranking r and marks
// every change of art on r rolled back.
func revertOn(ctx context.Context, tx *store.Store, art *model.Article, r *model.Ranking, at time.Time) ([]model.RankingEntry, []*model.ArticleChange, error) {
	applied, err := tx.AppliedChanges(ctx, art.ID, r.ID)
	if err != nil {
		return nil, nil, err
	}
	entries := preview.Revert(r.Entries, preview.ChangesFromRecords(values(applied)))
	if _, err := tx.MarkRolledBack(ctx, art.ID, r.ID, at); err != nil {
		return nil, nil, err
	}

	return entries, applied, nil
}

// superseded reports whether a rebuild or a version rollback replaced the
// entries art was applied to, or the current ranking moved to another period.
// The rebuilt scores already account for the article.
func superseded(ctx context.Context, tx *store.Store, art *model.Article, cur *model.Ranking) (bool, error) {
	all, err := tx.ArticleChanges(ctx, art.ID)
	if err != nil {
		return false, err
	}
	for _, c := range all {
		if !c.RolledBack && (!c.IsApplied || c.RankingID != cur.ID) {
			return true, nil
		}
	}

	return false, nil
}

func (s *Service) activeArticle(ctx context.Context, tx *store.Store, id string) (*model.Article, error) {
	art, err := tx.GetArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	if art.Status == model.ArticleDeleted {
		return nil, fmt.Errorf("article %s: %w", id, ErrAlreadyRolledBack)
	}

	return art, nil
}

// revertEverywhere undoes the changes of art on every ranking still holding
// them and marks all its changes rolled back. It returns the resulting
// entries of the current ranking.
func revertEverywhere(ctx context.Context, tx *store.Store, art *model.Article, cur *model.Ranking, at time.Time) ([]model.RankingEntry, []*model.ArticleChange, error) {
	applied, err := tx.AppliedChanges(ctx, art.ID, "")
	if err != nil {
		return nil, nil, err
	}

	byRanking := map[string][]model.ArticleChange{}
	var order []string
	for _, c := range applied {
		if _, ok := byRanking[c.RankingID]; !ok {
			order = append(order, c.RankingID)
		}
		byRanking[c.RankingID] = append(byRanking[c.RankingID], *c)
	}

	entries := cur.Entries
	for _, id := range order {
		r := cur
		if id != cur.ID {
			if r, err = tx.GetRankingByID(ctx, id); err != nil {
				return nil, nil, err
			}
		}
		reverted := preview.Revert(r.Entries, preview.ChangesFromRecords(byRanking[id]))
		if err := tx.UpdateEntries(ctx, r.ID, reverted); err != nil {
			return nil, nil, err
		}
		if r.ID == cur.ID {
			entries = reverted
		}
	}

	if _, err := tx.MarkRolledBack(ctx, art.ID, "", at); err != nil {
		return nil, nil, err
	}

	return entries, applied, nil
}

// Recalculate reverts the article's applied changes and re-applies them from
// its stored analysis against the current catalogue. Articles whose changes
// were superseded by a rebuild are refused with ErrSuperseded.
func (s *Service) Recalculate(ctx context.Context, id string) (*Outcome, error) {
	var out Outcome
	err := s.track(ctx, model.ActionRecalculate, id, func() (run, error) {
		err := s.store.WithTx(ctx, func(tx *store.Store) error {
			art, err := s.activeArticle(ctx, tx, id)
			if err != nil {
				return err
			}
			c, err := loadCatalogue(ctx, tx)
			if err != nil {
				return err
			}

			stale, err := superseded(ctx, tx, art, c.current)
			if err != nil {
				return err
			}
			if stale {
				return fmt.Errorf("article %s: %w", id, ErrSuperseded)
			}

			now := s.now()
			base, _, err := revertOn(ctx, tx, art, c.current, now)
			if err != nil {
				return err
			}

			an := preview.FromArticle(*art)
			an.ToolMentions = c.resolve(an.ToolMentions)
			res := c.calculate(an, base)

			if err := tx.UpdateEntries(ctx, c.current.ID, res.Entries); err != nil {
				return err
			}
			records := changeRecords(art, c.current.ID, res.Changes, now)
			if err := tx.CreateChanges(ctx, records); err != nil {
				return err
			}

			art.ToolMentions = an.ToolMentions
			art.ProcessedAt = &now
			art.IsProcessed = true
			if err := tx.UpdateArticle(ctx, art); err != nil {
				return err
			}

			v, err := version.Record(ctx, tx, version.Params{
				Period:        c.current.Period,
				ArticleID:     art.ID,
				Summary:       fmt.Sprintf("Recalculated: %s (%d tools affected)", art.Title, len(res.Changes)),
				NewsItems:     1,
				ToolsAffected: len(res.Changes),
				CreatedBy:     user.Name(ctx),
				Entries:       res.Entries,
			})
			if err != nil {
				return err
			}

			out = Outcome{Article: art, Preview: &res, Version: v, Changes: records}

			return nil
		})
		if err != nil {
			return run{}, err
		}

		return run{tools: len(out.Changes), rankings: 1}, nil
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}

// Rollback reverts the article's applied changes, marks the article deleted
// and records a rollback version.
func (s *Service) Rollback(ctx context.Context, id string) (*Outcome, error) {
	var out Outcome
	err := s.track(ctx, model.ActionRollback, id, func() (run, error) {
		err := s.store.WithTx(ctx, func(tx *store.Store) error {
			art, err := s.activeArticle(ctx, tx, id)
			if err != nil {
				return err
			}
			cur, err := tx.CurrentRanking(ctx)
			if errors.Is(err, store.ErrNotFound) {
				return ErrNoCurrentRanking
			}
			if err != nil {
				return err
			}

			now := s.now()
			entries, reverted, err := revertEverywhere(ctx, tx, art, cur, now)
			if err != nil {
				return err
			}

			art.Status = model.ArticleDeleted
			if err := tx.UpdateArticle(ctx, art); err != nil {
				return err
			}

			v, err := version.Record(ctx, tx, version.Params{
				Period:        cur.Period,
				ArticleID:     art.ID,
				Summary:       fmt.Sprintf("Rolled back article: %s", art.Title),
				ToolsAffected: len(reverted),
				CreatedBy:     user.Name(ctx),
				IsRollback:    true,
				Entries:       entries,
			})
			if err != nil {
				return err
			}

			for _, c := range reverted {
				c.IsApplied, c.RolledBack, c.RolledBackAt = false, true, &now
			}
			out = Outcome{Article: art, Version: v, Changes: reverted}

			return nil
		})
		if err != nil {
			return run{}, err
		}

		return run{tools: len(out.Changes), rankings: 1}, nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.Rollback(ctx, nil)

	return &out, nil
}

// Logs returns the processing history newest first, optionally for one article.
func (s *Service) Logs(ctx context.Context, articleID string, limit, offset int) ([]*model.ProcessingLog, error) {
	return s.store.ListLogs(ctx, articleID, limit, offset)
}
