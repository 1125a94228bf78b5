// Package ranking builds, publishes and serves the monthly tool rankings.
package ranking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/toolrank/internal/algorithm"
	"github.com/SergeyParamoshkin/toolrank/internal/changes"
	"github.com/SergeyParamoshkin/toolrank/internal/model"
	"github.com/SergeyParamoshkin/toolrank/internal/newsimpact"
	"github.com/SergeyParamoshkin/toolrank/internal/store"
	"github.com/SergeyParamoshkin/toolrank/internal/telemetry"
	"github.com/SergeyParamoshkin/toolrank/internal/trending"
	"github.com/SergeyParamoshkin/toolrank/internal/user"
	"github.com/SergeyParamoshkin/toolrank/internal/version"
)

const periodLayout = "2006-01"

var (
	ErrInvalidPeriod = errors.New("invalid period, want YYYY-MM")
	ErrCurrentDraft  = errors.New("period holds the current ranking, publish to rebuild it")
)

type Builder struct {
	store    *store.Store
	engine   *algorithm.Engine
	analyzer *changes.Analyzer
	metrics  *telemetry.Recorder
	logger   *zap.SugaredLogger
	now      func() time.Time
}

func NewBuilder(st *store.Store, engine *algorithm.Engine, rec *telemetry.Recorder, logger *zap.SugaredLogger) *Builder {
	return &Builder{
		store:    st,
		engine:   engine,
		analyzer: changes.NewAnalyzer(engine.Weights()),
		metrics:  rec,
		logger:   logger,
		now:      time.Now,
	}
}

// SetClock overrides the time source, for tests.
func (b *Builder) SetClock(now func() time.Time) { b.now = now }

func (b *Builder) Engine() *algorithm.Engine { return b.engine }

type BuildOptions struct {
	Period string
	// Cutoff bounds the news taken into account. Zero means the end of the
	// period, or now when the period is still running.
	Cutoff  time.Time
	Publish bool
}

type BuildResult struct {
	Ranking *model.Ranking        `json:"ranking"`
	Scores  []algorithm.ToolScore `json:"scores"`
	Version *model.RankingVersion `json:"version,omitempty"`
}

func (b *Builder) cutoff(opts BuildOptions) (time.Time, error) {
	start, err := time.Parse(periodLayout, opts.Period)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, opts.Period)
	}
	if !opts.Cutoff.IsZero() {
		return opts.Cutoff, nil
	}

	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	if now := b.now(); now.Before(end) {
		return now, nil
	}

	return end, nil
}

func activeArticles(ctx context.Context, st *store.Store, cutoff time.Time) ([]model.Article, error) {
	list, err := st.ListArticles(ctx, store.ArticleFilter{Status: model.ArticleActive, Until: cutoff})
	if err != nil {
		return nil, err
	}
	out := make([]model.Article, len(list))
	for i, a := range list {
		out[i] = *a
	}

	return out, nil
}

// scoreTools runs the engine over tools with the news known at cutoff.
func (b *Builder) scoreTools(tools []*model.Tool, articles []model.Article, cutoff time.Time) []algorithm.ToolScore {
	ids := make([]string, len(tools))
	for i, t := range tools {
		ids[i] = t.ID
	}
	impacts := newsimpact.ForTools(ids, articles, cutoff)

	scores := make([]algorithm.ToolScore, 0, len(tools))
	for _, t := range tools {
		tool := *t
		tool.Info.Metrics = newsimpact.Enhance(tool.Info.Metrics, newsimpact.ExtractMetrics(t.ID, articles, cutoff))
		impact := impacts[t.ID]
		scores = append(scores, b.engine.Score(tool, cutoff, &impact))
	}

	return scores
}

// movement compares entries with the previous period's ranking.
func movement(entries []model.RankingEntry, previous *model.Ranking) {
	for i := range entries {
		e := &entries[i]
		if previous == nil {
			e.Movement = &model.Movement{Direction: model.MoveNew}

			continue
		}
		prev, ok := model.Find(previous.Entries, e.ToolID)
		if !ok {
			e.Movement = &model.Movement{Direction: model.MoveNew}

			continue
		}

		m := &model.Movement{PreviousRank: prev.Rank, Change: prev.Rank - e.Rank, Direction: model.MoveStable}
		switch {
		case m.Change > 0:
			m.Direction = model.MoveUp
		case m.Change < 0:
			m.Direction = model.MoveDown
		}
		e.Movement = m
	}
}

// Build scores every active tool for a period and stores the ranking. When
// publishing, the ranking becomes current and a version is recorded. A draft
// never replaces the current ranking. Rebuilding a stored period supersedes
// the article changes applied to it.
func (b *Builder) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	cutoff, err := b.cutoff(opts)
	if err != nil {
		return nil, err
	}

	var res BuildResult
	err = b.store.WithTx(ctx, func(tx *store.Store) error {
		tools, err := tx.ListTools(ctx, store.ToolFilter{Status: model.StatusActive})
		if err != nil {
			return err
		}
		articles, err := activeArticles(ctx, tx, cutoff)
		if err != nil {
			return err
		}

		res.Scores = b.scoreTools(tools, articles, cutoff)
		entries := b.engine.Rank(res.Scores)

		previous, err := tx.PreviousRanking(ctx, opts.Period)
		switch {
		case errors.Is(err, store.ErrNotFound):
			previous = nil
		case err != nil:
			return err
		}
		movement(entries, previous)

		existing, err := tx.GetRanking(ctx, opts.Period)
		switch {
		case errors.Is(err, store.ErrNotFound):
			existing = nil
		case err != nil:
			return err
		case existing.IsCurrent && !opts.Publish:
			return ErrCurrentDraft
		}

		r := &model.Ranking{Period: opts.Period, AlgorithmVersion: algorithm.Version, Entries: entries}
		if opts.Publish {
			now := b.now()
			r.PublishedAt = &now
		}
		if err := tx.SaveRanking(ctx, r); err != nil {
			return err
		}
		res.Ranking = r

		if existing != nil {
			n, err := tx.SupersedeChanges(ctx, r.ID)
			if err != nil {
				return err
			}
			if n > 0 {
				b.logger.Infow("article changes superseded by rebuild", "period", opts.Period, "changes", n)
			}
		}

		if !opts.Publish {
			return nil
		}
		if err := tx.SetCurrent(ctx, r.ID); err != nil {
			return err
		}
		r.IsCurrent = true

		res.Version, err = version.Record(ctx, tx, version.Params{
			Period:        opts.Period,
			Summary:       fmt.Sprintf("Ranking build for %s (%s)", opts.Period, algorithm.Version),
			NewsItems:     len(articles),
			ToolsAffected: len(entries),
			CreatedBy:     user.Name(ctx),
			Entries:       entries,
		})

		return err
	})

	overall := make([]float64, len(res.Scores))
	for i, s := range res.Scores {
		overall[i] = s.Overall
	}
	b.metrics.Build(ctx, overall, err)
	if err != nil {
		return nil, err
	}

	b.logger.Infow("ranking built", "period", opts.Period, "tools", len(res.Scores),
		"published", opts.Publish, "cutoff", cutoff)

	return &res, nil
}

// ToolScore is the live score breakdown of one tool.
type ToolScore struct {
	algorithm.ToolScore
	Impact    newsimpact.Impact    `json:"newsImpactDetail"`
	Extracted newsimpact.Extracted `json:"extractedMetrics"`
}

// ScoreTool scores a single tool with the news known now.
func (b *Builder) ScoreTool(ctx context.Context, id string) (*ToolScore, error) {
	t, err := b.store.GetTool(ctx, id)
	if err != nil {
		return nil, err
	}
	cutoff := b.now()
	articles, err := activeArticles(ctx, b.store, cutoff)
	if err != nil {
		return nil, err
	}

	scores := b.scoreTools([]*model.Tool{t}, articles, cutoff)

	return &ToolScore{
		ToolScore: scores[0],
		Impact:    newsimpact.ForTool(t.ID, articles, cutoff),
		Extracted: newsimpact.ExtractMetrics(t.ID, articles, cutoff),
	}, nil
}

func (b *Builder) Current(ctx context.Context) (*model.Ranking, error) {
	return b.store.CurrentRanking(ctx)
}

func (b *Builder) ByPeriod(ctx context.Context, period string) (*model.Ranking, error) {
	return b.store.GetRanking(ctx, period)
}

func (b *Builder) Periods(ctx context.Context) ([]string, error) {
	return b.store.Periods(ctx)
}

// Changes reports how the period's ranking moved against the previous one.
func (b *Builder) Changes(ctx context.Context, period string) (changes.Report, error) {
	r, err := b.store.GetRanking(ctx, period)
	if err != nil {
		return changes.Report{}, err
	}

	var previous []model.RankingEntry
	prev, err := b.store.PreviousRanking(ctx, period)
	switch {
	case err == nil:
		previous = prev.Entries
	case !errors.Is(err, store.ErrNotFound):
		return changes.Report{}, err
	}

	return changes.BuildReport(b.analyzer.Compare(r.Entries, previous)), nil
}

func (b *Builder) Trending(ctx context.Context, topN int) (trending.Result, error) {
	list, err := b.store.ListRankings(ctx)
	if err != nil {
		return trending.Result{}, err
	}
	rankings := make([]model.Ranking, len(list))
	for i, r := range list {
		rankings[i] = *r
	}

	return trending.Analyze(rankings, topN), nil
}

const moverThreshold = 3

// WhatsNew is the recent activity feed.
type WhatsNew struct {
	Since    time.Time              `json:"since"`
	Articles []*model.Article       `json:"articles"`
	Movers   []model.RankingEntry   `json:"movers"`
	Versions []model.RankingVersion `json:"versions"`
}

// WhatsNew collects articles and versions from the last days plus the
// biggest movers of the current ranking.
func (b *Builder) WhatsNew(ctx context.Context, days int) (*WhatsNew, error) {
	if days <= 0 {
		days = 7
	}
	since := b.now().AddDate(0, 0, -days)
	out := &WhatsNew{Since: since, Movers: []model.RankingEntry{}, Versions: []model.RankingVersion{}}

	var err error
	out.Articles, err = b.store.ListArticles(ctx, store.ArticleFilter{Status: model.ArticleActive, Since: since})
	if err != nil {
		return nil, err
	}

	cur, err := b.store.CurrentRanking(ctx)
	switch {
	case err == nil:
		for _, e := range cur.Entries {
			if e.Movement != nil && (e.Movement.Direction == model.MoveNew || abs(e.Movement.Change) >= moverThreshold) {
				out.Movers = append(out.Movers, e)
			}
		}
		sort.SliceStable(out.Movers, func(i, j int) bool {
			return abs(out.Movers[i].Movement.Change) > abs(out.Movers[j].Movement.Change)
		})
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	versions, err := b.store.ListVersions(ctx, 50, 0)
	if err != nil {
		return nil, err
	}
	for _, v := range versions {
		if !v.CreatedAt.Before(since) {
			out.Versions = append(out.Versions, v.RankingVersion)
		}
	}

	return out, nil
}

func abs(n int) int {
	return int(math.Abs(float64(n)))
}
