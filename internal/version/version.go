// Package version keeps the history of ranking states and restores them.
package version

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/toolrank/internal/changes"
	"github.com/SergeyParamoshkin/toolrank/internal/model"
	"github.com/SergeyParamoshkin/toolrank/internal/store"
	"github.com/SergeyParamoshkin/toolrank/internal/telemetry"
)

// Params describes a version to record.
type Params struct {
	Period           string
	ArticleID        string
	Summary          string
	NewsItems        int
	ToolsAffected    int
	CreatedBy        string
	IsRollback       bool
	RolledBackFromID string
	Entries          []model.RankingEntry
}

// Record appends a version on st, which may be bound to a transaction.
func Record(ctx context.Context, st *store.Store, p Params) (*model.RankingVersion, error) {
	latestVersion, previousID := "", ""
	latest, err := st.LatestVersion(ctx)
	switch {
	case err == nil:
		latestVersion, previousID = latest.Version, latest.ID
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("load latest version: %w", err)
	}

	next, err := Next(latestVersion)
	if err != nil {
		return nil, err
	}
	snapshot, err := Encode(p.Entries)
	if err != nil {
		return nil, err
	}

	v := &store.Version{Snapshot: snapshot}
	v.RankingVersion = model.RankingVersion{
		Version:          next,
		Period:           p.Period,
		ArticleID:        p.ArticleID,
		ChangesSummary:   p.Summary,
		NewsItemsCount:   p.NewsItems,
		ToolsAffected:    p.ToolsAffected,
		PreviousID:       previousID,
		CreatedBy:        p.CreatedBy,
		IsRollback:       p.IsRollback,
		RolledBackFromID: p.RolledBackFromID,
	}
	if err := st.CreateVersion(ctx, v); err != nil {
		return nil, fmt.Errorf("create version %s: %w", next, err)
	}

	out := v.RankingVersion
	out.Entries = model.CloneEntries(p.Entries)

	return &out, nil
}

type Service struct {
	store    *store.Store
	analyzer *changes.Analyzer
	metrics  *telemetry.Recorder
	logger   *zap.SugaredLogger
}

func NewService(st *store.Store, an *changes.Analyzer, rec *telemetry.Recorder, logger *zap.SugaredLogger) *Service {
	return &Service{store: st, analyzer: an, metrics: rec, logger: logger}
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]model.RankingVersion, error) {
	list, err := s.store.ListVersions(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	out := make([]model.RankingVersion, 0, len(list))
	for _, v := range list {
		out = append(out, v.RankingVersion)
	}

	return out, nil
}

// Get returns a version, by id or version string, with its decoded snapshot.
func (s *Service) Get(ctx context.Context, id string) (*model.RankingVersion, error) {
	v, err := s.store.GetVersion(ctx, id)
	if err != nil {
		return nil, err
	}
	entries, err := Decode(v.Snapshot)
	if err != nil {
		return nil, err
	}

	out := v.RankingVersion
	out.Entries = entries

	return &out, nil
}

// Diff explains how the ranking moved from one version to another.
func (s *Service) Diff(ctx context.Context, from, to string) (changes.Report, error) {
	a, err := s.Get(ctx, from)
	if err != nil {
		return changes.Report{}, err
	}
	b, err := s.Get(ctx, to)
	if err != nil {
		return changes.Report{}, err
	}

	return changes.BuildReport(s.analyzer.Compare(b.Entries, a.Entries)), nil
}

// Rollback restores the snapshot of version id into the ranking of its
// period, makes that ranking current and records a rollback version. The
// article changes applied to that ranking are superseded by the snapshot.
func (s *Service) Rollback(ctx context.Context, id, by string) (*model.RankingVersion, error) {
	var out *model.RankingVersion
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		v, err := tx.GetVersion(ctx, id)
		if err != nil {
			return err
		}
		entries, err := Decode(v.Snapshot)
		if err != nil {
			return err
		}

		r, err := tx.GetRanking(ctx, v.Period)
		if err != nil {
			return fmt.Errorf("ranking for version %s: %w", v.Version, err)
		}
		if err := tx.UpdateEntries(ctx, r.ID, entries); err != nil {
			return err
		}
		if _, err := tx.SupersedeChanges(ctx, r.ID); err != nil {
			return err
		}
		if err := tx.SetCurrent(ctx, r.ID); err != nil {
			return err
		}

		out, err = Record(ctx, tx, Params{
			Period:           v.Period,
			Summary:          fmt.Sprintf("Rolled back to version %s", v.Version),
			ToolsAffected:    len(entries),
			CreatedBy:        by,
			IsRollback:       true,
			RolledBackFromID: v.ID,
			Entries:          entries,
		})

		return err
	})
	s.metrics.Rollback(ctx, err)
	if err != nil {
		return nil, err
	}

	s.logger.Infow("ranking rolled back", "version", out.Version, "from", id, "by", by)

	return out, nil
}
