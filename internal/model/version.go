package model

import "time"

// RankingVersion is a complete snapshot of the current ranking at a point in time.
type RankingVersion struct {
	ID               string         `json:"id"`
	Version          string         `json:"version"`
	Period           string         `json:"period"`
	ArticleID        string         `json:"articleId,omitempty"`
	Entries          []RankingEntry `json:"rankings,omitempty"`
	ChangesSummary   string         `json:"changesSummary,omitempty"`
	NewsItemsCount   int            `json:"newsItemsCount"`
	ToolsAffected    int            `json:"toolsAffected"`
	PreviousID       string         `json:"previousVersionId,omitempty"`
	CreatedBy        string         `json:"createdBy"`
	CreatedAt        time.Time      `json:"createdAt"`
	IsRollback       bool           `json:"isRollback"`
	RolledBackFromID string         `json:"rolledBackFromId,omitempty"`
}

// Change types.
const (
	ChangeIncrease = "increase"
	ChangeDecrease = "decrease"
	ChangeNewEntry = "new_entry"
	ChangeNone     = "no_change"
)

// ArticleChange records what one article did to one tool.
type ArticleChange struct {
	ID            string                  `json:"id"`
	ArticleID     string                  `json:"articleId"`
	RankingID     string                  `json:"rankingId,omitempty"`
	ToolID        string                  `json:"toolId"`
	ToolName      string                  `json:"toolName"`
	ArticleURL    string                  `json:"articleUrl,omitempty"`
	MetricChanges map[string]MetricChange `json:"metricChanges"`
	OldRank       int                     `json:"oldRank"`
	NewRank       int                     `json:"newRank"`
	RankChange    int                     `json:"rankChange"`
	OldScore      float64                 `json:"oldScore"`
	NewScore      float64                 `json:"newScore"`
	ScoreChange   float64                 `json:"scoreChange"`
	ChangeType    string                  `json:"changeType"`
	ChangeReason  string                  `json:"changeReason,omitempty"`
	IsApplied     bool                    `json:"isApplied"`
	AppliedAt     time.Time               `json:"appliedAt"`
	RolledBack    bool                    `json:"rolledBack"`
	RolledBackAt  *time.Time              `json:"rolledBackAt,omitempty"`
	CreatedAt     time.Time               `json:"createdAt"`
}

type MetricChange struct {
	Old    float64 `json:"old"`
	New    float64 `json:"new"`
	Change float64 `json:"change"`
}

// Processing actions and statuses.
const (
	ActionDryRun      = "dry_run"
	ActionIngest      = "ingest"
	ActionUpdate      = "update"
	ActionRecalculate = "recalculate"
	ActionDelete      = "delete"
	ActionRollback    = "rollback"

	ProcessingStarted   = "started"
	ProcessingCompleted = "completed"
	ProcessingFailed    = "failed"
)

// ProcessingLog is an audit record of one article workflow run.
type ProcessingLog struct {
	ID              string     `json:"id"`
	ArticleID       string     `json:"articleId"`
	Action          string     `json:"action"`
	Status          string     `json:"status"`
	StartedAt       time.Time  `json:"startedAt"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
	DurationMs      int64      `json:"durationMs"`
	ToolsAffected   int        `json:"toolsAffected"`
	RankingsChanged int        `json:"rankingsChanged"`
	ErrorMessage    string     `json:"errorMessage,omitempty"`
	PerformedBy     string     `json:"performedBy"`
	CreatedAt       time.Time  `json:"createdAt"`
}
