package model

import "time"

// Article statuses.
const (
	ArticleDraft    = "draft"
	ArticleActive   = "active"
	ArticleArchived = "archived"
	ArticleDeleted  = "deleted"
)

// Ingestion types.
const (
	IngestURL  = "url"
	IngestText = "text"
	IngestFile = "file"
)

// Article is an ingested news item together with its analysis.
type Article struct {
	ID              string           `json:"id"`
	Slug            string           `json:"slug"`
	Title           string           `json:"title"`
	Summary         string           `json:"summary,omitempty"`
	Content         string           `json:"content,omitempty"`
	IngestionType   string           `json:"ingestionType"`
	SourceURL       string           `json:"sourceUrl,omitempty"`
	SourceName      string           `json:"sourceName,omitempty"`
	Category        string           `json:"category,omitempty"`
	Tags            []string         `json:"tags,omitempty"`
	ImportanceScore float64          `json:"importanceScore"`
	Sentiment       float64          `json:"sentimentScore"`
	ToolMentions    []ToolMention    `json:"toolMentions"`
	CompanyMentions []CompanyMention `json:"companyMentions,omitempty"`
	Qualitative     []Qualitative    `json:"qualitative,omitempty"`
	Author          string           `json:"author,omitempty"`
	PublishedAt     time.Time        `json:"publishedAt"`
	IngestedAt      time.Time        `json:"ingestedAt"`
	IngestedBy      string           `json:"ingestedBy,omitempty"`
	Status          string           `json:"status"`
	IsProcessed     bool             `json:"isProcessed"`
	ProcessedAt     *time.Time       `json:"processedAt,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`

	// Snapshot of the ranking entries taken right before the article was applied.
	RankingsSnapshot []RankingEntry `json:"-"`
}

// ToolMention is one tool referenced by an article.
// ToolID is filled once the mention is resolved against the catalogue.
type ToolMention struct {
	Tool      string  `json:"tool"`
	ToolID    string  `json:"toolId,omitempty"`
	Context   string  `json:"context"`
	Sentiment float64 `json:"sentiment"` // -1..1
	Relevance float64 `json:"relevance"` // 0..1
}

type CompanyMention struct {
	Company string   `json:"company"`
	Context string   `json:"context,omitempty"`
	Tools   []string `json:"tools,omitempty"`
}

// Mentions reports whether the article references the tool by id or name.
func (a *Article) Mentions(toolID, toolName string) (ToolMention, bool) {
	for _, m := range a.ToolMentions {
		if (toolID != "" && m.ToolID == toolID) || (toolName != "" && m.Tool == toolName) {
			return m, true
		}
	}

	return ToolMention{}, false
}

// Qualitative holds structured signals extracted from an article for one tool.
type Qualitative struct {
	Tool                string               `json:"tool"`
	ProductLaunches     []ProductLaunch      `json:"productLaunches,omitempty"`
	Partnerships        []Partnership        `json:"partnerships,omitempty"`
	TechnicalMilestones []TechnicalMilestone `json:"technicalMilestones,omitempty"`
	Sentiment           SentimentAspects     `json:"sentiment"`
	Development         DevelopmentActivity  `json:"developmentActivity"`
	Positioning         string               `json:"positioning,omitempty"` // leader, challenger, follower, niche, unclear
	KeyEvents           []KeyEvent           `json:"keyEvents,omitempty"`
}

type ProductLaunch struct {
	Feature      string  `json:"feature"`
	Significance string  `json:"significance"` // breakthrough, major, incremental
	Impact       float64 `json:"impact"`       // 0..10
}

type Partnership struct {
	Partner      string  `json:"partner"`
	Type         string  `json:"type,omitempty"`
	Significance float64 `json:"significance"` // 0..10
}

type TechnicalMilestone struct {
	Achievement string  `json:"achievement"`
	Category    string  `json:"category"` // performance, capability, scale, reliability
	Impact      float64 `json:"impact"`   // 0..10
}

type SentimentAspects struct {
	Overall     float64 `json:"overall"`
	Product     float64 `json:"product"`
	Leadership  float64 `json:"leadership"`
	Competition float64 `json:"competition"`
	Future      float64 `json:"future"`
}

type DevelopmentActivity struct {
	ReleaseCadence  string  `json:"releaseCadence"` // accelerating, steady, slowing, unknown
	FeatureVelocity float64 `json:"featureVelocity"`
}

type KeyEvent struct {
	Event        string  `json:"event"`
	Type         string  `json:"type,omitempty"`
	Impact       string  `json:"impact"` // positive, negative, neutral, mixed
	Significance float64 `json:"significance"`
}
