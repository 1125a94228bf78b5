package model

import "time"

// Tool statuses.
const (
	StatusActive     = "active"
	StatusInactive   = "inactive"
	StatusDeprecated = "deprecated"
)

// Tool data model. Info carries everything the ranking algorithm reads;
// the remaining columns are catalogue metadata.
type Tool struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Status    string    `json:"status"`
	CompanyID string    `json:"companyId,omitempty"`
	Info      ToolInfo  `json:"info"`
	Delta     Scores    `json:"deltaScore,omitempty"` // curator adjustments on top of the computed score
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ToolInfo struct {
	Summary       string    `json:"summary,omitempty" yaml:"summary"`
	Description   string    `json:"description,omitempty" yaml:"description"`
	Overview      string    `json:"overview,omitempty" yaml:"overview"`
	Company       string    `json:"company,omitempty" yaml:"company"`
	LaunchYear    int       `json:"launch_year,omitempty" yaml:"launch_year"`
	Features      []string  `json:"features,omitempty" yaml:"features"`
	RecentUpdates []string  `json:"recent_updates,omitempty" yaml:"recent_updates"`
	Technical     Technical `json:"technical" yaml:"technical"`
	Business      Business  `json:"business" yaml:"business"`
	Metrics       Metrics   `json:"metrics" yaml:"metrics"`
}

type Technical struct {
	ContextWindow     int             `json:"context_window,omitempty" yaml:"context_window"`
	MaxContextWindow  int             `json:"max_context_window,omitempty" yaml:"max_context_window"`
	MultiFileSupport  bool            `json:"multi_file_support,omitempty" yaml:"multi_file_support"`
	LanguageSupport   []string        `json:"language_support,omitempty" yaml:"language_support"`
	LLMProviders      []string        `json:"llm_providers,omitempty" yaml:"llm_providers"`
	IDEIntegration    string          `json:"ide_integration,omitempty" yaml:"ide_integration"`
	Performance       Performance     `json:"performance" yaml:"performance"`
	SubprocessSupport map[string]bool `json:"subprocess_support,omitempty" yaml:"subprocess_support"`
}

type Performance struct {
	IndexingSpeed       string `json:"indexing_speed,omitempty" yaml:"indexing_speed"`
	MixtureOfExperts    bool   `json:"mixture_of_experts,omitempty" yaml:"mixture_of_experts"`
	SpeculativeDecoding bool   `json:"speculative_decoding,omitempty" yaml:"speculative_decoding"`
}

type Business struct {
	PricingModel      string  `json:"pricing_model,omitempty" yaml:"pricing_model"`
	BasePrice         float64 `json:"base_price,omitempty" yaml:"base_price"`
	FreeTier          bool    `json:"free_tier,omitempty" yaml:"free_tier"`
	EnterprisePricing bool    `json:"enterprise_pricing,omitempty" yaml:"enterprise_pricing"`
}

// Metrics are the verifiable adoption and business numbers for a tool.
// MonthlyARR follows the historical field name; it holds annualised revenue.
type Metrics struct {
	SWEBench       SWEBench `json:"swe_bench" yaml:"swe_bench"`
	NewsMentions   int      `json:"news_mentions,omitempty" yaml:"news_mentions"`
	Users          int64    `json:"users,omitempty" yaml:"users"`
	MonthlyARR     float64  `json:"monthly_arr,omitempty" yaml:"monthly_arr"`
	Valuation      float64  `json:"valuation,omitempty" yaml:"valuation"`
	Funding        float64  `json:"funding,omitempty" yaml:"funding"`
	Employees      int      `json:"employees,omitempty" yaml:"employees"`
	GitHubStars    int64    `json:"github_stars,omitempty" yaml:"github_stars"`
	VSCodeInstalls int64    `json:"vscode_installs,omitempty" yaml:"vscode_installs"`
	NPMDownloads   int64    `json:"npm_downloads,omitempty" yaml:"npm_downloads"`
	PyPIDownloads  int64    `json:"pypi_downloads,omitempty" yaml:"pypi_downloads"`
}

type SWEBench struct {
	Verified float64 `json:"verified,omitempty" yaml:"verified"`
	Lite     float64 `json:"lite,omitempty" yaml:"lite"`
	Full     float64 `json:"full,omitempty" yaml:"full"`
}

// Company data model.
type Company struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	Website   string    `json:"website,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
