// Package preview predicts how an analysed article moves the current
// ranking, without touching any storage.
package preview

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/SergeyParamoshkin/toolrank/internal/model"
)

var ErrInvalidAnalysis = errors.New("invalid article analysis")

// Analysis is the structured result of reading one article.
type Analysis struct {
	Title           string                 `json:"title"`
	Summary         string                 `json:"summary,omitempty"`
	Content         string                 `json:"content,omitempty"`
	SourceName      string                 `json:"source,omitempty"`
	SourceURL       string                 `json:"url,omitempty"`
	PublishedAt     time.Time              `json:"publishedDate"`
	Category        string                 `json:"category,omitempty"`
	Tags            []string               `json:"tags,omitempty"`
	ToolMentions    []model.ToolMention    `json:"toolMentions"`
	CompanyMentions []model.CompanyMention `json:"companyMentions,omitempty"`
	Sentiment       float64                `json:"overallSentiment"`
	ImportanceScore float64                `json:"importanceScore"`
	Qualitative     []model.Qualitative    `json:"qualitative,omitempty"`
}

// Validate reports every problem with the analysis at once.
func (a *Analysis) Validate() error {
	var err error
	if strings.TrimSpace(a.Title) == "" {
		err = multierr.Append(err, errors.New("title is required"))
	}
	if a.ImportanceScore < 0 || a.ImportanceScore > 10 {
		err = multierr.Append(err, fmt.Errorf("importance score %v out of [0,10]", a.ImportanceScore))
	}
	if a.Sentiment < -1 || a.Sentiment > 1 {
		err = multierr.Append(err, fmt.Errorf("overall sentiment %v out of [-1,1]", a.Sentiment))
	}
	for i, m := range a.ToolMentions {
		if strings.TrimSpace(m.Tool) == "" {
			err = multierr.Append(err, fmt.Errorf("tool mention %d: tool is required", i))
		}
		if m.Sentiment < -1 || m.Sentiment > 1 {
			err = multierr.Append(err, fmt.Errorf("tool mention %d: sentiment %v out of [-1,1]", i, m.Sentiment))
		}
		if m.Relevance < 0 || m.Relevance > 1 {
			err = multierr.Append(err, fmt.Errorf("tool mention %d: relevance %v out of [0,1]", i, m.Relevance))
		}
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAnalysis, err)
	}

	return nil
}

// Article converts the analysis into an unsaved article.
func (a *Analysis) Article() model.Article {
	return model.Article{
		Title:           a.Title,
		Summary:         a.Summary,
		Content:         a.Content,
		SourceName:      a.SourceName,
		SourceURL:       a.SourceURL,
		PublishedAt:     a.PublishedAt,
		Category:        a.Category,
		Tags:            a.Tags,
		ToolMentions:    a.ToolMentions,
		CompanyMentions: a.CompanyMentions,
		Sentiment:       a.Sentiment,
		ImportanceScore: a.ImportanceScore,
		Qualitative:     a.Qualitative,
	}
}

// FromArticle rebuilds the analysis stored with an article.
func FromArticle(art model.Article) Analysis {
	return Analysis{
		Title:           art.Title,
		Summary:         art.Summary,
		Content:         art.Content,
		SourceName:      art.SourceName,
		SourceURL:       art.SourceURL,
		PublishedAt:     art.PublishedAt,
		Category:        art.Category,
		Tags:            art.Tags,
		ToolMentions:    art.ToolMentions,
		CompanyMentions: art.CompanyMentions,
		Sentiment:       art.Sentiment,
		ImportanceScore: art.ImportanceScore,
		Qualitative:     art.Qualitative,
	}
}
