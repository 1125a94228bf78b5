package algorithm

import (
	"strings"
	"time"

	"github.com/SergeyParamoshkin/toolrank/internal/model"
)

var categoryAgenticBonus = map[string]float64{
	"autonomous-agent":      20,
	"code-editor":           15,
	"proprietary-ide":       15,
	"ide-assistant":         10,
	"devops-assistant":      10,
	"open-source-framework": 5,
	"app-builder":           3,
}

var capabilityKeywords = []string{
	"autonomous", "agent", "multi-file", "planning", "reasoning", "orchestration",
	"workflow", "debugging", "refactoring", "testing", "deployment", "monitoring",
}

var innovationKeywords = []string{
	"specification-driven", "autonomous", "agent", "mcp", "scaffolding", "multi-modal",
	"reasoning", "planning", "orchestration", "background agent", "speculative",
}

var majorCompanies = []string{"Google", "Microsoft", "Meta", "Amazon", "GitHub", "Anthropic", "OpenAI"}

func countKeywords(text string, keywords []string) int {
	text = strings.ToLower(text)
	n := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			n++
		}
	}

	return n
}

func allText(info model.ToolInfo) string {
	return info.Description + " " + info.Summary + " " + info.Overview
}

func agenticCapability(t model.Tool) float64 {
	score := 50.0
	swe := t.Info.Metrics.SWEBench
	switch {
	case swe.Verified > 0:
		score = min(100, swe.Verified/70*100)
	case swe.Lite > 0:
		score = min(100, swe.Lite/30*80)
	case swe.Full > 0:
		score = min(100, swe.Full/30*80)
	}

	if bonus, ok := categoryAgenticBonus[t.Category]; ok {
		score = min(100, score+bonus)
	}
	if t.Info.Technical.MultiFileSupport {
		score = min(100, score+10)
	}

	sub := 0
	for _, on := range t.Info.Technical.SubprocessSupport {
		if on {
			sub++
		}
	}
	score = min(100, score+float64(sub)*2)

	capability := min(30, float64(countKeywords(allText(t.Info), capabilityKeywords))*3)

	return min(100, score+capability*0.3)
}

func maturityBonus(launchYear int, now time.Time) float64 {
	if launchYear == 0 {
		return 0
	}

	switch age := now.Year() - launchYear; {
	case age >= 1 && age <= 3:
		return 10
	case age >= 4 && age <= 5:
		return 5
	case age < 1:
		return 3
	}

	return 0
}

func innovation(t model.Tool, now time.Time) float64 {
	score := 30.0
	if n := len(t.Info.Features); n > 0 {
		score = min(85, 30+float64(n)*3)
	}

	score += float64(countKeywords(t.Info.Summary+" "+t.Info.Description, innovationKeywords)) * 8

	perf := t.Info.Technical.Performance
	if perf.MixtureOfExperts {
		score += 5
	}
	if perf.SpeculativeDecoding {
		score += 5
	}
	if perf.IndexingSpeed != "" {
		score += 3
	}

	score += maturityBonus(t.Info.LaunchYear, now)

	return min(100, score)
}

func technicalPerformance(t model.Tool) float64 {
	tech := t.Info.Technical
	score := 40.0

	cw := tech.MaxContextWindow
	if cw == 0 {
		cw = tech.ContextWindow
	}
	switch {
	case cw >= 1_000_000:
		score = 95
	case cw >= 500_000:
		score = 90
	case cw >= 200_000:
		score = 85
	case cw >= 100_000:
		score = 70
	case cw > 0:
		score = 50 + float64(cw)/100_000*20
	}

	switch n := len(tech.LanguageSupport); {
	case n >= 20:
		score += 15
	case n >= 10:
		score += 10
	case n > 0:
		score += float64(n) * 0.8
	}
	score = min(100, score)

	switch n := len(tech.LLMProviders); {
	case n >= 10:
		score += 15
	case n >= 5:
		score += 10
	case n >= 3:
		score += 7
	case n > 0:
		score += float64(n) * 2
	}
	score = min(100, score)

	if strings.Contains(tech.IDEIntegration, "Proprietary") || strings.Contains(tech.IDEIntegration, "Fork") {
		score = min(100, score+5)
	}

	return score
}

func developerAdoption(t model.Tool) float64 {
	m := t.Info.Metrics
	var score float64

	switch v := m.VSCodeInstalls; {
	case v >= 50_000_000:
		score += 40
	case v >= 10_000_000:
		score += 35
	case v >= 1_000_000:
		score += 30
	case v >= 500_000:
		score += 25
	case v >= 100_000:
		score += 20
	case v >= 10_000:
		score += 10
	case v >= 1_000:
		score += 5
	}

	switch u := m.Users; {
	case u >= 1_000_000:
		score += 30
	case u >= 500_000:
		score += 25
	case u >= 100_000:
		score += 20
	case u >= 50_000:
		score += 15
	case u >= 10_000:
		score += 10
	case u >= 5_000:
		score += 5
	}

	switch d := m.NPMDownloads; {
	case d >= 1_000_000:
		score += 15
	case d >= 500_000:
		score += 12
	case d >= 100_000:
		score += 10
	case d >= 50_000:
		score += 7
	case d >= 10_000:
		score += 3
	}

	switch n := m.NewsMentions; {
	case n >= 20:
		score += 10
	case n >= 15:
		score += 8
	case n >= 10:
		score += 6
	case n >= 5:
		score += 4
	case n >= 2:
		score += 2
	}

	switch s := m.GitHubStars; {
	case s >= 50_000:
		score += 5
	case s >= 20_000:
		score += 4
	case s >= 10_000:
		score += 3
	case s >= 5_000:
		score += 2
	}

	return min(100, score)
}

func companyBacking(t model.Tool) float64 {
	m := t.Info.Metrics
	var score float64

	for _, c := range majorCompanies {
		if strings.Contains(t.Info.Company, c) {
			score += 20
			break
		}
	}

	switch {
	case m.Funding >= 100_000_000:
		score += 15
	case m.Funding >= 10_000_000:
		score += 10
	case m.Funding >= 1_000_000:
		score += 5
	}

	switch {
	case m.Valuation >= 1_000_000_000:
		score += 15
	case m.Valuation >= 100_000_000:
		score += 10
	}

	switch e := m.Employees; {
	case e >= 100:
		score += 10
	case e >= 50:
		score += 7
	case e >= 20:
		score += 5
	case e >= 10:
		score += 3
	}

	return min(40, score)
}

func marketTraction(t model.Tool) float64 {
	m := t.Info.Metrics
	biz := t.Info.Business
	var score float64

	switch arr := m.MonthlyARR; {
	case arr >= 400_000_000:
		score += 50
	case arr >= 100_000_000:
		score += 45
	case arr >= 50_000_000:
		score += 40
	case arr >= 10_000_000:
		score += 35
	case arr >= 1_000_000:
		score += 25
	case arr >= 100_000:
		score += 15
	}

	// Pricing stands in for revenue only when there is none.
	if m.MonthlyARR == 0 {
		switch {
		case biz.EnterprisePricing:
			score += 20
		case biz.PricingModel == "subscription" && biz.BasePrice >= 50:
			score += 15
		case biz.PricingModel == "subscription" && biz.BasePrice >= 20:
			score += 12
		case biz.PricingModel == "freemium" && biz.BasePrice > 0:
			score += 10
		case biz.PricingModel == "subscription":
			score += 8
		case biz.PricingModel == "freemium":
			score += 5
		}
	}

	switch {
	case m.Valuation >= 5_000_000_000:
		score += 20
	case m.Valuation >= 1_000_000_000:
		score += 15
	case m.Valuation >= 100_000_000:
		score += 10
	case m.Funding >= 100_000_000:
		score += 8
	case m.Funding >= 10_000_000:
		score += 5
	}

	switch s := m.GitHubStars; {
	case s >= 50_000:
		score += 10
	case s >= 20_000:
		score += 7
	case s >= 10_000:
		score += 5
	case s >= 5_000:
		score += 3
	}

	score += companyBacking(t) * 0.2

	return min(100, score)
}

func businessSentiment(t model.Tool, newsImpact float64) float64 {
	score := 60.0
	switch n := t.Info.Metrics.NewsMentions; {
	case n >= 15:
		score = 80
	case n >= 10:
		score = 75
	case n >= 5:
		score = 70
	case n >= 1:
		score = 65
	}

	score = clamp(score+newsImpact*10, 0, 100)

	if t.Category == "autonomous-agent" || t.Category == "code-editor" {
		score = min(100, score+10)
	}
	if t.Info.Metrics.MonthlyARR >= 100_000_000 || t.Info.Metrics.Users >= 500_000 {
		score = min(100, score+10)
	}

	return score
}

func developmentVelocity(t model.Tool) float64 {
	score := 50.0
	if t.Status == model.StatusActive {
		score = 60
	}

	switch n := len(t.Info.Features); {
	case n >= 15:
		score += 25
	case n >= 10:
		score += 20
	case n >= 5:
		score += 10
	}
	score = min(100, score)

	return min(100, score+float64(len(t.Info.RecentUpdates))*2)
}

func platformResilience(t model.Tool) float64 {
	score := 50.0
	switch n := len(t.Info.Technical.LLMProviders); {
	case n >= 5:
		score = 85
	case n >= 3:
		score = 75
	case n == 2:
		score = 65
	case n == 1:
		score = 55
	}

	if t.Category == "open-source-framework" {
		score = min(100, score+20)
	}
	if t.Info.Business.FreeTier {
		score = min(100, score+10)
	}

	return min(100, score+companyBacking(t)*0.2)
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
