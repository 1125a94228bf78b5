package newsimpact

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/SergeyParamoshkin/toolrank/internal/model"
)

var (
	sweBenchRe  = regexp.MustCompile(`(?i)(\d+\.?\d*)\s*%?\s*(?:on\s+)?swe[- ]bench`)
	valuationRe = regexp.MustCompile(`(?i)(\d+\.?\d*)\s*billion\s*(?:dollar\s*)?valuation`)
	fundingRe   = regexp.MustCompile(`(?i)raised?\s*\$?(\d+\.?\d*)\s*(million|billion)`)
	arrRe       = regexp.MustCompile(`(?i)\$?(\d+\.?\d*)\s*([mb])\s*arr`)
	usersRe     = regexp.MustCompile(`(?i)(\d+\.?\d*)\s*([km]?)\s*users`)
)

// Extracted holds the quantitative metrics found in article text.
// Zero means not found.
type Extracted struct {
	SWEBench   float64 `json:"sweBenchScore,omitempty"`
	Valuation  float64 `json:"valuation,omitempty"`
	Funding    float64 `json:"funding,omitempty"`
	MonthlyARR float64 `json:"monthlyArr,omitempty"`
	Users      float64 `json:"estimatedUsers,omitempty"`
}

func parseFirst(re *regexp.Regexp, text string) ([]string, float64, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil, 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil, 0, false
	}

	return m, v, true
}

// ExtractMetrics scans articles mentioning toolID, published on or before
// cutoff, for benchmark and business numbers. The first match of each
// metric wins.
func ExtractMetrics(toolID string, articles []model.Article, cutoff time.Time) Extracted {
	var ex Extracted
	for _, a := range articles {
		if a.PublishedAt.After(cutoff) {
			continue
		}
		if _, ok := a.Mentions(toolID, ""); !ok {
			continue
		}
		ex.fill(strings.ToLower(a.Title + " " + a.Content))
	}

	return ex
}

func (ex *Extracted) fill(text string) {
	if _, v, ok := parseFirst(sweBenchRe, text); ok && ex.SWEBench == 0 {
		ex.SWEBench = v
	}
	if _, v, ok := parseFirst(valuationRe, text); ok && ex.Valuation == 0 {
		ex.Valuation = v * 1e9
	}
	if m, v, ok := parseFirst(fundingRe, text); ok && ex.Funding == 0 {
		if m[2] == "billion" {
			ex.Funding = v * 1e9
		} else {
			ex.Funding = v * 1e6
		}
	}
	if m, v, ok := parseFirst(arrRe, text); ok && ex.MonthlyARR == 0 {
		mult := 1e6
		if m[2] == "b" {
			mult = 1e9
		}
		ex.MonthlyARR = v * mult / 12
	}
	if m, v, ok := parseFirst(usersRe, text); ok && ex.Users == 0 {
		switch m[2] {
		case "k":
			v *= 1e3
		case "m":
			v *= 1e6
		}
		ex.Users = v
	}
}

// Enhance fills metrics the catalogue does not know yet from extracted
// news values. Curated values always win.
func Enhance(m model.Metrics, ex Extracted) model.Metrics {
	if m.SWEBench.Verified == 0 && m.SWEBench.Lite == 0 && m.SWEBench.Full == 0 && ex.SWEBench > 0 {
		m.SWEBench.Verified = ex.SWEBench
	}
	if m.Valuation == 0 {
		m.Valuation = ex.Valuation
	}
	if m.Funding == 0 {
		m.Funding = ex.Funding
	}
	// The catalogue stores annualised revenue.
	if m.MonthlyARR == 0 {
		m.MonthlyARR = ex.MonthlyARR * 12
	}
	if m.Users == 0 {
		m.Users = int64(ex.Users)
	}

	return m
}
