package algorithm

import (
	"errors"
	"fmt"
	"math"

	"github.com/BurntSushi/toml"

	"github.com/SergeyParamoshkin/toolrank/internal/model"
)

// Weights is the share of each factor in the overall score.
type Weights struct {
	AgenticCapability    float64 `toml:"agentic_capability" json:"agenticCapability"`
	Innovation           float64 `toml:"innovation" json:"innovation"`
	TechnicalPerformance float64 `toml:"technical_performance" json:"technicalPerformance"`
	DeveloperAdoption    float64 `toml:"developer_adoption" json:"developerAdoption"`
	MarketTraction       float64 `toml:"market_traction" json:"marketTraction"`
	BusinessSentiment    float64 `toml:"business_sentiment" json:"businessSentiment"`
	DevelopmentVelocity  float64 `toml:"development_velocity" json:"developmentVelocity"`
	PlatformResilience   float64 `toml:"platform_resilience" json:"platformResilience"`
}

var ErrInvalidWeights = errors.New("invalid weights")

// DefaultWeights favours verified adoption and technical data over descriptive signals.
func DefaultWeights() Weights {
	return Weights{
		AgenticCapability:    0.12,
		Innovation:           0.08,
		TechnicalPerformance: 0.18,
		DeveloperAdoption:    0.18,
		MarketTraction:       0.10,
		BusinessSentiment:    0.12,
		DevelopmentVelocity:  0.12,
		PlatformResilience:   0.10,
	}
}

// Get returns the weight of f, zero for unknown factors.
func (w Weights) Get(f model.Factor) float64 {
	switch f {
	case model.AgenticCapability:
		return w.AgenticCapability
	case model.Innovation:
		return w.Innovation
	case model.TechnicalPerformance:
		return w.TechnicalPerformance
	case model.DeveloperAdoption:
		return w.DeveloperAdoption
	case model.MarketTraction:
		return w.MarketTraction
	case model.BusinessSentiment:
		return w.BusinessSentiment
	case model.DevelopmentVelocity:
		return w.DevelopmentVelocity
	case model.PlatformResilience:
		return w.PlatformResilience
	}

	return 0
}

func (w Weights) Sum() float64 {
	var sum float64
	for _, f := range model.Factors {
		sum += w.Get(f)
	}

	return sum
}

func (w Weights) Validate() error {
	for _, f := range model.Factors {
		if v := w.Get(f); v < 0 || v > 1 || math.IsNaN(v) {
			return fmt.Errorf("%w: %s=%v out of [0,1]", ErrInvalidWeights, f, v)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1) > 0.001 {
		return fmt.Errorf("%w: weights sum to %.4f", ErrInvalidWeights, sum)
	}

	return nil
}

// LoadWeights reads a TOML weight profile. Keys absent from the file keep
// their default value.
func LoadWeights(path string) (Weights, error) {
	w := DefaultWeights()
	if _, err := toml.DecodeFile(path, &w); err != nil {
		return Weights{}, fmt.Errorf("decode weights %s: %w", path, err)
	}
	if err := w.Validate(); err != nil {
		return Weights{}, err
	}

	return w, nil
}
