// internal/engine/matching/weights.go
package matching

import (
	"fmt"
	"math"
)

// Weights are the per-component contributions to a relevance score.
// They must sum to 1.0 so that scores stay within [0,1].
type Weights struct {
	Subject    float64 `mapstructure:"subject" json:"subject"`
	GradeLevel float64 `mapstructure:"grade_level" json:"gradeLevel"`
	OutputType float64 `mapstructure:"output_type" json:"outputType"`
	Difficulty float64 `mapstructure:"difficulty" json:"difficulty"`
	Keywords   float64 `mapstructure:"keywords" json:"keywords"`
}

// ConfidenceBands are inclusive lower bounds for the high and medium bands.
type ConfidenceBands struct {
	High   float64 `mapstructure:"high" json:"high"`
	Medium float64 `mapstructure:"medium" json:"medium"`
}

type PersonalizationBonus struct {
	OutputType float64 `mapstructure:"output_type" json:"outputType"`
	Subject    float64 `mapstructure:"subject" json:"subject"`
	Difficulty float64 `mapstructure:"difficulty" json:"difficulty"`
}

type Config struct {
	Weights         Weights              `mapstructure:"weights"`
	Confidence      ConfidenceBands      `mapstructure:"confidence"`
	Personalization PersonalizationBonus `mapstructure:"personalization"`
}

func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Subject:    0.35,
			GradeLevel: 0.25,
			OutputType: 0.20,
			Difficulty: 0.10,
			Keywords:   0.10,
		},
		Confidence: ConfidenceBands{
			High:   0.75,
			Medium: 0.45,
		},
		Personalization: PersonalizationBonus{
			OutputType: 0.05,
			Subject:    0.05,
			Difficulty: 0.03,
		},
	}
}

const weightTolerance = 1e-6

func (c Config) Validate() error {
	w := c.Weights
	for name, v := range map[string]float64{
		"subject":     w.Subject,
		"grade_level": w.GradeLevel,
		"output_type": w.OutputType,
		"difficulty":  w.Difficulty,
		"keywords":    w.Keywords,
	} {
		if v < 0 {
			return fmt.Errorf("weight %s must not be negative, got %v", name, v)
		}
	}
	sum := w.Subject + w.GradeLevel + w.OutputType + w.Difficulty + w.Keywords
	if math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("weights must sum to 1.0, got %.4f", sum)
	}

	if c.Confidence.Medium <= 0 || c.Confidence.Medium > c.Confidence.High || c.Confidence.High > 1 {
		return fmt.Errorf("confidence bands must satisfy 0 < medium <= high <= 1, got medium=%v high=%v",
			c.Confidence.Medium, c.Confidence.High)
	}

	p := c.Personalization
	if p.OutputType < 0 || p.Subject < 0 || p.Difficulty < 0 {
		return fmt.Errorf("personalization bonuses must not be negative")
	}
	return nil
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
