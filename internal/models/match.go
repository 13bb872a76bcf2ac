// internal/models/match.go
package models

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Rank orders confidence bands so that high > medium > low.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	default:
		return 0
	}
}

// ScoreBreakdown holds the contribution of every scoring component.
type ScoreBreakdown struct {
	Subject         float64 `json:"subject"`
	GradeLevel      float64 `json:"gradeLevel"`
	OutputType      float64 `json:"outputType"`
	Difficulty      float64 `json:"difficulty"`
	Keywords        float64 `json:"keywords"`
	Personalization float64 `json:"personalization,omitempty"`
}

// NonZeroComponents counts the relevance components that contributed to the
// score. Personalization is not a relevance component and is not counted.
func (b ScoreBreakdown) NonZeroComponents() int {
	n := 0
	for _, v := range []float64{b.Subject, b.GradeLevel, b.OutputType, b.Difficulty, b.Keywords} {
		if v > 0 {
			n++
		}
	}
	return n
}

type MatchResult struct {
	Template   TemplateRecord `json:"template"`
	Score      float64        `json:"score"`
	BaseScore  float64        `json:"baseScore"`
	Confidence Confidence     `json:"confidence"`
	Reasons    []string       `json:"reasons"`
	Breakdown  ScoreBreakdown `json:"breakdown"`
}
