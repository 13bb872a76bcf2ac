// internal/engine/matching/scorer.go
package matching

import (
	"fmt"
	"strings"

	"lesson-template-workers/internal/models"
)

const (
	componentSubject    = "subject"
	componentGradeLevel = "grade level"
	componentOutputType = "output type"
	componentDifficulty = "difficulty"
	componentKeywords   = "keywords"
	componentPersonal   = "personalization"
)

// Scorer computes relevance between selection criteria and catalog templates.
// It holds only immutable configuration and is safe for concurrent use.
type Scorer struct {
	cfg Config
}

func NewScorer(cfg Config) (*Scorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("matching config: %w", err)
	}
	return &Scorer{cfg: cfg}, nil
}

// NewDefaultScorer returns a Scorer with the built-in weights.
func NewDefaultScorer() *Scorer {
	return &Scorer{cfg: DefaultConfig()}
}

func (s *Scorer) Config() Config {
	return s.cfg
}

// Score produces a MatchResult for one template. The only failure is a
// template missing its id, subject, grade levels or output type.
func (s *Scorer) Score(criteria models.SelectionCriteria, tpl models.TemplateRecord) (models.MatchResult, error) {
	if err := checkTemplate(tpl); err != nil {
		return models.MatchResult{}, err
	}

	w := s.cfg.Weights
	var b models.ScoreBreakdown
	reasons := make([]string, 0, 5)

	if strings.EqualFold(strings.TrimSpace(tpl.Subject), criteria.Subject) {
		b.Subject = w.Subject
		reasons = append(reasons, matchedReason(componentSubject, b.Subject))
	} else {
		reasons = append(reasons, noMatchReason(componentSubject))
	}

	if containsGrade(tpl.GradeLevels, criteria.GradeLevel) {
		b.GradeLevel = w.GradeLevel
		reasons = append(reasons, matchedReason(componentGradeLevel, b.GradeLevel))
	} else {
		reasons = append(reasons, noMatchReason(componentGradeLevel))
	}

	if normalizeOutputType(tpl.OutputType) == criteria.OutputType {
		b.OutputType = w.OutputType
		reasons = append(reasons, matchedReason(componentOutputType, b.OutputType))
	} else {
		reasons = append(reasons, noMatchReason(componentOutputType))
	}

	closeness := difficultyCloseness(criteria.Difficulty, tpl.Difficulty)
	if b.Difficulty = round4(closeness * w.Difficulty); b.Difficulty > 0 {
		reasons = append(reasons, matchedReason(componentDifficulty, b.Difficulty))
	}

	if len(criteria.Keywords) == 0 {
		// Nothing to cover: an otherwise exact match is credited in full.
		if b.Subject > 0 && b.GradeLevel > 0 && b.OutputType > 0 && closeness == 1 {
			b.Keywords = w.Keywords
			reasons = append(reasons, fmt.Sprintf("%s not requested, exact match (+%.2f)", componentKeywords, b.Keywords))
		}
	} else if b.Keywords = round4(keywordOverlap(criteria.Keywords, tpl) * w.Keywords); b.Keywords > 0 {
		reasons = append(reasons, matchedReason(componentKeywords, b.Keywords))
	}

	score := clampUnit(round4(b.Subject + b.GradeLevel + b.OutputType + b.Difficulty + b.Keywords))

	return models.MatchResult{
		Template:   tpl,
		Score:      score,
		BaseScore:  score,
		Confidence: s.confidence(score),
		Reasons:    reasons,
		Breakdown:  b,
	}, nil
}

func (s *Scorer) confidence(score float64) models.Confidence {
	switch {
	case score >= s.cfg.Confidence.High:
		return models.ConfidenceHigh
	case score >= s.cfg.Confidence.Medium:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

func checkTemplate(tpl models.TemplateRecord) error {
	var missing []string
	if strings.TrimSpace(tpl.ID) == "" {
		missing = append(missing, "id")
	}
	if strings.TrimSpace(tpl.Subject) == "" {
		missing = append(missing, "subject")
	}
	if len(tpl.GradeLevels) == 0 {
		missing = append(missing, "gradeLevels")
	}
	if strings.TrimSpace(string(tpl.OutputType)) == "" {
		missing = append(missing, "outputType")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: template %q missing %s", ErrMalformedTemplate, tpl.ID, strings.Join(missing, ", "))
	}
	return nil
}

// difficultyCloseness returns 1 for an exact match, 0.5 one level apart, 0 otherwise.
// An absent difficulty on either side yields 0.
func difficultyCloseness(want, have models.Difficulty) float64 {
	a := want.Level()
	c := models.Difficulty(strings.ToLower(strings.TrimSpace(string(have)))).Level()
	if a == 0 || c == 0 {
		return 0
	}
	switch d := a - c; {
	case d == 0:
		return 1
	case d == 1 || d == -1:
		return 0.5
	default:
		return 0
	}
}

// keywordOverlap is the fraction of keywords found as a substring of any tag
// or compliance label. Callers handle the empty keyword list.
func keywordOverlap(keywords []string, tpl models.TemplateRecord) float64 {
	haystack := make([]string, 0, len(tpl.Tags)+len(tpl.ComplianceLabels))
	for _, t := range tpl.Tags {
		haystack = append(haystack, strings.ToLower(t))
	}
	for _, l := range tpl.ComplianceLabels {
		haystack = append(haystack, strings.ToLower(l))
	}

	found := 0
	for _, k := range keywords {
		for _, h := range haystack {
			if strings.Contains(h, k) {
				found++
				break
			}
		}
	}
	return float64(found) / float64(len(keywords))
}

func containsGrade(grades []int, grade int) bool {
	for _, g := range grades {
		if g == grade {
			return true
		}
	}
	return false
}

func normalizeOutputType(o models.OutputType) models.OutputType {
	return models.OutputType(strings.ToLower(strings.TrimSpace(string(o))))
}

func matchedReason(component string, contribution float64) string {
	return fmt.Sprintf("%s matched (+%.2f)", component, contribution)
}

func noMatchReason(component string) string {
	return component + " no match"
}

func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}
