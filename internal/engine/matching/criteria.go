// internal/engine/matching/criteria.go
package matching

import (
	"fmt"
	"strings"

	"lesson-template-workers/internal/models"
)

// RawCriteria is an unvalidated selection request as it arrives from a caller.
// GradeLevel is a pointer so that an absent grade can be told apart from zero.
type RawCriteria struct {
	Subject    string   `json:"subject"`
	GradeLevel *int     `json:"gradeLevel,omitempty"`
	OutputType string   `json:"outputType"`
	Difficulty string   `json:"difficulty,omitempty"`
	Keywords   []string `json:"keywords,omitempty"`
}

// NormalizeCriteria validates raw and returns its canonical form.
func NormalizeCriteria(raw RawCriteria) (models.SelectionCriteria, error) {
	subject := strings.TrimSpace(raw.Subject)
	if subject == "" {
		return models.SelectionCriteria{}, fmt.Errorf("%w: subject is required", ErrInvalidCriteria)
	}

	if raw.GradeLevel == nil {
		return models.SelectionCriteria{}, fmt.Errorf("%w: gradeLevel is required", ErrInvalidCriteria)
	}
	if !models.IsSupportedGradeLevel(*raw.GradeLevel) {
		return models.SelectionCriteria{}, fmt.Errorf("%w: gradeLevel %d not in %v",
			ErrInvalidCriteria, *raw.GradeLevel, models.SupportedGradeLevels)
	}

	outputType := models.OutputType(strings.ToLower(strings.TrimSpace(raw.OutputType)))
	if outputType == "" {
		return models.SelectionCriteria{}, fmt.Errorf("%w: outputType is required", ErrInvalidCriteria)
	}
	if !outputType.Valid() {
		return models.SelectionCriteria{}, fmt.Errorf("%w: %q", ErrUnsupportedOutputType, raw.OutputType)
	}

	difficulty := models.Difficulty(strings.ToLower(strings.TrimSpace(raw.Difficulty)))
	if difficulty != "" && !difficulty.Valid() {
		return models.SelectionCriteria{}, fmt.Errorf("%w: difficulty %q is not one of beginner, intermediate, advanced",
			ErrInvalidCriteria, raw.Difficulty)
	}

	return models.SelectionCriteria{
		Subject:    subject,
		GradeLevel: *raw.GradeLevel,
		OutputType: outputType,
		Difficulty: difficulty,
		Keywords:   normalizeKeywords(raw.Keywords),
	}, nil
}

func normalizeKeywords(keywords []string) []string {
	if len(keywords) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
