// internal/workers/templates/compare-templates/models.go
package comparetemplates

import (
	"lesson-template-workers/internal/engine/matching"
	"lesson-template-workers/internal/models"
)

type Input struct {
	matching.RawCriteria
	TemplateIDs []string `json:"templateIds"`
}

type Output struct {
	Comparison []models.MatchResult `json:"comparison"`
	// RecommendedTemplateID is the first entry of Comparison.
	RecommendedTemplateID string `json:"recommendedTemplateId"`
}
