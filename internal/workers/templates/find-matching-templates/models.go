// internal/workers/templates/find-matching-templates/models.go
package findmatchingtemplates

import (
	"lesson-template-workers/internal/engine/matching"
	"lesson-template-workers/internal/models"
)

type Input struct {
	matching.RawCriteria
	OutputTypeOnly bool `json:"outputTypeOnly,omitempty"`
	MaxResults     int  `json:"maxResults,omitempty"`
}

type Output struct {
	Matches          []models.MatchResult `json:"matches"`
	TotalMatches     int                  `json:"totalMatches"`
	HasMatches       bool                 `json:"hasMatches"`
	SkippedTemplates []string             `json:"skippedTemplates,omitempty"`
}
