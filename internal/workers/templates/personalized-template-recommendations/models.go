// internal/workers/templates/personalized-template-recommendations/models.go
package personalizedrecommendations

import (
	"lesson-template-workers/internal/engine/matching"
	"lesson-template-workers/internal/models"
)

type Input struct {
	matching.RawCriteria
	UserID string `json:"userId,omitempty"`
	// Preferences, when present, is used as-is instead of the stored signal.
	Preferences    *models.UserPreferenceSignal `json:"preferences,omitempty"`
	OutputTypeOnly bool                         `json:"outputTypeOnly,omitempty"`
	MaxResults     int                          `json:"maxResults,omitempty"`
}

type Output struct {
	Recommendations  []models.MatchResult `json:"recommendations"`
	RequestID        string               `json:"recommendationRequestId"`
	Personalized     bool                 `json:"personalized"`
	SkippedTemplates []string             `json:"skippedTemplates,omitempty"`
}
