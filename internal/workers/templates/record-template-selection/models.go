// internal/workers/templates/record-template-selection/models.go
package recordtemplateselection

import "time"

type Input struct {
	UserID     string `json:"userId"`
	TemplateID string `json:"templateId"`
	// RecommendationRequestID links the selection to the ranking that showed it.
	RecommendationRequestID string  `json:"recommendationRequestId,omitempty"`
	Rank                    int     `json:"rank,omitempty"`
	Score                   float64 `json:"score,omitempty"`
}

type Output struct {
	EventID    string    `json:"selectionEventId"`
	TemplateID string    `json:"templateId"`
	RecordedAt time.Time `json:"recordedAt"`
}
