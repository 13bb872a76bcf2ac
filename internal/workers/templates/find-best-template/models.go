// internal/workers/templates/find-best-template/models.go
package findbesttemplate

import (
	"lesson-template-workers/internal/engine/matching"
	"lesson-template-workers/internal/models"
)

type Input struct {
	matching.RawCriteria
}

type Output struct {
	BestTemplate models.MatchResult `json:"bestTemplate"`
	CatalogSize  int                `json:"catalogSize"`
}
