// internal/engine/compliance/aggregator.go
package compliance

import (
	"math"
	"sort"

	"lesson-template-workers/internal/models"
)

type Aggregator struct {
	maxRecommendations int
}

func NewAggregator(maxRecommendations int) *Aggregator {
	if maxRecommendations <= 0 {
		maxRecommendations = DefaultMaxRecommendations
	}
	return &Aggregator{maxRecommendations: maxRecommendations}
}

// Aggregate combines per-standard results into an overall score, grade and
// recommendation list. Suggestions of the weakest standard come first;
// duplicates are detected on case- and whitespace-insensitive text.
func (a *Aggregator) Aggregate(results []models.StandardResult) (models.OverallResult, error) {
	if len(results) == 0 {
		return models.OverallResult{}, ErrNoStandardsRequested
	}

	sum := 0
	for _, r := range results {
		sum += r.Score
	}
	score := clampPercent(int(math.Round(float64(sum) / float64(len(results)))))

	ordered := append([]models.StandardResult(nil), results...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Score != ordered[j].Score {
			return ordered[i].Score < ordered[j].Score
		}
		return ordered[i].Standard < ordered[j].Standard
	})

	recs := make([]string, 0, a.maxRecommendations)
	seen := make(map[string]struct{})
collect:
	for _, r := range ordered {
		for _, s := range r.Suggestions {
			if len(recs) >= a.maxRecommendations {
				break collect
			}
			key := normalizeText(s)
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			recs = append(recs, s)
		}
	}

	return models.OverallResult{
		Score:           score,
		Grade:           Grade(score),
		Recommendations: recs,
	}, nil
}

// Grade bands an overall score: >=90 A, >=75 B, >=60 C, >=40 D, else F.
func Grade(score int) string {
	switch {
	case score >= 90:
		return models.GradeA
	case score >= 75:
		return models.GradeB
	case score >= 60:
		return models.GradeC
	case score >= 40:
		return models.GradeD
	default:
		return models.GradeF
	}
}
