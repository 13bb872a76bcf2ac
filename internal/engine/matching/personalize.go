// internal/engine/matching/personalize.go
package matching

import (
	"strings"

	"lesson-template-workers/internal/models"
)

// Personalize adds bounded bonuses to already scored results and re-ranks
// them with the same comparator as FindMatchingTemplates. Catalog position
// is resolved by template id against snapshot; ids not found there sort
// after every catalog template on a full tie. The input slice is not
// modified.
func (s *Scorer) Personalize(results []models.MatchResult, snapshot []models.TemplateRecord, signal *models.UserPreferenceSignal) []models.MatchResult {
	position := make(map[string]int, len(snapshot))
	for i, tpl := range snapshot {
		id := strings.TrimSpace(tpl.ID)
		if _, seen := position[id]; !seen {
			position[id] = i
		}
	}

	items := make([]ranked, len(results))
	for i, r := range results {
		idx, ok := position[strings.TrimSpace(r.Template.ID)]
		if !ok {
			idx = len(snapshot) + i
		}
		items[i] = ranked{result: r, index: idx}
	}
	return unwrap(s.personalize(items, signal))
}

// personalize applies the bonuses in place on a copy of items. Bonuses are
// additive and clamped at 1.0, so a template can only overtake neighbours
// whose base score is within the bonus total.
func (s *Scorer) personalize(items []ranked, signal *models.UserPreferenceSignal) []ranked {
	out := make([]ranked, len(items))
	copy(out, items)
	if signal.IsEmpty() || len(out) == 0 {
		return out
	}

	bonus := s.cfg.Personalization
	topOutput := mostFrequent(outputTypeCounts(signal.OutputTypeCounts))
	topSubject := mostFrequent(subjectCounts(signal.SubjectCounts))
	preferred := models.Difficulty(strings.ToLower(strings.TrimSpace(string(signal.PreferredDifficulty))))

	for i := range out {
		r := &out[i].result
		tpl := r.Template

		var add float64
		if topOutput != "" && string(normalizeOutputType(tpl.OutputType)) == topOutput {
			add += bonus.OutputType
		}
		if topSubject != "" && foldSubject(tpl.Subject) == topSubject {
			add += bonus.Subject
		}
		if preferred.Valid() && models.Difficulty(strings.ToLower(strings.TrimSpace(string(tpl.Difficulty)))) == preferred {
			add += bonus.Difficulty
		}
		if add == 0 {
			continue
		}

		base := r.Score
		r.BaseScore = base
		r.Score = clampUnit(round4(base + add))
		applied := round4(r.Score - base)
		r.Breakdown.Personalization = applied
		r.Confidence = s.confidence(r.Score)

		reasons := make([]string, len(r.Reasons), len(r.Reasons)+1)
		copy(reasons, r.Reasons)
		if applied > 0 {
			reasons = append(reasons, matchedReason(componentPersonal, applied))
		}
		r.Reasons = reasons
	}

	sortRanked(out)
	return out
}

// GetPersonalizedRecommendations ranks the snapshot and then applies the
// user's preference signal. A nil or empty signal yields the base ranking.
func (s *Scorer) GetPersonalizedRecommendations(criteria models.SelectionCriteria, snapshot []models.TemplateRecord, signal *models.UserPreferenceSignal, opts MatchOptions) (MatchSet, error) {
	items, skipped, err := s.rankMatches(criteria, snapshot, opts.OutputTypeOnly)
	if err != nil {
		return MatchSet{}, err
	}
	results := unwrap(s.personalize(items, signal))
	return MatchSet{Results: truncate(results, opts.MaxResults), Skipped: skipped}, nil
}

func outputTypeCounts(in map[models.OutputType]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[string(normalizeOutputType(k))] += v
	}
	return out
}

// subjectCounts merges counts whose subjects differ only in case or
// surrounding space.
func subjectCounts(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[foldSubject(k)] += v
	}
	return out
}

func foldSubject(subject string) string {
	return strings.ToLower(strings.TrimSpace(subject))
}

// mostFrequent returns the key with the highest positive count. Ties go to
// the lexicographically smallest key so the choice never depends on map order.
func mostFrequent(counts map[string]int) string {
	best, bestCount := "", 0
	for k, c := range counts {
		k = strings.TrimSpace(k)
		if k == "" || c <= 0 {
			continue
		}
		if c > bestCount || (c == bestCount && k < best) {
			best, bestCount = k, c
		}
	}
	return best
}
