// internal/engine/matching/ranking.go
package matching

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"lesson-template-workers/internal/models"
)

// MatchOptions narrows FindMatchingTemplates.
type MatchOptions struct {
	// OutputTypeOnly drops templates whose output type differs from the request.
	OutputTypeOnly bool
	// MaxResults truncates the ranked list when positive.
	MaxResults int
}

// MatchSet is a ranked list plus the ids of catalog rows that could not be scored.
type MatchSet struct {
	Results []models.MatchResult `json:"results"`
	Skipped []string             `json:"skipped,omitempty"`
}

type ranked struct {
	result models.MatchResult
	index  int
}

// less orders by score, then confidence band, then number of contributing
// components, then catalog position.
func less(a, b ranked) bool {
	if a.result.Score != b.result.Score {
		return a.result.Score > b.result.Score
	}
	if ra, rb := a.result.Confidence.Rank(), b.result.Confidence.Rank(); ra != rb {
		return ra > rb
	}
	if na, nb := a.result.Breakdown.NonZeroComponents(), b.result.Breakdown.NonZeroComponents(); na != nb {
		return na > nb
	}
	return a.index < b.index
}

func sortRanked(items []ranked) {
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}

func unwrap(items []ranked) []models.MatchResult {
	out := make([]models.MatchResult, len(items))
	for i, it := range items {
		out[i] = it.result
	}
	return out
}

// scoreAll scores every template in the snapshot. Malformed templates are
// collected by id instead of failing the batch.
func (s *Scorer) scoreAll(criteria models.SelectionCriteria, snapshot []models.TemplateRecord) ([]ranked, []string) {
	items := make([]ranked, 0, len(snapshot))
	var skipped []string
	for i, tpl := range snapshot {
		res, err := s.Score(criteria, tpl)
		if err != nil {
			skipped = append(skipped, skippedID(tpl, i))
			continue
		}
		items = append(items, ranked{result: res, index: i})
	}
	return items, skipped
}

func skippedID(tpl models.TemplateRecord, index int) string {
	if id := strings.TrimSpace(tpl.ID); id != "" {
		return id
	}
	return fmt.Sprintf("#%d", index)
}

// FindBestTemplate returns the single highest-ranked template. It fails with
// ErrEmptyCatalog on an empty snapshot and ErrMalformedTemplate when no
// template in the snapshot could be scored.
func (s *Scorer) FindBestTemplate(criteria models.SelectionCriteria, snapshot []models.TemplateRecord) (models.MatchResult, error) {
	if len(snapshot) == 0 {
		return models.MatchResult{}, ErrEmptyCatalog
	}
	items, skipped := s.scoreAll(criteria, snapshot)
	if len(items) == 0 {
		return models.MatchResult{}, fmt.Errorf("%w: all %d templates skipped (%s)",
			ErrMalformedTemplate, len(skipped), strings.Join(skipped, ", "))
	}
	best := items[0]
	for _, it := range items[1:] {
		if less(it, best) {
			best = it
		}
	}
	return best.result, nil
}

// FindMatchingTemplates returns every template with a positive score, ranked.
// An empty result with a nil error means the catalog had no matches.
func (s *Scorer) FindMatchingTemplates(criteria models.SelectionCriteria, snapshot []models.TemplateRecord, opts MatchOptions) (MatchSet, error) {
	items, skipped, err := s.rankMatches(criteria, snapshot, opts.OutputTypeOnly)
	if err != nil {
		return MatchSet{}, err
	}
	return MatchSet{Results: truncate(unwrap(items), opts.MaxResults), Skipped: skipped}, nil
}

// rankMatches scores the snapshot and keeps positive scores in ranked order,
// each with its catalog position.
func (s *Scorer) rankMatches(criteria models.SelectionCriteria, snapshot []models.TemplateRecord, outputTypeOnly bool) ([]ranked, []string, error) {
	if len(snapshot) == 0 {
		return nil, nil, ErrEmptyCatalog
	}
	items, skipped := s.scoreAll(criteria, snapshot)

	kept := items[:0]
	for _, it := range items {
		if it.result.Score <= 0 {
			continue
		}
		if outputTypeOnly && it.result.Breakdown.OutputType == 0 {
			continue
		}
		kept = append(kept, it)
	}
	sortRanked(kept)

	return kept, skipped, nil
}

// CompareTemplates scores exactly the requested ids against one criteria and
// ranks them like FindMatchingTemplates, zero scores included. Duplicate ids
// are reported once.
func (s *Scorer) CompareTemplates(ids []string, criteria models.SelectionCriteria, snapshot []models.TemplateRecord) ([]models.MatchResult, error) {
	if len(snapshot) == 0 {
		return nil, ErrEmptyCatalog
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: at least one template id is required", ErrInvalidCriteria)
	}

	index := make(map[string]int, len(snapshot))
	for i, tpl := range snapshot {
		id := strings.TrimSpace(tpl.ID)
		if id == "" {
			continue
		}
		if _, exists := index[id]; !exists {
			index[id] = i
		}
	}

	seen := make(map[string]struct{}, len(ids))
	items := make([]ranked, 0, len(ids))
	for _, raw := range ids {
		id := strings.TrimSpace(raw)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		i, ok := index[id]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTemplateID, id)
		}
		res, err := s.Score(criteria, snapshot[i])
		if err != nil {
			return nil, err
		}
		items = append(items, ranked{result: res, index: i})
	}
	sortRanked(items)
	return unwrap(items), nil
}

// IsValidationError reports whether err comes from caller input rather than
// the catalog.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidCriteria) ||
		errors.Is(err, ErrUnsupportedOutputType) ||
		errors.Is(err, ErrUnknownTemplateID)
}

func truncate(results []models.MatchResult, max int) []models.MatchResult {
	if max > 0 && len(results) > max {
		return results[:max]
	}
	return results
}
