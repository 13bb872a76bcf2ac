// internal/engine/compliance/engine.go
package compliance

import (
	"context"
	"fmt"
	"math"
	"sort"

	"lesson-template-workers/internal/models"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultMaxSuggestions     = 5
	DefaultMaxRecommendations = 6
)

// Request is one piece of content to check against a set of standards.
type Request struct {
	Content    string
	GradeLevel int
	Subject    string
	Standards  []string
}

type Options struct {
	MaxSuggestions     int
	MaxRecommendations int
}

// Engine evaluates content against rule sets. It never mutates the rule book
// it is given, and one Evaluate call sees a single rule book throughout.
type Engine struct {
	rules          RuleSource
	maxSuggestions int
	aggregator     *Aggregator
}

func NewEngine(rules RuleSource, opts Options) *Engine {
	if opts.MaxSuggestions <= 0 {
		opts.MaxSuggestions = DefaultMaxSuggestions
	}
	return &Engine{
		rules:          rules,
		maxSuggestions: opts.MaxSuggestions,
		aggregator:     NewAggregator(opts.MaxRecommendations),
	}
}

// Standards lists the standards the current rule book can evaluate.
func (e *Engine) Standards() []string {
	return e.rules.Current().Names()
}

func (e *Engine) Evaluate(ctx context.Context, req Request) (*models.ComplianceReport, error) {
	names, err := canonicalStandards(req.Standards)
	if err != nil {
		return nil, err
	}

	book := e.rules.Current()
	sets := make([]RuleSet, len(names))
	for i, name := range names {
		set, ok := book[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownStandard, name)
		}
		set.Name = name
		sets[i] = set
	}

	content := normalizeText(req.Content)
	subject := normalizeText(req.Subject)

	// each standard writes only its own slot
	results := make([]models.StandardResult, len(sets))
	g, gctx := errgroup.WithContext(ctx)
	for i := range sets {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = evaluateStandard(sets[i], content, subject, req.GradeLevel, e.maxSuggestions)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	overall, err := e.aggregator.Aggregate(results)
	if err != nil {
		return nil, err
	}

	report := &models.ComplianceReport{
		Standards: make(map[string]models.StandardResult, len(results)),
		Overall:   overall,
	}
	for _, r := range results {
		report.Standards[r.Standard] = r
	}
	return report, nil
}

// canonicalStandards treats the requested names as a set.
func canonicalStandards(raw []string) ([]string, error) {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		name := CanonicalStandard(r)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	if len(out) == 0 {
		return nil, ErrNoStandardsRequested
	}
	sort.Strings(out)
	return out, nil
}

// evaluateStandard scores content against one rule set. content and subject
// must already be normalized. Rules that do not apply to the subject or grade
// are left out of both the numerator and the denominator.
func evaluateStandard(set RuleSet, content, subject string, grade, maxSuggestions int) models.StandardResult {
	var total, satisfied float64
	var missed []Rule
	for _, r := range set.Rules {
		if !r.appliesTo(subject, grade) {
			continue
		}
		total += r.Weight
		if r.satisfiedBy(content) {
			satisfied += r.Weight
			continue
		}
		missed = append(missed, r)
	}

	score := 100
	if total > 0 {
		score = clampPercent(int(math.Round(100 * satisfied / total)))
	}

	sort.SliceStable(missed, func(i, j int) bool { return missed[i].Weight > missed[j].Weight })
	suggestions := make([]string, 0, len(missed))
	seen := make(map[string]struct{}, len(missed))
	for _, r := range missed {
		if len(suggestions) >= maxSuggestions {
			break
		}
		key := normalizeText(r.Suggestion)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		suggestions = append(suggestions, r.Suggestion)
	}

	display := set.DisplayName
	if display == "" {
		display = set.Name
	}
	return models.StandardResult{
		Standard:    set.Name,
		DisplayName: display,
		Score:       score,
		Suggestions: suggestions,
	}
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
