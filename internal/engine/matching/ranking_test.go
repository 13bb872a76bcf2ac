// internal/engine/matching/ranking_test.go
package matching

import (
	"testing"

	"lesson-template-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(results []models.MatchResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Template.ID
	}
	return out
}

func TestFindBestTemplate_ConcreteScenario(t *testing.T) {
	s := NewDefaultScorer()
	snapshot := []models.TemplateRecord{templateT2(), templateT1()}

	best, err := s.FindBestTemplate(mathCriteria(), snapshot)
	require.NoError(t, err)
	assert.Equal(t, "T1", best.Template.ID)
	assert.Equal(t, 1.0, best.Score)

	set, err := s.FindMatchingTemplates(mathCriteria(), snapshot, MatchOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"T1", "T2"}, ids(set.Results))
	assert.Equal(t, 0.6, set.Results[1].Score)
	assert.Empty(t, set.Skipped)
}

func TestFindOperations_EmptyCatalog(t *testing.T) {
	s := NewDefaultScorer()

	_, err := s.FindBestTemplate(mathCriteria(), nil)
	assert.ErrorIs(t, err, ErrEmptyCatalog)

	_, err = s.FindMatchingTemplates(mathCriteria(), []models.TemplateRecord{}, MatchOptions{})
	assert.ErrorIs(t, err, ErrEmptyCatalog)

	_, err = s.CompareTemplates([]string{"T1"}, mathCriteria(), nil)
	assert.ErrorIs(t, err, ErrEmptyCatalog)

	_, err = s.GetPersonalizedRecommendations(mathCriteria(), nil, nil, MatchOptions{})
	assert.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestFindMatchingTemplates_NoMatchesIsNotAnError(t *testing.T) {
	s := NewDefaultScorer()
	snapshot := []models.TemplateRecord{{
		ID:          "H1",
		Subject:     "Lịch sử",
		GradeLevels: []int{6},
		OutputType:  models.OutputTypeResearch,
	}}

	set, err := s.FindMatchingTemplates(mathCriteria(), snapshot, MatchOptions{})
	require.NoError(t, err)
	assert.NotNil(t, set.Results)
	assert.Empty(t, set.Results)
}

func TestFindMatchingTemplates_SkipsMalformed(t *testing.T) {
	s := NewDefaultScorer()
	broken := templateT1()
	broken.ID = "BROKEN"
	broken.GradeLevels = nil
	anonymous := templateT1()
	anonymous.ID = ""

	snapshot := []models.TemplateRecord{broken, templateT2(), anonymous, templateT1()}

	set, err := s.FindMatchingTemplates(mathCriteria(), snapshot, MatchOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"T1", "T2"}, ids(set.Results))
	assert.Equal(t, []string{"BROKEN", "#2"}, set.Skipped)
}

func TestFindBestTemplate_AllMalformed(t *testing.T) {
	tpl := templateT1()
	tpl.Subject = ""

	_, err := NewDefaultScorer().FindBestTemplate(mathCriteria(), []models.TemplateRecord{tpl})
	assert.ErrorIs(t, err, ErrMalformedTemplate)
}

func TestRanking_TieBreaks(t *testing.T) {
	s := NewDefaultScorer()

	t.Run("catalog order breaks exact ties", func(t *testing.T) {
		a := templateT2()
		a.ID = "A"
		b := templateT2()
		b.ID = "B"

		set, err := s.FindMatchingTemplates(mathCriteria(), []models.TemplateRecord{a, b}, MatchOptions{})
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B"}, ids(set.Results))

		best, err := s.FindBestTemplate(mathCriteria(), []models.TemplateRecord{a, b})
		require.NoError(t, err)
		assert.Equal(t, "A", best.Template.ID)
	})

	t.Run("more contributing components wins an equal score", func(t *testing.T) {
		criteria := mathCriteria()
		criteria.Keywords = []string{"hình học", "thống kê"}

		// subject + grade = 0.60 from two components
		twoComponents := models.TemplateRecord{
			ID:          "TWO",
			Subject:     "Toán",
			GradeLevels: []int{8},
			OutputType:  models.OutputTypePresentation,
			Difficulty:  models.DifficultyAdvanced,
		}
		// grade + output + difficulty + half keywords = 0.60 from four components
		fourComponents := models.TemplateRecord{
			ID:          "FOUR",
			Subject:     "Tin học",
			GradeLevels: []int{8},
			OutputType:  models.OutputTypeLessonPlan,
			Difficulty:  models.DifficultyBeginner,
			Tags:        []string{"hình học"},
		}

		snapshot := []models.TemplateRecord{twoComponents, fourComponents}
		set, err := s.FindMatchingTemplates(criteria, snapshot, MatchOptions{})
		require.NoError(t, err)
		require.Len(t, set.Results, 2)
		assert.Equal(t, set.Results[0].Score, set.Results[1].Score)
		assert.Equal(t, []string{"FOUR", "TWO"}, ids(set.Results))

		best, err := s.FindBestTemplate(criteria, snapshot)
		require.NoError(t, err)
		assert.Equal(t, "FOUR", best.Template.ID)
	})
}

func TestFindMatchingTemplates_Options(t *testing.T) {
	s := NewDefaultScorer()
	t3 := templateT1()
	t3.ID = "T3"
	t3.Difficulty = models.DifficultyIntermediate
	snapshot := []models.TemplateRecord{templateT2(), t3, templateT1()}

	set, err := s.FindMatchingTemplates(mathCriteria(), snapshot, MatchOptions{OutputTypeOnly: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"T1", "T3"}, ids(set.Results))

	set, err = s.FindMatchingTemplates(mathCriteria(), snapshot, MatchOptions{MaxResults: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"T1"}, ids(set.Results))
}

func TestRanking_BestIsFirstOfAll(t *testing.T) {
	s := NewDefaultScorer()
	snapshot := []models.TemplateRecord{
		templateT2(),
		{ID: "V1", Subject: "Ngữ văn", GradeLevels: []int{6, 7}, OutputType: models.OutputTypeAssessment, Difficulty: models.DifficultyIntermediate, Tags: []string{"đọc hiểu"}},
		templateT1(),
		{ID: "S1", Subject: "Khoa học tự nhiên", GradeLevels: []int{8, 9}, OutputType: models.OutputTypeInteractive, Tags: []string{"thí nghiệm"}},
		{ID: "M9", Subject: "Toán", GradeLevels: []int{9}, OutputType: models.OutputTypeAssessment, Difficulty: models.DifficultyAdvanced},
	}

	grades := []int{6, 7, 8, 9}
	subjects := []string{"Toán", "Ngữ văn", "Khoa học tự nhiên"}
	for _, subject := range subjects {
		for _, grade := range grades {
			for _, ot := range models.OutputTypes {
				criteria := models.SelectionCriteria{
					Subject:    subject,
					GradeLevel: grade,
					OutputType: ot,
					Difficulty: models.DifficultyIntermediate,
					Keywords:   []string{"thí nghiệm"},
				}
				best, err := s.FindBestTemplate(criteria, snapshot)
				require.NoError(t, err)

				set, err := s.FindMatchingTemplates(criteria, snapshot, MatchOptions{})
				require.NoError(t, err)
				if best.Score == 0 {
					assert.Empty(t, set.Results)
					continue
				}
				require.NotEmpty(t, set.Results)
				assert.Equal(t, best.Template.ID, set.Results[0].Template.ID)
				for i := 1; i < len(set.Results); i++ {
					assert.GreaterOrEqual(t, set.Results[i-1].Score, set.Results[i].Score)
				}
			}
		}
	}
}

func TestCompareTemplates(t *testing.T) {
	s := NewDefaultScorer()
	unrelated := models.TemplateRecord{ID: "H1", Subject: "Lịch sử", GradeLevels: []int{6}, OutputType: models.OutputTypeResearch}
	snapshot := []models.TemplateRecord{templateT1(), templateT2(), unrelated}

	t.Run("sorted by score with every id once", func(t *testing.T) {
		results, err := s.CompareTemplates([]string{"H1", "T2", "T1", "T2"}, mathCriteria(), snapshot)
		require.NoError(t, err)
		assert.Equal(t, []string{"T1", "T2", "H1"}, ids(results))
		assert.Equal(t, 0.0, results[2].Score)
	})

	t.Run("unknown id fails the call", func(t *testing.T) {
		_, err := s.CompareTemplates([]string{"T1", "NOPE"}, mathCriteria(), snapshot)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownTemplateID)
		assert.Contains(t, err.Error(), "NOPE")
	})

	t.Run("no ids", func(t *testing.T) {
		_, err := s.CompareTemplates(nil, mathCriteria(), snapshot)
		assert.ErrorIs(t, err, ErrInvalidCriteria)
	})

	t.Run("malformed requested template", func(t *testing.T) {
		broken := templateT1()
		broken.ID = "BROKEN"
		broken.OutputType = ""
		_, err := s.CompareTemplates([]string{"BROKEN"}, mathCriteria(), append(snapshot, broken))
		assert.ErrorIs(t, err, ErrMalformedTemplate)
	})
}

func TestIsValidationError(t *testing.T) {
	assert.True(t, IsValidationError(ErrInvalidCriteria))
	assert.True(t, IsValidationError(ErrUnknownTemplateID))
	assert.False(t, IsValidationError(ErrEmptyCatalog))
}
