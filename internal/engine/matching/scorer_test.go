// internal/engine/matching/scorer_test.go
package matching

import (
	"testing"

	"lesson-template-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func mathCriteria() models.SelectionCriteria {
	return models.SelectionCriteria{
		Subject:    "Toán",
		GradeLevel: 8,
		OutputType: models.OutputTypeLessonPlan,
		Difficulty: models.DifficultyBeginner,
	}
}

func templateT1() models.TemplateRecord {
	return models.TemplateRecord{
		ID:          "T1",
		Subject:     "Toán",
		GradeLevels: []int{8},
		OutputType:  models.OutputTypeLessonPlan,
		Difficulty:  models.DifficultyBeginner,
	}
}

func templateT2() models.TemplateRecord {
	return models.TemplateRecord{
		ID:          "T2",
		Subject:     "Toán",
		GradeLevels: []int{8},
		OutputType:  models.OutputTypePresentation,
		Difficulty:  models.DifficultyAdvanced,
	}
}

// ==========================
// Score
// ==========================

func TestScorer_Score_ConcreteScenario(t *testing.T) {
	s := NewDefaultScorer()

	r1, err := s.Score(mathCriteria(), templateT1())
	require.NoError(t, err)
	assert.Equal(t, 1.0, r1.Score)
	assert.Equal(t, models.ConfidenceHigh, r1.Confidence)
	assert.Equal(t, 5, r1.Breakdown.NonZeroComponents())
	assert.Contains(t, r1.Reasons, "keywords not requested, exact match (+0.10)")
	for _, reason := range r1.Reasons {
		assert.NotContains(t, reason, "keywords matched")
	}

	r2, err := s.Score(mathCriteria(), templateT2())
	require.NoError(t, err)
	assert.Equal(t, 0.6, r2.Score)
	assert.Equal(t, models.ConfidenceMedium, r2.Confidence)
	assert.Equal(t, []string{
		"subject matched (+0.35)",
		"grade level matched (+0.25)",
		"output type no match",
	}, r2.Reasons)
}

func TestScorer_Score_Components(t *testing.T) {
	s := NewDefaultScorer()

	tests := []struct {
		name      string
		criteria  func() models.SelectionCriteria
		template  func() models.TemplateRecord
		wantScore float64
		wantConf  models.Confidence
		reason    string
	}{
		{
			name:     "subject matches case-insensitively",
			criteria: mathCriteria,
			template: func() models.TemplateRecord {
				tpl := templateT1()
				tpl.Subject = "TOÁN"
				return tpl
			},
			wantScore: 1.0,
			wantConf:  models.ConfidenceHigh,
			reason:    "subject matched (+0.35)",
		},
		{
			name:     "alternate subject spelling is not matched",
			criteria: mathCriteria,
			template: func() models.TemplateRecord {
				tpl := templateT1()
				tpl.Subject = "Toán học"
				return tpl
			},
			wantScore: 0.55,
			wantConf:  models.ConfidenceMedium,
			reason:    "subject no match",
		},
		{
			name:     "difficulty one level apart earns half weight",
			criteria: mathCriteria,
			template: func() models.TemplateRecord {
				tpl := templateT1()
				tpl.Difficulty = models.DifficultyIntermediate
				return tpl
			},
			wantScore: 0.85,
			wantConf:  models.ConfidenceHigh,
			reason:    "difficulty matched (+0.05)",
		},
		{
			name: "absent criteria difficulty earns nothing",
			criteria: func() models.SelectionCriteria {
				c := mathCriteria()
				c.Difficulty = ""
				return c
			},
			template:  templateT1,
			wantScore: 0.8,
			wantConf:  models.ConfidenceHigh,
			reason:    "output type matched (+0.20)",
		},
		{
			name:     "grade outside template grades",
			criteria: mathCriteria,
			template: func() models.TemplateRecord {
				tpl := templateT1()
				tpl.GradeLevels = []int{6, 7}
				return tpl
			},
			wantScore: 0.65,
			wantConf:  models.ConfidenceMedium,
			reason:    "grade level no match",
		},
		{
			name: "half of keywords found in tags and labels",
			criteria: func() models.SelectionCriteria {
				c := mathCriteria()
				c.Keywords = []string{"hình học", "dự án"}
				return c
			},
			template: func() models.TemplateRecord {
				tpl := templateT1()
				tpl.Tags = []string{"Hình học không gian"}
				tpl.ComplianceLabels = []string{"GDPT 2018"}
				return tpl
			},
			wantScore: 0.95,
			wantConf:  models.ConfidenceHigh,
			reason:    "keywords matched (+0.05)",
		},
		{
			name: "keywords fully covered by tags and compliance labels",
			criteria: func() models.SelectionCriteria {
				c := mathCriteria()
				c.Keywords = []string{"hình học", "gdpt"}
				return c
			},
			template: func() models.TemplateRecord {
				tpl := templateT1()
				tpl.Tags = []string{"Hình học không gian"}
				tpl.ComplianceLabels = []string{"GDPT 2018"}
				return tpl
			},
			wantScore: 1.0,
			wantConf:  models.ConfidenceHigh,
			reason:    "keywords matched (+0.10)",
		},
		{
			name:     "nothing matches",
			criteria: mathCriteria,
			template: func() models.TemplateRecord {
				return models.TemplateRecord{
					ID:          "T9",
					Subject:     "Lịch sử",
					GradeLevels: []int{6},
					OutputType:  models.OutputTypeResearch,
				}
			},
			wantScore: 0,
			wantConf:  models.ConfidenceLow,
			reason:    "subject no match",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.Score(tt.criteria(), tt.template())
			require.NoError(t, err)
			assert.InDelta(t, tt.wantScore, res.Score, 1e-9)
			assert.Equal(t, tt.wantConf, res.Confidence)
			assert.Contains(t, res.Reasons, tt.reason)
			assert.GreaterOrEqual(t, res.Score, 0.0)
			assert.LessOrEqual(t, res.Score, 1.0)
		})
	}
}

func TestScorer_Score_MalformedTemplate(t *testing.T) {
	s := NewDefaultScorer()

	tests := []struct {
		name   string
		mutate func(*models.TemplateRecord)
		field  string
	}{
		{"missing id", func(tpl *models.TemplateRecord) { tpl.ID = "" }, "id"},
		{"missing subject", func(tpl *models.TemplateRecord) { tpl.Subject = " " }, "subject"},
		{"missing grade levels", func(tpl *models.TemplateRecord) { tpl.GradeLevels = nil }, "gradeLevels"},
		{"missing output type", func(tpl *models.TemplateRecord) { tpl.OutputType = "" }, "outputType"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := templateT1()
			tt.mutate(&tpl)
			_, err := s.Score(mathCriteria(), tpl)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedTemplate)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestScorer_Score_MissingTemplateDifficultyIsNotMalformed(t *testing.T) {
	tpl := templateT1()
	tpl.Difficulty = ""

	res, err := NewDefaultScorer().Score(mathCriteria(), tpl)
	require.NoError(t, err)
	assert.InDelta(t, 0.8, res.Score, 1e-9)
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Weights.Subject = 0.45
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Confidence.Medium = 0.9
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Personalization.Subject = -0.1
	assert.Error(t, cfg.Validate())

	_, err := NewScorer(Config{})
	assert.Error(t, err)
}

func TestScorer_CustomWeights(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Weights = Weights{Subject: 0.5, GradeLevel: 0.2, OutputType: 0.2, Difficulty: 0.05, Keywords: 0.05}
	s, err := NewScorer(cfg)
	require.NoError(t, err)

	res, err := s.Score(mathCriteria(), templateT2())
	require.NoError(t, err)
	assert.InDelta(t, 0.7, res.Score, 1e-9)
	assert.Contains(t, res.Reasons, "subject matched (+0.50)")
}
