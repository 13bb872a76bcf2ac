// internal/workers/templates/compare-templates/handler_test.go
package comparetemplates

import (
	"context"
	"testing"
	"time"

	"lesson-template-workers/internal/catalog"
	"lesson-template-workers/internal/common/errors"
	"lesson-template-workers/internal/common/logger"
	"lesson-template-workers/internal/engine/matching"
	"lesson-template-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func intPtr(v int) *int { return &v }

func createTestCatalog() catalog.Static {
	return catalog.Static{
		{ID: "T2", Subject: "Toán", GradeLevels: []int{8}, OutputType: models.OutputTypePresentation, Difficulty: models.DifficultyAdvanced},
		{ID: "T1", Subject: "Toán", GradeLevels: []int{8}, OutputType: models.OutputTypeLessonPlan, Difficulty: models.DifficultyBeginner},
		{ID: "LIT", Subject: "Ngữ văn", GradeLevels: []int{6}, OutputType: models.OutputTypeResearch},
		{ID: "BROKEN", Subject: "Toán", OutputType: models.OutputTypeLessonPlan},
	}
}

func createTestInput(ids ...string) *Input {
	return &Input{
		RawCriteria: matching.RawCriteria{
			Subject:    "Toán",
			GradeLevel: intPtr(8),
			OutputType: "lesson-plan",
			Difficulty: "beginner",
		},
		TemplateIDs: ids,
	}
}

func newTestHandler(t *testing.T) *Handler {
	h, err := NewHandler(&Config{Timeout: 2 * time.Second}, createTestCatalog(), matching.NewDefaultScorer(), logger.NewTestLogger(t), nil)
	require.NoError(t, err)
	return h
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_ComparesRequestedTemplates(t *testing.T) {
	h := newTestHandler(t)

	output, err := h.Execute(context.Background(), createTestInput("LIT", "T2", "T1", "T2"))
	require.NoError(t, err)

	require.Len(t, output.Comparison, 3, "duplicate ids are compared once")
	assert.Equal(t, "T1", output.Comparison[0].Template.ID)
	assert.Equal(t, "T2", output.Comparison[1].Template.ID)
	assert.Equal(t, "LIT", output.Comparison[2].Template.ID)
	assert.Equal(t, 0.0, output.Comparison[2].Score, "zero scores are kept in comparisons")
	assert.Equal(t, "T1", output.RecommendedTemplateID)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    *Input
		sentinel error
		code     errors.ErrorCode
		contains string
	}{
		{
			name:     "no ids",
			input:    createTestInput(),
			sentinel: matching.ErrInvalidCriteria,
			code:     errors.ErrCodeInvalidCriteria,
		},
		{
			name:     "unknown id",
			input:    createTestInput("T1", "NOPE"),
			sentinel: matching.ErrUnknownTemplateID,
			code:     errors.ErrCodeUnknownTemplateID,
			contains: "NOPE",
		},
		{
			name:     "malformed template requested",
			input:    createTestInput("BROKEN"),
			sentinel: matching.ErrMalformedTemplate,
			code:     errors.ErrCodeMalformedTemplate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t)

			output, err := h.Execute(context.Background(), tt.input)
			require.Error(t, err)
			assert.Nil(t, output)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Equal(t, tt.code, errors.FromEngineError(err).Code)
			if tt.contains != "" {
				assert.Contains(t, err.Error(), tt.contains)
			}
		})
	}
}

func TestInputSchema_RequiresTemplateIDs(t *testing.T) {
	h := newTestHandler(t)

	var in Input
	err := h.runtime.Decode(`{"subject":"Toán","gradeLevel":8,"outputType":"lesson-plan"}`, &in)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInputValidationFailed, errors.FromEngineError(err).Code)
}
