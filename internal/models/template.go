// internal/models/template.go
package models

type OutputType string

const (
	OutputTypeLessonPlan   OutputType = "lesson-plan"
	OutputTypePresentation OutputType = "presentation"
	OutputTypeAssessment   OutputType = "assessment"
	OutputTypeInteractive  OutputType = "interactive"
	OutputTypeResearch     OutputType = "research"
)

// OutputTypes lists every supported output type in declaration order.
var OutputTypes = []OutputType{
	OutputTypeLessonPlan,
	OutputTypePresentation,
	OutputTypeAssessment,
	OutputTypeInteractive,
	OutputTypeResearch,
}

func (o OutputType) Valid() bool {
	for _, t := range OutputTypes {
		if o == t {
			return true
		}
	}
	return false
}

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Level returns the ordinal position on beginner < intermediate < advanced.
// Unknown or empty difficulties return 0.
func (d Difficulty) Level() int {
	switch d {
	case DifficultyBeginner:
		return 1
	case DifficultyIntermediate:
		return 2
	case DifficultyAdvanced:
		return 3
	default:
		return 0
	}
}

func (d Difficulty) Valid() bool {
	return d.Level() > 0
}

// SupportedGradeLevels are the only grades a selection request may target.
var SupportedGradeLevels = []int{6, 7, 8, 9}

func IsSupportedGradeLevel(grade int) bool {
	for _, g := range SupportedGradeLevels {
		if g == grade {
			return true
		}
	}
	return false
}

// TemplateRecord is a catalog entry. The catalog owns it; the engine only reads it.
type TemplateRecord struct {
	ID               string     `json:"id"`
	Name             string     `json:"name,omitempty"`
	Subject          string     `json:"subject"`
	GradeLevels      []int      `json:"gradeLevels"`
	OutputType       OutputType `json:"outputType"`
	Difficulty       Difficulty `json:"difficulty,omitempty"`
	Tags             []string   `json:"tags,omitempty"`
	ComplianceLabels []string   `json:"complianceLabels,omitempty"`
	RecommendedTools []string   `json:"recommendedTools,omitempty"`
}
