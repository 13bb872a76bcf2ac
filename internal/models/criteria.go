// internal/models/criteria.go
package models

// SelectionCriteria is the canonical, validated form of a teacher's template request.
// Only the criteria normalizer builds these.
type SelectionCriteria struct {
	Subject    string     `json:"subject"`
	GradeLevel int        `json:"gradeLevel"`
	OutputType OutputType `json:"outputType"`
	Difficulty Difficulty `json:"difficulty,omitempty"`
	Keywords   []string   `json:"keywords,omitempty"`
}

// UserPreferenceSignal summarises a user's recent template usage.
type UserPreferenceSignal struct {
	OutputTypeCounts    map[OutputType]int `json:"outputTypeCounts,omitempty"`
	SubjectCounts       map[string]int     `json:"subjectCounts,omitempty"`
	PreferredDifficulty Difficulty         `json:"preferredDifficulty,omitempty"`
}

// IsEmpty reports whether the signal carries nothing to personalize on.
func (s *UserPreferenceSignal) IsEmpty() bool {
	if s == nil {
		return true
	}
	return len(s.OutputTypeCounts) == 0 && len(s.SubjectCounts) == 0 && s.PreferredDifficulty == ""
}
