// internal/models/compliance.go
package models

const (
	GradeA = "A"
	GradeB = "B"
	GradeC = "C"
	GradeD = "D"
	GradeF = "F"
)

type StandardResult struct {
	Standard    string   `json:"standard"`
	DisplayName string   `json:"displayName"`
	Score       int      `json:"score"`
	Suggestions []string `json:"suggestions"`
}

type OverallResult struct {
	Score           int      `json:"score"`
	Grade           string   `json:"grade"`
	Recommendations []string `json:"recommendations"`
}

// ComplianceReport is keyed by canonical standard name.
type ComplianceReport struct {
	Standards map[string]StandardResult `json:"standards"`
	Overall   OverallResult             `json:"overall"`
}
