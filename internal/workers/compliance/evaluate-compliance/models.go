// internal/workers/compliance/evaluate-compliance/models.go
package evaluatecompliance

import "lesson-template-workers/internal/models"

type Input struct {
	Content    string   `json:"content"`
	GradeLevel int      `json:"gradeLevel,omitempty"`
	Subject    string   `json:"subject,omitempty"`
	Standards  []string `json:"standards"`
}

// Output carries the full report plus the overall score and grade as
// top-level variables for gateway conditions.
type Output struct {
	Compliance      *models.ComplianceReport `json:"compliance"`
	ComplianceScore int                      `json:"complianceScore"`
	ComplianceGrade string                   `json:"complianceGrade"`
}
