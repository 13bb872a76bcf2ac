// internal/engine/compliance/errors.go
package compliance

import "errors"

var (
	ErrNoStandardsRequested = errors.New("NO_STANDARDS_REQUESTED")
	ErrUnknownStandard      = errors.New("UNKNOWN_STANDARD")
	ErrInvalidRuleBook      = errors.New("INVALID_RULE_BOOK")
)
