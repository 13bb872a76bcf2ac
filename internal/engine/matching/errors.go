// internal/engine/matching/errors.go
package matching

import "errors"

var (
	ErrInvalidCriteria       = errors.New("INVALID_CRITERIA")
	ErrUnsupportedOutputType = errors.New("UNSUPPORTED_OUTPUT_TYPE")
	ErrMalformedTemplate     = errors.New("MALFORMED_TEMPLATE")
	ErrEmptyCatalog          = errors.New("EMPTY_CATALOG")
	ErrUnknownTemplateID     = errors.New("UNKNOWN_TEMPLATE_ID")
)
