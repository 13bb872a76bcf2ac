// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"lesson-template-workers/internal/engine/compliance"
	"lesson-template-workers/internal/engine/matching"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Engine validation errors. None of these are retried.
const (
	ErrCodeInvalidCriteria       ErrorCode = "INVALID_CRITERIA"
	ErrCodeUnsupportedOutputType ErrorCode = "UNSUPPORTED_OUTPUT_TYPE"
	ErrCodeMalformedTemplate     ErrorCode = "MALFORMED_TEMPLATE"
	ErrCodeEmptyCatalog          ErrorCode = "EMPTY_CATALOG"
	ErrCodeUnknownTemplateID     ErrorCode = "UNKNOWN_TEMPLATE_ID"
	ErrCodeNoStandardsRequested  ErrorCode = "NO_STANDARDS_REQUESTED"
	ErrCodeUnknownStandard       ErrorCode = "UNKNOWN_STANDARD"
	ErrCodeInputValidationFailed ErrorCode = "INPUT_VALIDATION_FAILED"
)

// Infrastructure errors around the engine.
const (
	ErrCodeCatalogUnavailable     ErrorCode = "CATALOG_UNAVAILABLE"
	ErrCodePreferencesUnavailable ErrorCode = "PREFERENCES_UNAVAILABLE"
	ErrCodeEventRecordingFailed   ErrorCode = "EVENT_RECORDING_FAILED"

	ErrCodeDatabaseConnectionFailed      ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed          ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout                  ErrorCode = "QUERY_TIMEOUT"
	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeSearchQueryFailed             ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeBrokerUnavailable             ErrorCode = "BROKER_UNAVAILABLE"
	ErrCodeBrokerRejected                ErrorCode = "BROKER_REJECTED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message string, cause error, retryable bool) *StandardError {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewInputValidationError reports job variables that failed schema validation.
func NewInputValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInputValidationFailed,
		Message:   "Job variables failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewCatalogUnavailableError(err error) *StandardError {
	return newError(ErrCodeCatalogUnavailable, "Template catalog unavailable", err, true)
}

func NewPreferencesUnavailableError(err error) *StandardError {
	return newError(ErrCodePreferencesUnavailable, "User preference signal unavailable", err, true)
}

func NewEventRecordingFailedError(err error) *StandardError {
	return newError(ErrCodeEventRecordingFailed, "Failed to record recommendation event", err, true)
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection failed", err, true)
}

func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	se := newError(ErrCodeQueryExecutionFailed, "Query execution failed", err, true)
	se.Metadata = map[string]interface{}{"queryType": queryType}
	return se
}

func NewSearchQueryFailedError(index string, err error) *StandardError {
	se := newError(ErrCodeSearchQueryFailed, "Search query failed", err, true)
	se.Metadata = map[string]interface{}{"index": index}
	return se
}

// NewBrokerUnavailableError reports a zeebe gateway that could not be reached.
func NewBrokerUnavailableError(err error) *StandardError {
	return newError(ErrCodeBrokerUnavailable, "Workflow broker unavailable", err, true)
}

// NewBrokerRejectedError reports a command the broker refused outright.
func NewBrokerRejectedError(err error) *StandardError {
	return newError(ErrCodeBrokerRejected, "Workflow broker rejected command", err, false)
}

func NewTimeoutError(operation string, err error) *StandardError {
	se := newError(ErrCodeQueryTimeout, "Operation timed out", err, true)
	se.Metadata = map[string]interface{}{"operation": operation}
	return se
}

// FromEngineError maps engine and infrastructure errors onto StandardError.
// Errors that already are StandardErrors pass through unchanged.
func FromEngineError(err error) *StandardError {
	if err == nil {
		return nil
	}

	var se *StandardError
	if stderrors.As(err, &se) {
		return se
	}

	switch {
	case stderrors.Is(err, matching.ErrInvalidCriteria):
		return newError(ErrCodeInvalidCriteria, "Invalid selection criteria", err, false)
	case stderrors.Is(err, matching.ErrUnsupportedOutputType):
		return newError(ErrCodeUnsupportedOutputType, "Unsupported output type", err, false)
	case stderrors.Is(err, matching.ErrMalformedTemplate):
		return newError(ErrCodeMalformedTemplate, "Malformed catalog template", err, false)
	case stderrors.Is(err, matching.ErrEmptyCatalog):
		return newError(ErrCodeEmptyCatalog, "Template catalog is empty", err, false)
	case stderrors.Is(err, matching.ErrUnknownTemplateID):
		return newError(ErrCodeUnknownTemplateID, "Unknown template id", err, false)
	case stderrors.Is(err, compliance.ErrNoStandardsRequested):
		return newError(ErrCodeNoStandardsRequested, "No compliance standards requested", err, false)
	case stderrors.Is(err, compliance.ErrUnknownStandard):
		return newError(ErrCodeUnknownStandard, "Unknown compliance standard", err, false)
	case stderrors.Is(err, context.DeadlineExceeded):
		return newError(ErrCodeQueryTimeout, "Operation timed out", err, true)
	default:
		return newError(ErrCodeInternal, "Unexpected error", err, false)
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to the BPMN error codes caught by
// boundary events. Codes not listed are thrown as-is.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidCriteria:               "INVALID_CRITERIA",
	ErrCodeUnsupportedOutputType:         "INVALID_CRITERIA",
	ErrCodeInputValidationFailed:         "INVALID_CRITERIA",
	ErrCodeMalformedTemplate:             "CATALOG_ERROR",
	ErrCodeEmptyCatalog:                  "EMPTY_CATALOG",
	ErrCodeUnknownTemplateID:             "UNKNOWN_TEMPLATE_ID",
	ErrCodeNoStandardsRequested:          "INVALID_COMPLIANCE_REQUEST",
	ErrCodeUnknownStandard:               "INVALID_COMPLIANCE_REQUEST",
	ErrCodeCatalogUnavailable:            "CATALOG_ERROR",
	ErrCodePreferencesUnavailable:        "PREFERENCES_ERROR",
	ErrCodeEventRecordingFailed:          "TRACKING_ERROR",
	ErrCodeDatabaseConnectionFailed:      "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryExecutionFailed:          "QUERY_EXECUTION_FAILED",
	ErrCodeQueryTimeout:                  "QUERY_TIMEOUT",
	ErrCodeElasticsearchConnectionFailed: "ELASTICSEARCH_CONNECTION_FAILED",
	ErrCodeSearchQueryFailed:             "SEARCH_QUERY_FAILED",
	ErrCodeBrokerUnavailable:             "BROKER_UNAVAILABLE",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeCatalogUnavailable,
		ErrCodePreferencesUnavailable,
		ErrCodeEventRecordingFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeBrokerUnavailable:
		return 3

	case ErrCodeQueryTimeout:
		return 2

	default:
		return 0 // validation and business errors
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "STANDARD"):
		return "COMPLIANCE"
	case strings.Contains(codeStr, "CATALOG") || strings.Contains(codeStr, "TEMPLATE"):
		return "CATALOG"
	case strings.Contains(codeStr, "PREFERENCES") || strings.Contains(codeStr, "EVENT"):
		return "PERSONALIZATION"
	case strings.Contains(codeStr, "BROKER"):
		return "WORKFLOW"
	case strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "UNSUPPORTED"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
