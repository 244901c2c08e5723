// Package errors provides standardized error handling for the intake
// workflow and its BPMN integration.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Intake errors
	ErrCodeNoActiveIntake       ErrorCode = "NO_ACTIVE_INTAKE"
	ErrCodeValidationFailed     ErrorCode = "VALIDATION_FAILED"
	ErrCodeDuplicateApplication ErrorCode = "DUPLICATE_APPLICATION"
	ErrCodeDraftCacheFailed     ErrorCode = "DRAFT_CACHE_FAILED"

	// Review errors
	ErrCodeApplicationNotFound  ErrorCode = "APPLICATION_NOT_FOUND"
	ErrCodeNoPendingApplication ErrorCode = "NO_PENDING_APPLICATION"
	ErrCodeAlreadyProcessed     ErrorCode = "ALREADY_PROCESSED"
	ErrCodePermissionDenied     ErrorCode = "PERMISSION_DENIED"

	// Infrastructure errors
	ErrCodeStoreUnavailable       ErrorCode = "STORE_UNAVAILABLE"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeArchiveIndexFailed     ErrorCode = "ARCHIVE_INDEX_FAILED"
	ErrCodeAuditInsertFailed      ErrorCode = "AUDIT_INSERT_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// CodeOf extracts the ErrorCode from err, walking wrapped errors.
// Returns "" when err carries no StandardError.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ""
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the workflow engine.
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

// ToErrorVariables returns a map suitable for setting job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewNoActiveIntakeError creates a non-retryable intake-sequencing error.
func NewNoActiveIntakeError(userID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNoActiveIntake,
		Message:   "No intake in progress for applicant",
		Details:   fmt.Sprintf("userId: %s", userID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationFailedError creates a non-retryable answer validation error.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Submitted answers failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateApplicationError creates a non-retryable duplicate error.
func NewDuplicateApplicationError(userID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateApplication,
		Message:   "Applicant already has a pending application",
		Details:   fmt.Sprintf("userId: %s", userID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDraftCacheFailedError creates a retryable draft cache error.
func NewDraftCacheFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDraftCacheFailed,
		Message:   "Draft cache operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewApplicationNotFoundError creates a non-retryable lookup error.
func NewApplicationNotFoundError(applicationID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeApplicationNotFound,
		Message:   "Application not found",
		Details:   fmt.Sprintf("applicationId: %s", applicationID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNoPendingApplicationError creates a non-retryable by-applicant lookup error.
func NewNoPendingApplicationError(userID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNoPendingApplication,
		Message:   "No pending application found for this user",
		Details:   fmt.Sprintf("userId: %s", userID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAlreadyProcessedError creates a non-retryable terminal-state error.
// Callers must treat this as "someone already acted", not retry.
func NewAlreadyProcessedError(applicationID, status string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAlreadyProcessed,
		Message:   "Application has already been processed",
		Details:   fmt.Sprintf("applicationId: %s, status: %s", applicationID, status),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPermissionDeniedError creates a non-retryable authorization error.
func NewPermissionDeniedError(userID string) *StandardError {
	return &StandardError{
		Code:      ErrCodePermissionDenied,
		Message:   "You do not have permission to perform this action",
		Details:   fmt.Sprintf("userId: %s", userID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreUnavailableError creates a retryable durable-store error.
func NewStoreUnavailableError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreUnavailable,
		Message:   "Application store operation failed",
		Details:   fmt.Sprintf("op: %s, error: %s", op, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification send failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewArchiveIndexFailedError creates a retryable archive indexing error.
func NewArchiveIndexFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeArchiveIndexFailed,
		Message:   "Archive index operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuditInsertFailedError creates a retryable audit log error.
func NewAuditInsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuditInsertFailed,
		Message:   "Audit log insert failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Retry & BPMN Mapping
// ==========================

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeStoreUnavailable,
		ErrCodeNotificationSendFailed,
		ErrCodeArchiveIndexFailed,
		ErrCodeAuditInsertFailed,
		ErrCodeDraftCacheFailed:
		return 3 // Retryable technical errors

	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for the engine.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      string(stdErr.Code),
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
	case strings.Contains(codeStr, "INTAKE") || strings.Contains(codeStr, "DRAFT") || strings.Contains(codeStr, "DUPLICATE"):
		return "INTAKE"
	case strings.Contains(codeStr, "PROCESSED") || strings.Contains(codeStr, "PENDING") || strings.Contains(codeStr, "APPLICATION"):
		return "REVIEW"
	case strings.Contains(codeStr, "PERMISSION"):
		return "AUTH"
	case strings.Contains(codeStr, "STORE"):
		return "STORE"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
