// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
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
	ErrCodeLoanValidationFailed ErrorCode = "LOAN_VALIDATION_FAILED"
	ErrCodeDuplicateLoan        ErrorCode = "DUPLICATE_LOAN"
	ErrCodeApplicantNotFound    ErrorCode = "APPLICANT_NOT_FOUND"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"

	ErrCodeIdempotencyStoreFailed ErrorCode = "IDEMPOTENCY_STORE_FAILED"
	ErrCodeRuleConfigLoadFailed   ErrorCode = "RULE_CONFIG_LOAD_FAILED"
	ErrCodeEligibilityFailed      ErrorCode = "ELIGIBILITY_EVALUATION_FAILED"
	ErrCodePaymentTermInvalid     ErrorCode = "PAYMENT_TERM_INVALID"

	ErrCodeScoringServiceFailed ErrorCode = "SCORING_SERVICE_FAILED"
	ErrCodeScoringTimeout       ErrorCode = "SCORING_TIMEOUT"
	ErrCodeRecommenderFailed    ErrorCode = "RECOMMENDER_FAILED"
	ErrCodeRecommenderTimeout   ErrorCode = "RECOMMENDER_TIMEOUT"

	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeIndexWriteFailed              ErrorCode = "INDEX_WRITE_FAILED"
	ErrCodeIndexNotFound                 ErrorCode = "INDEX_NOT_FOUND"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
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

// NewLoanValidationFailedError creates a non-retryable request validation error.
func NewLoanValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeLoanValidationFailed,
		Message:   "Loan request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateLoanError creates a non-retryable duplicate loan error.
func NewDuplicateLoanError(loanID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateLoan,
		Message:   "Loan already exists",
		Details:   fmt.Sprintf("loanId: %s", loanID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewApplicantNotFoundError creates a non-retryable missing applicant error.
func NewApplicantNotFoundError(applicantID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeApplicantNotFound,
		Message:   "Applicant not found",
		Details:   fmt.Sprintf("applicantId: %s", applicantID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseInsertFailedError creates a retryable database insert error.
func NewDatabaseInsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseInsertFailed,
		Message:   "Database insert operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryTimeoutError creates a retryable query timeout error.
func NewQueryTimeoutError(operation string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryTimeout,
		Message:   "Database query timeout",
		Details:   fmt.Sprintf("operation: %s", operation),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewIdempotencyStoreFailedError creates a retryable idempotency store error.
func NewIdempotencyStoreFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeIdempotencyStoreFailed,
		Message:   "Idempotency store unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRuleConfigLoadFailedError creates a retryable rule configuration error.
func NewRuleConfigLoadFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRuleConfigLoadFailed,
		Message:   "Eligibility rule configuration could not be loaded",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewPaymentTermInvalidError creates a non-retryable amortization input error.
func NewPaymentTermInvalidError(months int) *StandardError {
	return &StandardError{
		Code:      ErrCodePaymentTermInvalid,
		Message:   "Loan term must be positive to amortize",
		Details:   fmt.Sprintf("months: %d", months),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewScoringServiceFailedError creates a retryable scoring service error.
func NewScoringServiceFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeScoringServiceFailed,
		Message:   "Scoring service error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewScoringTimeoutError creates a retryable scoring timeout error.
func NewScoringTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeScoringTimeout,
		Message:   "Scoring service timeout",
		Details:   "scoring call exceeded its deadline",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRecommenderFailedError creates a retryable recommender error.
func NewRecommenderFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRecommenderFailed,
		Message:   "Recommendation service error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewElasticsearchConnectionFailedError creates a retryable Elasticsearch connection error.
func NewElasticsearchConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeElasticsearchConnectionFailed,
		Message:   "Elasticsearch connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewIndexWriteFailedError creates a retryable index write error.
func NewIndexWriteFailedError(index string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeIndexWriteFailed,
		Message:   "Elasticsearch index write failed",
		Details:   fmt.Sprintf("index: %s, error: %s", index, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewIndexNotFoundError creates a non-retryable index not found error.
func NewIndexNotFoundError(indexName string) *StandardError {
	return &StandardError{
		Code:      ErrCodeIndexNotFound,
		Message:   "Elasticsearch index not found",
		Details:   fmt.Sprintf("indexName: %s", indexName),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	return &StandardError{
		Code:      "BUSINESS_RULE_VIOLATION",
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return &StandardError{
		Code:      "RESOURCE_NOT_FOUND",
		Message:   fmt.Sprintf("Resource not found in %s", service),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewAuthenticationError(details string) *StandardError {
	return &StandardError{
		Code:      "AUTHENTICATION_ERROR",
		Message:   "Authentication failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes; the
// process models use the same code strings.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeLoanValidationFailed:          "LOAN_VALIDATION_FAILED",
	ErrCodeDuplicateLoan:                 "DUPLICATE_LOAN",
	ErrCodeApplicantNotFound:             "APPLICANT_NOT_FOUND",
	ErrCodeDatabaseConnectionFailed:      "DATABASE_CONNECTION_FAILED",
	ErrCodeDatabaseInsertFailed:          "DATABASE_INSERT_FAILED",
	ErrCodeQueryExecutionFailed:          "QUERY_EXECUTION_FAILED",
	ErrCodeQueryTimeout:                  "QUERY_TIMEOUT",
	ErrCodeIdempotencyStoreFailed:        "IDEMPOTENCY_STORE_FAILED",
	ErrCodeRuleConfigLoadFailed:          "RULE_CONFIG_LOAD_FAILED",
	ErrCodeEligibilityFailed:             "ELIGIBILITY_EVALUATION_FAILED",
	ErrCodePaymentTermInvalid:            "PAYMENT_TERM_INVALID",
	ErrCodeScoringServiceFailed:          "SCORING_SERVICE_FAILED",
	ErrCodeScoringTimeout:                "SCORING_TIMEOUT",
	ErrCodeRecommenderFailed:             "RECOMMENDER_FAILED",
	ErrCodeRecommenderTimeout:            "RECOMMENDER_TIMEOUT",
	ErrCodeElasticsearchConnectionFailed: "ELASTICSEARCH_CONNECTION_FAILED",
	ErrCodeIndexWriteFailed:              "INDEX_WRITE_FAILED",
	ErrCodeIndexNotFound:                 "INDEX_NOT_FOUND",
	ErrCodeNotificationSendFailed:        "NOTIFICATION_SEND_FAILED",
}

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeIdempotencyStoreFailed,
		ErrCodeRuleConfigLoadFailed,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeIndexWriteFailed,
		ErrCodeNotificationSendFailed:
		return 3 // Retryable technical errors

	case ErrCodeQueryTimeout,
		ErrCodeScoringTimeout,
		ErrCodeRecommenderTimeout:
		return 2 // Partial retry for timeouts

	case ErrCodeScoringServiceFailed,
		ErrCodeRecommenderFailed:
		return 1 // Collaborators degrade; one retry before giving up

	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code) // Fallback
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
	case strings.Contains(codeStr, "LOAN") || strings.Contains(codeStr, "APPLICANT") || strings.Contains(codeStr, "ELIGIBILITY") || strings.Contains(codeStr, "PAYMENT"):
		return "LENDING"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "IDEMPOTENCY"):
		return "IDEMPOTENCY"
	case strings.Contains(codeStr, "SCORING") || strings.Contains(codeStr, "RECOMMENDER"):
		return "COLLABORATOR"
	case strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
