// Package errors provides structured error handling for storekb's outer
// surfaces: the CLI, the MCP server and the Shopify client.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (corpus, files)
//   - 3XX: Network errors
//   - 4XX: Validation errors
//   - 5XX: Internal errors
//   - 6XX: Upstream API errors
package errors

import "strings"

// Category defines error categories for classification.
type Category string

const (
	CategoryConfig     Category = "CONFIG"
	CategoryIO         Category = "IO"
	CategoryNetwork    Category = "NETWORK"
	CategoryValidation Category = "VALIDATION"
	CategoryInternal   Category = "INTERNAL"
	CategoryUpstream   Category = "UPSTREAM"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound     = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid      = "ERR_102_CONFIG_INVALID"
	ErrCodeCredentialsMissing = "ERR_103_CREDENTIALS_MISSING"

	// IO errors (200-299)
	ErrCodeCorpusNotFound = "ERR_201_CORPUS_NOT_FOUND"
	ErrCodeFileUnreadable = "ERR_202_FILE_UNREADABLE"
	ErrCodeFileTooLarge   = "ERR_203_FILE_TOO_LARGE"

	// Network errors (300-399)
	ErrCodeNetworkTimeout     = "ERR_301_NETWORK_TIMEOUT"
	ErrCodeNetworkUnavailable = "ERR_302_NETWORK_UNAVAILABLE"

	// Validation errors (400-499)
	ErrCodeInvalidInput       = "ERR_401_INVALID_INPUT"
	ErrCodeQueryEmpty         = "ERR_402_QUERY_EMPTY"
	ErrCodeInvalidOrderNumber = "ERR_403_INVALID_ORDER_NUMBER"
	ErrCodeInvalidEmail       = "ERR_404_INVALID_EMAIL"

	// Internal errors (500-599)
	ErrCodeInternal     = "ERR_501_INTERNAL"
	ErrCodeSearchFailed = "ERR_502_SEARCH_FAILED"
	ErrCodeIndexFailed  = "ERR_503_INDEX_FAILED"

	// Upstream API errors (600-699)
	ErrCodeUpstreamStatus      = "ERR_601_UPSTREAM_STATUS"
	ErrCodeUpstreamRateLimited = "ERR_602_UPSTREAM_RATE_LIMITED"
	ErrCodeUpstreamUnavailable = "ERR_603_UPSTREAM_UNAVAILABLE"
	ErrCodeUpstreamBadResponse = "ERR_604_UPSTREAM_BAD_RESPONSE"
	ErrCodeUpstreamAuth        = "ERR_605_UPSTREAM_AUTH"
	ErrCodeOrderNotFound       = "ERR_606_ORDER_NOT_FOUND"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 || !strings.HasPrefix(code, "ERR_") {
		return CategoryInternal
	}

	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '3':
		return CategoryNetwork
	case '4':
		return CategoryValidation
	case '6':
		return CategoryUpstream
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeConfigInvalid, ErrCodeCorpusNotFound:
		return SeverityFatal
	}
	if isRetryableCode(code) {
		return SeverityWarning
	}
	return SeverityError
}

// isRetryableCode checks if an error code represents a retryable error.
func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeNetworkTimeout, ErrCodeNetworkUnavailable,
		ErrCodeUpstreamRateLimited, ErrCodeUpstreamUnavailable:
		return true
	default:
		return false
	}
}
