// Package mcp implements the Model Context Protocol (MCP) server for storekb.
package mcp

import (
	"context"
	"errors"
	"fmt"

	skerrors "github.com/Aman-CERP/storekb/internal/errors"
)

// Custom MCP error codes for storekb.
const (
	// ErrCodeNotConfigured indicates a tool whose backend is not configured.
	ErrCodeNotConfigured = -32001

	// ErrCodeUpstreamFailed indicates the Shopify API rejected or failed a call.
	ErrCodeUpstreamFailed = -32002

	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout = -32003

	// ErrCodeDocumentNotFound indicates a document is not in the knowledge base.
	ErrCodeDocumentNotFound = -32004

	// ErrCodeFileTooLarge indicates a document is too large to serve.
	ErrCodeFileTooLarge = -32005

	// Standard JSON-RPC error codes.
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
)

// Sentinel errors for internal use.
var (
	// ErrShopifyNotConfigured indicates order tools were called without credentials.
	ErrShopifyNotConfigured = errors.New("shopify not configured")

	// ErrToolNotFound indicates the requested tool does not exist.
	ErrToolNotFound = errors.New("tool not found")

	// ErrInvalidParams indicates invalid parameters were provided.
	ErrInvalidParams = errors.New("invalid parameters")

	// ErrResourceNotFound indicates the requested resource does not exist.
	ErrResourceNotFound = errors.New("resource not found")
)

// MCPError represents an MCP protocol error with code and message.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// MapError converts internal errors to MCP errors.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}

	var mcpErr *MCPError
	if errors.As(err, &mcpErr) {
		return mcpErr
	}
	if se, ok := skerrors.As(err); ok {
		return mapStoreError(se)
	}

	switch {
	case errors.Is(err, ErrShopifyNotConfigured):
		return &MCPError{
			Code:    ErrCodeNotConfigured,
			Message: "Shopify is not configured. Set SHOPIFY_STORE_NAME and SHOPIFY_ACCESS_TOKEN.",
		}
	case errors.Is(err, context.DeadlineExceeded):
		return &MCPError{Code: ErrCodeTimeout, Message: "Request timed out."}
	case errors.Is(err, context.Canceled):
		return &MCPError{Code: ErrCodeTimeout, Message: "Request was canceled."}
	case errors.Is(err, ErrToolNotFound):
		return &MCPError{Code: ErrCodeMethodNotFound, Message: "Tool not found."}
	case errors.Is(err, ErrInvalidParams):
		return &MCPError{Code: ErrCodeInvalidParams, Message: "Invalid parameters."}
	case errors.Is(err, ErrResourceNotFound):
		return &MCPError{Code: ErrCodeDocumentNotFound, Message: "Resource not found."}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: "Internal server error."}
	}
}

// NewInvalidParamsError creates an error for invalid parameters with a custom message.
func NewInvalidParamsError(msg string) *MCPError {
	return &MCPError{Code: ErrCodeInvalidParams, Message: msg}
}

// NewMethodNotFoundError creates an error for unknown tools.
func NewMethodNotFoundError(name string) *MCPError {
	return &MCPError{
		Code:    ErrCodeMethodNotFound,
		Message: fmt.Sprintf("Tool '%s' not found.", name),
	}
}

// NewResourceNotFoundError creates an error for unknown resources.
func NewResourceNotFoundError(uri string) *MCPError {
	return &MCPError{
		Code:    ErrCodeDocumentNotFound,
		Message: fmt.Sprintf("Resource '%s' not found.", uri),
	}
}

func mapStoreError(se *skerrors.StoreError) *MCPError {
	message := se.Message
	if se.Suggestion != "" {
		message = fmt.Sprintf("%s. %s", se.Message, se.Suggestion)
	}

	switch se.Category {
	case skerrors.CategoryValidation:
		return &MCPError{Code: ErrCodeInvalidParams, Message: message}
	case skerrors.CategoryNetwork:
		return &MCPError{Code: ErrCodeTimeout, Message: message}
	case skerrors.CategoryUpstream:
		return &MCPError{Code: ErrCodeUpstreamFailed, Message: message}
	case skerrors.CategoryConfig:
		if se.Code == skerrors.ErrCodeCredentialsMissing {
			return &MCPError{Code: ErrCodeNotConfigured, Message: message}
		}
		return &MCPError{Code: ErrCodeInternalError, Message: message}
	case skerrors.CategoryIO:
		if se.Code == skerrors.ErrCodeFileTooLarge {
			return &MCPError{Code: ErrCodeFileTooLarge, Message: message}
		}
		return &MCPError{Code: ErrCodeInternalError, Message: message}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: message}
	}
}
