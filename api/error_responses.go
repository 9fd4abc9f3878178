package api

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-ordered-list/internal/errors"
)

// ErrorCode represents standardized error codes for the API
type ErrorCode string

const (
	// Client Error Codes (4xx)
	ErrorCodeInvalidIndex   ErrorCode = "INVALID_INDEX"
	ErrorCodeMalformedInput ErrorCode = "MALFORMED_INPUT"
	ErrorCodeRouteNotFound  ErrorCode = "ROUTE_NOT_FOUND"

	// Server Error Codes (5xx)
	ErrorCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// ErrorDetail provides additional context for an error
type ErrorDetail struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// APIError is the body of every failed request. Success is always false.
type APIError struct {
	Success   bool          `json:"success"`
	Message   string        `json:"message"`
	Code      ErrorCode     `json:"code"`
	Details   []ErrorDetail `json:"details,omitempty"`
	RequestID string        `json:"requestId,omitempty"`
}

// SendError sends a standardized error response
func SendError(c *gin.Context, statusCode int, code ErrorCode, message string, details ...ErrorDetail) {
	errorResponse := APIError{
		Success: false,
		Message: message,
		Code:    code,
		Details: details,
	}

	if requestID, exists := c.Get(requestIDKey); exists {
		if id, ok := requestID.(string); ok {
			errorResponse.RequestID = id
		}
	}

	c.AbortWithStatusJSON(statusCode, errorResponse)
}

// SendValidationError sends a malformed input error with one detail per invalid field
func SendValidationError(c *gin.Context, result *ValidationResult) {
	details := make([]ErrorDetail, len(result.Errors))
	for i, err := range result.Errors {
		details[i] = ErrorDetail{Field: err.Field, Message: err.Message}
	}

	message := "Request validation failed"
	if len(result.Errors) > 0 {
		message = result.Errors[0].Message
	}
	SendError(c, http.StatusBadRequest, ErrorCodeMalformedInput, message, details...)
}

// SendInvalidIndexError sends the rejection of an out-of-range move
func SendInvalidIndexError(c *gin.Context, err error) {
	SendError(c, http.StatusBadRequest, ErrorCodeInvalidIndex, "Invalid index: "+err.Error())
}

// SendInternalError sends a standardized internal server error
func SendInternalError(c *gin.Context, operation string, err error) {
	SendError(c, http.StatusInternalServerError, ErrorCodeInternalError,
		"Internal error during "+operation+": "+err.Error())
}

// SendCollectionError maps a collection error onto its HTTP status
func SendCollectionError(c *gin.Context, operation string, err error) {
	var validationErr *errors.ValidationError
	switch {
	case stderrors.Is(err, errors.ErrInvalidIndex):
		SendInvalidIndexError(c, err)
	case stderrors.As(err, &validationErr):
		SendError(c, http.StatusBadRequest, ErrorCodeMalformedInput, validationErr.Error(),
			ErrorDetail{Field: validationErr.Field, Message: validationErr.Message})
	case stderrors.Is(err, errors.ErrMalformedInput):
		SendError(c, http.StatusBadRequest, ErrorCodeMalformedInput, err.Error())
	default:
		SendInternalError(c, operation, err)
	}
}
