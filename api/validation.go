// Package api provides the HTTP handlers of the ordered list service.
package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-ordered-list/config"
	"github.com/gcbaptista/go-ordered-list/model"
)

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult holds the result of validation operations
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// AddError adds a validation error to the result
func (vr *ValidationResult) AddError(field, message string) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// ItemsQuery is the validated form of GET /items query parameters
type ItemsQuery struct {
	Page   int
	Limit  int
	Search string
}

// SelectionRequest is the body of PATCH /items/selection
type SelectionRequest struct {
	SelectedIDs   []int `json:"selectedIds"`
	UnselectedIDs []int `json:"unSelectedIds"`
}

// OrderRequest is the body of PATCH /items/order
type OrderRequest struct {
	FromIndex *int `json:"fromIndex" binding:"required"`
	ToIndex   *int `json:"toIndex" binding:"required"`
}

// ParseItemsQuery reads page, limit and search. Absent values take defaults; present values
// must be integers with page >= 1 and limit >= 1. Limits above the configured maximum are clamped.
func ParseItemsQuery(c *gin.Context, settings config.ServerSettings) (ItemsQuery, *ValidationResult) {
	result := &ValidationResult{Valid: true}
	q := ItemsQuery{Page: 1, Limit: settings.DefaultPageSize, Search: c.Query("search")}

	if raw, ok := c.GetQuery("page"); ok && raw != "" {
		page, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			result.AddError("page", "Page must be an integer")
		case page < 1:
			result.AddError("page", "Page number must be greater than 0")
		default:
			q.Page = page
		}
	}

	if raw, ok := c.GetQuery("limit"); ok && raw != "" {
		limit, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			result.AddError("limit", "Limit must be an integer")
		case limit < 1:
			result.AddError("limit", "Limit must be greater than 0")
		default:
			q.Limit = min(limit, settings.MaxPageSize)
		}
	}

	return q, result
}

// ParseSelectionRequest binds the selection body. Missing arrays are treated as empty;
// anything that is not an array of integers is rejected.
func ParseSelectionRequest(c *gin.Context) (model.SelectionUpdate, *ValidationResult) {
	result := &ValidationResult{Valid: true}

	var req SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.AddError("request_body", "Invalid selection data: "+err.Error())
		return model.SelectionUpdate{}, result
	}

	return model.SelectionUpdate{SelectedIDs: req.SelectedIDs, UnselectedIDs: req.UnselectedIDs}, result
}

// ParseOrderRequest binds the move body. Both indices are required integers; range checks
// happen in the order index.
func ParseOrderRequest(c *gin.Context) (model.MoveOperation, *ValidationResult) {
	result := &ValidationResult{Valid: true}

	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.AddError("request_body", "Invalid order data: fromIndex and toIndex must be integers")
		return model.MoveOperation{}, result
	}

	return model.MoveOperation{FromIndex: *req.FromIndex, ToIndex: *req.ToIndex}, result
}
