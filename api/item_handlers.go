package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-ordered-list/model"
)

// GetItemsHandler serves GET /items?page&limit&search.
func (api *API) GetItemsHandler(c *gin.Context) {
	q, result := ParseItemsQuery(c, api.settings)
	if result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	view, err := api.collection.Query(q.Page, q.Limit, q.Search)
	if err != nil {
		SendCollectionError(c, "query", err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// GetSelectedItemsHandler lists every selected record.
func (api *API) GetSelectedItemsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, api.collection.SelectedItems())
}

// UpdateSelectionHandler serves PATCH /items/selection.
// Request Body: {selectedIds: [id...], unSelectedIds: [id...]}
func (api *API) UpdateSelectionHandler(c *gin.Context) {
	update, result := ParseSelectionRequest(c)
	if result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	count := api.collection.UpdateSelection(update)
	c.JSON(http.StatusOK, model.SelectionResult{Success: true, SelectedCount: count})
}

// UpdateOrderHandler serves PATCH /items/order.
// Request Body: {fromIndex, toIndex}, positions in the current effective ordering
func (api *API) UpdateOrderHandler(c *gin.Context) {
	op, result := ParseOrderRequest(c)
	if result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	if err := api.collection.Move(op); err != nil {
		SendCollectionError(c, "move", err)
		return
	}

	c.JSON(http.StatusOK, model.OrderResult{Success: true, Message: "Order updated successfully"})
}

// ResetOrderHandler drops every custom position.
func (api *API) ResetOrderHandler(c *gin.Context) {
	api.collection.ResetOrder()
	c.JSON(http.StatusOK, model.OrderResult{Success: true, Message: "Custom order reset"})
}

// GetStatsHandler serves GET /stats.
func (api *API) GetStatsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, api.collection.Stats())
}
