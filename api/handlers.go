package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/gcbaptista/go-ordered-list/config"
	"github.com/gcbaptista/go-ordered-list/services"
)

// API holds dependencies for API handlers, primarily the authoritative collection.
type API struct {
	collection services.CollectionManager
	settings   config.ServerSettings
	logger     zerolog.Logger
}

// NewAPI creates a new API handler structure.
func NewAPI(collection services.CollectionManager, settings config.ServerSettings, logger zerolog.Logger) *API {
	settings.ApplyDefaults()
	return &API{
		collection: collection,
		settings:   settings,
		logger:     logger,
	}
}

// SetupRoutes defines all the API routes of the list service.
// Item routes are mounted once per configured route prefix.
func SetupRoutes(router *gin.Engine, collection services.CollectionManager, settings config.ServerSettings, logger zerolog.Logger) *API {
	apiHandler := NewAPI(collection, settings, logger)

	router.Use(RequestIDMiddleware())
	router.Use(RequestLoggerMiddleware(logger))
	router.Use(RequestSizeLimitMiddleware(apiHandler.settings.MaxRequestBytes))

	// Health check route
	router.GET("/health", apiHandler.HealthCheckHandler)

	for _, prefix := range apiHandler.settings.RoutePrefixes {
		group := router.Group(prefix)
		{
			group.GET("/items", apiHandler.GetItemsHandler)                    // Paginated, searchable, ordered read
			group.GET("/items/selected", apiHandler.GetSelectedItemsHandler)   // Every selected record
			group.PATCH("/items/selection", apiHandler.UpdateSelectionHandler) // Select / unselect ids
			group.PATCH("/items/order", apiHandler.UpdateOrderHandler)         // Move one record
			group.PATCH("/items/order/reset", apiHandler.ResetOrderHandler)    // Back to default order
			group.DELETE("/items/order", apiHandler.ResetOrderHandler)         // Reset alias
			group.GET("/stats", apiHandler.GetStatsHandler)                    // Selection and reorder summary
		}
	}

	router.NoRoute(func(c *gin.Context) {
		SendError(c, http.StatusNotFound, ErrorCodeRouteNotFound, "Route "+c.Request.Method+" "+c.Request.URL.Path+" not found")
	})

	return apiHandler
}

// SetupMetricsRoute exposes the Prometheus registry at /metrics.
func SetupMetricsRoute(router *gin.Engine, gatherer prometheus.Gatherer) {
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}

// HealthCheckHandler reports liveness and the collection size.
func (api *API) HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"totalItems": api.collection.Len(),
	})
}
