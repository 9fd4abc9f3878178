package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/go-ordered-list/config"
	"github.com/gcbaptista/go-ordered-list/internal/engine"
	"github.com/gcbaptista/go-ordered-list/internal/metrics"
	testutil "github.com/gcbaptista/go-ordered-list/internal/testing"
	"github.com/gcbaptista/go-ordered-list/model"
)

func setupTestCollection(t *testing.T, n int) *engine.Collection {
	return testutil.CreateTestCollection(t, n)
}

func setupTestRouter(c *engine.Collection) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	settings := config.ServerSettings{MaxPageSize: 50}
	SetupRoutes(router, c, settings, zerolog.Nop())
	return router
}

func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

func TestGetItemsHandler(t *testing.T) {
	router := setupTestRouter(setupTestCollection(t, 45))

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		expectedItems  int
		expectedPage   int
		expectedTotal  int
	}{
		{name: "defaults", path: "/items", expectedStatus: http.StatusOK, expectedItems: 20, expectedPage: 1, expectedTotal: 45},
		{name: "explicit page", path: "/items?page=3&limit=20", expectedStatus: http.StatusOK, expectedItems: 5, expectedPage: 3, expectedTotal: 45},
		{name: "search", path: "/items?search=item%204", expectedStatus: http.StatusOK, expectedItems: 7, expectedPage: 1, expectedTotal: 7},
		{name: "limit clamped to max", path: "/items?limit=1000", expectedStatus: http.StatusOK, expectedItems: 45, expectedPage: 1, expectedTotal: 45},
		{name: "api prefix", path: "/api/items?limit=5", expectedStatus: http.StatusOK, expectedItems: 5, expectedPage: 1, expectedTotal: 45},
		{name: "page zero", path: "/items?page=0", expectedStatus: http.StatusBadRequest},
		{name: "non numeric limit", path: "/items?limit=abc", expectedStatus: http.StatusBadRequest},
		{name: "negative limit", path: "/items?limit=-2", expectedStatus: http.StatusBadRequest},
		{name: "page offset overflow", path: "/items?page=9223372036854775807&search=item", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, router, http.MethodGet, tt.path, nil)
			require.Equal(t, tt.expectedStatus, w.Code, "body: %s", w.Body.String())

			if tt.expectedStatus != http.StatusOK {
				apiErr := decode[APIError](t, w)
				assert.False(t, apiErr.Success)
				assert.Equal(t, ErrorCodeMalformedInput, apiErr.Code)
				assert.NotEmpty(t, apiErr.Message)
				return
			}

			view := decode[model.PagedView](t, w)
			assert.Len(t, view.Items, tt.expectedItems)
			assert.Equal(t, tt.expectedPage, view.CurrentPage)
			assert.Equal(t, tt.expectedTotal, view.TotalItems)
		})
	}
}

func TestGetItemsHandler_WireFormat(t *testing.T) {
	c := setupTestCollection(t, 3)
	require.NoError(t, c.Move(model.MoveOperation{FromIndex: 2, ToIndex: 0}))
	c.UpdateSelection(model.SelectionUpdate{SelectedIDs: []int{3}})
	router := setupTestRouter(c)

	w := doRequest(t, router, http.MethodGet, "/items?page=1&limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	for _, field := range []string{"items", "totalItems", "totalPages", "currentPage", "hasMore"} {
		assert.Contains(t, body, field)
	}

	items := body["items"].([]interface{})
	first := items[0].(map[string]interface{})
	assert.Equal(t, 3.0, first["id"])
	assert.Equal(t, "Item 3", first["value"])
	assert.Equal(t, true, first["selected"])
	assert.Equal(t, 2.0, first["defaultIndex"])
	assert.Equal(t, 0.0, first["reorderedIndex"])
	assert.Equal(t, true, body["hasMore"])

	// an untouched record serializes its override as null
	w = doRequest(t, router, http.MethodGet, "/items?page=3&limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"reorderedIndex":2`)

	c.ResetOrder()
	w = doRequest(t, router, http.MethodGet, "/items?limit=1", nil)
	assert.Contains(t, w.Body.String(), `"reorderedIndex":null`)
}

func TestUpdateSelectionHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
		expectedCount  int
	}{
		{
			name:           "select ids",
			body:           map[string]interface{}{"selectedIds": []int{1, 2, 3}, "unSelectedIds": []int{}},
			expectedStatus: http.StatusOK,
			expectedCount:  3,
		},
		{
			name:           "selection wins over unselection",
			body:           map[string]interface{}{"selectedIds": []int{5}, "unSelectedIds": []int{5}},
			expectedStatus: http.StatusOK,
			expectedCount:  1,
		},
		{
			name:           "unknown ids are tolerated",
			body:           map[string]interface{}{"selectedIds": []int{999}},
			expectedStatus: http.StatusOK,
			expectedCount:  1,
		},
		{
			name:           "non array field",
			body:           `{"selectedIds": 5, "unSelectedIds": []}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "non number element",
			body:           `{"selectedIds": ["a"], "unSelectedIds": []}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid json",
			body:           "invalid json",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter(setupTestCollection(t, 10))

			w := doRequest(t, router, http.MethodPatch, "/items/selection", tt.body)
			require.Equal(t, tt.expectedStatus, w.Code, "body: %s", w.Body.String())

			if tt.expectedStatus == http.StatusOK {
				res := decode[model.SelectionResult](t, w)
				assert.True(t, res.Success)
				assert.Equal(t, tt.expectedCount, res.SelectedCount)
			} else {
				apiErr := decode[APIError](t, w)
				assert.False(t, apiErr.Success)
				assert.Equal(t, ErrorCodeMalformedInput, apiErr.Code)
			}
		})
	}
}

func TestUpdateOrderHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
		expectedCode   ErrorCode
		expectedOrder  []int
	}{
		{
			name:           "move last to second",
			body:           map[string]int{"fromIndex": 4, "toIndex": 1},
			expectedStatus: http.StatusOK,
			expectedOrder:  []int{1, 5, 2, 3, 4},
		},
		{
			name:           "move to index zero",
			body:           map[string]int{"fromIndex": 3, "toIndex": 0},
			expectedStatus: http.StatusOK,
			expectedOrder:  []int{4, 1, 2, 3, 5},
		},
		{
			name:           "out of range",
			body:           map[string]int{"fromIndex": 0, "toIndex": 5},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   ErrorCodeInvalidIndex,
			expectedOrder:  []int{1, 2, 3, 4, 5},
		},
		{
			name:           "negative index",
			body:           map[string]int{"fromIndex": -1, "toIndex": 2},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   ErrorCodeInvalidIndex,
			expectedOrder:  []int{1, 2, 3, 4, 5},
		},
		{
			name:           "missing toIndex",
			body:           map[string]int{"fromIndex": 1},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   ErrorCodeMalformedInput,
			expectedOrder:  []int{1, 2, 3, 4, 5},
		},
		{
			name:           "string index",
			body:           `{"fromIndex": "1", "toIndex": 2}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   ErrorCodeMalformedInput,
			expectedOrder:  []int{1, 2, 3, 4, 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := setupTestCollection(t, 5)
			router := setupTestRouter(c)

			w := doRequest(t, router, http.MethodPatch, "/items/order", tt.body)
			require.Equal(t, tt.expectedStatus, w.Code, "body: %s", w.Body.String())

			if tt.expectedStatus == http.StatusOK {
				res := decode[model.OrderResult](t, w)
				assert.True(t, res.Success)
				assert.NotEmpty(t, res.Message)
			} else {
				apiErr := decode[APIError](t, w)
				assert.False(t, apiErr.Success)
				assert.Equal(t, tt.expectedCode, apiErr.Code)
				assert.NotEmpty(t, apiErr.Message)
			}
			assert.Equal(t, tt.expectedOrder, c.OrderedIDs())
		})
	}
}

func TestResetOrderHandler(t *testing.T) {
	for _, method := range []string{http.MethodPatch, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			c := setupTestCollection(t, 5)
			router := setupTestRouter(c)
			require.NoError(t, c.Move(model.MoveOperation{FromIndex: 4, ToIndex: 0}))

			path := "/items/order/reset"
			if method == http.MethodDelete {
				path = "/items/order"
			}
			w := doRequest(t, router, method, path, nil)
			require.Equal(t, http.StatusOK, w.Code)

			res := decode[model.OrderResult](t, w)
			assert.True(t, res.Success)
			assert.Equal(t, []int{1, 2, 3, 4, 5}, c.OrderedIDs())
		})
	}
}

func TestGetStatsHandler(t *testing.T) {
	c := setupTestCollection(t, 5)
	router := setupTestRouter(c)
	c.UpdateSelection(model.SelectionUpdate{SelectedIDs: []int{1}})
	require.NoError(t, c.Move(model.MoveOperation{FromIndex: 2, ToIndex: 0}))

	w := doRequest(t, router, http.MethodGet, "/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 5.0, body["totalItems"])
	assert.Len(t, body["selectedItems"], 1)
	assert.Len(t, body["reorderedItems"], 3)

	memory := body["memoryUsage"].(map[string]interface{})
	for _, field := range []string{"rss", "heapTotal", "heapUsed", "external", "arrayBuffers"} {
		assert.Contains(t, memory, field)
	}
}

func TestGetSelectedItemsHandler(t *testing.T) {
	c := setupTestCollection(t, 5)
	router := setupTestRouter(c)
	c.UpdateSelection(model.SelectionUpdate{SelectedIDs: []int{4, 2, 77}})

	w := doRequest(t, router, http.MethodGet, "/items/selected", nil)
	require.Equal(t, http.StatusOK, w.Code)

	res := decode[model.SelectedItems](t, w)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, 2, res.SelectedItems[0].ID)
	assert.Equal(t, 4, res.SelectedItems[1].ID)
}

func TestHealthCheckHandler(t *testing.T) {
	router := setupTestRouter(setupTestCollection(t, 7))

	w := doRequest(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","totalItems":7}`, w.Body.String())
}

func TestNoRoute(t *testing.T) {
	router := setupTestRouter(setupTestCollection(t, 1))

	w := doRequest(t, router, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	apiErr := decode[APIError](t, w)
	assert.Equal(t, ErrorCodeRouteNotFound, apiErr.Code)
}

func TestRequestIDMiddleware(t *testing.T) {
	router := setupTestRouter(setupTestCollection(t, 1))

	w := doRequest(t, router, http.MethodPatch, "/items/order", "{}")
	require.Equal(t, http.StatusBadRequest, w.Code)

	id := w.Header().Get(requestIDHeader)
	assert.NotEmpty(t, id)
	apiErr := decode[APIError](t, w)
	assert.Equal(t, id, apiErr.RequestID)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "caller-id")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "caller-id", rec.Header().Get(requestIDHeader))
}

func TestRequestSizeLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupRoutes(router, setupTestCollection(t, 1), config.ServerSettings{MaxRequestBytes: 16}, zerolog.Nop())

	body := `{"selectedIds": [` + strings.Repeat("1,", 50) + `1]}`
	w := doRequest(t, router, http.MethodPatch, "/items/selection", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetupMetricsRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	c := testutil.CreateTestCollection(t, 3, engine.WithMetrics(m))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupRoutes(router, c, config.ServerSettings{}, zerolog.Nop())
	SetupMetricsRoute(router, reg)

	doRequest(t, router, http.MethodGet, "/items", nil)
	w := doRequest(t, router, http.MethodGet, "/metrics", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ordered_list_collection_queries_total")
}

func TestNewHTTPHandler(t *testing.T) {
	router := setupTestRouter(setupTestCollection(t, 100))
	handler := NewHTTPHandler(router, config.ServerSettings{EnableGzip: true})

	t.Run("cors preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/items/order", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch)
	})

	t.Run("gzip", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/items?limit=50", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
	})
}
