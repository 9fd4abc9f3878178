// Package client implements the HTTP transport the coordinator uses to reach the list server.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/gcbaptista/go-ordered-list/config"
	"github.com/gcbaptista/go-ordered-list/internal/errors"
	"github.com/gcbaptista/go-ordered-list/model"
)

// maxErrorBody bounds how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

// HTTPTransport talks JSON to the list server. It implements services.Transport.
type HTTPTransport struct {
	baseURL string
	http    *http.Client
}

// NewHTTPTransport creates a transport for settings.BaseURL. The client timeout bounds every
// round trip; an expired timeout surfaces as an error like any other failure.
func NewHTTPTransport(settings config.ClientSettings) *HTTPTransport {
	settings.ApplyDefaults()
	return &HTTPTransport{
		baseURL: settings.BaseURL,
		http:    &http.Client{Timeout: settings.Timeout},
	}
}

// FetchItems reads one page of the ordered collection.
func (t *HTTPTransport) FetchItems(ctx context.Context, page, limit int, search string) (model.PagedView, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))
	if search != "" {
		params.Set("search", search)
	}

	var view model.PagedView
	err := t.do(ctx, http.MethodGet, "/items?"+params.Encode(), nil, &view)
	return view, err
}

// UpdateSelection sends a selection change.
func (t *HTTPTransport) UpdateSelection(ctx context.Context, update model.SelectionUpdate) (model.SelectionResult, error) {
	if update.SelectedIDs == nil {
		update.SelectedIDs = []int{}
	}
	if update.UnselectedIDs == nil {
		update.UnselectedIDs = []int{}
	}

	var res model.SelectionResult
	err := t.do(ctx, http.MethodPatch, "/items/selection", update, &res)
	return res, err
}

// UpdateOrder sends a move.
func (t *HTTPTransport) UpdateOrder(ctx context.Context, op model.MoveOperation) (model.OrderResult, error) {
	var res model.OrderResult
	err := t.do(ctx, http.MethodPatch, "/items/order", op, &res)
	return res, err
}

// ResetOrder drops every custom position on the server.
func (t *HTTPTransport) ResetOrder(ctx context.Context) (model.OrderResult, error) {
	var res model.OrderResult
	err := t.do(ctx, http.MethodPatch, "/items/order/reset", nil, &res)
	return res, err
}

// FetchStats reads the selection and reorder summary.
func (t *HTTPTransport) FetchStats(ctx context.Context) (model.Stats, error) {
	var stats model.Stats
	err := t.do(ctx, http.MethodGet, "/stats", nil, &stats)
	return stats, err
}

func (t *HTTPTransport) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.NewHTTPError(resp.StatusCode, readErrorMessage(resp.Body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

// readErrorMessage extracts the server's message field, falling back to the raw body.
func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}

	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		return body.Message
	}
	return string(bytes.TrimSpace(raw))
}
