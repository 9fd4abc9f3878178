package engine

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/gcbaptista/go-ordered-list/index"
	"github.com/gcbaptista/go-ordered-list/internal/metrics"
	"github.com/gcbaptista/go-ordered-list/internal/query"
	"github.com/gcbaptista/go-ordered-list/internal/selection"
	"github.com/gcbaptista/go-ordered-list/model"
	"github.com/gcbaptista/go-ordered-list/store"
)

// Collection is the authoritative ordered collection.
// It implements the services.CollectionManager interface.
//
// All state lives behind the record store's Mu: mutations take the write lock and reads take
// the read lock, so a read never observes a half-applied move. sync.RWMutex blocks new readers
// while a writer is waiting, which gives mutations priority over a stream of page reads.
type Collection struct {
	records   *store.RecordStore
	order     *index.OrderIndex
	selection *selection.Set
	query     *query.Service
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// Option configures a Collection.
type Option func(*Collection)

// WithMetrics records reads and mutations on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Collection) { c.metrics = m }
}

// WithLogger sets the logger used for mutation and lifecycle events.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Collection) { c.logger = logger }
}

// NewCollection builds the order index, selection set and query service over records.
// The store must not be shared with other writers after this call.
func NewCollection(records *store.RecordStore, opts ...Option) (*Collection, error) {
	if records == nil {
		return nil, fmt.Errorf("record store cannot be nil")
	}

	c := &Collection{
		records:   records,
		selection: selection.NewSet(),
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	records.Mu.Lock()
	defer records.Mu.Unlock()

	order, err := index.NewOrderIndex(records)
	if err != nil {
		return nil, fmt.Errorf("failed to create order index: %w", err)
	}
	c.order = order

	queryService, err := query.NewService(records, order, c.selection)
	if err != nil {
		return nil, fmt.Errorf("failed to create query service: %w", err)
	}
	c.query = queryService

	c.metrics.SetSizes(records.Len(), 0)
	c.logger.Info().Int("records", records.Len()).Msg("Collection ready")
	return c, nil
}

// Query returns one page of the ordered collection, optionally filtered by search.
func (c *Collection) Query(page, limit int, search string) (model.PagedView, error) {
	start := time.Now()
	c.records.Mu.RLock()
	view, err := c.query.Query(page, limit, search)
	c.records.Mu.RUnlock()

	if err == nil {
		c.metrics.ObserveQuery(search != "", time.Since(start))
	}
	return view, err
}

// Move applies a move under the write lock. A rejected move leaves every record untouched.
func (c *Collection) Move(op model.MoveOperation) error {
	start := time.Now()
	c.records.Mu.Lock()
	err := c.order.Move(op.FromIndex, op.ToIndex)
	version := c.order.Version()
	c.records.Mu.Unlock()

	took := time.Since(start)
	if err != nil {
		c.metrics.ObserveMutation(string(model.MutationKindOrder), metrics.ResultFailure, took)
		c.logger.Debug().Err(err).Int("from", op.FromIndex).Int("to", op.ToIndex).Msg("Move rejected")
		return err
	}

	c.metrics.ObserveMutation(string(model.MutationKindOrder), metrics.ResultSuccess, took)
	c.logger.Debug().
		Int("from", op.FromIndex).
		Int("to", op.ToIndex).
		Uint64("version", version).
		Dur("took", took).
		Msg("Move applied")
	return nil
}

// ResetOrder drops every override so the collection returns to its default order.
func (c *Collection) ResetOrder() {
	start := time.Now()
	c.records.Mu.Lock()
	c.order.ResetToDefault()
	c.records.Mu.Unlock()

	took := time.Since(start)
	c.metrics.ObserveMutation(string(model.MutationKindOrder), metrics.ResultSuccess, took)
	c.logger.Info().Dur("took", took).Msg("Order reset to default")
}

// UpdateSelection applies a selection change and returns the resulting selection size.
func (c *Collection) UpdateSelection(update model.SelectionUpdate) int {
	start := time.Now()
	c.records.Mu.Lock()
	c.selection.Update(update.SelectedIDs, update.UnselectedIDs)
	size := c.selection.Size()
	total := c.records.Len()
	c.records.Mu.Unlock()

	c.metrics.ObserveMutation(string(model.MutationKindSelection), metrics.ResultSuccess, time.Since(start))
	c.metrics.SetSizes(total, size)
	c.logger.Debug().
		Int("selected", len(update.SelectedIDs)).
		Int("unselected", len(update.UnselectedIDs)).
		Int("size", size).
		Msg("Selection updated")
	return size
}

// AddRecord creates a record after startup and appends it to the ordering.
func (c *Collection) AddRecord(value string) (model.Record, error) {
	c.records.Mu.Lock()
	defer c.records.Mu.Unlock()

	rec := c.records.Create(value)
	if err := c.order.Append(rec.ID); err != nil {
		return model.Record{}, fmt.Errorf("failed to append record %d: %w", rec.ID, err)
	}
	rec, _ = c.records.GetByID(rec.ID)
	rec.Selected = c.selection.Contains(rec.ID)
	c.metrics.SetSizes(c.records.Len(), c.selection.Size())
	return rec, nil
}

// GetRecord returns the record with the given id, annotated with its selection state.
func (c *Collection) GetRecord(id int) (model.Record, bool) {
	c.records.Mu.RLock()
	defer c.records.Mu.RUnlock()

	rec, ok := c.records.GetByID(id)
	if ok {
		rec.Selected = c.selection.Contains(id)
	}
	return rec, ok
}

// OrderedIDs returns every id in display order.
func (c *Collection) OrderedIDs() []int {
	c.records.Mu.RLock()
	defer c.records.Mu.RUnlock()
	return c.order.OrderedIDs()
}

// Len returns the number of records.
func (c *Collection) Len() int {
	c.records.Mu.RLock()
	defer c.records.Mu.RUnlock()
	return c.records.Len()
}

// SelectedItems lists the selected records that exist in the store, in id order.
func (c *Collection) SelectedItems() model.SelectedItems {
	c.records.Mu.RLock()
	defer c.records.Mu.RUnlock()

	items := c.selectedRecordsLocked()
	return model.SelectedItems{SelectedItems: items, Count: len(items)}
}

func (c *Collection) selectedRecordsLocked() []model.Record {
	ids := c.selection.IDs()
	items := make([]model.Record, 0, len(ids))
	for _, id := range ids {
		rec, ok := c.records.GetByID(id)
		if !ok {
			continue
		}
		rec.Selected = true
		items = append(items, rec)
	}
	return items
}
