package services

import (
	"context"

	"github.com/gcbaptista/go-ordered-list/model"
)

// ItemQuerier serves paginated, searchable reads of the ordered collection
type ItemQuerier interface {
	Query(page, limit int, search string) (model.PagedView, error)
}

// OrderMutator applies moves and resets to the ordering
type OrderMutator interface {
	Move(op model.MoveOperation) error
	ResetOrder()
}

// SelectionMutator applies selection changes and returns the resulting selection size
type SelectionMutator interface {
	UpdateSelection(update model.SelectionUpdate) int
}

// StatsProvider reports summaries of the collection
type StatsProvider interface {
	SelectedItems() model.SelectedItems
	Stats() model.Stats
	Len() int
}

// CollectionManager is everything the HTTP layer needs from the authoritative collection
type CollectionManager interface {
	ItemQuerier
	OrderMutator
	SelectionMutator
	StatsProvider
}

// Transport is the client-side view of the authoritative collection.
// Every call blocks until the server answers, the context ends or the client times out.
type Transport interface {
	FetchItems(ctx context.Context, page, limit int, search string) (model.PagedView, error)
	UpdateSelection(ctx context.Context, update model.SelectionUpdate) (model.SelectionResult, error)
	UpdateOrder(ctx context.Context, op model.MoveOperation) (model.OrderResult, error)
	ResetOrder(ctx context.Context) (model.OrderResult, error)
	FetchStats(ctx context.Context) (model.Stats, error)
}

// Notifier surfaces mutation outcomes to the user
type Notifier interface {
	Success(title, description string)
	Failure(title string, err error)
}
