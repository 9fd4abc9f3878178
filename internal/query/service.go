// Package query serves paginated, searchable slices of the ordered collection.
package query

import (
	"fmt"
	"math"
	"strings"

	"github.com/gcbaptista/go-ordered-list/index"
	"github.com/gcbaptista/go-ordered-list/internal/errors"
	"github.com/gcbaptista/go-ordered-list/internal/selection"
	"github.com/gcbaptista/go-ordered-list/model"
	"github.com/gcbaptista/go-ordered-list/store"
)

// Service composes the record store, the order index and the selection set into pages.
// It never sorts: the order index already holds the display order, so an unfiltered page
// costs O(limit) and a filtered page costs one pass over the ordering.
//
// Callers hold the record store's read lock for the duration of Query.
type Service struct {
	records   *store.RecordStore
	order     *index.OrderIndex
	selection *selection.Set
}

// NewService creates a new query Service.
func NewService(records *store.RecordStore, order *index.OrderIndex, sel *selection.Set) (*Service, error) {
	if records == nil {
		return nil, fmt.Errorf("record store cannot be nil")
	}
	if order == nil {
		return nil, fmt.Errorf("order index cannot be nil")
	}
	if sel == nil {
		return nil, fmt.Errorf("selection set cannot be nil")
	}
	return &Service{records: records, order: order, selection: sel}, nil
}

// Query returns page (1-based) of size limit of the records whose value contains search,
// case-insensitively, in display order.
func (s *Service) Query(page, limit int, search string) (model.PagedView, error) {
	if page < 1 {
		return model.PagedView{}, errors.NewValidationError("page", "must be greater than 0")
	}
	if limit < 1 {
		return model.PagedView{}, errors.NewValidationError("limit", "must be greater than 0")
	}
	if page > math.MaxInt/limit {
		return model.PagedView{}, errors.NewValidationError("page", "is too large for the requested limit")
	}

	offset := (page - 1) * limit
	var ids []int
	var total int

	if search == "" {
		total = s.order.Len()
		ids = s.order.Window(offset, limit)
	} else {
		term := store.Fold(search)
		s.order.Each(func(id int) bool {
			if !strings.Contains(s.records.Folded(id), term) {
				return true
			}
			if total >= offset && total < offset+limit {
				ids = append(ids, id)
			}
			total++
			return true
		})
	}

	items := make([]model.Record, 0, len(ids))
	for _, id := range ids {
		rec, ok := s.records.GetByID(id)
		if !ok {
			continue
		}
		rec.Selected = s.selection.Contains(id)
		items = append(items, rec)
	}

	totalPages := (total + limit - 1) / limit
	return model.PagedView{
		Items:       items,
		TotalItems:  total,
		TotalPages:  totalPages,
		CurrentPage: page,
		HasMore:     page < totalPages,
	}, nil
}
