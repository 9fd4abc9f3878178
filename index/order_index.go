package index

import (
	"fmt"
	"slices"

	"github.com/gcbaptista/go-ordered-list/internal/errors"
	"github.com/gcbaptista/go-ordered-list/model"
	"github.com/gcbaptista/go-ordered-list/store"
)

// OrderIndex keeps the ids of the collection sorted by effective index.
//
// The effective indices of all records always form the permutation 0..N-1, so the record at
// position i of the ordering has effective index i. Moves preserve this by shifting every
// record of the window by exactly one slot.
//
// OrderIndex is not safe for concurrent use; the owner serializes access through the
// record store's Mu.
type OrderIndex struct {
	records *store.RecordStore
	order   []int // record ids by position
	version uint64
}

// NewOrderIndex builds the ordering from the records currently held by the store.
func NewOrderIndex(records *store.RecordStore) (*OrderIndex, error) {
	if records == nil {
		return nil, fmt.Errorf("record store cannot be nil")
	}
	idx := &OrderIndex{records: records}
	idx.Rebuild()
	return idx, nil
}

// Rebuild sorts every record by effective index, breaking ties by default index.
// It runs once at construction; moves and resets maintain the ordering incrementally.
func (o *OrderIndex) Rebuild() {
	o.order = make([]int, 0, o.records.Len())
	reordered := false
	o.records.Each(func(rec *model.Record) bool {
		o.order = append(o.order, rec.ID)
		if rec.ReorderedIndex != nil {
			reordered = true
		}
		return true
	})

	if reordered {
		slices.SortStableFunc(o.order, func(a, b int) int {
			ra, rb := o.records.Ref(a), o.records.Ref(b)
			if c := ra.EffectiveIndex() - rb.EffectiveIndex(); c != 0 {
				return c
			}
			return ra.DefaultIndex - rb.DefaultIndex
		})
	} else {
		slices.SortFunc(o.order, func(a, b int) int {
			return o.records.Ref(a).DefaultIndex - o.records.Ref(b).DefaultIndex
		})
	}
	o.version++
}

// Append places a record created after construction at the end of the ordering.
func (o *OrderIndex) Append(id int) error {
	rec := o.records.Ref(id)
	if rec == nil {
		return errors.NewRecordNotFoundError(id)
	}
	pos := len(o.order)
	if rec.EffectiveIndex() != pos {
		rec.ReorderedIndex = &pos
	}
	o.order = append(o.order, id)
	o.version++
	return nil
}

// Len returns the number of ordered records.
func (o *OrderIndex) Len() int {
	return len(o.order)
}

// Version is bumped by every mutation of the ordering.
func (o *OrderIndex) Version() uint64 {
	return o.version
}

// At returns the id of the record at position pos.
func (o *OrderIndex) At(pos int) (int, error) {
	if pos < 0 || pos >= len(o.order) {
		return 0, errors.NewInvalidIndexError(pos, pos, len(o.order))
	}
	return o.order[pos], nil
}

// OrderedIDs returns a copy of every id in display order.
func (o *OrderIndex) OrderedIDs() []int {
	return slices.Clone(o.order)
}

// Window returns the ids at positions [offset, offset+limit) without copying.
// The slice aliases internal state and is only valid while the caller holds the lock.
func (o *OrderIndex) Window(offset, limit int) []int {
	if offset < 0 || limit <= 0 || offset >= len(o.order) {
		return nil
	}
	end := min(offset+limit, len(o.order))
	return o.order[offset:end:end]
}

// Each calls fn with every id in display order until fn returns false.
func (o *OrderIndex) Each(fn func(id int) bool) {
	for _, id := range o.order {
		if !fn(id) {
			return
		}
	}
}

// EffectiveIndexOf returns the display position of the record with the given id.
func (o *OrderIndex) EffectiveIndexOf(id int) (int, bool) {
	rec := o.records.Ref(id)
	if rec == nil {
		return 0, false
	}
	return rec.EffectiveIndex(), true
}

// Move relocates the record at fromIndex to toIndex.
//
// The moved record takes the effective index of the record previously at toIndex and every
// other record of the window [min, max] shifts one slot opposite to the move direction.
// Only the window is touched. Out-of-range indices fail with ErrInvalidIndex and leave the
// ordering unchanged.
func (o *OrderIndex) Move(fromIndex, toIndex int) error {
	n := len(o.order)
	if fromIndex < 0 || fromIndex >= n || toIndex < 0 || toIndex >= n {
		return errors.NewInvalidIndexError(fromIndex, toIndex, n)
	}

	movedID := o.order[fromIndex]
	movedNewIndex := o.records.Ref(o.order[toIndex]).EffectiveIndex()
	isMovingUp := fromIndex > toIndex
	lo, hi := min(fromIndex, toIndex), max(fromIndex, toIndex)

	if isMovingUp {
		copy(o.order[toIndex+1:fromIndex+1], o.order[toIndex:fromIndex])
	} else {
		copy(o.order[fromIndex:toIndex], o.order[fromIndex+1:toIndex+1])
	}
	o.order[toIndex] = movedID

	for i := lo; i <= hi; i++ {
		rec := o.records.Ref(o.order[i])
		var newIndex int
		switch {
		case rec.ID == movedID:
			newIndex = movedNewIndex
		case isMovingUp:
			newIndex = rec.EffectiveIndex() + 1
		default:
			newIndex = rec.EffectiveIndex() - 1
		}
		rec.ReorderedIndex = &newIndex
	}

	o.version++
	return nil
}

// ResetToDefault clears every override so the ordering follows default indices again.
func (o *OrderIndex) ResetToDefault() {
	if cap(o.order) < o.records.Len() {
		o.order = make([]int, o.records.Len())
	}
	o.order = o.order[:o.records.Len()]
	o.records.Each(func(rec *model.Record) bool {
		rec.ReorderedIndex = nil
		o.order[rec.DefaultIndex] = rec.ID
		return true
	})
	o.version++
}

// ReorderedCount returns how many records sit away from their default position.
func (o *OrderIndex) ReorderedCount() int {
	count := 0
	o.records.Each(func(rec *model.Record) bool {
		if rec.IsReordered() {
			count++
		}
		return true
	})
	return count
}
