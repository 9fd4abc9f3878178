// Package selection tracks which record ids are currently selected.
package selection

import (
	"slices"
)

// Set is the collection-wide selection. Membership is the only source of truth for a
// record's selected flag.
//
// Set is not safe for concurrent use; the collection engine serializes access.
type Set struct {
	ids map[int]struct{}
}

// NewSet creates an empty selection.
func NewSet() *Set {
	return &Set{ids: make(map[int]struct{})}
}

// Update removes unselectedIDs and then adds selectedIDs, so an id present in both ends up
// selected. Ids unknown to the record store are accepted and counted.
func (s *Set) Update(selectedIDs, unselectedIDs []int) {
	for _, id := range unselectedIDs {
		delete(s.ids, id)
	}
	for _, id := range selectedIDs {
		s.ids[id] = struct{}{}
	}
}

// Contains reports whether id is selected.
func (s *Set) Contains(id int) bool {
	_, ok := s.ids[id]
	return ok
}

// Size returns the number of selected ids.
func (s *Set) Size() int {
	return len(s.ids)
}

// IDs returns the selected ids in ascending order.
func (s *Set) IDs() []int {
	out := make([]int, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
