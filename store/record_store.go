package store

import (
	"fmt"
	"sync"

	"golang.org/x/text/cases"

	"github.com/gcbaptista/go-ordered-list/model"
)

// RecordStore holds every record of the collection, addressed by id.
// Ids are assigned densely starting at 1, so the record with id n lives in slot n-1.
//
// The store does no locking of its own. Mu is the collection-wide lock: the owner takes the
// write lock for anything that mutates records or their overlay fields and the read lock for
// every read.
type RecordStore struct {
	Mu      sync.RWMutex
	records []model.Record
	folded  []string // case-folded Value per slot, used by search
	folder  cases.Caser
}

// NewRecordStore creates an empty store with room for capacity records.
func NewRecordStore(capacity int) *RecordStore {
	if capacity < 0 {
		capacity = 0
	}
	return &RecordStore{
		records: make([]model.Record, 0, capacity),
		folded:  make([]string, 0, capacity),
		folder:  cases.Fold(),
	}
}

// Create appends a new record. Its id is the next free id and its default index is the
// next free position, so default indices stay a permutation of 0..N-1.
func (s *RecordStore) Create(value string) model.Record {
	rec := model.Record{
		ID:           len(s.records) + 1,
		Value:        value,
		DefaultIndex: len(s.records),
	}
	s.records = append(s.records, rec)
	s.folded = append(s.folded, s.folder.String(value))
	return rec
}

// Seed creates count records whose values are produced by formatting each new id with format.
func (s *RecordStore) Seed(count int, format string) {
	for i := 0; i < count; i++ {
		s.Create(fmt.Sprintf(format, len(s.records)+1))
	}
}

// GetByID returns a copy of the record with the given id.
func (s *RecordStore) GetByID(id int) (model.Record, bool) {
	rec := s.Ref(id)
	if rec == nil {
		return model.Record{}, false
	}
	return rec.Clone(), true
}

// Ref returns the stored record itself so overlay owners can mutate it in place.
// It returns nil for unknown ids.
func (s *RecordStore) Ref(id int) *model.Record {
	if id < 1 || id > len(s.records) {
		return nil
	}
	return &s.records[id-1]
}

// Folded returns the case-folded value of the record, or "" for unknown ids.
func (s *RecordStore) Folded(id int) string {
	if id < 1 || id > len(s.folded) {
		return ""
	}
	return s.folded[id-1]
}

// All returns a copy of every record in id order.
func (s *RecordStore) All() []model.Record {
	out := make([]model.Record, len(s.records))
	for i := range s.records {
		out[i] = s.records[i].Clone()
	}
	return out
}

// Each calls fn for every stored record in id order until fn returns false.
func (s *RecordStore) Each(fn func(rec *model.Record) bool) {
	for i := range s.records {
		if !fn(&s.records[i]) {
			return
		}
	}
}

// Len returns the number of records.
func (s *RecordStore) Len() int {
	return len(s.records)
}

// Fold case-folds a search term the same way stored values are folded.
func Fold(term string) string {
	return cases.Fold().String(term)
}
