package model

// Record is a single entry of the ordered collection.
// DefaultIndex is assigned at creation and never changes. ReorderedIndex is the override
// position written by moves; nil means the record sits at its default position.
type Record struct {
	ID             int    `json:"id"`
	Value          string `json:"value"`
	Selected       bool   `json:"selected"`
	DefaultIndex   int    `json:"defaultIndex"`
	ReorderedIndex *int   `json:"reorderedIndex"`
}

// EffectiveIndex returns the position used for display and sorting.
func (r Record) EffectiveIndex() int {
	if r.ReorderedIndex != nil {
		return *r.ReorderedIndex
	}
	return r.DefaultIndex
}

// IsReordered reports whether the record is displayed away from its default position.
func (r Record) IsReordered() bool {
	return r.ReorderedIndex != nil && *r.ReorderedIndex != r.DefaultIndex
}

// Clone returns a copy that shares no memory with r.
func (r Record) Clone() Record {
	if r.ReorderedIndex != nil {
		idx := *r.ReorderedIndex
		r.ReorderedIndex = &idx
	}
	return r
}

// WithReorderedIndex returns a copy of r with the override position set to idx.
func (r Record) WithReorderedIndex(idx int) Record {
	r.ReorderedIndex = &idx
	return r
}

// PagedView is one page of the ordered, filtered collection.
type PagedView struct {
	Items       []Record `json:"items"`
	TotalItems  int      `json:"totalItems"`
	TotalPages  int      `json:"totalPages"`
	CurrentPage int      `json:"currentPage"`
	HasMore     bool     `json:"hasMore"`
}

// Clone returns a deep copy of the page.
func (p PagedView) Clone() PagedView {
	items := make([]Record, len(p.Items))
	for i, item := range p.Items {
		items[i] = item.Clone()
	}
	p.Items = items
	return p
}
