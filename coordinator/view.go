package coordinator

import (
	"slices"

	"github.com/gcbaptista/go-ordered-list/internal/errors"
	"github.com/gcbaptista/go-ordered-list/model"
)

// View is an immutable snapshot of the pages loaded for one search term.
// Values handed out by the coordinator are never modified afterwards.
type View struct {
	Search string
	Pages  []model.PagedView
}

// Items returns the loaded records in display order.
func (v View) Items() []model.Record {
	items := make([]model.Record, 0, v.Len())
	for _, page := range v.Pages {
		for _, item := range page.Items {
			items = append(items, item.Clone())
		}
	}
	return items
}

// Len returns the number of loaded records.
func (v View) Len() int {
	n := 0
	for _, page := range v.Pages {
		n += len(page.Items)
	}
	return n
}

// HasMore reports whether another page can be fetched. An empty view always can.
func (v View) HasMore() bool {
	if len(v.Pages) == 0 {
		return true
	}
	return v.Pages[len(v.Pages)-1].HasMore
}

// NextPage returns the number of the page FetchNextPage would request.
func (v View) NextPage() int {
	if len(v.Pages) == 0 {
		return 1
	}
	return v.Pages[len(v.Pages)-1].CurrentPage + 1
}

// TotalItems returns the server-side match count from the latest loaded page.
func (v View) TotalItems() int {
	if len(v.Pages) == 0 {
		return 0
	}
	return v.Pages[len(v.Pages)-1].TotalItems
}

// idAt returns the id of the record at local position pos, or 0 if pos is not loaded.
func (v View) idAt(pos int) int {
	if pos < 0 {
		return 0
	}
	for _, page := range v.Pages {
		if pos < len(page.Items) {
			return page.Items[pos].ID
		}
		pos -= len(page.Items)
	}
	return 0
}

// positionOf returns the local position of the record with the given id, or -1.
func (v View) positionOf(id int) int {
	pos := 0
	for _, page := range v.Pages {
		for _, item := range page.Items {
			if item.ID == id {
				return pos
			}
			pos++
		}
	}
	return -1
}

func (v View) clone() View {
	pages := make([]model.PagedView, len(v.Pages))
	for i, page := range v.Pages {
		pages[i] = page.Clone()
	}
	return View{Search: v.Search, Pages: pages}
}

func (v View) withPage(page model.PagedView) View {
	next := v.clone()
	next.Pages = append(next.Pages, page.Clone())
	return next
}

// withItems lays items back over the existing page boundaries. len(items) must equal v.Len().
func (v View) withItems(items []model.Record) View {
	next := View{Search: v.Search, Pages: make([]model.PagedView, len(v.Pages))}
	offset := 0
	for i, page := range v.Pages {
		n := len(page.Items)
		page.Items = items[offset : offset+n : offset+n]
		next.Pages[i] = page
		offset += n
	}
	return next
}

// applyMove moves the record at local position from to local position to.
// The moved record takes the target's effective index; every record between them shifts by one
// toward the vacated slot. The returned operation carries the effective indices the server expects.
func applyMove(v View, from, to int) (View, model.MoveOperation, error) {
	items := v.Items()
	if from < 0 || from >= len(items) || to < 0 || to >= len(items) {
		return v, model.MoveOperation{}, errors.NewInvalidIndexError(from, to, len(items))
	}

	moved, target := items[from], items[to]
	op := model.MoveOperation{FromIndex: moved.EffectiveIndex(), ToIndex: target.EffectiveIndex()}
	if from == to {
		// the server still writes the record's own position as its override
		items[from] = moved.WithReorderedIndex(moved.EffectiveIndex())
		return v.withItems(items), op, nil
	}

	items = slices.Delete(items, from, from+1)
	items = slices.Insert(items, to, moved)

	movingUp := from > to
	for i := min(from, to); i <= max(from, to); i++ {
		item := items[i]
		switch {
		case item.ID == moved.ID:
			items[i] = item.WithReorderedIndex(target.EffectiveIndex())
		case movingUp:
			items[i] = item.WithReorderedIndex(item.EffectiveIndex() + 1)
		default:
			items[i] = item.WithReorderedIndex(item.EffectiveIndex() - 1)
		}
	}

	return v.withItems(items), op, nil
}

// applyMoveByID replays a move on a view that may differ from the one it was issued against.
// Records are found by id; the view is returned unchanged if either is no longer loaded.
func applyMoveByID(v View, movedID, targetID int) View {
	from, to := v.positionOf(movedID), v.positionOf(targetID)
	if from < 0 || to < 0 {
		return v
	}
	next, _, err := applyMove(v, from, to)
	if err != nil {
		return v
	}
	return next
}

// applySelection marks ids in update.SelectedIDs selected and ids in update.UnselectedIDs
// unselected. An id present in both ends up selected.
func applySelection(v View, update model.SelectionUpdate) View {
	selected := toSet(update.SelectedIDs)
	unselected := toSet(update.UnselectedIDs)

	items := v.Items()
	for i := range items {
		id := items[i].ID
		switch {
		case selected[id]:
			items[i].Selected = true
		case unselected[id]:
			items[i].Selected = false
		}
	}
	return v.withItems(items)
}

// applyReset clears every override and puts the loaded records back in default order.
func applyReset(v View) View {
	items := v.Items()
	for i := range items {
		items[i].ReorderedIndex = nil
	}
	slices.SortStableFunc(items, func(a, b model.Record) int {
		return a.DefaultIndex - b.DefaultIndex
	})
	return v.withItems(items)
}

func toSet(ids []int) map[int]bool {
	set := make(map[int]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
