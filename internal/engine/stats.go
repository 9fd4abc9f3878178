package engine

import (
	"runtime"

	"github.com/gcbaptista/go-ordered-list/model"
)

// Stats reports selected and reordered records plus process memory counters.
func (c *Collection) Stats() model.Stats {
	c.records.Mu.RLock()
	selected := c.selectedRecordsLocked()
	reordered := make([]model.Record, 0)
	c.records.Each(func(rec *model.Record) bool {
		if rec.IsReordered() {
			r := rec.Clone()
			r.Selected = c.selection.Contains(r.ID)
			reordered = append(reordered, r)
		}
		return true
	})
	total := c.records.Len()
	c.records.Mu.RUnlock()

	return model.Stats{
		TotalItems:     total,
		SelectedItems:  selected,
		ReorderedItems: reordered,
		ReorderedCount: len(reordered),
		MemoryUsage:    readMemoryUsage(),
	}
}

// readMemoryUsage maps Go runtime counters onto the memory fields clients expect.
// Go has no separate array buffer pool, so ArrayBuffers stays zero.
func readMemoryUsage() model.MemoryUsage {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return model.MemoryUsage{
		RSS:       ms.Sys,
		HeapTotal: ms.HeapSys,
		HeapUsed:  ms.HeapAlloc,
		External:  ms.Sys - ms.HeapSys,
	}
}
