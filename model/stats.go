package model

// MemoryUsage mirrors the process memory counters reported by /stats.
type MemoryUsage struct {
	RSS          uint64 `json:"rss"`
	HeapTotal    uint64 `json:"heapTotal"`
	HeapUsed     uint64 `json:"heapUsed"`
	External     uint64 `json:"external"`
	ArrayBuffers uint64 `json:"arrayBuffers"`
}

// Stats summarizes the collection state.
type Stats struct {
	TotalItems     int         `json:"totalItems"`
	SelectedItems  []Record    `json:"selectedItems"`
	ReorderedItems []Record    `json:"reorderedItems"`
	ReorderedCount int         `json:"reorderedCount"`
	MemoryUsage    MemoryUsage `json:"memoryUsage"`
}

// SelectedItems lists every selected record.
type SelectedItems struct {
	SelectedItems []Record `json:"selectedItems"`
	Count         int      `json:"count"`
}
