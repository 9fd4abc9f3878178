package model

// MutationKind groups mutations whose settlements share invalidation side effects.
type MutationKind string

const (
	MutationKindSelection MutationKind = "selection"
	MutationKindOrder     MutationKind = "order"
)

// MutationState is the lifecycle position of a single optimistic mutation.
type MutationState string

const (
	MutationStateIdle       MutationState = "idle"
	MutationStateApplied    MutationState = "applied"
	MutationStateConfirmed  MutationState = "confirmed"
	MutationStateRolledBack MutationState = "rolled_back"
)

// MoveOperation moves the record at FromIndex to ToIndex.
// Both are positions in the effective ordering of the whole collection.
type MoveOperation struct {
	FromIndex int `json:"fromIndex"`
	ToIndex   int `json:"toIndex"`
}

// SelectionUpdate adds SelectedIDs to and removes UnselectedIDs from the selection.
type SelectionUpdate struct {
	SelectedIDs   []int `json:"selectedIds"`
	UnselectedIDs []int `json:"unSelectedIds"`
}

// SelectionResult is the authoritative answer to a SelectionUpdate.
type SelectionResult struct {
	Success       bool `json:"success"`
	SelectedCount int  `json:"selectedCount"`
}

// OrderResult is the authoritative answer to a move or a reset.
type OrderResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
