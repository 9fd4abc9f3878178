// Package testing provides utilities and helpers for testing the ordered list.
package testing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/go-ordered-list/internal/engine"
	"github.com/gcbaptista/go-ordered-list/model"
	"github.com/gcbaptista/go-ordered-list/store"
)

// DefaultItemFormat names seeded records the way the server does.
const DefaultItemFormat = "Item %d"

// CreateTestStore returns a store seeded with n records named "Item <id>"
func CreateTestStore(n int) *store.RecordStore {
	records := store.NewRecordStore(n)
	records.Seed(n, DefaultItemFormat)
	return records
}

// CreateTestCollection creates a collection over n seeded records
func CreateTestCollection(t *testing.T, n int, opts ...engine.Option) *engine.Collection {
	t.Helper()
	c, err := engine.NewCollection(CreateTestStore(n), opts...)
	require.NoError(t, err, "Failed to create test collection")
	return c
}

// AssertPermutation verifies that effective indices of every record form 0..N-1 in display order
func AssertPermutation(t *testing.T, c *engine.Collection) {
	t.Helper()
	ids := c.OrderedIDs()
	require.Len(t, ids, c.Len(), "Ordering should cover every record")

	for pos, id := range ids {
		rec, ok := c.GetRecord(id)
		require.True(t, ok, "Record %d should exist", id)
		assert.Equal(t, pos, rec.EffectiveIndex(), "Record %d should sit at its effective index", id)
	}
}

// MoveTestCase represents a test case for move operations
type MoveTestCase struct {
	Name          string
	Size          int
	Moves         []model.MoveOperation
	ExpectedOrder []int
	ExpectError   bool
}

// RunMoveTests applies each case's moves to a fresh collection and checks the resulting order
func RunMoveTests(t *testing.T, tests []MoveTestCase) {
	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			c := CreateTestCollection(t, tt.Size)

			var err error
			for _, op := range tt.Moves {
				if err = c.Move(op); err != nil {
					break
				}
			}

			if tt.ExpectError {
				assert.Error(t, err, "Move should be rejected")
			} else {
				require.NoError(t, err, "Move should succeed")
			}
			if tt.ExpectedOrder != nil {
				assert.Equal(t, tt.ExpectedOrder, c.OrderedIDs(), "Order should match")
			}
			AssertPermutation(t, c)
		})
	}
}
