package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestItemCount_NilSnapshot(t *testing.T) {
	var s *Snapshot
	assert.Equal(t, 0, s.ItemCount())
}

func TestItemCount_EmptyItems(t *testing.T) {
	s := &Snapshot{Items: []LineItem{}}
	assert.Equal(t, 0, s.ItemCount())
}

func TestItemCount_SumsQuantities(t *testing.T) {
	s := &Snapshot{Items: []LineItem{
		{Key: "a", Quantity: 2},
		{Key: "b", Quantity: 3},
		{Key: "c", Quantity: 1},
	}}
	assert.Equal(t, 6, s.ItemCount())
}

func TestSubtotal_NilSnapshot(t *testing.T) {
	var s *Snapshot
	assert.Equal(t, int64(0), s.Subtotal())
}

func TestSubtotal_PrefersDeclaredTotal(t *testing.T) {
	s := &Snapshot{
		Items:            []LineItem{{Key: "a", Quantity: 2, UnitPrice: 999}},
		DeclaredTotal:    2198, // includes a backend-side discount
		HasDeclaredTotal: true,
	}
	assert.Equal(t, int64(2198), s.Subtotal())
}

func TestSubtotal_FallsBackToLineTotals(t *testing.T) {
	s := &Snapshot{Items: []LineItem{
		{Key: "a", Quantity: 2, UnitPrice: 999, LineTotal: 1998},
		{Key: "b", Quantity: 1, UnitPrice: 4500},
	}}
	// First line uses its declared total, second falls back to unit*qty.
	assert.Equal(t, int64(6498), s.Subtotal())
}

func TestSubtotal_EmptyCartIsZero(t *testing.T) {
	s := &Snapshot{Items: []LineItem{}}
	assert.Equal(t, int64(0), s.Subtotal())
}
