package handler

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vistara-hms/internal/database/models"
)

func TestTransitionsHappyPath(t *testing.T) {
	chain := []string{StatusPending, StatusConfirmed, StatusPreparing, StatusReady, StatusServed, StatusCompleted}
	for i := 0; i < len(chain)-1; i++ {
		assert.NoError(t, CheckTransition(chain[i], chain[i+1]), "%s -> %s", chain[i], chain[i+1])
	}
}

func TestTransitionsRejectJumps(t *testing.T) {
	cases := []struct{ from, to string }{
		{StatusPending, StatusPreparing},
		{StatusPending, StatusServed},
		{StatusConfirmed, StatusReady},
		{StatusPreparing, StatusCompleted},
		{StatusServed, StatusPending},
		{StatusReady, StatusConfirmed},
	}
	for _, tc := range cases {
		assert.ErrorIs(t, CheckTransition(tc.from, tc.to), ErrInvalidTransition, "%s -> %s", tc.from, tc.to)
	}
}

func TestTransitionsCancellation(t *testing.T) {
	for _, from := range []string{StatusPending, StatusConfirmed, StatusPreparing, StatusReady, StatusServed} {
		assert.NoError(t, CheckTransition(from, StatusCancelled), "%s -> cancelled", from)
	}
}

func TestTerminalStatesRejectEverything(t *testing.T) {
	for _, from := range []string{StatusCompleted, StatusCancelled} {
		for _, to := range []string{StatusPending, StatusConfirmed, StatusPreparing, StatusReady, StatusServed, StatusCompleted, StatusCancelled} {
			assert.ErrorIs(t, CheckTransition(from, to), ErrInvalidTransition, "%s -> %s", from, to)
		}
	}
}

func TestCheckTransitionUnknownStatus(t *testing.T) {
	assert.ErrorIs(t, CheckTransition(StatusPending, "delivered"), ErrUnknownStatus)
	assert.ErrorIs(t, CheckTransition(StatusPending, ""), ErrUnknownStatus)
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(StatusCompleted))
	assert.True(t, IsTerminal(StatusCancelled))
	assert.False(t, IsTerminal(StatusPending))
	assert.False(t, IsTerminal(StatusServed))
}

func TestUnticketedItemsIncremental(t *testing.T) {
	items := []models.RestaurantOrderItem{
		{ID: 1, DishID: 1, IsKot: false},
		{ID: 2, DishID: 2, IsKot: false},
	}

	first := UnticketedItems(items, KitchenTicket)
	require.Len(t, first, 2)

	// first run flags everything; a rerun with nothing new is empty
	for i := range items {
		items[i].IsKot = true
	}
	assert.Empty(t, UnticketedItems(items, KitchenTicket))

	// a dish added later comes back on the next run, alone
	items = append(items, models.RestaurantOrderItem{ID: 3, DishID: 5, IsKot: false})
	second := UnticketedItems(items, KitchenTicket)
	require.Len(t, second, 1)
	assert.Equal(t, int64(3), second[0].ID)
}

func TestUnticketedItemsKindsAreIndependent(t *testing.T) {
	items := []models.RestaurantOrderItem{
		{ID: 1, IsKot: true, IsBot: false},
		{ID: 2, IsKot: false, IsBot: true},
	}

	kot := UnticketedItems(items, KitchenTicket)
	require.Len(t, kot, 1)
	assert.Equal(t, int64(2), kot[0].ID)

	bot := UnticketedItems(items, BeverageTicket)
	require.Len(t, bot, 1)
	assert.Equal(t, int64(1), bot[0].ID)
}

func TestCompletionBillTotals(t *testing.T) {
	serviceCharge, tax, total := CompletionBillTotals(decimal.NewFromInt(1000))

	assert.Equal(t, "100.00", serviceCharge.StringFixed(2))
	assert.Equal(t, "143.00", tax.StringFixed(2))
	assert.Equal(t, "1243.00", total.StringFixed(2))
}

func TestManualBillTotals(t *testing.T) {
	tax, total := ManualBillTotals(decimal.NewFromInt(500), decimal.NewFromInt(50))

	assert.Equal(t, "45.00", tax.StringFixed(2))
	assert.Equal(t, "495.00", total.StringFixed(2))
}

func TestManualBillTotalsNoDiscount(t *testing.T) {
	tax, total := ManualBillTotals(decimal.NewFromInt(200), decimal.Zero)

	assert.Equal(t, "20.00", tax.StringFixed(2))
	assert.Equal(t, "220.00", total.StringFixed(2))
}

func TestOrderSubtotal(t *testing.T) {
	items := []models.RestaurantOrderItem{
		{TotalPrice: "250.00"},
		{TotalPrice: "99.50"},
		{TotalPrice: "not-a-number"},
	}
	assert.Equal(t, "349.50", OrderSubtotal(items).StringFixed(2))
}
