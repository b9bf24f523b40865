package handler

import (
	"errors"

	"github.com/shopspring/decimal"

	"vistara-hms/internal/database/models"
)

// Order statuses. Staff drive an order forward one step at a time;
// cancellation is reachable from any non-terminal state.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusPreparing = "preparing"
	StatusReady     = "ready"
	StatusServed    = "served"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnknownStatus     = errors.New("unknown order status")
)

// transitions is the full legal state machine. Out-of-order jumps
// (e.g. pending -> served) are rejected rather than applied by name.
var transitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady, StatusCancelled},
	StatusReady:     {StatusServed, StatusCancelled},
	StatusServed:    {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

func IsValidStatus(s string) bool {
	_, ok := transitions[s]
	return ok
}

func IsTerminal(s string) bool {
	return s == StatusCompleted || s == StatusCancelled
}

func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CheckTransition distinguishes a malformed status from a legal status
// requested out of order.
func CheckTransition(from, to string) error {
	if !IsValidStatus(to) {
		return ErrUnknownStatus
	}
	if !CanTransition(from, to) {
		return ErrInvalidTransition
	}
	return nil
}

// TicketKind selects which per-item flag a ticket run consumes.
type TicketKind int

const (
	KitchenTicket TicketKind = iota
	BeverageTicket
)

// UnticketedItems returns the items a ticket run would newly include:
// only those not yet flagged for this ticket kind. Items added after a
// prior run come back on the next one; a second run with nothing new
// returns an empty slice.
func UnticketedItems(items []models.RestaurantOrderItem, kind TicketKind) []models.RestaurantOrderItem {
	var out []models.RestaurantOrderItem
	for _, item := range items {
		ticketed := item.IsKot
		if kind == BeverageTicket {
			ticketed = item.IsBot
		}
		if !ticketed {
			out = append(out, item)
		}
	}
	return out
}

var (
	serviceChargeRate = decimal.NewFromInt(10).Div(decimal.NewFromInt(100))
	completionTaxRate = decimal.NewFromInt(13).Div(decimal.NewFromInt(100))
	manualTaxRate     = decimal.NewFromInt(10).Div(decimal.NewFromInt(100))
)

// CompletionBillTotals prices the bill synthesized when an order reaches
// completed with no bill on record: 10% service charge on the subtotal,
// 13% tax on subtotal plus service charge.
func CompletionBillTotals(subtotal decimal.Decimal) (serviceCharge, tax, total decimal.Decimal) {
	serviceCharge = subtotal.Mul(serviceChargeRate)
	tax = subtotal.Add(serviceCharge).Mul(completionTaxRate)
	total = subtotal.Add(serviceCharge).Add(tax)
	return serviceCharge, tax, total
}

// ManualBillTotals prices a staff-entered dine-in bill: flat 10% tax on
// the discounted subtotal, no service charge.
func ManualBillTotals(subtotal, discount decimal.Decimal) (tax, total decimal.Decimal) {
	afterDiscount := subtotal.Sub(discount)
	tax = afterDiscount.Mul(manualTaxRate)
	total = afterDiscount.Add(tax)
	return tax, total
}

// OrderSubtotal sums item line totals.
func OrderSubtotal(items []models.RestaurantOrderItem) decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range items {
		lineTotal, err := decimal.NewFromString(item.TotalPrice)
		if err != nil {
			continue
		}
		subtotal = subtotal.Add(lineTotal)
	}
	return subtotal
}
