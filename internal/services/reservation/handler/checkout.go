package handler

import (
	"math"

	"github.com/shopspring/decimal"

	"vistara-hms/internal/database/models"
)

// Discount kinds accepted on checkout.
const (
	DiscountPercentage = "percentage"
	DiscountFlat       = "flat"
)

// TaxCharge is one applied tax line on a folio.
type TaxCharge struct {
	TaxName string `json:"tax_name"`
	Rate    string `json:"rate"`
	Amount  string `json:"amount"`
}

// CheckoutTotals is the final folio breakdown at check-out time.
type CheckoutTotals struct {
	Subtotal       string      `json:"subtotal"`
	DiscountAmount string      `json:"discount_amount"`
	AfterDiscount  string      `json:"after_discount"`
	Taxes          []TaxCharge `json:"taxes"`
	TaxTotal       string      `json:"tax_total"`
	GrandTotal     string      `json:"grand_total"`
	BalanceDue     string      `json:"balance_due"`
}

// sanitize clamps the junk float64 values JSON decoding lets through.
// NaN and infinities become 0, as do negatives.
func sanitize(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	if f < 0 {
		return 0
	}
	return f
}

// ComputeCheckout builds the folio totals for a stay. The discount is
// applied to the subtotal first; every active tax is then computed
// independently on the discounted amount and summed. A percentage
// discount above 100 is capped so the folio never goes negative.
func ComputeCheckout(subtotal decimal.Decimal, discountValue float64, discountType string, taxes []models.Tax, paid decimal.Decimal) CheckoutTotals {
	dv := decimal.NewFromFloat(sanitize(discountValue))

	var discount decimal.Decimal
	switch discountType {
	case DiscountPercentage:
		if dv.GreaterThan(decimal.NewFromInt(100)) {
			dv = decimal.NewFromInt(100)
		}
		discount = subtotal.Mul(dv).Div(decimal.NewFromInt(100))
	case DiscountFlat:
		discount = dv
	default:
		discount = decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}

	afterDiscount := subtotal.Sub(discount)

	charges := make([]TaxCharge, 0, len(taxes))
	taxTotal := decimal.Zero
	for _, t := range taxes {
		rate, err := decimal.NewFromString(t.Rate)
		if err != nil {
			continue
		}
		amount := afterDiscount.Mul(rate).Div(decimal.NewFromInt(100))
		taxTotal = taxTotal.Add(amount)
		charges = append(charges, TaxCharge{
			TaxName: t.TaxName,
			Rate:    rate.StringFixed(2),
			Amount:  amount.StringFixed(2),
		})
	}

	grand := afterDiscount.Add(taxTotal)
	balance := grand.Sub(paid)

	return CheckoutTotals{
		Subtotal:       subtotal.StringFixed(2),
		DiscountAmount: discount.StringFixed(2),
		AfterDiscount:  afterDiscount.StringFixed(2),
		Taxes:          charges,
		TaxTotal:       taxTotal.StringFixed(2),
		GrandTotal:     grand.StringFixed(2),
		BalanceDue:     balance.StringFixed(2),
	}
}
