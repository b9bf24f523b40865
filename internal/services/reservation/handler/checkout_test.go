package handler

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vistara-hms/internal/database/models"
)

func TestComputeCheckoutPercentageDiscount(t *testing.T) {
	taxes := []models.Tax{{TaxName: "VAT", Rate: "13.00"}}

	totals := ComputeCheckout(decimal.NewFromInt(1000), 10, DiscountPercentage, taxes, decimal.Zero)

	assert.Equal(t, "1000.00", totals.Subtotal)
	assert.Equal(t, "100.00", totals.DiscountAmount)
	assert.Equal(t, "900.00", totals.AfterDiscount)
	assert.Equal(t, "117.00", totals.TaxTotal)
	assert.Equal(t, "1017.00", totals.GrandTotal)
	assert.Equal(t, "1017.00", totals.BalanceDue)
}

func TestComputeCheckoutFlatDiscount(t *testing.T) {
	taxes := []models.Tax{{TaxName: "VAT", Rate: "10.00"}}

	totals := ComputeCheckout(decimal.NewFromInt(500), 50, DiscountFlat, taxes, decimal.NewFromInt(200))

	assert.Equal(t, "50.00", totals.DiscountAmount)
	assert.Equal(t, "45.00", totals.TaxTotal)
	assert.Equal(t, "495.00", totals.GrandTotal)
	assert.Equal(t, "295.00", totals.BalanceDue)
}

func TestComputeCheckoutMultipleTaxesIndependent(t *testing.T) {
	taxes := []models.Tax{
		{TaxName: "VAT", Rate: "13.00"},
		{TaxName: "Service Tax", Rate: "2.00"},
	}

	totals := ComputeCheckout(decimal.NewFromInt(1000), 0, "", taxes, decimal.Zero)

	require.Len(t, totals.Taxes, 2)
	assert.Equal(t, "130.00", totals.Taxes[0].Amount)
	assert.Equal(t, "20.00", totals.Taxes[1].Amount)
	assert.Equal(t, "150.00", totals.TaxTotal)
	assert.Equal(t, "1150.00", totals.GrandTotal)
}

func TestComputeCheckoutClampsJunkDiscounts(t *testing.T) {
	subtotal := decimal.NewFromInt(1000)

	for _, junk := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), -50} {
		totals := ComputeCheckout(subtotal, junk, DiscountPercentage, nil, decimal.Zero)
		assert.Equal(t, "0.00", totals.DiscountAmount)
		assert.Equal(t, "1000.00", totals.GrandTotal)
	}
}

func TestComputeCheckoutCapsDiscountAtSubtotal(t *testing.T) {
	totals := ComputeCheckout(decimal.NewFromInt(100), 150, DiscountPercentage, nil, decimal.Zero)
	assert.Equal(t, "100.00", totals.DiscountAmount)
	assert.Equal(t, "0.00", totals.GrandTotal)

	totals = ComputeCheckout(decimal.NewFromInt(100), 500, DiscountFlat, nil, decimal.Zero)
	assert.Equal(t, "100.00", totals.DiscountAmount)
	assert.Equal(t, "0.00", totals.GrandTotal)
}

func TestComputeCheckoutSkipsMalformedTaxRates(t *testing.T) {
	taxes := []models.Tax{
		{TaxName: "VAT", Rate: "13.00"},
		{TaxName: "Broken", Rate: "abc"},
	}

	totals := ComputeCheckout(decimal.NewFromInt(100), 0, "", taxes, decimal.Zero)

	require.Len(t, totals.Taxes, 1)
	assert.Equal(t, "13.00", totals.TaxTotal)
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, 0.0, sanitize(math.NaN()))
	assert.Equal(t, 0.0, sanitize(math.Inf(1)))
	assert.Equal(t, 0.0, sanitize(math.Inf(-1)))
	assert.Equal(t, 0.0, sanitize(-1))
	assert.Equal(t, 42.5, sanitize(42.5))
}

func TestStayNights(t *testing.T) {
	in, out, err := parseStayDates("2025-06-01", "2025-06-04")
	require.NoError(t, err)
	assert.Equal(t, int32(3), stayNights(in, out))
}

func TestParseStayDatesRejectsInvertedRange(t *testing.T) {
	_, _, err := parseStayDates("2025-06-04", "2025-06-01")
	assert.Error(t, err)

	_, _, err = parseStayDates("2025-06-01", "2025-06-01")
	assert.Error(t, err)

	_, _, err = parseStayDates("not-a-date", "2025-06-01")
	assert.Error(t, err)
}
