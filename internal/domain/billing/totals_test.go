package billing

import (
	"testing"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	v := dec(s)
	return &v
}

func sampleItems() []InvoiceItemInput {
	return []InvoiceItemInput{
		{Description: "Consulting", Quantity: dec("2"), UnitPrice: dec("150"), TaxRate: decPtr("0.07")},
		{Description: "Hosting", Quantity: dec("1"), UnitPrice: dec("50"), TaxRate: decPtr("0.07")},
	}
}

func TestComputeTotals_Example(t *testing.T) {
	totals, err := ComputeTotals(sampleItems(), dec("0.07"))
	require.NoError(t, err)

	require.Len(t, totals.Items, 2)
	assert.True(t, totals.Items[0].LineTotal.Equal(dec("300")))
	assert.True(t, totals.Items[0].TaxAmount.Equal(dec("21")))
	assert.True(t, totals.Items[1].LineTotal.Equal(dec("50")))
	assert.True(t, totals.Items[1].TaxAmount.Equal(dec("3.5")))

	assert.Equal(t, "350.00", totals.TotalAmount.StringFixed(2))
	assert.Equal(t, "24.50", totals.TotalTax.StringFixed(2))
	assert.Equal(t, "374.50", totals.GrandTotal.StringFixed(2))
}

func TestComputeTotals_DefaultTaxRate(t *testing.T) {
	items := []InvoiceItemInput{
		{Description: "Widget", Quantity: dec("3"), UnitPrice: dec("9.99")},
		{Description: "Tax free", Quantity: dec("1"), UnitPrice: dec("10"), TaxRate: decPtr("0")},
	}

	totals, err := ComputeTotals(items, dec("0.1"))
	require.NoError(t, err)

	assert.True(t, totals.Items[0].TaxRate.Equal(dec("0.1")))
	assert.True(t, totals.Items[0].LineTotal.Equal(dec("29.97")))
	assert.True(t, totals.Items[0].TaxAmount.Equal(dec("3")))
	assert.True(t, totals.Items[1].TaxRate.IsZero())
	assert.True(t, totals.Items[1].TaxAmount.IsZero())
	assert.True(t, totals.TotalAmount.Equal(dec("39.97")))
	assert.True(t, totals.TotalTax.Equal(dec("3")))
	assert.True(t, totals.GrandTotal.Equal(dec("42.97")))
}

func TestComputeTotals_RoundsEveryStep(t *testing.T) {
	// 0.333 x 1 = 0.333 -> 0.33 per line, three lines -> 0.99 rather than round2(0.999) = 1.00
	items := make([]InvoiceItemInput, 3)
	for i := range items {
		items[i] = InvoiceItemInput{Description: "Fraction", Quantity: dec("1"), UnitPrice: dec("0.333")}
	}

	totals, err := ComputeTotals(items, dec("0"))
	require.NoError(t, err)
	assert.True(t, totals.TotalAmount.Equal(dec("0.99")), "got %s", totals.TotalAmount)
}

func TestComputeTotals_SumsMatchComponents(t *testing.T) {
	items := []InvoiceItemInput{
		{Description: "A", Quantity: dec("1.5"), UnitPrice: dec("19.99")},
		{Description: "B", Quantity: dec("7"), UnitPrice: dec("0.13"), TaxRate: decPtr("0.2")},
		{Description: "C", Quantity: dec("0.25"), UnitPrice: dec("1234.567")},
		{Description: "D", Quantity: dec("12"), UnitPrice: dec("0")},
	}

	totals, err := ComputeTotals(items, dec("0.075"))
	require.NoError(t, err)

	sumLines := decimal.Zero
	sumTax := decimal.Zero
	for _, item := range totals.Items {
		sumLines = sumLines.Add(item.LineTotal)
		sumTax = sumTax.Add(item.TaxAmount)
	}
	assert.True(t, totals.TotalAmount.Sub(sumLines).Abs().LessThanOrEqual(dec("0.01")))
	assert.True(t, totals.TotalTax.Sub(sumTax).Abs().LessThanOrEqual(dec("0.01")))
	assert.True(t, totals.GrandTotal.Equal(totals.TotalAmount.Add(totals.TotalTax)))
}

func TestComputeTotals_Validation(t *testing.T) {
	tests := []struct {
		name    string
		items   []InvoiceItemInput
		code    string
		message string
		field   string
	}{
		{
			name:    "empty items",
			items:   nil,
			code:    CodeItemsRequired,
			message: "At least one invoice item is required",
		},
		{
			name: "missing description",
			items: []InvoiceItemInput{
				{Description: "  ", Quantity: dec("1"), UnitPrice: dec("1")},
			},
			code:    CodeInvalidItem,
			message: "Item #1 description is required",
			field:   "items[0].description",
		},
		{
			name: "zero quantity on second item",
			items: []InvoiceItemInput{
				{Description: "ok", Quantity: dec("1"), UnitPrice: dec("1")},
				{Description: "bad", Quantity: dec("0"), UnitPrice: dec("1")},
			},
			code:    CodeInvalidItem,
			message: "Item #2 quantity must be greater than 0",
			field:   "items[1].quantity",
		},
		{
			name: "negative quantity",
			items: []InvoiceItemInput{
				{Description: "bad", Quantity: dec("-1"), UnitPrice: dec("1")},
			},
			code:    CodeInvalidItem,
			message: "Item #1 quantity must be greater than 0",
			field:   "items[0].quantity",
		},
		{
			name: "negative unit price",
			items: []InvoiceItemInput{
				{Description: "bad", Quantity: dec("1"), UnitPrice: dec("-0.01")},
			},
			code:    CodeInvalidItem,
			message: "Item #1 unit price must be non-negative",
			field:   "items[0].unitPrice",
		},
		{
			name: "negative tax rate",
			items: []InvoiceItemInput{
				{Description: "bad", Quantity: dec("1"), UnitPrice: dec("1"), TaxRate: decPtr("-0.1")},
			},
			code:    CodeInvalidItem,
			message: "Item #1 tax rate must be non-negative",
			field:   "items[0].taxRate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals, err := ComputeTotals(tt.items, dec("0.07"))
			require.Error(t, err)
			assert.Nil(t, totals)

			domainErr, ok := shared.AsDomainError(err)
			require.True(t, ok)
			assert.Equal(t, shared.KindValidation, domainErr.Kind)
			assert.Equal(t, tt.code, domainErr.Code)
			assert.Equal(t, tt.message, domainErr.Message)
			if tt.field != "" {
				assert.Equal(t, tt.field, domainErr.Details["field"])
			}
		})
	}
}

func TestComputeTotals_ZeroPriceAllowed(t *testing.T) {
	totals, err := ComputeTotals([]InvoiceItemInput{
		{Description: "Free sample", Quantity: dec("5"), UnitPrice: dec("0")},
	}, dec("0.07"))
	require.NoError(t, err)
	assert.True(t, totals.GrandTotal.IsZero())
}
