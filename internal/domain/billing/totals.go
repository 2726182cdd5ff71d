package billing

import (
	"strings"

	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// InvoiceItemInput is a proposed invoice line before totals are computed
type InvoiceItemInput struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	// TaxRate overrides the default rate when set (fraction, 0.07 = 7%)
	TaxRate *decimal.Decimal
}

// ComputedItem is an invoice line with its rounded line total and tax
type ComputedItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
}

// InvoiceTotals is the result of ComputeTotals
type InvoiceTotals struct {
	Items       []ComputedItem  `json:"items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	TotalTax    decimal.Decimal `json:"total_tax"`
	GrandTotal  decimal.Decimal `json:"grand_total"`
}

// ComputeTotals validates the proposed lines and computes per-line and invoice totals.
// Every value is rounded to 2 places right after the step that produces it.
func ComputeTotals(items []InvoiceItemInput, defaultTaxRate decimal.Decimal) (*InvoiceTotals, error) {
	if len(items) == 0 {
		return nil, ErrItemsRequired
	}

	totals := &InvoiceTotals{
		Items:       make([]ComputedItem, 0, len(items)),
		TotalAmount: decimal.Zero,
		TotalTax:    decimal.Zero,
	}

	for i, item := range items {
		if err := validateItem(i, item); err != nil {
			return nil, err
		}

		rate := defaultTaxRate
		if item.TaxRate != nil {
			rate = *item.TaxRate
		}

		lineTotal := valueobject.Mul2(item.Quantity, item.UnitPrice)
		taxAmount := valueobject.Mul2(lineTotal, rate)

		totals.Items = append(totals.Items, ComputedItem{
			Description: strings.TrimSpace(item.Description),
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   lineTotal,
			TaxRate:     rate,
			TaxAmount:   taxAmount,
		})
		totals.TotalAmount = valueobject.Add2(totals.TotalAmount, lineTotal)
		totals.TotalTax = valueobject.Add2(totals.TotalTax, taxAmount)
	}

	totals.GrandTotal = valueobject.Add2(totals.TotalAmount, totals.TotalTax)
	return totals, nil
}

func validateItem(i int, item InvoiceItemInput) error {
	if strings.TrimSpace(item.Description) == "" {
		return NewInvalidItemError(i, "description", "description is required")
	}
	if !item.Quantity.IsPositive() {
		return NewInvalidItemError(i, "quantity", "quantity must be greater than 0")
	}
	if item.UnitPrice.IsNegative() {
		return NewInvalidItemError(i, "unitPrice", "unit price must be non-negative")
	}
	if item.TaxRate != nil && item.TaxRate.IsNegative() {
		return NewInvalidItemError(i, "taxRate", "tax rate must be non-negative")
	}
	return nil
}
