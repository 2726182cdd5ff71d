package billing

import (
	"strings"
	"time"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the settlement status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusPending       InvoiceStatus = "PENDING"        // Nothing paid yet
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID" // Some balance remains
	InvoiceStatusPaid          InvoiceStatus = "PAID"           // Fully settled
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusPartiallyPaid, InvoiceStatusPaid:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// AggregateTypeInvoice is the aggregate type name used in events
const AggregateTypeInvoice = "Invoice"

// InvoiceItem is a persisted invoice line. Immutable once the invoice is created.
type InvoiceItem struct {
	ID          uuid.UUID       `json:"id"`
	InvoiceID   uuid.UUID       `json:"invoice_id"`
	Position    int             `json:"position"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
}

// RawAmount returns quantity x unit price without rounding
func (i InvoiceItem) RawAmount() decimal.Decimal {
	return i.Quantity.Mul(i.UnitPrice)
}

// TaxInclusiveTotal returns round2(line total + tax amount)
func (i InvoiceItem) TaxInclusiveTotal() decimal.Decimal {
	return valueobject.Add2(i.LineTotal, i.TaxAmount)
}

// Invoice is the aggregate root for a bill and its outstanding balance
type Invoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber     string          `json:"invoice_number"`
	InvoiceDate       time.Time       `json:"invoice_date"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	TotalTax          decimal.Decimal `json:"total_tax"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
	Status            InvoiceStatus   `json:"status"`
	Items             []InvoiceItem   `json:"items"`

	// Read side only, populated by detail queries
	Payments []Payment `json:"payments,omitempty"`
	Receipts []Receipt `json:"receipts,omitempty"`
}

// NewInvoice creates a pending invoice from computed totals
func NewInvoice(invoiceNumber string, invoiceDate time.Time, totals *InvoiceTotals) (*Invoice, error) {
	invoiceNumber = strings.TrimSpace(invoiceNumber)
	if invoiceNumber == "" {
		return nil, ErrInvoiceNumberRequired
	}
	if totals == nil || len(totals.Items) == 0 {
		return nil, ErrItemsRequired
	}
	if invoiceDate.IsZero() {
		invoiceDate = time.Now()
	}

	invoice := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     invoiceNumber,
		InvoiceDate:       invoiceDate,
		TotalAmount:       totals.TotalAmount,
		TotalTax:          totals.TotalTax,
		OutstandingAmount: valueobject.Add2(totals.TotalAmount, totals.TotalTax),
		Status:            InvoiceStatusPending,
		Items:             make([]InvoiceItem, 0, len(totals.Items)),
	}

	for pos, item := range totals.Items {
		invoice.Items = append(invoice.Items, InvoiceItem{
			ID:          uuid.New(),
			InvoiceID:   invoice.ID,
			Position:    pos,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
			TaxRate:     item.TaxRate,
			TaxAmount:   item.TaxAmount,
		})
	}

	invoice.AddDomainEvent(NewInvoiceCreatedEvent(invoice))
	return invoice, nil
}

// GrandTotal returns round2(total amount + total tax)
func (i *Invoice) GrandTotal() decimal.Decimal {
	return valueobject.Add2(i.TotalAmount, i.TotalTax)
}

// IsSettled returns true when nothing is left to pay
func (i *Invoice) IsSettled() bool {
	return !i.OutstandingAmount.IsPositive()
}

// ApplyPayment reduces the outstanding balance by amount and moves the status forward.
// The invoice is left untouched when an error is returned.
func (i *Invoice) ApplyPayment(amount decimal.Decimal) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	if i.IsSettled() {
		return ErrAlreadySettled
	}
	if amount.GreaterThan(i.OutstandingAmount) {
		return NewOverpaymentError(amount, i.OutstandingAmount)
	}

	if amount.Equal(i.OutstandingAmount) {
		i.Status = InvoiceStatusPaid
	} else {
		i.Status = InvoiceStatusPartiallyPaid
	}
	i.OutstandingAmount = valueobject.FloorZero(valueobject.Sub2(i.OutstandingAmount, amount))
	i.IncrementVersion()
	i.Touch()
	return nil
}

// RawItemsTotal returns the sum of quantity x unit price over all lines, unrounded
func (i *Invoice) RawItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range i.Items {
		total = total.Add(item.RawAmount())
	}
	return total
}
