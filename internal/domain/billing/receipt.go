package billing

import (
	"time"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Receipt number prefixes
const (
	ReceiptPrefixPayment   = "RCPT"
	ReceiptPrefixGenerated = "R"
)

// AggregateTypeReceipt is the aggregate type name used in events
const AggregateTypeReceipt = "Receipt"

// NewReceiptNumber returns a unique, time-sortable receipt number
func NewReceiptNumber(prefix string) string {
	return prefix + "-" + ulid.Make().String()
}

// ReceiptItem is the share of a receipt attributed to one invoice line
type ReceiptItem struct {
	ID              uuid.UUID       `json:"id"`
	ReceiptID       uuid.UUID       `json:"receipt_id"`
	InvoiceItemID   *uuid.UUID      `json:"invoice_item_id"`
	AllocatedAmount decimal.Decimal `json:"allocated_amount"`
}

// Receipt breaks a payment down across the invoice's lines
type Receipt struct {
	shared.BaseAggregateRoot
	PaymentID        uuid.UUID          `json:"payment_id"`
	InvoiceID        uuid.UUID          `json:"invoice_id"`
	ReceiptNumber    string             `json:"receipt_number"`
	Strategy         AllocationStrategy `json:"strategy"`
	ReceiptDate      time.Time          `json:"receipt_date"`
	TotalPaid        decimal.Decimal    `json:"total_paid"`
	RemainingBalance decimal.Decimal    `json:"remaining_balance"`
	Items            []ReceiptItem      `json:"items"`

	// Read side only
	Payment *Payment `json:"payment,omitempty"`
}

func newReceipt(payment *Payment, number string, strategy AllocationStrategy, allocations []Allocation,
	totalPaid, remaining decimal.Decimal) *Receipt {
	receipt := &Receipt{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PaymentID:         payment.ID,
		InvoiceID:         payment.InvoiceID,
		ReceiptNumber:     number,
		Strategy:          strategy,
		TotalPaid:         totalPaid,
		RemainingBalance:  remaining,
	}
	receipt.ReceiptDate = receipt.CreatedAt
	receipt.Items = lo.Map(allocations, func(a Allocation, _ int) ReceiptItem {
		return ReceiptItem{
			ID:              uuid.New(),
			ReceiptID:       receipt.ID,
			InvoiceItemID:   a.InvoiceItemID,
			AllocatedAmount: a.AllocatedAmount,
		}
	})
	receipt.AddDomainEvent(NewReceiptIssuedEvent(receipt))
	return receipt
}

// IssuePaymentReceipt builds the receipt that accompanies a freshly recorded payment.
// Lines are weighted tax-exclusive and rounded independently; totalPaid is the sum of
// the rounded shares and remainingBalance is the raw line total minus totalPaid.
// invoice must be the state before the payment was applied; only its lines are read.
func IssuePaymentReceipt(invoice *Invoice, payment *Payment) (*Receipt, []Allocation) {
	allocations := AllocateTaxExclusive(invoice.Items, payment.Amount)
	totalPaid := SumAllocations(allocations)
	remaining := valueobject.Sub2(invoice.RawItemsTotal(), totalPaid)
	return newReceipt(payment, NewReceiptNumber(ReceiptPrefixPayment), StrategyTaxExclusiveNaive,
		allocations, totalPaid, remaining), allocations
}

// GenerateReceipt builds a receipt for an existing payment using the tax-inclusive,
// residue-absorbing allocation. remainingBalance is derived from the invoice's current
// outstanding balance, floored at zero.
func GenerateReceipt(invoice *Invoice, payment *Payment) (*Receipt, []Allocation) {
	allocations := AllocateTaxInclusive(invoice.Items, payment.Amount)
	remaining := valueobject.FloorZero(valueobject.Sub2(invoice.OutstandingAmount, payment.Amount))
	return newReceipt(payment, NewReceiptNumber(ReceiptPrefixGenerated), StrategyTaxInclusiveResidue,
		allocations, payment.Amount, remaining), allocations
}

// AllocatedTotal returns the rounded sum of the receipt's item amounts
func (r *Receipt) AllocatedTotal() decimal.Decimal {
	return valueobject.Sum2(lo.Map(r.Items, func(i ReceiptItem, _ int) decimal.Decimal {
		return i.AllocatedAmount
	})...)
}
