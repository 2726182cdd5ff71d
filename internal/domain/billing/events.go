package billing

import (
	"time"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type names
const (
	EventTypeInvoiceCreated  = "InvoiceCreated"
	EventTypePaymentRecorded = "PaymentRecorded"
	EventTypeReceiptIssued   = "ReceiptIssued"
)

// InvoiceCreatedEvent is raised when a new invoice is created
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	TotalTax      decimal.Decimal `json:"total_tax"`
	ItemCount     int             `json:"item_count"`
	InvoiceDate   time.Time       `json:"invoice_date"`
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCreated, AggregateTypeInvoice, inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		TotalAmount:     inv.TotalAmount,
		TotalTax:        inv.TotalTax,
		ItemCount:       len(inv.Items),
		InvoiceDate:     inv.InvoiceDate,
	}
}

// PaymentRecordedEvent is raised when a payment has been applied to an invoice
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	PaymentID         uuid.UUID       `json:"payment_id"`
	InvoiceID         uuid.UUID       `json:"invoice_id"`
	Amount            decimal.Decimal `json:"amount"`
	PaymentMethod     PaymentMethod   `json:"payment_method"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
	InvoiceStatus     InvoiceStatus   `json:"invoice_status"`
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent from the payment and the updated invoice
func NewPaymentRecordedEvent(p *Payment, inv *Invoice) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypePaymentRecorded, AggregateTypePayment, p.ID),
		PaymentID:         p.ID,
		InvoiceID:         inv.ID,
		Amount:            p.Amount,
		PaymentMethod:     p.PaymentMethod,
		OutstandingAmount: inv.OutstandingAmount,
		InvoiceStatus:     inv.Status,
	}
}

// ReceiptIssuedEvent is raised when a receipt is issued
type ReceiptIssuedEvent struct {
	shared.BaseDomainEvent
	ReceiptID     uuid.UUID          `json:"receipt_id"`
	ReceiptNumber string             `json:"receipt_number"`
	PaymentID     uuid.UUID          `json:"payment_id"`
	Strategy      AllocationStrategy `json:"strategy"`
	TotalPaid     decimal.Decimal    `json:"total_paid"`
}

// NewReceiptIssuedEvent creates a new ReceiptIssuedEvent
func NewReceiptIssuedEvent(r *Receipt) *ReceiptIssuedEvent {
	return &ReceiptIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReceiptIssued, AggregateTypeReceipt, r.ID),
		ReceiptID:       r.ID,
		ReceiptNumber:   r.ReceiptNumber,
		PaymentID:       r.PaymentID,
		Strategy:        r.Strategy,
		TotalPaid:       r.TotalPaid,
	}
}
