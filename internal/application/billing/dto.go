package billing

import (
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// CreateInvoiceItem is one proposed line of CreateInvoiceCommand
type CreateInvoiceItem struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	TaxRate     *decimal.Decimal
}

// CreateInvoiceCommand creates an invoice. InvoiceDate defaults to now.
type CreateInvoiceCommand struct {
	InvoiceNumber string
	InvoiceDate   *time.Time
	Items         []CreateInvoiceItem
}

// ProcessPaymentCommand records a payment against an invoice
type ProcessPaymentCommand struct {
	InvoiceID       uuid.UUID
	Amount          decimal.Decimal
	PaymentMethod   string
	ReferenceNumber string
}

// InvoiceListFilter defines filtering options for invoice list queries
type InvoiceListFilter struct {
	Status   string `form:"status"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// InvoiceItemResponse represents an invoice line in API responses
type InvoiceItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
	TaxRate     decimal.Decimal `json:"taxRate"`
	TaxAmount   decimal.Decimal `json:"taxAmount"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID                uuid.UUID             `json:"id"`
	InvoiceNumber     string                `json:"invoiceNumber"`
	InvoiceDate       time.Time             `json:"invoiceDate"`
	TotalAmount       decimal.Decimal       `json:"totalAmount"`
	TotalTax          decimal.Decimal       `json:"totalTax"`
	GrandTotal        decimal.Decimal       `json:"grandTotal"`
	OutstandingAmount decimal.Decimal       `json:"outstandingAmount"`
	Status            string                `json:"status"`
	Items             []InvoiceItemResponse `json:"items"`
	Payments          []PaymentResponse     `json:"payments,omitempty"`
	Receipts          []ReceiptResponse     `json:"receipts,omitempty"`
	CreatedAt         time.Time             `json:"createdAt"`
	UpdatedAt         time.Time             `json:"updatedAt"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID              uuid.UUID       `json:"id"`
	InvoiceID       uuid.UUID       `json:"invoiceId"`
	PaymentMethod   string          `json:"paymentMethod"`
	Amount          decimal.Decimal `json:"amount"`
	ReferenceNumber *string         `json:"referenceNumber"`
	Status          string          `json:"status"`
	PaymentDate     time.Time       `json:"paymentDate"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// ReceiptItemResponse represents a receipt line in API responses
type ReceiptItemResponse struct {
	ID              uuid.UUID       `json:"id"`
	InvoiceItemID   *uuid.UUID      `json:"invoiceItemId"`
	AllocatedAmount decimal.Decimal `json:"allocatedAmount"`
}

// ReceiptResponse represents a receipt in API responses
type ReceiptResponse struct {
	ID               uuid.UUID             `json:"id"`
	ReceiptNumber    string                `json:"receiptNumber"`
	PaymentID        uuid.UUID             `json:"paymentId"`
	InvoiceID        uuid.UUID             `json:"invoiceId"`
	Strategy         string                `json:"strategy"`
	ReceiptDate      time.Time             `json:"receiptDate"`
	TotalPaid        decimal.Decimal       `json:"totalPaid"`
	RemainingBalance decimal.Decimal       `json:"remainingBalance"`
	Items            []ReceiptItemResponse `json:"items"`
	Payment          *PaymentResponse      `json:"payment,omitempty"`
}

// AllocationResponse is one entry of a receipt's raw allocation list
type AllocationResponse struct {
	InvoiceItemID   *uuid.UUID      `json:"invoiceItemId"`
	AllocatedAmount decimal.Decimal `json:"allocatedAmount"`
}

// ProcessPaymentResult is returned by PaymentService.ProcessPayment
type ProcessPaymentResult struct {
	Payment     PaymentResponse `json:"payment"`
	Receipt     ReceiptResponse `json:"receipt"`
	Invoice     InvoiceResponse `json:"invoice"`
	Overpayment decimal.Decimal `json:"overpayment"`
}

// GenerateReceiptResult is returned by ReceiptService.GenerateReceipt
type GenerateReceiptResult struct {
	Receipt     ReceiptResponse      `json:"receipt"`
	Allocations []AllocationResponse `json:"allocations"`
}

func toInvoiceResponse(inv *billing.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:                inv.ID,
		InvoiceNumber:     inv.InvoiceNumber,
		InvoiceDate:       inv.InvoiceDate,
		TotalAmount:       inv.TotalAmount,
		TotalTax:          inv.TotalTax,
		GrandTotal:        inv.GrandTotal(),
		OutstandingAmount: inv.OutstandingAmount,
		Status:            inv.Status.String(),
		CreatedAt:         inv.CreatedAt,
		UpdatedAt:         inv.UpdatedAt,
		Items: lo.Map(inv.Items, func(item billing.InvoiceItem, _ int) InvoiceItemResponse {
			return InvoiceItemResponse{
				ID:          item.ID,
				Description: item.Description,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
				LineTotal:   item.LineTotal,
				TaxRate:     item.TaxRate,
				TaxAmount:   item.TaxAmount,
			}
		}),
	}
	if len(inv.Payments) > 0 {
		resp.Payments = lo.Map(inv.Payments, func(p billing.Payment, _ int) PaymentResponse {
			return toPaymentResponse(&p)
		})
	}
	if len(inv.Receipts) > 0 {
		resp.Receipts = lo.Map(inv.Receipts, func(r billing.Receipt, _ int) ReceiptResponse {
			return toReceiptResponse(&r)
		})
	}
	return resp
}

func toPaymentResponse(p *billing.Payment) PaymentResponse {
	return PaymentResponse{
		ID:              p.ID,
		InvoiceID:       p.InvoiceID,
		PaymentMethod:   p.PaymentMethod.String(),
		Amount:          p.Amount,
		ReferenceNumber: p.ReferenceNumber,
		Status:          p.Status.String(),
		PaymentDate:     p.PaymentDate,
		CreatedAt:       p.CreatedAt,
	}
}

func toReceiptResponse(r *billing.Receipt) ReceiptResponse {
	resp := ReceiptResponse{
		ID:               r.ID,
		ReceiptNumber:    r.ReceiptNumber,
		PaymentID:        r.PaymentID,
		InvoiceID:        r.InvoiceID,
		Strategy:         r.Strategy.String(),
		ReceiptDate:      r.ReceiptDate,
		TotalPaid:        r.TotalPaid,
		RemainingBalance: r.RemainingBalance,
		Items: lo.Map(r.Items, func(item billing.ReceiptItem, _ int) ReceiptItemResponse {
			return ReceiptItemResponse{
				ID:              item.ID,
				InvoiceItemID:   item.InvoiceItemID,
				AllocatedAmount: item.AllocatedAmount,
			}
		}),
	}
	if r.Payment != nil {
		resp.Payment = lo.ToPtr(toPaymentResponse(r.Payment))
	}
	return resp
}

func toAllocationResponses(allocations []billing.Allocation) []AllocationResponse {
	return lo.Map(allocations, func(a billing.Allocation, _ int) AllocationResponse {
		return AllocationResponse{
			InvoiceItemID:   a.InvoiceItemID,
			AllocatedAmount: a.AllocatedAmount,
		}
	})
}
