package handler

import (
	"time"

	appbilling "github.com/billing/backend/internal/application/billing"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// InvoiceItemRequest is one line of CreateInvoiceRequest. Amounts accept JSON
// numbers or strings.
type InvoiceItemRequest struct {
	Description string           `json:"description" binding:"max=500"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitPrice   decimal.Decimal  `json:"unitPrice"`
	TaxRate     *decimal.Decimal `json:"taxRate"`
}

// CreateInvoiceRequest is the body of POST /invoices
type CreateInvoiceRequest struct {
	InvoiceNumber string               `json:"invoiceNumber" binding:"max=100"`
	InvoiceDate   *time.Time           `json:"invoiceDate"`
	Items         []InvoiceItemRequest `json:"items" binding:"dive"`
}

// ToCommand converts the request to the service command
func (r CreateInvoiceRequest) ToCommand() appbilling.CreateInvoiceCommand {
	return appbilling.CreateInvoiceCommand{
		InvoiceNumber: r.InvoiceNumber,
		InvoiceDate:   r.InvoiceDate,
		Items: lo.Map(r.Items, func(item InvoiceItemRequest, _ int) appbilling.CreateInvoiceItem {
			return appbilling.CreateInvoiceItem{
				Description: item.Description,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
				TaxRate:     item.TaxRate,
			}
		}),
	}
}

// ProcessPaymentRequest is the body of POST /payments
type ProcessPaymentRequest struct {
	InvoiceID       string           `json:"invoiceId" binding:"required,uuid"`
	Amount          *decimal.Decimal `json:"amount" binding:"required"`
	PaymentMethod   string           `json:"paymentMethod" binding:"required"`
	ReferenceNumber string           `json:"referenceNumber" binding:"max=100"`
}

// ToCommand converts the request to the service command
func (r ProcessPaymentRequest) ToCommand() (appbilling.ProcessPaymentCommand, error) {
	invoiceID, err := uuid.Parse(r.InvoiceID)
	if err != nil {
		return appbilling.ProcessPaymentCommand{}, err
	}
	return appbilling.ProcessPaymentCommand{
		InvoiceID:       invoiceID,
		Amount:          lo.FromPtr(r.Amount),
		PaymentMethod:   r.PaymentMethod,
		ReferenceNumber: r.ReferenceNumber,
	}, nil
}
