package billing

import (
	"context"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InvoiceFilter narrows invoice listings
type InvoiceFilter struct {
	shared.Filter
	Status InvoiceStatus
}

// InvoiceRepository defines the interface for invoice persistence.
// Finders return (nil, nil) when nothing matches.
type InvoiceRepository interface {
	// FindByID loads the invoice with its items in persisted order
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByIDForUpdate is FindByID with a row lock held until the transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindDetail loads the invoice with items, payments and receipts
	FindDetail(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByNumber finds an invoice by its business key
	FindByNumber(ctx context.Context, invoiceNumber string) (*Invoice, error)

	// List returns a page of invoices, newest first
	List(ctx context.Context, filter InvoiceFilter) ([]Invoice, int64, error)

	// Create inserts the invoice and its items. A taken invoice number yields a
	// duplicate error from the unique index.
	Create(ctx context.Context, invoice *Invoice) error

	// UpdateBalance writes outstanding amount, status and version
	UpdateBalance(ctx context.Context, invoice *Invoice) error
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// Create inserts the payment. A taken reference number yields a duplicate error
	// from the unique index.
	Create(ctx context.Context, payment *Payment) error
}

// ReceiptRepository defines the interface for receipt persistence
type ReceiptRepository interface {
	// FindByID loads the receipt with its items and payment
	FindByID(ctx context.Context, id uuid.UUID) (*Receipt, error)

	// Create inserts the receipt and its items
	Create(ctx context.Context, receipt *Receipt) error
}
