package billing

import (
	"context"
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Repositories
// =============================================================================

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindDetail(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByNumber(ctx context.Context, invoiceNumber string) (*billing.Invoice, error) {
	args := m.Called(ctx, invoiceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) List(ctx context.Context, filter billing.InvoiceFilter) ([]billing.Invoice, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]billing.Invoice), args.Get(1).(int64), args.Error(2)
}

func (m *MockInvoiceRepository) Create(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) UpdateBalance(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *billing.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

type MockReceiptRepository struct {
	mock.Mock
}

func (m *MockReceiptRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Receipt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Receipt), args.Error(1)
}

func (m *MockReceiptRepository) Create(ctx context.Context, receipt *billing.Receipt) error {
	args := m.Called(ctx, receipt)
	return args.Error(0)
}

// =============================================================================
// Mock collaborators
// =============================================================================

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

type recordingMetrics struct {
	invoices int
	payments map[PaymentOutcome]int
	receipts map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		payments: make(map[PaymentOutcome]int),
		receipts: make(map[string]int),
	}
}

func (r *recordingMetrics) RecordInvoiceCreated(context.Context, decimal.Decimal) { r.invoices++ }
func (r *recordingMetrics) RecordPayment(_ context.Context, _ string, outcome PaymentOutcome, _ decimal.Decimal) {
	r.payments[outcome]++
}
func (r *recordingMetrics) RecordReceiptIssued(_ context.Context, strategy string) { r.receipts[strategy]++ }

// =============================================================================
// Fixtures
// =============================================================================

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	v := dec(s)
	return &v
}

func sampleItemsCommand() []CreateInvoiceItem {
	return []CreateInvoiceItem{
		{Description: "Consulting", Quantity: dec("2"), UnitPrice: dec("150"), TaxRate: decPtr("0.07")},
		{Description: "Hosting", Quantity: dec("1"), UnitPrice: dec("50"), TaxRate: decPtr("0.07")},
	}
}

// sampleInvoice builds INV-1000: 350.00 + 24.50 tax = 374.50
func sampleInvoice() *billing.Invoice {
	totals, err := billing.ComputeTotals([]billing.InvoiceItemInput{
		{Description: "Consulting", Quantity: dec("2"), UnitPrice: dec("150"), TaxRate: decPtr("0.07")},
		{Description: "Hosting", Quantity: dec("1"), UnitPrice: dec("50"), TaxRate: decPtr("0.07")},
	}, dec("0.07"))
	if err != nil {
		panic(err)
	}
	inv, err := billing.NewInvoice("INV-1000", time.Now(), totals)
	if err != nil {
		panic(err)
	}
	inv.ClearDomainEvents()
	return inv
}
