package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type invoiceServiceFixture struct {
	invoiceRepo *MockInvoiceRepository
	publisher   *MockEventPublisher
	metrics     *recordingMetrics
	service     *InvoiceService
}

func newInvoiceServiceFixture() *invoiceServiceFixture {
	invoiceRepo := new(MockInvoiceRepository)
	publisher := new(MockEventPublisher)
	metrics := newRecordingMetrics()
	txScope := NewNoOpTransactionScope(invoiceRepo, new(MockPaymentRepository), new(MockReceiptRepository))

	return &invoiceServiceFixture{
		invoiceRepo: invoiceRepo,
		publisher:   publisher,
		metrics:     metrics,
		service: NewInvoiceService(invoiceRepo, txScope, Settings{DefaultTaxRate: dec("0.07")},
			WithEventPublisher(publisher), WithMetrics(metrics)),
	}
}

func TestInvoiceService_CreateInvoice(t *testing.T) {
	ctx := context.Background()

	t.Run("computes totals and stores the invoice", func(t *testing.T) {
		f := newInvoiceServiceFixture()
		f.invoiceRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		resp, err := f.service.CreateInvoice(ctx, CreateInvoiceCommand{
			InvoiceNumber: "INV-1000",
			InvoiceDate:   &date,
			Items:         sampleItemsCommand(),
		})
		require.NoError(t, err)

		assert.Equal(t, "INV-1000", resp.InvoiceNumber)
		assert.Equal(t, date, resp.InvoiceDate)
		assert.Equal(t, "350.00", resp.TotalAmount.StringFixed(2))
		assert.Equal(t, "24.50", resp.TotalTax.StringFixed(2))
		assert.Equal(t, "374.50", resp.GrandTotal.StringFixed(2))
		assert.Equal(t, "374.50", resp.OutstandingAmount.StringFixed(2))
		assert.Equal(t, string(billing.InvoiceStatusPending), resp.Status)
		assert.Len(t, resp.Items, 2)

		assert.Equal(t, 1, f.metrics.invoices)
		f.invoiceRepo.AssertExpectations(t)
		f.publisher.AssertNumberOfCalls(t, "Publish", 1)
	})

	t.Run("applies default tax rate and date", func(t *testing.T) {
		f := newInvoiceServiceFixture()
		f.invoiceRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		before := time.Now()
		resp, err := f.service.CreateInvoice(ctx, CreateInvoiceCommand{
			InvoiceNumber: "INV-1001",
			Items: []CreateInvoiceItem{
				{Description: "Support", Quantity: dec("1"), UnitPrice: dec("100")},
			},
		})
		require.NoError(t, err)
		assert.True(t, resp.Items[0].TaxRate.Equal(dec("0.07")))
		assert.Equal(t, "7.00", resp.TotalTax.StringFixed(2))
		assert.False(t, resp.InvoiceDate.Before(before))
	})

	t.Run("requires invoice number", func(t *testing.T) {
		f := newInvoiceServiceFixture()

		_, err := f.service.CreateInvoice(ctx, CreateInvoiceCommand{Items: sampleItemsCommand()})
		assert.ErrorIs(t, err, billing.ErrInvoiceNumberRequired)
		f.invoiceRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("requires items", func(t *testing.T) {
		f := newInvoiceServiceFixture()

		_, err := f.service.CreateInvoice(ctx, CreateInvoiceCommand{InvoiceNumber: "INV-1"})
		assert.ErrorIs(t, err, billing.ErrItemsRequired)
	})

	t.Run("invalid item", func(t *testing.T) {
		f := newInvoiceServiceFixture()

		_, err := f.service.CreateInvoice(ctx, CreateInvoiceCommand{
			InvoiceNumber: "INV-1",
			Items:         []CreateInvoiceItem{{Description: "x", Quantity: dec("0"), UnitPrice: dec("1")}},
		})
		require.Error(t, err)
		assert.True(t, shared.IsKind(err, shared.KindValidation))
		assert.Equal(t, "Item #1 quantity must be greater than 0", err.Error())
	})

	t.Run("duplicate invoice number", func(t *testing.T) {
		f := newInvoiceServiceFixture()
		f.invoiceRepo.On("Create", mock.Anything, mock.Anything).
			Return(billing.NewDuplicateInvoiceNumberError("INV-1000"))

		_, err := f.service.CreateInvoice(ctx, CreateInvoiceCommand{
			InvoiceNumber: "INV-1000",
			Items:         sampleItemsCommand(),
		})
		require.Error(t, err)
		domainErr, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, shared.KindDuplicate, domainErr.Kind)
		assert.Equal(t, `Invoice number "INV-1000" already exists`, domainErr.Message)
		assert.Equal(t, 0, f.metrics.invoices)
		f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("infrastructure error is wrapped", func(t *testing.T) {
		f := newInvoiceServiceFixture()
		f.invoiceRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

		_, err := f.service.CreateInvoice(ctx, CreateInvoiceCommand{
			InvoiceNumber: "INV-1000",
			Items:         sampleItemsCommand(),
		})
		require.Error(t, err)
		_, isDomain := shared.AsDomainError(err)
		assert.False(t, isDomain)
		assert.Contains(t, err.Error(), "create invoice")
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestInvoiceService_GetInvoice(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		f := newInvoiceServiceFixture()
		inv := sampleInvoice()
		payment, err := billing.NewPayment(inv.ID, billing.PaymentMethodCash, dec("100"), "")
		require.NoError(t, err)
		inv.Payments = []billing.Payment{*payment}
		f.invoiceRepo.On("FindDetail", ctx, inv.ID).Return(inv, nil)

		resp, err := f.service.GetInvoice(ctx, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, inv.ID, resp.ID)
		require.Len(t, resp.Payments, 1)
		assert.Equal(t, payment.ID, resp.Payments[0].ID)
		assert.Empty(t, resp.Receipts)
	})

	t.Run("not found", func(t *testing.T) {
		f := newInvoiceServiceFixture()
		id := uuid.New()
		f.invoiceRepo.On("FindDetail", ctx, id).Return(nil, nil)

		_, err := f.service.GetInvoice(ctx, id)
		assert.ErrorIs(t, err, billing.ErrInvoiceNotFound)
		assert.True(t, shared.IsKind(err, shared.KindNotFound))
	})
}

func TestInvoiceService_ListInvoices(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes paging and filters by status", func(t *testing.T) {
		f := newInvoiceServiceFixture()
		inv := sampleInvoice()
		f.invoiceRepo.On("List", ctx, mock.MatchedBy(func(filter billing.InvoiceFilter) bool {
			return filter.Page == 1 && filter.PageSize == shared.MaxPageSize &&
				filter.Status == billing.InvoiceStatusPending
		})).Return([]billing.Invoice{*inv}, int64(1), nil)

		page, err := f.service.ListInvoices(ctx, InvoiceListFilter{Status: "pending", PageSize: 1000})
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "INV-1000", page.Items[0].InvoiceNumber)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		f := newInvoiceServiceFixture()

		_, err := f.service.ListInvoices(ctx, InvoiceListFilter{Status: "void"})
		assert.True(t, shared.IsKind(err, shared.KindValidation))
	})
}
