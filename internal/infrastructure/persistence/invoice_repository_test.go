package persistence

import (
	"context"
	"fmt"
	"testing"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormInvoiceRepository_CreateAndFind(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	inv := newTestInvoice(t, "INV-1000")
	require.NoError(t, repo.Create(ctx, inv))

	t.Run("by id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, inv.ID)
		require.NoError(t, err)
		require.NotNil(t, found)

		assert.Equal(t, "INV-1000", found.InvoiceNumber)
		assert.Equal(t, billing.InvoiceStatusPending, found.Status)
		assert.Equal(t, "350.00", found.TotalAmount.StringFixed(2))
		assert.Equal(t, "24.50", found.TotalTax.StringFixed(2))
		assert.Equal(t, "374.50", found.OutstandingAmount.StringFixed(2))
		assert.Equal(t, 1, found.Version)

		require.Len(t, found.Items, 2)
		assert.Equal(t, "Consulting", found.Items[0].Description)
		assert.Equal(t, "300.00", found.Items[0].LineTotal.StringFixed(2))
		assert.Equal(t, "21.00", found.Items[0].TaxAmount.StringFixed(2))
		assert.Equal(t, "Hosting", found.Items[1].Description)
		assert.Equal(t, inv.Items[0].ID, found.Items[0].ID)
	})

	t.Run("by id for update", func(t *testing.T) {
		found, err := repo.FindByIDForUpdate(ctx, inv.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		require.Len(t, found.Items, 2)
		assert.Equal(t, 0, found.Items[0].Position)
		assert.Equal(t, 1, found.Items[1].Position)
	})

	t.Run("by number", func(t *testing.T) {
		found, err := repo.FindByNumber(ctx, "INV-1000")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, inv.ID, found.ID)
	})

	t.Run("missing returns nil", func(t *testing.T) {
		found, err := repo.FindByID(ctx, uuid.New())
		assert.NoError(t, err)
		assert.Nil(t, found)

		found, err = repo.FindByIDForUpdate(ctx, uuid.New())
		assert.NoError(t, err)
		assert.Nil(t, found)

		found, err = repo.FindByNumber(ctx, "INV-404")
		assert.NoError(t, err)
		assert.Nil(t, found)

		found, err = repo.FindDetail(ctx, uuid.New())
		assert.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestGormInvoiceRepository_Create_DuplicateNumber(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestInvoice(t, "INV-1000")))

	err := repo.Create(ctx, newTestInvoice(t, "INV-1000"))
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, shared.KindDuplicate, domainErr.Kind)
	assert.Equal(t, billing.CodeDuplicateInvoiceNumber, domainErr.Code)
}

func TestGormInvoiceRepository_UpdateBalance(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	inv := newTestInvoice(t, "INV-1000")
	require.NoError(t, repo.Create(ctx, inv))

	loaded, err := repo.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	require.NoError(t, loaded.ApplyPayment(dec("100")))
	require.NoError(t, repo.UpdateBalance(ctx, loaded))

	reloaded, err := repo.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "274.50", reloaded.OutstandingAmount.StringFixed(2))
	assert.Equal(t, billing.InvoiceStatusPartiallyPaid, reloaded.Status)
	assert.Equal(t, 2, reloaded.Version)

	t.Run("stale version is a conflict", func(t *testing.T) {
		require.NoError(t, inv.ApplyPayment(dec("10")))
		err := repo.UpdateBalance(ctx, inv)
		assert.ErrorIs(t, err, billing.ErrConcurrencyConflict)

		after, err := repo.FindByID(ctx, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, "274.50", after.OutstandingAmount.StringFixed(2))
	})
}

func TestGormInvoiceRepository_List(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		inv := newTestInvoice(t, fmt.Sprintf("INV-%d", 1000+i))
		if i%2 == 0 {
			require.NoError(t, inv.ApplyPayment(dec("374.50")))
		}
		require.NoError(t, repo.Create(ctx, inv))
	}

	t.Run("all", func(t *testing.T) {
		invoices, total, err := repo.List(ctx, billing.InvoiceFilter{Filter: shared.Filter{Page: 1, PageSize: 2}})
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		assert.Len(t, invoices, 2)
		for _, inv := range invoices {
			assert.Len(t, inv.Items, 2)
		}
	})

	t.Run("by status", func(t *testing.T) {
		invoices, total, err := repo.List(ctx, billing.InvoiceFilter{
			Filter: shared.Filter{Page: 1, PageSize: 20},
			Status: billing.InvoiceStatusPaid,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		for _, inv := range invoices {
			assert.Equal(t, billing.InvoiceStatusPaid, inv.Status)
		}
	})

	t.Run("past last page", func(t *testing.T) {
		invoices, total, err := repo.List(ctx, billing.InvoiceFilter{Filter: shared.Filter{Page: 9, PageSize: 2}})
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		assert.Empty(t, invoices)
	})
}

func TestGormInvoiceRepository_FindDetail(t *testing.T) {
	db := setupBillingTestDB(t)
	invoices := NewGormInvoiceRepository(db)
	payments := NewGormPaymentRepository(db)
	receipts := NewGormReceiptRepository(db)
	ctx := context.Background()

	inv := newTestInvoice(t, "INV-1000")
	require.NoError(t, invoices.Create(ctx, inv))

	payment, err := billing.NewPayment(inv.ID, billing.PaymentMethodCash, dec("100"), "REF-1")
	require.NoError(t, err)
	require.NoError(t, payments.Create(ctx, payment))

	receipt, _ := billing.IssuePaymentReceipt(inv, payment)
	require.NoError(t, receipts.Create(ctx, receipt))

	detail, err := invoices.FindDetail(ctx, inv.ID)
	require.NoError(t, err)
	require.NotNil(t, detail)

	assert.Len(t, detail.Items, 2)
	require.Len(t, detail.Payments, 1)
	assert.Equal(t, payment.ID, detail.Payments[0].ID)
	assert.Equal(t, "REF-1", detail.Payments[0].Reference())
	require.Len(t, detail.Receipts, 1)
	assert.Equal(t, receipt.ReceiptNumber, detail.Receipts[0].ReceiptNumber)
	assert.Len(t, detail.Receipts[0].Items, 2)
}
