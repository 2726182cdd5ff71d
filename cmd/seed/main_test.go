package main

import (
	"context"
	"testing"

	appbilling "github.com/billing/backend/internal/application/billing"
	"github.com/billing/backend/internal/infrastructure/persistence"
	"github.com/billing/backend/internal/infrastructure/persistence/models"
	"github.com/billing/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSeedInvoices(t *testing.T) {
	db := testutil.NewSQLiteDB(t)

	repo := persistence.NewGormInvoiceRepository(db.DB)
	svc := appbilling.NewInvoiceService(repo, persistence.NewGormTransactionScope(db.DB),
		appbilling.Settings{DefaultTaxRate: decimal.RequireFromString("0.07")})
	ctx := context.Background()

	require.NoError(t, seedInvoices(ctx, repo, svc, zap.NewNop()))

	inv, err := repo.FindByNumber(ctx, "INV-1000")
	require.NoError(t, err)
	require.NotNil(t, inv)
	assert.Equal(t, "350.00", inv.TotalAmount.StringFixed(2))
	assert.Equal(t, "24.50", inv.TotalTax.StringFixed(2))
	assert.Equal(t, "374.50", inv.GrandTotal().StringFixed(2))
	assert.Len(t, inv.Items, 2)

	// second run is a no-op
	require.NoError(t, seedInvoices(ctx, repo, svc, zap.NewNop()))
	var count int64
	require.NoError(t, db.DB.Model(&models.InvoiceModel{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
