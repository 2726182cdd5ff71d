package persistence

import (
	"testing"
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupBillingTestDB creates an in-memory SQLite database with the billing tables
func setupBillingTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open(sqlite.Open(":memory:"), nil, gormlogger.Silent)
	require.NoError(t, err)

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.DB.AutoMigrate(models.BillingModels()...))
	return db.DB
}

// newTestInvoice builds the two-line invoice used across these tests:
// Consulting 2 x 150 and Hosting 1 x 50 at 7%, grand total 374.50
func newTestInvoice(t *testing.T, number string) *billing.Invoice {
	t.Helper()
	rate := decimal.RequireFromString("0.07")
	totals, err := billing.ComputeTotals([]billing.InvoiceItemInput{
		{Description: "Consulting", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(150)},
		{Description: "Hosting", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(50)},
	}, rate)
	require.NoError(t, err)

	inv, err := billing.NewInvoice(number, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), totals)
	require.NoError(t, err)
	return inv
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
