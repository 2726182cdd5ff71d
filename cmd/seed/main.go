// Command seed inserts sample billing data into the configured database.
package main

import (
	"context"
	"os"

	appbilling "github.com/billing/backend/internal/application/billing"
	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/infrastructure/config"
	"github.com/billing/backend/internal/infrastructure/logger"
	"github.com/billing/backend/internal/infrastructure/persistence"
	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

var rootCmd = &cobra.Command{
	Use:          "seed",
	Short:        "Insert the sample invoice INV-1000",
	Long:         "Inserts the sample invoice INV-1000 unless an invoice with that number already exists.",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runSeed,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "load configuration")
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		return errors.Wrap(err, "initialize logger")
	}
	defer func() {
		_ = log.Sync()
	}()

	db, err := persistence.NewDatabase(&cfg.Database, log, gormlogger.Warn)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := persistence.NewGormInvoiceRepository(db.DB)
	svc := appbilling.NewInvoiceService(repo, persistence.NewGormTransactionScope(db.DB),
		appbilling.Settings{DefaultTaxRate: cfg.Billing.DefaultTaxRate},
		appbilling.WithLogger(log),
	)
	return seedInvoices(cmd.Context(), repo, svc, log)
}

// sampleInvoice totals 350.00 net, 24.50 tax, 374.50 gross
func sampleInvoice() appbilling.CreateInvoiceCommand {
	rate := decimal.RequireFromString("0.07")
	return appbilling.CreateInvoiceCommand{
		InvoiceNumber: "INV-1000",
		Items: []appbilling.CreateInvoiceItem{
			{Description: "Consulting", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(150), TaxRate: &rate},
			{Description: "Hosting", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(50), TaxRate: &rate},
		},
	}
}

// seedInvoices creates the sample invoice. An existing invoice with the same
// number is left untouched.
func seedInvoices(ctx context.Context, repo billing.InvoiceRepository, svc *appbilling.InvoiceService, log *zap.Logger) error {
	cmd := sampleInvoice()

	existing, err := repo.FindByNumber(ctx, cmd.InvoiceNumber)
	if err != nil {
		return err
	}
	if existing != nil {
		log.Info("Sample invoice already present", zap.String("invoice_number", cmd.InvoiceNumber))
		return nil
	}

	inv, err := svc.CreateInvoice(ctx, cmd)
	if err != nil {
		if shared.IsKind(err, shared.KindDuplicate) {
			return nil
		}
		return errors.Wrap(err, "create sample invoice")
	}
	log.Info("Seed completed",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("grand_total", inv.GrandTotal.StringFixed(2)),
	)
	return nil
}
