package billing

import (
	"context"

	"github.com/shopspring/decimal"
)

// Settings carries the billing configuration the services need
type Settings struct {
	// DefaultTaxRate applies to invoice lines without an explicit rate
	DefaultTaxRate decimal.Decimal
}

// PaymentOutcome labels a payment attempt for metrics
type PaymentOutcome string

const (
	PaymentOutcomeAccepted PaymentOutcome = "accepted"
	PaymentOutcomeRejected PaymentOutcome = "rejected"
)

// Metrics records business counters. Implemented by telemetry.BillingMetrics.
type Metrics interface {
	RecordInvoiceCreated(ctx context.Context, grandTotal decimal.Decimal)
	RecordPayment(ctx context.Context, method string, outcome PaymentOutcome, amount decimal.Decimal)
	RecordReceiptIssued(ctx context.Context, strategy string)
}

// NoopMetrics discards everything
type NoopMetrics struct{}

func (NoopMetrics) RecordInvoiceCreated(context.Context, decimal.Decimal)                 {}
func (NoopMetrics) RecordPayment(context.Context, string, PaymentOutcome, decimal.Decimal) {}
func (NoopMetrics) RecordReceiptIssued(context.Context, string)                            {}
