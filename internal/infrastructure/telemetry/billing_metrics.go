package telemetry

import (
	"context"

	appbilling "github.com/billing/backend/internal/application/billing"
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric names
const (
	MetricInvoiceCreated = "billing_invoice_created_total"
	MetricInvoiceAmount  = "billing_invoice_amount_cents_total"
	MetricPaymentTotal   = "billing_payment_total"
	MetricPaymentAmount  = "billing_payment_amount_cents_total"
	MetricReceiptIssued  = "billing_receipt_issued_total"
)

// BillingMetrics records billing activity as OpenTelemetry counters.
// Amounts are counted in cents.
type BillingMetrics struct {
	invoiceCreated metric.Int64Counter
	invoiceAmount  metric.Int64Counter
	paymentTotal   metric.Int64Counter
	paymentAmount  metric.Int64Counter
	receiptIssued  metric.Int64Counter
}

// NewBillingMetrics registers the billing instruments on meter
func NewBillingMetrics(meter metric.Meter) (*BillingMetrics, error) {
	if meter == nil {
		return nil, errors.New("telemetry: meter is nil")
	}

	bm := &BillingMetrics{}
	instruments := []struct {
		target      *metric.Int64Counter
		name        string
		description string
		unit        string
	}{
		{&bm.invoiceCreated, MetricInvoiceCreated, "Invoices created", "{invoices}"},
		{&bm.invoiceAmount, MetricInvoiceAmount, "Grand total of created invoices", "{cents}"},
		{&bm.paymentTotal, MetricPaymentTotal, "Payment attempts by method and outcome", "{payments}"},
		{&bm.paymentAmount, MetricPaymentAmount, "Accepted payment amounts", "{cents}"},
		{&bm.receiptIssued, MetricReceiptIssued, "Receipts issued by allocation strategy", "{receipts}"},
	}
	for _, inst := range instruments {
		c, err := meter.Int64Counter(inst.name,
			metric.WithDescription(inst.description),
			metric.WithUnit(inst.unit),
		)
		if err != nil {
			return nil, errors.Wrapf(err, "create counter %s", inst.name)
		}
		*inst.target = c
	}
	return bm, nil
}

func (m *BillingMetrics) RecordInvoiceCreated(ctx context.Context, grandTotal decimal.Decimal) {
	m.invoiceCreated.Add(ctx, 1)
	m.invoiceAmount.Add(ctx, valueobject.Cents(grandTotal))
}

func (m *BillingMetrics) RecordPayment(ctx context.Context, method string, outcome appbilling.PaymentOutcome, amount decimal.Decimal) {
	attrs := metric.WithAttributes(
		attribute.String("payment_method", method),
		attribute.String("outcome", string(outcome)),
	)
	m.paymentTotal.Add(ctx, 1, attrs)
	if outcome == appbilling.PaymentOutcomeAccepted {
		m.paymentAmount.Add(ctx, valueobject.Cents(amount),
			metric.WithAttributes(attribute.String("payment_method", method)))
	}
}

func (m *BillingMetrics) RecordReceiptIssued(ctx context.Context, strategy string) {
	m.receiptIssued.Add(ctx, 1, metric.WithAttributes(attribute.String("strategy", strategy)))
}

var _ appbilling.Metrics = (*BillingMetrics)(nil)
