package event

import (
	"context"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// EventLogHandler writes one structured log line per billing event
type EventLogHandler struct {
	base *zap.Logger
}

// NewEventLogHandler creates an EventLogHandler logging under the "events" name
func NewEventLogHandler(base *zap.Logger) *EventLogHandler {
	return &EventLogHandler{base: base.Named("events")}
}

// EventTypes returns the billing event types
func (h *EventLogHandler) EventTypes() []string {
	return []string{
		billing.EventTypeInvoiceCreated,
		billing.EventTypePaymentRecorded,
		billing.EventTypeReceiptIssued,
	}
}

func (h *EventLogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_id", event.EventID().String()),
		zap.String("event_type", event.EventType()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	}
	if id := logger.GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}

	switch e := event.(type) {
	case *billing.InvoiceCreatedEvent:
		fields = append(fields,
			zap.String("invoice_number", e.InvoiceNumber),
			zap.String("total_amount", e.TotalAmount.StringFixed(2)),
			zap.String("total_tax", e.TotalTax.StringFixed(2)),
			zap.Int("item_count", e.ItemCount),
		)
	case *billing.PaymentRecordedEvent:
		fields = append(fields,
			zap.String("invoice_id", e.InvoiceID.String()),
			zap.String("amount", e.Amount.StringFixed(2)),
			zap.String("payment_method", e.PaymentMethod.String()),
			zap.String("outstanding_amount", e.OutstandingAmount.StringFixed(2)),
			zap.String("invoice_status", e.InvoiceStatus.String()),
		)
	case *billing.ReceiptIssuedEvent:
		fields = append(fields,
			zap.String("receipt_number", e.ReceiptNumber),
			zap.String("payment_id", e.PaymentID.String()),
			zap.String("strategy", e.Strategy.String()),
			zap.String("total_paid", e.TotalPaid.StringFixed(2)),
		)
	}

	h.base.Info("Billing event", fields...)
	return nil
}

var _ shared.EventHandler = (*EventLogHandler)(nil)
