package billing

import (
	"context"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReceiptService generates and reads receipts
type ReceiptService struct {
	receiptRepo billing.ReceiptRepository
	txScope     TransactionScope
	collaborators
}

// NewReceiptService creates a new ReceiptService
func NewReceiptService(
	receiptRepo billing.ReceiptRepository,
	txScope TransactionScope,
	opts ...Option,
) *ReceiptService {
	return &ReceiptService{
		receiptRepo:   receiptRepo,
		txScope:       txScope,
		collaborators: newCollaborators("receipt_service", opts),
	}
}

// GenerateReceipt issues a new receipt for an existing payment, splitting the paid
// amount across the invoice lines by their tax-inclusive totals. Each call stores
// a new receipt; earlier receipts for the payment are left as they are.
func (s *ReceiptService) GenerateReceipt(ctx context.Context, paymentID uuid.UUID) (*GenerateReceiptResult, error) {
	var (
		receipt     *billing.Receipt
		allocations []billing.Allocation
	)

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		payment, err := repos.PaymentRepo().FindByID(ctx, paymentID)
		if err != nil {
			return wrapInfra(err, "find payment")
		}
		if payment == nil {
			return billing.ErrPaymentNotFound
		}

		invoice, err := repos.InvoiceRepo().FindByID(ctx, payment.InvoiceID)
		if err != nil {
			return wrapInfra(err, "find invoice")
		}
		if invoice == nil {
			return billing.ErrInvoiceNotFound
		}

		r, allocs := billing.GenerateReceipt(invoice, payment)
		if !r.AllocatedTotal().Equal(r.TotalPaid) {
			return errors.AssertionFailedf("receipt allocations sum to %s, expected %s",
				r.AllocatedTotal().StringFixed(2), r.TotalPaid.StringFixed(2))
		}
		if err := repos.ReceiptRepo().Create(ctx, r); err != nil {
			return wrapInfra(err, "create receipt")
		}
		r.Payment = payment
		receipt, allocations = r, allocs
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Receipt generated",
		zap.String("receipt_id", receipt.ID.String()),
		zap.String("receipt_number", receipt.ReceiptNumber),
		zap.String("payment_id", paymentID.String()),
		zap.Int("allocations", len(allocations)),
	)
	s.metrics.RecordReceiptIssued(ctx, receipt.Strategy.String())
	s.publish(ctx, receipt)

	return &GenerateReceiptResult{
		Receipt:     toReceiptResponse(receipt),
		Allocations: toAllocationResponses(allocations),
	}, nil
}

// GetReceipt returns the receipt with its items and payment
func (s *ReceiptService) GetReceipt(ctx context.Context, id uuid.UUID) (*ReceiptResponse, error) {
	receipt, err := s.receiptRepo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapInfra(err, "find receipt")
	}
	if receipt == nil {
		return nil, billing.ErrReceiptNotFound
	}
	resp := toReceiptResponse(receipt)
	return &resp, nil
}
