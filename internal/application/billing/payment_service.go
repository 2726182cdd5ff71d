package billing

import (
	"context"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentService records payments against invoices
type PaymentService struct {
	paymentRepo billing.PaymentRepository
	txScope     TransactionScope
	collaborators
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	paymentRepo billing.PaymentRepository,
	txScope TransactionScope,
	opts ...Option,
) *PaymentService {
	return &PaymentService{
		paymentRepo:   paymentRepo,
		txScope:       txScope,
		collaborators: newCollaborators("payment_service", opts),
	}
}

// ProcessPayment validates the payment, applies it to the invoice and issues the
// accompanying receipt, all in one transaction.
//
// Checks run in this order: payment method, amount, invoice exists, invoice not
// settled, no overpayment, reference not taken. The invoice row stays locked from
// the balance read until commit, so concurrent payments cannot overdraw it.
func (s *PaymentService) ProcessPayment(ctx context.Context, cmd ProcessPaymentCommand) (*ProcessPaymentResult, error) {
	method, err := billing.ValidatePaymentRequest(cmd.PaymentMethod, cmd.Amount)
	if err != nil {
		s.metrics.RecordPayment(ctx, cmd.PaymentMethod, PaymentOutcomeRejected, cmd.Amount)
		return nil, err
	}

	var (
		invoice *billing.Invoice
		payment *billing.Payment
		receipt *billing.Receipt
	)

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		inv, err := repos.InvoiceRepo().FindByIDForUpdate(ctx, cmd.InvoiceID)
		if err != nil {
			return wrapInfra(err, "lock invoice")
		}
		if inv == nil {
			return billing.ErrInvoiceNotFound
		}

		p, err := billing.NewPayment(inv.ID, method, cmd.Amount, cmd.ReferenceNumber)
		if err != nil {
			return err
		}
		if err := inv.ApplyPayment(p.Amount); err != nil {
			return err
		}
		if err := repos.PaymentRepo().Create(ctx, p); err != nil {
			return wrapInfra(err, "create payment")
		}

		r, _ := billing.IssuePaymentReceipt(inv, p)
		if err := repos.ReceiptRepo().Create(ctx, r); err != nil {
			return wrapInfra(err, "create receipt")
		}
		if err := repos.InvoiceRepo().UpdateBalance(ctx, inv); err != nil {
			return wrapInfra(err, "update invoice balance")
		}

		inv.AddDomainEvent(billing.NewPaymentRecordedEvent(p, inv))
		invoice, payment, receipt = inv, p, r
		return nil
	})
	if err != nil {
		s.metrics.RecordPayment(ctx, method.String(), PaymentOutcomeRejected, cmd.Amount)
		s.logger.Debug("Payment rejected",
			zap.String("invoice_id", cmd.InvoiceID.String()),
			zap.String("amount", cmd.Amount.String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("Payment recorded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("amount", payment.Amount.String()),
		zap.String("outstanding", invoice.OutstandingAmount.StringFixed(2)),
		zap.String("status", invoice.Status.String()),
	)
	s.metrics.RecordPayment(ctx, method.String(), PaymentOutcomeAccepted, payment.Amount)
	s.metrics.RecordReceiptIssued(ctx, receipt.Strategy.String())
	s.publish(ctx, invoice, receipt)

	return &ProcessPaymentResult{
		Payment:     toPaymentResponse(payment),
		Receipt:     toReceiptResponse(receipt),
		Invoice:     toInvoiceResponse(invoice),
		Overpayment: decimal.Zero,
	}, nil
}

// GetPayment returns a payment by ID
func (s *PaymentService) GetPayment(ctx context.Context, id uuid.UUID) (*PaymentResponse, error) {
	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapInfra(err, "find payment")
	}
	if payment == nil {
		return nil, billing.ErrPaymentNotFound
	}
	resp := toPaymentResponse(payment)
	return &resp, nil
}
