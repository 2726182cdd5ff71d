package billing

import (
	"context"
	"strings"
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// InvoiceService creates and reads invoices
type InvoiceService struct {
	invoiceRepo billing.InvoiceRepository
	txScope     TransactionScope
	settings    Settings
	collaborators
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo billing.InvoiceRepository,
	txScope TransactionScope,
	settings Settings,
	opts ...Option,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:   invoiceRepo,
		txScope:       txScope,
		settings:      settings,
		collaborators: newCollaborators("invoice_service", opts),
	}
}

// CreateInvoice validates the lines, computes totals and stores a pending invoice
func (s *InvoiceService) CreateInvoice(ctx context.Context, cmd CreateInvoiceCommand) (*InvoiceResponse, error) {
	number := strings.TrimSpace(cmd.InvoiceNumber)
	if number == "" {
		return nil, billing.ErrInvoiceNumberRequired
	}

	inputs := lo.Map(cmd.Items, func(item CreateInvoiceItem, _ int) billing.InvoiceItemInput {
		return billing.InvoiceItemInput{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TaxRate:     item.TaxRate,
		}
	})
	totals, err := billing.ComputeTotals(inputs, s.settings.DefaultTaxRate)
	if err != nil {
		return nil, err
	}

	invoiceDate := time.Now()
	if cmd.InvoiceDate != nil && !cmd.InvoiceDate.IsZero() {
		invoiceDate = *cmd.InvoiceDate
	}

	invoice, err := billing.NewInvoice(number, invoiceDate, totals)
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		return wrapInfra(repos.InvoiceRepo().Create(ctx, invoice), "create invoice")
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Invoice created",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("grand_total", invoice.GrandTotal().StringFixed(2)),
	)
	s.metrics.RecordInvoiceCreated(ctx, invoice.GrandTotal())
	s.publish(ctx, invoice)

	resp := toInvoiceResponse(invoice)
	return &resp, nil
}

// GetInvoice returns the invoice with its items, payments and receipts
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindDetail(ctx, id)
	if err != nil {
		return nil, wrapInfra(err, "find invoice")
	}
	if invoice == nil {
		return nil, billing.ErrInvoiceNotFound
	}
	resp := toInvoiceResponse(invoice)
	return &resp, nil
}

// ListInvoices returns a page of invoices, newest first
func (s *InvoiceService) ListInvoices(ctx context.Context, filter InvoiceListFilter) (*shared.Paginated[InvoiceResponse], error) {
	domainFilter := billing.InvoiceFilter{
		Filter: shared.Filter{Page: filter.Page, PageSize: filter.PageSize}.Normalize(),
	}
	if filter.Status != "" {
		status := billing.InvoiceStatus(strings.ToUpper(filter.Status))
		if !status.IsValid() {
			return nil, shared.NewValidationError("INVALID_STATUS", "Unknown invoice status: "+filter.Status)
		}
		domainFilter.Status = status
	}

	invoices, total, err := s.invoiceRepo.List(ctx, domainFilter)
	if err != nil {
		return nil, wrapInfra(err, "list invoices")
	}

	items := lo.Map(invoices, func(inv billing.Invoice, _ int) InvoiceResponse {
		return toInvoiceResponse(&inv)
	})
	page := shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}
