package persistence

import (
	"context"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/infrastructure/persistence/models"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInvoiceRepository implements billing.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// FindByID finds an invoice with its lines
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find invoice")
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate loads the invoice row with SELECT ... FOR UPDATE so the balance
// cannot change until the surrounding transaction ends. Must run inside a transaction.
func (r *GormInvoiceRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	db := r.db.WithContext(ctx)
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "lock invoice")
	}
	if err := orderedItems(db).Where("invoice_id = ?", id).Find(&model.Items).Error; err != nil {
		return nil, errors.Wrap(err, "load invoice items")
	}
	return model.ToDomain(), nil
}

// FindDetail loads the invoice with lines, payments and receipts (with their items)
func (r *GormInvoiceRepository) FindDetail(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Receipts", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Receipts.Items", orderedReceiptItems).
		First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find invoice detail")
	}
	return model.ToDomain(), nil
}

// FindByNumber finds an invoice by its number
func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, invoiceNumber string) (*billing.Invoice, error) {
	var model models.InvoiceModel
	err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		Where("invoice_number = ?", invoiceNumber).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find invoice by number")
	}
	return model.ToDomain(), nil
}

// List returns one page of invoices, newest first, and the total match count
func (r *GormInvoiceRepository) List(ctx context.Context, filter billing.InvoiceFilter) ([]billing.Invoice, int64, error) {
	filter.Filter = filter.Normalize()

	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status.String())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count invoices")
	}

	var rows []models.InvoiceModel
	err := query.
		Preload("Items", orderedItems).
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&rows).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "list invoices")
	}

	invoices := make([]billing.Invoice, 0, len(rows))
	for i := range rows {
		invoices = append(invoices, *rows[i].ToDomain())
	}
	return invoices, total, nil
}

// Create inserts the invoice and its lines. A taken invoice number is
// reported as a duplicate domain error.
func (r *GormInvoiceRepository) Create(ctx context.Context, invoice *billing.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return billing.NewDuplicateInvoiceNumberError(invoice.InvoiceNumber)
		}
		return errors.Wrap(err, "create invoice")
	}
	return nil
}

// UpdateBalance writes the outstanding amount, status and version after a payment.
// The row must still be at the previous version.
func (r *GormInvoiceRepository) UpdateBalance(ctx context.Context, invoice *billing.Invoice) error {
	result := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("id = ? AND version = ?", invoice.ID, invoice.Version-1).
		Updates(map[string]any{
			"outstanding_amount": invoice.OutstandingAmount,
			"status":             invoice.Status.String(),
			"version":            invoice.Version,
			"updated_at":         invoice.UpdatedAt,
		})
	if result.Error != nil {
		return errors.Wrap(result.Error, "update invoice balance")
	}
	if result.RowsAffected == 0 {
		return billing.ErrConcurrencyConflict
	}
	return nil
}

var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)
