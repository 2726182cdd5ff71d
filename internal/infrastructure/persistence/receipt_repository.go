package persistence

import (
	"context"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/infrastructure/persistence/models"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormReceiptRepository implements billing.ReceiptRepository using GORM
type GormReceiptRepository struct {
	db *gorm.DB
}

// NewGormReceiptRepository creates a new GormReceiptRepository
func NewGormReceiptRepository(db *gorm.DB) *GormReceiptRepository {
	return &GormReceiptRepository{db: db}
}

// orderedReceiptItems returns receipt items in the order of the invoice lines they cover
func orderedReceiptItems(db *gorm.DB) *gorm.DB {
	return db.Select("receipt_items.*").
		Joins("LEFT JOIN invoice_items ON invoice_items.id = receipt_items.invoice_item_id").
		Order("invoice_items.position ASC")
}

// FindByID finds a receipt with its items and payment
func (r *GormReceiptRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Receipt, error) {
	var model models.ReceiptModel
	err := r.db.WithContext(ctx).
		Preload("Items", orderedReceiptItems).
		Preload("Payment").
		First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find receipt")
	}
	return model.ToDomain(), nil
}

// Create inserts the receipt and its items
func (r *GormReceiptRepository) Create(ctx context.Context, receipt *billing.Receipt) error {
	if err := r.db.WithContext(ctx).Create(models.ReceiptModelFromDomain(receipt)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return billing.ErrDuplicateReceipt
		}
		return errors.Wrap(err, "create receipt")
	}
	return nil
}

var _ billing.ReceiptRepository = (*GormReceiptRepository)(nil)
