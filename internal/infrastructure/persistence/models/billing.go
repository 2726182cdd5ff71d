package models

import (
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate
type InvoiceModel struct {
	AggregateModel
	InvoiceNumber     string             `gorm:"type:varchar(100);not null;uniqueIndex:idx_invoices_invoice_number"`
	InvoiceDate       time.Time          `gorm:"not null"`
	TotalAmount       decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	TotalTax          decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	OutstandingAmount decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	Status            string             `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	Items             []InvoiceItemModel `gorm:"foreignKey:InvoiceID"`
	Payments          []PaymentModel     `gorm:"foreignKey:InvoiceID"`
	Receipts          []ReceiptModel     `gorm:"foreignKey:InvoiceID"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// InvoiceItemModel is the persistence model for an invoice line
type InvoiceItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position    int             `gorm:"not null"`
	Description string          `gorm:"type:varchar(500);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TaxRate     decimal.Decimal `gorm:"type:decimal(10,4);not null"`
	TaxAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

// PaymentModel is the persistence model for a payment
type PaymentModel struct {
	BaseModel
	InvoiceID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentMethod   string          `gorm:"type:varchar(20);not null"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReferenceNumber *string         `gorm:"type:varchar(100);uniqueIndex:idx_payments_reference_number"`
	Status          string          `gorm:"type:varchar(20);not null"`
	PaymentDate     time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ReceiptModel is the persistence model for a receipt
type ReceiptModel struct {
	AggregateModel
	PaymentID        uuid.UUID          `gorm:"type:uuid;not null;index"`
	InvoiceID        uuid.UUID          `gorm:"type:uuid;not null;index"`
	ReceiptNumber    string             `gorm:"type:varchar(100);not null;uniqueIndex:idx_receipts_receipt_number"`
	Strategy         string             `gorm:"type:varchar(40);not null"`
	ReceiptDate      time.Time          `gorm:"not null"`
	TotalPaid        decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	RemainingBalance decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	Items            []ReceiptItemModel `gorm:"foreignKey:ReceiptID"`
	Payment          *PaymentModel      `gorm:"foreignKey:PaymentID"`
}

// TableName returns the table name for GORM
func (ReceiptModel) TableName() string {
	return "receipts"
}

// ReceiptItemModel is the persistence model for one allocation on a receipt
type ReceiptItemModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	ReceiptID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceItemID   *uuid.UUID      `gorm:"type:uuid;index"`
	AllocatedAmount decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (ReceiptItemModel) TableName() string {
	return "receipt_items"
}

// BillingModels lists every billing model, in dependency order, for AutoMigrate
func BillingModels() []any {
	return []any{
		&InvoiceModel{},
		&InvoiceItemModel{},
		&PaymentModel{},
		&ReceiptModel{},
		&ReceiptItemModel{},
	}
}

// =============================================================================
// Invoice mapping
// =============================================================================

// ToDomain converts the model, and whatever associations were loaded, to a domain Invoice
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	inv := &billing.Invoice{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: m.BaseModel.ToDomain(),
			Version:    m.Version,
		},
		InvoiceNumber:     m.InvoiceNumber,
		InvoiceDate:       m.InvoiceDate,
		TotalAmount:       m.TotalAmount,
		TotalTax:          m.TotalTax,
		OutstandingAmount: m.OutstandingAmount,
		Status:            billing.InvoiceStatus(m.Status),
		Items: lo.Map(m.Items, func(item InvoiceItemModel, _ int) billing.InvoiceItem {
			return item.ToDomain()
		}),
	}
	if len(m.Payments) > 0 {
		inv.Payments = lo.Map(m.Payments, func(p PaymentModel, _ int) billing.Payment {
			return *p.ToDomain()
		})
	}
	if len(m.Receipts) > 0 {
		inv.Receipts = lo.Map(m.Receipts, func(r ReceiptModel, _ int) billing.Receipt {
			return *r.ToDomain()
		})
	}
	return inv
}

// InvoiceModelFromDomain converts a domain Invoice and its lines to a persistence model
func InvoiceModelFromDomain(inv *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{
		InvoiceNumber:     inv.InvoiceNumber,
		InvoiceDate:       inv.InvoiceDate,
		TotalAmount:       inv.TotalAmount,
		TotalTax:          inv.TotalTax,
		OutstandingAmount: inv.OutstandingAmount,
		Status:            inv.Status.String(),
		Items: lo.Map(inv.Items, func(item billing.InvoiceItem, _ int) InvoiceItemModel {
			return InvoiceItemModelFromDomain(item)
		}),
	}
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	return m
}

// ToDomain converts the model to a domain InvoiceItem
func (m InvoiceItemModel) ToDomain() billing.InvoiceItem {
	return billing.InvoiceItem{
		ID:          m.ID,
		InvoiceID:   m.InvoiceID,
		Position:    m.Position,
		Description: m.Description,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		LineTotal:   m.LineTotal,
		TaxRate:     m.TaxRate,
		TaxAmount:   m.TaxAmount,
	}
}

// InvoiceItemModelFromDomain converts a domain InvoiceItem to a persistence model
func InvoiceItemModelFromDomain(item billing.InvoiceItem) InvoiceItemModel {
	return InvoiceItemModel{
		ID:          item.ID,
		InvoiceID:   item.InvoiceID,
		Position:    item.Position,
		Description: item.Description,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		LineTotal:   item.LineTotal,
		TaxRate:     item.TaxRate,
		TaxAmount:   item.TaxAmount,
	}
}

// =============================================================================
// Payment mapping
// =============================================================================

// ToDomain converts the model to a domain Payment
func (m *PaymentModel) ToDomain() *billing.Payment {
	return &billing.Payment{
		BaseEntity:      m.BaseModel.ToDomain(),
		InvoiceID:       m.InvoiceID,
		PaymentMethod:   billing.PaymentMethod(m.PaymentMethod),
		Amount:          m.Amount,
		ReferenceNumber: m.ReferenceNumber,
		Status:          billing.PaymentStatus(m.Status),
		PaymentDate:     m.PaymentDate,
	}
}

// PaymentModelFromDomain converts a domain Payment to a persistence model
func PaymentModelFromDomain(p *billing.Payment) *PaymentModel {
	m := &PaymentModel{
		InvoiceID:       p.InvoiceID,
		PaymentMethod:   p.PaymentMethod.String(),
		Amount:          p.Amount,
		ReferenceNumber: p.ReferenceNumber,
		Status:          p.Status.String(),
		PaymentDate:     p.PaymentDate,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}

// =============================================================================
// Receipt mapping
// =============================================================================

// ToDomain converts the model, its items and its payment if loaded, to a domain Receipt
func (m *ReceiptModel) ToDomain() *billing.Receipt {
	r := &billing.Receipt{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: m.BaseModel.ToDomain(),
			Version:    m.Version,
		},
		PaymentID:        m.PaymentID,
		InvoiceID:        m.InvoiceID,
		ReceiptNumber:    m.ReceiptNumber,
		Strategy:         billing.AllocationStrategy(m.Strategy),
		ReceiptDate:      m.ReceiptDate,
		TotalPaid:        m.TotalPaid,
		RemainingBalance: m.RemainingBalance,
		Items: lo.Map(m.Items, func(item ReceiptItemModel, _ int) billing.ReceiptItem {
			return billing.ReceiptItem{
				ID:              item.ID,
				ReceiptID:       item.ReceiptID,
				InvoiceItemID:   item.InvoiceItemID,
				AllocatedAmount: item.AllocatedAmount,
			}
		}),
	}
	if m.Payment != nil {
		r.Payment = m.Payment.ToDomain()
	}
	return r
}

// ReceiptModelFromDomain converts a domain Receipt and its items to a persistence model.
// The payment is referenced by ID only.
func ReceiptModelFromDomain(r *billing.Receipt) *ReceiptModel {
	m := &ReceiptModel{
		PaymentID:        r.PaymentID,
		InvoiceID:        r.InvoiceID,
		ReceiptNumber:    r.ReceiptNumber,
		Strategy:         r.Strategy.String(),
		ReceiptDate:      r.ReceiptDate,
		TotalPaid:        r.TotalPaid,
		RemainingBalance: r.RemainingBalance,
		Items: lo.Map(r.Items, func(item billing.ReceiptItem, _ int) ReceiptItemModel {
			return ReceiptItemModel{
				ID:              item.ID,
				ReceiptID:       item.ReceiptID,
				InvoiceItemID:   item.InvoiceItemID,
				AllocatedAmount: item.AllocatedAmount,
			}
		}),
	}
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	return m
}
