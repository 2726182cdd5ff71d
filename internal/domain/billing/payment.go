package billing

import (
	"strings"
	"time"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents the method of payment
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCard         PaymentMethod = "CARD"
)

// PaymentMethods lists the accepted methods
var PaymentMethods = []PaymentMethod{PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCard}

// legacy spellings still sent by older clients
var legacyPaymentMethods = map[string]PaymentMethod{
	"Cash":         PaymentMethodCash,
	"BankTransfer": PaymentMethodBankTransfer,
	"Card":         PaymentMethodCard,
}

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	return lo.Contains(PaymentMethods, m)
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// ParsePaymentMethod accepts the canonical names and the legacy CamelCase ones
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	s = strings.TrimSpace(s)
	if m, ok := legacyPaymentMethods[s]; ok {
		return m, nil
	}
	m := PaymentMethod(s)
	if !m.IsValid() {
		return "", NewInvalidPaymentMethodError(s)
	}
	return m, nil
}

// PaymentStatus represents the status of a payment
type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
)

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// AggregateTypePayment is the aggregate type name used in events
const AggregateTypePayment = "Payment"

// Payment records money received against an invoice. Immutable after creation.
type Payment struct {
	shared.BaseEntity
	InvoiceID       uuid.UUID       `json:"invoice_id"`
	PaymentMethod   PaymentMethod   `json:"payment_method"`
	Amount          decimal.Decimal `json:"amount"`
	ReferenceNumber *string         `json:"reference_number,omitempty"`
	Status          PaymentStatus   `json:"status"`
	PaymentDate     time.Time       `json:"payment_date"`
}

// ValidatePaymentRequest runs the checks that do not need the invoice: method first, then amount
func ValidatePaymentRequest(method string, amount decimal.Decimal) (PaymentMethod, error) {
	m, err := ParsePaymentMethod(method)
	if err != nil {
		return "", err
	}
	if err := validateAmount(amount); err != nil {
		return "", err
	}
	return m, nil
}

// validateAmount requires a positive amount in whole cents
func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !amount.Equal(valueobject.Round2(amount)) {
		return ErrSubCentAmount
	}
	return nil
}

// NewPayment creates a completed payment. An empty reference is stored as none.
func NewPayment(invoiceID uuid.UUID, method PaymentMethod, amount decimal.Decimal, reference string) (*Payment, error) {
	if !method.IsValid() {
		return nil, NewInvalidPaymentMethodError(method.String())
	}
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	var ref *string
	if r := strings.TrimSpace(reference); r != "" {
		ref = lo.ToPtr(r)
	}

	base := shared.NewBaseEntity()
	return &Payment{
		BaseEntity:      base,
		InvoiceID:       invoiceID,
		PaymentMethod:   method,
		Amount:          amount,
		ReferenceNumber: ref,
		Status:          PaymentStatusCompleted,
		PaymentDate:     base.CreatedAt,
	}, nil
}

// Reference returns the reference number or an empty string
func (p *Payment) Reference() string {
	return lo.FromPtr(p.ReferenceNumber)
}
