package billing

import (
	"fmt"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Error codes raised by the billing domain
const (
	CodeInvoiceNumberRequired  = "INVOICE_NUMBER_REQUIRED"
	CodeItemsRequired          = "ITEMS_REQUIRED"
	CodeInvalidItem            = "INVALID_ITEM"
	CodeDuplicateInvoiceNumber = "DUPLICATE_INVOICE_NUMBER"
	CodeInvoiceNotFound        = "INVOICE_NOT_FOUND"
	CodePaymentNotFound        = "PAYMENT_NOT_FOUND"
	CodeReceiptNotFound        = "RECEIPT_NOT_FOUND"
	CodeInvalidPaymentMethod   = "INVALID_PAYMENT_METHOD"
	CodeInvalidAmount          = "INVALID_AMOUNT"
	CodeAlreadySettled         = "ALREADY_SETTLED"
	CodeOverpaymentRejected    = "OVERPAYMENT_REJECTED"
	CodeDuplicateReference     = "DUPLICATE_REFERENCE"
	CodeDuplicateReceiptNumber = "DUPLICATE_RECEIPT_NUMBER"
	CodeConcurrencyConflict    = "CONCURRENCY_CONFLICT"
)

var (
	ErrInvoiceNumberRequired = shared.NewValidationError(CodeInvoiceNumberRequired, "Invoice number is required")
	ErrItemsRequired         = shared.NewValidationError(CodeItemsRequired, "At least one invoice item is required")
	ErrInvoiceNotFound       = shared.NewNotFoundError(CodeInvoiceNotFound, "Invoice not found")
	ErrPaymentNotFound       = shared.NewNotFoundError(CodePaymentNotFound, "Payment not found")
	ErrReceiptNotFound       = shared.NewNotFoundError(CodeReceiptNotFound, "Receipt not found")
	ErrInvalidAmount         = shared.NewBusinessRuleError(CodeInvalidAmount, "Payment amount must be greater than 0")
	ErrSubCentAmount         = shared.NewBusinessRuleError(CodeInvalidAmount, "Payment amount must not have more than 2 decimal places")
	ErrAlreadySettled        = shared.NewBusinessRuleError(CodeAlreadySettled, "Cannot pay an invoice with zero outstanding amount")
	ErrDuplicateReceipt      = shared.NewDuplicateError(CodeDuplicateReceiptNumber, "Receipt number already exists")
	ErrConcurrencyConflict   = shared.NewBusinessRuleError(CodeConcurrencyConflict, "Invoice was modified by another transaction")
)

// NewInvalidItemError reports a bad field on the item at zero-based index i
func NewInvalidItemError(i int, field, message string) *shared.DomainError {
	return shared.NewValidationError(CodeInvalidItem, fmt.Sprintf("Item #%d %s", i+1, message)).
		WithDetail("index", i).
		WithDetail("field", fmt.Sprintf("items[%d].%s", i, field))
}

// NewDuplicateInvoiceNumberError reports an invoice number that is already taken
func NewDuplicateInvoiceNumberError(number string) *shared.DomainError {
	return shared.NewDuplicateError(CodeDuplicateInvoiceNumber, fmt.Sprintf("Invoice number %q already exists", number)).
		WithDetail("invoice_number", number)
}

// NewDuplicateReferenceError reports a payment reference that is already taken
func NewDuplicateReferenceError(reference string) *shared.DomainError {
	return shared.NewDuplicateError(CodeDuplicateReference, fmt.Sprintf("Payment reference %q already exists", reference)).
		WithDetail("reference_number", reference)
}

// NewInvalidPaymentMethodError reports an unsupported payment method
func NewInvalidPaymentMethodError(method string) *shared.DomainError {
	return shared.NewBusinessRuleError(CodeInvalidPaymentMethod,
		fmt.Sprintf("Invalid payment method %q, expected one of CASH, BANK_TRANSFER, CARD", method)).
		WithDetail("payment_method", method)
}

// NewOverpaymentError reports a payment larger than the outstanding balance
func NewOverpaymentError(amount, outstanding decimal.Decimal) *shared.DomainError {
	return shared.NewBusinessRuleError(CodeOverpaymentRejected,
		fmt.Sprintf("Payment amount exceeds outstanding invoice amount (%s)", outstanding.StringFixed(2))).
		WithDetail("outstanding_amount", outstanding.StringFixed(2)).
		WithDetail("excess", amount.Sub(outstanding).StringFixed(2))
}
