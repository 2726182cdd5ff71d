package router

import (
	"github.com/billing/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// BillingHandlers are the handlers behind the billing routes
type BillingHandlers struct {
	Invoice *handler.InvoiceHandler
	Payment *handler.PaymentHandler
	Receipt *handler.ReceiptHandler
	Health  *handler.HealthHandler
}

// BillingGroups returns the route groups of the billing API. paymentGuards
// run in front of POST /payments only, e.g. the Idempotency-Key check.
func BillingGroups(h BillingHandlers, paymentGuards ...gin.HandlerFunc) []RouteRegistrar {
	invoices := NewDomainGroup("invoices", "/invoices").
		POST("", h.Invoice.Create).
		GET("", h.Invoice.List).
		GET("/:id", h.Invoice.GetByID)

	payments := NewDomainGroup("payments", "/payments").
		POST("", append(append([]gin.HandlerFunc{}, paymentGuards...), h.Payment.Process)...).
		GET("/:id", h.Payment.GetByID)

	receipts := NewDomainGroup("receipts", "/receipts").
		POST("/:paymentId", h.Receipt.Generate).
		GET("/:id", h.Receipt.GetByID)

	health := NewDomainGroup("health", "/health").
		GET("", h.Health.Check)

	return []RouteRegistrar{invoices, payments, receipts, health}
}
