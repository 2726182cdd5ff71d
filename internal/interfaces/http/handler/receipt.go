package handler

import (
	appbilling "github.com/billing/backend/internal/application/billing"
	"github.com/gin-gonic/gin"
)

// ReceiptHandler serves the receipt endpoints
type ReceiptHandler struct {
	BaseHandler
	receiptService *appbilling.ReceiptService
}

// NewReceiptHandler creates a new ReceiptHandler
func NewReceiptHandler(receiptService *appbilling.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService}
}

// Generate handles POST /receipts/:paymentId. Every call issues a new receipt.
func (h *ReceiptHandler) Generate(c *gin.Context) {
	paymentID, ok := h.parseUUIDParam(c, "paymentId")
	if !ok {
		return
	}

	result, err := h.receiptService.GenerateReceipt(c.Request.Context(), paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// GetByID handles GET /receipts/:id
func (h *ReceiptHandler) GetByID(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	receipt, err := h.receiptService.GetReceipt(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, receipt)
}
