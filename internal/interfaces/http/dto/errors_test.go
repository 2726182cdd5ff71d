package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeBusinessRule, http.StatusUnprocessableEntity},
		{ErrCodeDuplicateRequest, http.StatusConflict},
		{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{ErrCodeUnavailable, http.StatusServiceUnavailable},
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", shared.NewValidationError("ITEMS_REQUIRED", "items required"), http.StatusBadRequest, ErrCodeValidation},
		{"not found", shared.NewNotFoundError("INVOICE_NOT_FOUND", "Invoice not found"), http.StatusNotFound, ErrCodeNotFound},
		{"duplicate", shared.NewDuplicateError("DUPLICATE_REFERENCE", "dup"), http.StatusConflict, ErrCodeAlreadyExists},
		{"business rule", shared.NewBusinessRuleError("OVERPAYMENT_REJECTED", "too much"), http.StatusUnprocessableEntity, ErrCodeBusinessRule},
		{"wrapped domain error", errors.Wrap(shared.NewNotFoundError("PAYMENT_NOT_FOUND", "Payment not found"), "load"), http.StatusNotFound, ErrCodeNotFound},
		{"plain error", errors.New("connection refused"), http.StatusInternalServerError, ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := FromError(tt.err)
			assert.Equal(t, tt.status, mapped.Status)
			assert.Equal(t, tt.code, mapped.Code)
		})
	}

	t.Run("internal errors do not leak their message", func(t *testing.T) {
		mapped := FromError(errors.New("pq: password authentication failed"))
		assert.Equal(t, "An unexpected error occurred", mapped.Message)
		assert.Nil(t, mapped.Details)
	})

	t.Run("domain details and reason are carried", func(t *testing.T) {
		err := shared.NewDuplicateError("DUPLICATE_INVOICE_NUMBER", "taken").WithDetail("invoice_number", "INV-1")
		mapped := FromError(err)
		assert.Equal(t, "taken", mapped.Message)
		assert.Equal(t, "INV-1", mapped.Details["invoice_number"])
		assert.Equal(t, "DUPLICATE_INVOICE_NUMBER", mapped.Details["reason"])
	})
}

func TestCodeForKind(t *testing.T) {
	assert.Equal(t, ErrCodeValidation, CodeForKind(shared.KindValidation))
	assert.Equal(t, ErrCodeInternal, CodeForKind(shared.ErrorKind("OTHER")))
}

func TestResponseJSON(t *testing.T) {
	t.Run("error envelope", func(t *testing.T) {
		resp := NewErrorResponseWithDetails(ErrCodeNotFound, "Invoice not found", "req-1", map[string]any{"reason": "INVOICE_NOT_FOUND"})
		raw, err := json.Marshal(resp)
		require.NoError(t, err)

		var body map[string]any
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, false, body["success"])
		assert.NotContains(t, body, "data")
		errObj := body["error"].(map[string]any)
		assert.Equal(t, "ERR_NOT_FOUND", errObj["code"])
		assert.Equal(t, "req-1", errObj["request_id"])
		assert.Equal(t, "INVOICE_NOT_FOUND", errObj["details"].(map[string]any)["reason"])
	})

	t.Run("empty details are omitted", func(t *testing.T) {
		raw, err := json.Marshal(NewErrorResponseWithDetails(ErrCodeInternal, "x", "", nil))
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "details")
		assert.NotContains(t, string(raw), "request_id")
	})
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	tests := []struct {
		total    int64
		pageSize int
		pages    int
	}{
		{0, 20, 0},
		{20, 20, 1},
		{21, 20, 2},
		{5, 0, 0},
	}
	for _, tt := range tests {
		resp := NewSuccessResponseWithMeta([]string{}, tt.total, 1, tt.pageSize)
		require.NotNil(t, resp.Meta)
		assert.True(t, resp.Success)
		assert.Equal(t, tt.pages, resp.Meta.TotalPages)
	}
}

func TestNewValidationErrorResponse(t *testing.T) {
	resp := NewValidationErrorResponse("Request validation failed", "req-2", []ValidationDetail{{Field: "invoiceId", Message: "This field is required"}})
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Len(t, resp.Error.Details["fields"], 1)

	resp = NewValidationErrorResponse("bad body", "", nil)
	assert.Nil(t, resp.Error.Details)
}
