package testutil

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSQLiteDB(t *testing.T) {
	db := NewSQLiteDB(t)
	require.NoError(t, db.Ping(context.Background()))
	assert.True(t, db.DB.Migrator().HasTable("invoices"))
	assert.True(t, db.DB.Migrator().HasTable("receipt_items"))
}

func TestNewMockDB(t *testing.T) {
	db := NewMockDB(t)
	assert.NotNil(t, db.DB)
	db.ExpectationsWereMet(t)
}

func TestNewTestUUID(t *testing.T) {
	assert.Equal(t, NewTestUUID("a"), NewTestUUID("a"))
	assert.NotEqual(t, NewTestUUID("a"), NewTestUUID("b"))
}

func TestContextWithTimeout(t *testing.T) {
	ctx := ContextWithTimeout(t, time.Minute)
	_, ok := ctx.Deadline()
	assert.True(t, ok)
}

func TestHTTPHelpers(t *testing.T) {
	engine := gin.New()
	engine.POST("/echo", func(c *gin.Context) {
		var body map[string]any
		_ = c.ShouldBindJSON(&body)
		c.JSON(http.StatusCreated, gin.H{"success": true, "data": gin.H{"got": body["n"], "hdr": c.GetHeader("X-Test")}})
	})
	engine.GET("/fail", func(c *gin.Context) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error":   gin.H{"code": "ERR_BUSINESS_RULE", "message": "no", "details": gin.H{"reason": "ALREADY_SETTLED"}},
		})
	})

	w := DoJSON(t, engine, http.MethodPost, "/echo", map[string]any{"n": 3}, map[string]string{"X-Test": "yes"})
	data := DataAs[struct {
		Got float64 `json:"got"`
		Hdr string  `json:"hdr"`
	}](t, w, http.StatusCreated)
	assert.Equal(t, float64(3), data.Got)
	assert.Equal(t, "yes", data.Hdr)

	w = DoJSON(t, engine, http.MethodGet, "/fail", nil, nil)
	assert.Equal(t, "ALREADY_SETTLED", AssertError(t, w, http.StatusUnprocessableEntity, "ERR_BUSINESS_RULE"))
}

func TestRecordingHandler(t *testing.T) {
	h := NewRecordingHandler(billing.EventTypeInvoiceCreated)
	assert.Equal(t, []string{billing.EventTypeInvoiceCreated}, h.EventTypes())

	ev := shared.NewBaseDomainEvent(billing.EventTypeInvoiceCreated, billing.AggregateTypeInvoice, uuid.New())
	require.NoError(t, h.Handle(context.Background(), &ev))
	assert.Equal(t, []string{billing.EventTypeInvoiceCreated}, h.Types())

	h.SetError(errors.New("boom"))
	assert.Error(t, h.Handle(context.Background(), &ev))
	assert.Len(t, h.Handled(), 2)

	assert.True(t, WaitForCondition(t, func() bool { return len(h.Handled()) == 2 }, 50*time.Millisecond, time.Millisecond))
}
