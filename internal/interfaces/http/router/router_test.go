package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/billing/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

func routeSet(engine *gin.Engine) map[string]bool {
	set := make(map[string]bool)
	for _, r := range engine.Routes() {
		set[r.Method+" "+r.Path] = true
	}
	return set
}

func TestDomainGroup(t *testing.T) {
	var order []string
	mw := func(c *gin.Context) {
		order = append(order, "group")
		c.Next()
	}

	dg := NewDomainGroup("invoices", "/invoices").
		Use(mw).
		GET("/:id", func(c *gin.Context) {
			order = append(order, "handler")
			c.String(http.StatusOK, c.Param("id"))
		}).
		POST("", func(c *gin.Context) { c.Status(http.StatusCreated) })

	assert.Equal(t, "invoices", dg.Name())
	assert.Equal(t, "/invoices", dg.Prefix())

	engine := gin.New()
	dg.RegisterRoutes(engine.Group("/api"))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/invoices/abc", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc", w.Body.String())
	assert.Equal(t, []string{"group", "handler"}, order)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/invoices", nil))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestRouter_Setup(t *testing.T) {
	ping := NewDomainGroup("ping", "/ping").GET("", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	t.Run("versioned only", func(t *testing.T) {
		engine := gin.New()
		NewRouter(engine, WithAPIVersion("v2")).Register(ping).Setup()

		routes := routeSet(engine)
		assert.True(t, routes["GET /api/v2/ping"])
		assert.False(t, routes["GET /ping"])
	})

	t.Run("with root aliases", func(t *testing.T) {
		engine := gin.New()
		NewRouter(engine, WithRootAliases()).Register(ping).Setup()

		routes := routeSet(engine)
		assert.True(t, routes["GET /api/v1/ping"])
		assert.True(t, routes["GET /ping"])
	})
}

func TestBillingGroups(t *testing.T) {
	h := BillingHandlers{
		Invoice: handler.NewInvoiceHandler(nil),
		Payment: handler.NewPaymentHandler(nil),
		Receipt: handler.NewReceiptHandler(nil),
		Health:  handler.NewHealthHandler(okPinger{}, "test"),
	}

	guardCalls := 0
	guard := func(c *gin.Context) {
		guardCalls++
		c.AbortWithStatus(http.StatusConflict)
	}

	engine := gin.New()
	NewRouter(engine, WithRootAliases()).Register(BillingGroups(h, guard)...).Setup()

	routes := routeSet(engine)
	for _, prefix := range []string{"/api/v1", ""} {
		for _, r := range []string{
			"POST " + prefix + "/invoices",
			"GET " + prefix + "/invoices",
			"GET " + prefix + "/invoices/:id",
			"POST " + prefix + "/payments",
			"GET " + prefix + "/payments/:id",
			"POST " + prefix + "/receipts/:paymentId",
			"GET " + prefix + "/receipts/:id",
			"GET " + prefix + "/health",
		} {
			assert.True(t, routes[r], "missing route %s", r)
		}
	}

	t.Run("invalid ids are rejected before the service", func(t *testing.T) {
		for _, path := range []string{"/api/v1/invoices/nope", "/payments/nope", "/receipts/nope"} {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusBadRequest, w.Code, path)
			assert.Contains(t, w.Body.String(), "ERR_VALIDATION")
		}
	})

	t.Run("payment guard runs only on POST /payments", func(t *testing.T) {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/payments", nil))
		assert.Equal(t, http.StatusConflict, w.Code)
		require.Equal(t, 1, guardCalls)

		w = httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/payments/nope", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, 1, guardCalls)
	})

	t.Run("health", func(t *testing.T) {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"database":"up"`)
	})
}
