package middleware

import (
	"net/http"
	"time"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/infrastructure/logger"
	"github.com/billing/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HeaderIdempotencyKey is the optional client-chosen key for retry-safe POSTs
const HeaderIdempotencyKey = "Idempotency-Key"

// MaxIdempotencyKeyLength caps the accepted key size
const MaxIdempotencyKeyLength = 255

// Idempotency rejects a repeated Idempotency-Key with 409 ERR_DUPLICATE_REQUEST
// for ttl after it was first seen. Requests without the header pass through.
// A key whose request did not succeed is forgotten so the client can retry it.
// If the store itself fails the request proceeds unguarded.
func Idempotency(store shared.IdempotencyStore, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > MaxIdempotencyKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeValidation,
				"Idempotency-Key must be at most 255 characters",
				GetRequestID(c),
			))
			return
		}

		ctx := c.Request.Context()
		log := logger.GetGinLogger(c)
		storeKey := "http:" + c.Request.Method + ":" + c.FullPath() + ":" + key

		fresh, err := store.MarkProcessed(ctx, storeKey, ttl)
		if err != nil {
			log.Warn("Idempotency store unavailable, request not deduplicated",
				zap.String("idempotency_key", key), zap.Error(err))
			c.Next()
			return
		}
		if !fresh {
			log.Info("Duplicate request rejected", zap.String("idempotency_key", key))
			c.Set(ErrorCodeKey, dto.ErrCodeDuplicateRequest)
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeDuplicateRequest,
				"A request with this Idempotency-Key was already processed",
				GetRequestID(c),
			))
			return
		}

		c.Next()

		if status := c.Writer.Status(); status < http.StatusOK || status >= http.StatusMultipleChoices {
			if err := store.Forget(ctx, storeKey); err != nil {
				log.Warn("Failed to release idempotency key",
					zap.String("idempotency_key", key), zap.Error(err))
			}
		}
	}
}
