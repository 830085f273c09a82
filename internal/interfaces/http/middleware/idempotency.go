package middleware

import (
	"net/http"
	"time"

	"github.com/erp/connector/internal/domain/shared"
	"github.com/erp/connector/internal/infrastructure/logger"
	"github.com/erp/connector/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader is the optional client-chosen key on create routes
const IdempotencyKeyHeader = "Idempotency-Key"

// MaxIdempotencyKeyLength bounds the header value
const MaxIdempotencyKeyLength = 255

// Idempotency reserves the Idempotency-Key of a create request for ttl and
// answers 409 DUPLICATE_REQUEST when the same key is replayed. Keys are
// scoped to the ledger user and route. A reserved key is not released when
// the request fails: ledger writes are not rolled back, so a retry could
// duplicate whatever the first attempt created.
func Idempotency(store shared.IdempotencyStore, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > MaxIdempotencyKeyLength {
			abortWithError(c, http.StatusBadRequest, shared.CodeInvalidInput, "Idempotency-Key is too long")
			return
		}

		scope := c.Request.Method + " " + c.FullPath()
		if claims := GetJWTClaims(c); claims != nil {
			scope = claims.SubjectKey() + " " + scope
		}

		reserved, err := store.Reserve(c.Request.Context(), scope+" "+key, ttl)
		if err != nil {
			logger.FromContext(c.Request.Context()).Error("Idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !reserved {
			abortWithError(c, http.StatusConflict, dto.ErrCodeDuplicateRequest,
				"A request with this Idempotency-Key was already processed")
			return
		}
		c.Next()
	}
}
