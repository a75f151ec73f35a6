package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	HeaderIdempotencyKey     = "Idempotency-Key"
	HeaderIdempotentReplayed = "Idempotent-Replayed"
	idempotencyLockTTL       = 30 * time.Second

	ContextIdempotencyCacheKey = "idempotency_cache_key"
	ContextIdempotencyLockKey  = "idempotency_lock_key"
)

// IdempotentResponse is what a handler stores under the cache key and what a
// repeated request gets back, status included.
type IdempotentResponse struct {
	Status int             `json:"status"`
	Data   json.RawMessage `json:"data"`
}

func EncodeIdempotentResponse(status int, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(IdempotentResponse{Status: status, Data: raw})
}

// Idempotency replays a stored response for a repeated POST with the same
// Idempotency-Key. While the first request is running a duplicate gets 409.
// The handler owns storing the response and releasing the lock through the
// ContextIdempotencyCacheKey and ContextIdempotencyLockKey values.
func Idempotency(rdb *redis.Client) gin.HandlerFunc {
	log := zap.L().Named("middleware.idempotency")
	return func(c *gin.Context) {
		idempKey := c.GetHeader(HeaderIdempotencyKey)
		if idempKey == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		cacheKey := fmt.Sprintf("idemp:%s:%s:%s", c.FullPath(), c.GetString(ContextUserID), idempKey)
		lockKey := cacheKey + ":lock"

		val, err := rdb.Get(ctx, cacheKey).Result()
		if err == nil {
			var cached IdempotentResponse
			if json.Unmarshal([]byte(val), &cached) == nil && cached.Status != 0 && len(cached.Data) > 0 {
				c.Header(HeaderIdempotentReplayed, "true")
				response.Success(c, cached.Status, cached.Data, nil)
				c.Abort()
				return
			}
			log.Warn("idempotency cache entry unreadable", zap.String("key", cacheKey))
		} else if err != redis.Nil {
			log.Warn("idempotency cache read failed", zap.String("key", cacheKey), zap.Error(err))
		}

		acquired, err := rdb.SetNX(ctx, lockKey, "locked", idempotencyLockTTL).Result()
		if err != nil {
			log.Warn("idempotency lock failed, continuing without it", zap.String("key", lockKey), zap.Error(err))
			c.Next()
			return
		}
		if !acquired {
			response.Abort(c, http.StatusConflict, "PROCESSING", "A request with this Idempotency-Key is still being processed")
			return
		}

		c.Set(ContextIdempotencyCacheKey, cacheKey)
		c.Set(ContextIdempotencyLockKey, lockKey)

		c.Next()
	}
}
