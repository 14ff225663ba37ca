package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	ginlimiter "github.com/ulule/limiter/v3/drivers/middleware/gin"
	memory "github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// RateLimiter limits requests per client IP. With a Redis client the counters
// are shared between instances; otherwise they are kept in memory.
func RateLimiter(limit int64, period time.Duration, rdb *redis.Client) gin.HandlerFunc {
	rate := limiter.Rate{
		Period: period,
		Limit:  limit,
	}

	var store limiter.Store = memory.NewStore()
	if rdb != nil {
		redisStore, err := sredis.NewStoreWithOptions(rdb, limiter.StoreOptions{Prefix: "jtb_limiter", MaxRetry: 3})
		if err != nil {
			log.Printf("⚠️ Redis rate-limit store unavailable, using memory: %v", err)
		} else {
			store = redisStore
		}
	}

	instance := limiter.New(store, rate)

	return ginlimiter.NewMiddleware(instance)
}
