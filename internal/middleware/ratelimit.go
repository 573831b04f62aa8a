package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// RateLimit 限制单个 IP 每秒的请求次数。
// 计数器和过期放在一个 pipeline 里，避免 INCR 成功但 EXPIRE 丢失
// 导致计数器永不过期。Redis 不可用时放行，限流不应成为单点。
func RateLimit(client *redis.Client, maxRequests int) gin.HandlerFunc {
	if client == nil {
		panic("redis client cannot be nil for RateLimit")
	}
	return func(c *gin.Context) {
		key := "pm:ratelimit:" + c.ClientIP()
		ctx := c.Request.Context()

		pipe := client.TxPipeline()
		incr := pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, time.Second)
		if _, err := pipe.Exec(ctx); err != nil {
			logrus.WithError(err).Warn("Rate limit check failed, allowing request")
			c.Next()
			return
		}

		if incr.Val() > int64(maxRequests) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			c.Abort()
			return
		}
		c.Next()
	}
}
