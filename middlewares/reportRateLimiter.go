package middlewares

import (
	"net/http"
	"time"

	"civicreport-be/metrics"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const rateLimitWindow = 24 * time.Hour

// ReportRateLimiter caps report submissions per user per rolling day with a Redis counter
// under <prefix>:<user_id>. It must run after AuthMiddleware. A nil client disables it, and
// Redis errors let the request through.
func ReportRateLimiter(rdb redis.Cmdable, prefix string, limit int, log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}

		userID := c.GetString("user_id")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		ctx := c.Request.Context()
		userKey := prefix + ":" + userID

		count, err := rdb.Incr(ctx, userKey).Result()
		if err != nil {
			log.WithError(err).Warn("rate limiter unavailable, allowing request")
			c.Next()
			return
		}

		// TTL only on the first hit so the window starts with the first submission. A counter
		// without a TTL would never reset, so drop it and let the request through.
		if count == 1 {
			if err := rdb.Expire(ctx, userKey, rateLimitWindow).Err(); err != nil {
				log.WithError(err).Warn("rate limiter could not set TTL, resetting counter")
				if err := rdb.Del(ctx, userKey).Err(); err != nil {
					log.WithError(err).Warn("rate limiter could not reset counter")
				}
				c.Next()
				return
			}
		}

		if count > int64(limit) {
			retryAfter, err := rdb.TTL(ctx, userKey).Result()
			if err == nil && retryAfter < 0 {
				rdb.Expire(ctx, userKey, rateLimitWindow)
				retryAfter = rateLimitWindow
			}
			metrics.RateLimitedTotal.Inc()
			log.WithFields(logrus.Fields{"user_id": userID, "count": count}).Info("report rate limit exceeded")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": retryAfter.Seconds(),
			})
			return
		}

		c.Next()
	}
}
