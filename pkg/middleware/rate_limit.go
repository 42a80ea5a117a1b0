package middleware

import (
	"fmt"
	"net/http"

	"anydl/internal/service"
	"anydl/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimitMiddleware rejects requests from IPs that exceeded their window.
func RateLimitMiddleware(rateLimitService *service.RateLimitService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		if !rateLimitService.Allow(ip) {
			logger.Logger.Warn("Rate limit exceeded", zap.String("ip", ip))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"message": "Too many requests. Please try again later.",
				"code":    http.StatusTooManyRequests,
			})
			c.Abort()
			return
		}

		if remaining := rateLimitService.Remaining(ip); remaining >= 0 {
			c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		}

		c.Next()
	}
}
