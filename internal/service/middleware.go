package service

import (
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// requestLogger returns a middleware that writes one structured log line per request, tagged
// with a generated request id that is also returned in the X-Request-Id response header.
func requestLogger() gin.HandlerFunc {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	return func(c *gin.Context) {
		requestId := uuid.NewString()
		c.Writer.Header().Set("X-Request-Id", requestId)
		start := time.Now()
		c.Next()
		logger.Info("http_request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"ip", c.ClientIP(),
			"latency_ms", time.Since(start).Milliseconds(),
			"user_agent", c.Request.UserAgent(),
			"request_id", requestId,
		)
	}
}

// rateLimiter returns a middleware that allows up to 'requests' calls per 'window' and client
// IP. The limiter state lives with the router, so every SetupHttpRouter call starts fresh.
func rateLimiter(window time.Duration, requests int) gin.HandlerFunc {
	var mutex sync.Mutex
	limiters := make(map[string]*rate.Limiter)
	limit := rate.Every(window / time.Duration(requests))
	return func(c *gin.Context) {
		ip := c.ClientIP()
		mutex.Lock()
		limiter, ok := limiters[ip]
		if !ok {
			limiter = rate.NewLimiter(limit, requests)
			limiters[ip] = limiter
		}
		mutex.Unlock()
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "too many requests"})
			return
		}
		c.Next()
	}
}
