package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"rescueradar/models"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Redis        *redis.Client
	Requests     int           // Number of requests allowed
	Window       time.Duration // Time window
	KeyPrefix    string        // Redis key prefix
	SkipPaths    []string
	ErrorMessage string
}

// RateLimiter is a per-client-IP sliding window log kept in a Redis sorted set
type RateLimiter struct {
	config RateLimitConfig
}

func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	if config.KeyPrefix == "" {
		config.KeyPrefix = "rescueradar:rate_limit"
	}
	if config.ErrorMessage == "" {
		config.ErrorMessage = "Too many requests. Please try again later."
	}
	if config.Requests <= 0 {
		config.Requests = 100
	}
	if config.Window <= 0 {
		config.Window = time.Minute
	}

	return &RateLimiter{config: config}
}

// Middleware returns the rate limiting middleware. Requests pass when Redis is
// absent or unreachable.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.config.Redis == nil || shouldSkipPath(c.Request.URL.Path, rl.config.SkipPaths) {
			c.Next()
			return
		}

		key := fmt.Sprintf("%s:ip:%s", rl.config.KeyPrefix, clientIP(c))
		allowed, resetTime, remaining, err := rl.checkRateLimit(c.Request.Context(), key)
		if err != nil {
			logrus.Errorf("Rate limit check failed: %v", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Requests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			rl.handleRateLimitExceeded(c, resetTime)
			return
		}

		c.Next()
	}
}

func (rl *RateLimiter) checkRateLimit(ctx context.Context, key string) (allowed bool, resetTime time.Time, remaining int, err error) {
	now := time.Now()
	window := rl.config.Window
	member := uuid.NewString()

	pipe := rl.config.Redis.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(now.Add(-window).UnixNano(), 10))
	countCmd := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, &redis.Z{Score: float64(now.UnixNano()), Member: member})
	pipe.Expire(ctx, key, window+time.Minute)

	if _, err = pipe.Exec(ctx); err != nil {
		return false, time.Time{}, 0, err
	}

	currentCount := countCmd.Val()
	remaining = rl.config.Requests - int(currentCount) - 1
	if remaining < 0 {
		remaining = 0
	}
	resetTime = now.Add(window)
	allowed = currentCount < int64(rl.config.Requests)

	// Rejected requests do not count against the window
	if !allowed {
		rl.config.Redis.ZRem(ctx, key, member)
	}

	return allowed, resetTime, remaining, nil
}

func (rl *RateLimiter) handleRateLimitExceeded(c *gin.Context, resetTime time.Time) {
	retryAfter := int(time.Until(resetTime).Seconds())
	if retryAfter < 0 {
		retryAfter = 0
	}
	c.Header("Retry-After", strconv.Itoa(retryAfter))

	logrus.WithFields(logrus.Fields{
		"client_ip":   clientIP(c),
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"retry_after": retryAfter,
	}).Warn("Rate limit exceeded")

	response := models.NewErrorResponse("RATE_LIMIT_EXCEEDED", rl.config.ErrorMessage, models.CodeTooManyRequests, c.GetString("request_id")).
		WithDetails("retry_after", retryAfter).
		WithDetails("reset_time", resetTime.Unix())

	c.AbortWithStatusJSON(http.StatusTooManyRequests, response)
}

func clientIP(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if xri := c.GetHeader("X-Real-IP"); xri != "" {
		return xri
	}
	return c.ClientIP()
}

// APIRateLimit applies the configured request budget to every API route
func APIRateLimit(rdb *redis.Client, requests int, window time.Duration) gin.HandlerFunc {
	return NewRateLimiter(RateLimitConfig{
		Redis:     rdb,
		Requests:  requests,
		Window:    window,
		KeyPrefix: "rescueradar:rate_limit:api",
		SkipPaths: []string{"/api/health", "/health", "/metrics"},
	}).Middleware()
}

// SubmissionRateLimit caps report submissions, which fan out to paid providers
func SubmissionRateLimit(rdb *redis.Client) gin.HandlerFunc {
	return NewRateLimiter(RateLimitConfig{
		Redis:        rdb,
		Requests:     10,
		Window:       time.Minute,
		KeyPrefix:    "rescueradar:rate_limit:submit",
		ErrorMessage: "Too many reports submitted. Please wait a minute and try again.",
	}).Middleware()
}

func UploadRateLimit(rdb *redis.Client) gin.HandlerFunc {
	return NewRateLimiter(RateLimitConfig{
		Redis:        rdb,
		Requests:     10,
		Window:       time.Minute,
		KeyPrefix:    "rescueradar:rate_limit:upload",
		ErrorMessage: "Upload rate limit exceeded. Please try again later.",
	}).Middleware()
}
