package utils

import (
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter allows n events per period with a burst of n
type RateLimiter struct {
	limiter *rate.Limiter
}

func NewRateLimiter(n int, period time.Duration) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Every(period/time.Duration(n)), n),
	}
}

func (rl *RateLimiter) Allow() bool {
	return rl.limiter.Allow()
}
