// Package ratelimiter throttles outbound requests to remote backends.
package ratelimiter

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// unlimited is used in place of rate.Inf, which reports zero tokens and
// confuses Tokens() based monitoring.
const unlimited = 1_000_000_000

// Config holds token bucket settings as they appear in store option maps.
type Config struct {
	// RequestsPerSecond is the sustained rate. Zero disables limiting.
	RequestsPerSecond uint `mapstructure:"requests_per_second"`

	// Burst is the bucket capacity. Zero defaults to RequestsPerSecond.
	Burst uint `mapstructure:"burst"`
}

// RateLimiter is a token bucket shared by every request to one backend.
//
// Probes call Wait before each remote request so that a burst of
// enumerations cannot flood the object store with HEAD requests.
//
// Thread safety:
// All methods are safe for concurrent use.
type RateLimiter struct {
	limiter *rate.Limiter
}

// New creates a limiter with the given sustained rate and burst capacity.
//
// Parameters:
//   - requestsPerSecond: Tokens added per second. Zero means unlimited.
//   - burst: Bucket capacity. Zero means the same as requestsPerSecond.
func New(requestsPerSecond, burst uint) *RateLimiter {
	if requestsPerSecond == 0 {
		requestsPerSecond = unlimited
		burst = unlimited
	}
	if burst == 0 {
		burst = requestsPerSecond
	}

	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), int(burst)),
	}
}

// FromConfig builds a limiter from decoded configuration.
func FromConfig(cfg Config) *RateLimiter {
	return New(cfg.RequestsPerSecond, cfg.Burst)
}

// Allow reports whether a request may proceed now, consuming a token if so.
func (r *RateLimiter) Allow() bool {
	return r.limiter.Allow()
}

// Wait blocks until a token is available or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	return nil
}

// Limit returns the configured sustained rate.
func (r *RateLimiter) Limit() float64 {
	return float64(r.limiter.Limit())
}

// Tokens returns the tokens currently available. Useful for debugging only.
func (r *RateLimiter) Tokens() float64 {
	return r.limiter.Tokens()
}
