// Package retrylimit couples an adaptive rate limiter with exponential-backoff
// retries. The limiter speeds up while calls succeed and backs off when the
// remote side pushes back; callers classify which errors count as pushback.
//
//	lim := retrylimit.NewAdaptiveLimiter(5, 1, 20, 1, 0.5)
//	err := retrylimit.WithRetry(ctx, func() error { return doCall() }, lim)
package retrylimit

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// AdaptiveLimiter is a token-bucket limiter whose rate adjusts with request
// outcomes: additive increase on success, multiplicative decrease on
// backpressure. Safe for concurrent use.
type AdaptiveLimiter struct {
	mu       sync.RWMutex
	limiter  *rate.Limiter
	min      rate.Limit
	max      rate.Limit
	stepUp   rate.Limit
	backoff  float64
	lastSlow time.Time
}

// NewAdaptiveLimiter builds a limiter starting at initial requests per second,
// bounded by min and max, growing by stepUp on success and multiplying by
// backoff (e.g. 0.5 to halve) on backpressure.
func NewAdaptiveLimiter(initial, min, max, stepUp rate.Limit, backoff float64) *AdaptiveLimiter {
	if initial < 1 {
		initial = 1
	}
	if min < 1 {
		min = 1
	}
	return &AdaptiveLimiter{
		limiter: rate.NewLimiter(initial, maxInt(1, int(initial))),
		min:     min,
		max:     max,
		stepUp:  stepUp,
		backoff: backoff,
	}
}

// Wait blocks until a token is available or the context is done.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return a.limiter.Wait(ctx)
}

// Success nudges the rate up. Growth is suppressed for a cooldown window after
// backpressure so one success does not undo a slowdown.
func (a *AdaptiveLimiter) Success() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if time.Since(a.lastSlow) > 10*time.Second {
		a.setLimit(a.limiter.Limit() + a.stepUp)
	}
}

// Backpressure cuts the rate after the remote side pushed back.
func (a *AdaptiveLimiter) Backpressure() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastSlow = time.Now()
	a.setLimit(rate.Limit(float64(a.limiter.Limit()) * a.backoff))
}

// Limit returns the current requests per second.
func (a *AdaptiveLimiter) Limit() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return float64(a.limiter.Limit())
}

func (a *AdaptiveLimiter) setLimit(l rate.Limit) {
	if l > a.max {
		l = a.max
	} else if l < a.min {
		l = a.min
	}
	if l != a.limiter.Limit() {
		a.limiter.SetLimit(l)
		a.limiter.SetBurst(maxInt(1, int(l)))
	}
}

// FatalError wraps an error that must stop retrying immediately.
type FatalError struct {
	Err error
}

func (f *FatalError) Error() string { return f.Err.Error() }
func (f *FatalError) Unwrap() error { return f.Err }

// Classifier reports whether an error is backpressure from the remote side
// (a rate limit or overload signal) rather than a plain failure.
type Classifier func(error) bool

// Config tunes WithRetryConfig.
type Config struct {
	// MaxAttempts caps the number of calls. 0 means the safety cap of 100.
	MaxAttempts int
	// InitialDelay is the first backoff sleep; it multiplies up to MaxDelay.
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	// Jitter spreads backoff sleeps by up to 25% to avoid thundering herds.
	Jitter bool
	// Backpressure classifies errors that should slow the limiter down.
	// Nil treats every failure as a plain error.
	Backpressure Classifier
}

// DefaultConfig returns the retry tuning used when none is given.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  100,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

// WithRetry runs fn under the limiter with default retry tuning.
func WithRetry(ctx context.Context, fn func() error, lim *AdaptiveLimiter) error {
	return WithRetryConfig(ctx, fn, lim, DefaultConfig())
}

// WithRetryMax runs fn under the limiter with at most maxAttempts calls.
func WithRetryMax(ctx context.Context, fn func() error, lim *AdaptiveLimiter, maxAttempts int) error {
	cfg := DefaultConfig()
	cfg.MaxAttempts = maxAttempts
	return WithRetryConfig(ctx, fn, lim, cfg)
}

// WithRetryConfig runs fn until it succeeds, returns a FatalError, the context
// ends, or the attempt cap is hit. Each attempt first waits for the limiter;
// failures classified as backpressure also slow the limiter down.
func WithRetryConfig(ctx context.Context, fn func() error, lim *AdaptiveLimiter, cfg Config) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 100
	}

	delay := cfg.InitialDelay
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if lim != nil {
			if err := lim.Wait(ctx); err != nil {
				return err
			}
		}

		err := fn()
		if err == nil {
			if lim != nil {
				lim.Success()
			}
			return nil
		}

		var fatal *FatalError
		if errors.As(err, &fatal) {
			return err
		}

		if cfg.Backpressure != nil && cfg.Backpressure(err) {
			if lim != nil {
				lim.Backpressure()
				log.Printf("[WARN] retrylimit: backpressure on attempt %d, limit now %.2f rps", attempt, lim.Limit())
			}
		}
		log.Printf("[WARN] retrylimit: attempt %d failed: %v, sleeping %v", attempt, err, delay)

		sleep := delay
		if cfg.Jitter {
			sleep = addJitter(sleep)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}

		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}
	return fmt.Errorf("max attempts (%d) exceeded", cfg.MaxAttempts)
}

func addJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return d
	}
	return d + time.Duration(rand.Int63n(int64(d/4)))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
