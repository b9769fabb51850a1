package retrylimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() Config {
	return Config{
		MaxAttempts:  5,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestWithRetryEventualSuccess(t *testing.T) {
	calls := 0
	err := WithRetryConfig(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, nil, fastConfig())
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetryMaxAttemptsExceeded(t *testing.T) {
	calls := 0
	err := WithRetryConfig(context.Background(), func() error {
		calls++
		return errors.New("always")
	}, nil, fastConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max attempts")
	assert.Equal(t, 5, calls)
}

func TestWithRetryFatalStopsImmediately(t *testing.T) {
	calls := 0
	boom := errors.New("bad token")
	err := WithRetryConfig(context.Background(), func() error {
		calls++
		return &FatalError{Err: boom}
	}, nil, fastConfig())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestWithRetryContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := WithRetry(ctx, func() error { return errors.New("never runs far") }, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBackpressureSlowsLimiter(t *testing.T) {
	lim := NewAdaptiveLimiter(8, 1, 20, 1, 0.5)
	require.Equal(t, 8.0, lim.Limit())

	cfg := fastConfig()
	cfg.MaxAttempts = 3
	cfg.Backpressure = func(error) bool { return true }

	_ = WithRetryConfig(context.Background(), func() error {
		return errors.New("slow down")
	}, lim, cfg)

	assert.Less(t, lim.Limit(), 8.0)
	assert.GreaterOrEqual(t, lim.Limit(), 1.0, "never below the floor")
}

func TestSuccessGrowthSuppressedAfterBackpressure(t *testing.T) {
	lim := NewAdaptiveLimiter(4, 1, 20, 1, 0.5)
	lim.Backpressure()
	after := lim.Limit()

	// Within the cooldown window a success must not raise the rate.
	lim.Success()
	assert.Equal(t, after, lim.Limit())
}

func TestLimiterBounds(t *testing.T) {
	lim := NewAdaptiveLimiter(2, 1, 3, 10, 0.1)
	lim.Success()
	assert.Equal(t, 3.0, lim.Limit(), "capped at max")

	for i := 0; i < 5; i++ {
		lim.Backpressure()
	}
	assert.Equal(t, 1.0, lim.Limit(), "floored at min")
}
