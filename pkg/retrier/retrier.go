// Package retrier implements bounded exponential backoff for transient
// failures.
package retrier

import (
	"context"
	"math/rand"
	"time"
)

// Config tunes the backoff schedule. Zero values fall back to defaults.
type Config struct {
	// MaxRetries is the number of attempts after the first one.
	MaxRetries int
	// InitialInterval is the delay before the first retry.
	InitialInterval time.Duration
	// MaxInterval caps the delay between attempts.
	MaxInterval time.Duration
	// Multiplier grows the delay after each attempt.
	Multiplier float64
	// Jitter randomizes each delay by +/- the given fraction.
	Jitter float64
}

// Retrier retries an operation with exponential backoff and jitter.
type Retrier struct {
	cfg Config
}

// New creates a Retrier, filling in defaults for unset config fields.
func New(cfg Config) *Retrier {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = time.Second
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = 30 * time.Second
	}
	if cfg.Multiplier <= 1 {
		cfg.Multiplier = 2.0
	}
	if cfg.Jitter <= 0 || cfg.Jitter > 1 {
		cfg.Jitter = 0.1
	}
	return &Retrier{cfg: cfg}
}

// Do runs fn until it succeeds or the retry budget is exhausted. The last
// error is returned; context cancellation aborts the wait immediately.
func (r *Retrier) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	interval := r.cfg.InitialInterval

	for attempt := 0; attempt <= r.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.jittered(interval)):
			}

			interval = time.Duration(float64(interval) * r.cfg.Multiplier)
			if interval > r.cfg.MaxInterval {
				interval = r.cfg.MaxInterval
			}
		}

		if err = fn(ctx); err == nil {
			return nil
		}
	}

	return err
}

func (r *Retrier) jittered(interval time.Duration) time.Duration {
	offset := (rand.Float64()*2 - 1) * r.cfg.Jitter * float64(interval)
	d := time.Duration(float64(interval) + offset)
	if d < 0 {
		return 0
	}
	return d
}

// DoWithData runs fn with the same schedule as Do and returns its value.
func DoWithData[T any](r *Retrier, ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := r.Do(ctx, func(ctx context.Context) error {
		var e error
		result, e = fn(ctx)
		return e
	})
	return result, err
}
