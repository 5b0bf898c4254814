// Package retry executes fallible operations with bounded attempts and
// exponential backoff. Failures are classified against an allow-list of
// retryable codes; everything else short-circuits. Do never returns an error
// directly: the outcome, the last error, and the attempt count are all
// captured in the Result so callers branch on structure instead of catching.
package retry

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/jonboulle/clockwork"
)

// Codes understood by the default retryable set.
const (
	CodeNetworkError = "NETWORK_ERROR"
	CodeTimeout      = "TIMEOUT"
)

// Config controls a single Do invocation. Zero-value fields fall back to the
// defaults below.
type Config struct {
	MaxAttempts   int           // default 3
	InitialDelay  time.Duration // default 1s
	MaxDelay      time.Duration // default 10s
	BackoffFactor float64       // default 2

	// RetryableErrors holds string codes and/or int statuses worth retrying.
	// An error matches if its extracted code, status, or raw message is in
	// the set. Defaults to network errors, timeouts, and 429/503/504.
	RetryableErrors []any

	// OnRetry is invoked before each backoff sleep.
	OnRetry func(attempt int, err error, delay time.Duration)

	// Clock defaults to the real clock; tests inject a fake.
	Clock clockwork.Clock
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = time.Second
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 10 * time.Second
	}
	if c.BackoffFactor <= 1 {
		c.BackoffFactor = 2
	}
	if c.RetryableErrors == nil {
		c.RetryableErrors = []any{CodeNetworkError, CodeTimeout, 429, 503, 504}
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	return c
}

// Result describes the outcome of a Do invocation. Attempts is always between
// 1 and MaxAttempts inclusive.
type Result[T any] struct {
	Success  bool
	Data     T
	Err      error
	Attempts int
}

// Errors can advertise a classification code three ways, probed in order.
type coder interface{ Code() string }
type statuser interface{ Status() int }
type statusCoder interface{ StatusCode() int }

// Do runs op until it succeeds, exhausts cfg.MaxAttempts, or fails with a
// non-retryable error. Between attempts it sleeps with exponential backoff
// and uniform jitter in [0.8, 1.2), capped at cfg.MaxDelay. A cancelled
// context aborts the sleep and surfaces the context error.
func Do[T any](ctx context.Context, cfg Config, op func() (T, error)) Result[T] {
	cfg = cfg.withDefaults()

	delay := cfg.InitialDelay
	attempts := 0

	for attempts < cfg.MaxAttempts {
		attempts++

		data, err := op()
		if err == nil {
			return Result[T]{Success: true, Data: data, Attempts: attempts}
		}

		if attempts == cfg.MaxAttempts || !retryable(err, cfg.RetryableErrors) {
			return Result[T]{Err: err, Attempts: attempts}
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempts, err, delay)
		}

		select {
		case <-cfg.Clock.After(delay):
		case <-ctx.Done():
			return Result[T]{Err: ctx.Err(), Attempts: attempts}
		}

		jitter := 0.8 + rand.Float64()*0.4
		delay = min(time.Duration(float64(delay)*cfg.BackoffFactor*jitter), cfg.MaxDelay)
	}

	panic("unreachable: MaxAttempts must be >= 1")
}

// DoVoid is Do for operations without a return value.
func DoVoid(ctx context.Context, cfg Config, op func() error) Result[struct{}] {
	return Do(ctx, cfg, func() (struct{}, error) { return struct{}{}, op() })
}

// retryable reports whether err's classification is in the allow-list.
// Exactly one classifying value is extracted, code before status: an error
// advertising both is judged by its code alone. The raw message is always
// checked as a fallback.
func retryable(err error, allowed []any) bool {
	code, hasCode := extractCode(err)
	status, hasStatus := extractStatus(err)
	if hasCode {
		hasStatus = false
	}

	for _, entry := range allowed {
		switch v := entry.(type) {
		case string:
			if hasCode && v == code {
				return true
			}
			if v == err.Error() {
				return true
			}
		case int:
			if hasStatus && v == status {
				return true
			}
		}
	}
	return false
}

func extractCode(err error) (string, bool) {
	var c coder
	if errors.As(err, &c) {
		return c.Code(), true
	}
	return "", false
}

func extractStatus(err error) (int, bool) {
	var s statuser
	if errors.As(err, &s) {
		return s.Status(), true
	}
	var sc statusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode(), true
	}
	return 0, false
}
