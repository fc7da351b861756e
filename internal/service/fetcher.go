package service

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"syscall"
	"time"

	"agencysearch/internal/apperr"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// ErrRetriesExhausted marks a transient store failure that outlived the retry budget
var ErrRetriesExhausted = errors.New("store retries exhausted")

// RetryPolicy is an exponential backoff schedule
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Multiplier   float64
}

// DefaultRetryPolicy waits 1s then 1.5s between three attempts
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts:  3,
	InitialDelay: time.Second,
	Multiplier:   1.5,
}

// Fetcher runs store queries with bounded retry for transient failures
type Fetcher struct {
	policy RetryPolicy
	sleep  func(ctx context.Context, d time.Duration) error
	logger *zap.Logger
}

// NewFetcher creates a fetcher with the given policy
func NewFetcher(policy RetryPolicy, logger *zap.Logger) *Fetcher {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if policy.Multiplier < 1 {
		policy.Multiplier = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{policy: policy, sleep: sleepContext, logger: logger}
}

// fetch runs fn, retrying transient failures. The returned error is always a
// DATABASE_ERROR so callers never mistake a failure for an empty result.
func fetch[T any](ctx context.Context, f *Fetcher, name string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	delay := f.policy.InitialDelay

	for attempt := 1; ; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}

		if !IsTransient(err) {
			return zero, apperr.Database(fmt.Sprintf("Failed to %s", humanize(name)), err)
		}
		if attempt >= f.policy.MaxAttempts {
			f.logger.Error("store query failed after retries",
				zap.String("query", name), zap.Int("attempts", attempt), zap.Error(err))
			return zero, apperr.Database(fmt.Sprintf("Failed to %s", humanize(name)),
				fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempt, err))
		}

		f.logger.Warn("transient store error, retrying",
			zap.String("query", name), zap.Int("attempt", attempt), zap.Duration("backoff", delay), zap.Error(err))
		if serr := f.sleep(ctx, delay); serr != nil {
			return zero, apperr.Database(fmt.Sprintf("Failed to %s", humanize(name)), serr)
		}
		delay = time.Duration(float64(delay) * f.policy.Multiplier)
	}
}

// IsTransient reports whether err is a connectivity or timeout failure worth
// retrying. Authorization failures are never transient.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code.Class() == "28", pqErr.Code == "42501":
			return false
		case pqErr.Code.Class() == "08", pqErr.Code.Class() == "53":
			return true
		case pqErr.Code == "57P01", pqErr.Code == "57P02", pqErr.Code == "57P03":
			return true
		default:
			return false
		}
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"authentication", "permission denied", "unauthorized", "forbidden"} {
		if strings.Contains(msg, marker) {
			return false
		}
	}

	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	for _, marker := range []string{"connection", "network", "timeout", "timed out", "fetch failed"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func humanize(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}
