package organizer

import (
	"context"
	"log/slog"
	"slices"
	"time"
)

// RetryPolicy decides which tool failures are worth another attempt.
// Zero Backoff means immediate retries.
type RetryPolicy struct {
	MaxAttempts         int
	Backoff             time.Duration
	RetryableStatuses   []string
	RetryableErrorTypes []string
}

// DefaultRetryPolicy retries transient HTTP statuses, timeouts and
// exceptions up to three attempts with no backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:         3,
		RetryableStatuses:   []string{"429", "500", "502", "503", "504"},
		RetryableErrorTypes: []string{ErrTypeException, ErrTypeTimeout, ErrTypeHTTP},
	}
}

// ShouldRetry reports whether another attempt is allowed after the given
// failure. attempt is 1-based (the attempt that just failed).
func (p RetryPolicy) ShouldRetry(terr *ToolError, attempt int) bool {
	if terr == nil || attempt >= p.MaxAttempts {
		return false
	}
	if slices.Contains(p.RetryableStatuses, terr.Code) {
		return true
	}
	return slices.Contains(p.RetryableErrorTypes, terr.Type)
}

type retryConfig struct {
	logger *slog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// RetryOption configures CallToolWithRetry.
type RetryOption func(*retryConfig)

// WithRetryLogger sets the logger used for per-attempt warnings.
func WithRetryLogger(l *slog.Logger) RetryOption {
	return func(c *retryConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRetrySleep replaces the inter-attempt sleep. Tests use this to avoid
// real waiting.
func WithRetrySleep(fn func(ctx context.Context, d time.Duration) error) RetryOption {
	return func(c *retryConfig) {
		if fn != nil {
			c.sleep = fn
		}
	}
}

// CallToolWithRetry runs a tool through CallToolWithTrace up to
// policy.MaxAttempts times, collecting one TraceEvent per attempt.
//
// It returns the first successful result together with all traces produced
// so far. If every attempt fails, or the failure is not retryable, it
// returns a *RetryExceededError carrying the last ToolError. The context is
// checked between attempts; cancellation surfaces as the last attempt's
// outcome.
func CallToolWithRetry(ctx context.Context, tool Tool, params map[string]any, policy RetryPolicy, actor, correlationID string, opts ...RetryOption) (map[string]any, []TraceEvent, error) {
	cfg := retryConfig{logger: nopLogger(), sleep: sleepCtx}
	for _, opt := range opts {
		opt(&cfg)
	}
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if correlationID == "" {
		correlationID = NewCorrelationID()
	}

	traces := make([]TraceEvent, 0, policy.MaxAttempts)
	var last *ToolError
	attempts := 0

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		attempts = attempt
		result, trace := CallToolWithTrace(ctx, tool, params, actor, correlationID)
		traces = append(traces, trace)
		if trace.Error == nil {
			return result, traces, nil
		}
		last = trace.Error

		if !policy.ShouldRetry(last, attempt) {
			break
		}
		cfg.logger.Warn("tool attempt failed, retrying",
			slog.String("tool", tool.Name()),
			slog.Int("attempt", attempt),
			slog.String("error_type", last.Type),
			slog.String("error_code", last.Code))

		if policy.Backoff > 0 {
			if err := cfg.sleep(ctx, policy.Backoff); err != nil {
				break
			}
		} else if err := ctx.Err(); err != nil {
			break
		}
	}

	cfg.logger.Error("tool retries exhausted",
		slog.String("tool", tool.Name()),
		slog.Int("attempts", attempts),
		slog.String("error_type", last.Type))
	return nil, traces, &RetryExceededError{Tool: tool.Name(), Attempts: attempts, Last: last}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
