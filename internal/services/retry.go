package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	// ErrRetriesExhausted reports that every attempt failed with a transient error.
	ErrRetriesExhausted = errors.New("remote call retries exhausted")
	// ErrFatalRemote reports a failure that is not worth retrying.
	ErrFatalRemote = errors.New("fatal remote error")
)

// FailureClassification tells the controller how to react to a failed attempt.
type FailureClassification int

const (
	Fatal FailureClassification = iota
	ServiceUnavailable
	RateLimited
)

func (f FailureClassification) String() string {
	switch f {
	case ServiceUnavailable:
		return "service_unavailable"
	case RateLimited:
		return "rate_limited"
	default:
		return "fatal"
	}
}

// ClassifyFailure maps an error to its failure class from the message text.
// 503 is checked before 429 so a message carrying both retries with exponential delay.
func ClassifyFailure(err error) FailureClassification {
	if err == nil {
		return Fatal
	}

	msg := strings.ToLower(err.Error())

	if strings.Contains(msg, "503") || strings.Contains(msg, "service unavailable") {
		return ServiceUnavailable
	}

	if strings.Contains(msg, "429") || strings.Contains(msg, "rate_limit") ||
		strings.Contains(msg, "rate limit") {
		return RateLimited
	}

	return Fatal
}

// RetryPolicy bounds how long the controller keeps trying.
type RetryPolicy struct {
	MaxRetries    int
	BaseDelay     time.Duration
	RateLimitStep time.Duration
}

// DefaultRetryPolicy: three attempts, 2s exponential base, 5s linear rate-limit step.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:    3,
		BaseDelay:     2 * time.Second,
		RateLimitStep: 5 * time.Second,
	}
}

// Normalized replaces non-positive fields with their defaults.
func (p RetryPolicy) Normalized() RetryPolicy {
	def := DefaultRetryPolicy()
	if p.MaxRetries < 1 {
		p.MaxRetries = def.MaxRetries
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = def.BaseDelay
	}
	if p.RateLimitStep <= 0 {
		p.RateLimitStep = def.RateLimitStep
	}
	return p
}

// maxRetryDelay bounds Delay so large attempt numbers cannot overflow.
const maxRetryDelay = time.Duration(math.MaxInt64)

// Delay returns the wait before the next attempt after a failure on attempt (1-based).
// Fatal failures never wait. Delays saturate at maxRetryDelay.
func (p RetryPolicy) Delay(class FailureClassification, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	switch class {
	case ServiceUnavailable:
		d := p.BaseDelay
		for i := 1; i < attempt && d > 0; i++ {
			if d > maxRetryDelay/2 {
				return maxRetryDelay
			}
			d *= 2
		}
		return d
	case RateLimited:
		if p.RateLimitStep > 0 && time.Duration(attempt) > maxRetryDelay/p.RateLimitStep {
			return maxRetryDelay
		}
		return p.RateLimitStep * time.Duration(attempt)
	default:
		return 0
	}
}

// RemoteOperation is one attempt at a remote call.
type RemoteOperation func(ctx context.Context) (string, error)

// RetryObserver receives retry transitions for metrics.
type RetryObserver interface {
	ObserveAttempt(model string)
	ObserveRetry(class string)
}

// BackoffController runs a remote operation with classified, bounded retries.
// Sleeps block the caller; an in-flight wait is not interrupted.
type BackoffController struct {
	policy   RetryPolicy
	sleep    func(time.Duration)
	observer RetryObserver
}

func NewBackoffController(policy RetryPolicy) *BackoffController {
	return &BackoffController{
		policy: policy.Normalized(),
		sleep:  time.Sleep,
	}
}

// WithSleeper swaps the blocking sleep, mainly for tests.
func (b *BackoffController) WithSleeper(sleep func(time.Duration)) *BackoffController {
	b.sleep = sleep
	return b
}

func (b *BackoffController) WithObserver(observer RetryObserver) *BackoffController {
	b.observer = observer
	return b
}

func (b *BackoffController) Policy() RetryPolicy {
	return b.policy
}

// Do invokes op until it succeeds, fails fatally, or runs out of attempts.
// Exhaustion wraps ErrRetriesExhausted and a fatal failure wraps ErrFatalRemote,
// so a caller can tell "no result" apart from a successful empty string.
func (b *BackoffController) Do(ctx context.Context, label string, op RemoteOperation, notify Notifier) (string, error) {
	if notify == nil {
		notify = NopNotifier{}
	}

	maxRetries := b.policy.MaxRetries
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if b.observer != nil {
			b.observer.ObserveAttempt(label)
		}

		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		class := ClassifyFailure(err)
		if class == Fatal {
			return "", fmt.Errorf("%w: %w", ErrFatalRemote, err)
		}

		if attempt == maxRetries {
			switch class {
			case ServiceUnavailable:
				notify.Error(fmt.Sprintf("🚫 %s is currently unavailable. Using offline analysis...", label))
			case RateLimited:
				notify.Error("🚫 Rate limit exceeded. Please try again later.")
			}
			break
		}

		wait := b.policy.Delay(class, attempt)
		switch class {
		case ServiceUnavailable:
			notify.Warn(fmt.Sprintf("🔄 %s temporarily unavailable. Retrying in %s... (Attempt %d/%d)",
				label, wait, attempt, maxRetries))
		case RateLimited:
			notify.Warn(fmt.Sprintf("⏳ Rate limit reached. Waiting %s... (Attempt %d/%d)",
				wait, attempt, maxRetries))
		}
		if b.observer != nil {
			b.observer.ObserveRetry(class.String())
		}

		b.sleep(wait)
	}

	return "", fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, maxRetries, lastErr)
}
