package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

type recordedSleeps struct {
	waits []time.Duration
}

func (r *recordedSleeps) sleep(d time.Duration) {
	r.waits = append(r.waits, d)
}

type countingObserver struct {
	nopObserver
	attempts  int
	retries   map[string]int
	fallbacks map[string]int
	normalize int
	durations map[string]int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{
		retries:   map[string]int{},
		fallbacks: map[string]int{},
		durations: map[string]int{},
	}
}

func (o *countingObserver) ObserveAttempt(string)     { o.attempts++ }
func (o *countingObserver) ObserveRetry(class string) { o.retries[class]++ }
func (o *countingObserver) ObserveFallback(op string) { o.fallbacks[op]++ }
func (o *countingObserver) ObserveNormalizeFailure()  { o.normalize++ }
func (o *countingObserver) ObserveDuration(op, path string, _ time.Duration) {
	o.durations[op+"/"+path]++
}

// scripted returns the queued errors in order, then succeeds with result.
func scripted(result string, errs ...error) (RemoteOperation, *int) {
	calls := 0
	return func(ctx context.Context) (string, error) {
		calls++
		if calls <= len(errs) {
			return "", errs[calls-1]
		}
		return result, nil
	}, &calls
}

func TestClassifyFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FailureClassification
	}{
		{"nil", nil, Fatal},
		{"503 code", errors.New("POST https://api: 503 Service Unavailable"), ServiceUnavailable},
		{"service unavailable text", errors.New("the service unavailable right now"), ServiceUnavailable},
		{"429 code", errors.New("status 429: slow down"), RateLimited},
		{"rate_limit code", errors.New(`{"code":"rate_limit_exceeded"}`), RateLimited},
		{"rate limit words", errors.New("Rate limit reached for model"), RateLimited},
		{"503 wins over 429", errors.New("503 after 429"), ServiceUnavailable},
		{"auth", errors.New("401 invalid api key"), Fatal},
		{"provider missing", ErrProviderNotConfigured, Fatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyFailure(tt.err); got != tt.want {
				t.Errorf("ClassifyFailure() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRetryPolicy(t *testing.T) {
	Convey("Given the default retry policy", t, func() {
		p := DefaultRetryPolicy()

		Convey("Service unavailable waits grow exponentially", func() {
			So(p.Delay(ServiceUnavailable, 1), ShouldEqual, 2*time.Second)
			So(p.Delay(ServiceUnavailable, 2), ShouldEqual, 4*time.Second)
			So(p.Delay(ServiceUnavailable, 3), ShouldEqual, 8*time.Second)
		})

		Convey("Rate limit waits grow linearly", func() {
			So(p.Delay(RateLimited, 1), ShouldEqual, 5*time.Second)
			So(p.Delay(RateLimited, 2), ShouldEqual, 10*time.Second)
		})

		Convey("Fatal failures never wait", func() {
			So(p.Delay(Fatal, 1), ShouldEqual, 0)
		})

		Convey("Very late attempts saturate instead of overflowing", func() {
			So(p.Delay(ServiceUnavailable, 33), ShouldEqual, 2*time.Second*(1<<32))
			So(p.Delay(ServiceUnavailable, 64), ShouldEqual, maxRetryDelay)
			So(p.Delay(ServiceUnavailable, 1000), ShouldEqual, maxRetryDelay)
			So(p.Delay(RateLimited, math.MaxInt), ShouldEqual, maxRetryDelay)
		})
	})

	Convey("Given a policy with invalid values", t, func() {
		p := RetryPolicy{MaxRetries: 0, BaseDelay: -time.Second}.Normalized()

		Convey("They fall back to the defaults", func() {
			So(p, ShouldResemble, DefaultRetryPolicy())
		})
	})
}

func TestBackoffController(t *testing.T) {
	Convey("Given a backoff controller with a recording sleeper", t, func() {
		sleeps := &recordedSleeps{}
		observer := newCountingObserver()
		notices := NewNoticeRecorder()
		ctrl := NewBackoffController(DefaultRetryPolicy()).
			WithSleeper(sleeps.sleep).
			WithObserver(observer)

		Convey("When the service is unavailable twice and then answers", func() {
			unavailable := errors.New("503 service unavailable")
			op, calls := scripted("third time lucky", unavailable, unavailable)

			result, err := ctrl.Do(context.Background(), "Llama", op, notices)

			Convey("Then the third result is returned after 2s and 4s waits", func() {
				So(err, ShouldBeNil)
				So(result, ShouldEqual, "third time lucky")
				So(*calls, ShouldEqual, 3)
				So(sleeps.waits, ShouldResemble, []time.Duration{2 * time.Second, 4 * time.Second})
				So(observer.attempts, ShouldEqual, 3)
				So(observer.retries["service_unavailable"], ShouldEqual, 2)
			})

			Convey("And each retry is announced as a warning", func() {
				got := notices.Notices()
				So(len(got), ShouldEqual, 2)
				So(got[0].Level, ShouldEqual, "warning")
				So(got[0].Message, ShouldContainSubstring, "Attempt 1/3")
			})
		})

		Convey("When the operation fails fatally", func() {
			op, calls := scripted("", errors.New("invalid api key"))

			result, err := ctrl.Do(context.Background(), "Llama", op, notices)

			Convey("Then it stops after one attempt without sleeping", func() {
				So(result, ShouldEqual, "")
				So(errors.Is(err, ErrFatalRemote), ShouldBeTrue)
				So(errors.Is(err, ErrRetriesExhausted), ShouldBeFalse)
				So(*calls, ShouldEqual, 1)
				So(sleeps.waits, ShouldBeEmpty)
			})
		})

		Convey("When the operation is always rate limited", func() {
			limited := errors.New("429 rate_limit_exceeded")
			op, calls := scripted("", limited, limited, limited)

			_, err := ctrl.Do(context.Background(), "Llama", op, notices)

			Convey("Then it gives up with the exhaustion sentinel", func() {
				So(errors.Is(err, ErrRetriesExhausted), ShouldBeTrue)
				So(errors.Is(err, limited), ShouldBeTrue)
				So(*calls, ShouldEqual, 3)
				So(sleeps.waits, ShouldResemble, []time.Duration{5 * time.Second, 10 * time.Second})
			})

			Convey("And the give-up is reported as an error notice", func() {
				got := notices.Notices()
				So(got[len(got)-1].Level, ShouldEqual, "error")
				So(got[len(got)-1].Message, ShouldContainSubstring, "Rate limit exceeded")
			})
		})

		Convey("When the operation succeeds with an empty string", func() {
			op, _ := scripted("")

			result, err := ctrl.Do(context.Background(), "Llama", op, nil)

			Convey("Then it is a success, not an exhaustion", func() {
				So(err, ShouldBeNil)
				So(result, ShouldEqual, "")
			})
		})
	})
}
