package resilience

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	apperrors "github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/errors"
)

var errBoom = errors.New("boom")

func TestCircuitBreakerOpensAndRecovers(t *testing.T) {
	var transitions []string
	cb := NewCircuitBreaker("redis", CircuitBreakerConfig{
		FailureThreshold: 2,
		ResetTimeout:     20 * time.Millisecond,
		OnStateChange: func(name string, from, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})
	fail := func() error { return errBoom }
	succeed := func() error { return nil }

	cb.Execute(fail)
	if cb.GetState() != StateClosed {
		t.Fatal("one failure should not open the circuit")
	}
	cb.Execute(fail)
	if cb.GetState() != StateOpen {
		t.Fatal("threshold failures should open the circuit")
	}
	if err := cb.Execute(succeed); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("open circuit returned %v", err)
	}

	time.Sleep(30 * time.Millisecond)
	if err := cb.Execute(succeed); err != nil {
		t.Fatalf("half-open probe: %v", err)
	}
	if cb.GetState() != StateClosed {
		t.Fatalf("state after successful probe = %s", cb.GetState())
	}
	want := "closed->open,open->half-open,half-open->closed"
	if got := strings.Join(transitions, ","); got != want {
		t.Fatalf("transitions = %s, want %s", got, want)
	}
}

func TestCircuitBreakerReset(t *testing.T) {
	cb := NewCircuitBreaker("x", CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: time.Hour})
	cb.Execute(func() error { return errBoom })
	cb.Reset()
	if cb.GetState() != StateClosed || cb.Name() != "x" {
		t.Fatalf("after Reset: %s %s", cb.GetState(), cb.Name())
	}
}

func TestCircuitBreakerIgnoresCancellation(t *testing.T) {
	cb := NewCircuitBreaker("redis", CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: time.Hour})
	err := cb.Execute(func() error { return fmt.Errorf("lookup: %w", context.Canceled) })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Execute = %v", err)
	}
	if c := cb.Counts(); c.State != StateClosed || c.ConsecutiveFailures != 0 {
		t.Fatalf("cancellation counted as failure: %+v", c)
	}
}

func TestCircuitBreakerFailedProbeReopens(t *testing.T) {
	now := time.Unix(1000, 0)
	cb := NewCircuitBreaker("redis", CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: time.Minute})
	cb.now = func() time.Time { return now }

	cb.Execute(func() error { return errBoom })
	now = now.Add(time.Minute)
	if err := cb.Execute(func() error { return errBoom }); !errors.Is(err, errBoom) {
		t.Fatalf("probe = %v, want the backend error", err)
	}
	c := cb.Counts()
	if c.State != StateOpen || !c.OpenedAt.Equal(now) {
		t.Fatalf("after failed probe: %+v", c)
	}
	if err := cb.Execute(func() error { return nil }); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("Execute while reopened = %v", err)
	}
}

func TestRetry(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

	calls := 0
	err := Retry(context.Background(), "flaky", cfg, func() error {
		calls++
		if calls < 3 {
			return errBoom
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Fatalf("Retry = %v after %d calls", err, calls)
	}

	calls = 0
	err = Retry(context.Background(), "broken", cfg, func() error {
		calls++
		return errBoom
	})
	if !errors.Is(err, errBoom) || calls != 3 {
		t.Fatalf("Retry = %v after %d calls", err, calls)
	}

	calls = 0
	err = Retry(context.Background(), "permanent", cfg, func() error {
		calls++
		return Permanent(errBoom)
	})
	if err != errBoom || calls != 1 {
		t.Fatalf("permanent error: %v after %d calls", err, calls)
	}
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, "cancelled", RetryConfig{MaxAttempts: 5, InitialDelay: time.Second}, func() error {
		return errBoom
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Retry = %v", err)
	}
}

func TestWithTimeout(t *testing.T) {
	err := WithTimeout(context.Background(), 10*time.Millisecond, "slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, context.DeadlineExceeded) || !errors.Is(err, apperrors.ErrTimeout) {
		t.Fatalf("WithTimeout = %v", err)
	}
	if got := apperrors.HTTPStatusCode(err); got != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", got)
	}
	if err := WithTimeout(context.Background(), time.Second, "fast", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("fast = %v", err)
	}
}
