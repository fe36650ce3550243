package retry

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"
)

// fastConfig keeps backoff sleeps negligible in tests
func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.InitialBackoff = time.Millisecond
	cfg.MaxBackoff = 5 * time.Millisecond
	return cfg
}

func TestWithRetry_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), fastConfig(), func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("WithRetry failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestWithRetry_RetriesRetryableStatus(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), fastConfig(), func() error {
		calls++
		if calls < 3 {
			return NewHTTPError(http.StatusTooManyRequests, "429 Too Many Requests", "")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithRetry failed: %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestWithRetry_DoesNotRetryClientError(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), fastConfig(), func() error {
		calls++
		return NewHTTPError(http.StatusForbidden, "403 Forbidden", "blocked")
	})
	if err == nil {
		t.Fatal("Expected error")
	}
	if calls != 1 {
		t.Errorf("403 must not be retried, got %d calls", calls)
	}
}

func TestWithRetry_WrappedHTTPErrorStillDetected(t *testing.T) {
	// GetStatusCode must be found through fmt.Errorf wrapping
	calls := 0
	err := WithRetry(context.Background(), fastConfig(), func() error {
		calls++
		return fmt.Errorf("render failed: %w", NewHTTPError(http.StatusBadRequest, "400 Bad Request", ""))
	})
	if err == nil {
		t.Fatal("Expected error")
	}
	if calls != 1 {
		t.Errorf("Wrapped 400 must not be retried, got %d calls", calls)
	}
}

func TestWithRetry_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), fastConfig(), func() error {
		calls++
		return NewHTTPError(http.StatusServiceUnavailable, "503 Service Unavailable", "")
	})
	if err == nil {
		t.Fatal("Expected error after exhausting attempts")
	}
	if calls != 3 {
		t.Errorf("Expected 3 attempts, got %d", calls)
	}
}

func TestWithRetry_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	cfg := fastConfig()
	cfg.InitialBackoff = time.Minute // force a long sleep after the first failure

	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- WithRetry(ctx, cfg, func() error {
			calls++
			return NewHTTPError(http.StatusServiceUnavailable, "503", "")
		})
	}()

	// Let the first attempt fail and enter backoff, then cancel
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("WithRetry did not return after context cancellation")
	}
	if calls != 1 {
		t.Errorf("Expected 1 attempt before cancellation, got %d", calls)
	}
}

func TestCalculateBackoff_Caps(t *testing.T) {
	cfg := Config{
		InitialBackoff: time.Second,
		MaxBackoff:     5 * time.Second,
		Multiplier:     2.0,
	}

	if got := calculateBackoff(0, cfg); got != time.Second {
		t.Errorf("Attempt 0: expected 1s, got %v", got)
	}
	if got := calculateBackoff(1, cfg); got != 2*time.Second {
		t.Errorf("Attempt 1: expected 2s, got %v", got)
	}
	if got := calculateBackoff(10, cfg); got != 5*time.Second {
		t.Errorf("Attempt 10: expected cap at 5s, got %v", got)
	}
}

func TestHTTPError_Error(t *testing.T) {
	err := NewHTTPError(503, "503 Service Unavailable", "upstream busy")
	msg := err.Error()
	if msg != "HTTP 503: 503 Service Unavailable - upstream busy" {
		t.Errorf("Unexpected error string: '%s'", msg)
	}

	bare := NewHTTPError(404, "404 Not Found", "")
	if bare.Error() != "HTTP 404: 404 Not Found" {
		t.Errorf("Unexpected error string: '%s'", bare.Error())
	}
}

func TestShouldRetry_TimeoutError(t *testing.T) {
	if !shouldRetry(context.DeadlineExceeded, fastConfig()) {
		t.Error("Deadline exceeded must be retryable")
	}
}
