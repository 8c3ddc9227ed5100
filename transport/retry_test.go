package transport

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	resp, err := retry(context.Background(), RetryConfig{
		MaxAttempts:    5,
		InitialBackoff: time.Millisecond,
	}, func() (*Response, error) {
		attempts++
		if attempts < 3 {
			return nil, NewConnectionError(errors.New("refused"))
		}
		return &Response{StatusCode: 200}, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetry_StopsOnNonRetryable(t *testing.T) {
	attempts := 0
	_, err := retry(context.Background(), RetryConfig{
		MaxAttempts:    5,
		InitialBackoff: time.Millisecond,
	}, func() (*Response, error) {
		attempts++
		return &Response{StatusCode: 404}, ClassifyStatusCode(404, nil)
	})
	if !IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (no retry on 404)", attempts)
	}
}

func TestRetry_ExhaustsBudget(t *testing.T) {
	attempts := 0
	_, err := retry(context.Background(), RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
	}, func() (*Response, error) {
		attempts++
		return nil, NewConnectionError(errors.New("refused"))
	})
	if !IsConnection(err) {
		t.Fatalf("expected last connection error, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetry_HonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := retry(ctx, RetryConfig{MaxAttempts: 3}, func() (*Response, error) {
		t.Fatal("fn should not run with a canceled context")
		return nil, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
