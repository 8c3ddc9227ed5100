package transport

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifyStatusCode(t *testing.T) {
	tests := []struct {
		status    int
		wantCode  ErrorCode
		retryable bool
		wantNil   bool
	}{
		{200, 0, false, true},
		{204, 0, false, true},
		{400, ErrCodeValidation, false, false},
		{401, ErrCodeAuth, false, false},
		{403, ErrCodeAuth, false, false},
		{404, ErrCodeNotFound, false, false},
		{422, ErrCodeValidation, false, false},
		{429, ErrCodeRateLimit, true, false},
		{500, ErrCodeServer, true, false},
		{503, ErrCodeServer, true, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.status), func(t *testing.T) {
			err := ClassifyStatusCode(tt.status, nil)
			if tt.wantNil {
				if err != nil {
					t.Fatalf("expected nil error for %d, got %v", tt.status, err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error for %d", tt.status)
			}
			if err.Code != tt.wantCode {
				t.Errorf("code = %v, want %v", err.Code, tt.wantCode)
			}
			if err.Retryable != tt.retryable {
				t.Errorf("retryable = %v, want %v", err.Retryable, tt.retryable)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	inner := errors.New("dial refused")
	err := NewConnectionError(inner)
	if !errors.Is(err, inner) {
		t.Error("expected errors.Is to find the wrapped error")
	}
}

func TestError_Message(t *testing.T) {
	err := NewAuthError(401, nil)
	want := "transport: auth (HTTP 401): HTTP 401"
	if err.Error() != want {
		t.Errorf("message = %q, want %q", err.Error(), want)
	}

	cerr := NewConnectionError(errors.New("refused"))
	if cerr.Error() != "transport: connection: refused" {
		t.Errorf("message = %q", cerr.Error())
	}
}

func TestErrorHelpers(t *testing.T) {
	if !IsAuth(NewAuthError(401, nil)) {
		t.Error("IsAuth should match auth errors")
	}
	if IsAuth(NewValidationError("nope")) {
		t.Error("IsAuth should not match validation errors")
	}
	if !IsRetryable(ClassifyStatusCode(500, nil)) {
		t.Error("5xx should be retryable")
	}
	if IsRetryable(ClassifyStatusCode(404, nil)) {
		t.Error("404 should not be retryable")
	}
	if IsTimeout(errors.New("plain")) {
		t.Error("plain errors should not match IsTimeout")
	}
}
