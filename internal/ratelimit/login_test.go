package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestDisabledLimiterAllowsEverything(t *testing.T) {
	limiter := NewLoginLimiter(nil, 10, time.Minute)
	if limiter.Enabled() {
		t.Fatalf("limiter without redis must be disabled")
	}
	if !limiter.Allow(context.Background(), "a@x.com") {
		t.Fatalf("disabled limiter must allow")
	}
	// No-ops, must not panic.
	limiter.RecordFailure(context.Background(), "a@x.com")
	limiter.Reset(context.Background(), "a@x.com")
}

func TestNilLimiterIsSafe(t *testing.T) {
	var limiter *LoginLimiter
	if limiter.Enabled() {
		t.Fatalf("nil limiter must be disabled")
	}
	if !limiter.Allow(context.Background(), "a@x.com") {
		t.Fatalf("nil limiter must allow")
	}
}
