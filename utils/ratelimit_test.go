package utils

import (
	"testing"
	"time"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.Allow("client") {
			t.Fatalf("request %d unexpectedly limited", i+1)
		}
	}
	if rl.Allow("client") {
		t.Error("expected the fourth request to be limited")
	}

	// Keys are limited independently
	if !rl.Allow("other") {
		t.Error("expected a fresh key to be allowed")
	}
}

func TestRateLimiterReset(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	if !rl.Allow("client") {
		t.Fatal("first request unexpectedly limited")
	}
	if rl.Allow("client") {
		t.Fatal("second request unexpectedly allowed")
	}

	rl.Reset("client")
	if !rl.Allow("client") {
		t.Error("expected request to be allowed after reset")
	}
}

func TestRateLimiterGetRemaining(t *testing.T) {
	rl := NewRateLimiter(5, time.Minute)

	if got := rl.GetRemaining("client"); got != 5 {
		t.Errorf("expected 5 remaining, got %d", got)
	}

	rl.Allow("client")
	rl.Allow("client")
	if got := rl.GetRemaining("client"); got != 3 {
		t.Errorf("expected 3 remaining, got %d", got)
	}
}
