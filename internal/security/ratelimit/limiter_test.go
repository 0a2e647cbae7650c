package ratelimit

import (
	"runtime"
	"testing"
	"time"
)

func TestAllowEnforcesLimit(t *testing.T) {
	l := NewLimiter(3, time.Minute)
	defer l.Stop()

	for i := 0; i < 3; i++ {
		if !l.Allow("user-1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow("user-1") {
		t.Fatalf("request over the limit should be denied")
	}

	// Another key has its own bucket
	if !l.Allow("user-2") {
		t.Fatalf("a different key must not share the bucket")
	}
}

func TestAllowEmptyKeyUnlimited(t *testing.T) {
	l := NewLimiter(1, time.Minute)
	defer l.Stop()

	for i := 0; i < 10; i++ {
		if !l.Allow("") {
			t.Fatalf("anonymous traffic is not limited by key")
		}
	}
}

func TestAllowStrictSeparateWindow(t *testing.T) {
	l := NewLimiter(100, time.Minute)
	defer l.Stop()

	for i := 0; i < 2; i++ {
		if !l.AllowStrict("1.2.3.4", 2, time.Minute) {
			t.Fatalf("strict request %d should be allowed", i+1)
		}
	}
	if l.AllowStrict("1.2.3.4", 2, time.Minute) {
		t.Fatalf("strict request over the limit should be denied")
	}
	// The regular allowance for the same key is untouched
	if !l.Allow("1.2.3.4") {
		t.Fatalf("regular bucket must be independent of the strict one")
	}
}

func TestStopTerminatesCleanupGoroutine(t *testing.T) {
	before := runtime.NumGoroutine()

	l := NewLimiter(10, time.Minute)
	l.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if runtime.NumGoroutine() <= before {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("cleanup goroutine still running after Stop")
}
