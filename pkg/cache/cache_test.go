package cache

import (
	"testing"
	"time"
)

func TestSetAndGet(t *testing.T) {
	c := New[string]()
	c.Set("k", "v", time.Minute)

	got, ok := c.Get("k")
	if !ok {
		t.Fatalf("expected hit")
	}
	if got != "v" {
		t.Errorf("expected v, got %q", got)
	}
}

func TestGetMissing(t *testing.T) {
	c := New[int]()
	if _, ok := c.Get("nope"); ok {
		t.Fatalf("expected miss")
	}
}

func TestExpiry(t *testing.T) {
	c := New[string]()
	c.Set("k", "v", -time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatalf("expected expired entry to miss")
	}
}

func TestDelete(t *testing.T) {
	c := New[string]()
	c.Set("k", "v", time.Minute)
	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Fatalf("expected miss after delete")
	}
}

func TestInvalidatePrefix(t *testing.T) {
	c := New[string]()
	c.Set("listing:a", "1", time.Minute)
	c.Set("listing:b", "2", time.Minute)
	c.Set("other:c", "3", time.Minute)

	c.Invalidate("listing:")

	if _, ok := c.Get("listing:a"); ok {
		t.Errorf("listing:a should be invalidated")
	}
	if _, ok := c.Get("listing:b"); ok {
		t.Errorf("listing:b should be invalidated")
	}
	if _, ok := c.Get("other:c"); !ok {
		t.Errorf("other:c should survive")
	}
}
