package cache

import (
	"testing"
	"time"
)

func TestGetPut(t *testing.T) {
	c := NewMemory()

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss for absent key")
	}

	c.Put("k", "v", time.Minute)
	v, ok := c.Get("k")
	if !ok || v != "v" {
		t.Errorf("Get(k) = %q, %v; want v, true", v, ok)
	}
}

func TestExpiry(t *testing.T) {
	c := NewMemory()
	c.Put("k", "v", 5*time.Millisecond)

	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("expected expired entry to miss")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d after expired read, want 0", c.Len())
	}
}

func TestZeroTTLStoresNothing(t *testing.T) {
	c := NewMemory()
	c.Put("k", "v", 0)
	if _, ok := c.Get("k"); ok {
		t.Error("zero ttl should not store")
	}
}

func TestPutPurgesExpired(t *testing.T) {
	c := NewMemory()
	c.Put("old", "v", time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	c.Put("new", "v", time.Minute)

	if c.Len() != 1 {
		t.Errorf("Len() = %d after purge, want 1", c.Len())
	}
}
