package cache

import (
	"testing"
	"time"
)

func TestGetRespectsTTL(t *testing.T) {
	s := New()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.Set("age:example.com", 365, time.Minute)

	v, ok := s.Get("age:example.com")
	if !ok || v.(int) != 365 {
		t.Fatalf("expected cached 365, got %v (ok=%v)", v, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := s.Get("age:example.com"); ok {
		t.Fatal("expected expired entry to miss")
	}
}

func TestCleanupDropsExpired(t *testing.T) {
	s := New()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.Set("short", true, time.Second)
	s.Set("long", true, time.Hour)

	now = now.Add(time.Minute)
	s.Cleanup()

	if s.Len() != 1 {
		t.Fatalf("expected 1 entry after cleanup, got %d", s.Len())
	}
	if _, ok := s.Get("long"); !ok {
		t.Fatal("long-lived entry should survive cleanup")
	}
}

func TestBoundEvictsSoonestExpiry(t *testing.T) {
	s := NewBounded(2)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.Set("a", 1, time.Hour)
	s.Set("b", 2, time.Minute)
	s.Set("c", 3, time.Hour)

	if s.Len() != 2 {
		t.Fatalf("expected bound of 2, got %d", s.Len())
	}
	if _, ok := s.Get("b"); ok {
		t.Fatal("entry closest to expiry should have been evicted")
	}
	for _, k := range []string{"a", "c"} {
		if _, ok := s.Get(k); !ok {
			t.Fatalf("expected %s to survive", k)
		}
	}
}

func TestBoundPrefersExpired(t *testing.T) {
	s := NewBounded(2)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.Set("stale", 1, time.Second)
	s.Set("fresh", 2, time.Hour)
	now = now.Add(time.Minute)

	s.Set("new", 3, time.Hour)
	if _, ok := s.Get("fresh"); !ok {
		t.Fatal("live entry evicted while an expired one was available")
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", s.Len())
	}

	s.Set("fresh", 4, time.Hour)
	if v, _ := s.Get("fresh"); v.(int) != 4 {
		t.Fatal("overwrite of an existing key must not evict")
	}
	s.Delete("fresh")
	if _, ok := s.Get("fresh"); ok {
		t.Fatal("deleted entry still present")
	}
}
