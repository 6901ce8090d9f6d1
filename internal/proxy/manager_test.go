package proxy

import (
	"testing"
)

func TestRoundRobin(t *testing.T) {
	list := []string{
		"socks5://1.1.1.1:1080",
		"socks5://2.2.2.2:1080",
	}

	m, err := New(list, 0)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if m.Limit() != 2 {
		t.Errorf("Expected default limit 2, got %d", m.Limit())
	}

	p1 := m.Next()
	if p1.Host != "1.1.1.1:1080" {
		t.Errorf("Expected 1.1.1.1, got %s", p1.Host)
	}

	p2 := m.Next()
	if p2.Host != "2.2.2.2:1080" {
		t.Errorf("Expected 2.2.2.2, got %s", p2.Host)
	}

	p3 := m.Next()
	if p3.Host != "1.1.1.1:1080" {
		t.Errorf("Expected 1.1.1.1 (loop back), got %s", p3.Host)
	}
}

func TestRejectsHTTPProxy(t *testing.T) {
	if _, err := New([]string{"http://1.1.1.1:8000"}, 0); err == nil {
		t.Fatal("expected http proxy to be rejected")
	}
}

func TestEmptyManager(t *testing.T) {
	m, err := New(nil, 0)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if m.Enabled() {
		t.Error("manager without proxies should be disabled")
	}
	if m.Next() != nil {
		t.Error("Next should be nil without proxies")
	}
	if m.Limit() != 10 {
		t.Errorf("Expected failsafe limit 10, got %d", m.Limit())
	}
}
