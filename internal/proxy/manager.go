package proxy

import (
	"fmt"
	"net/url"
	"sync/atomic"
)

// Manager rotates outbound lookup traffic across a pool of SOCKS5 proxies and
// caps the number of concurrent proxied connections.
type Manager struct {
	proxies   []*url.URL
	counter   uint64
	semaphore chan struct{}
}

// New parses the proxy list. A limit <= 0 defaults to one slot per proxy.
func New(proxyList []string, limit int) (*Manager, error) {
	var parsed []*url.URL

	for _, p := range proxyList {
		if p == "" {
			continue
		}
		u, err := url.Parse(p)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL '%s': %w", p, err)
		}
		if u.Scheme != "socks5" && u.Scheme != "socks5h" {
			return nil, fmt.Errorf("unsupported proxy scheme %q in '%s'", u.Scheme, p)
		}
		parsed = append(parsed, u)
	}

	if limit <= 0 {
		limit = len(parsed)
		if limit == 0 {
			limit = 10 // Failsafe
		}
	}

	return &Manager{
		proxies:   parsed,
		semaphore: make(chan struct{}, limit),
	}, nil
}

// Next returns the next proxy in round-robin order, or nil when none are set.
func (m *Manager) Next() *url.URL {
	if m == nil || len(m.proxies) == 0 {
		return nil
	}
	n := atomic.AddUint64(&m.counter, 1)
	return m.proxies[(n-1)%uint64(len(m.proxies))]
}

func (m *Manager) Enabled() bool {
	return m != nil && len(m.proxies) > 0
}

// Limit reports the concurrent connection cap.
func (m *Manager) Limit() int {
	if m == nil {
		return 0
	}
	return cap(m.semaphore)
}
