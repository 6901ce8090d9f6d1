package proxy

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	netproxy "golang.org/x/net/proxy"
)

// proxyConn releases its semaphore slot exactly once when closed.
type proxyConn struct {
	net.Conn
	release     func()
	releaseOnce sync.Once
}

func (pc *proxyConn) Close() error {
	pc.releaseOnce.Do(pc.release)
	return pc.Conn.Close()
}

// DialContext dials addr through the next proxy in the pool, or directly when
// the manager has no proxies.
func (m *Manager) DialContext(ctx context.Context, network, addr string, timeout time.Duration) (net.Conn, error) {
	directDialer := &net.Dialer{Timeout: timeout}

	pURL := m.Next()
	if pURL == nil {
		return directDialer.DialContext(ctx, network, addr)
	}

	select {
	case m.semaphore <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("timeout waiting for proxy slot: %w", ctx.Err())
	}
	release := func() { <-m.semaphore }

	pdialer, err := netproxy.FromURL(pURL, directDialer)
	if err != nil {
		release()
		return nil, fmt.Errorf("proxy %s: %w", pURL.Host, err)
	}

	start := time.Now()
	var conn net.Conn
	if cdialer, ok := pdialer.(netproxy.ContextDialer); ok {
		conn, err = cdialer.DialContext(ctx, network, addr)
	} else {
		conn, err = pdialer.Dial(network, addr)
	}
	if err != nil {
		release()
		slog.Debug("proxy dial failed", "addr", addr, "proxy", pURL.Host, "took", time.Since(start), "err", err)
		return nil, err
	}

	slog.Debug("proxy dial ok", "addr", addr, "proxy", pURL.Host, "took", time.Since(start))
	return &proxyConn{Conn: conn, release: release}, nil
}

// HTTPClient builds a client whose connections go through the proxy pool.
func (m *Manager) HTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				return m.DialContext(ctx, network, addr, timeout)
			},
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
