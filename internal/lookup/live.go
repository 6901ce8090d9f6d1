package lookup

import (
	"context"
	"net/http"
	"time"
)

// Live answers lookups over the network: RDAP for age, PhishTank for listing.
type Live struct {
	rdap      *RDAP
	phishTank *PhishTank
}

// NewLive wires both services onto one HTTP client, routed through the proxy
// pool when one is configured.
func NewLive(opts Options) *Live {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &http.Client{Timeout: timeout}
	if opts.Proxy.Enabled() {
		client = opts.Proxy.HTTPClient(timeout)
	}

	return &Live{
		rdap:      &RDAP{BaseURL: opts.RDAPURL, Client: client},
		phishTank: &PhishTank{Endpoint: opts.BlocklistURL, APIKey: opts.BlocklistAPIKey, Client: client},
	}
}

func (l *Live) Name() string    { return ModeLive }
func (l *Live) Simulated() bool { return false }

func (l *Live) DomainAge(ctx context.Context, domain string) (int, error) {
	return l.rdap.DomainAge(ctx, domain)
}

func (l *Live) IsListed(ctx context.Context, rawURL, _ string) (bool, error) {
	return l.phishTank.IsListed(ctx, rawURL)
}
