// Package lookup supplies the external facts the risk scorer needs: how old a
// domain is and whether a URL is on a phishing blocklist.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"phishguard/internal/cache"
	"phishguard/internal/proxy"
)

const (
	ModeSimulated = "simulated"
	ModeLive      = "live"

	// EstablishedAgeDays is assumed when no registration date can be found.
	EstablishedAgeDays = 365
)

// ErrAgeUnknown is returned when a registry holds no usable creation date.
var ErrAgeUnknown = errors.New("domain age unknown")

// Provider answers domain-age and blocklist questions for one scan.
type Provider interface {
	DomainAge(ctx context.Context, domain string) (int, error)
	IsListed(ctx context.Context, rawURL, domain string) (bool, error)
	// Simulated reports whether answers come from the rule-based stand-in.
	Simulated() bool
	Name() string
}

// Options selects and tunes a Provider.
type Options struct {
	Mode            string
	RDAPURL         string
	BlocklistURL    string
	BlocklistAPIKey string
	Timeout         time.Duration
	CacheTTL        time.Duration
	Proxy           *proxy.Manager
	Cache           *cache.Store
}

// New builds the provider named by opts.Mode, wrapped in a TTL cache when
// opts.Cache is set.
func New(opts Options) (Provider, error) {
	var p Provider
	switch opts.Mode {
	case "", ModeSimulated:
		p = Simulated{}
	case ModeLive:
		p = NewLive(opts)
	default:
		return nil, fmt.Errorf("unknown lookup mode %q", opts.Mode)
	}

	if opts.Cache != nil && opts.CacheTTL > 0 {
		p = NewCached(p, opts.Cache, opts.CacheTTL)
	}
	return p, nil
}
