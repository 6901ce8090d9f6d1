package models

import (
	"net/url"
	"strings"
)

type Protocol string

const (
	ProtocolHTTP  Protocol = "http"
	ProtocolHTTPS Protocol = "https"
	ProtocolOther Protocol = "other"
)

// ProtocolFromScheme maps a URL scheme ("https", "https:", "HTTP") onto a Protocol.
func ProtocolFromScheme(scheme string) Protocol {
	switch strings.ToLower(strings.TrimSuffix(scheme, ":")) {
	case "https":
		return ProtocolHTTPS
	case "http":
		return ProtocolHTTP
	default:
		return ProtocolOther
	}
}

// Signals is the per-scan observation bundle produced by a collector.
type Signals struct {
	URL              string   `json:"url"`
	Protocol         Protocol `json:"protocol"`
	HasPasswordInput bool     `json:"hasPasswordInput"`
	Domain           string   `json:"domain"`
}

// SignalsFromURL fills Protocol and Domain from the URL itself. Domain is left
// empty when the URL has no host.
func SignalsFromURL(rawURL string, hasPasswordInput bool) Signals {
	s := Signals{URL: rawURL, HasPasswordInput: hasPasswordInput, Protocol: ProtocolOther}
	if u, err := url.Parse(rawURL); err == nil {
		s.Protocol = ProtocolFromScheme(u.Scheme)
		s.Domain = u.Hostname()
	}
	return s
}

// LookupResult holds the external domain-age and blocklist facts for one scan.
type LookupResult struct {
	AgeInDays int  `json:"ageInDays"`
	IsListed  bool `json:"isListed"`
	// Simulated marks results produced by the rule-based stand-in provider.
	Simulated bool `json:"simulated"`
}
