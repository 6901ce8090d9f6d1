package lookup

import (
	"context"
	"strings"
)

// Phrases that make a URL look like a credential-harvesting page.
var phishingPatterns = []string{
	"login", "signin", "verify", "confirm", "update",
	"account", "secure", "auth", "password",
}

// Major services never flagged by the simulated blocklist.
var whitelistedDomains = []string{
	"google.com", "facebook.com", "apple.com", "microsoft.com",
	"amazon.com", "github.com", "twitter.com", "linkedin.com",
	"reddit.com", "youtube.com", "instagram.com", "wikipedia.org",
}

// Simulated is the deterministic rule-based provider used for demos and tests.
type Simulated struct{}

func (Simulated) Name() string    { return ModeSimulated }
func (Simulated) Simulated() bool { return true }

// DomainAge treats throwaway TLDs and test hosts as freshly registered.
func (Simulated) DomainAge(_ context.Context, domain string) (int, error) {
	return SimulatedDomainAge(domain), nil
}

// IsListed flags URLs carrying phishing keywords unless the host is a known
// major service.
func (Simulated) IsListed(_ context.Context, rawURL, domain string) (bool, error) {
	return SimulatedListing(rawURL, domain), nil
}

func SimulatedDomainAge(domain string) int {
	d := strings.ToLower(domain)
	if strings.HasSuffix(d, ".xyz") || strings.Contains(d, "test") {
		return 5
	}
	if strings.HasSuffix(d, ".ml") || strings.HasSuffix(d, ".ga") {
		return 2 // Suspicious TLDs - very new
	}
	return EstablishedAgeDays
}

func SimulatedListing(rawURL, domain string) bool {
	u := strings.ToLower(rawURL)
	suspicious := false
	for _, p := range phishingPatterns {
		if strings.Contains(u, p) {
			suspicious = true
			break
		}
	}
	if !suspicious {
		return false
	}

	d := strings.ToLower(domain)
	for _, w := range whitelistedDomains {
		if strings.Contains(d, w) {
			return false
		}
	}
	return true
}
