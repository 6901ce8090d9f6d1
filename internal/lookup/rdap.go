package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultRDAPURL = "https://rdap.org/domain/"

// RDAP resolves domain creation dates. rdap.org acts as a bootstrap that
// redirects to the authoritative TLD server.
type RDAP struct {
	BaseURL string
	Client  *http.Client
	Now     func() time.Time
}

// DomainAge returns the number of whole days since registration.
func (r *RDAP) DomainAge(ctx context.Context, domain string) (int, error) {
	base := r.BaseURL
	if base == "" {
		base = defaultRDAPURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+domain, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/rdap+json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("rdap request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("rdap %s: status %d", domain, resp.StatusCode)
	}

	// Only the events array matters: registration or creation.
	var rdap struct {
		Events []struct {
			Action string `json:"eventAction"`
			Date   string `json:"eventDate"`
		} `json:"events"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rdap); err != nil {
		return 0, fmt.Errorf("rdap decode: %w", err)
	}

	var created time.Time
	for _, event := range rdap.Events {
		if event.Action == "registration" || event.Action == "creation" {
			t, err := time.Parse(time.RFC3339, event.Date)
			if err == nil {
				created = t
				break
			}
		}
	}
	if created.IsZero() {
		return 0, fmt.Errorf("rdap %s: %w", domain, ErrAgeUnknown)
	}

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	days := int(now().Sub(created).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return days, nil
}
