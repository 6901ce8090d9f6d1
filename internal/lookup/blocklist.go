package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultPhishTankURL = "https://checkurl.phishtank.com/checkurl/"

// PhishTank queries the PhishTank checkurl API.
type PhishTank struct {
	Endpoint string
	APIKey   string
	Client   *http.Client
	// Backoff is the pause before retrying a rate-limited request.
	Backoff time.Duration
}

type phishTankResponse struct {
	Results struct {
		InDatabase bool `json:"in_database"`
		Valid      bool `json:"valid"`
	} `json:"results"`
}

// IsListed reports whether rawURL is a verified phish. One retry is made on
// transport errors, 429 and 5xx.
func (p *PhishTank) IsListed(ctx context.Context, rawURL string) (bool, error) {
	endpoint := p.Endpoint
	if endpoint == "" {
		endpoint = defaultPhishTankURL
	}
	backoff := p.Backoff
	if backoff <= 0 {
		backoff = 1600 * time.Millisecond
	}

	form := url.Values{}
	form.Set("url", rawURL)
	form.Set("format", "json")
	if p.APIKey != "" {
		form.Set("app_key", p.APIKey)
	}

	var lastErr error
	for attempt := 1; attempt <= 2; attempt++ {
		if attempt == 2 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return false, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
		if err != nil {
			return false, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("User-Agent", "phishtank/phishguard")

		resp, err := p.Client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("phishtank request: %w", err)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			var body phishTankResponse
			err := json.NewDecoder(resp.Body).Decode(&body)
			resp.Body.Close()
			if err != nil {
				return false, fmt.Errorf("phishtank decode: %w", err)
			}
			return body.Results.InDatabase && body.Results.Valid, nil

		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			resp.Body.Close()
			slog.Debug("phishtank retryable status", "status", resp.StatusCode, "attempt", attempt)
			lastErr = fmt.Errorf("phishtank: status %d", resp.StatusCode)
			continue

		default:
			resp.Body.Close()
			return false, fmt.Errorf("phishtank: status %d", resp.StatusCode)
		}
	}
	return false, lastErr
}
