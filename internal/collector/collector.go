// Package collector turns a live page into the Signals the scorer consumes.
package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"phishguard/internal/models"
)

const userAgent = "PhishGuard/1.0 (+risk-scanner)"

// Collector fetches pages over HTTP.
type Collector struct {
	client *http.Client
}

// New wires an HTTP client; nil means a plain client with a 15s timeout.
func New(client *http.Client) *Collector {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Collector{client: client}
}

// Collect fetches rawURL and inspects it. Redirects are followed and the
// signals describe the page that was finally served.
func (c *Collector) Collect(ctx context.Context, rawURL string) (models.Signals, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return models.Signals{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return models.Signals{}, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return models.Signals{}, fmt.Errorf("page returned %s", resp.Status)
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	return FromHTML(finalURL, resp.Body)
}

// FromHTML inspects an already fetched document.
func FromHTML(rawURL string, body io.Reader) (models.Signals, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return models.Signals{}, fmt.Errorf("parse document: %w", err)
	}
	return models.SignalsFromURL(rawURL, hasPasswordInput(doc)), nil
}

func hasPasswordInput(doc *goquery.Document) bool {
	found := false
	doc.Find("input").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if t, ok := s.Attr("type"); ok && strings.EqualFold(strings.TrimSpace(t), "password") {
			found = true
			return false
		}
		return true
	})
	return found
}
