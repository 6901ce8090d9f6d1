// Package report turns scorer output into canonical, versioned Report records.
package report

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"phishguard/internal/models"
	"phishguard/internal/risk"
)

// ErrMalformedURL means no domain could be derived for a report, not even a
// fallback. It is the only failure that leaves the core.
var ErrMalformedURL = errors.New("malformed url")

// UnknownDomain is the fallback domain for URLs with no parseable host.
const UnknownDomain = "unknown"

// Input carries everything a report is built from.
type Input struct {
	URL        string
	Assessment models.Assessment
	Metadata   models.ScanMetadata
	Origin     models.Origin
	// FallbackDomain is used when URL has no parseable host.
	FallbackDomain string
}

// Factory creates reports. The zero value uses the wall clock.
type Factory struct {
	Now func() time.Time
}

func NewFactory() *Factory {
	return &Factory{Now: time.Now}
}

// Create builds a new immutable report.
func (f *Factory) Create(in Input) (models.Report, error) {
	domain, err := DomainOf(in.URL)
	if err != nil {
		if in.FallbackDomain == "" {
			return models.Report{}, err
		}
		domain = in.FallbackDomain
	}

	now := time.Now
	if f != nil && f.Now != nil {
		now = f.Now
	}
	ts := now().UTC()

	score := risk.Clamp(in.Assessment.Score)

	reasons := append([]string(nil), in.Assessment.Reasons...)
	if len(reasons) == 0 {
		reasons = []string{risk.ReasonNoThreats}
	}

	origin := in.Origin
	if origin == "" {
		origin = models.OriginAutomatic
	}

	return models.Report{
		SchemaVersion: models.ReportSchemaVersion,
		ID:            NewID(ts),
		URL:           in.URL,
		Domain:        domain,
		Timestamp:     ts,
		Score:         score,
		Level:         models.LevelFor(score),
		Reasons:       reasons,
		Breakdown:     in.Assessment.Breakdown,
		Metadata:      in.Metadata,
		Origin:        origin,
	}, nil
}

// Metadata echoes the scan inputs into the shape stored on a report.
func Metadata(signals models.Signals, lookup models.LookupResult, lookupErr error) models.ScanMetadata {
	m := models.ScanMetadata{
		Protocol:         signals.Protocol,
		HasPasswordInput: signals.HasPasswordInput,
		DomainAgeDays:    lookup.AgeInDays,
		IsNewDomain:      lookup.AgeInDays < risk.NewDomainThresholdDays,
		PhishTankListed:  lookup.IsListed,
		Simulated:        lookup.Simulated,
	}
	if lookupErr != nil {
		m.LookupError = lookupErr.Error()
	}
	return m
}

// NewID returns "report_<unix-ms>_<9 random chars>".
func NewID(t time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return "report_" + strconv.FormatInt(t.UnixMilli(), 10) + "_" + suffix
}

// DomainOf extracts the host from rawURL.
func DomainOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedURL, err)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("%w: %q has no host", ErrMalformedURL, rawURL)
	}
	return u.Hostname(), nil
}
