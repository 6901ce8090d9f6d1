// Package scan is the single call site that turns page signals into a stored
// report: lookups, scoring, report creation and history.
package scan

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"phishguard/internal/history"
	"phishguard/internal/logging"
	"phishguard/internal/lookup"
	"phishguard/internal/metrics"
	"phishguard/internal/models"
	"phishguard/internal/report"
	"phishguard/internal/risk"
)

// DefaultTimeout bounds the external lookups of one scan.
const DefaultTimeout = 10 * time.Second

// ErrScanFailed means no report could be produced.
var ErrScanFailed = errors.New("scan failed")

// Collector fetches a page and extracts its signals.
type Collector interface {
	Collect(ctx context.Context, rawURL string) (models.Signals, error)
}

// Service wires the scan pipeline. History may be nil, in which case reports
// are returned but never persisted.
type Service struct {
	Provider  lookup.Provider
	Factory   *report.Factory
	History   *history.Store
	Collector Collector
	Timeout   time.Duration
}

// Result is the outcome of one scan.
type Result struct {
	Report models.Report `json:"report"`
	// Stored is false when the report was dropped as a rapid duplicate or
	// history is disabled.
	Stored bool `json:"stored"`
}

// Scan scores signals and records the report. A storage failure still
// returns the report together with an error wrapping
// history.ErrStorageUnavailable.
func (s *Service) Scan(ctx context.Context, signals models.Signals, origin models.Origin) (Result, error) {
	log := logging.FromContext(ctx)

	if strings.TrimSpace(signals.URL) == "" {
		return Result{}, fmt.Errorf("%w: %w: empty url", ErrScanFailed, report.ErrMalformedURL)
	}
	// Unparseable URLs still get the fail-safe verdict stored.
	fallback := signals.Domain
	if fallback == "" {
		fallback = report.UnknownDomain
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	lookupCtx, cancel := context.WithTimeout(ctx, timeout)
	outcome := risk.Assess(lookupCtx, s.Provider, signals)
	cancel()

	rep, err := s.Factory.Create(report.Input{
		URL:            signals.URL,
		Assessment:     outcome.Assessment,
		Metadata:       report.Metadata(signals, outcome.Lookup, outcome.LookupErr),
		Origin:         origin,
		FallbackDomain: fallback,
	})
	if err != nil {
		log.Error("report creation failed", "url", signals.URL, "err", err)
		return Result{}, fmt.Errorf("%w: %w", ErrScanFailed, err)
	}

	metrics.ScansTotal.WithLabelValues(string(rep.Level), string(rep.Origin)).Inc()
	log.Info("scan scored",
		"id", rep.ID,
		"domain", rep.Domain,
		"score", rep.Score,
		"level", rep.Level,
		"origin", rep.Origin,
	)

	res := Result{Report: rep}
	if s.History == nil {
		return res, nil
	}

	stored, err := s.History.Append(ctx, rep)
	if err != nil {
		log.Error("history append failed", "id", rep.ID, "err", err)
		return res, err
	}
	if !stored {
		log.Debug("duplicate scan dropped", "url", rep.URL)
	}
	res.Stored = stored
	return res, nil
}

// ScanURL collects the page first, then scans it.
func (s *Service) ScanURL(ctx context.Context, rawURL string, origin models.Origin) (Result, error) {
	if s.Collector == nil {
		return Result{}, fmt.Errorf("%w: no collector configured", ErrScanFailed)
	}
	signals, err := s.Collector.Collect(ctx, rawURL)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrScanFailed, err)
	}
	return s.Scan(ctx, signals, origin)
}
