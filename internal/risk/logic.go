package risk

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"phishguard/internal/logging"
	"phishguard/internal/lookup"
	"phishguard/internal/metrics"
	"phishguard/internal/models"
)

// Outcome bundles a scorer result with the lookup facts it was computed from.
type Outcome struct {
	Assessment models.Assessment
	Lookup     models.LookupResult
	// LookupErr is set when one or both lookups failed and neutral values
	// were substituted.
	LookupErr error
}

// Assess resolves the external lookups for signals, then scores them. The
// caller owns the deadline on ctx; lookups still outstanding when it expires
// are abandoned in favour of neutral values.
func Assess(ctx context.Context, p lookup.Provider, signals models.Signals) Outcome {
	res, err := Resolve(ctx, p, signals)
	return Outcome{
		Assessment: Score(signals, res),
		Lookup:     res,
		LookupErr:  err,
	}
}

// Resolve runs the domain-age and blocklist lookups concurrently.
func Resolve(ctx context.Context, p lookup.Provider, signals models.Signals) (models.LookupResult, error) {
	res := models.LookupResult{
		AgeInDays: lookup.EstablishedAgeDays,
		Simulated: p.Simulated(),
	}

	domain := signals.Domain
	if domain == "" {
		if u, err := url.Parse(signals.URL); err == nil {
			domain = u.Hostname()
		}
	}
	if domain == "" {
		// Nothing to look up; the scorer will fail safe on this URL.
		return res, nil
	}

	log := logging.FromContext(ctx)
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		age     = lookup.EstablishedAgeDays
		listed  bool
		ageErr  error
		listErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		start := time.Now()
		a, err := p.DomainAge(ctx, domain)
		metrics.LookupDuration.WithLabelValues(p.Name(), "domain_age").Observe(time.Since(start).Seconds())

		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			ageErr = err
			return
		}
		age = a
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		start := time.Now()
		l, err := p.IsListed(ctx, signals.URL, domain)
		metrics.LookupDuration.WithLabelValues(p.Name(), "blocklist").Observe(time.Since(start).Seconds())

		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			listErr = err
			return
		}
		listed = l
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		wg.Wait()
	}()

	select {
	case <-done:
	case <-ctx.Done():
		metrics.LookupFailuresTotal.WithLabelValues(p.Name(), "timeout").Inc()
		log.Warn("lookups timed out, using neutral values", "domain", domain, "err", ctx.Err())
		return res, fmt.Errorf("lookups for %s: %w", domain, ctx.Err())
	}

	mu.Lock()
	defer mu.Unlock()

	if ageErr != nil {
		metrics.LookupFailuresTotal.WithLabelValues(p.Name(), "domain_age").Inc()
		log.Warn("domain age lookup failed", "domain", domain, "err", ageErr)
	} else {
		res.AgeInDays = age
	}
	if listErr != nil {
		metrics.LookupFailuresTotal.WithLabelValues(p.Name(), "blocklist").Inc()
		log.Warn("blocklist lookup failed", "url", signals.URL, "err", listErr)
	} else {
		res.IsListed = listed
	}

	return res, errors.Join(ageErr, listErr)
}
