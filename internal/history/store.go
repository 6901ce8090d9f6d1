// Package history keeps the bounded, newest-first record of past verdicts.
//
// Append is the only mutator. It drops a report whose URL matches the newest
// entry within DedupWindow, inserts everything else at the front and trims
// the history to Capacity.
package history

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"phishguard/internal/metrics"
	"phishguard/internal/models"
)

const (
	Capacity    = 50
	DedupWindow = 5 * time.Second
)

// ErrStorageUnavailable wraps any failure of the underlying backend.
var ErrStorageUnavailable = errors.New("history storage unavailable")

// Backend persists the whole history array. Set must replace it atomically:
// readers never observe a partial write.
type Backend interface {
	Get(ctx context.Context) ([]models.Report, error)
	Set(ctx context.Context, reports []models.Report) error
}

// UpdateFunc maps the current history onto the next one. changed=false means
// nothing needs to be written.
type UpdateFunc func(current []models.Report) (next []models.Report, changed bool)

// Updater is implemented by backends that can run a read-modify-write as a
// single transaction, which keeps Append safe across processes.
type Updater interface {
	Update(ctx context.Context, fn UpdateFunc) error
}

// Store is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	backend Backend
}

func New(backend Backend) *Store {
	return &Store{backend: backend}
}

// Append records r unless it duplicates the newest entry. stored reports
// whether the history changed.
func (s *Store) Append(ctx context.Context, r models.Report) (stored bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var size int
	mutate := func(current []models.Report) ([]models.Report, bool) {
		next, changed := apply(current, r.Clone())
		stored, size = changed, len(next)
		return next, changed
	}

	if u, ok := s.backend.(Updater); ok {
		err = u.Update(ctx, mutate)
	} else {
		var current []models.Report
		current, err = s.backend.Get(ctx)
		if err == nil {
			if next, changed := mutate(current); changed {
				err = s.backend.Set(ctx, next)
			}
		}
	}

	if err != nil {
		metrics.HistoryAppendsTotal.WithLabelValues("error").Inc()
		return false, fmt.Errorf("%w: append %s: %w", ErrStorageUnavailable, r.ID, err)
	}

	if stored {
		metrics.HistoryAppendsTotal.WithLabelValues("stored").Inc()
		metrics.HistorySize.Set(float64(size))
	} else {
		metrics.HistoryAppendsTotal.WithLabelValues("duplicate").Inc()
	}
	return stored, nil
}

// List returns the history newest first. The slice is a copy.
func (s *Store) List(ctx context.Context) ([]models.Report, error) {
	current, err := s.backend.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list: %v", ErrStorageUnavailable, err)
	}
	if len(current) > Capacity {
		current = current[:Capacity]
	}

	out := make([]models.Report, len(current))
	for i, r := range current {
		out[i] = r.Clone()
	}
	return out, nil
}

// FindByURL returns the newest report whose URL matches exactly.
func (s *Store) FindByURL(ctx context.Context, rawURL string) (models.Report, bool, error) {
	reports, err := s.List(ctx)
	if err != nil {
		return models.Report{}, false, err
	}
	for _, r := range reports {
		if r.URL == rawURL {
			return r, true, nil
		}
	}
	return models.Report{}, false, nil
}

func apply(current []models.Report, r models.Report) ([]models.Report, bool) {
	if len(current) > 0 && isDuplicate(current[0], r) {
		return current, false
	}

	n := min(len(current)+1, Capacity)
	next := make([]models.Report, 0, n)
	next = append(next, r)
	next = append(next, current[:n-1]...)
	return next, true
}

func isDuplicate(newest, incoming models.Report) bool {
	if newest.URL != incoming.URL {
		return false
	}
	delta := incoming.Timestamp.Sub(newest.Timestamp)
	if delta < 0 {
		delta = -delta
	}
	return delta < DedupWindow
}
