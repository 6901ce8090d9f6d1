package scan

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phishguard/internal/history"
	"phishguard/internal/lookup"
	"phishguard/internal/models"
	"phishguard/internal/report"
	"phishguard/internal/risk"
)

type fixedCollector struct {
	signals models.Signals
	err     error
}

func (f fixedCollector) Collect(context.Context, string) (models.Signals, error) {
	return f.signals, f.err
}

type brokenBackend struct{}

func (brokenBackend) Get(context.Context) ([]models.Report, error) { return nil, nil }
func (brokenBackend) Set(context.Context, []models.Report) error   { return errors.New("read-only") }

func newService(store *history.Store) *Service {
	clock := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	return &Service{
		Provider: lookup.Simulated{},
		Factory: &report.Factory{Now: func() time.Time {
			clock = clock.Add(time.Minute)
			return clock
		}},
		History: store,
		Timeout: time.Second,
	}
}

func TestScanStoresReport(t *testing.T) {
	ctx := context.Background()
	store := history.New(history.NewMemoryBackend())
	svc := newService(store)

	res, err := svc.Scan(ctx, models.SignalsFromURL("http://login-verify.xyz/account", true), models.OriginManual)
	require.NoError(t, err)
	assert.True(t, res.Stored)
	assert.Equal(t, 100, res.Report.Score)
	assert.Equal(t, models.LevelPhishing, res.Report.Level)
	assert.Equal(t, models.OriginManual, res.Report.Origin)
	assert.True(t, res.Report.Metadata.Simulated)
	assert.Contains(t, res.Report.Reasons, risk.ReasonDemoPrefix+risk.ReasonBlocklist)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, res.Report.ID, list[0].ID)
}

func TestScanSafeSite(t *testing.T) {
	res, err := newService(nil).Scan(context.Background(), models.SignalsFromURL("https://github.com", false), "")
	require.NoError(t, err)
	assert.False(t, res.Stored)
	assert.Equal(t, 0, res.Report.Score)
	assert.Equal(t, models.LevelSafe, res.Report.Level)
	assert.Equal(t, []string{risk.ReasonNoThreats}, res.Report.Reasons)
	assert.Equal(t, models.OriginAutomatic, res.Report.Origin)
}

func TestScanMalformedURL(t *testing.T) {
	ctx := context.Background()
	store := history.New(history.NewMemoryBackend())

	res, err := newService(store).Scan(ctx, models.SignalsFromURL("::not-a-url", false), models.OriginManual)
	require.NoError(t, err)
	assert.True(t, res.Stored)
	assert.Equal(t, risk.FailSafeScore, res.Report.Score)
	assert.Equal(t, models.LevelSuspicious, res.Report.Level)
	assert.Equal(t, []string{risk.ReasonScoringError}, res.Report.Reasons)
	assert.Equal(t, models.Breakdown{}, res.Report.Breakdown)
	assert.Equal(t, report.UnknownDomain, res.Report.Domain)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "::not-a-url", list[0].URL)
	assert.Equal(t, models.LevelSuspicious, list[0].Level)
}

func TestScanEmptyURL(t *testing.T) {
	_, err := newService(nil).Scan(context.Background(), models.Signals{URL: "  "}, models.OriginManual)
	require.ErrorIs(t, err, ErrScanFailed)
	assert.ErrorIs(t, err, report.ErrMalformedURL)
}

func TestScanFailSafeWithFallbackDomain(t *testing.T) {
	signals := models.Signals{URL: "about:blank", Protocol: models.ProtocolOther, Domain: "extension-page"}
	res, err := newService(nil).Scan(context.Background(), signals, models.OriginAutomatic)
	require.NoError(t, err)
	assert.Equal(t, risk.FailSafeScore, res.Report.Score)
	assert.Equal(t, models.LevelSuspicious, res.Report.Level)
	assert.Equal(t, "extension-page", res.Report.Domain)
}

func TestScanStorageFailureStillReturnsReport(t *testing.T) {
	svc := newService(history.New(brokenBackend{}))
	res, err := svc.Scan(context.Background(), models.SignalsFromURL("http://plain.test", false), models.OriginAutomatic)
	require.ErrorIs(t, err, history.ErrStorageUnavailable)
	assert.NotEmpty(t, res.Report.ID)
	assert.False(t, res.Stored)
}

func TestScanURL(t *testing.T) {
	svc := newService(nil)
	svc.Collector = fixedCollector{signals: models.SignalsFromURL("http://form.example.org", true)}

	res, err := svc.ScanURL(context.Background(), "http://form.example.org", models.OriginManual)
	require.NoError(t, err)
	assert.Equal(t, 80, res.Report.Score)

	svc.Collector = fixedCollector{err: errors.New("connection refused")}
	_, err = svc.ScanURL(context.Background(), "http://down.test", models.OriginManual)
	assert.ErrorIs(t, err, ErrScanFailed)

	svc.Collector = nil
	_, err = svc.ScanURL(context.Background(), "http://x.test", models.OriginManual)
	assert.ErrorIs(t, err, ErrScanFailed)
}
