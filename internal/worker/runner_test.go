package worker

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phishguard/internal/history"
	"phishguard/internal/lookup"
	"phishguard/internal/models"
	"phishguard/internal/queue"
	"phishguard/internal/report"
	"phishguard/internal/scan"
)

func newRunner(t *testing.T) (*Runner, *history.Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := queue.NewClient(mr.Addr())
	t.Cleanup(func() { client.Close() })

	store := history.New(history.NewMemoryBackend())
	return &Runner{
		Client: client,
		Scanner: &scan.Service{
			Provider: lookup.Simulated{},
			Factory:  report.NewFactory(),
			History:  store,
			Timeout:  time.Second,
		},
		ErrorBackoff: 10 * time.Millisecond,
	}, store
}

func TestProcessOneStoresReport(t *testing.T) {
	ctx := context.Background()
	r, store := newRunner(t)

	_, err := queue.Enqueue(ctx, r.Client, queue.ScanTask{
		Signals: models.SignalsFromURL("http://secure-login.ml/verify", true),
	})
	require.NoError(t, err)

	processed, err := r.ProcessOne(ctx)
	require.NoError(t, err)
	assert.True(t, processed)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.LevelPhishing, list[0].Level)
	assert.Equal(t, models.OriginAutomatic, list[0].Origin)
}

func TestProcessOneStoresFailSafeVerdict(t *testing.T) {
	ctx := context.Background()
	r, store := newRunner(t)

	_, err := queue.Enqueue(ctx, r.Client, queue.ScanTask{Signals: models.Signals{URL: "no host here"}})
	require.NoError(t, err)

	processed, err := r.ProcessOne(ctx)
	require.NoError(t, err)
	assert.True(t, processed)

	depth, err := queue.Depth(ctx, r.Client)
	require.NoError(t, err)
	assert.Zero(t, depth)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.LevelSuspicious, list[0].Level)
	assert.Equal(t, 50, list[0].Score)
}

func TestStartStopsOnCancel(t *testing.T) {
	r, store := newRunner(t)
	ctx, cancel := context.WithCancel(context.Background())

	_, err := queue.Enqueue(ctx, r.Client, queue.ScanTask{Signals: models.SignalsFromURL("https://example.org", false)})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- r.Start(ctx) }()

	require.Eventually(t, func() bool {
		list, err := store.List(context.Background())
		return err == nil && len(list) == 1
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
