package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phishguard/internal/models"
)

func TestEnqueuePopFIFO(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewClient(mr.Addr())
	defer c.Close()
	ctx := context.Background()

	first, err := Enqueue(ctx, c, ScanTask{Signals: models.SignalsFromURL("http://a.test", false)})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, models.OriginAutomatic, first.Origin)
	assert.False(t, first.SubmittedAt.IsZero())

	_, err = Enqueue(ctx, c, ScanTask{Signals: models.SignalsFromURL("https://b.test", true), Origin: models.OriginManual})
	require.NoError(t, err)

	depth, err := Depth(ctx, c)
	require.NoError(t, err)
	assert.EqualValues(t, 2, depth)

	got, err := Pop(ctx, c, time.Second)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, "http://a.test", got.Signals.URL)

	got, err = Pop(ctx, c, time.Second)
	require.NoError(t, err)
	assert.Equal(t, models.OriginManual, got.Origin)
	assert.True(t, got.Signals.HasPasswordInput)
}

func TestPopMalformed(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewClient(mr.Addr())
	defer c.Close()

	_, err := mr.Push(QueueName, "{oops")
	require.NoError(t, err)

	_, err = Pop(context.Background(), c, time.Second)
	assert.ErrorIs(t, err, ErrMalformedTask)
}
