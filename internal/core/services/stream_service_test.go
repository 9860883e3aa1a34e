package services

import (
	"context"
	"testing"
	"time"

	"camlive/internal/core/domain"
	"camlive/internal/core/ports"
	"camlive/internal/infrastructure/repositories/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStreamService() ports.StreamService {
	return NewStreamService(memory.NewMemoryStreamRepository(), "rtmp://media.test/live", "http://media.test/hls")
}

func TestStreamService_CreateStream(t *testing.T) {
	svc := newTestStreamService()

	stream, err := svc.CreateStream(context.Background(), "performer-1", "Friday Show", "weekly", false)
	require.NoError(t, err)

	assert.NotEmpty(t, stream.ID)
	assert.NotEmpty(t, stream.StreamKey)
	assert.Equal(t, domain.StreamScheduled, stream.Status)
	assert.Equal(t, domain.UserID("performer-1"), stream.PerformerID)

	rtmp, hls := svc.PlaybackURLs(stream)
	assert.Contains(t, rtmp, stream.StreamKey)
	assert.Contains(t, hls, stream.StreamKey)
}

func TestStreamService_Lifecycle(t *testing.T) {
	svc := newTestStreamService()

	stream, err := svc.CreateStream(context.Background(), "performer-1", "Show", "", false)
	require.NoError(t, err)

	started, err := svc.StartStream(context.Background(), stream.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StreamLive, started.Status)
	assert.False(t, started.ActualStartTime.IsZero())

	ended, err := svc.EndStream(context.Background(), stream.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StreamEnded, ended.Status)
	assert.False(t, ended.EndTime.IsZero())
	assert.GreaterOrEqual(t, ended.Duration(time.Now()), int64(0))
}

func TestStreamService_ListFiltersByStatus(t *testing.T) {
	svc := newTestStreamService()

	a, err := svc.CreateStream(context.Background(), "performer-1", "A", "", false)
	require.NoError(t, err)
	_, err = svc.CreateStream(context.Background(), "performer-1", "B", "", false)
	require.NoError(t, err)

	_, err = svc.StartStream(context.Background(), a.ID)
	require.NoError(t, err)

	live, err := svc.ListStreams(context.Background(), domain.StreamLive, 0, 10)
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, a.ID, live[0].ID)

	all, err := svc.ListStreams(context.Background(), "", 0, 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestStreamService_StatsReflectLifecycle(t *testing.T) {
	svc := newTestStreamService()

	stream, err := svc.CreateStream(context.Background(), "performer-1", "Show", "", false)
	require.NoError(t, err)

	stats, err := svc.GetStreamStats(context.Background(), stream.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Duration)

	_, err = svc.StartStream(context.Background(), stream.ID)
	require.NoError(t, err)
	_, err = svc.EndStream(context.Background(), stream.ID)
	require.NoError(t, err)

	stats, err = svc.GetStreamStats(context.Background(), stream.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StreamEnded, stats.Status)
}

func TestStreamService_UnknownStream(t *testing.T) {
	svc := newTestStreamService()

	_, err := svc.GetStream(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrStreamNotFound)

	_, err = svc.StartStream(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrStreamNotFound)
}
