package monitoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHealthChecker_AllHealthy(t *testing.T) {
	checker := NewHealthChecker()
	checker.AddCheck("store", func(ctx context.Context) error { return nil }, time.Second)

	status := checker.CheckAll(context.Background())
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "healthy", status.Checks["store"])
}

func TestHealthChecker_FailingCheck(t *testing.T) {
	checker := NewHealthChecker()
	checker.AddCheck("store", func(ctx context.Context) error { return nil }, time.Second)
	checker.AddCheck("broker", func(ctx context.Context) error { return errors.New("connection refused") }, time.Second)

	status := checker.CheckAll(context.Background())
	assert.Equal(t, "unhealthy", status.Status)
	assert.Equal(t, "healthy", status.Checks["store"])
	assert.Equal(t, "connection refused", status.Checks["broker"])
}

func TestHealthChecker_SlowCheckTimesOut(t *testing.T) {
	checker := NewHealthChecker()
	checker.AddCheck("slow", func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Second):
			return nil
		}
	}, 20*time.Millisecond)

	status := checker.CheckAll(context.Background())
	assert.Equal(t, "unhealthy", status.Status)
}

func TestCollector_NilIsSafe(t *testing.T) {
	var c *Collector
	c.ConnectionOpened()
	c.ConnectionClosed()
	c.AuthFailure("expired")
	c.RoomJoined("room-1")
	c.RoomLeft("room-1")
	c.ChatMessageSent("room-1")
	c.TipBroadcast("room-1")
}
