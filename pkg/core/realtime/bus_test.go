package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/LENAX/proposal-scheduler/pkg/core/schedule"
	"github.com/LENAX/proposal-scheduler/pkg/core/status"
)

func TestEventBus_StatusChangedRoundTrip(t *testing.T) {
	bus := NewEventBus(false)
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := bus.SubscribeStatusChanged(ctx)
	require.NoError(t, err)

	published := NewTaskStatusChangedEvent("market_analysis", status.StatusInProgress, status.StatusCompleted)
	require.NoError(t, bus.PublishStatusChanged(published))

	select {
	case received := <-events:
		require.Equal(t, published.ID, received.ID)
		require.Equal(t, "market_analysis", received.TaskID)
		require.Equal(t, status.StatusCompleted, received.NewStatus)
	case <-time.After(2 * time.Second):
		t.Fatal("等待状态变更事件超时")
	}
}

func TestEventBus_ScheduleRecomputedRoundTrip(t *testing.T) {
	bus := NewEventBus(false)
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := bus.SubscribeScheduleRecomputed(ctx)
	require.NoError(t, err)

	result := &schedule.ScheduleResult{
		RunID:           "run-1",
		CriticalPath:    []string{"A", "B", "D"},
		MakespanSeconds: 45,
	}
	require.NoError(t, bus.PublishScheduleRecomputed(NewScheduleRecomputedEvent("manual", result)))

	select {
	case received := <-events:
		require.Equal(t, "manual", received.Trigger)
		require.NotNil(t, received.Result)
		require.Equal(t, []string{"A", "B", "D"}, received.Result.CriticalPath)
		require.Equal(t, int64(45), received.Result.MakespanSeconds)
	case <-time.After(2 * time.Second):
		t.Fatal("等待调度结果事件超时")
	}
}

func TestEventBus_SubscribeCancel(t *testing.T) {
	bus := NewEventBus(false)
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	events, err := bus.SubscribeStatusChanged(ctx)
	require.NoError(t, err)

	cancel()

	// 取消订阅后事件通道最终应关闭
	select {
	case _, ok := <-events:
		if ok {
			// 允许读到取消前已入队的事件，继续等通道关闭
			for range events {
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("等待事件通道关闭超时")
	}
}
