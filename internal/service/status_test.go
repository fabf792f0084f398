package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStatusService(t *testing.T, store *mockStore, online bool) *StatusService {
	t.Helper()

	prober := &flakyProber{}
	prober.reachable.Store(online)
	monitor := NewNetworkMonitor(prober, testLogger(), time.Minute, time.Millisecond)
	require.NoError(t, monitor.Start(context.Background()))
	t.Cleanup(monitor.Stop)

	engine := NewSyncEngine(store, &mockClient{}, nil, monitor.IsOnline, time.Second, testLogger())
	return NewStatusService(store, monitor, engine, time.Minute, testLogger())
}

func TestStatusCurrent(t *testing.T) {
	store := newMockStore()
	ss := newTestStatusService(t, store, true)

	status := ss.Current()
	assert.True(t, status.Online)
	assert.False(t, status.Syncing)
	assert.Zero(t, status.PendingCount, "count is zero until the first refresh")
}

func TestStatusRefreshUpdatesPendingCount(t *testing.T) {
	store := newMockStore()
	require.NoError(t, store.EnqueueAction(context.Background(), queuedAction("a1", time.Now())))
	require.NoError(t, store.EnqueueAction(context.Background(), queuedAction("a2", time.Now())))

	ss := newTestStatusService(t, store, false)
	ss.Refresh(context.Background())

	status := ss.Current()
	assert.False(t, status.Online)
	assert.Equal(t, 2, status.PendingCount)
}

func TestStatusRefreshCountFailureKeepsLastValue(t *testing.T) {
	store := newMockStore()
	require.NoError(t, store.EnqueueAction(context.Background(), queuedAction("a1", time.Now())))

	ss := newTestStatusService(t, store, false)
	ss.Refresh(context.Background())
	require.Equal(t, 1, ss.Current().PendingCount)

	store.mu.Lock()
	store.countErr = errors.New("disk gone")
	store.mu.Unlock()

	ss.Refresh(context.Background())
	assert.Equal(t, 1, ss.Current().PendingCount)
}

func TestStatusSubscribeReceivesBroadcasts(t *testing.T) {
	store := newMockStore()
	require.NoError(t, store.EnqueueAction(context.Background(), queuedAction("a1", time.Now())))

	ss := newTestStatusService(t, store, false)
	updates, cancel := ss.Subscribe()
	defer cancel()

	ss.Refresh(context.Background())

	select {
	case status := <-updates:
		assert.Equal(t, 1, status.PendingCount)
	case <-time.After(time.Second):
		t.Fatal("no snapshot broadcast after refresh")
	}
}

func TestStatusUnsubscribedChannelStopsReceiving(t *testing.T) {
	store := newMockStore()
	ss := newTestStatusService(t, store, false)

	updates, cancel := ss.Subscribe()
	cancel()

	ss.Refresh(context.Background())

	select {
	case _, ok := <-updates:
		if ok {
			t.Fatal("cancelled subscriber still received a snapshot")
		}
	default:
	}
}

func TestStatusSlowSubscriberDoesNotBlockBroadcast(t *testing.T) {
	store := newMockStore()
	ss := newTestStatusService(t, store, false)

	// Never drained; the buffer fills and broadcasts start dropping.
	_, cancel := ss.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 20; i++ {
			ss.Refresh(context.Background())
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked on a slow subscriber")
	}
}

func TestStatusStartStop(t *testing.T) {
	store := newMockStore()
	require.NoError(t, store.EnqueueAction(context.Background(), queuedAction("a1", time.Now())))

	ss := newTestStatusService(t, store, false)

	ctx, cancelCtx := context.WithCancel(context.Background())
	defer cancelCtx()

	ss.Start(ctx)
	defer ss.Stop()

	// The loop does an immediate refresh on start.
	waitFor(t, 2*time.Second, func() bool { return ss.Current().PendingCount == 1 })
}
