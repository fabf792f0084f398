package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSchedulerRunsCleanupOnStart(t *testing.T) {
	store := newMockStore()
	s := NewScheduler(store, 30, 24, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	waitFor(t, 2*time.Second, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return len(store.cleanupCalls) == 1
	})

	store.mu.Lock()
	assert.Equal(t, []int{30}, store.cleanupCalls)
	store.mu.Unlock()

	cancel()
	<-done
}

func TestSchedulerStopSignal(t *testing.T) {
	store := newMockStore()
	s := NewScheduler(store, 30, 24, testLogger())

	done := make(chan struct{})
	go func() {
		s.Start(context.Background())
		close(done)
	}()

	waitFor(t, 2*time.Second, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return len(store.cleanupCalls) == 1
	})

	s.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestSchedulerCleanupFailureKeepsRunning(t *testing.T) {
	store := newMockStore()
	store.cleanupErr = errors.New("disk gone")
	s := NewScheduler(store, 30, 24, testLogger())

	done := make(chan struct{})
	go func() {
		s.Start(context.Background())
		close(done)
	}()

	waitFor(t, 2*time.Second, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return len(store.cleanupCalls) == 1
	})

	s.Stop()
	<-done
}

func TestSchedulerDefaultsInterval(t *testing.T) {
	s := NewScheduler(newMockStore(), 30, 0, testLogger())
	assert.Equal(t, 24, s.intervalHours)
}
