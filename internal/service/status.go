package service

import (
	"context"
	"sync"
	"time"

	"bizsync/internal/metrics"

	"github.com/sirupsen/logrus"
)

// Status is the read surface the UI layer binds to.
type Status struct {
	Online       bool `json:"online"`
	Syncing      bool `json:"syncing"`
	PendingCount int  `json:"pendingCount"`
}

// StatusService keeps the displayed pending-action count fresh and fans
// status snapshots out to subscribers (the websocket feed). Its refresh
// timer only reads the count; it never triggers a sync.
type StatusService struct {
	store           ActionStore
	monitor         *NetworkMonitor
	engine          *SyncEngine
	logger          *logrus.Logger
	refreshInterval time.Duration

	mu           sync.RWMutex
	pendingCount int
	subscribers  map[chan Status]struct{}

	stopCh  chan struct{}
	running bool
}

func NewStatusService(store ActionStore, monitor *NetworkMonitor, engine *SyncEngine, refreshInterval time.Duration, logger *logrus.Logger) *StatusService {
	return &StatusService{
		store:           store,
		monitor:         monitor,
		engine:          engine,
		logger:          logger,
		refreshInterval: refreshInterval,
		subscribers:     map[chan Status]struct{}{},
		stopCh:          make(chan struct{}),
	}
}

// Current returns a point-in-time status snapshot.
func (ss *StatusService) Current() Status {
	ss.mu.RLock()
	pending := ss.pendingCount
	ss.mu.RUnlock()

	return Status{
		Online:       ss.monitor.IsOnline(),
		Syncing:      ss.engine.IsSyncing(),
		PendingCount: pending,
	}
}

// Refresh re-reads the pending count immediately, outside the timer.
// Called after submits and sync passes so the badge does not lag.
func (ss *StatusService) Refresh(ctx context.Context) {
	count, err := ss.store.CountPendingActions(ctx)
	if err != nil {
		ss.logger.WithError(err).Warn("Failed to refresh pending count")
		return
	}

	ss.mu.Lock()
	ss.pendingCount = count
	ss.mu.Unlock()

	metrics.GetRegistry().SetGauge("pending_actions", float64(count), nil, "Queued actions awaiting replay")
	ss.broadcast()
}

// Subscribe returns a channel of status snapshots and a cancel func.
// Slow subscribers miss snapshots rather than blocking the broadcaster.
func (ss *StatusService) Subscribe() (<-chan Status, func()) {
	ch := make(chan Status, 8)

	ss.mu.Lock()
	ss.subscribers[ch] = struct{}{}
	ss.mu.Unlock()

	cancel := func() {
		ss.mu.Lock()
		delete(ss.subscribers, ch)
		ss.mu.Unlock()
	}
	return ch, cancel
}

func (ss *StatusService) broadcast() {
	status := ss.Current()

	ss.mu.RLock()
	defer ss.mu.RUnlock()
	for ch := range ss.subscribers {
		select {
		case ch <- status:
		default:
		}
	}
}

// Start begins the periodic pending-count refresh loop.
func (ss *StatusService) Start(ctx context.Context) {
	ss.mu.Lock()
	if ss.running {
		ss.mu.Unlock()
		ss.logger.Warn("Status service is already running")
		return
	}
	ss.running = true
	ss.mu.Unlock()

	go ss.refreshLoop(ctx)
	ss.logger.WithField("interval", ss.refreshInterval).Info("Status service started")
}

// Stop stops the refresh loop.
func (ss *StatusService) Stop() {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if !ss.running {
		return
	}
	close(ss.stopCh)
	ss.running = false
}

func (ss *StatusService) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(ss.refreshInterval)
	defer ticker.Stop()

	ss.Refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ss.stopCh:
			return
		case <-ticker.C:
			ss.Refresh(ctx)
		}
	}
}
