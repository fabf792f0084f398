package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bizsync/pkg/directory/types"

	"github.com/sirupsen/logrus"
)

// NetworkMonitor tracks whether the directory API is reachable and
// triggers a sync pass when connectivity returns. Connectivity is a single
// ambient fact, so one monitor instance serves the whole process.
//
// Transitions are explicit: the monitor moves between offline and online
// on probe results, and the offline-to-online edge is the only automatic
// sync trigger in the system. The pending-count refresh timer lives in
// StatusService and never starts a sync.
type NetworkMonitor struct {
	prober        types.Client
	logger        *logrus.Logger
	probeInterval time.Duration
	settleDelay   time.Duration

	mu       sync.RWMutex
	online   bool
	running  bool
	onOnline func(ctx context.Context)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewNetworkMonitor creates a monitor probing the API at the given
// interval. settleDelay is how long the monitor waits after connectivity
// returns before firing the sync trigger, giving the network stack a
// moment to settle.
func NewNetworkMonitor(prober types.Client, logger *logrus.Logger, probeInterval, settleDelay time.Duration) *NetworkMonitor {
	return &NetworkMonitor{
		prober:        prober,
		logger:        logger,
		probeInterval: probeInterval,
		settleDelay:   settleDelay,
	}
}

// OnOnline registers the callback fired after each offline-to-online
// transition. Must be called before Start.
func (nm *NetworkMonitor) OnOnline(fn func(ctx context.Context)) {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	nm.onOnline = fn
}

// Start reads the initial connectivity state synchronously, then begins
// the background probe loop.
func (nm *NetworkMonitor) Start(ctx context.Context) error {
	nm.mu.Lock()
	if nm.running {
		nm.mu.Unlock()
		return fmt.Errorf("network monitor is already running")
	}
	nm.ctx, nm.cancel = context.WithCancel(ctx)
	nm.running = true
	nm.mu.Unlock()

	// Initial value comes from a probe at startup, the daemon's
	// equivalent of reading the host connectivity indicator.
	initial := nm.probe(nm.ctx)
	nm.mu.Lock()
	nm.online = initial
	nm.mu.Unlock()

	nm.wg.Add(1)
	go nm.probeLoop()

	nm.logger.WithFields(logrus.Fields{
		"online":   initial,
		"interval": nm.probeInterval,
	}).Info("Network monitor started")

	return nil
}

// Stop gracefully stops the probe loop.
func (nm *NetworkMonitor) Stop() {
	nm.mu.Lock()
	if !nm.running {
		nm.mu.Unlock()
		return
	}
	nm.running = false
	cancel := nm.cancel
	nm.mu.Unlock()

	cancel()
	nm.wg.Wait()
	nm.logger.Info("Network monitor stopped")
}

// IsOnline returns the current connectivity state.
func (nm *NetworkMonitor) IsOnline() bool {
	nm.mu.RLock()
	defer nm.mu.RUnlock()
	return nm.online
}

func (nm *NetworkMonitor) probeLoop() {
	defer nm.wg.Done()

	ticker := time.NewTicker(nm.probeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-nm.ctx.Done():
			return
		case <-ticker.C:
			nm.checkTransition()
		}
	}
}

func (nm *NetworkMonitor) checkTransition() {
	current := nm.probe(nm.ctx)

	nm.mu.Lock()
	previous := nm.online
	nm.online = current
	callback := nm.onOnline
	nm.mu.Unlock()

	switch {
	case !previous && current:
		nm.logger.Info("Connectivity restored")
		// The trigger runs detached so a long sync pass cannot stall
		// the probe loop; the engine's own guard serializes passes.
		nm.wg.Add(1)
		go func() {
			defer nm.wg.Done()
			nm.fireOnlineTrigger(callback)
		}()
	case previous && !current:
		// In-flight requests are not cancelled here; the exposed
		// boolean is all that changes.
		nm.logger.Warn("Connectivity lost")
	}
}

// fireOnlineTrigger waits out the settle delay and then invokes the sync
// trigger. Going offline again during the delay aborts the trigger.
func (nm *NetworkMonitor) fireOnlineTrigger(callback func(ctx context.Context)) {
	if callback == nil {
		return
	}

	select {
	case <-nm.ctx.Done():
		return
	case <-time.After(nm.settleDelay):
	}

	if !nm.IsOnline() {
		return
	}

	callback(nm.ctx)
}

func (nm *NetworkMonitor) probe(ctx context.Context) bool {
	err := nm.prober.Ping(ctx)
	if err != nil && IsVerboseLogging(ctx) {
		nm.logger.WithError(err).Debug("Health probe failed")
	}
	return err == nil
}
