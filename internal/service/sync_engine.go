package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	apperrors "bizsync/internal/errors"
	"bizsync/internal/metrics"
	"bizsync/internal/models"
	"bizsync/internal/privacy"
	"bizsync/pkg/directory/types"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// SyncSummary reports what a single sync pass did.
type SyncSummary struct {
	Attempted int  `json:"attempted"`
	Synced    int  `json:"synced"`
	Retried   int  `json:"retried"`
	Abandoned int  `json:"abandoned"`
	Skipped   bool `json:"skipped"`
}

// SyncEngine drains the queued-action partition against the directory
// API. At most one pass runs at a time process-wide; a trigger arriving
// while a pass is in progress is a no-op.
type SyncEngine struct {
	store         ActionStore
	client        types.Client
	notifier      *NotificationService
	logger        *logrus.Logger
	online        func() bool
	replayTimeout time.Duration

	syncing atomic.Bool
}

// NewSyncEngine creates a sync engine. online reports current
// connectivity; a pass triggered while offline returns immediately.
func NewSyncEngine(store ActionStore, client types.Client, notifier *NotificationService, online func() bool, replayTimeout time.Duration, logger *logrus.Logger) *SyncEngine {
	return &SyncEngine{
		store:         store,
		client:        client,
		notifier:      notifier,
		logger:        logger,
		online:        online,
		replayTimeout: replayTimeout,
	}
}

// IsSyncing reports whether a pass is currently iterating the store.
func (se *SyncEngine) IsSyncing() bool {
	return se.syncing.Load()
}

// SyncNow runs one sync pass. Every queued action is attempted exactly
// once per pass in chronological order; a single action's failure never
// aborts the pass. Returns the pass summary; a skipped pass (offline, or
// another pass in flight) returns Skipped=true with no error.
func (se *SyncEngine) SyncNow(ctx context.Context) (SyncSummary, error) {
	if !se.online() {
		return SyncSummary{Skipped: true}, nil
	}
	if !se.syncing.CompareAndSwap(false, true) {
		return SyncSummary{Skipped: true}, nil
	}
	defer se.syncing.Store(false)

	tracer := otel.Tracer("bizsync/sync")
	ctx, span := tracer.Start(ctx, "sync.pass")
	defer span.End()

	actions, err := se.store.GetAllActions(ctx)
	if err != nil {
		span.RecordError(err)
		return SyncSummary{}, fmt.Errorf("failed to read queued actions: %w", err)
	}
	if len(actions) == 0 {
		return SyncSummary{}, nil
	}

	token, err := se.store.GetAuthToken(ctx)
	if err != nil {
		// Replaying without a token is allowed; log and continue.
		se.logger.WithError(err).Warn("Could not read auth token, replaying without Authorization header")
		token = ""
	}

	summary := SyncSummary{Attempted: len(actions)}
	for i := range actions {
		se.replayOne(ctx, &actions[i], token, &summary)
	}

	span.SetAttributes(
		attribute.Int("sync.attempted", summary.Attempted),
		attribute.Int("sync.synced", summary.Synced),
		attribute.Int("sync.abandoned", summary.Abandoned),
	)

	se.logger.WithFields(logrus.Fields{
		"attempted": summary.Attempted,
		"synced":    summary.Synced,
		"retried":   summary.Retried,
		"abandoned": summary.Abandoned,
	}).Info("Sync pass completed")

	se.announce(ctx, summary)
	return summary, nil
}

// replayOne attempts a single queued action and applies the bounded-retry
// policy to the outcome.
func (se *SyncEngine) replayOne(ctx context.Context, action *models.QueuedAction, token string, summary *SyncSummary) {
	tracer := otel.Tracer("bizsync/sync")
	replayCtx, span := tracer.Start(ctx, "sync.replay", trace.WithAttributes(
		attribute.String("action.type", string(action.Type)),
		attribute.Int("action.retry_count", action.RetryCount),
	))
	defer span.End()

	replayCtx, cancel := context.WithTimeout(replayCtx, se.replayTimeout)
	defer cancel()

	resp, err := se.client.Do(replayCtx, types.ReplayRequest{
		Method:         action.Method,
		URL:            action.URL,
		Body:           action.Payload,
		Token:          token,
		IdempotencyKey: action.IdempotencyKey,
	})

	if err == nil {
		if removeErr := se.store.RemoveAction(ctx, action.ID); removeErr != nil {
			se.logger.WithError(removeErr).WithField("action_id", privacy.ShortenID(action.ID, 8)).
				Error("Failed to remove synced action, it may be replayed again")
		} else {
			summary.Synced++
		}
		metrics.GetRegistry().IncrementCounter("sync_actions_synced", nil, "Actions successfully replayed")
		return
	}

	statusCode := 0
	if resp != nil {
		statusCode = resp.StatusCode
	}
	replayErr := apperrors.NewReplayError(action.ID, statusCode, err)
	span.RecordError(replayErr)

	// Every failure consumes one attempt; the engine does not
	// distinguish a 503 from a 400 when charging the retry budget.
	if action.RetryCount < action.MaxRetries {
		if updateErr := se.store.UpdateActionRetryCount(ctx, action.ID, action.RetryCount+1); updateErr != nil {
			se.logger.WithError(updateErr).WithField("action_id", privacy.ShortenID(action.ID, 8)).
				Error("Failed to update retry count")
		} else {
			summary.Retried++
		}
		apperrors.LogRetryableError(se.logger, replayErr, "Action replay failed, will retry")
		metrics.GetRegistry().IncrementCounter("sync_actions_retried", nil, "Actions left queued for the next pass")
		return
	}

	// Retry budget exhausted: dead-letter instead of deleting, so the
	// abandoned write stays visible to the user.
	if failErr := se.store.MarkActionFailed(ctx, action, err.Error()); failErr != nil {
		se.logger.WithError(failErr).WithField("action_id", privacy.ShortenID(action.ID, 8)).
			Error("Failed to dead-letter exhausted action")
		return
	}
	summary.Abandoned++
	metrics.GetRegistry().IncrementCounter("sync_actions_abandoned", nil, "Actions moved to the failed partition")
	se.logger.WithFields(apperrors.FieldsFromError(replayErr)).WithField("action_type", action.Type).
		Warn("Action exhausted its retry budget and was moved to the failed partition")
}

// announce emits the end-of-pass user notification.
func (se *SyncEngine) announce(ctx context.Context, summary SyncSummary) {
	if se.notifier == nil {
		return
	}

	switch {
	case summary.Abandoned > 0:
		se.notifier.Notify(ctx, "Some changes could not be saved",
			fmt.Sprintf("%d change(s) were abandoned after repeated failures; see the failed queue", summary.Abandoned))
	case summary.Synced > 0 && summary.Retried == 0:
		se.notifier.Notify(ctx, "Sync complete",
			fmt.Sprintf("Synced %d action(s)", summary.Synced))
	case summary.Retried > 0:
		se.notifier.Notify(ctx, "Sync incomplete",
			fmt.Sprintf("Synced %d, %d pending retry", summary.Synced, summary.Retried))
	}
}
