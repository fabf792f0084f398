package service

import (
	"context"
	"encoding/json"
	"time"

	"bizsync/internal/models"
	"bizsync/pkg/notify"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// NotificationService shows user-facing notifications, queuing any that
// cannot be displayed and replaying them on the next online transition.
// Replay applies the same bounded-retry policy as queued actions.
type NotificationService struct {
	store      NotificationStore
	sink       notify.Sink
	logger     *logrus.Logger
	maxRetries int
}

func NewNotificationService(store NotificationStore, sink notify.Sink, maxRetries int, logger *logrus.Logger) *NotificationService {
	return &NotificationService{
		store:      store,
		sink:       sink,
		logger:     logger,
		maxRetries: maxRetries,
	}
}

// Notify attempts to display a notification, queuing it durably when the
// display path is unavailable. Display is best-effort; Notify never
// returns an error to its caller.
func (ns *NotificationService) Notify(ctx context.Context, title, body string) {
	ns.NotifyWithOptions(ctx, title, body, nil)
}

// NotifyWithOptions is Notify with an opaque display-options payload.
func (ns *NotificationService) NotifyWithOptions(ctx context.Context, title, body string, options json.RawMessage) {
	err := ns.sink.Show(ctx, notify.Notification{Title: title, Body: body, Options: options})
	if err == nil {
		return
	}

	ns.logger.WithError(err).WithField("title", title).Debug("Display failed, queuing notification")

	queued := &models.QueuedNotification{
		ID:         uuid.NewString(),
		Title:      title,
		Body:       body,
		Options:    options,
		RetryCount: 0,
		MaxRetries: ns.maxRetries,
		CreatedAt:  time.Now().UTC(),
	}

	if storeErr := ns.store.EnqueueNotification(ctx, queued); storeErr != nil {
		// Notifications are display-only; a lost one is logged, not fatal.
		ns.logger.WithError(storeErr).WithField("title", title).
			Error("Failed to queue undisplayed notification")
	}
}

// ReplayPending drains the queued-notification partition, attempting each
// entry exactly once per pass. Successfully displayed entries are
// removed; failing entries consume one retry and are discarded once the
// budget is exhausted.
func (ns *NotificationService) ReplayPending(ctx context.Context) {
	pending, err := ns.store.GetAllNotifications(ctx)
	if err != nil {
		ns.logger.WithError(err).Error("Failed to read queued notifications")
		return
	}
	if len(pending) == 0 {
		return
	}

	displayed := 0
	for _, n := range pending {
		err := ns.sink.Show(ctx, notify.Notification{Title: n.Title, Body: n.Body, Options: n.Options})
		if err == nil {
			if removeErr := ns.store.RemoveNotification(ctx, n.ID); removeErr != nil {
				ns.logger.WithError(removeErr).WithField("notification_id", n.ID).
					Error("Failed to remove displayed notification")
				continue
			}
			displayed++
			continue
		}

		if n.RetryCount < n.MaxRetries {
			if updateErr := ns.store.UpdateNotificationRetryCount(ctx, n.ID, n.RetryCount+1); updateErr != nil {
				ns.logger.WithError(updateErr).WithField("notification_id", n.ID).
					Error("Failed to update notification retry count")
			}
			continue
		}

		if removeErr := ns.store.RemoveNotification(ctx, n.ID); removeErr != nil {
			ns.logger.WithError(removeErr).WithField("notification_id", n.ID).
				Error("Failed to discard exhausted notification")
			continue
		}
		ns.logger.WithField("title", n.Title).Warn("Notification exhausted its retry budget and was discarded")
	}

	if displayed > 0 {
		ns.logger.WithField("displayed", displayed).Info("Replayed queued notifications")
	}
}
