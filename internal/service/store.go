package service

import (
	"context"

	"bizsync/internal/models"
)

// ActionStore is the slice of the durable store the enqueue path and the
// sync engine depend on.
type ActionStore interface {
	EnqueueAction(ctx context.Context, action *models.QueuedAction) error
	GetAllActions(ctx context.Context) ([]models.QueuedAction, error)
	RemoveAction(ctx context.Context, id string) error
	UpdateActionRetryCount(ctx context.Context, id string, count int) error
	MarkActionFailed(ctx context.Context, action *models.QueuedAction, lastError string) error
	CountPendingActions(ctx context.Context) (int, error)
	GetAuthToken(ctx context.Context) (string, error)
}

// NotificationStore is the durable partition behind the notification
// replay subsystem.
type NotificationStore interface {
	EnqueueNotification(ctx context.Context, n *models.QueuedNotification) error
	GetAllNotifications(ctx context.Context) ([]models.QueuedNotification, error)
	RemoveNotification(ctx context.Context, id string) error
	UpdateNotificationRetryCount(ctx context.Context, id string, count int) error
}

// EntityStore is used by the cleanup scheduler.
type EntityStore interface {
	CleanupOldEntities(retentionDays int) error
}
