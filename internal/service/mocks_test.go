package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"bizsync/internal/models"
	"bizsync/pkg/directory/types"
	"bizsync/pkg/notify"
)

// mockStore is an in-memory ActionStore plus NotificationStore with
// per-method error injection.
type mockStore struct {
	mu sync.Mutex

	actions       map[string]*models.QueuedAction
	failed        map[string]*models.FailedAction
	notifications map[string]*models.QueuedNotification
	token         string

	enqueueErr     error
	getAllErr      error
	removeErr      error
	updateRetryErr error
	markFailedErr  error
	countErr       error
	tokenErr       error

	cleanupCalls []int
	cleanupErr   error
}

func newMockStore() *mockStore {
	return &mockStore{
		actions:       map[string]*models.QueuedAction{},
		failed:        map[string]*models.FailedAction{},
		notifications: map[string]*models.QueuedNotification{},
	}
}

func (m *mockStore) EnqueueAction(ctx context.Context, action *models.QueuedAction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.enqueueErr != nil {
		return m.enqueueErr
	}
	copied := *action
	m.actions[action.ID] = &copied
	return nil
}

func (m *mockStore) GetAllActions(ctx context.Context) ([]models.QueuedAction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getAllErr != nil {
		return nil, m.getAllErr
	}
	out := make([]models.QueuedAction, 0, len(m.actions))
	for _, a := range m.actions {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *mockStore) RemoveAction(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.removeErr != nil {
		return m.removeErr
	}
	delete(m.actions, id)
	return nil
}

func (m *mockStore) UpdateActionRetryCount(ctx context.Context, id string, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateRetryErr != nil {
		return m.updateRetryErr
	}
	if a, ok := m.actions[id]; ok {
		a.RetryCount = count
	}
	return nil
}

func (m *mockStore) MarkActionFailed(ctx context.Context, action *models.QueuedAction, lastError string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.markFailedErr != nil {
		return m.markFailedErr
	}
	delete(m.actions, action.ID)
	m.failed[action.ID] = &models.FailedAction{QueuedAction: *action, LastError: lastError, FailedAt: time.Now()}
	return nil
}

func (m *mockStore) CountPendingActions(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.countErr != nil {
		return 0, m.countErr
	}
	return len(m.actions), nil
}

func (m *mockStore) GetAuthToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tokenErr != nil {
		return "", m.tokenErr
	}
	return m.token, nil
}

func (m *mockStore) EnqueueNotification(ctx context.Context, n *models.QueuedNotification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.enqueueErr != nil {
		return m.enqueueErr
	}
	copied := *n
	m.notifications[n.ID] = &copied
	return nil
}

func (m *mockStore) GetAllNotifications(ctx context.Context) ([]models.QueuedNotification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getAllErr != nil {
		return nil, m.getAllErr
	}
	out := make([]models.QueuedNotification, 0, len(m.notifications))
	for _, n := range m.notifications {
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *mockStore) RemoveNotification(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.removeErr != nil {
		return m.removeErr
	}
	delete(m.notifications, id)
	return nil
}

func (m *mockStore) UpdateNotificationRetryCount(ctx context.Context, id string, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateRetryErr != nil {
		return m.updateRetryErr
	}
	if n, ok := m.notifications[id]; ok {
		n.RetryCount = count
	}
	return nil
}

func (m *mockStore) CleanupOldEntities(retentionDays int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleanupCalls = append(m.cleanupCalls, retentionDays)
	return m.cleanupErr
}

func (m *mockStore) pendingIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.actions))
	for id := range m.actions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// mockClient is a scriptable directory API client.
type mockClient struct {
	mu       sync.Mutex
	requests []types.ReplayRequest

	doFunc   func(ctx context.Context, req types.ReplayRequest) (*types.ReplayResponse, error)
	pingFunc func(ctx context.Context) error
}

func (m *mockClient) Do(ctx context.Context, req types.ReplayRequest) (*types.ReplayResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.doFunc != nil {
		return m.doFunc(ctx, req)
	}
	return &types.ReplayResponse{StatusCode: 200}, nil
}

func (m *mockClient) Ping(ctx context.Context) error {
	if m.pingFunc != nil {
		return m.pingFunc(ctx)
	}
	return nil
}

func (m *mockClient) recorded() []types.ReplayRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.ReplayRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// mockSink records displayed notifications and can be told to fail.
type mockSink struct {
	mu    sync.Mutex
	shown []notify.Notification
	err   error
}

func (m *mockSink) Show(ctx context.Context, n notify.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.shown = append(m.shown, n)
	return nil
}

func (m *mockSink) displayed() []notify.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]notify.Notification, len(m.shown))
	copy(out, m.shown)
	return out
}
