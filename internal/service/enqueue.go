package service

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"bizsync/internal/constants"
	apperrors "bizsync/internal/errors"
	"bizsync/internal/models"
	"bizsync/internal/validation"
	"bizsync/pkg/circuitbreaker"
	"bizsync/pkg/directory/types"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ActionService is the single entry point feature code uses to perform a
// directory mutation that must survive offline conditions.
type ActionService struct {
	store      ActionStore
	client     types.Client
	online     func() bool
	logger     *logrus.Logger
	maxRetries int
	timeout    time.Duration

	// breaker short-circuits immediate attempts while the API keeps
	// failing; rejected submissions go straight to the queue, where the
	// sync engine owns the retry budget.
	breaker *circuitbreaker.CircuitBreaker
}

func NewActionService(store ActionStore, client types.Client, online func() bool, maxRetries int, timeout time.Duration, logger *logrus.Logger) *ActionService {
	return &ActionService{
		store:      store,
		client:     client,
		online:     online,
		logger:     logger,
		maxRetries: maxRetries,
		timeout:    timeout,
		breaker: circuitbreaker.NewWithLogger("directory-api",
			constants.DefaultBreakerMaxFailures,
			time.Duration(constants.DefaultBreakerResetSec)*time.Second,
			logger),
	}
}

// Submit applies a mutation immediately when online, falling back to the
// durable queue on failure or when offline. The returned result always
// says which of the three outcomes happened:
//
//   - Applied: the immediate attempt succeeded; err is nil.
//   - Queued: the action is in the durable queue. err is nil when the
//     attempt was skipped (offline), or the original attempt error when
//     an online attempt failed first — queuing is a side effect there,
//     not a substitute for reporting the failure.
//   - Failed: neither the network nor the store accepted the mutation;
//     err carries the storage error.
func (as *ActionService) Submit(ctx context.Context, actionType models.ActionType, payload json.RawMessage, url, method string) (*models.SubmitResult, error) {
	if !actionType.Valid() {
		return &models.SubmitResult{Outcome: models.OutcomeFailed},
			apperrors.NewValidationError("type", string(actionType), "unknown action type")
	}
	if err := validation.ValidateActionURL(url); err != nil {
		return &models.SubmitResult{Outcome: models.OutcomeFailed}, err
	}
	if err := validation.ValidatePayloadSize(len(payload)); err != nil {
		return &models.SubmitResult{Outcome: models.OutcomeFailed}, err
	}
	if method == "" {
		method = http.MethodPost
	}

	// The idempotency key is minted once and shared by the immediate
	// attempt and any later replays, so a request that timed out after
	// the server applied it cannot double-apply.
	idempotencyKey := uuid.NewString()

	if as.online() {
		result, err := as.attemptImmediate(ctx, payload, url, method, idempotencyKey)
		if err == nil {
			return result, nil
		}

		queued, queueErr := as.enqueue(ctx, actionType, payload, url, method, idempotencyKey)
		if queueErr != nil {
			as.logger.WithError(queueErr).Error("Fallback enqueue failed after immediate attempt failure")
			return &models.SubmitResult{Outcome: models.OutcomeFailed}, queueErr
		}

		as.logger.WithFields(logrus.Fields{
			"type":      actionType,
			"action_id": queued.ID,
		}).Warn("Immediate attempt failed, action queued for sync")

		return &models.SubmitResult{Outcome: models.OutcomeQueued, ActionID: queued.ID},
			apperrors.NewImmediateAttemptError(url, err)
	}

	queued, err := as.enqueue(ctx, actionType, payload, url, method, idempotencyKey)
	if err != nil {
		return &models.SubmitResult{Outcome: models.OutcomeFailed}, err
	}

	as.logger.WithFields(logrus.Fields{
		"type":      actionType,
		"action_id": queued.ID,
	}).Info("Offline, action queued for sync")

	return &models.SubmitResult{Outcome: models.OutcomeQueued, ActionID: queued.ID}, nil
}

func (as *ActionService) attemptImmediate(ctx context.Context, payload json.RawMessage, url, method, idempotencyKey string) (*models.SubmitResult, error) {
	token, err := as.store.GetAuthToken(ctx)
	if err != nil {
		as.logger.WithError(err).Warn("Could not read auth token for immediate attempt")
		token = ""
	}

	attemptCtx, cancel := context.WithTimeout(ctx, as.timeout)
	defer cancel()

	var resp *types.ReplayResponse
	err = as.breaker.Execute(attemptCtx, func(ctx context.Context) error {
		var doErr error
		resp, doErr = as.client.Do(ctx, types.ReplayRequest{
			Method:         method,
			URL:            url,
			Body:           payload,
			Token:          token,
			IdempotencyKey: idempotencyKey,
		})
		return doErr
	})
	if err != nil {
		return nil, err
	}

	return &models.SubmitResult{Outcome: models.OutcomeApplied, Response: resp.Body}, nil
}

// enqueue persists the action. A storage failure propagates to the
// caller: silently dropping a queued write would violate the durability
// guarantee that is the store's entire purpose.
func (as *ActionService) enqueue(ctx context.Context, actionType models.ActionType, payload json.RawMessage, url, method, idempotencyKey string) (*models.QueuedAction, error) {
	action := &models.QueuedAction{
		ID:             uuid.NewString(),
		Type:           actionType,
		Payload:        payload,
		URL:            url,
		Method:         method,
		IdempotencyKey: idempotencyKey,
		RetryCount:     0,
		MaxRetries:     as.maxRetries,
		CreatedAt:      time.Now().UTC(),
	}

	if err := as.store.EnqueueAction(ctx, action); err != nil {
		return nil, apperrors.NewStorageError("enqueue", err)
	}
	return action, nil
}
