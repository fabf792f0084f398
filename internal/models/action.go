package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// ActionType identifies the kind of directory mutation a queued action
// carries. The set is closed: replay dispatch switches over these values.
type ActionType string

const (
	ActionCreateBusiness ActionType = "CREATE_BUSINESS"
	ActionUpdateBusiness ActionType = "UPDATE_BUSINESS"
	ActionDeleteBusiness ActionType = "DELETE_BUSINESS"
	ActionCreateService  ActionType = "CREATE_SERVICE"
	ActionUpdateService  ActionType = "UPDATE_SERVICE"
	ActionDeleteService  ActionType = "DELETE_SERVICE"
	ActionCreateProduct  ActionType = "CREATE_PRODUCT"
	ActionUpdateProduct  ActionType = "UPDATE_PRODUCT"
	ActionDeleteProduct  ActionType = "DELETE_PRODUCT"
	ActionCreateReview   ActionType = "CREATE_REVIEW"
	ActionUpdateProfile  ActionType = "UPDATE_PROFILE"
)

var validActionTypes = map[ActionType]struct{}{
	ActionCreateBusiness: {},
	ActionUpdateBusiness: {},
	ActionDeleteBusiness: {},
	ActionCreateService:  {},
	ActionUpdateService:  {},
	ActionDeleteService:  {},
	ActionCreateProduct:  {},
	ActionUpdateProduct:  {},
	ActionDeleteProduct:  {},
	ActionCreateReview:   {},
	ActionUpdateProfile:  {},
}

// Valid reports whether t is one of the known action types.
func (t ActionType) Valid() bool {
	_, ok := validActionTypes[t]
	return ok
}

// QueuedAction is a durable record of a directory mutation that could not
// be applied immediately and is awaiting replay against the remote API.
type QueuedAction struct {
	ID             string          `json:"id"`
	Type           ActionType      `json:"type"`
	Payload        json.RawMessage `json:"payload"`
	URL            string          `json:"url"`
	Method         string          `json:"method"`
	IdempotencyKey string          `json:"idempotencyKey"`
	RetryCount     int             `json:"retryCount"`
	MaxRetries     int             `json:"maxRetries"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// FailedAction is a queued action that exhausted its retry budget and was
// moved to the dead-letter partition instead of being silently dropped.
type FailedAction struct {
	QueuedAction
	LastError string    `json:"lastError"`
	FailedAt  time.Time `json:"failedAt"`
}

// BusinessPayload is the request body for business create/update actions.
type BusinessPayload struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Address     string   `json:"address,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// ServicePayload is the request body for service create/update actions.
type ServicePayload struct {
	BusinessID  string  `json:"businessId"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price,omitempty"`
	DurationMin int     `json:"durationMin,omitempty"`
}

// ProductPayload is the request body for product create/update actions.
type ProductPayload struct {
	BusinessID  string  `json:"businessId"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price,omitempty"`
	InStock     bool    `json:"inStock"`
}

// ReviewPayload is the request body for review creation.
type ReviewPayload struct {
	BusinessID string `json:"businessId"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment,omitempty"`
}

// ProfilePayload is the request body for profile updates.
type ProfilePayload struct {
	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

// DecodePayload unmarshals the raw payload into the shape dictated by the
// action's type tag, so payload handling stays exhaustively checked.
func (a *QueuedAction) DecodePayload() (interface{}, error) {
	var dst interface{}
	switch a.Type {
	case ActionCreateBusiness, ActionUpdateBusiness, ActionDeleteBusiness:
		dst = &BusinessPayload{}
	case ActionCreateService, ActionUpdateService, ActionDeleteService:
		dst = &ServicePayload{}
	case ActionCreateProduct, ActionUpdateProduct, ActionDeleteProduct:
		dst = &ProductPayload{}
	case ActionCreateReview:
		dst = &ReviewPayload{}
	case ActionUpdateProfile:
		dst = &ProfilePayload{}
	default:
		return nil, fmt.Errorf("unknown action type: %s", a.Type)
	}

	if len(a.Payload) > 0 {
		if err := json.Unmarshal(a.Payload, dst); err != nil {
			return nil, fmt.Errorf("failed to decode %s payload: %w", a.Type, err)
		}
	}
	return dst, nil
}

// SubmitOutcome tells a Submit caller what actually happened to its
// mutation: applied now, queued for later, or lost entirely.
type SubmitOutcome string

const (
	OutcomeApplied SubmitOutcome = "applied"
	OutcomeQueued  SubmitOutcome = "queued"
	OutcomeFailed  SubmitOutcome = "failed"
)

// SubmitResult is returned by the enqueue API for every submission.
type SubmitResult struct {
	Outcome  SubmitOutcome   `json:"outcome"`
	ActionID string          `json:"actionId,omitempty"`
	Response json.RawMessage `json:"response,omitempty"`
}
