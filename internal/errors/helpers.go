package errors

import (
	"fmt"
)

// Common error creators for frequent use cases

// NewValidationError creates a validation error with field context
func NewValidationError(field, value, message string) *AppError {
	return New(ErrCodeValidationFailed, message).
		WithContext("field", field).
		WithContext("value", value).
		WithUserMessage(fmt.Sprintf("Invalid %s: %s", field, message))
}

// NewConfigError creates a configuration error
func NewConfigError(key, message string) *AppError {
	return New(ErrCodeInvalidConfig, message).
		WithContext("config_key", key).
		WithUserMessage("Configuration error")
}

// NewStorageError creates a storage error with operation context.
// Storage failures propagate to the submit caller rather than being
// swallowed, since silently dropping a queued write would defeat the
// durability guarantee.
func NewStorageError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeStorageWrite, fmt.Sprintf("storage %s failed", operation)).
		WithContext("operation", operation).
		WithUserMessage("Could not save your change locally")
}

// NewReplayError creates a replay error for a failed queued-action attempt
func NewReplayError(actionID string, statusCode int, err error) *AppError {
	retryable := statusCode == 0 || statusCode >= 500 || statusCode == 429 || statusCode == 408

	appErr := Wrap(err, ErrCodeReplayFailed, "action replay failed").
		WithContext("action_id", actionID).
		WithContext("status_code", statusCode)

	if retryable {
		appErr.Retryable = true
	}

	return appErr
}

// NewImmediateAttemptError wraps the failure of an online-path network
// attempt. The caller always sees this error even when the action was
// queued as a fallback.
func NewImmediateAttemptError(url string, err error) *AppError {
	return Wrap(err, ErrCodeImmediateAttempt, "immediate network attempt failed").
		WithContext("url", url).
		WithUserMessage("Request failed, saved for later sync")
}

// NewTimeoutError creates a timeout error with context
func NewTimeoutError(operation string, duration string) *AppError {
	return New(ErrCodeTimeout, fmt.Sprintf("%s timed out after %s", operation, duration)).
		WithContext("operation", operation).
		WithContext("timeout", duration).
		WithUserMessage("Operation timed out, please try again")
}

// NewAuthError creates an authentication error
func NewAuthError(reason string) *AppError {
	return New(ErrCodeAuthentication, "authentication failed").
		WithContext("reason", reason).
		WithUserMessage("Authentication failed")
}

// NewNotFoundError creates a not found error with resource context
func NewNotFoundError(resource, identifier string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource)).
		WithContext("resource", resource).
		WithContext("identifier", identifier).
		WithUserMessage(fmt.Sprintf("%s not found", resource))
}
