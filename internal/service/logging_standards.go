package service

// Logging Standards for bizsync
//
// This file defines standard field names and patterns to keep
// logging consistent across the application.

// Standard Field Names
// Use these exact field names for consistency across all logging calls
const (
	// Core identifiers
	LogFieldActionID   = "action_id"
	LogFieldActionType = "action_type"
	LogFieldEntityID   = "entity_id"
	LogFieldEntityKind = "entity_kind"
	LogFieldRequestID  = "request_id"
	LogFieldTraceID    = "trace_id"

	// Service and operation fields
	LogFieldService   = "service"
	LogFieldOperation = "operation"
	LogFieldComponent = "component"
	LogFieldMethod    = "method"

	// Performance and metrics
	LogFieldDuration = "duration_ms"
	LogFieldCount    = "count"
	LogFieldSize     = "size_bytes"

	// Network and external services
	LogFieldURL        = "url"
	LogFieldEndpoint   = "endpoint"
	LogFieldStatusCode = "status_code"
	LogFieldRemoteIP   = "remote_ip"
	LogFieldUserAgent  = "user_agent"

	// Error and retry fields
	LogFieldErrorCode  = "error_code"
	LogFieldRetryCount = "retry_count"
	LogFieldAttempt    = "attempt"
)

// Log Level Usage Guidelines
//
// DEBUG: Detailed flow information. Only in development or verbose mode.
// INFO:  Application startup/shutdown, state changes, successful operations.
// WARN:  Retryable errors, fallback behavior, external service temporarily down.
// ERROR: Failed operations, validation failures, abandoned actions.
// FATAL: Missing startup configuration, unrecoverable storage failure.
//
// Standard message patterns:
//
// Starting operations:  "Starting [operation]"
// Completed operations: "Completed [operation]"
// Failed operations:    "Failed to [operation]"
// Retrying operations:  "Retrying [operation] (attempt X/Y)"
// Skipping operations:  "Skipping [operation]: [reason]"
