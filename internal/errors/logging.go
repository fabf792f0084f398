package errors

import (
	"github.com/sirupsen/logrus"
)

// FieldsFromError extracts structured logging fields from an AppError so
// replay and storage failures land in the logs with their code and context.
func FieldsFromError(err error) logrus.Fields {
	fields := logrus.Fields{}

	if appErr, ok := err.(*AppError); ok {
		fields["error_code"] = appErr.Code
		fields["retryable"] = appErr.Retryable
		for k, v := range appErr.Context {
			fields[k] = v
		}
	}

	return fields
}

// LogRetryableError logs a retryable error at warn level, non-retryable at
// error level. Replay-loop failures are absorbed into the retry policy and
// only surface through these log entries and the pending-count gauge.
func LogRetryableError(logger *logrus.Logger, err error, message string) {
	entry := logger.WithError(err).WithFields(FieldsFromError(err))
	if IsRetryable(err) {
		entry.Warn(message)
	} else {
		entry.Error(message)
	}
}
