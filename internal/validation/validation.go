package validation

import (
	"fmt"
	"net/http"
	"strings"
	"unicode"

	"bizsync/internal/constants"
	"bizsync/internal/errors"
)

// ValidateActionID validates queued action ID format and length
func ValidateActionID(id string) error {
	if id == "" {
		return errors.New(errors.ErrCodeInvalidInput, "action ID cannot be empty")
	}

	if len(id) > constants.MaxActionIDLength {
		return errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("action ID too long (max %d characters)", constants.MaxActionIDLength))
	}

	for _, char := range id {
		if char == '\x00' || char == '\n' || char == '\r' || char == '\t' {
			return errors.New(errors.ErrCodeInvalidInput, "action ID contains invalid characters")
		}
	}

	return nil
}

// ValidateActionURL validates the target URL of a queued action. Relative
// paths are resolved against the API base URL at replay time, so both
// absolute HTTP URLs and rooted paths are accepted.
func ValidateActionURL(url string) error {
	if url == "" {
		return errors.New(errors.ErrCodeInvalidInput, "action URL cannot be empty")
	}

	if len(url) > constants.MaxActionURLLength {
		return errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("action URL too long (max %d characters)", constants.MaxActionURLLength))
	}

	if !strings.HasPrefix(url, "/") &&
		!strings.HasPrefix(url, "http://") &&
		!strings.HasPrefix(url, "https://") {
		return errors.New(errors.ErrCodeInvalidInput,
			"action URL must be a rooted path or an absolute HTTP URL")
	}

	for _, char := range url {
		if unicode.IsControl(char) {
			return errors.New(errors.ErrCodeInvalidInput, "action URL contains control characters")
		}
	}

	return nil
}

// ValidatePayloadSize validates an action payload against the size limit
func ValidatePayloadSize(sizeBytes int) error {
	if sizeBytes > constants.MaxPayloadBytes {
		return errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("payload too large: %d bytes (max %d bytes)", sizeBytes, constants.MaxPayloadBytes))
	}

	return nil
}

// ValidateHTTPRequestSize validates incoming HTTP request size
func ValidateHTTPRequestSize(r *http.Request, maxSizeBytes int64) error {
	if r.ContentLength < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "invalid content length")
	}

	if r.ContentLength > maxSizeBytes {
		return errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("request too large: %d bytes (max %d bytes)", r.ContentLength, maxSizeBytes))
	}

	return nil
}

// ValidateStringLength validates string length against bounds
func ValidateStringLength(value, fieldName string, minLength, maxLength int) error {
	if len(value) < minLength {
		return errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("%s too short (min %d characters)", fieldName, minLength))
	}

	if len(value) > maxLength {
		return errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("%s too long (max %d characters)", fieldName, maxLength))
	}

	return nil
}

// ValidateTimeout validates timeout values
func ValidateTimeout(timeoutSec int, fieldName string) error {
	if timeoutSec < 1 {
		return errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("%s must be at least 1 second", fieldName))
	}

	if timeoutSec > constants.MaxTimeoutSec {
		return errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("%s too large (max %d seconds)", fieldName, constants.MaxTimeoutSec))
	}

	return nil
}

// ValidateRetentionDays validates the cached-entity retention period
func ValidateRetentionDays(days int) error {
	if days < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "retention days must be at least 1")
	}

	if days > constants.MaxRetentionDays {
		return errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("retention days too large (max %d)", constants.MaxRetentionDays))
	}

	return nil
}
