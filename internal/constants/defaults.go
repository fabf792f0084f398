package constants

// Default sync configuration values
const (
	DefaultMaxReplayRetries    = 3
	DefaultOnlineSettleDelayMs = 1000
	DefaultProbeIntervalSec    = 10
	DefaultPendingRefreshSec   = 30
	DefaultRetryBackoffMs      = 1000
	DefaultMaxBackoffMs        = 60000
	DefaultRetentionDays       = 30
	DefaultServerPort          = 8090
)

// Default timeout values
const (
	DefaultHTTPTimeoutSec        = 30
	DefaultProbeTimeoutSec       = 5
	DefaultReplayTimeoutSec      = 30
	DefaultDatabaseRetryAttempts = 3
	DefaultGracefulShutdownSec   = 30
	DefaultBackoffInitialMs      = 500
	DefaultServerReadTimeoutSec  = 15
	DefaultServerWriteTimeoutSec = 15
	DefaultServerIdleTimeoutSec  = 60
	DefaultCleanupIntervalHours  = 24
)

// Input validation limits
const (
	MaxActionIDLength   = 128
	MaxActionURLLength  = 2048
	MaxPayloadBytes     = 256 * 1024
	MaxRequestBodyBytes = 1024 * 1024
	MaxRetentionDays    = 3650
	MaxTimeoutSec       = 3600
)

// Circuit breaker settings for the immediate-attempt path
const (
	DefaultBreakerMaxFailures = 5
	DefaultBreakerResetSec    = 30
)

// Privacy settings
const (
	DefaultTokenMaskLength = 4
	DefaultIDPrefixLength  = 8
)

// ServerErrorChannelSize buffers the control server error channel so a
// failed ListenAndServe does not block its goroutine during shutdown.
const ServerErrorChannelSize = 1
