package models

// Config holds the application configuration
type Config struct {
	API           APIConfig          `json:"api"`
	Database      DatabaseConfig     `json:"database"`
	Sync          SyncConfig         `json:"sync"`
	Retry         RetryConfig        `json:"retry"`
	Server        ServerConfig       `json:"server"`
	Notifications NotificationConfig `json:"notifications"`
	Tracing       TracingConfig      `json:"tracing"`
	LogLevel      string             `json:"log_level"`
	RetentionDays int                `json:"retentionDays"`
}

// APIConfig holds remote directory API configuration
type APIConfig struct {
	BaseURL         string `json:"base_url"`
	HealthPath      string `json:"health_path"`
	TimeoutSec      int    `json:"timeoutSec"`
	ProbeTimeoutSec int    `json:"probeTimeoutSec"`
}

// DatabaseConfig holds local store configuration
type DatabaseConfig struct {
	Path string `json:"path"`
}

// SyncConfig holds sync engine and network monitor configuration
type SyncConfig struct {
	MaxRetries          int `json:"maxRetries"`
	OnlineSettleDelayMs int `json:"onlineSettleDelayMs"`
	ProbeIntervalSec    int `json:"probeIntervalSec"`
	PendingRefreshSec   int `json:"pendingRefreshSec"`
}

// RetryConfig holds backoff configuration for local store operations
type RetryConfig struct {
	InitialBackoffMs int `json:"initialBackoffMs"`
	MaxBackoffMs     int `json:"maxBackoffMs"`
	MaxAttempts      int `json:"maxAttempts"`
}

// ServerConfig holds control server configuration
type ServerConfig struct {
	Port                 int `json:"port"`
	CleanupIntervalHours int `json:"cleanupIntervalHours"`
}

// NotificationConfig holds notification sink configuration
type NotificationConfig struct {
	Sink       string `json:"sink"`        // "log" or "webhook"
	WebhookURL string `json:"webhook_url"` // required when sink is "webhook"
}

// TracingConfig holds OpenTelemetry configuration
type TracingConfig struct {
	Enabled        bool    `json:"enabled"`
	ServiceName    string  `json:"service_name"`
	ServiceVersion string  `json:"service_version"`
	Environment    string  `json:"environment"`
	OTLPEndpoint   string  `json:"otlp_endpoint"`
	SampleRate     float64 `json:"sample_rate"`
	UseStdout      bool    `json:"use_stdout"`
}

type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string {
	return e.Message
}
