package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"

	"bizsync/internal/constants"
	"bizsync/internal/models"
	"bizsync/internal/security"
)

var (
	ErrMissingAPIURL = models.ConfigError{Message: "missing directory API base URL"}
	ErrMissingDBPath = models.ConfigError{Message: "missing database path"}
)

func LoadConfig(path string) (*models.Config, error) {
	if err := security.ValidateStorePath(path); err != nil {
		return nil, fmt.Errorf("invalid config path: %w", err)
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config models.Config
	if err := json.Unmarshal(file, &config); err != nil {
		return nil, err
	}

	applyEnvironmentOverrides(&config)

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func validate(c *models.Config) error {
	if c.API.BaseURL == "" {
		return ErrMissingAPIURL
	}
	if _, err := url.ParseRequestURI(c.API.BaseURL); err != nil {
		return models.ConfigError{Message: fmt.Sprintf("invalid API base URL: %v", err)}
	}
	if c.Database.Path == "" {
		return ErrMissingDBPath
	}

	if c.API.HealthPath == "" {
		c.API.HealthPath = "/health"
	}
	if c.API.TimeoutSec <= 0 {
		c.API.TimeoutSec = constants.DefaultReplayTimeoutSec
	}
	if c.API.ProbeTimeoutSec <= 0 {
		c.API.ProbeTimeoutSec = constants.DefaultProbeTimeoutSec
	}

	if c.Sync.MaxRetries <= 0 {
		c.Sync.MaxRetries = constants.DefaultMaxReplayRetries
	}
	if c.Sync.OnlineSettleDelayMs <= 0 {
		c.Sync.OnlineSettleDelayMs = constants.DefaultOnlineSettleDelayMs
	}
	if c.Sync.ProbeIntervalSec <= 0 {
		c.Sync.ProbeIntervalSec = constants.DefaultProbeIntervalSec
	}
	if c.Sync.PendingRefreshSec <= 0 {
		c.Sync.PendingRefreshSec = constants.DefaultPendingRefreshSec
	}

	if c.Retry.InitialBackoffMs <= 0 {
		c.Retry.InitialBackoffMs = constants.DefaultBackoffInitialMs
	}
	if c.Retry.MaxBackoffMs <= 0 {
		c.Retry.MaxBackoffMs = constants.DefaultMaxBackoffMs
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = constants.DefaultDatabaseRetryAttempts
	}

	if c.Server.Port <= 0 {
		c.Server.Port = constants.DefaultServerPort
	}
	if c.Server.CleanupIntervalHours <= 0 {
		c.Server.CleanupIntervalHours = constants.DefaultCleanupIntervalHours
	}

	if c.Notifications.Sink == "" {
		c.Notifications.Sink = "log"
	}
	if c.Notifications.Sink == "webhook" && c.Notifications.WebhookURL == "" {
		return models.ConfigError{Message: "webhook notification sink requires webhook_url"}
	}

	if c.RetentionDays <= 0 {
		c.RetentionDays = constants.DefaultRetentionDays
	}

	return nil
}

func applyEnvironmentOverrides(c *models.Config) {
	if url := os.Getenv("BIZSYNC_API_URL"); url != "" {
		c.API.BaseURL = url
	}
	if path := os.Getenv("BIZSYNC_DB_PATH"); path != "" {
		c.Database.Path = path
	}
	if port := os.Getenv("BIZSYNC_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
	if level := os.Getenv("BIZSYNC_LOG_LEVEL"); level != "" {
		c.LogLevel = level
	}
}
