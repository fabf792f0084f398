package features

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// LoadFromEnvironment loads feature flag overrides from environment
// variables of the form BIZSYNC_FEATURE_<FLAG_NAME>=true/false.
// BIZSYNC_FEATURES_ENABLE_ALL and BIZSYNC_FEATURES_DISABLE_ALL flip
// every flag at once and win over individual settings.
func (fm *FlagManager) LoadFromEnvironment() {
	const (
		envPrefix     = "BIZSYNC_FEATURE_"
		envEnableAll  = "BIZSYNC_FEATURES_ENABLE_ALL"
		envDisableAll = "BIZSYNC_FEATURES_DISABLE_ALL"
	)

	fm.mu.Lock()
	defer fm.mu.Unlock()

	if envValue := os.Getenv(envEnableAll); envValue != "" {
		if enableAll, _ := strconv.ParseBool(envValue); enableAll {
			for _, flag := range fm.flags {
				flag.Enabled = true
				flag.UpdatedAt = time.Now()
			}
			return
		}
	}

	if envValue := os.Getenv(envDisableAll); envValue != "" {
		if disableAll, _ := strconv.ParseBool(envValue); disableAll {
			for _, flag := range fm.flags {
				flag.Enabled = false
				flag.UpdatedAt = time.Now()
			}
			return
		}
	}

	for _, env := range os.Environ() {
		parts := strings.SplitN(env, "=", 2)
		if len(parts) != 2 || !strings.HasPrefix(parts[0], envPrefix) {
			continue
		}

		flagName := strings.ToLower(strings.TrimPrefix(parts[0], envPrefix))
		enabled, err := strconv.ParseBool(parts[1])
		if err != nil {
			continue
		}

		if flag, exists := fm.flags[flagName]; exists {
			flag.Enabled = enabled
			flag.UpdatedAt = time.Now()
		}
	}
}
