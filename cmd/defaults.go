package cmd

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mlihgenel/slydetrim/internal/config"
	"github.com/mlihgenel/slydetrim/internal/logging"
)

const (
	envOutput      = "SLYDETRIM_OUTPUT"
	envWorkers     = "SLYDETRIM_WORKERS"
	envConflict    = "SLYDETRIM_ON_CONFLICT"
	envRetry       = "SLYDETRIM_RETRY"
	envRetryDelay  = "SLYDETRIM_RETRY_DELAY"
	envReport      = "SLYDETRIM_REPORT"
	envPolicy      = "SLYDETRIM_POLICY"
	envLoadTimeout = "SLYDETRIM_LOAD_TIMEOUT"
	envThumbnails  = "SLYDETRIM_THUMBNAILS"
)

// Öncelik: flag > ortam değişkeni > proje yapılandırması > varsayılan.
func applyRootDefaults(cmd *cobra.Command) error {
	if !cmd.Flags().Changed("output") {
		if v := strings.TrimSpace(os.Getenv(envOutput)); v != "" {
			outputDir = v
		} else if activeProjectConfig != nil && strings.TrimSpace(activeProjectConfig.DefaultOutput) != "" {
			outputDir = strings.TrimSpace(activeProjectConfig.DefaultOutput)
		} else if dir := config.GetDefaultOutputDir(); dir != "" {
			outputDir = dir
		}
	}

	if !cmd.Flags().Changed("workers") {
		if v, ok := readEnvInt(envWorkers); ok && v > 0 {
			workers = v
		} else if activeProjectConfig != nil && activeProjectConfig.Workers > 0 {
			workers = activeProjectConfig.Workers
		}
	}

	// Ortam değişkeni logging.Init içinde okunur.
	if !cmd.Flags().Changed("log-level") && strings.TrimSpace(os.Getenv(logging.EnvLogLevel)) == "" {
		if activeProjectConfig != nil && activeProjectConfig.LogLevel != "" {
			logLevel = activeProjectConfig.LogLevel
		}
	}

	return nil
}

func applyOnConflictDefault(cmd *cobra.Command, flagName string, value *string) {
	if cmd.Flags().Changed(flagName) {
		return
	}
	if v := strings.TrimSpace(os.Getenv(envConflict)); v != "" {
		*value = strings.ToLower(v)
		return
	}
	if activeProjectConfig != nil && strings.TrimSpace(activeProjectConfig.OnConflict) != "" {
		*value = strings.ToLower(strings.TrimSpace(activeProjectConfig.OnConflict))
	}
}

func applyRetryDefaults(cmd *cobra.Command, retryFlag string, retryValue *int, delayFlag string, delayValue *time.Duration) {
	if !cmd.Flags().Changed(retryFlag) {
		if v, ok := readEnvInt(envRetry); ok && v >= 0 {
			*retryValue = v
		} else if activeProjectConfig != nil && activeProjectConfig.Retry > 0 {
			*retryValue = activeProjectConfig.Retry
		}
	}

	if !cmd.Flags().Changed(delayFlag) {
		if v, ok := readEnvDuration(envRetryDelay); ok {
			*delayValue = v
		} else if activeProjectConfig != nil && activeProjectConfig.RetryDelay.Duration > 0 {
			*delayValue = activeProjectConfig.RetryDelay.Duration
		}
	}
}

func applyReportDefault(cmd *cobra.Command, flagName string, value *string) {
	if cmd.Flags().Changed(flagName) {
		return
	}
	if v := strings.TrimSpace(os.Getenv(envReport)); v != "" {
		*value = strings.ToLower(v)
		return
	}
	if activeProjectConfig != nil && strings.TrimSpace(activeProjectConfig.ReportFormat) != "" {
		*value = strings.ToLower(strings.TrimSpace(activeProjectConfig.ReportFormat))
	}
}

// applyPolicyDefault flag verilmemişse ortamı, proje yapılandırmasını ve
// son kullanılan politikayı sırayla dener.
func applyPolicyDefault(cmd *cobra.Command, flagName string, value *string) {
	if cmd.Flags().Changed(flagName) {
		return
	}
	if v := strings.TrimSpace(os.Getenv(envPolicy)); v != "" {
		*value = strings.ToLower(v)
		return
	}
	if activeProjectConfig != nil && activeProjectConfig.Policy != "" {
		*value = activeProjectConfig.Policy
		return
	}
	if last := config.GetLastPolicy(); last != "" {
		*value = last
	}
}

func applyLoadTimeoutDefault(cmd *cobra.Command, flagName string, value *time.Duration) {
	if cmd.Flags().Changed(flagName) {
		return
	}
	if v, ok := readEnvDuration(envLoadTimeout); ok && v > 0 {
		*value = v
		return
	}
	if activeProjectConfig != nil && activeProjectConfig.LoadTimeout.Duration > 0 {
		*value = activeProjectConfig.LoadTimeout.Duration
	}
}

func applyThumbnailsDefault(cmd *cobra.Command, flagName string, value *int) {
	if cmd.Flags().Changed(flagName) {
		return
	}
	if v, ok := readEnvInt(envThumbnails); ok && v > 0 {
		*value = v
		return
	}
	if activeProjectConfig != nil && activeProjectConfig.Thumbnails > 0 {
		*value = activeProjectConfig.Thumbnails
	}
}

func projectPolicies() map[string]float64 {
	if activeProjectConfig == nil {
		return nil
	}
	return activeProjectConfig.Policies
}

func readEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func readEnvDuration(name string) (time.Duration, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
