package cmd

import (
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/mlihgenel/slydetrim/internal/config"
)

func withProjectConfig(t *testing.T, cfg *config.ProjectConfig) {
	t.Helper()
	prevCfg := activeProjectConfig
	t.Cleanup(func() { activeProjectConfig = prevCfg })
	activeProjectConfig = cfg
	t.Setenv(config.EnvConfigDir, t.TempDir())
}

func TestApplyRootDefaultsEnvOverridesConfig(t *testing.T) {
	withProjectConfig(t, &config.ProjectConfig{
		DefaultOutput: "/from-config",
		Workers:       3,
	})
	outputDir = ""
	workers = 1

	t.Setenv(envOutput, "/from-env")
	t.Setenv(envWorkers, "9")

	c := newTestRootCommand()
	if err := applyRootDefaults(c); err != nil {
		t.Fatalf("applyRootDefaults failed: %v", err)
	}

	if outputDir != "/from-env" {
		t.Fatalf("expected env output, got %s", outputDir)
	}
	if workers != 9 {
		t.Fatalf("expected env workers 9, got %d", workers)
	}
}

func TestApplyRootDefaultsRespectsChangedFlags(t *testing.T) {
	withProjectConfig(t, &config.ProjectConfig{
		DefaultOutput: "/from-config",
		Workers:       5,
		LogLevel:      "warn",
	})
	outputDir = "/manual"
	workers = 11
	logLevel = "debug"

	c := newTestRootCommand()
	if err := c.Flags().Set("output", "/manual"); err != nil {
		t.Fatalf("set output flag failed: %v", err)
	}
	if err := c.Flags().Set("workers", "11"); err != nil {
		t.Fatalf("set workers flag failed: %v", err)
	}
	if err := c.Flags().Set("log-level", "debug"); err != nil {
		t.Fatalf("set log-level flag failed: %v", err)
	}

	if err := applyRootDefaults(c); err != nil {
		t.Fatalf("applyRootDefaults failed: %v", err)
	}

	if outputDir != "/manual" {
		t.Fatalf("expected manual output unchanged, got %s", outputDir)
	}
	if workers != 11 {
		t.Fatalf("expected manual workers unchanged, got %d", workers)
	}
	if logLevel != "debug" {
		t.Fatalf("expected manual log level unchanged, got %s", logLevel)
	}
}

func TestApplyRootDefaultsUsesProjectLogLevel(t *testing.T) {
	withProjectConfig(t, &config.ProjectConfig{LogLevel: "warn"})
	t.Setenv("SLYDETRIM_LOG_LEVEL", "")
	logLevel = ""

	if err := applyRootDefaults(newTestRootCommand()); err != nil {
		t.Fatalf("applyRootDefaults failed: %v", err)
	}
	if logLevel != "warn" {
		t.Fatalf("expected project log level, got %q", logLevel)
	}
}

func TestApplyPolicyDefaultPrecedence(t *testing.T) {
	withProjectConfig(t, &config.ProjectConfig{Policy: "hero"})

	c := &cobra.Command{Use: "test"}
	c.Flags().String("policy", "", "")

	value := ""
	applyPolicyDefault(c, "policy", &value)
	if value != "hero" {
		t.Fatalf("expected project policy, got %q", value)
	}

	t.Setenv(envPolicy, "Frame")
	applyPolicyDefault(c, "policy", &value)
	if value != "frame" {
		t.Fatalf("expected env policy, got %q", value)
	}

	if err := c.Flags().Set("policy", "free"); err != nil {
		t.Fatalf("set policy flag failed: %v", err)
	}
	value = "free"
	applyPolicyDefault(c, "policy", &value)
	if value != "free" {
		t.Fatalf("flag must win, got %q", value)
	}
}

func TestApplyPolicyDefaultFallsBackToLastUsed(t *testing.T) {
	withProjectConfig(t, nil)
	if err := config.SetLastPolicy("hero"); err != nil {
		t.Fatalf("SetLastPolicy failed: %v", err)
	}

	c := &cobra.Command{Use: "test"}
	c.Flags().String("policy", "", "")
	value := ""
	applyPolicyDefault(c, "policy", &value)
	if value != "hero" {
		t.Fatalf("expected last used policy, got %q", value)
	}
}

func TestApplyLoadTimeoutAndRetryDefaults(t *testing.T) {
	withProjectConfig(t, &config.ProjectConfig{
		LoadTimeout: config.Duration{Duration: 45 * time.Second},
		Retry:       2,
		RetryDelay:  config.Duration{Duration: time.Second},
	})

	c := &cobra.Command{Use: "test"}
	c.Flags().Duration("load-timeout", 0, "")
	c.Flags().Int("retry", 0, "")
	c.Flags().Duration("retry-delay", 0, "")

	var timeout time.Duration
	applyLoadTimeoutDefault(c, "load-timeout", &timeout)
	if timeout != 45*time.Second {
		t.Fatalf("expected project load timeout, got %v", timeout)
	}

	t.Setenv(envLoadTimeout, "5s")
	applyLoadTimeoutDefault(c, "load-timeout", &timeout)
	if timeout != 5*time.Second {
		t.Fatalf("expected env load timeout, got %v", timeout)
	}

	retry, delay := 0, time.Duration(0)
	applyRetryDefaults(c, "retry", &retry, "retry-delay", &delay)
	if retry != 2 || delay != time.Second {
		t.Fatalf("unexpected retry defaults: %d %v", retry, delay)
	}
}

func newTestRootCommand() *cobra.Command {
	c := &cobra.Command{Use: "test"}
	c.Flags().String("output", "", "")
	c.Flags().Int("workers", 0, "")
	c.Flags().String("log-level", "", "")
	return c
}

func TestReadEnvHelpers(t *testing.T) {
	t.Setenv("X_INT", "12")
	if v, ok := readEnvInt("X_INT"); !ok || v != 12 {
		t.Fatalf("unexpected int parse result")
	}

	t.Setenv("X_DUR", "2s")
	if _, ok := readEnvDuration("X_DUR"); !ok {
		t.Fatalf("expected duration parse success")
	}

	t.Setenv("X_BAD", "soon")
	if _, ok := readEnvDuration("X_BAD"); ok {
		t.Fatalf("expected duration parse failure")
	}
}
