package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mlihgenel/slydetrim/internal/media"
	"github.com/mlihgenel/slydetrim/internal/report"
)

const projectConfigFileName = ".slydetrim.yaml"

// ProjectConfig proje bazlı CLI varsayılanlarını tutar.
type ProjectConfig struct {
	DefaultOutput string             `yaml:"default_output"`
	Workers       int                `yaml:"workers"`
	OnConflict    string             `yaml:"on_conflict"`
	Retry         int                `yaml:"retry"`
	RetryDelay    Duration           `yaml:"retry_delay"`
	LoadTimeout   Duration           `yaml:"load_timeout"`
	Thumbnails    int                `yaml:"thumbnails"`
	ReportFormat  string             `yaml:"report_format"`
	LogLevel      string             `yaml:"log_level"`
	Policy        string             `yaml:"policy"`
	Policies      map[string]float64 `yaml:"policies"`
}

// Duration YAML içinde "1s", "500ms" gibi değerleri ya da saniye sayısını kabul eder.
type Duration struct {
	time.Duration
}

// UnmarshalYAML string veya sayısal süreyi çözer.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("geçersiz süre değeri")
	}
	raw := strings.TrimSpace(value.Value)
	if raw == "" {
		d.Duration = 0
		return nil
	}
	if value.Tag == "!!int" || value.Tag == "!!float" {
		var secs float64
		if err := value.Decode(&secs); err != nil {
			return fmt.Errorf("geçersiz süre değeri")
		}
		d.Duration = time.Duration(secs * float64(time.Second))
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("geçersiz süre değeri: %s", raw)
	}
	d.Duration = parsed
	return nil
}

// LoadProjectConfig currentDir'den yukarı doğru .slydetrim.yaml arar.
// Dosya yoksa (nil, "", nil) döner.
func LoadProjectConfig(currentDir string) (*ProjectConfig, string, error) {
	path, err := findProjectConfigPath(currentDir)
	if err != nil {
		return nil, "", err
	}
	if path == "" {
		return nil, "", nil
	}

	cfg, err := parseProjectConfig(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func findProjectConfigPath(startDir string) (string, error) {
	if strings.TrimSpace(startDir) == "" {
		return "", errors.New("geçersiz çalışma dizini")
	}

	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(dir, projectConfigFileName)
		info, statErr := os.Stat(candidate)
		if statErr == nil && !info.IsDir() {
			return candidate, nil
		}
		if statErr != nil && !errors.Is(statErr, os.ErrNotExist) {
			return "", statErr
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", nil
}

func parseProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &ProjectConfig{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *ProjectConfig) validate() error {
	c.OnConflict = strings.ToLower(strings.TrimSpace(c.OnConflict))
	c.ReportFormat = strings.ToLower(strings.TrimSpace(c.ReportFormat))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.Policy = strings.ToLower(strings.TrimSpace(c.Policy))

	if c.Workers < 0 {
		return fmt.Errorf("workers 0 veya daha büyük olmalı")
	}
	if c.Retry < 0 {
		return fmt.Errorf("retry 0 veya daha büyük olmalı")
	}
	if c.RetryDelay.Duration < 0 {
		return fmt.Errorf("retry_delay negatif olamaz")
	}
	if c.LoadTimeout.Duration < 0 {
		return fmt.Errorf("load_timeout negatif olamaz")
	}
	if c.Thumbnails < 0 {
		return fmt.Errorf("thumbnails 0 veya daha büyük olmalı")
	}
	if c.OnConflict != "" && media.NormalizeConflictPolicy(c.OnConflict) == "" {
		return fmt.Errorf("geçersiz on_conflict: %s", c.OnConflict)
	}
	if c.ReportFormat != "" && report.NormalizeFormat(c.ReportFormat) == "" {
		return fmt.Errorf("geçersiz report_format: %s", c.ReportFormat)
	}
	for name, limit := range c.Policies {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("policy adı boş olamaz")
		}
		if math.IsNaN(limit) || limit < 0 {
			return fmt.Errorf("geçersiz policy süresi (%s): %v", name, limit)
		}
	}
	return nil
}
