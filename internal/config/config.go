package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// EnvConfigDir kullanıcı yapılandırma dizinini ezmek için kullanılır.
const EnvConfigDir = "SLYDETRIM_CONFIG_DIR"

// AppConfig kullanıcıya ait kalıcı tercihleri tutar
type AppConfig struct {
	FirstRunCompleted bool   `json:"first_run_completed"`
	DefaultOutputDir  string `json:"default_output_dir,omitempty"`
	LastPolicy        string `json:"last_policy,omitempty"`
	LastSource        string `json:"last_source,omitempty"`
}

// configDir yapılandırma dizinini döner (~/.slydetrim)
func configDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(EnvConfigDir)); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".slydetrim"), nil
}

// EditorLogPath etkileşimli editörün log dosyasının yolunu döner
func EditorLogPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "editor.log"), nil
}

// configPath yapılandırma dosya yolunu döner
func configPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadConfig yapılandırmayı dosyadan okur
func LoadConfig() (*AppConfig, error) {
	path, err := configPath()
	if err != nil {
		return &AppConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		// Dosya yoksa varsayılan config döndür
		return &AppConfig{}, nil
	}

	var cfg AppConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return &AppConfig{}, nil
	}

	return &cfg, nil
}

// SaveConfig yapılandırmayı dosyaya kaydeder
func SaveConfig(cfg *AppConfig) error {
	dir, err := configDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// IsFirstRun editörün ilk kez açılıp açılmadığını kontrol eder
func IsFirstRun() bool {
	cfg, _ := LoadConfig()
	return !cfg.FirstRunCompleted
}

// MarkFirstRunDone ilk çalıştırmayı tamamlandı olarak işaretler
func MarkFirstRunDone() error {
	cfg, _ := LoadConfig()
	cfg.FirstRunCompleted = true
	return SaveConfig(cfg)
}

// GetDefaultOutputDir varsayılan çıktı dizinini döner
func GetDefaultOutputDir() string {
	cfg, _ := LoadConfig()
	return cfg.DefaultOutputDir
}

// GetLastPolicy son kullanılan süre politikasını döner
func GetLastPolicy() string {
	cfg, _ := LoadConfig()
	return cfg.LastPolicy
}

// SetLastPolicy editörde seçilen politikayı hatırlar
func SetLastPolicy(name string) error {
	cfg, _ := LoadConfig()
	cfg.LastPolicy = strings.ToLower(strings.TrimSpace(name))
	return SaveConfig(cfg)
}

// RememberSource son açılan kaynağı kaydeder
func RememberSource(ref string) error {
	cfg, _ := LoadConfig()
	cfg.LastSource = ref
	return SaveConfig(cfg)
}
