package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mlihgenel/slydetrim/internal/media"
	"github.com/mlihgenel/slydetrim/internal/report"
)

const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
)

func NormalizeOutputFormat(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", OutputFormatText:
		return OutputFormatText
	case OutputFormatJSON:
		return OutputFormatJSON
	default:
		return ""
	}
}

func isJSONOutput() bool {
	return NormalizeOutputFormat(outputFormat) == OutputFormatJSON
}

func outputFormatError(format string) error {
	return fmt.Errorf("geçersiz output-format: %s (text|json)", format)
}

func printJSON(payload any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

// resolveBatchOutputPath çakışma politikasını uygular. reserved aynı
// çalıştırmada başka bir işe verilmiş yolları tutar.
func resolveBatchOutputPath(basePath, conflictPolicy string, reserved map[string]struct{}) (string, string, error) {
	policy := media.NormalizeConflictPolicy(conflictPolicy)
	if policy == "" {
		return "", "", fmt.Errorf("geçersiz on-conflict politikası: %s", conflictPolicy)
	}

	resolved, skip, err := media.ResolveOutputPathConflict(basePath, policy)
	if err != nil {
		return "", "", err
	}
	if skip {
		return resolved, "output_exists", nil
	}

	if _, taken := reserved[resolved]; taken {
		switch policy {
		case media.ConflictSkip:
			return resolved, "output_reserved", nil
		case media.ConflictVersioned:
			ext := filepath.Ext(basePath)
			base := strings.TrimSuffix(basePath, ext)
			for i := 1; ; i++ {
				candidate := fmt.Sprintf("%s (%d)%s", base, i, ext)
				if _, used := reserved[candidate]; used {
					continue
				}
				if _, statErr := os.Stat(candidate); statErr == nil {
					continue
				}
				resolved = candidate
				break
			}
		}
	}

	reserved[resolved] = struct{}{}
	return resolved, "", nil
}

// emitReport raporu verilen formatta dosyaya ya da stdout'a yazar.
func emitReport(format, path string, r report.Report) error {
	normalized := report.NormalizeFormat(format)
	if normalized == "" {
		return fmt.Errorf("geçersiz report formatı: %s", format)
	}
	if normalized == report.FormatOff {
		return nil
	}

	content, err := report.Render(normalized, r)
	if err != nil {
		return err
	}
	if strings.TrimSpace(path) == "" {
		fmt.Println(content)
		return nil
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(content), 0644)
}
