package media

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	ConflictOverwrite = "overwrite"
	ConflictSkip      = "skip"
	ConflictVersioned = "versioned"
)

// TrimSuffix kırpılmış çıktıların dosya adına eklenen son ek
const TrimSuffix = "_trim"

// NormalizeConflictPolicy geçersiz/boş değerlerde varsayılan policy döner.
func NormalizeConflictPolicy(policy string) string {
	switch strings.ToLower(strings.TrimSpace(policy)) {
	case ConflictOverwrite:
		return ConflictOverwrite
	case ConflictSkip:
		return ConflictSkip
	case ConflictVersioned, "":
		return ConflictVersioned
	default:
		return ""
	}
}

// BuildTrimOutputPath kırpılmış çıktının yolunu oluşturur: <ad>_trim.<uzantı>.
// Konteyner değişmediği için uzantı girdiden alınır.
func BuildTrimOutputPath(inputPath, outputDir, customName string) string {
	ext := filepath.Ext(inputPath)
	baseName := strings.TrimSuffix(filepath.Base(inputPath), ext) + TrimSuffix
	if customName != "" {
		baseName = strings.TrimSuffix(customName, filepath.Ext(customName))
	}

	outputFile := baseName + strings.ToLower(ext)
	if outputDir != "" {
		return filepath.Join(outputDir, outputFile)
	}
	return filepath.Join(filepath.Dir(inputPath), outputFile)
}

// ResolveOutputPathConflict hedef dosya adı çakışmasını verilen policy'ye göre çözer.
// skip=true dönerse ilgili iş atlanmalıdır.
func ResolveOutputPathConflict(path, policy string) (resolvedPath string, skip bool, err error) {
	normalized := NormalizeConflictPolicy(policy)
	if normalized == "" {
		return "", false, fmt.Errorf("geçersiz on-conflict politikası: %s", policy)
	}

	_, statErr := os.Stat(path)
	if statErr != nil {
		if errors.Is(statErr, os.ErrNotExist) {
			return path, false, nil
		}
		return "", false, statErr
	}

	switch normalized {
	case ConflictOverwrite:
		return path, false, nil
	case ConflictSkip:
		return path, true, nil
	default:
		ext := filepath.Ext(path)
		base := strings.TrimSuffix(path, ext)
		for i := 1; i < 100000; i++ {
			candidate := fmt.Sprintf("%s (%d)%s", base, i, ext)
			if _, err := os.Stat(candidate); errors.Is(err, os.ErrNotExist) {
				return candidate, false, nil
			} else if err != nil {
				return "", false, err
			}
		}
		return "", false, fmt.Errorf("uygun versioned dosya adı bulunamadı")
	}
}

// IsTrimOutput dosyanın daha önce üretilmiş bir kırpma çıktısı olup olmadığını döner.
// watch ve batch kendi çıktılarını tekrar işlememek için kullanır.
func IsTrimOutput(path string) bool {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if i := strings.LastIndex(name, " ("); i > 0 && strings.HasSuffix(name, ")") {
		name = name[:i]
	}
	return strings.HasSuffix(name, TrimSuffix)
}

// FormatSize dosya boyutunu okunabilir hale getirir
func FormatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
