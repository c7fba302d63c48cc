package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mlihgenel/slydetrim/internal/asset"
	"github.com/mlihgenel/slydetrim/internal/media"
	"github.com/mlihgenel/slydetrim/internal/policy"
	"github.com/mlihgenel/slydetrim/internal/timeline"
)

// openedSource kırpılacak kaynağın baytlarını, oynatılabilir önizleme
// dosyasını ve ffprobe bilgisini bir arada tutar.
type openedSource struct {
	Ref     string
	Asset   asset.Asset
	Preview *asset.Preview
	Info    media.Info
}

// openSource yerel yol, http(s) adresi veya s3://bucket/key referansını açar.
// Dönen önizleme çağıran tarafından bırakılmalıdır.
func openSource(ctx context.Context, ref string) (*openedSource, error) {
	a, err := asset.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !media.IsVideoFormat(a.Format) {
		return nil, fmt.Errorf("desteklenmeyen video formatı: %s", a.Name)
	}
	if filepath.Ext(a.Name) == "" {
		a.Name = a.Name + "." + a.Format
	}

	preview, err := asset.NewPreview(a)
	if err != nil {
		return nil, err
	}
	info, err := media.Probe(ctx, preview.Path())
	if err != nil {
		preview.Release()
		return nil, err
	}
	if info.Duration <= 0 {
		preview.Release()
		return nil, fmt.Errorf("video süresi okunamadı: %s", a.Name)
	}
	info.Path = ref
	info.FileName = a.Name
	info.Format = a.Format

	return &openedSource{Ref: ref, Asset: a, Preview: preview, Info: info}, nil
}

// trimOutputFor kaynak için <ad>_trim.<uzantı> çıktı yolunu döner.
// Uzak kaynaklarda çıktı dizini verilmemişse çalışma dizini kullanılır.
func trimOutputFor(ref string, a asset.Asset, customName string) string {
	if isLocalRef(ref) {
		return media.BuildTrimOutputPath(ref, outputDir, customName)
	}
	return media.BuildTrimOutputPath(filepath.Join(".", a.Name), outputDir, customName)
}

func isLocalRef(ref string) bool {
	lower := strings.ToLower(ref)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "s3://") {
		return false
	}
	_, err := os.Stat(ref)
	return err == nil
}

func resolvePolicy(name string) (policy.Definition, error) {
	return policy.Resolve(name, projectPolicies())
}

// resolveWindow --start/--end değerlerini politika sınırıyla birlikte
// seçim modeline uygular. adjusted=true ise istenen aralık kısıtlandı.
func resolveWindow(duration float64, startRaw, endRaw string, def policy.Definition) (timeline.Range, bool, error) {
	start, hasStart, err := parseOptionalTimecode(startRaw)
	if err != nil {
		return timeline.Range{}, false, fmt.Errorf("geçersiz --start: %w", err)
	}
	end, hasEnd, err := parseOptionalTimecode(endRaw)
	if err != nil {
		return timeline.Range{}, false, fmt.Errorf("geçersiz --end: %w", err)
	}
	if hasStart && start >= duration {
		return timeline.Range{}, false, fmt.Errorf("başlangıç (%s) video süresini (%s) aşıyor", formatTimecode(start), formatTimecode(duration))
	}
	if hasStart && hasEnd && end <= start {
		return timeline.Range{}, false, fmt.Errorf("bitiş başlangıçtan sonra olmalı")
	}

	m := timeline.New(duration, def.MaxDuration)
	if hasStart {
		m.Shift(start - m.Start())
		m.SetTrimStart(start)
	}
	if hasEnd {
		m.SetTrimEnd(end)
	} else {
		m.SetTrimEnd(duration)
	}

	sel := m.Range()
	adjusted := (hasStart && sel.Start != start) || (hasEnd && sel.End != end)
	return sel, adjusted, nil
}
