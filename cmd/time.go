package cmd

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// parseTimecode "90", "1:30", "00:01:30.5" veya "1,5" biçimindeki değeri saniyeye çevirir.
func parseTimecode(raw string) (float64, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if normalized == "" {
		return 0, fmt.Errorf("boş değer")
	}

	if !strings.Contains(normalized, ":") {
		v, err := strconv.ParseFloat(normalized, 64)
		if err != nil || v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
			return 0, fmt.Errorf("geçersiz sayı: %s", raw)
		}
		return v, nil
	}

	parts := strings.Split(normalized, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("zaman formatı hatalı: %s", raw)
	}

	parsed := make([]float64, len(parts))
	for i, part := range parts {
		p := strings.TrimSpace(part)
		if p == "" {
			return 0, fmt.Errorf("zaman formatı hatalı: %s", raw)
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil || v < 0 || math.IsInf(v, 0) {
			return 0, fmt.Errorf("zaman formatı hatalı: %s", raw)
		}
		parsed[i] = v
	}

	if len(parsed) == 2 {
		if parsed[1] >= 60 {
			return 0, fmt.Errorf("saniye 60'tan küçük olmalı")
		}
		return parsed[0]*60 + parsed[1], nil
	}

	if parsed[1] >= 60 || parsed[2] >= 60 {
		return 0, fmt.Errorf("dakika/saniye 60'tan küçük olmalı")
	}
	return parsed[0]*3600 + parsed[1]*60 + parsed[2], nil
}

// parseOptionalTimecode boş değer için ok=false döner.
func parseOptionalTimecode(raw string) (float64, bool, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, false, nil
	}
	v, err := parseTimecode(raw)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

// formatTimecode saniyeyi MM:SS.cc (bir saati aşınca H:MM:SS.cc) olarak yazar.
func formatTimecode(seconds float64) string {
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}
	cs := int64(math.Round(seconds * 100))
	h := cs / 360000
	m := (cs / 6000) % 60
	s := (cs / 100) % 60
	frac := cs % 100
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, frac)
	}
	return fmt.Sprintf("%02d:%02d.%02d", m, s, frac)
}
