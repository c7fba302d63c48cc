package policy

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/mlihgenel/slydetrim/internal/media"
	"github.com/mlihgenel/slydetrim/internal/report"
)

const (
	Frame = "frame"
	Hero  = "hero"
	Free  = "free"

	// DefaultName policy seçilmediğinde kullanılır.
	DefaultName = Free
)

// Definition bir kırpma politikasını tutar.
// MaxDuration 0 ise seçim uzunluğu sınırsızdır.
type Definition struct {
	Name        string
	Description string
	MaxDuration float64
	OnConflict  string
	Report      string
	Custom      bool
}

// Limit politika bir üst sınır koyuyorsa onu döner.
func (d Definition) Limit() (float64, bool) {
	return d.MaxDuration, d.MaxDuration > 0
}

// Window verilen süre için politikanın varsayılan kırpma penceresini döner.
func (d Definition) Window(duration float64) (float64, float64) {
	if math.IsNaN(duration) || duration < 0 {
		duration = 0
	}
	end := duration
	if d.MaxDuration > 0 && d.MaxDuration < end {
		end = d.MaxDuration
	}
	return 0, end
}

// LimitText sınırı okunabilir biçimde döner.
func (d Definition) LimitText() string {
	if d.MaxDuration <= 0 {
		return "sinirsiz"
	}
	return fmt.Sprintf("%gs", d.MaxDuration)
}

var builtins = map[string]Definition{
	Frame: {
		Name:        Frame,
		Description: "Slayt karesi arka planı için kısa video",
		MaxDuration: 10,
		OnConflict:  media.ConflictVersioned,
		Report:      report.FormatOff,
	},
	Hero: {
		Name:        Hero,
		Description: "Kapak / hero medya için uzun video",
		MaxDuration: 30,
		OnConflict:  media.ConflictVersioned,
		Report:      report.FormatOff,
	},
	Free: {
		Name:        Free,
		Description: "Süre sınırı yok",
		OnConflict:  media.ConflictVersioned,
		Report:      report.FormatOff,
	},
}

// Resolve isimden politika döner. overrides proje yapılandırmasındaki
// "policies" alanıdır; built-in sınırları değiştirebilir veya yeni politika ekleyebilir.
func Resolve(name string, overrides map[string]float64) (Definition, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = DefaultName
	}

	def, ok := builtins[key]
	if seconds, has := lookupOverride(overrides, key); has {
		if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
			return Definition{}, fmt.Errorf("geçersiz politika süresi (%s): %v", key, seconds)
		}
		if !ok {
			def = Definition{
				Name:        key,
				Description: "Proje tanımlı politika",
				OnConflict:  media.ConflictVersioned,
				Report:      report.FormatOff,
				Custom:      true,
			}
		}
		def.MaxDuration = seconds
		return def, nil
	}
	if !ok {
		return Definition{}, fmt.Errorf("politika bulunamadı: %s", name)
	}
	return def, nil
}

func lookupOverride(overrides map[string]float64, key string) (float64, bool) {
	for k, v := range overrides {
		if strings.ToLower(strings.TrimSpace(k)) == key {
			return v, true
		}
	}
	return 0, false
}

// Names built-in ve proje tanımlı politika isimlerini döner.
func Names(overrides map[string]float64) []string {
	names := []string{Frame, Hero, Free}
	var custom []string
	for k := range overrides {
		key := strings.ToLower(strings.TrimSpace(k))
		if _, ok := builtins[key]; ok || key == "" {
			continue
		}
		custom = append(custom, key)
	}
	sort.Strings(custom)
	return append(names, custom...)
}
