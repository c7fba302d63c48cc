package timeline

import "math"

// MinSelection seçim aralığının alabileceği en kısa süredir (saniye).
const MinSelection = 0.5

// Handle timeline üzerinde sürüklenebilen kontrol noktasıdır.
type Handle int

const (
	HandleStart Handle = iota
	HandleEnd
	HandlePlayhead
)

func (h Handle) String() string {
	switch h {
	case HandleStart:
		return "start"
	case HandleEnd:
		return "end"
	case HandlePlayhead:
		return "playhead"
	default:
		return "unknown"
	}
}

// Range kaydedilmiş bir seçim aralığıdır.
type Range struct {
	Start float64
	End   float64
}

// Length aralığın süresini döner.
func (r Range) Length() float64 {
	return r.End - r.Start
}

// Model kaynak videonun süresi üzerindeki seçim ve playhead durumunu tutar.
// Tüm mutasyonlar clamp edilir; hiçbir çağrı modeli geçersiz bırakmaz.
type Model struct {
	duration    float64
	maxDuration float64
	start       float64
	end         float64
	playhead    float64
}

// New süre belli olduktan sonra yeni bir model oluşturur.
// maxDuration <= 0 ise seçim uzunluğu sınırsızdır.
func New(duration float64, maxDuration float64) *Model {
	if !isFinite(duration) || duration < 0 {
		duration = 0
	}
	if !isFinite(maxDuration) || maxDuration < 0 {
		maxDuration = 0
	}
	if maxDuration > 0 && maxDuration < MinSelection {
		maxDuration = MinSelection
	}
	m := &Model{duration: duration, maxDuration: maxDuration}
	m.Reset()
	return m
}

func (m *Model) Duration() float64 { return m.duration }
func (m *Model) Start() float64    { return m.start }
func (m *Model) End() float64      { return m.end }
func (m *Model) Playhead() float64 { return m.playhead }

// MaxDuration politika sınırını döner; sınır yoksa ok=false.
func (m *Model) MaxDuration() (float64, bool) {
	return m.maxDuration, m.maxDuration > 0
}

// Selection seçili aralığın uzunluğunu döner.
func (m *Model) Selection() float64 {
	return m.end - m.start
}

// Range anlık seçim aralığını döner.
func (m *Model) Range() Range {
	return Range{Start: m.start, End: m.end}
}

// CanCommit seçim minimum uzunluğu sağlıyorsa true döner.
func (m *Model) CanCommit() bool {
	return m.Selection() >= MinSelection
}

// SetTrimStart başlangıcı [alt sınır, bitiş-MinSelection] aralığına çekerek ayarlar.
// Alt sınır max-duration politikasına bağlıdır: pencere sınırı aşamaz.
func (m *Model) SetTrimStart(t float64) {
	if !isFinite(t) {
		return
	}
	lo := 0.0
	if m.maxDuration > 0 {
		lo = math.Max(0, m.end-m.maxDuration)
	}
	hi := m.end - MinSelection
	m.start = clampPreferLow(t, lo, hi)
	m.settleStart()
}

// SetTrimEnd bitişi [başlangıç+MinSelection, üst sınır] aralığına çekerek ayarlar.
func (m *Model) SetTrimEnd(t float64) {
	if !isFinite(t) {
		return
	}
	lo := m.start + MinSelection
	hi := m.duration
	if m.maxDuration > 0 {
		hi = math.Min(m.duration, m.start+m.maxDuration)
	}
	m.end = clampPreferHigh(t, lo, hi)
	m.settleEnd()
}

// SetPlayhead playhead'i [0, süre] aralığında ayarlar.
func (m *Model) SetPlayhead(t float64) {
	if !isFinite(t) {
		return
	}
	m.playhead = clampPreferLow(t, 0, m.duration)
}

// Reset seçimi başlangıç durumuna döndürür.
func (m *Model) Reset() {
	m.start = 0
	m.end = m.duration
	if m.maxDuration > 0 && m.maxDuration < m.duration {
		m.end = m.maxDuration
	}
	if m.playhead > m.duration {
		m.playhead = m.duration
	}
}

// Adjust ilgili handle'ı delta saniye kadar kaydırır (klavye ile ince ayar).
func (m *Model) Adjust(h Handle, delta float64) {
	if !isFinite(delta) || delta == 0 {
		return
	}
	switch h {
	case HandleStart:
		m.SetTrimStart(m.start + delta)
	case HandleEnd:
		m.SetTrimEnd(m.end + delta)
	case HandlePlayhead:
		m.SetPlayhead(m.playhead + delta)
	}
}

// Shift seçim penceresini uzunluğunu koruyarak kaydırır.
func (m *Model) Shift(delta float64) {
	if !isFinite(delta) || delta == 0 {
		return
	}
	length := m.end - m.start
	next := clampPreferLow(m.start+delta, 0, m.duration-length)
	m.start = next
	m.end = next + length
	if m.end > m.duration {
		m.end = m.duration
	}
	m.settleEnd()
	m.settleStart()
}

// TimeAt piksel konumunu zamana çevirir: (px / genişlik) * süre.
func (m *Model) TimeAt(px float64, width float64) float64 {
	if width <= 0 || !isFinite(width) || !isFinite(px) {
		return 0
	}
	px = clampPreferLow(px, 0, width)
	return (px / width) * m.duration
}

// PositionOf zamanı piksel konumuna çevirir.
func (m *Model) PositionOf(t float64, width float64) float64 {
	if m.duration <= 0 || width <= 0 || !isFinite(t) {
		return 0
	}
	t = clampPreferLow(t, 0, m.duration)
	return (t / m.duration) * width
}

// maxNudge yuvarlama düzeltmesinde atılacak en fazla ulp adımıdır.
const maxNudge = 8

// settleStart, clamp aritmetiğinin yuvarlama hatasını başlangıcı ulp ulp
// kaydırarak giderir. Minimum seçim, politika sınırından önce gelir.
func (m *Model) settleStart() {
	for i := 0; i < maxNudge; i++ {
		sel := m.end - m.start
		switch {
		case sel < MinSelection && m.start > 0:
			m.start = math.Nextafter(m.start, math.Inf(-1))
		case m.maxDuration > 0 && sel > m.maxDuration:
			next := math.Nextafter(m.start, math.Inf(1))
			if m.end-next < MinSelection {
				return
			}
			m.start = next
		default:
			return
		}
	}
}

// settleEnd aynı düzeltmeyi bitiş için yapar; bitiş süreyi aşmaz.
func (m *Model) settleEnd() {
	for i := 0; i < maxNudge; i++ {
		sel := m.end - m.start
		switch {
		case sel < MinSelection && m.end < m.duration:
			next := math.Nextafter(m.end, math.Inf(1))
			if next > m.duration {
				return
			}
			m.end = next
		case m.maxDuration > 0 && sel > m.maxDuration:
			next := math.Nextafter(m.end, math.Inf(-1))
			if next-m.start < MinSelection {
				return
			}
			m.end = next
		default:
			return
		}
	}
}

func clampPreferLow(v, lo, hi float64) float64 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

// süre MinSelection'dan kısa olduğunda bitişin süreyi aşmaması için
// üst sınır önceliklidir.
func clampPreferHigh(v, lo, hi float64) float64 {
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
