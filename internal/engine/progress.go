package engine

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// progressReader ffmpeg'in "-progress pipe:2" çıktısını okur.
// Her blok "progress=continue|end" satırıyla biter; blok sonunda
// geçen süre saniye olarak bildirilir. İlerleme dışındaki satırlar
// hata mesajı için son satırlarda tutulur.
type progressReader struct {
	onProgress func(elapsed float64)
	tail       []string
	maxTail    int
}

func newProgressReader(onProgress func(elapsed float64)) *progressReader {
	return &progressReader{onProgress: onProgress, maxTail: 20}
}

func (p *progressReader) read(r io.Reader) {
	scanner := bufio.NewScanner(r)
	elapsed := -1.0

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok || !isProgressKey(key) {
			p.keep(line)
			continue
		}

		switch key {
		// out_time_ms da mikrosaniye cinsindendir.
		case "out_time_us", "out_time_ms":
			if us, err := strconv.ParseInt(value, 10, 64); err == nil && us >= 0 {
				elapsed = float64(us) / 1e6
			}
		case "out_time":
			if sec, ok := parseClock(value); ok {
				elapsed = sec
			}
		case "progress":
			if elapsed >= 0 && p.onProgress != nil {
				p.onProgress(elapsed)
			}
			elapsed = -1
		}
	}
}

func (p *progressReader) keep(line string) {
	p.tail = append(p.tail, line)
	if len(p.tail) > p.maxTail {
		p.tail = p.tail[len(p.tail)-p.maxTail:]
	}
}

// Output ilerleme dışı satırları döner.
func (p *progressReader) Output() string {
	return strings.Join(p.tail, "\n")
}

func isProgressKey(key string) bool {
	switch key {
	case "frame", "fps", "stream_0_0_q", "bitrate", "total_size",
		"out_time_us", "out_time_ms", "out_time", "dup_frames",
		"drop_frames", "speed", "progress":
		return true
	}
	return strings.HasPrefix(key, "stream_")
}

// parseClock "HH:MM:SS.micro" biçimini saniyeye çevirir.
func parseClock(value string) (float64, bool) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 3 {
		return 0, false
	}
	h, err1 := strconv.ParseFloat(parts[0], 64)
	m, err2 := strconv.ParseFloat(parts[1], 64)
	s, err3 := strconv.ParseFloat(parts[2], 64)
	if err1 != nil || err2 != nil || err3 != nil || h < 0 || m < 0 || s < 0 {
		return 0, false
	}
	return h*3600 + m*60 + s, true
}

// percentTracker geçen süreyi seçim uzunluğuna göre monoton yüzdeye çevirir.
// 100 yalnızca iş başarıyla bittiğinde verilir.
type percentTracker struct {
	length float64
	last   int
}

func newPercentTracker(length float64) *percentTracker {
	return &percentTracker{length: length, last: -1}
}

// update yeni bir yüzde oluştuysa onu ve true döner.
func (t *percentTracker) update(elapsed float64) (uint8, bool) {
	if t.length <= 0 {
		return 0, false
	}
	pct := int(elapsed / t.length * 100)
	if pct > 99 {
		pct = 99
	}
	if pct < 0 {
		pct = 0
	}
	if pct <= t.last {
		return 0, false
	}
	t.last = pct
	return uint8(pct), true
}
