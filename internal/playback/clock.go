package playback

import (
	"math"
	"sync"
	"time"
)

// Clock gerçek video yüzeyi olmayan ortamlar için sanal oynatıcıdır.
// Zaman duvar saatinden ilerler; now testlerde değiştirilebilir.
type Clock struct {
	mu       sync.Mutex
	duration float64
	base     float64
	started  time.Time
	playing  bool
	now      func() time.Time
}

// NewClock verilen süre için durmuş bir saat oluşturur.
func NewClock(duration float64) *Clock {
	return NewClockWithNow(duration, time.Now)
}

// NewClockWithNow zaman kaynağı verilerek saat oluşturur.
func NewClockWithNow(duration float64, now func() time.Time) *Clock {
	if math.IsNaN(duration) || duration < 0 {
		duration = 0
	}
	return &Clock{duration: duration, now: now}
}

func (c *Clock) CurrentTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current()
}

func (c *Clock) current() float64 {
	t := c.base
	if c.playing {
		t += c.now().Sub(c.started).Seconds()
	}
	if t > c.duration {
		t = c.duration
	}
	return t
}

func (c *Clock) Seek(t float64) {
	if math.IsNaN(t) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.base = math.Max(0, math.Min(t, c.duration))
	c.started = c.now()
}

func (c *Clock) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.playing {
		return
	}
	c.started = c.now()
	c.playing = true
}

func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.playing {
		return
	}
	c.base = c.current()
	c.playing = false
}

func (c *Clock) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}
