package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mlihgenel/slydetrim/internal/media"
)

// DefaultSettle bir dosyanın yazımının bittiğini kabul etmek için beklenen süre.
const DefaultSettle = 1500 * time.Millisecond

// Backend gelen kutusu izleyicilerinin ortak arayüzü.
type Backend interface {
	Bootstrap() error
	Poll(now time.Time) ([]string, error)
	// Events dosya sistemi değişince sinyal verir; polling backend'de nil döner.
	Events() <-chan struct{}
	Close() error
	Mode() string
}

type fileState struct {
	Size       int64
	ModTime    time.Time
	LastChange time.Time
	Processed  bool
}

// Watcher polling tabanlı video gelen kutusu izleyicisidir.
// Kırpılmış çıktılar (<ad>_trim.<uzantı>) tekrar işlenmemek için atlanır.
type Watcher struct {
	Root      string
	Formats   []string
	Recursive bool
	SettleFor time.Duration

	states map[string]fileState
}

// NewWatcher yeni bir watcher oluşturur. formats boşsa tüm video formatları izlenir.
func NewWatcher(root string, formats []string, recursive bool, settleFor time.Duration) *Watcher {
	if settleFor <= 0 {
		settleFor = DefaultSettle
	}
	normalized := make([]string, 0, len(formats))
	for _, f := range formats {
		if n := media.NormalizeFormat(f); n != "" {
			normalized = append(normalized, n)
		}
	}
	if len(normalized) == 0 {
		normalized = append(normalized, media.VideoFormats...)
	}
	return &Watcher{
		Root:      root,
		Formats:   normalized,
		Recursive: recursive,
		SettleFor: settleFor,
		states:    make(map[string]fileState),
	}
}

// Bootstrap mevcut dosyaları "zaten işlenmiş" olarak kaydeder.
func (w *Watcher) Bootstrap() error {
	now := time.Now()
	return w.scan(func(path string, info os.FileInfo) error {
		w.states[path] = fileState{
			Size:       info.Size(),
			ModTime:    info.ModTime(),
			LastChange: now,
			Processed:  true,
		}
		return nil
	})
}

// Poll yeni/degisen ve stabilize olmuş dosyaları döner.
func (w *Watcher) Poll(now time.Time) ([]string, error) {
	seen := make(map[string]struct{})
	var ready []string

	err := w.scan(func(path string, info os.FileInfo) error {
		seen[path] = struct{}{}
		state, ok := w.states[path]

		if !ok {
			w.states[path] = fileState{
				Size:       info.Size(),
				ModTime:    info.ModTime(),
				LastChange: now,
			}
			return nil
		}

		if state.Size != info.Size() || !state.ModTime.Equal(info.ModTime()) {
			state.Size = info.Size()
			state.ModTime = info.ModTime()
			state.LastChange = now
			state.Processed = false
			w.states[path] = state
			return nil
		}

		// Boş dosya henüz kopyalanıyor olabilir.
		if !state.Processed && info.Size() > 0 && now.Sub(state.LastChange) >= w.SettleFor {
			state.Processed = true
			w.states[path] = state
			ready = append(ready, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for path := range w.states {
		if _, ok := seen[path]; !ok {
			delete(w.states, path)
		}
	}

	return ready, nil
}

// Events polling backend'de sinyal üretmez.
func (w *Watcher) Events() <-chan struct{} { return nil }

func (w *Watcher) Close() error { return nil }

func (w *Watcher) Mode() string { return "polling" }

func (w *Watcher) scan(onFile func(path string, info os.FileInfo) error) error {
	info, err := os.Stat(w.Root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("watch yolu dizin olmalıdır: %s", w.Root)
	}

	walkFn := func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if !w.Recursive && path != w.Root {
				return filepath.SkipDir
			}
			return nil
		}
		if !media.HasFormatExtension(path, w.Formats...) || media.IsTrimOutput(path) {
			return nil
		}
		info, statErr := d.Info()
		if statErr != nil {
			return nil
		}
		return onFile(path, info)
	}

	return filepath.WalkDir(w.Root, walkFn)
}
