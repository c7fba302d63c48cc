package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/mlihgenel/slydetrim/internal/logging"
	"github.com/mlihgenel/slydetrim/internal/media"
)

// EventWatcher fsnotify olaylarıyla polling'i tetikler.
// Settle süresi yine polling tarafında ölçülür.
type EventWatcher struct {
	poller *Watcher
	fs     *fsnotify.Watcher
	logger zerolog.Logger

	root      string
	recursive bool

	events chan struct{}
	done   chan struct{}
	once   sync.Once
}

// NewEventWatcher fsnotify backend'i oluşturur.
func NewEventWatcher(root string, formats []string, recursive bool, settleFor time.Duration) (*EventWatcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &EventWatcher{
		poller:    NewWatcher(root, formats, recursive, settleFor),
		fs:        fs,
		logger:    logging.WithComponent("watch"),
		root:      root,
		recursive: recursive,
		events:    make(chan struct{}, 1),
		done:      make(chan struct{}),
	}, nil
}

// NewAdaptiveWatcher event backend'i dener; olmazsa polling fallback ve hatayı döner.
func NewAdaptiveWatcher(root string, formats []string, recursive bool, settleFor time.Duration) (Backend, error) {
	eventWatcher, err := NewEventWatcher(root, formats, recursive, settleFor)
	if err != nil {
		return NewWatcher(root, formats, recursive, settleFor), err
	}
	return eventWatcher, nil
}

func (w *EventWatcher) Bootstrap() error {
	if err := w.poller.Bootstrap(); err != nil {
		return err
	}
	if err := w.watchDirectories(); err != nil {
		return err
	}

	go w.loop()
	return nil
}

func (w *EventWatcher) Poll(now time.Time) ([]string, error) {
	return w.poller.Poll(now)
}

func (w *EventWatcher) Events() <-chan struct{} {
	return w.events
}

func (w *EventWatcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fs.Close()
	})
	return err
}

func (w *EventWatcher) Mode() string { return "event+polling" }

func (w *EventWatcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case evt, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if w.relevant(evt) {
				w.signal()
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			// Polling devam ettiği için yalnızca logla.
			w.logger.Debug().Err(err).Msg("fsnotify error")
			w.signal()
		}
	}
}

// relevant yeni alt dizinleri izlemeye ekler ve yalnızca video olaylarında true döner.
// Kendi kırpma çıktılarımız tur tetiklemez.
func (w *EventWatcher) relevant(evt fsnotify.Event) bool {
	if evt.Has(fsnotify.Create) {
		if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
			if !w.recursive {
				return false
			}
			if err := w.fs.Add(evt.Name); err != nil {
				w.logger.Warn().Err(err).Str("dir", evt.Name).Msg("subdirectory watch failed")
			}
			return true
		}
	}
	if evt.Op == fsnotify.Chmod {
		return false
	}
	return media.HasFormatExtension(evt.Name, w.poller.Formats...) && !media.IsTrimOutput(evt.Name)
}

func (w *EventWatcher) signal() {
	select {
	case w.events <- struct{}{}:
	default:
	}
}

func (w *EventWatcher) watchDirectories() error {
	info, err := os.Stat(w.root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("watch yolu dizin olmalıdır: %s", w.root)
	}

	if !w.recursive {
		return w.fs.Add(w.root)
	}

	return filepath.WalkDir(w.root, func(path string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		return w.fs.Add(path)
	})
}
