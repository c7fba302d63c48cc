package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestWatcherBootstrapAndPoll(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "existing.mp4")
	if err := os.WriteFile(existing, []byte("old"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	w := NewWatcher(dir, []string{"mp4"}, false, time.Second)
	if err := w.Bootstrap(); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}

	now := time.Now()
	ready, err := w.Poll(now)
	if err != nil {
		t.Fatalf("poll failed: %v", err)
	}
	if len(ready) != 0 {
		t.Fatalf("expected no ready files after bootstrap")
	}

	newFile := filepath.Join(dir, "new.mp4")
	if err := os.WriteFile(newFile, []byte("new"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	ready, err = w.Poll(now.Add(100 * time.Millisecond))
	if err != nil {
		t.Fatalf("poll failed: %v", err)
	}
	if len(ready) != 0 {
		t.Fatalf("expected no ready files before settle")
	}

	ready, err = w.Poll(now.Add(2 * time.Second))
	if err != nil {
		t.Fatalf("poll failed: %v", err)
	}
	if len(ready) != 1 || ready[0] != newFile {
		t.Fatalf("expected new file ready, got: %#v", ready)
	}

	ready, err = w.Poll(now.Add(3 * time.Second))
	if err != nil {
		t.Fatalf("poll failed: %v", err)
	}
	if len(ready) != 0 {
		t.Fatalf("expected file to be emitted once")
	}
}

func TestWatcherDetectsModifiedFile(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "mod.mov")
	if err := os.WriteFile(f, []byte("a"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	w := NewWatcher(dir, nil, false, 500*time.Millisecond)
	if err := w.Bootstrap(); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}

	base := time.Now()
	if err := os.WriteFile(f, []byte("changed-content"), 0644); err != nil {
		t.Fatalf("rewrite failed: %v", err)
	}

	ready, err := w.Poll(base.Add(100 * time.Millisecond))
	if err != nil {
		t.Fatalf("poll failed: %v", err)
	}
	if len(ready) != 0 {
		t.Fatalf("expected no ready file before settle")
	}

	ready, err = w.Poll(base.Add(2 * time.Second))
	if err != nil {
		t.Fatalf("poll failed: %v", err)
	}
	if len(ready) != 1 || ready[0] != f {
		t.Fatalf("expected modified file ready once, got: %#v", ready)
	}
}

func TestWatcherSkipsTrimOutputsAndOtherFiles(t *testing.T) {
	dir := t.TempDir()
	w := NewWatcher(dir, nil, false, 10*time.Millisecond)
	if err := w.Bootstrap(); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}

	for _, name := range []string{"clip_trim.mp4", "clip_trim (2).mp4", "notes.txt", "clip.webm"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("data"), 0644); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}

	now := time.Now()
	if _, err := w.Poll(now); err != nil {
		t.Fatalf("poll failed: %v", err)
	}
	ready, err := w.Poll(now.Add(time.Second))
	if err != nil {
		t.Fatalf("poll failed: %v", err)
	}
	if len(ready) != 1 || filepath.Base(ready[0]) != "clip.webm" {
		t.Fatalf("expected only clip.webm, got %#v", ready)
	}
}

func TestWatcherWaitsForNonEmptyFile(t *testing.T) {
	dir := t.TempDir()
	w := NewWatcher(dir, []string{"mkv"}, false, 10*time.Millisecond)
	if err := w.Bootstrap(); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}

	f := filepath.Join(dir, "copying.mkv")
	if err := os.WriteFile(f, nil, 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	now := time.Now()
	w.Poll(now)
	ready, _ := w.Poll(now.Add(time.Second))
	if len(ready) != 0 {
		t.Fatalf("empty file must not be emitted, got %#v", ready)
	}
}

func TestWatcherRejectsFileRoot(t *testing.T) {
	f := filepath.Join(t.TempDir(), "x.mp4")
	if err := os.WriteFile(f, []byte("x"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := NewWatcher(f, nil, false, 0).Bootstrap(); err == nil {
		t.Fatalf("expected error for non-directory root")
	}
}

func TestEventWatcherSignalsOnCreate(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewAdaptiveWatcher(dir, nil, false, 10*time.Millisecond)
	if err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}
	defer backend.Close()
	if err := backend.Bootstrap(); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	if backend.Mode() != "event+polling" {
		t.Fatalf("unexpected mode: %s", backend.Mode())
	}

	if err := os.WriteFile(filepath.Join(dir, "drop.mp4"), []byte("x"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	select {
	case <-backend.Events():
	case <-time.After(5 * time.Second):
		t.Fatalf("expected fsnotify signal")
	}
}

func TestEventWatcherIgnoresTrimOutputsAndOtherFiles(t *testing.T) {
	dir := t.TempDir()
	w := &EventWatcher{poller: NewWatcher(dir, nil, false, 0)}

	tests := []struct {
		evt  fsnotify.Event
		want bool
	}{
		{fsnotify.Event{Name: filepath.Join(dir, "sunum.mp4"), Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: filepath.Join(dir, "sunum.MOV"), Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: filepath.Join(dir, "sunum_trim.mp4"), Op: fsnotify.Create}, false},
		{fsnotify.Event{Name: filepath.Join(dir, "notlar.txt"), Op: fsnotify.Create}, false},
		{fsnotify.Event{Name: filepath.Join(dir, "sunum.mp4"), Op: fsnotify.Chmod}, false},
	}
	for _, tt := range tests {
		if got := w.relevant(tt.evt); got != tt.want {
			t.Errorf("relevant(%s %s) = %v, want %v", tt.evt.Op, filepath.Base(tt.evt.Name), got, tt.want)
		}
	}
}
