package cmd

import (
	"context"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mlihgenel/slydetrim/internal/asset"
	"github.com/mlihgenel/slydetrim/internal/config"
	"github.com/mlihgenel/slydetrim/internal/engine"
	"github.com/mlihgenel/slydetrim/internal/pipeline"
	"github.com/mlihgenel/slydetrim/internal/policy"
	"github.com/mlihgenel/slydetrim/internal/timeline"
	"github.com/mlihgenel/slydetrim/internal/ui"
)

type stubEngine struct {
	mu      sync.Mutex
	loadErr error
	jobs    []engine.Job
}

func (s *stubEngine) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

func (s *stubEngine) Submit(ctx context.Context, job engine.Job, progress func(engine.Progress)) (engine.Result, error) {
	s.mu.Lock()
	s.jobs = append(s.jobs, job)
	s.mu.Unlock()
	progress(engine.Progress{JobID: job.ID, Percent: 100})
	return engine.Result{JobID: job.ID, Format: job.Format, Data: []byte("trimmed")}, nil
}

func (s *stubEngine) Teardown() error { return nil }

func newTestEditor(t *testing.T, duration, maxDuration float64, eng *stubEngine) (editorModel, *pipeline.Pipeline) {
	t.Helper()
	p := pipeline.New(pipeline.Options{
		Source:      asset.Asset{Name: "klip.mp4", Format: "mp4", Data: []byte("source")},
		Duration:    duration,
		MaxDuration: maxDuration,
		Session:     eng,
	})
	m := newEditorModel(context.Background(), p, editorOptions{Name: "klip.mp4", Duration: duration})
	return m, p
}

func sendMsg(t *testing.T, m editorModel, msg tea.Msg) (editorModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	em, ok := next.(editorModel)
	if !ok {
		t.Fatalf("unexpected model type %T", next)
	}
	return em, cmd
}

func startEditor(t *testing.T, m editorModel) editorModel {
	t.Helper()
	m, _ = sendMsg(t, m, m.loadCmd(false)())
	if m.pipe.State() != pipeline.StateReady {
		t.Fatalf("expected ready state, got %v", m.pipe.State())
	}
	return m
}

func key(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func runeKey(r rune) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}} }

func assertQuit(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestEditorKeysAdjustFocusedHandle(t *testing.T) {
	m, p := newTestEditor(t, 60, 0, &stubEngine{})
	m = startEditor(t, m)

	m, _ = sendMsg(t, m, key(tea.KeyTab))
	if m.focus != timeline.HandleEnd {
		t.Fatalf("expected end handle focus, got %v", m.focus)
	}
	m, _ = sendMsg(t, m, key(tea.KeyLeft))
	if sel := p.Selection(); math.Abs(sel.End-59.9) > 1e-9 {
		t.Fatalf("expected end 59.9, got %v", sel.End)
	}

	m, _ = sendMsg(t, m, key(tea.KeyShiftTab))
	m, _ = sendMsg(t, m, key(tea.KeyUp))
	m, _ = sendMsg(t, m, key(tea.KeyRight))
	if sel := p.Selection(); math.Abs(sel.Start-0.5) > 1e-9 {
		t.Fatalf("expected start 0.5, got %v", sel.Start)
	}
}

func TestEditorStepLadderStaysInBounds(t *testing.T) {
	m, _ := newTestEditor(t, 60, 0, &stubEngine{})
	for i := 0; i < 10; i++ {
		m, _ = sendMsg(t, m, key(tea.KeyDown))
	}
	if m.stepIdx != 0 {
		t.Fatalf("expected smallest step, got index %d", m.stepIdx)
	}
	for i := 0; i < 10; i++ {
		m, _ = sendMsg(t, m, key(tea.KeyUp))
	}
	if m.step() != stepLadder[len(stepLadder)-1] {
		t.Fatalf("expected largest step, got %v", m.step())
	}
}

func TestEditorShiftMovesWholeSelection(t *testing.T) {
	m, p := newTestEditor(t, 120, 20, &stubEngine{})
	m, _ = sendMsg(t, m, key(tea.KeyUp))
	m, _ = sendMsg(t, m, key(tea.KeyUp))
	m, _ = sendMsg(t, m, key(tea.KeyShiftRight))

	sel := p.Selection()
	if math.Abs(sel.Start-1) > 1e-9 || math.Abs(sel.End-21) > 1e-9 {
		t.Fatalf("expected 1-21 after shift, got %v-%v", sel.Start, sel.End)
	}
}

func TestEditorMouseDragsStartHandle(t *testing.T) {
	m, p := newTestEditor(t, 60, 0, &stubEngine{})
	m, _ = sendMsg(t, m, tea.WindowSizeMsg{Width: 61 + 2*trackLeft, Height: 20})

	m, _ = sendMsg(t, m, tea.MouseMsg{X: trackLeft, Y: 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if m.focus != timeline.HandleStart {
		t.Fatalf("expected start handle to be grabbed, got %v", m.focus)
	}
	m, _ = sendMsg(t, m, tea.MouseMsg{X: trackLeft + 30, Y: 1, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	m, _ = sendMsg(t, m, tea.MouseMsg{X: trackLeft + 30, Y: 1, Action: tea.MouseActionRelease})

	if sel := p.Selection(); math.Abs(sel.Start-30) > 1e-9 || sel.End != 60 {
		t.Fatalf("expected 30-60 after drag, got %v-%v", sel.Start, sel.End)
	}
	if _, ok := m.drag.Active(); ok {
		t.Fatalf("drag must end on release")
	}
}

func TestEditorCommitQuitsWithOutput(t *testing.T) {
	eng := &stubEngine{}
	m, p := newTestEditor(t, 60, 20, eng)
	m = startEditor(t, m)

	m, cmd := sendMsg(t, m, key(tea.KeyEnter))
	if cmd == nil {
		t.Fatalf("expected commit command")
	}
	m, cmd = sendMsg(t, m, cmd())
	assertQuit(t, cmd)

	if m.result != editorCommitted {
		t.Fatalf("expected committed result, got %v", m.result)
	}
	if string(m.output.Data) != "trimmed" {
		t.Fatalf("unexpected output data %q", m.output.Data)
	}
	if m.committed.Start != 0 || m.committed.End != 20 {
		t.Fatalf("unexpected committed range %+v", m.committed)
	}
	if p.State() != pipeline.StateDone {
		t.Fatalf("expected done state, got %v", p.State())
	}
	if len(eng.jobs) != 1 || eng.jobs[0].End != 20 {
		t.Fatalf("unexpected engine jobs: %+v", eng.jobs)
	}
}

func TestEditorCommitRejectedWhileLoading(t *testing.T) {
	eng := &stubEngine{}
	m, _ := newTestEditor(t, 60, 0, eng)

	m, cmd := sendMsg(t, m, key(tea.KeyEnter))
	if cmd != nil {
		t.Fatalf("commit must not start before the engine is ready")
	}
	if !m.statusErr {
		t.Fatalf("expected error status, got %q", m.status)
	}
	if len(eng.jobs) != 0 {
		t.Fatalf("engine must not receive jobs")
	}
}

func TestEditorSkipKeepsSource(t *testing.T) {
	m, p := newTestEditor(t, 60, 0, &stubEngine{})
	m = startEditor(t, m)

	m, cmd := sendMsg(t, m, runeKey('s'))
	assertQuit(t, cmd)
	if m.result != editorSkipped || string(m.output.Data) != "source" {
		t.Fatalf("expected skipped with source data, got %v %q", m.result, m.output.Data)
	}
	if p.State() != pipeline.StateDone {
		t.Fatalf("expected done state, got %v", p.State())
	}
}

func TestEditorEscCancels(t *testing.T) {
	m, p := newTestEditor(t, 60, 0, &stubEngine{})
	m = startEditor(t, m)

	m, cmd := sendMsg(t, m, key(tea.KeyEsc))
	assertQuit(t, cmd)
	if m.result != editorCancelled {
		t.Fatalf("expected cancelled result, got %v", m.result)
	}
	if p.State() != pipeline.StateCancelled {
		t.Fatalf("expected cancelled state, got %v", p.State())
	}
}

func TestEditorRetryAfterLoadFailure(t *testing.T) {
	eng := &stubEngine{loadErr: errors.New("wasm yok")}
	m, p := newTestEditor(t, 60, 0, eng)

	m, _ = sendMsg(t, m, m.loadCmd(false)())
	if m.err == nil || !p.CanRetry() {
		t.Fatalf("expected retryable load failure, err=%v", m.err)
	}

	eng.mu.Lock()
	eng.loadErr = nil
	eng.mu.Unlock()

	m, cmd := sendMsg(t, m, runeKey('r'))
	if cmd == nil {
		t.Fatalf("expected retry command")
	}
	m, _ = sendMsg(t, m, cmd())
	if p.State() != pipeline.StateReady {
		t.Fatalf("expected ready after retry, got %v", p.State())
	}
	if m.err != nil {
		t.Fatalf("expected error cleared, got %v", m.err)
	}
}

func TestEditorEscAbandonsAfterLoadFailure(t *testing.T) {
	eng := &stubEngine{loadErr: errors.New("wasm yok")}
	m, p := newTestEditor(t, 60, 0, eng)
	m, _ = sendMsg(t, m, m.loadCmd(false)())

	m, cmd := sendMsg(t, m, key(tea.KeyEsc))
	assertQuit(t, cmd)
	if m.result != editorAbandoned {
		t.Fatalf("expected abandoned result, got %v", m.result)
	}
	if p.CanRetry() || !p.Terminal() {
		t.Fatalf("abandoned pipeline must be terminal")
	}
}

func TestEditorResetRestoresInitialRange(t *testing.T) {
	m, p := newTestEditor(t, 60, 0, &stubEngine{})
	m = startEditor(t, m)

	m, _ = sendMsg(t, m, key(tea.KeyRight))
	m, _ = sendMsg(t, m, runeKey('r'))

	if sel := p.Selection(); sel.Start != 0 || sel.End != 60 {
		t.Fatalf("expected full range after reset, got %v-%v", sel.Start, sel.End)
	}
}

func TestEditorBracketKeysUsePlayhead(t *testing.T) {
	m, p := newTestEditor(t, 60, 0, &stubEngine{})
	m, _ = sendMsg(t, m, key(tea.KeyTab))
	m, _ = sendMsg(t, m, key(tea.KeyTab))
	for i := 0; i < 3; i++ {
		m, _ = sendMsg(t, m, key(tea.KeyUp))
	}
	m, _ = sendMsg(t, m, key(tea.KeyRight))
	m, _ = sendMsg(t, m, runeKey('['))

	if sel := p.Selection(); math.Abs(sel.Start-5) > 1e-9 {
		t.Fatalf("expected start at playhead 5, got %v", sel.Start)
	}
}

func TestEditorViewShowsTrack(t *testing.T) {
	m, _ := newTestEditor(t, 60, 20, &stubEngine{})
	out := m.View()
	for _, want := range []string{"klip.mp4", "[", "]", "Seçim"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in view:\n%s", want, out)
		}
	}
}

func TestFinishEditWritesCommittedOutput(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(config.EnvConfigDir, t.TempDir())

	prevOut, prevDir := ui.Out, outputDir
	ui.Out = io.Discard
	outputDir = ""
	defer func() { ui.Out, outputDir = prevOut, prevDir }()

	ref := filepath.Join(dir, "klip.mp4")
	if err := os.WriteFile(ref, []byte("source"), 0644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	src := &openedSource{Ref: ref, Asset: asset.Asset{Name: "klip.mp4", Format: "mp4", Data: []byte("source")}}
	fm := editorModel{
		result:    editorCommitted,
		output:    asset.Asset{Name: "klip_trim.mp4", Format: "mp4", Data: []byte("trimmed")},
		committed: timeline.Range{Start: 1, End: 3},
	}

	if err := finishEdit(ref, src, policy.Definition{Name: "hero"}, "versioned", fm); err != nil {
		t.Fatalf("finishEdit failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "klip_trim.mp4"))
	if err != nil || string(data) != "trimmed" {
		t.Fatalf("expected trimmed output, got %q (%v)", data, err)
	}
	if got := config.GetLastPolicy(); got != "hero" {
		t.Fatalf("expected remembered policy hero, got %q", got)
	}
	if config.IsFirstRun() {
		t.Fatalf("first run must be marked done")
	}
}
