package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mlihgenel/slydetrim/internal/asset"
	"github.com/mlihgenel/slydetrim/internal/config"
	"github.com/mlihgenel/slydetrim/internal/engine"
	"github.com/mlihgenel/slydetrim/internal/logging"
	"github.com/mlihgenel/slydetrim/internal/media"
	"github.com/mlihgenel/slydetrim/internal/pipeline"
	"github.com/mlihgenel/slydetrim/internal/playback"
	"github.com/mlihgenel/slydetrim/internal/policy"
	"github.com/mlihgenel/slydetrim/internal/thumbnail"
	"github.com/mlihgenel/slydetrim/internal/timeline"
	"github.com/mlihgenel/slydetrim/internal/ui"
)

var (
	editPolicy      string
	editStart       string
	editEnd         string
	editName        string
	editOnConflict  string
	editLoadTimeout time.Duration
	editThumbnails  int
)

var editCmd = &cobra.Command{
	Use:   "edit <kaynak>",
	Short: "Etkileşimli timeline editörünü aç",
	Long: `Videoyu terminalde timeline editörüyle açar. Başlangıç ve bitiş
tutamaçları klavye veya fare ile sürüklenir, seçili aralık döngüde oynatılır.
Enter kırpar, s kırpmadan orijinali kullanır, Esc iptal eder.

Örnekler:
  slydetrim edit klip.mp4
  slydetrim edit klip.mov --policy hero
  slydetrim edit https://cdn.example.com/intro.mp4 --start 3 --end 9`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := args[0]

		applyPolicyDefault(cmd, "policy", &editPolicy)
		applyOnConflictDefault(cmd, "on-conflict", &editOnConflict)
		applyLoadTimeoutDefault(cmd, "load-timeout", &editLoadTimeout)
		applyThumbnailsDefault(cmd, "thumbnails", &editThumbnails)

		def, err := resolvePolicy(editPolicy)
		if err != nil {
			return err
		}
		conflict := editOnConflict
		if conflict == "" {
			conflict = def.OnConflict
		}
		if media.NormalizeConflictPolicy(conflict) == "" {
			return fmt.Errorf("geçersiz on-conflict politikası: %s", conflict)
		}

		// Alt ekran açıkken loglar terminali bozmasın.
		if logPath, err := config.EditorLogPath(); err == nil {
			if err := os.MkdirAll(filepath.Dir(logPath), 0755); err == nil {
				if f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644); err == nil {
					defer f.Close()
					logging.InitWriter(f, logLevel, verbose)
				}
			}
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		src, err := openSource(ctx, ref)
		if err != nil {
			return err
		}

		var pct atomic.Int32
		p := pipeline.New(pipeline.Options{
			Source:      src.Asset,
			Duration:    src.Info.Duration,
			MaxDuration: def.MaxDuration,
			Session:     engine.NewSession(engine.NewFFmpeg(), engine.Options{LoadTimeout: editLoadTimeout}),
			Preview:     src.Preview,
			Callbacks: pipeline.Callbacks{
				OnProgress: func(v uint8) { pct.Store(int32(v)) },
			},
		})
		defer func() {
			if !p.Terminal() {
				p.Cancel()
			}
		}()

		if editStart != "" || editEnd != "" {
			sel, _, err := resolveWindow(src.Info.Duration, editStart, editEnd, def)
			if err != nil {
				return err
			}
			p.Edit(func(m *timeline.Model) {
				m.Shift(sel.Start - m.Start())
				m.SetTrimStart(sel.Start)
				m.SetTrimEnd(sel.End)
			})
		}

		count := editThumbnails
		sample := func(ctx context.Context) ([]thumbnail.Frame, error) {
			surface, err := thumbnail.NewFFmpegSurface(src.Preview.Path())
			if err != nil {
				return nil, err
			}
			s := thumbnail.NewSampler(surface)
			s.Count = count
			return s.Sample(ctx, src.Info.Duration)
		}

		model := newEditorModel(ctx, p, editorOptions{
			Name:     src.Asset.Name,
			Duration: src.Info.Duration,
			Policy:   def,
			Sample:   sample,
			Progress: &pct,
			ShowHelp: config.IsFirstRun(),
		})

		final, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
		if err != nil {
			return fmt.Errorf("editör çalıştırılamadı: %w", err)
		}
		cancel()

		fm, ok := final.(editorModel)
		if !ok {
			return nil
		}
		return finishEdit(ref, src, def, conflict, fm)
	},
}

// finishEdit editör kapandıktan sonra sonucu diske yazar ve tercihleri kaydeder.
func finishEdit(ref string, src *openedSource, def policy.Definition, conflict string, fm editorModel) error {
	switch fm.result {
	case editorCommitted:
		outPath, skip, err := media.ResolveOutputPathConflict(trimOutputFor(ref, src.Asset, editName), conflict)
		if err != nil {
			return err
		}
		if skip {
			ui.PrintWarning(fmt.Sprintf("Çıktı zaten var, atlandı: %s", outPath))
			break
		}
		if err := fm.output.Save(outPath); err != nil {
			return fmt.Errorf("çıktı yazılamadı: %w", err)
		}
		ui.PrintTrim(src.Asset.Name, outPath, fm.committed.Start, fm.committed.End)
		ui.PrintSuccess(fmt.Sprintf("%s yazıldı (%s)", outPath, media.FormatSize(fm.output.Size())))
	case editorSkipped:
		ui.PrintInfo("Kırpma atlandı, orijinal dosya kullanılıyor.")
	case editorAbandoned:
		if fm.err != nil {
			return fmt.Errorf("kırpma başarısız: %w", fm.err)
		}
		return errors.New("kırpma başarısız")
	default:
		ui.PrintWarning("Düzenleme iptal edildi.")
		return nil
	}

	_ = config.SetLastPolicy(def.Name)
	_ = config.RememberSource(ref)
	_ = config.MarkFirstRunDone()
	return nil
}

// ========================================
// Editör modeli
// ========================================

type editorResult int

const (
	editorOpen editorResult = iota
	editorCommitted
	editorSkipped
	editorCancelled
	editorAbandoned
)

// stepLadder ok tuşlarının kaydırma adımları (saniye). 1/30 yaklaşık bir karedir.
var stepLadder = []float64{1.0 / 30, 0.1, 0.5, 1, 5, 10}

const (
	defaultStepIndex  = 1
	trackLeft         = 2
	defaultTrackWidth = 60
	minTrackWidth     = 20
	handleTolerance   = 1
	editorTick        = 100 * time.Millisecond
)

type editorTickMsg time.Time

type loadDoneMsg struct{ err error }

type framesMsg struct {
	frames []thumbnail.Frame
	err    error
}

type commitDoneMsg struct {
	out asset.Asset
	sel timeline.Range
	err error
}

type editorOptions struct {
	Name     string
	Duration float64
	Policy   policy.Definition
	Sample   func(ctx context.Context) ([]thumbnail.Frame, error)
	Progress *atomic.Int32
	ShowHelp bool
}

type editorModel struct {
	ctx  context.Context
	pipe *pipeline.Pipeline
	opts editorOptions

	clock *playback.Clock
	ctrl  *playback.Controller
	drag  *timeline.Drag

	frames   []thumbnail.Frame
	sampling bool

	focus   timeline.Handle
	stepIdx int
	width   int

	spinner spinner.Model
	bar     progress.Model

	status    string
	statusErr bool
	err       error
	output    asset.Asset
	committed timeline.Range
	result    editorResult
}

func newEditorModel(ctx context.Context, p *pipeline.Pipeline, opts editorOptions) editorModel {
	if opts.Progress == nil {
		opts.Progress = &atomic.Int32{}
	}
	clock := playback.NewClock(opts.Duration)
	model := p.Model()

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(infoStyle),
	)
	bar := progress.New(
		progress.WithGradient(string(primaryColor), string(secondaryColor)),
		progress.WithWidth(defaultTrackWidth),
		progress.WithoutPercentage(),
	)

	return editorModel{
		ctx:      ctx,
		pipe:     p,
		opts:     opts,
		clock:    clock,
		ctrl:     playback.NewController(model, clock),
		drag:     timeline.NewDrag(model, defaultTrackWidth-1),
		sampling: opts.Sample != nil,
		focus:    timeline.HandleStart,
		stepIdx:  defaultStepIndex,
		width:    defaultTrackWidth + 2*trackLeft,
		spinner:  sp,
		bar:      bar,
	}
}

func (m editorModel) Init() tea.Cmd {
	cmds := []tea.Cmd{editorTickCmd(), m.spinner.Tick, m.loadCmd(false)}
	if m.opts.Sample != nil {
		cmds = append(cmds, m.sampleCmd())
	}
	return tea.Batch(cmds...)
}

func editorTickCmd() tea.Cmd {
	return tea.Tick(editorTick, func(t time.Time) tea.Msg {
		return editorTickMsg(t)
	})
}

func (m editorModel) loadCmd(retry bool) tea.Cmd {
	p, ctx := m.pipe, m.ctx
	return func() tea.Msg {
		if retry {
			return loadDoneMsg{err: p.Retry(ctx)}
		}
		return loadDoneMsg{err: p.Start(ctx)}
	}
}

func (m editorModel) sampleCmd() tea.Cmd {
	sample, ctx := m.opts.Sample, m.ctx
	return func() tea.Msg {
		frames, err := sample(ctx)
		return framesMsg{frames: frames, err: err}
	}
}

func (m editorModel) commitCmd() tea.Cmd {
	p, ctx := m.pipe, m.ctx
	return func() tea.Msg {
		sel := p.Selection()
		out, err := p.Commit(ctx)
		return commitDoneMsg{out: out, sel: sel, err: err}
	}
}

func (m editorModel) step() float64 {
	return stepLadder[m.stepIdx]
}

func (m editorModel) trackWidth() int {
	w := m.width - 2*trackLeft
	if w < minTrackWidth {
		w = minTrackWidth
	}
	return w
}

func (m *editorModel) setStatus(msg string, isErr bool) {
	m.status = msg
	m.statusErr = isErr
}

func (m editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.drag.SetTrackWidth(float64(m.trackWidth() - 1))
		m.bar.Width = m.trackWidth()
		return m, nil

	case editorTickMsg:
		if m.result != editorOpen {
			return m, nil
		}
		m.pipe.Edit(func(*timeline.Model) { m.ctrl.Tick() })
		return m, editorTickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadDoneMsg:
		switch {
		case msg.err == nil:
			m.setStatus("Motor hazır.", false)
		case errors.Is(msg.err, pipeline.ErrCancelled), errors.Is(msg.err, pipeline.ErrInvalidState):
		default:
			m.err = msg.err
			m.setStatus(fmt.Sprintf("Motor yüklenemedi: %s (r: tekrar dene, esc: vazgeç)", msg.err), true)
		}
		return m, nil

	case framesMsg:
		m.sampling = false
		m.frames = msg.frames
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.setStatus(fmt.Sprintf("Önizleme kareleri alınamadı: %s", msg.err), true)
		}
		return m, nil

	case commitDoneMsg:
		return m.handleCommitDone(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m editorModel) handleCommitDone(msg commitDoneMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.err == nil:
		m.output = msg.out
		m.committed = msg.sel
		m.result = editorCommitted
		return m, tea.Quit
	case errors.Is(msg.err, pipeline.ErrSelectionTooShort):
		m.setStatus(fmt.Sprintf("Seçim en az %.1f sn olmalı.", timeline.MinSelection), true)
	case errors.Is(msg.err, pipeline.ErrBusy):
		m.setStatus("Kırpma zaten sürüyor.", true)
	case errors.Is(msg.err, pipeline.ErrCancelled), errors.Is(msg.err, context.Canceled):
	case errors.Is(msg.err, pipeline.ErrInvalidState):
		m.setStatus("Motor hazır değil.", true)
	default:
		m.err = msg.err
		m.setStatus(fmt.Sprintf("Kırpma başarısız: %s (enter: tekrar, esc: vazgeç)", msg.err), true)
	}
	return m, nil
}

func (m editorModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+c", "q":
		m.pipe.Cancel()
		m.result = editorCancelled
		return m, tea.Quit

	case "esc":
		if m.pipe.State() == pipeline.StateError {
			m.pipe.Abandon()
			m.result = editorAbandoned
			return m, tea.Quit
		}
		m.pipe.Cancel()
		m.result = editorCancelled
		return m, tea.Quit

	case "tab":
		m.focus = (m.focus + 1) % 3
		return m, nil
	case "shift+tab":
		m.focus = (m.focus + 2) % 3
		return m, nil

	case "up", "k":
		if m.stepIdx < len(stepLadder)-1 {
			m.stepIdx++
		}
		return m, nil
	case "down", "j":
		if m.stepIdx > 0 {
			m.stepIdx--
		}
		return m, nil

	case "left", "h", "right", "l":
		delta := m.step()
		if key == "left" || key == "h" {
			delta = -delta
		}
		focus := m.focus
		m.pipe.Edit(func(tm *timeline.Model) {
			tm.Adjust(focus, delta)
			if focus == timeline.HandlePlayhead {
				m.clock.Seek(tm.Playhead())
			}
		})
		return m, nil

	case "shift+left", "shift+right":
		delta := m.step()
		if key == "shift+left" {
			delta = -delta
		}
		m.pipe.Edit(func(tm *timeline.Model) { tm.Shift(delta) })
		return m, nil

	case " ":
		m.pipe.Edit(func(*timeline.Model) { m.ctrl.Toggle() })
		return m, nil

	case "[":
		m.pipe.Edit(func(tm *timeline.Model) { tm.SetTrimStart(tm.Playhead()) })
		return m, nil
	case "]":
		m.pipe.Edit(func(tm *timeline.Model) { tm.SetTrimEnd(tm.Playhead()) })
		return m, nil

	case "?":
		m.opts.ShowHelp = !m.opts.ShowHelp
		return m, nil

	case "enter":
		if m.pipe.State() == pipeline.StateTrimming {
			m.setStatus("Kırpma zaten sürüyor.", true)
			return m, nil
		}
		if !m.pipe.CanCommit() {
			if !m.pipe.Model().CanCommit() {
				m.setStatus(fmt.Sprintf("Seçim en az %.1f sn olmalı.", timeline.MinSelection), true)
			} else {
				m.setStatus("Motor hazır değil.", true)
			}
			return m, nil
		}
		m.opts.Progress.Store(0)
		m.setStatus("Kırpılıyor...", false)
		return m, m.commitCmd()

	case "s":
		if err := m.pipe.Skip(); err != nil {
			m.setStatus("Kırpma sürerken atlanamaz.", true)
			return m, nil
		}
		m.output = m.pipe.Source()
		m.result = editorSkipped
		return m, tea.Quit

	case "r":
		if m.pipe.CanRetry() {
			m.err = nil
			m.setStatus("Motor yeniden yükleniyor...", false)
			return m, m.loadCmd(true)
		}
		m.pipe.Edit(func(tm *timeline.Model) {
			tm.Reset()
			m.clock.Seek(tm.Playhead())
		})
		m.setStatus("Seçim sıfırlandı.", false)
		return m, nil
	}
	return m, nil
}

func (m editorModel) handleMouse(msg tea.MouseMsg) editorModel {
	x := float64(msg.X - trackLeft)
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m
		}
		h := m.drag.HandleAt(x, handleTolerance)
		m.pipe.Edit(func(tm *timeline.Model) {
			if m.drag.BeginDrag(h) {
				m.focus = h
				m.drag.UpdateDrag(x)
				m.syncClock(tm)
			}
		})
	case tea.MouseActionMotion:
		m.pipe.Edit(func(tm *timeline.Model) {
			m.drag.UpdateDrag(x)
			m.syncClock(tm)
		})
	case tea.MouseActionRelease:
		m.pipe.Edit(func(*timeline.Model) { m.drag.EndDrag() })
	}
	return m
}

// syncClock playhead sürükleniyorsa saati yeni konuma taşır.
func (m editorModel) syncClock(tm *timeline.Model) {
	if h, ok := m.drag.Active(); ok && h == timeline.HandlePlayhead {
		m.clock.Seek(tm.Playhead())
	}
}

func init() {
	editCmd.Flags().StringVarP(&editPolicy, "policy", "p", "", "Süre politikası: frame, hero, free veya proje tanımlı")
	editCmd.Flags().StringVarP(&editStart, "start", "s", "", "Başlangıç seçimi (sn veya HH:MM:SS)")
	editCmd.Flags().StringVarP(&editEnd, "end", "e", "", "Bitiş seçimi (sn veya HH:MM:SS)")
	editCmd.Flags().StringVarP(&editName, "name", "n", "", "Çıktı dosya adı (uzantı korunur)")
	editCmd.Flags().StringVar(&editOnConflict, "on-conflict", "", "Çakışma politikası: overwrite, skip, versioned")
	editCmd.Flags().DurationVar(&editLoadTimeout, "load-timeout", engine.DefaultLoadTimeout, "Motor yükleme zaman aşımı")
	editCmd.Flags().IntVar(&editThumbnails, "thumbnails", thumbnail.DefaultCount, "Timeline önizleme kare sayısı")

	rootCmd.AddCommand(editCmd)
}
