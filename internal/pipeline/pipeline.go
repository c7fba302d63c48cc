package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mlihgenel/slydetrim/internal/asset"
	"github.com/mlihgenel/slydetrim/internal/engine"
	"github.com/mlihgenel/slydetrim/internal/logging"
	"github.com/mlihgenel/slydetrim/internal/media"
	"github.com/mlihgenel/slydetrim/internal/timeline"
)

// State kırpma akışının durumunu belirtir.
type State int

const (
	StateLoading State = iota
	StateReady
	StateTrimming
	StateDone
	StateError
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateTrimming:
		return "trimming"
	case StateDone:
		return "done"
	case StateError:
		return "error"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

var (
	// ErrSelectionTooShort seçim MinSelection'dan kısayken commit edildiğinde döner.
	// Durum değişmez ve hiçbir callback çağrılmaz.
	ErrSelectionTooShort = errors.New("seçim çok kısa")
	// ErrBusy bir kırpma işi sürerken döner.
	ErrBusy = errors.New("kırpma devam ediyor")
	// ErrInvalidState işlem mevcut durumda geçerli değilse döner.
	ErrInvalidState = errors.New("bu durumda işlem yapılamaz")
	// ErrCancelled iptal edilen işin sonucu bırakıldığında döner.
	ErrCancelled = errors.New("kırpma iptal edildi")
)

// Engine pipeline'ın kullandığı motor oturumudur; *engine.Session uyar.
type Engine interface {
	Load(ctx context.Context) error
	Submit(ctx context.Context, job engine.Job, progress func(engine.Progress)) (engine.Result, error)
	Teardown() error
}

// Releaser önizleme kaynağını serbest bırakır; *asset.Preview uyar.
type Releaser interface {
	Release() error
}

// Callbacks barındıran editöre yapılan bildirimler. Hepsi opsiyoneldir.
// OnProgress içinden Pipeline metotları çağrılmamalıdır.
type Callbacks struct {
	OnProgress func(percent uint8)
	OnComplete func(out asset.Asset)
	OnCancel   func()
	OnError    func(err error)
	OnState    func(state State)
}

// Options pipeline kurulum ayarları
type Options struct {
	Source      asset.Asset
	Duration    float64
	MaxDuration float64
	Session     Engine
	// SharedSession true ise oturum dışarıya aittir ve kapatılmaz.
	SharedSession bool
	Preview       Releaser
	Callbacks     Callbacks
}

// Pipeline tek bir asset için yükleme, seçim, kırpma ve sonuç akışını yönetir.
type Pipeline struct {
	model   *timeline.Model
	source  asset.Asset
	session Engine
	shared  bool
	preview Releaser
	cb      Callbacks
	logger  zerolog.Logger

	mu          sync.Mutex
	state       State
	err         error
	loadFailed  bool
	abandoned   bool
	jobID       string
	cancelJob   context.CancelFunc
	cancelLoad  context.CancelFunc
	output      asset.Asset
	finalizeOne sync.Once

	emitMu sync.Mutex
}

// New Loading durumunda yeni bir pipeline oluşturur.
func New(opts Options) *Pipeline {
	return &Pipeline{
		model:   timeline.New(opts.Duration, opts.MaxDuration),
		source:  opts.Source,
		session: opts.Session,
		shared:  opts.SharedSession,
		preview: opts.Preview,
		cb:      opts.Callbacks,
		logger:  logging.WithComponent("pipeline").With().Str("asset", opts.Source.Name).Logger(),
		state:   StateLoading,
	}
}

// Model seçim modelini döner. Düzenlemeler kırpma sürerken de yapılabilir;
// yalnızca bir sonraki commit'i etkiler.
func (p *Pipeline) Model() *timeline.Model { return p.model }

// Edit seçimi kilit altında değiştirir. Commit başka bir goroutine'de
// beklerken düzenleme yapan çağıranlar Model yerine bunu kullanır.
func (p *Pipeline) Edit(fn func(m *timeline.Model)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(p.model)
}

// Selection seçimin anlık kopyasını döner.
func (p *Pipeline) Selection() timeline.Range {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.model.Range()
}

// Source orijinal asset'i döner.
func (p *Pipeline) Source() asset.Asset { return p.source }

func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Err son hatayı döner.
func (p *Pipeline) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Output tamamlanan akışın çıktısını döner.
func (p *Pipeline) Output() (asset.Asset, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.output, p.state == StateDone
}

// Terminal akışın bittiğini bildirir.
func (p *Pipeline) Terminal() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.terminalLocked()
}

func (p *Pipeline) terminalLocked() bool {
	switch p.state {
	case StateDone, StateCancelled:
		return true
	case StateError:
		return p.abandoned
	}
	return false
}

// CanCommit commit düğmesinin etkin olup olmadığını döner.
func (p *Pipeline) CanCommit() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.commitAllowedLocked() && p.model.CanCommit()
}

func (p *Pipeline) commitAllowedLocked() bool {
	switch p.state {
	case StateReady:
		return true
	case StateError:
		return !p.loadFailed && !p.abandoned
	}
	return false
}

// CanRetry yükleme hatasından sonra yeniden denemenin mümkün olup olmadığını döner.
func (p *Pipeline) CanRetry() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state == StateError && p.loadFailed && !p.abandoned
}

// Start motoru yükler: Loading → Ready veya Error.
func (p *Pipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.state != StateLoading || p.cancelLoad != nil {
		p.mu.Unlock()
		return ErrInvalidState
	}
	p.mu.Unlock()
	return p.load(ctx)
}

// Retry yükleme hatasından sonra motoru yeniden yükler. Otomatik çağrılmaz.
func (p *Pipeline) Retry(ctx context.Context) error {
	p.mu.Lock()
	if !(p.state == StateError && p.loadFailed && !p.abandoned) {
		p.mu.Unlock()
		return ErrInvalidState
	}
	p.state = StateLoading
	p.err = nil
	p.loadFailed = false
	p.mu.Unlock()

	p.notifyState(StateLoading)
	return p.load(ctx)
}

func (p *Pipeline) load(parent context.Context) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	p.mu.Lock()
	p.cancelLoad = cancel
	p.mu.Unlock()

	err := p.session.Load(ctx)

	p.mu.Lock()
	p.cancelLoad = nil
	if p.state != StateLoading {
		// Yükleme sürerken iptal veya atlama yapıldı.
		p.mu.Unlock()
		return ErrCancelled
	}
	if err != nil {
		p.state = StateError
		p.err = err
		p.loadFailed = true
		p.mu.Unlock()

		p.logger.Warn().Err(err).Msg("engine load failed")
		p.notifyState(StateError)
		if p.cb.OnError != nil {
			p.cb.OnError(err)
		}
		return err
	}
	p.state = StateReady
	p.mu.Unlock()

	p.notifyState(StateReady)
	return nil
}

// Commit mevcut seçimi kırpar ve sonucu döner. Çağrı iş bitene kadar bloklar.
// Seçim kısaysa ErrSelectionTooShort döner ve durum değişmez.
func (p *Pipeline) Commit(ctx context.Context) (asset.Asset, error) {
	p.mu.Lock()
	if p.state == StateTrimming {
		p.mu.Unlock()
		return asset.Asset{}, ErrBusy
	}
	if !p.commitAllowedLocked() {
		p.mu.Unlock()
		return asset.Asset{}, ErrInvalidState
	}
	if !p.model.CanCommit() {
		p.mu.Unlock()
		return asset.Asset{}, ErrSelectionTooShort
	}

	sel := p.model.Range()
	jobID := uuid.NewString()
	jobCtx, cancel := context.WithCancel(ctx)
	p.state = StateTrimming
	p.err = nil
	p.jobID = jobID
	p.cancelJob = cancel
	p.mu.Unlock()
	defer cancel()

	logger := p.logger.With().Str("job", jobID).Logger()
	logger.Info().Float64("start", sel.Start).Float64("end", sel.End).Msg("trim committed")
	p.notifyState(StateTrimming)

	job := engine.Job{
		ID:     jobID,
		Source: p.source.Data,
		Format: p.source.Format,
		Start:  sel.Start,
		End:    sel.End,
	}
	res, err := p.session.Submit(jobCtx, job, func(pr engine.Progress) {
		p.emitProgress(pr)
	})

	p.mu.Lock()
	if p.jobID != jobID {
		// İptal edilmiş işin geç gelen sonucu.
		p.mu.Unlock()
		logger.Debug().Msg("stale trim result dropped")
		return asset.Asset{}, ErrCancelled
	}
	p.jobID = ""
	p.cancelJob = nil

	if err == nil && res.JobID != "" && res.JobID != jobID {
		err = &engine.Error{Kind: engine.KindExecution, Op: "result", Err: errors.New("beklenmeyen iş sonucu")}
	}
	if err != nil {
		p.state = StateError
		p.err = err
		p.loadFailed = false
		p.mu.Unlock()

		logger.Warn().Err(err).Msg("trim failed")
		p.notifyState(StateError)
		if p.cb.OnError != nil {
			p.cb.OnError(err)
		}
		return asset.Asset{}, err
	}

	out := asset.Asset{
		Name:   trimmedName(p.source.Name, res.Format),
		Format: res.Format,
		Data:   res.Data,
	}
	p.state = StateDone
	p.output = out
	p.mu.Unlock()

	p.finalize()
	logger.Info().Int64("bytes", out.Size()).Msg("trim completed")
	p.notifyState(StateDone)
	if p.cb.OnComplete != nil {
		p.cb.OnComplete(out)
	}
	return out, nil
}

func (p *Pipeline) emitProgress(pr engine.Progress) {
	p.emitMu.Lock()
	defer p.emitMu.Unlock()

	p.mu.Lock()
	current := p.state == StateTrimming && pr.JobID != "" && pr.JobID == p.jobID
	p.mu.Unlock()
	if !current {
		return
	}
	if p.cb.OnProgress != nil {
		p.cb.OnProgress(pr.Percent)
	}
}

// Skip kırpmadan orijinal asset ile tamamlar.
func (p *Pipeline) Skip() error {
	p.mu.Lock()
	switch p.state {
	case StateLoading, StateReady:
	case StateError:
		if p.abandoned {
			p.mu.Unlock()
			return ErrInvalidState
		}
	case StateTrimming:
		p.mu.Unlock()
		return ErrBusy
	default:
		p.mu.Unlock()
		return ErrInvalidState
	}
	if p.cancelLoad != nil {
		p.cancelLoad()
	}
	p.state = StateDone
	p.output = p.source
	p.mu.Unlock()

	p.finalize()
	p.logger.Info().Msg("trim skipped")
	p.notifyState(StateDone)
	if p.cb.OnComplete != nil {
		p.cb.OnComplete(p.source)
	}
	return nil
}

// Cancel akışı iptal eder. Sürmekte olan iş durdurulur, geç gelen ilerleme
// ve sonuçlar bırakılır. Yalnızca OnCancel çağrılır.
func (p *Pipeline) Cancel() error {
	p.mu.Lock()
	if p.terminalLocked() {
		p.mu.Unlock()
		return ErrInvalidState
	}
	if p.cancelJob != nil {
		p.cancelJob()
		p.cancelJob = nil
	}
	if p.cancelLoad != nil {
		p.cancelLoad()
	}
	p.jobID = ""
	p.state = StateCancelled
	p.mu.Unlock()

	p.finalize()
	p.logger.Info().Msg("trim cancelled")

	p.emitMu.Lock()
	defer p.emitMu.Unlock()
	if p.cb.OnCancel != nil {
		p.cb.OnCancel()
	}
	return nil
}

// Abandon yeniden denemekten vazgeçer; Error durumu kalıcı olur.
func (p *Pipeline) Abandon() error {
	p.mu.Lock()
	if p.state != StateError || p.abandoned {
		p.mu.Unlock()
		return ErrInvalidState
	}
	p.abandoned = true
	p.mu.Unlock()

	p.finalize()
	p.logger.Info().Msg("trim abandoned")
	return nil
}

// finalize terminal geçişlerde önizlemeyi bir kez bırakır ve sahip olunan
// oturumu kapatır.
func (p *Pipeline) finalize() {
	p.finalizeOne.Do(func() {
		if p.preview != nil {
			if err := p.preview.Release(); err != nil {
				p.logger.Debug().Err(err).Msg("preview release failed")
			}
		}
		if !p.shared && p.session != nil {
			if err := p.session.Teardown(); err != nil {
				p.logger.Debug().Err(err).Msg("engine teardown failed")
			}
		}
	})
}

func (p *Pipeline) notifyState(s State) {
	if p.cb.OnState != nil {
		p.cb.OnState(s)
	}
}

func trimmedName(name, format string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	if base == "" {
		base = "clip"
	}
	if format == "" {
		format = media.NormalizeFormat(ext)
	}
	return base + media.TrimSuffix + "." + format
}
