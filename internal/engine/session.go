package engine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mlihgenel/slydetrim/internal/logging"
	"github.com/mlihgenel/slydetrim/internal/media"
)

// DefaultLoadTimeout motor yüklemesi için varsayılan üst sınır
const DefaultLoadTimeout = 30 * time.Second

// State oturum durumunu belirtir.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
	StateBusy
	StateFailed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateBusy:
		return "busy"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Job tek bir kırpma işini tanımlar. ID boşsa Submit üretir.
type Job struct {
	ID     string
	Source []byte
	Format string
	Start  float64
	End    float64
}

// Length seçili aralığın süresini döner.
func (j Job) Length() float64 { return j.End - j.Start }

// Progress job id ile etiketlenmiş ilerleme bildirimidir.
type Progress struct {
	JobID   string
	Percent uint8
}

// Result başarılı bir işin çıktısıdır.
type Result struct {
	JobID  string
	Format string
	Data   []byte
}

// Options oturum ayarları
type Options struct {
	LoadTimeout time.Duration
}

// Session gömülü motorun yaşam döngüsünü yönetir. Runtime dışarıya açılmaz;
// tüm runtime hataları burada *Error'a dönüştürülür.
type Session struct {
	rt      Runtime
	timeout time.Duration
	logger  zerolog.Logger

	mu    sync.Mutex
	state State
	cause error
}

// NewSession verilen runtime için yeni bir oturum oluşturur.
func NewSession(rt Runtime, opts Options) *Session {
	timeout := opts.LoadTimeout
	if timeout <= 0 {
		timeout = DefaultLoadTimeout
	}
	return &Session{
		rt:      rt,
		timeout: timeout,
		logger:  logging.WithComponent("engine"),
	}
}

// State mevcut durumu döner.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err son yükleme hatasını döner.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cause
}

// Load runtime'ı yapılandırılmış süre sınırı içinde başlatır.
// Hazır veya meşgul bir oturumda etkisizdir; oturum en fazla bir kez yüklenir.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateReady, StateBusy:
		s.mu.Unlock()
		return nil
	case StateLoading:
		s.mu.Unlock()
		return ErrBusy
	case StateClosed:
		s.mu.Unlock()
		return ErrClosed
	}
	s.state = StateLoading
	s.cause = nil
	s.mu.Unlock()

	started := time.Now()
	s.logger.Debug().Dur("timeout", s.timeout).Msg("engine loading")

	loadCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.rt.Init(loadCtx)
	}()

	var (
		err      error
		inFlight bool
	)
	select {
	case err = <-done:
	case <-loadCtx.Done():
		err = loadCtx.Err()
		inFlight = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if inFlight {
		// Init geri dönmedi; geç oluşan çalışma alanını bitince temizle.
		go s.reapInit(done)
	}
	if s.state == StateClosed {
		// Teardown Init sürerken çalıştıysa Init'in kurduğu alan kalmış olabilir.
		if !inFlight {
			if termErr := s.rt.Terminate(); termErr != nil {
				s.logger.Debug().Err(termErr).Msg("runtime cleanup after teardown during load")
			}
		}
		return ErrClosed
	}
	if err != nil {
		loadErr := classifyInit(ctx, err)
		s.state = StateFailed
		s.cause = loadErr
		if termErr := s.rt.Terminate(); termErr != nil {
			s.logger.Debug().Err(termErr).Msg("runtime cleanup after failed load")
		}
		s.logger.Warn().Err(err).Str("kind", loadErr.Kind.String()).Msg("engine load failed")
		return loadErr
	}

	s.state = StateReady
	s.logger.Info().Dur("took", time.Since(started)).Msg("engine ready")
	return nil
}

// reapInit zaman aşımına uğramış Init döndüğünde, oturum o arada kapanmış ya da
// başarısız kalmışsa runtime'ı sonlandırır.
func (s *Session) reapInit(done <-chan error) {
	<-done
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed || s.state == StateFailed {
		if err := s.rt.Terminate(); err != nil {
			s.logger.Debug().Err(err).Msg("runtime cleanup after late init")
		}
	}
}

func classifyInit(parent context.Context, err error) *Error {
	kind := KindInitFetch
	switch {
	case errors.Is(parent.Err(), context.Canceled):
		kind = KindInitAborted
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindInitTimeout
	case errors.Is(err, context.Canceled):
		kind = KindInitAborted
	}
	return &Error{Kind: kind, Op: "load", Err: err}
}

// Submit bir kırpma işini yürütür. Yalnızca Ready durumunda kabul edilir.
// progress çağrıları aynı goroutine'den, artan yüzdelerle yapılır.
func (s *Session) Submit(ctx context.Context, job Job, progress func(Progress)) (Result, error) {
	s.mu.Lock()
	switch s.state {
	case StateReady:
		s.state = StateBusy
	case StateBusy:
		s.mu.Unlock()
		return Result{}, ErrBusy
	case StateClosed:
		s.mu.Unlock()
		return Result{}, ErrClosed
	default:
		s.mu.Unlock()
		return Result{}, ErrNotReady
	}
	s.mu.Unlock()

	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	format := media.NormalizeFormat(job.Format)
	if format == "" {
		format = "mp4"
	}
	input := fmt.Sprintf("input-%s.%s", job.ID, format)
	output := fmt.Sprintf("output-%s.%s", job.ID, format)

	logger := s.logger.With().Str("job", job.ID).Logger()

	defer func() {
		for _, name := range []string{input, output} {
			if err := s.rt.DeleteFile(name); err != nil {
				logger.Debug().Err(err).Str("file", name).Msg("artifact cleanup failed")
			}
		}
		s.mu.Lock()
		if s.state == StateBusy {
			s.state = StateReady
		}
		s.mu.Unlock()
	}()

	emit := func(pct uint8) {
		if progress != nil {
			progress(Progress{JobID: job.ID, Percent: pct})
		}
	}

	fail := func(op string, err error) (Result, error) {
		logger.Warn().Err(err).Str("op", op).Msg("trim job failed")
		return Result{}, &Error{Kind: KindExecution, Op: op, Err: err}
	}

	if len(job.Source) == 0 {
		return fail("write", errors.New("kaynak içerik boş"))
	}
	if !(job.Length() > 0) || job.Start < 0 {
		return fail("validate", fmt.Errorf("geçersiz aralık: %.3f-%.3f", job.Start, job.End))
	}

	if err := s.rt.WriteFile(input, job.Source); err != nil {
		return fail("write", err)
	}

	emit(0)
	tracker := newPercentTracker(job.Length())
	tracker.last = 0

	args := []string{
		"-ss", formatSeconds(job.Start),
		"-i", input,
		"-t", formatSeconds(job.Length()),
		"-c", "copy",
		"-avoid_negative_ts", "make_zero",
		output,
	}
	logger.Info().Float64("start", job.Start).Float64("end", job.End).Msg("trim job started")

	if err := s.rt.Exec(ctx, args, func(elapsed float64) {
		if pct, ok := tracker.update(elapsed); ok {
			emit(pct)
		}
	}); err != nil {
		return fail("exec", err)
	}
	if err := ctx.Err(); err != nil {
		return fail("exec", err)
	}

	data, err := s.rt.ReadFile(output)
	if err != nil {
		return fail("read", err)
	}
	if len(data) == 0 {
		return fail("read", errors.New("çıktı boş"))
	}

	emit(100)
	logger.Info().Int("bytes", len(data)).Msg("trim job finished")
	return Result{JobID: job.ID, Format: format, Data: data}, nil
}

// Teardown runtime'ı serbest bırakır. Her durumdan çağrılabilir ve idempotenttir.
func (s *Session) Teardown() error {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return nil
	}
	s.state = StateClosed
	s.mu.Unlock()

	s.logger.Debug().Msg("engine teardown")
	return s.rt.Terminate()
}

func formatSeconds(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
