package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mlihgenel/slydetrim/internal/asset"
	"github.com/mlihgenel/slydetrim/internal/engine"
	"github.com/mlihgenel/slydetrim/internal/logging"
	"github.com/mlihgenel/slydetrim/internal/media"
	"github.com/mlihgenel/slydetrim/internal/report"
)

// Job bir kırpma işini temsil eder
type Job struct {
	InputPath  string
	OutputPath string
	Start      float64
	End        float64
	SkipReason string
}

// JobResult bir işin sonucunu tutar
type JobResult struct {
	Job        Job
	Success    bool
	Skipped    bool
	Attempts   int
	OutputSize int64
	SkipReason string
	Error      error
	Duration   time.Duration
}

// Pool worker pool'u yönetir. Her worker kendi motor oturumunu bir kez
// yükler ve tüm işlerinde yeniden kullanır.
type Pool struct {
	Workers     int
	RetryMax    int
	RetryDelay  time.Duration
	LoadTimeout time.Duration
	// NewRuntime her worker için yeni bir motor runtime'ı üretir.
	NewRuntime func() engine.Runtime
	Results    []JobResult
	mu         sync.Mutex
	processed  atomic.Int64
	totalJobs  int
	OnProgress func(completed, total int) // İlerleme callback'i
}

// NewPool yeni bir worker pool oluşturur
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	// Çok fazla worker açmayı engelle
	maxWorkers := runtime.NumCPU() * 2
	if workers > maxWorkers {
		workers = maxWorkers
	}

	return &Pool{
		Workers:    workers,
		RetryDelay: 500 * time.Millisecond,
		NewRuntime: func() engine.Runtime { return engine.NewFFmpeg() },
	}
}

// SetRetry yürütme hatalarında yeniden deneme davranışını ayarlar.
// Motor yükleme hataları yeniden denenmez.
func (p *Pool) SetRetry(max int, delay time.Duration) {
	if max < 0 {
		max = 0
	}
	p.RetryMax = max

	if delay >= 0 {
		p.RetryDelay = delay
	}
}

// Execute verilen işleri paralel olarak çalıştırır
func (p *Pool) Execute(ctx context.Context, jobs []Job) []JobResult {
	p.totalJobs = len(jobs)
	p.Results = make([]JobResult, 0, len(jobs))
	p.processed.Store(0)

	if len(jobs) == 0 {
		return p.Results
	}

	workers := p.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	jobChan := make(chan Job, len(jobs))
	resultChan := make(chan JobResult, len(jobs))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			p.work(ctx, id, jobChan, resultChan)
		}(i)
	}

	go func() {
		for _, job := range jobs {
			jobChan <- job
		}
		close(jobChan)
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	for result := range resultChan {
		p.mu.Lock()
		p.Results = append(p.Results, result)
		p.mu.Unlock()

		completed := int(p.processed.Add(1))
		if p.OnProgress != nil {
			p.OnProgress(completed, p.totalJobs)
		}
	}

	return p.Results
}

// work tek bir worker'ın döngüsüdür. Oturum ilk gerçek işte yüklenir.
func (p *Pool) work(ctx context.Context, id int, jobs <-chan Job, results chan<- JobResult) {
	logger := logging.WithComponent("batch").With().Int("worker", id).Logger()

	var (
		session *engine.Session
		loadErr error
	)
	defer func() {
		if session != nil {
			session.Teardown()
		}
	}()

	for job := range jobs {
		if job.SkipReason == "" && session == nil && loadErr == nil {
			session = engine.NewSession(p.NewRuntime(), engine.Options{LoadTimeout: p.LoadTimeout})
			if err := session.Load(ctx); err != nil {
				loadErr = err
				logger.Warn().Err(err).Msg("worker engine load failed")
			}
		}

		if job.SkipReason == "" && loadErr != nil {
			results <- JobResult{Job: job, Attempts: 0, Error: loadErr}
			continue
		}
		results <- p.processJob(ctx, session, job)
	}
}

// processJob tek bir kırpma işini gerçekleştirir
func (p *Pool) processJob(ctx context.Context, session *engine.Session, job Job) JobResult {
	start := time.Now()

	if job.SkipReason != "" {
		return JobResult{
			Job:        job,
			Skipped:    true,
			SkipReason: job.SkipReason,
			Duration:   time.Since(start),
		}
	}

	src, err := asset.Load(job.InputPath)
	if err != nil {
		return JobResult{Job: job, Attempts: 1, Error: err, Duration: time.Since(start)}
	}

	outputDir := filepath.Dir(job.OutputPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return JobResult{
			Job:      job,
			Attempts: 1,
			Error:    fmt.Errorf("çıktı dizini oluşturulamadı: %w", err),
			Duration: time.Since(start),
		}
	}

	var lastErr error
	attempts := p.RetryMax + 1
	if attempts <= 0 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		res, err := session.Submit(ctx, engine.Job{
			Source: src.Data,
			Format: src.Format,
			Start:  job.Start,
			End:    job.End,
		}, nil)
		if err == nil {
			out := asset.Asset{Name: filepath.Base(job.OutputPath), Format: res.Format, Data: res.Data}
			if err := out.Save(job.OutputPath); err != nil {
				return JobResult{Job: job, Attempts: attempt, Error: err, Duration: time.Since(start)}
			}
			return JobResult{
				Job:        job,
				Success:    true,
				Attempts:   attempt,
				OutputSize: out.Size(),
				Duration:   time.Since(start),
			}
		}

		lastErr = err
		if ctx.Err() != nil || errors.Is(err, engine.ErrClosed) {
			return JobResult{Job: job, Attempts: attempt, Error: err, Duration: time.Since(start)}
		}
		if attempt < attempts && p.RetryDelay > 0 {
			time.Sleep(p.RetryDelay)
		}
	}

	return JobResult{
		Job:      job,
		Attempts: attempts,
		Error:    lastErr,
		Duration: time.Since(start),
	}
}

// Summary toplu iş sonuçlarını özetler
type Summary struct {
	Total     int
	Succeeded int
	Skipped   int
	Failed    int
	Duration  time.Duration
	Errors    []JobError
}

// JobError başarısız olan bir işin hata bilgisi
type JobError struct {
	InputFile string
	Error     string
	Attempts  int
}

// GetSummary iş sonuçlarından özet oluşturur
func GetSummary(results []JobResult, totalDuration time.Duration) Summary {
	s := Summary{
		Total:    len(results),
		Duration: totalDuration,
	}

	for _, r := range results {
		if r.Success {
			s.Succeeded++
		} else if r.Skipped {
			s.Skipped++
		} else {
			s.Failed++
			msg := "bilinmeyen hata"
			if r.Error != nil {
				msg = r.Error.Error()
			}
			s.Errors = append(s.Errors, JobError{
				InputFile: r.Job.InputPath,
				Error:     msg,
				Attempts:  r.Attempts,
			})
		}
	}

	return s
}

// BuildReport sonuçları rapor yapısına çevirir.
func BuildReport(title, policyName string, results []JobResult, startedAt, endedAt time.Time) report.Report {
	r := report.Report{
		Title:     title,
		Policy:    policyName,
		StartedAt: startedAt,
		EndedAt:   endedAt,
		Items:     make([]report.Item, 0, len(results)),
	}
	for _, res := range results {
		item := report.Item{
			Input:      res.Job.InputPath,
			Output:     res.Job.OutputPath,
			Start:      res.Job.Start,
			End:        res.Job.End,
			DurationMS: res.Duration.Milliseconds(),
			OutputSize: res.OutputSize,
		}
		switch {
		case res.Success:
			item.Status = report.StatusSuccess
		case res.Skipped:
			item.Status = report.StatusSkipped
			item.SkipReason = res.SkipReason
		default:
			item.Status = report.StatusFailed
			if res.Error != nil {
				item.Error = res.Error.Error()
			}
		}
		r.Items = append(r.Items, item)
	}
	return r
}

// CollectFiles dizindeki video dosyalarını toplar. Daha önce üretilmiş
// kırpma çıktıları atlanır.
func CollectFiles(dir string, formats []string, recursive bool) ([]string, error) {
	if len(formats) == 0 {
		formats = media.VideoFormats
	}
	var files []string

	walkFn := func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Erişilemeyen dosyaları atla
		}

		if d.IsDir() {
			if !recursive && path != dir {
				return filepath.SkipDir
			}
			return nil
		}

		if media.HasFormatExtension(path, formats...) && !media.IsTrimOutput(path) {
			files = append(files, path)
		}
		return nil
	}

	if err := filepath.WalkDir(dir, walkFn); err != nil {
		return nil, fmt.Errorf("dizin taranamadı: %w", err)
	}

	return files, nil
}

// CollectFilesFromGlob glob pattern ile dosya toplar
func CollectFilesFromGlob(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob pattern hatası: %w", err)
	}

	var files []string
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			files = append(files, m)
		}
	}

	return files, nil
}
