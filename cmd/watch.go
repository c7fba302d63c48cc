package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mlihgenel/slydetrim/internal/batch"
	"github.com/mlihgenel/slydetrim/internal/logging"
	"github.com/mlihgenel/slydetrim/internal/media"
	"github.com/mlihgenel/slydetrim/internal/policy"
	"github.com/mlihgenel/slydetrim/internal/ui"
	"github.com/mlihgenel/slydetrim/internal/watch"
)

var (
	watchPolicy      string
	watchStart       string
	watchEnd         string
	watchRecursive   bool
	watchOnConflict  string
	watchRetry       int
	watchRetryDelay  time.Duration
	watchLoadTimeout time.Duration
	watchInterval    time.Duration
	watchSettle      time.Duration
	watchReport      string
	watchReportFile  string
)

var watchCmd = &cobra.Command{
	Use:   "watch <dizin>",
	Short: "Klasörü izleyip yeni videoları otomatik kırp",
	Long: `Belirtilen klasörü izler ve yazımı tamamlanan yeni ya da değişen
videoları seçili politikayla kırpar. fsnotify kullanılamazsa polling'e düşer.

Örnekler:
  slydetrim watch ./incoming --policy hero
  slydetrim watch ./incoming --start 0 --end 8 --recursive
  slydetrim watch ./inbox --on-conflict versioned --retry 2`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sourceDir := args[0]

		applyPolicyDefault(cmd, "policy", &watchPolicy)
		applyOnConflictDefault(cmd, "on-conflict", &watchOnConflict)
		applyRetryDefaults(cmd, "retry", &watchRetry, "retry-delay", &watchRetryDelay)
		applyLoadTimeoutDefault(cmd, "load-timeout", &watchLoadTimeout)
		applyReportDefault(cmd, "report", &watchReport)

		def, err := resolvePolicy(watchPolicy)
		if err != nil {
			return err
		}
		conflict := watchOnConflict
		if conflict == "" {
			conflict = def.OnConflict
		}
		if media.NormalizeConflictPolicy(conflict) == "" {
			return fmt.Errorf("geçersiz on-conflict politikası: %s", conflict)
		}
		if watchReport == "" {
			watchReport = def.Report
		}
		if watchInterval <= 0 {
			return fmt.Errorf("interval sıfırdan büyük olmalı")
		}

		backend, err := watch.NewAdaptiveWatcher(sourceDir, media.VideoFormats, watchRecursive, watchSettle)
		if err != nil {
			ui.PrintWarning(fmt.Sprintf("Olay tabanlı izleme açılamadı, polling kullanılıyor: %s", err.Error()))
		}
		defer backend.Close()

		if err := backend.Bootstrap(); err != nil {
			return err
		}

		pool := batch.NewPool(workers)
		pool.SetRetry(watchRetry, watchRetryDelay)
		pool.LoadTimeout = watchLoadTimeout

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger := logging.WithComponent("watch")
		logger.Debug().Str("mode", backend.Mode()).Str("dir", sourceDir).Msg("watch started")

		ui.PrintInfo(fmt.Sprintf("İzleme başladı: %s (politika: %s, mod: %s)", sourceDir, def.Name, backend.Mode()))
		ui.PrintInfo("Durdurmak için Ctrl+C kullanın.")

		ticker := time.NewTicker(watchInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
			case <-backend.Events():
			case <-ctx.Done():
				ui.PrintInfo("İzleme durduruldu.")
				return nil
			}

			files, err := backend.Poll(time.Now())
			if err != nil {
				ui.PrintError(fmt.Sprintf("İzleme hatası: %s", err.Error()))
				continue
			}
			if len(files) == 0 {
				continue
			}
			runWatchRound(ctx, pool, files, def, conflict)
		}
	},
}

// runWatchRound bir tarama turunda hazır olan dosyaları kırpar.
func runWatchRound(ctx context.Context, pool *batch.Pool, files []string, def policy.Definition, conflict string) {
	jobs, err := buildTrimJobs(ctx, files, def, watchStart, watchEnd, conflict)
	if err != nil {
		ui.PrintError(fmt.Sprintf("İşler hazırlanamadı: %s", err.Error()))
		return
	}
	if len(jobs) == 0 {
		return
	}

	startedAt := time.Now()
	results := pool.Execute(ctx, jobs)
	endedAt := time.Now()
	summary := batch.GetSummary(results, endedAt.Sub(startedAt))
	ui.PrintBatchSummary(summary.Total, summary.Succeeded, summary.Skipped, summary.Failed, summary.Duration)

	if len(summary.Errors) > 0 {
		ui.PrintError("Başarısız kırpmalar:")
		for _, e := range summary.Errors {
			fmt.Printf("  %s %s: %s (deneme: %d)\n", ui.IconError, e.InputFile, e.Error, e.Attempts)
		}
		fmt.Println()
	}

	rep := batch.BuildReport("İzleme raporu", def.Name, results, startedAt, endedAt)
	if err := emitReport(watchReport, roundReportPath(watchReportFile, startedAt), rep); err != nil {
		ui.PrintError(fmt.Sprintf("Rapor yazılamadı: %s", err.Error()))
	}
}

// roundReportPath her tur için ayrı dosya üretir: rapor.md -> rapor_20060102-150405.md
func roundReportPath(path string, at time.Time) string {
	if strings.TrimSpace(path) == "" {
		return ""
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_" + at.Format("20060102-150405") + ext
}

func init() {
	watchCmd.Flags().StringVarP(&watchPolicy, "policy", "p", "", "Süre politikası: frame, hero, free veya proje tanımlı")
	watchCmd.Flags().StringVarP(&watchStart, "start", "s", "", "Başlangıç (sn veya HH:MM:SS)")
	watchCmd.Flags().StringVarP(&watchEnd, "end", "e", "", "Bitiş (sn veya HH:MM:SS)")
	watchCmd.Flags().BoolVarP(&watchRecursive, "recursive", "r", false, "Alt dizinleri de izle")
	watchCmd.Flags().StringVar(&watchOnConflict, "on-conflict", "", "Çakışma politikası: overwrite, skip, versioned")
	watchCmd.Flags().IntVar(&watchRetry, "retry", 0, "Başarısız işler için otomatik tekrar sayısı")
	watchCmd.Flags().DurationVar(&watchRetryDelay, "retry-delay", 500*time.Millisecond, "Retry denemeleri arası bekleme (örn: 500ms, 2s)")
	watchCmd.Flags().DurationVar(&watchLoadTimeout, "load-timeout", 0, "Motor yükleme zaman aşımı")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 2*time.Second, "Klasör tarama aralığı")
	watchCmd.Flags().StringVar(&watchReport, "report", "", "Her tur için rapor formatı: off, txt, json, md, html")
	watchCmd.Flags().StringVar(&watchReportFile, "report-file", "", "Rapor dosyası; tur zamanı ada eklenir (boşsa stdout)")
	watchCmd.Flags().DurationVar(&watchSettle, "settle", watch.DefaultSettle, "Dosyanın stabil sayılması için bekleme süresi")

	rootCmd.AddCommand(watchCmd)
}
