package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mlihgenel/slydetrim/internal/batch"
	"github.com/mlihgenel/slydetrim/internal/media"
	"github.com/mlihgenel/slydetrim/internal/policy"
	"github.com/mlihgenel/slydetrim/internal/ui"
)

var (
	batchPolicy      string
	batchStart       string
	batchEnd         string
	batchRecursive   bool
	batchDryRun      bool
	batchOnConflict  string
	batchRetry       int
	batchRetryDelay  time.Duration
	batchLoadTimeout time.Duration
	batchReport      string
	batchReportFile  string
)

var batchCmd = &cobra.Command{
	Use:   "batch <dizin veya glob>",
	Short: "Birden fazla videoyu toplu kırp",
	Long: `Bir dizindeki veya glob pattern'e uyan tüm videoları aynı politika ve
aralıkla kırpar. Her worker motoru bir kez yükler ve işlerinde yeniden kullanır.

Örnekler:
  slydetrim batch ./klipler --policy hero
  slydetrim batch ./klipler --start 2 --end 12 --recursive
  slydetrim batch "*.mp4" --policy frame --workers 4 --retry 2
  slydetrim batch ./klipler --dry-run
  slydetrim batch ./klipler --report json --report-file rapor.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source := args[0]

		applyPolicyDefault(cmd, "policy", &batchPolicy)
		applyOnConflictDefault(cmd, "on-conflict", &batchOnConflict)
		applyRetryDefaults(cmd, "retry", &batchRetry, "retry-delay", &batchRetryDelay)
		applyReportDefault(cmd, "report", &batchReport)
		applyLoadTimeoutDefault(cmd, "load-timeout", &batchLoadTimeout)

		def, err := resolvePolicy(batchPolicy)
		if err != nil {
			return err
		}
		conflict := batchOnConflict
		if conflict == "" {
			conflict = def.OnConflict
		}
		reportFormat := batchReport
		if reportFormat == "" {
			reportFormat = def.Report
		}

		files, err := collectBatchFiles(source, batchRecursive)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			ui.PrintWarning("Kırpılacak video bulunamadı.")
			return nil
		}
		if !isJSONOutput() {
			ui.PrintInfo(fmt.Sprintf("%d adet video bulundu", len(files)))
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		jobs, err := buildTrimJobs(ctx, files, def, batchStart, batchEnd, conflict)
		if err != nil {
			return err
		}

		if batchDryRun {
			return printDryRun(jobs)
		}

		pool := batch.NewPool(workers)
		pool.SetRetry(batchRetry, batchRetryDelay)
		pool.LoadTimeout = batchLoadTimeout

		if !isJSONOutput() {
			pb := ui.NewProgressBar("Kırpılıyor")
			pool.OnProgress = func(completed, total int) {
				if total > 0 {
					pb.Update(completed * 100 / total)
				}
			}
			fmt.Println()
		}

		startedAt := time.Now()
		results := pool.Execute(ctx, jobs)
		endedAt := time.Now()

		summary := batch.GetSummary(results, endedAt.Sub(startedAt))
		rep := batch.BuildReport("Toplu kırpma raporu", def.Name, results, startedAt, endedAt)

		if isJSONOutput() {
			if err := printJSON(rep.Summary()); err != nil {
				return err
			}
		} else {
			ui.PrintBatchSummary(summary.Total, summary.Succeeded, summary.Skipped, summary.Failed, summary.Duration)
			if len(summary.Errors) > 0 {
				ui.PrintError("Başarısız kırpmalar:")
				for _, e := range summary.Errors {
					fmt.Printf("  %s %s (%d deneme): %s\n", ui.IconError, e.InputFile, e.Attempts, e.Error)
				}
				fmt.Println()
			}
		}

		if err := emitReport(reportFormat, batchReportFile, rep); err != nil {
			return err
		}
		if summary.Failed > 0 {
			return fmt.Errorf("%d video kırpılamadı", summary.Failed)
		}
		return nil
	},
}

// collectBatchFiles kaynak bir dizinse tarar, değilse glob olarak yorumlar.
func collectBatchFiles(source string, recursive bool) ([]string, error) {
	if info, err := os.Stat(source); err == nil && info.IsDir() {
		return batch.CollectFiles(source, media.VideoFormats, recursive)
	}

	matches, err := batch.CollectFilesFromGlob(source)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, f := range matches {
		if media.HasFormatExtension(f, media.VideoFormats...) && !media.IsTrimOutput(f) {
			files = append(files, f)
		}
	}
	return files, nil
}

// buildTrimJobs her dosya için pencereyi ve çıktı yolunu çözer.
// Süresi okunamayan ya da aralığa sığmayan dosyalar atlanmış iş olarak eklenir.
func buildTrimJobs(ctx context.Context, files []string, def policy.Definition, startRaw, endRaw, conflict string) ([]batch.Job, error) {
	reserved := make(map[string]struct{}, len(files))
	jobs := make([]batch.Job, 0, len(files))

	for _, f := range files {
		job := batch.Job{InputPath: f}

		duration, err := media.ProbeDuration(ctx, f)
		if err != nil {
			job.SkipReason = "probe_failed"
			jobs = append(jobs, job)
			continue
		}

		sel, _, err := resolveWindow(duration, startRaw, endRaw, def)
		if err != nil {
			job.SkipReason = "window_out_of_range"
			jobs = append(jobs, job)
			continue
		}
		job.Start = sel.Start
		job.End = sel.End

		out, skipReason, err := resolveBatchOutputPath(media.BuildTrimOutputPath(f, outputDir, ""), conflict, reserved)
		if err != nil {
			return nil, err
		}
		job.OutputPath = out
		job.SkipReason = skipReason
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func printDryRun(jobs []batch.Job) error {
	if isJSONOutput() {
		return printJSON(jobs)
	}

	ui.PrintInfo("Ön izleme modu (--dry-run), kırpma yapılmayacak:")
	fmt.Println()
	planned := 0
	for _, j := range jobs {
		if j.SkipReason != "" {
			ui.PrintWarning(fmt.Sprintf("%s atlanacak (%s)", j.InputPath, j.SkipReason))
			continue
		}
		ui.PrintTrim(j.InputPath, j.OutputPath, j.Start, j.End)
		planned++
	}
	fmt.Println()
	ui.PrintInfo(fmt.Sprintf("Toplam %d video kırpılacak.", planned))
	return nil
}

func init() {
	batchCmd.Flags().StringVarP(&batchPolicy, "policy", "p", "", "Süre politikası: frame, hero, free veya proje tanımlı")
	batchCmd.Flags().StringVarP(&batchStart, "start", "s", "", "Başlangıç (sn veya HH:MM:SS)")
	batchCmd.Flags().StringVarP(&batchEnd, "end", "e", "", "Bitiş (sn veya HH:MM:SS)")
	batchCmd.Flags().BoolVarP(&batchRecursive, "recursive", "r", false, "Alt dizinleri de tara")
	batchCmd.Flags().BoolVar(&batchDryRun, "dry-run", false, "Kırpmadan planı listele")
	batchCmd.Flags().StringVar(&batchOnConflict, "on-conflict", "", "Çakışma politikası: overwrite, skip, versioned")
	batchCmd.Flags().IntVar(&batchRetry, "retry", 0, "Başarısız kırpmayı yeniden deneme sayısı")
	batchCmd.Flags().DurationVar(&batchRetryDelay, "retry-delay", 500*time.Millisecond, "Denemeler arası bekleme")
	batchCmd.Flags().DurationVar(&batchLoadTimeout, "load-timeout", 0, "Motor yükleme zaman aşımı")
	batchCmd.Flags().StringVar(&batchReport, "report", "", "Rapor formatı: off, txt, json, md, html")
	batchCmd.Flags().StringVar(&batchReportFile, "report-file", "", "Rapor dosyası (boşsa stdout)")

	rootCmd.AddCommand(batchCmd)
}
