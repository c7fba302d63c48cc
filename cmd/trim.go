package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mlihgenel/slydetrim/internal/asset"
	"github.com/mlihgenel/slydetrim/internal/engine"
	"github.com/mlihgenel/slydetrim/internal/media"
	"github.com/mlihgenel/slydetrim/internal/pipeline"
	"github.com/mlihgenel/slydetrim/internal/report"
	"github.com/mlihgenel/slydetrim/internal/timeline"
	"github.com/mlihgenel/slydetrim/internal/ui"
)

var (
	trimStart       string
	trimEnd         string
	trimPolicy      string
	trimName        string
	trimOnConflict  string
	trimReport      string
	trimReportFile  string
	trimLoadTimeout time.Duration
)

type trimResult struct {
	Input     string  `json:"input"`
	Output    string  `json:"output"`
	Policy    string  `json:"policy"`
	Start     float64 `json:"start_seconds"`
	End       float64 `json:"end_seconds"`
	Size      int64   `json:"size_bytes"`
	ElapsedMS int64   `json:"elapsed_ms"`
}

var trimCmd = &cobra.Command{
	Use:   "trim <kaynak>",
	Short: "Videoyu yeniden kodlamadan kırp",
	Long: `Verilen aralığı stream copy ile kırpar; konteyner formatı korunur.
Kaynak yerel dosya, http(s) adresi veya s3://bucket/key olabilir.
Aralık verilmezse politikanın varsayılan penceresi (başlangıçtan itibaren
en uzun süre) kullanılır.

Örnekler:
  slydetrim trim klip.mp4 --start 5 --end 15
  slydetrim trim klip.mov --start 00:01:02.5 --policy hero
  slydetrim trim https://cdn.example.com/intro.mp4 --policy frame -o ./out
  slydetrim trim s3://slydes-media/kapak.webm --name kapak --on-conflict overwrite`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := args[0]

		applyPolicyDefault(cmd, "policy", &trimPolicy)
		applyOnConflictDefault(cmd, "on-conflict", &trimOnConflict)
		applyReportDefault(cmd, "report", &trimReport)
		applyLoadTimeoutDefault(cmd, "load-timeout", &trimLoadTimeout)

		def, err := resolvePolicy(trimPolicy)
		if err != nil {
			return err
		}
		conflict := trimOnConflict
		if conflict == "" {
			conflict = def.OnConflict
		}
		if media.NormalizeConflictPolicy(conflict) == "" {
			return fmt.Errorf("geçersiz on-conflict politikası: %s", conflict)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		src, err := openSource(ctx, ref)
		if err != nil {
			return err
		}

		sel, adjusted, err := resolveWindow(src.Info.Duration, trimStart, trimEnd, def)
		if err != nil {
			src.Preview.Release()
			return err
		}
		if adjusted {
			ui.PrintWarning(fmt.Sprintf("Aralık %s politikasına göre %s-%s olarak ayarlandı.",
				def.Name, formatTimecode(sel.Start), formatTimecode(sel.End)))
		}

		outPath, skip, err := media.ResolveOutputPathConflict(trimOutputFor(ref, src.Asset, trimName), conflict)
		if err != nil {
			src.Preview.Release()
			return err
		}
		if skip {
			src.Preview.Release()
			ui.PrintWarning(fmt.Sprintf("Çıktı zaten var, atlandı: %s", outPath))
			return nil
		}

		startedAt := time.Now()
		res, err := runTrim(ctx, src, def.MaxDuration, sel)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				ui.PrintWarning("Kırpma iptal edildi.")
			}
			return err
		}
		if err := res.Save(outPath); err != nil {
			return fmt.Errorf("çıktı yazılamadı: %w", err)
		}
		endedAt := time.Now()

		if isJSONOutput() {
			return printJSON(trimResult{
				Input:     ref,
				Output:    outPath,
				Policy:    def.Name,
				Start:     sel.Start,
				End:       sel.End,
				Size:      res.Size(),
				ElapsedMS: endedAt.Sub(startedAt).Milliseconds(),
			})
		}

		ui.PrintTrim(src.Asset.Name, outPath, sel.Start, sel.End)
		ui.PrintSuccess(fmt.Sprintf("%s yazıldı (%s)", outPath, media.FormatSize(res.Size())))
		ui.PrintDuration(endedAt.Sub(startedAt))

		return emitReport(trimReport, trimReportFile, report.Report{
			Title:     "Kırpma raporu",
			Policy:    def.Name,
			StartedAt: startedAt,
			EndedAt:   endedAt,
			Items: []report.Item{{
				Input:      ref,
				Output:     outPath,
				Status:     report.StatusSuccess,
				Start:      sel.Start,
				End:        sel.End,
				DurationMS: endedAt.Sub(startedAt).Milliseconds(),
				OutputSize: res.Size(),
			}},
		})
	},
}

// runTrim kaynağı kendi motor oturumuyla tek seferlik bir pipeline üzerinden kırpar.
// Önizleme ve oturum her yolda pipeline tarafından bırakılır.
func runTrim(ctx context.Context, src *openedSource, maxDuration float64, sel timeline.Range) (asset.Asset, error) {
	var pb *ui.ProgressBar
	if !isJSONOutput() {
		pb = ui.NewProgressBar("Kırpılıyor")
	}

	p := pipeline.New(pipeline.Options{
		Source:      src.Asset,
		Duration:    src.Info.Duration,
		MaxDuration: maxDuration,
		Session:     engine.NewSession(engine.NewFFmpeg(), engine.Options{LoadTimeout: trimLoadTimeout}),
		Preview:     src.Preview,
		Callbacks: pipeline.Callbacks{
			OnProgress: func(pct uint8) {
				if pb != nil {
					pb.Update(int(pct))
				}
			},
		},
	})
	defer func() {
		if !p.Terminal() {
			p.Cancel()
		}
	}()

	if err := p.Start(ctx); err != nil {
		return asset.Asset{}, fmt.Errorf("motor yüklenemedi: %w", err)
	}

	p.Edit(func(m *timeline.Model) {
		m.Shift(sel.Start - m.Start())
		m.SetTrimStart(sel.Start)
		m.SetTrimEnd(sel.End)
	})

	return p.Commit(ctx)
}

func init() {
	trimCmd.Flags().StringVarP(&trimStart, "start", "s", "", "Başlangıç (sn veya HH:MM:SS)")
	trimCmd.Flags().StringVarP(&trimEnd, "end", "e", "", "Bitiş (sn veya HH:MM:SS)")
	trimCmd.Flags().StringVarP(&trimPolicy, "policy", "p", "", "Süre politikası: frame, hero, free veya proje tanımlı")
	trimCmd.Flags().StringVarP(&trimName, "name", "n", "", "Çıktı dosya adı (uzantı korunur)")
	trimCmd.Flags().StringVar(&trimOnConflict, "on-conflict", "", "Çakışma politikası: overwrite, skip, versioned")
	trimCmd.Flags().StringVar(&trimReport, "report", report.FormatOff, "Rapor formatı: off, txt, json, md, html")
	trimCmd.Flags().StringVar(&trimReportFile, "report-file", "", "Raporun yazılacağı dosya (varsayılan: stdout)")
	trimCmd.Flags().DurationVar(&trimLoadTimeout, "load-timeout", engine.DefaultLoadTimeout, "Motor yükleme zaman aşımı")

	rootCmd.AddCommand(trimCmd)
}
