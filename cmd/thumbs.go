package cmd

import (
	"fmt"
	"image/color"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mlihgenel/slydetrim/internal/thumbnail"
	"github.com/mlihgenel/slydetrim/internal/ui"
)

var (
	thumbsCount   int
	thumbsWidth   int
	thumbsHeight  int
	thumbsPDF     string
	thumbsColumns int
)

type thumbRow struct {
	Index     int     `json:"index"`
	Time      float64 `json:"time_seconds"`
	Color     string  `json:"color"`
	Available bool    `json:"available"`
	Error     string  `json:"error,omitempty"`
}

var thumbsCmd = &cobra.Command{
	Use:   "thumbs <kaynak>",
	Short: "Zaman çizelgesi önizleme karelerini çıkar",
	Long: `Videodan eşit aralıklı önizleme kareleri alır (i * süre / N) ve sabit
boyuta ölçekler. Alınamayan kareler boş yer tutucu olarak raporlanır.
--pdf verilirse kareler bir kontak sayfasına yazılır.

Örnekler:
  slydetrim thumbs klip.mp4
  slydetrim thumbs klip.mp4 --count 20 --pdf kareler.pdf
  slydetrim thumbs https://cdn.example.com/intro.webm --width 320 --height 180`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		applyThumbnailsDefault(cmd, "count", &thumbsCount)
		if thumbsCount <= 0 || thumbsWidth <= 0 || thumbsHeight <= 0 {
			return fmt.Errorf("count, width ve height sıfırdan büyük olmalı")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		src, err := openSource(ctx, args[0])
		if err != nil {
			return err
		}
		defer src.Preview.Release()

		surface, err := thumbnail.NewFFmpegSurface(src.Preview.Path())
		if err != nil {
			return err
		}
		sampler := thumbnail.NewSampler(surface)
		sampler.Count = thumbsCount
		sampler.Width = thumbsWidth
		sampler.Height = thumbsHeight

		frames, err := sampler.Sample(ctx, src.Info.Duration)
		if err != nil {
			return err
		}

		if thumbsPDF != "" {
			if err := thumbnail.WriteContactSheet(thumbsPDF, frames, thumbnail.SheetOptions{
				Title:   src.Asset.Name,
				Columns: thumbsColumns,
			}); err != nil {
				return fmt.Errorf("kontak sayfası yazılamadı: %w", err)
			}
		}

		rows := thumbRows(frames)
		if isJSONOutput() {
			return printJSON(rows)
		}

		table := make([][]string, 0, len(rows))
		missing := 0
		for _, r := range rows {
			status := "✓"
			if !r.Available {
				status = "yok"
				missing++
			}
			table = append(table, []string{fmt.Sprintf("%d", r.Index+1), formatTimecode(r.Time), r.Color, status})
		}
		ui.PrintTable([]string{"#", "Zaman", "Renk", "Kare"}, table)
		if missing > 0 {
			ui.PrintWarning(fmt.Sprintf("%d kare alınamadı, yer tutucu kullanıldı.", missing))
		}
		if thumbsPDF != "" {
			ui.PrintSuccess(fmt.Sprintf("Kontak sayfası yazıldı: %s", thumbsPDF))
		}
		return nil
	},
}

func thumbRows(frames []thumbnail.Frame) []thumbRow {
	rows := make([]thumbRow, 0, len(frames))
	for _, f := range frames {
		r := thumbRow{
			Index:     f.Index,
			Time:      f.Time,
			Color:     hexColor(f.Color()),
			Available: f.Available(),
		}
		if f.Err != nil {
			r.Error = f.Err.Error()
		}
		rows = append(rows, r)
	}
	return rows
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

func init() {
	thumbsCmd.Flags().IntVarP(&thumbsCount, "count", "c", thumbnail.DefaultCount, "Kare sayısı")
	thumbsCmd.Flags().IntVar(&thumbsWidth, "width", thumbnail.DefaultWidth, "Kare genişliği (px)")
	thumbsCmd.Flags().IntVar(&thumbsHeight, "height", thumbnail.DefaultHeight, "Kare yüksekliği (px)")
	thumbsCmd.Flags().StringVar(&thumbsPDF, "pdf", "", "Kontak sayfası PDF yolu")
	thumbsCmd.Flags().IntVar(&thumbsColumns, "columns", 5, "Kontak sayfası sütun sayısı")

	rootCmd.AddCommand(thumbsCmd)
}
