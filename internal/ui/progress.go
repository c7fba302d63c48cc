package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Out tüm çıktıların yazıldığı hedef; testler bir buffer ile değiştirir.
var Out io.Writer = os.Stdout

// Icons kullanıcı dostu ikonlar
const (
	IconSuccess = "✅"
	IconError   = "❌"
	IconWarning = "⚠️ "
	IconInfo    = "ℹ️ "
	IconTrim    = "✂️ "
	IconVideo   = "🎬"
	IconBatch   = "📦"
	IconDone    = "🎉"
	IconTime    = "⏱️ "
	IconFolder  = "📁"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#64748B"))
	boldStyle    = lipgloss.NewStyle().Bold(true)
	bannerStyle  = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7C3AED")).
			Padding(0, 2)
)

// PrintBanner uygulama başlığını yazdırır
func PrintBanner(version string) {
	fmt.Fprintln(Out, bannerStyle.Render(fmt.Sprintf("Slydes Trim  %s\nSunum videoları için kırpma aracı", version)))
}

// PrintSuccess başarılı mesaj
func PrintSuccess(msg string) {
	fmt.Fprintf(Out, "%s %s\n", IconSuccess, successStyle.Render(msg))
}

// PrintError hata mesajı
func PrintError(msg string) {
	fmt.Fprintf(Out, "%s %s\n", IconError, errorStyle.Render(msg))
}

// PrintWarning uyarı mesajı
func PrintWarning(msg string) {
	fmt.Fprintf(Out, "%s %s\n", IconWarning, warningStyle.Render(msg))
}

// PrintInfo bilgi mesajı
func PrintInfo(msg string) {
	fmt.Fprintf(Out, "%s %s\n", IconInfo, infoStyle.Render(msg))
}

// PrintTrim kırpma sonucunu yazdırır: girdi [başlangıç-bitiş] → çıktı
func PrintTrim(input, output string, start, end float64) {
	fmt.Fprintf(Out, "%s %s %s → %s\n",
		IconTrim,
		dimStyle.Render(input),
		infoStyle.Render(fmt.Sprintf("[%.2fs-%.2fs]", start, end)),
		successStyle.Render(output))
}

// PrintDuration süre bilgisi
func PrintDuration(d time.Duration) {
	fmt.Fprintf(Out, "%s Süre: %s\n", IconTime, infoStyle.Render(FormatDuration(d)))
}

// ProgressBar yüzde tabanlı ilerleme çubuğu
type ProgressBar struct {
	Width int
	Label string
	last  int
}

// NewProgressBar yeni bir progress bar oluşturur
func NewProgressBar(label string) *ProgressBar {
	return &ProgressBar{Width: 40, Label: label, last: -1}
}

// Update yüzdeyi günceller; aynı değer tekrar çizilmez.
func (pb *ProgressBar) Update(percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	if percent == pb.last {
		return
	}
	pb.last = percent

	fmt.Fprintf(Out, "\r  %s [%s] %s", boldStyle.Render(pb.Label), renderBar(percent, pb.Width), infoStyle.Render(fmt.Sprintf("%3d%%", percent)))
	if percent >= 100 {
		fmt.Fprintln(Out)
	}
}

func renderBar(percent, width int) string {
	if width <= 0 {
		return ""
	}
	filled := width * percent / 100
	return successStyle.Render(strings.Repeat("█", filled)) + dimStyle.Render(strings.Repeat("░", width-filled))
}

// PrintTable basit bir tablo yazdırır
func PrintTable(headers []string, rows [][]string) {
	if len(headers) == 0 {
		return
	}

	colWidths := make([]int, len(headers))
	for i, h := range headers {
		colWidths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(colWidths) && lipgloss.Width(cell) > colWidths[i] {
				colWidths[i] = lipgloss.Width(cell)
			}
		}
	}

	line := func(left, mid, right string) string {
		parts := make([]string, len(colWidths))
		for i, w := range colWidths {
			parts[i] = strings.Repeat("─", w+2)
		}
		return "  " + left + strings.Join(parts, mid) + right
	}
	cells := func(values []string, style *lipgloss.Style) string {
		var b strings.Builder
		b.WriteString("  │")
		for i := range headers {
			cell := ""
			if i < len(values) {
				cell = values[i]
			}
			pad := strings.Repeat(" ", colWidths[i]-lipgloss.Width(cell))
			if style != nil {
				cell = style.Render(cell)
			}
			b.WriteString(" " + cell + pad + " │")
		}
		return b.String()
	}

	fmt.Fprintln(Out, line("┌", "┬", "┐"))
	fmt.Fprintln(Out, cells(headers, &boldStyle))
	fmt.Fprintln(Out, line("├", "┼", "┤"))
	for _, row := range rows {
		fmt.Fprintln(Out, cells(row, nil))
	}
	fmt.Fprintln(Out, line("└", "┴", "┘"))
}

// PrintBatchSummary toplu iş özetini yazdırır
func PrintBatchSummary(total, succeeded, skipped, failed int, duration time.Duration) {
	fmt.Fprintln(Out)
	fmt.Fprintf(Out, "  %s %s\n", IconDone, boldStyle.Render("Toplu Kırpma Tamamlandı"))
	fmt.Fprintln(Out, "  "+strings.Repeat("─", 40))
	fmt.Fprintf(Out, "  Toplam:    %s dosya\n", infoStyle.Render(fmt.Sprint(total)))
	fmt.Fprintf(Out, "  Başarılı:  %s dosya\n", successStyle.Render(fmt.Sprint(succeeded)))
	if skipped > 0 {
		fmt.Fprintf(Out, "  Atlanan:   %s dosya\n", warningStyle.Render(fmt.Sprint(skipped)))
	}
	if failed > 0 {
		fmt.Fprintf(Out, "  Başarısız: %s dosya\n", errorStyle.Render(fmt.Sprint(failed)))
	}
	fmt.Fprintf(Out, "  Süre:      %s\n", warningStyle.Render(FormatDuration(duration)))
	fmt.Fprintln(Out)
}

// FormatDuration süreyi okunabilir formata çevirir
func FormatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
