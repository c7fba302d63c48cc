package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mlihgenel/slydetrim/internal/media"
)

var infoCmd = &cobra.Command{
	Use:   "info <kaynak>",
	Short: "Video hakkında detaylı bilgi göster",
	Long: `Bir videonun format, boyut, süre, çözünürlük ve codec bilgilerini gösterir.
Ayrıca seçili politikanın varsayılan kırpma penceresini hesaplar.

Örnekler:
  slydetrim info klip.mp4
  slydetrim info s3://slydes-media/kapak.mov
  slydetrim info klip.mp4 --output-format json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := openSource(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer src.Preview.Release()

		info := src.Info
		info.Size = src.Asset.Size()
		info.SizeText = media.FormatSize(info.Size)

		if isJSONOutput() {
			return printJSON(info)
		}

		printVideoInfo(info)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func printVideoInfo(info media.Info) {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#10B981"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#E2E8F0")).
		Width(16)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Bold(true)

	dimStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#64748B"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#334155")).
		Padding(1, 2).
		MarginTop(1)

	var lines []string
	lines = append(lines, headerStyle.Render(fmt.Sprintf("🎬  %s", info.FileName)))
	lines = append(lines, dimStyle.Render(strings.Repeat("─", 40)))

	lines = append(lines, formatInfoLine(labelStyle, valueStyle, "Format", strings.ToUpper(info.Format)))
	lines = append(lines, formatInfoLine(labelStyle, valueStyle, "Boyut", info.SizeText))
	lines = append(lines, formatInfoLine(labelStyle, valueStyle, "Süre", formatTimecode(info.Duration)))
	if res := info.Resolution(); res != "" {
		lines = append(lines, formatInfoLine(labelStyle, valueStyle, "Çözünürlük", res))
	}
	if info.VideoCodec != "" {
		lines = append(lines, formatInfoLine(labelStyle, valueStyle, "Video Codec", info.VideoCodec))
	}
	if info.AudioCodec != "" {
		lines = append(lines, formatInfoLine(labelStyle, valueStyle, "Ses Codec", info.AudioCodec))
	}
	if info.FPS > 0 {
		lines = append(lines, formatInfoLine(labelStyle, valueStyle, "FPS", fmt.Sprintf("%.2f", info.FPS)))
	}
	if info.Bitrate > 0 {
		lines = append(lines, formatInfoLine(labelStyle, valueStyle, "Bitrate", fmt.Sprintf("%d kb/s", info.Bitrate/1000)))
	}

	if rows, err := policyRows(); err == nil {
		lines = append(lines, dimStyle.Render(strings.Repeat("─", 40)))
		for _, r := range rows {
			def, err := resolvePolicy(r.Name)
			if err != nil {
				continue
			}
			start, end := def.Window(info.Duration)
			lines = append(lines, formatInfoLine(labelStyle, valueStyle, "Pencere "+r.Name,
				fmt.Sprintf("%s - %s", formatTimecode(start), formatTimecode(end))))
		}
	}

	fmt.Println(boxStyle.Render(strings.Join(lines, "\n")))
}

func formatInfoLine(labelStyle, valueStyle lipgloss.Style, label, value string) string {
	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}
