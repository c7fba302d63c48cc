package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mlihgenel/slydetrim/internal/pipeline"
	"github.com/mlihgenel/slydetrim/internal/thumbnail"
	"github.com/mlihgenel/slydetrim/internal/timeline"
)

// ========================================
// Renk Paleti ve Stiller
// ========================================

var (
	primaryColor   = lipgloss.Color("#7C3AED") // Mor
	secondaryColor = lipgloss.Color("#06B6D4") // Cyan
	accentColor    = lipgloss.Color("#10B981") // Yeşil
	warningColor   = lipgloss.Color("#F59E0B") // Sarı
	dangerColor    = lipgloss.Color("#EF4444") // Kırmızı
	textColor      = lipgloss.Color("#E2E8F0") // Açık gri
	dimTextColor   = lipgloss.Color("#64748B") // Koyu gri

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(primaryColor).
			Padding(0, 2).
			MarginBottom(1)

	dimStyle = lipgloss.NewStyle().
			Foreground(dimTextColor)

	textStyle = lipgloss.NewStyle().
			Foreground(textColor)

	successStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(dangerColor)

	infoStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	focusStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(warningColor)

	handleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(primaryColor)

	playheadStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(warningColor)
)

var handleLabels = map[timeline.Handle]string{
	timeline.HandleStart:    "Başlangıç",
	timeline.HandleEnd:      "Bitiş",
	timeline.HandlePlayhead: "Oynatma",
}

func (m editorModel) View() string {
	if m.result != editorOpen {
		return ""
	}

	var b strings.Builder
	pad := strings.Repeat(" ", trackLeft)
	model := m.pipe.Model()
	state := m.pipe.State()

	title := fmt.Sprintf("✂️  %s", m.opts.Name)
	if limit, ok := m.opts.Policy.Limit(); ok {
		title += fmt.Sprintf("  ·  %s (en fazla %s)", m.opts.Policy.Name, formatTimecode(limit))
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	b.WriteString(pad + m.renderTrack(model) + "\n")
	b.WriteString(pad + m.renderMarkers(model) + "\n\n")

	b.WriteString(pad + m.renderTimes(model) + "\n")
	b.WriteString(pad + m.renderState(state) + "\n")

	if m.status != "" {
		style := infoStyle
		if m.statusErr {
			style = errorStyle
		}
		b.WriteString(pad + style.Render(m.status) + "\n")
	}

	b.WriteString("\n")
	if m.opts.ShowHelp {
		b.WriteString(pad + dimStyle.Render("tab: tutamaç  ←/→: taşı  shift+←/→: aralığı kaydır  ↑/↓: adım") + "\n")
		b.WriteString(pad + dimStyle.Render("space: oynat  [ ]: oynatma konumunu uç yap  r: sıfırla/tekrar dene") + "\n")
		b.WriteString(pad + dimStyle.Render("enter: kırp  s: atla  esc: iptal  ?: yardımı gizle") + "\n")
	} else {
		b.WriteString(pad + dimStyle.Render("enter: kırp  s: atla  esc: iptal  ?: yardım") + "\n")
	}
	return b.String()
}

// renderTrack her hücreyi en yakın önizleme karesinin rengiyle boyar.
// Seçim dışı hücreler soluk gösterilir.
func (m editorModel) renderTrack(model *timeline.Model) string {
	width := m.trackWidth()
	startCell := cellOf(model, model.Start(), width)
	endCell := cellOf(model, model.End(), width)

	var b strings.Builder
	for i := 0; i < width; i++ {
		inside := i >= startCell && i <= endCell
		bg := m.cellColor(i, width)
		style := lipgloss.NewStyle().Background(lipgloss.Color(bg))
		if !inside {
			style = style.Faint(true).Background(dimTextColor)
		}
		b.WriteString(style.Render(" "))
	}
	return b.String()
}

func (m editorModel) cellColor(cell, width int) string {
	if len(m.frames) == 0 {
		return "#334155"
	}
	idx := cell * len(m.frames) / width
	if idx >= len(m.frames) {
		idx = len(m.frames) - 1
	}
	return frameHex(m.frames[idx])
}

func frameHex(f thumbnail.Frame) string {
	return hexColor(f.Color())
}

func (m editorModel) renderMarkers(model *timeline.Model) string {
	width := m.trackWidth()
	row := []rune(strings.Repeat(" ", width))
	place := func(cell int, r rune) {
		if cell >= 0 && cell < width {
			row[cell] = r
		}
	}
	place(cellOf(model, model.Playhead(), width), '│')
	place(cellOf(model, model.Start(), width), '[')
	place(cellOf(model, model.End(), width), ']')

	var b strings.Builder
	for _, r := range row {
		switch r {
		case '[', ']':
			b.WriteString(handleStyle.Render(string(r)))
		case '│':
			b.WriteString(playheadStyle.Render(string(r)))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (m editorModel) renderTimes(model *timeline.Model) string {
	field := func(h timeline.Handle, v float64) string {
		label := handleLabels[h] + ": " + formatTimecode(v)
		if h == m.focus {
			return focusStyle.Render("▸ " + label)
		}
		return textStyle.Render("  " + label)
	}
	selection := fmt.Sprintf("Seçim: %s", formatTimecode(model.Selection()))
	selStyle := successStyle
	if !model.CanCommit() {
		selStyle = errorStyle
	}
	step := fmt.Sprintf("Adım: %s sn", trimFloat(m.step()))

	return strings.Join([]string{
		field(timeline.HandleStart, model.Start()),
		field(timeline.HandleEnd, model.End()),
		field(timeline.HandlePlayhead, model.Playhead()),
		selStyle.Render(selection),
		dimStyle.Render(step),
	}, "   ")
}

func (m editorModel) renderState(state pipeline.State) string {
	switch state {
	case pipeline.StateLoading:
		return m.spinner.View() + " " + infoStyle.Render("Motor yükleniyor...")
	case pipeline.StateTrimming:
		pct := float64(m.opts.Progress.Load()) / 100
		return m.bar.ViewAs(pct) + " " + infoStyle.Render(fmt.Sprintf("%%%d", m.opts.Progress.Load()))
	case pipeline.StateError:
		return errorStyle.Render("Hata")
	default:
		line := successStyle.Render("Hazır")
		if m.sampling {
			line += "  " + m.spinner.View() + dimStyle.Render(" önizleme kareleri alınıyor")
		}
		if m.ctrl.Playing() {
			line += "  " + playheadStyle.Render("▶ oynatılıyor")
		}
		return line
	}
}

func cellOf(model *timeline.Model, t float64, width int) int {
	if width <= 1 {
		return 0
	}
	cell := int(model.PositionOf(t, float64(width-1)) + 0.5)
	if cell >= width {
		cell = width - 1
	}
	return cell
}

func trimFloat(v float64) string {
	s := fmt.Sprintf("%.3f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
