package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

const (
	FormatOff  = "off"
	FormatTXT  = "txt"
	FormatJSON = "json"
	FormatMD   = "md"
	FormatHTML = "html"
)

const (
	StatusSuccess = "success"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// Item tek bir kırpma işinin rapor satırıdır.
type Item struct {
	Input      string  `json:"input"`
	Output     string  `json:"output"`
	Status     string  `json:"status"`
	Start      float64 `json:"start_seconds"`
	End        float64 `json:"end_seconds"`
	DurationMS int64   `json:"duration_ms"`
	OutputSize int64   `json:"output_size,omitempty"`
	Error      string  `json:"error,omitempty"`
	SkipReason string  `json:"skip_reason,omitempty"`
}

// Report batch, watch veya tekil kırpma sonuçlarını özetler.
type Report struct {
	Title     string
	Policy    string
	StartedAt time.Time
	EndedAt   time.Time
	Items     []Item
}

// Summary sayaçları tutar.
type Summary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// Summary durumlara göre sayaçları hesaplar.
func (r Report) Summary() Summary {
	s := Summary{Total: len(r.Items)}
	for _, it := range r.Items {
		switch it.Status {
		case StatusSuccess:
			s.Succeeded++
		case StatusSkipped:
			s.Skipped++
		default:
			s.Failed++
		}
	}
	return s
}

// Duration toplam süreyi döner.
func (r Report) Duration() time.Duration {
	if r.EndedAt.Before(r.StartedAt) {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt).Round(time.Millisecond)
}

// NormalizeFormat rapor formatını normalize eder.
func NormalizeFormat(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatOff:
		return FormatOff
	case FormatTXT:
		return FormatTXT
	case FormatJSON:
		return FormatJSON
	case FormatMD, "markdown":
		return FormatMD
	case FormatHTML:
		return FormatHTML
	default:
		return ""
	}
}

// Render raporu verilen formatta üretir.
func Render(format string, r Report) (string, error) {
	switch NormalizeFormat(format) {
	case FormatOff:
		return "", nil
	case FormatTXT:
		return renderTXT(r), nil
	case FormatJSON:
		return renderJSON(r)
	case FormatMD:
		return renderMarkdown(r), nil
	case FormatHTML:
		return renderHTML(r)
	default:
		return "", fmt.Errorf("geçersiz report formatı: %s", format)
	}
}

func title(r Report) string {
	if r.Title != "" {
		return r.Title
	}
	return "Trim Report"
}

func renderTXT(r Report) string {
	s := r.Summary()
	var b strings.Builder
	b.WriteString(title(r) + "\n")
	b.WriteString(strings.Repeat("=", 40))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Started:   %s\n", r.StartedAt.Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf("Ended:     %s\n", r.EndedAt.Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf("Duration:  %s\n", r.Duration()))
	if r.Policy != "" {
		b.WriteString(fmt.Sprintf("Policy:    %s\n", r.Policy))
	}
	b.WriteString(fmt.Sprintf("Total:     %d\n", s.Total))
	b.WriteString(fmt.Sprintf("Succeeded: %d\n", s.Succeeded))
	b.WriteString(fmt.Sprintf("Skipped:   %d\n", s.Skipped))
	b.WriteString(fmt.Sprintf("Failed:    %d\n", s.Failed))
	b.WriteString("\nItems:\n")

	for _, it := range r.Items {
		b.WriteString(fmt.Sprintf("- [%s] %s -> %s (%s-%s)", it.Status, it.Input, it.Output, seconds(it.Start), seconds(it.End)))
		if it.OutputSize > 0 {
			b.WriteString(fmt.Sprintf(" (size=%d)", it.OutputSize))
		}
		if it.SkipReason != "" {
			b.WriteString(fmt.Sprintf(" (reason=%s)", it.SkipReason))
		}
		if it.Error != "" {
			b.WriteString(fmt.Sprintf(" (error=%s)", it.Error))
		}
		b.WriteString("\n")
	}
	return b.String()
}

type payload struct {
	Title     string  `json:"title"`
	Policy    string  `json:"policy,omitempty"`
	StartedAt string  `json:"started_at"`
	EndedAt   string  `json:"ended_at"`
	Duration  string  `json:"duration"`
	Summary   Summary `json:"summary"`
	Items     []Item  `json:"items"`
}

func renderJSON(r Report) (string, error) {
	items := r.Items
	if items == nil {
		items = []Item{}
	}
	data, err := json.MarshalIndent(payload{
		Title:     title(r),
		Policy:    r.Policy,
		StartedAt: r.StartedAt.Format(time.RFC3339),
		EndedAt:   r.EndedAt.Format(time.RFC3339),
		Duration:  r.Duration().String(),
		Summary:   r.Summary(),
		Items:     items,
	}, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func renderMarkdown(r Report) string {
	s := r.Summary()
	var b strings.Builder
	b.WriteString("# " + title(r) + "\n\n")
	b.WriteString(fmt.Sprintf("- **Started:** %s\n", r.StartedAt.Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf("- **Duration:** %s\n", r.Duration()))
	if r.Policy != "" {
		b.WriteString(fmt.Sprintf("- **Policy:** %s\n", r.Policy))
	}
	b.WriteString(fmt.Sprintf("- **Total:** %d (success %d, skipped %d, failed %d)\n\n", s.Total, s.Succeeded, s.Skipped, s.Failed))

	b.WriteString("| Status | Input | Output | Range | Size | Note |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, it := range r.Items {
		note := it.Error
		if note == "" {
			note = it.SkipReason
		}
		size := ""
		if it.OutputSize > 0 {
			size = fmt.Sprintf("%d", it.OutputSize)
		}
		b.WriteString(fmt.Sprintf("| %s | %s | %s | %s-%s | %s | %s |\n",
			it.Status, escapeCell(it.Input), escapeCell(it.Output),
			seconds(it.Start), seconds(it.End), size, escapeCell(note)))
	}
	return b.String()
}

func renderHTML(r Report) (string, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Table),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithXHTML()),
	)

	var buf bytes.Buffer
	buf.WriteString(`<!DOCTYPE html>
<html lang="tr">
<head>
<meta charset="UTF-8">
<title>` + title(r) + `</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif; max-width: 960px; margin: 0 auto; padding: 20px; line-height: 1.6; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ddd; padding: 6px 10px; text-align: left; }
th { background: #f8f8f8; }
</style>
</head>
<body>
`)
	if err := md.Convert([]byte(renderMarkdown(r)), &buf); err != nil {
		return "", fmt.Errorf("markdown dönüşüm hatası: %w", err)
	}
	buf.WriteString("\n</body>\n</html>\n")
	return buf.String(), nil
}

func seconds(v float64) string {
	return fmt.Sprintf("%.2fs", v)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
