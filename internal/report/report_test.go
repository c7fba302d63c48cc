package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func sampleReport() Report {
	return Report{
		Title:     "Batch Report",
		Policy:    "hero",
		StartedAt: time.Unix(0, 0),
		EndedAt:   time.Unix(2, 0),
		Items: []Item{
			{Input: "a.mp4", Output: "a_trim.mp4", Status: StatusSuccess, Start: 0, End: 30, OutputSize: 2048},
			{Input: "b.mov", Output: "b_trim.mov", Status: StatusSkipped, SkipReason: "output_exists"},
			{Input: "c.webm", Status: StatusFailed, Error: "kırpma başarısız"},
		},
	}
}

func TestNormalizeFormat(t *testing.T) {
	tests := map[string]string{
		"":         FormatOff,
		"JSON":     FormatJSON,
		"markdown": FormatMD,
		"html":     FormatHTML,
		"bad":      "",
	}
	for in, want := range tests {
		if got := NormalizeFormat(in); got != want {
			t.Fatalf("NormalizeFormat(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSummary(t *testing.T) {
	s := sampleReport().Summary()
	if s.Total != 3 || s.Succeeded != 1 || s.Skipped != 1 || s.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", s)
	}
}

func TestRenderTXT(t *testing.T) {
	out, err := Render(FormatTXT, sampleReport())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	for _, want := range []string{"Batch Report", "[success] a.mp4 -> a_trim.mp4 (0.00s-30.00s)", "(reason=output_exists)", "Policy:    hero"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in report:\n%s", want, out)
		}
	}
}

func TestRenderJSON(t *testing.T) {
	out, err := Render(FormatJSON, sampleReport())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	var decoded struct {
		Summary Summary `json:"summary"`
		Items   []Item  `json:"items"`
	}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if decoded.Summary.Total != 3 || len(decoded.Items) != 3 {
		t.Fatalf("unexpected payload: %+v", decoded)
	}
}

func TestRenderHTMLUsesMarkdownTable(t *testing.T) {
	out, err := Render(FormatHTML, sampleReport())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(out, "<table>") || !strings.Contains(out, "<td>a_trim.mp4</td>") {
		t.Fatalf("expected rendered table, got:\n%s", out)
	}
	if !strings.Contains(out, "<h1") {
		t.Fatalf("expected heading")
	}
}

func TestRenderOffAndInvalid(t *testing.T) {
	out, err := Render(FormatOff, sampleReport())
	if err != nil || out != "" {
		t.Fatalf("off must render nothing: %q %v", out, err)
	}
	if _, err := Render("xml", sampleReport()); err == nil {
		t.Fatalf("expected error for invalid format")
	}
}
