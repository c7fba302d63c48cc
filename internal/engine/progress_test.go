package engine

import (
	"math"
	"strings"
	"testing"
)

func TestProgressReaderParsesBlocks(t *testing.T) {
	input := strings.Join([]string{
		"frame=10",
		"out_time_us=1500000",
		"speed=2.0x",
		"progress=continue",
		"out_time_ms=3000000",
		"progress=continue",
		"out_time=00:01:02.500000",
		"progress=end",
		"[mp4 @ 0x1] invalid data",
	}, "\n")

	var got []float64
	r := newProgressReader(func(elapsed float64) { got = append(got, elapsed) })
	r.read(strings.NewReader(input))

	want := []float64{1.5, 3, 62.5}
	if len(got) != len(want) {
		t.Fatalf("unexpected progress values: %v", got)
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("unexpected progress values: %v", got)
		}
	}
	if r.Output() != "[mp4 @ 0x1] invalid data" {
		t.Fatalf("unexpected output tail: %q", r.Output())
	}
}

func TestProgressReaderSkipsBlocksWithoutTime(t *testing.T) {
	var calls int
	r := newProgressReader(func(float64) { calls++ })
	r.read(strings.NewReader("frame=1\nout_time_us=N/A\nprogress=continue\n"))
	if calls != 0 {
		t.Fatalf("expected no progress for blocks without time, got %d", calls)
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"00:00:10.5", 10.5, true},
		{"01:02:03", 3723, true},
		{"10.5", 0, false},
		{"00:-1:00", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseClock(tt.in)
		if ok != tt.ok || math.Abs(got-tt.want) > 1e-9 {
			t.Fatalf("parseClock(%q) = %v, %v", tt.in, got, ok)
		}
	}
}

func TestPercentTrackerIsMonotonic(t *testing.T) {
	tr := newPercentTracker(10)
	steps := []struct {
		elapsed float64
		pct     uint8
		ok      bool
	}{
		{1, 10, true},
		{0.5, 0, false},
		{1, 0, false},
		{5, 50, true},
		{12, 99, true},
		{20, 0, false},
	}
	for _, s := range steps {
		pct, ok := tr.update(s.elapsed)
		if ok != s.ok || (ok && pct != s.pct) {
			t.Fatalf("update(%v) = %d, %v; want %d, %v", s.elapsed, pct, ok, s.pct, s.ok)
		}
	}
}

func TestFFmpegResolveRejectsPaths(t *testing.T) {
	f := &FFmpeg{dir: t.TempDir(), bin: "ffmpeg"}
	if _, err := f.resolve("../escape.mp4"); err == nil {
		t.Fatalf("expected error for path traversal")
	}
	if err := f.WriteFile("input-1.mp4", []byte("x")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := f.ReadFile("input-1.mp4")
	if err != nil || string(data) != "x" {
		t.Fatalf("unexpected read: %q %v", data, err)
	}
	if err := f.DeleteFile("input-1.mp4"); err != nil {
		t.Fatalf("unexpected delete error: %v", err)
	}
	if err := f.DeleteFile("input-1.mp4"); err != nil {
		t.Fatalf("deleting a missing file must not fail: %v", err)
	}
	if err := f.Terminate(); err != nil {
		t.Fatalf("unexpected terminate error: %v", err)
	}
	if err := f.WriteFile("a.mp4", nil); err == nil {
		t.Fatalf("expected error after terminate")
	}
}
