package media

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeConflictPolicy(t *testing.T) {
	if got := NormalizeConflictPolicy(""); got != ConflictVersioned {
		t.Fatalf("expected default policy %s, got %s", ConflictVersioned, got)
	}
	if got := NormalizeConflictPolicy("OVERWRITE"); got != ConflictOverwrite {
		t.Fatalf("expected overwrite, got %s", got)
	}
	if got := NormalizeConflictPolicy("bad"); got != "" {
		t.Fatalf("expected empty for invalid policy, got %s", got)
	}
}

func TestBuildTrimOutputPath(t *testing.T) {
	tests := []struct {
		input  string
		dir    string
		name   string
		expect string
	}{
		{"/videos/intro.MP4", "", "", "/videos/intro_trim.mp4"},
		{"/videos/intro.mov", "/out", "", "/out/intro_trim.mov"},
		{"/videos/intro.webm", "/out", "cover.mp4", "/out/cover.webm"},
	}
	for _, tt := range tests {
		got := BuildTrimOutputPath(tt.input, tt.dir, tt.name)
		if got != filepath.FromSlash(tt.expect) {
			t.Fatalf("BuildTrimOutputPath(%s) = %s, want %s", tt.input, got, tt.expect)
		}
	}
}

func TestResolveOutputPathConflictSkip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip_trim.mp4")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	got, skip, err := ResolveOutputPathConflict(path, ConflictSkip)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !skip || got != path {
		t.Fatalf("expected skip for %s, got %s (skip=%v)", path, got, skip)
	}
}

func TestResolveOutputPathConflictVersioned(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip_trim.mp4")
	for _, p := range []string{path, filepath.Join(dir, "clip_trim (1).mp4")} {
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}

	got, skip, err := ResolveOutputPathConflict(path, ConflictVersioned)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if skip {
		t.Fatalf("versioned should not skip")
	}
	if want := filepath.Join(dir, "clip_trim (2).mp4"); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestResolveOutputPathConflictMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.mp4")
	got, skip, err := ResolveOutputPathConflict(path, ConflictOverwrite)
	if err != nil || skip || got != path {
		t.Fatalf("unexpected result: %s %v %v", got, skip, err)
	}
}

func TestResolveOutputPathConflictInvalidPolicy(t *testing.T) {
	if _, _, err := ResolveOutputPathConflict("clip.mp4", "invalid"); err == nil {
		t.Fatalf("expected error for invalid policy")
	}
}

func TestIsTrimOutput(t *testing.T) {
	tests := map[string]bool{
		"clip_trim.mp4":     true,
		"clip_trim (3).mov": true,
		"clip.mp4":          false,
		"trim.mp4":          false,
	}
	for name, want := range tests {
		if got := IsTrimOutput(name); got != want {
			t.Fatalf("IsTrimOutput(%s) = %v, want %v", name, got, want)
		}
	}
}

func TestFormatSize(t *testing.T) {
	if got := FormatSize(512); got != "512 B" {
		t.Fatalf("unexpected size text: %s", got)
	}
	if got := FormatSize(1536); got != "1.5 KB" {
		t.Fatalf("unexpected size text: %s", got)
	}
}
