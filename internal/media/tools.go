package media

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// ErrFFmpegNotFound ffmpeg hiçbir aday yolda bulunamadığında döner.
var ErrFFmpegNotFound = errors.New("ffmpeg bulunamadı")

// ErrFFprobeNotFound ffprobe hiçbir aday yolda bulunamadığında döner.
var ErrFFprobeNotFound = errors.New("ffprobe bulunamadı")

// ExternalTool harici bir aracın durumunu temsil eder
type ExternalTool struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Path      string `json:"path,omitempty"`
	Version   string `json:"version,omitempty"`
}

// FindFFmpeg sistemde ffmpeg'i arar. FFMPEG_PATH önceliklidir.
func FindFFmpeg() (string, error) {
	if p := findTool("FFMPEG_PATH", "ffmpeg"); p != "" {
		return p, nil
	}
	return "", ErrFFmpegNotFound
}

// FindFFprobe sistemde ffprobe'u arar. FFPROBE_PATH önceliklidir.
func FindFFprobe() (string, error) {
	if p := findTool("FFPROBE_PATH", "ffprobe"); p != "" {
		return p, nil
	}
	return "", ErrFFprobeNotFound
}

func findTool(envKey, name string) string {
	if envPath := strings.TrimSpace(os.Getenv(envKey)); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	paths := []string{name}
	switch runtime.GOOS {
	case "darwin":
		paths = append(paths, "/opt/homebrew/bin/"+name, "/usr/local/bin/"+name)
	case "linux":
		paths = append(paths, "/usr/bin/"+name, "/usr/local/bin/"+name)
	case "windows":
		paths = append(paths, `C:\ffmpeg\bin\`+name+".exe")
	}

	for _, p := range paths {
		if path, err := exec.LookPath(p); err == nil {
			return path
		}
	}
	return ""
}

// ToolVersion "-version" çıktısının ilk satırını döner.
func ToolVersion(ctx context.Context, path string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, path, "-version").Output()
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(line), nil
}

// CheckDependencies ffmpeg ve ffprobe durumunu döner
func CheckDependencies(ctx context.Context) []ExternalTool {
	tools := []ExternalTool{{Name: "FFmpeg"}, {Name: "FFprobe"}}
	finders := []func() (string, error){FindFFmpeg, FindFFprobe}

	for i, find := range finders {
		path, err := find()
		if err != nil {
			continue
		}
		tools[i].Available = true
		tools[i].Path = path
		if v, err := ToolVersion(ctx, path); err == nil {
			tools[i].Version = v
		}
	}
	return tools
}
