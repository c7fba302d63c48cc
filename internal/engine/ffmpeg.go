package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mlihgenel/slydetrim/internal/logging"
	"github.com/mlihgenel/slydetrim/internal/media"
)

// FFmpeg harici ffmpeg sürecini Runtime olarak sunar.
// Çalışma alanı Init sırasında oluşturulan geçici bir dizindir.
type FFmpeg struct {
	// Path boşsa FFMPEG_PATH ve bilinen yollar aranır.
	Path string

	mu     sync.Mutex
	bin    string
	dir    string
	logger zerolog.Logger
}

// NewFFmpeg yeni bir ffmpeg runtime'ı oluşturur.
func NewFFmpeg() *FFmpeg {
	return &FFmpeg{logger: logging.WithComponent("engine")}
}

// Init ffmpeg'i bulur, çalıştığını doğrular ve çalışma alanını hazırlar.
func (f *FFmpeg) Init(ctx context.Context) error {
	bin := f.Path
	if bin == "" {
		found, err := media.FindFFmpeg()
		if err != nil {
			return err
		}
		bin = found
	}

	out, err := exec.CommandContext(ctx, bin, "-hide_banner", "-version").Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("ffmpeg doğrulanamadı: %w", err)
	}
	version, _, _ := strings.Cut(string(out), "\n")

	dir, err := os.MkdirTemp("", "slydetrim-engine-*")
	if err != nil {
		return fmt.Errorf("çalışma alanı oluşturulamadı: %w", err)
	}

	f.mu.Lock()
	old := f.dir
	f.bin = bin
	f.dir = dir
	f.mu.Unlock()
	if old != "" {
		os.RemoveAll(old)
	}

	f.logger.Debug().Str("ffmpeg", bin).Str("version", strings.TrimSpace(version)).Str("workspace", dir).Msg("engine runtime ready")
	return nil
}

func (f *FFmpeg) workspace() (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dir == "" {
		return "", "", errors.New("çalışma alanı hazır değil")
	}
	return f.bin, f.dir, nil
}

func (f *FFmpeg) resolve(name string) (string, error) {
	_, dir, err := f.workspace()
	if err != nil {
		return "", err
	}
	clean := filepath.Base(filepath.Clean(name))
	if clean != name || clean == "." || clean == ".." {
		return "", fmt.Errorf("geçersiz dosya adı: %s", name)
	}
	return filepath.Join(dir, clean), nil
}

func (f *FFmpeg) WriteFile(name string, data []byte) error {
	path, err := f.resolve(name)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func (f *FFmpeg) ReadFile(name string) ([]byte, error) {
	path, err := f.resolve(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

func (f *FFmpeg) DeleteFile(name string) error {
	path, err := f.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Exec ffmpeg'i çalışma alanı içinde çalıştırır ve ilerlemeyi bildirir.
func (f *FFmpeg) Exec(ctx context.Context, args []string, onProgress func(elapsed float64)) error {
	bin, dir, err := f.workspace()
	if err != nil {
		return err
	}

	full := append([]string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-nostats",
		"-progress", "pipe:2",
	}, args...)

	f.logger.Debug().Strs("args", full).Msg("executing ffmpeg")

	cmd := exec.CommandContext(ctx, bin, full...)
	cmd.Dir = dir

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe oluşturulamadı: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg başlatılamadı: %w", err)
	}

	reader := newProgressReader(onProgress)
	reader.read(stderr)

	if err := cmd.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("ffmpeg hatası: %s\n%s", err.Error(), reader.Output())
	}
	return nil
}

// Terminate çalışma alanını siler. Birden fazla çağrılabilir.
func (f *FFmpeg) Terminate() error {
	f.mu.Lock()
	dir := f.dir
	f.dir = ""
	f.mu.Unlock()
	if dir == "" {
		return nil
	}
	f.logger.Debug().Str("workspace", dir).Msg("engine runtime terminated")
	return os.RemoveAll(dir)
}
