package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"github.com/mlihgenel/slydetrim/internal/media"
)

// FFmpegSurface ffmpeg ile tek kare çıkaran Surface uygulamasıdır.
// Her Capture ayrı bir ffmpeg süreci başlatır.
type FFmpegSurface struct {
	ffmpeg string
	source string
	pos    float64
}

// NewFFmpegSurface verilen dosya için surface oluşturur.
func NewFFmpegSurface(source string) (*FFmpegSurface, error) {
	path, err := media.FindFFmpeg()
	if err != nil {
		return nil, err
	}
	return &FFmpegSurface{ffmpeg: path, source: source}, nil
}

// Seek bir sonraki capture'ın zamanını ayarlar.
func (s *FFmpegSurface) Seek(ctx context.Context, t float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
		return fmt.Errorf("geçersiz zaman: %v", t)
	}
	s.pos = t
	return nil
}

// Position mevcut seek konumunu döner.
func (s *FFmpegSurface) Position() float64 { return s.pos }

// Capture mevcut konumdaki kareyi PNG olarak alıp çözer.
func (s *FFmpegSurface) Capture(ctx context.Context) (image.Image, error) {
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		// -ss before -i for fast seeking
		"-ss", strconv.FormatFloat(s.pos, 'f', -1, 64),
		"-i", s.source,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.ffmpeg, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("thumbnail ffmpeg hatası: %s\n%s", err.Error(), strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("thumbnail ffmpeg boş çıktı üretti")
	}
	return png.Decode(&stdout)
}
