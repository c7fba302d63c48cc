package media

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Info bir video dosyası hakkındaki bilgileri tutar
type Info struct {
	Path       string  `json:"path"`
	FileName   string  `json:"file_name"`
	Format     string  `json:"format"`
	Size       int64   `json:"size_bytes"`
	SizeText   string  `json:"size_text"`
	Duration   float64 `json:"duration_seconds"`
	VideoCodec string  `json:"video_codec,omitempty"`
	AudioCodec string  `json:"audio_codec,omitempty"`
	Width      int     `json:"width,omitempty"`
	Height     int     `json:"height,omitempty"`
	FPS        float64 `json:"fps,omitempty"`
	Bitrate    int64   `json:"bitrate,omitempty"`
}

// Resolution "1920x1080" biçiminde çözünürlük döner.
func (i Info) Resolution() string {
	if i.Width <= 0 || i.Height <= 0 {
		return ""
	}
	return fmt.Sprintf("%dx%d", i.Width, i.Height)
}

// ffprobeResult ffprobe JSON çıktısının ilgili alanları
type ffprobeResult struct {
	Format struct {
		Duration string `json:"duration"`
		BitRate  string `json:"bit_rate"`
	} `json:"format"`
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		Width      int    `json:"width,omitempty"`
		Height     int    `json:"height,omitempty"`
		RFrameRate string `json:"r_frame_rate,omitempty"`
		Duration   string `json:"duration,omitempty"`
	} `json:"streams"`
}

// Probe ffprobe ile dosyanın süre ve akış bilgilerini okur.
func Probe(ctx context.Context, path string) (Info, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return Info{}, fmt.Errorf("dosya bulunamadı: %w", err)
	}

	ffprobe, err := FindFFprobe()
	if err != nil {
		return Info{}, err
	}

	cmd := exec.CommandContext(ctx, ffprobe,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	output, err := cmd.Output()
	if err != nil {
		return Info{}, fmt.Errorf("ffprobe çalıştırılamadı: %w", err)
	}

	info, err := parseProbeOutput(output)
	if err != nil {
		return Info{}, err
	}
	info.Path = path
	info.FileName = filepath.Base(path)
	info.Format = DetectFormat(path)
	info.Size = stat.Size()
	info.SizeText = FormatSize(stat.Size())
	return info, nil
}

// ProbeDuration yalnızca süreyi döner.
func ProbeDuration(ctx context.Context, path string) (float64, error) {
	info, err := Probe(ctx, path)
	if err != nil {
		return 0, err
	}
	return info.Duration, nil
}

func parseProbeOutput(output []byte) (Info, error) {
	var result ffprobeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return Info{}, fmt.Errorf("ffprobe çıktısı okunamadı: %w", err)
	}

	var info Info
	if result.Format.Duration != "" {
		if dur, err := strconv.ParseFloat(strings.TrimSpace(result.Format.Duration), 64); err == nil {
			info.Duration = dur
		}
	}
	if result.Format.BitRate != "" {
		if br, err := strconv.ParseInt(result.Format.BitRate, 10, 64); err == nil {
			info.Bitrate = br
		}
	}

	for _, s := range result.Streams {
		switch s.CodecType {
		case "video":
			if info.VideoCodec != "" {
				continue
			}
			info.VideoCodec = s.CodecName
			info.Width = s.Width
			info.Height = s.Height
			if s.RFrameRate != "" {
				info.FPS = parseFrameRate(s.RFrameRate)
			}
			// Bazı konteynerlerde format süresi yoktur.
			if info.Duration <= 0 && s.Duration != "" {
				if dur, err := strconv.ParseFloat(s.Duration, 64); err == nil {
					info.Duration = dur
				}
			}
		case "audio":
			if info.AudioCodec == "" {
				info.AudioCodec = s.CodecName
			}
		}
	}

	if info.Duration <= 0 {
		return info, fmt.Errorf("video süresi okunamadı")
	}
	return info, nil
}

// parseFrameRate "30000/1001" gibi kare oranlarını float'a çevirir
func parseFrameRate(rate string) float64 {
	parts := strings.SplitN(rate, "/", 2)
	if len(parts) == 2 {
		num, err1 := strconv.ParseFloat(parts[0], 64)
		den, err2 := strconv.ParseFloat(parts[1], 64)
		if err1 == nil && err2 == nil && den != 0 {
			return num / den
		}
	}
	if f, err := strconv.ParseFloat(rate, 64); err == nil {
		return f
	}
	return 0
}
