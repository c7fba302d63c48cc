package media

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// VideoFormats kırpılabilen konteyner formatları
var VideoFormats = []string{"mp4", "mov", "m4v", "mkv", "webm", "avi"}

// NormalizeFormat format adını standartlaştırır (.MP4 → mp4, quicktime → mov vb.)
func NormalizeFormat(format string) string {
	format = strings.ToLower(strings.TrimSpace(format))
	format = strings.TrimPrefix(format, ".")

	aliases := map[string]string{
		"quicktime": "mov",
		"qt":        "mov",
		"mpeg4":     "mp4",
		"matroska":  "mkv",
	}
	if alias, ok := aliases[format]; ok {
		return alias
	}
	return format
}

// IsVideoFormat formatın kırpılabilir video konteyneri olup olmadığını döner.
func IsVideoFormat(format string) bool {
	format = NormalizeFormat(format)
	for _, f := range VideoFormats {
		if f == format {
			return true
		}
	}
	return false
}

// HasFormatExtension dosya uzantısının verilen formatlardan biri olup olmadığını kontrol eder.
func HasFormatExtension(path string, formats ...string) bool {
	ext := NormalizeFormat(filepath.Ext(path))
	if ext == "" {
		return false
	}
	for _, f := range formats {
		if NormalizeFormat(f) == ext {
			return true
		}
	}
	return false
}

// DetectFormat dosya içeriğinden konteyner formatını algılar.
// İçerik okunamazsa veya tanınmazsa uzantıya düşer.
func DetectFormat(path string) string {
	ext := NormalizeFormat(filepath.Ext(path))

	f, err := os.Open(path)
	if err != nil {
		return ext
	}
	defer f.Close()

	head := make([]byte, 64)
	n, _ := io.ReadFull(f, head)
	if sniffed := SniffFormat(head[:n]); sniffed != "" {
		// mp4 ailesi ortak imzayı paylaşır; uzantı daha kesin ise onu koru.
		if sniffed == "mp4" && (ext == "m4v" || ext == "mov") {
			return ext
		}
		if sniffed == "mkv" && ext == "webm" {
			return ext
		}
		return sniffed
	}
	return ext
}

// SniffFormat ilk baytlardan konteyner imzasını tanır; bilinmiyorsa boş döner.
func SniffFormat(head []byte) string {
	switch {
	case len(head) >= 12 && bytes.Equal(head[4:8], []byte("ftyp")):
		brand := string(head[8:12])
		if brand == "qt  " {
			return "mov"
		}
		return "mp4"
	case len(head) >= 4 && bytes.Equal(head[:4], []byte{0x1a, 0x45, 0xdf, 0xa3}):
		if bytes.Contains(head, []byte("webm")) {
			return "webm"
		}
		return "mkv"
	case len(head) >= 12 && bytes.Equal(head[:4], []byte("RIFF")) && bytes.Equal(head[8:12], []byte("AVI ")):
		return "avi"
	}
	return ""
}
