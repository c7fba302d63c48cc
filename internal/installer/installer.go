package installer

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/mlihgenel/slydetrim/internal/media"
)

// FFmpegManualURL otomatik kurulum yapılamadığında gösterilen adres
const FFmpegManualURL = "https://ffmpeg.org/download.html"

// InstallInfo kurulum bilgisini tutar
type InstallInfo struct {
	ToolName       string
	PackageManager string
	Command        string
	Args           []string
	Description    string
	ManualURL      string
	Supported      bool // Otomatik kurulum destekleniyor mu
}

// ffmpeg paketi ffprobe'u da içerir; tek kurulum yeterli.
var ffmpegCommands = map[string][]string{
	"brew":   {"brew", "install", "ffmpeg"},
	"apt":    {"sudo", "apt", "install", "-y", "ffmpeg"},
	"dnf":    {"sudo", "dnf", "install", "-y", "ffmpeg"},
	"yum":    {"sudo", "yum", "install", "-y", "ffmpeg"},
	"pacman": {"sudo", "pacman", "-S", "--noconfirm", "ffmpeg"},
	"choco":  {"choco", "install", "ffmpeg", "-y"},
	"winget": {"winget", "install", "Gyan.FFmpeg"},
}

var managersByOS = map[string][]string{
	"darwin":  {"brew"},
	"linux":   {"apt", "dnf", "yum", "pacman"},
	"windows": {"choco", "winget"},
}

// DetectPackageManager mevcut paket yöneticisini tespit eder
func DetectPackageManager() string {
	for _, pm := range managersByOS[runtime.GOOS] {
		if _, err := exec.LookPath(pm); err == nil {
			return pm
		}
	}
	return ""
}

// GetInstallInfo bulunan paket yöneticisi için FFmpeg kurulum bilgisini döner
func GetInstallInfo() InstallInfo {
	return installInfoFor(DetectPackageManager())
}

func installInfoFor(pm string) InstallInfo {
	info := InstallInfo{
		ToolName:       "FFmpeg",
		PackageManager: pm,
		ManualURL:      FFmpegManualURL,
	}
	argv, ok := ffmpegCommands[pm]
	if !ok {
		return info
	}
	info.Command = argv[0]
	info.Args = append([]string(nil), argv[1:]...)
	info.Description = strings.Join(argv, " ")
	info.Supported = true
	return info
}

// InstallFFmpeg FFmpeg'i paket yöneticisiyle kurar ve çalıştırılan komutu döner.
func InstallFFmpeg(ctx context.Context) (string, error) {
	info := GetInstallInfo()

	if !info.Supported {
		return "", fmt.Errorf(
			"%s otomatik olarak kurulamıyor.\nManuel kurulum: %s",
			info.ToolName, info.ManualURL,
		)
	}

	cmd := exec.CommandContext(ctx, info.Command, info.Args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s kurulumu başarısız: %w", info.ToolName, err)
	}

	return info.Description, nil
}

// MissingTools bulunamayan dış araçların adlarını döner
func MissingTools() []string {
	var missing []string
	if _, err := media.FindFFmpeg(); err != nil {
		missing = append(missing, "ffmpeg")
	}
	if _, err := media.FindFFprobe(); err != nil {
		missing = append(missing, "ffprobe")
	}
	return missing
}
