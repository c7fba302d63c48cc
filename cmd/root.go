package cmd

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mlihgenel/slydetrim/internal/config"
	"github.com/mlihgenel/slydetrim/internal/logging"
	"github.com/mlihgenel/slydetrim/internal/ui"
)

var (
	verbose      bool
	outputDir    string
	workers      int
	logLevel     string
	outputFormat string

	activeProjectConfig     *config.ProjectConfig
	activeProjectConfigPath string

	appVersion = "dev"
	appDate    = ""
)

// SetVersionInfo build-time version bilgisini ayarlar
func SetVersionInfo(version, date string) {
	if strings.TrimSpace(version) != "" {
		appVersion = version
	}
	appDate = strings.TrimSpace(date)
	if appDate == "" || appDate == "unknown" {
		appDate = time.Now().Format("2006-01-02 15:04:05")
	}
	rootCmd.Version = appVersion
	rootCmd.SetVersionTemplate(versionTemplate())
}

func versionTemplate() string {
	return fmt.Sprintf(
		"Slydes Trim v%s\nTarih:  %s\nGo:     %s\nOS:     %s/%s\n",
		appVersion, appDate, runtime.Version(), runtime.GOOS, runtime.GOARCH,
	)
}

var rootCmd = &cobra.Command{
	Use:   "slydetrim",
	Short: "Slydes Trim - sunum videoları için kırpma aracı",
	Long: `Slydes Trim: slayt arka planları ve kapak medyası için videoları kırpın.

Kırpma yeniden kodlama yapmadan (stream copy) gömülü FFmpeg motoruyla yapılır;
konteyner formatı korunur. Seçim süresi politika ile sınırlanabilir
(frame: 10s, hero: 30s, free: sınırsız).

Örnekler:
  slydetrim edit klip.mp4 --policy frame
  slydetrim trim klip.mp4 --start 00:05 --end 00:12
  slydetrim trim s3://bucket/sunum/kapak.mov --policy hero
  slydetrim thumbs klip.mp4 --pdf kareler.pdf
  slydetrim batch ./videolar --policy frame --report md
  slydetrim watch ./gelen --policy hero
  slydetrim info klip.mp4
  slydetrim policies
  slydetrim deps`,
	Version: appVersion,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadActiveProjectConfig(); err != nil {
			return err
		}
		if err := applyRootDefaults(cmd); err != nil {
			return err
		}
		if NormalizeOutputFormat(outputFormat) == "" {
			return outputFormatError(outputFormat)
		}
		logging.Init(logLevel, verbose)
		if activeProjectConfigPath != "" {
			logger := logging.WithComponent("config")
			logger.Debug().Str("path", activeProjectConfigPath).Msg("project config loaded")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ui.PrintBanner(appVersion)
		return cmd.Help()
	},
}

// Execute CLI'ı çalıştırır
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Hata: %s\n", err.Error())
		return err
	}
	return nil
}

func loadActiveProjectConfig() error {
	wd, err := os.Getwd()
	if err != nil {
		return nil
	}
	cfg, path, err := config.LoadProjectConfig(wd)
	if err != nil {
		return fmt.Errorf("proje yapılandırması okunamadı: %w", err)
	}
	activeProjectConfig = cfg
	activeProjectConfigPath = path
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Detaylı çıktı modu (debug log)")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", "", "Çıktı dizini (varsayılan: kaynak dizin)")
	rootCmd.PersistentFlags().IntVarP(&workers, "workers", "w", runtime.NumCPU(), "Paralel worker sayısı (batch/watch)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log seviyesi: debug, info, warn, error, off")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "output-format", OutputFormatText, "Çıktı biçimi: text, json")

	SetVersionInfo(appVersion, appDate)

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		fmt.Fprintf(os.Stderr, "Hata: %s\n\n", err.Error())
		cmd.Usage()
		return err
	})
}
