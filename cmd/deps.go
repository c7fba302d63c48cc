package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mlihgenel/slydetrim/internal/installer"
	"github.com/mlihgenel/slydetrim/internal/media"
	"github.com/mlihgenel/slydetrim/internal/ui"
)

var depsInstall bool

type depsPayload struct {
	Tools   []media.ExternalTool `json:"tools"`
	Missing []string             `json:"missing,omitempty"`
	Install string               `json:"install_command,omitempty"`
}

var depsCmd = &cobra.Command{
	Use:   "deps",
	Short: "FFmpeg/FFprobe kurulumunu kontrol et",
	Long: `Kırpma motorunun ve ffprobe'un bulunup bulunmadığını gösterir.
FFMPEG_PATH ve FFPROBE_PATH ortam değişkenleri arama sırasında önceliklidir.

Örnekler:
  slydetrim deps
  slydetrim deps --install`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tools := media.CheckDependencies(cmd.Context())
		missing := installer.MissingTools()
		plan := installer.GetInstallInfo()

		if isJSONOutput() {
			payload := depsPayload{Tools: tools, Missing: missing}
			if len(missing) > 0 && plan.Supported {
				payload.Install = plan.Description
			}
			return printJSON(payload)
		}

		rows := make([][]string, 0, len(tools))
		for _, t := range tools {
			status := ui.IconSuccess
			detail := t.Version
			if !t.Available {
				status = ui.IconError
				detail = "bulunamadı"
			}
			rows = append(rows, []string{t.Name, status, detail})
		}
		ui.PrintTable([]string{"Araç", "Durum", "Sürüm"}, rows)

		if len(missing) == 0 {
			ui.PrintSuccess("Tüm bağımlılıklar hazır.")
			return nil
		}

		if !depsInstall {
			if plan.Supported {
				ui.PrintInfo(fmt.Sprintf("Kurulum için: %s  (veya slydetrim deps --install)", plan.Description))
			} else {
				ui.PrintInfo(fmt.Sprintf("Manuel kurulum: %s", plan.ManualURL))
			}
			return fmt.Errorf("eksik bağımlılıklar: %v", missing)
		}

		command, err := installer.InstallFFmpeg(cmd.Context())
		if err != nil {
			return err
		}
		ui.PrintSuccess(fmt.Sprintf("Kuruldu: %s", command))
		return nil
	},
}

func init() {
	depsCmd.Flags().BoolVar(&depsInstall, "install", false, "Eksik araçları paket yöneticisiyle kur")
	rootCmd.AddCommand(depsCmd)
}
