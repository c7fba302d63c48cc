package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mlihgenel/slydetrim/internal/policy"
	"github.com/mlihgenel/slydetrim/internal/ui"
)

type policyRow struct {
	Name        string  `json:"name"`
	MaxDuration float64 `json:"max_duration_seconds"`
	Description string  `json:"description"`
	Custom      bool    `json:"custom"`
}

var policiesCmd = &cobra.Command{
	Use:   "policies",
	Short: "Süre politikalarını listele",
	Long: `Kırpma seçiminin en uzun süresini belirleyen politikaları listeler.
Proje yapılandırmasındaki (.slydetrim.yaml) "policies" alanı built-in
sınırları değiştirebilir veya yeni politika ekleyebilir.

Örnekler:
  slydetrim policies
  slydetrim policies --output-format json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, err := policyRows()
		if err != nil {
			return err
		}
		if isJSONOutput() {
			return printJSON(rows)
		}

		table := make([][]string, 0, len(rows))
		for _, r := range rows {
			limit := "sinirsiz"
			if r.MaxDuration > 0 {
				limit = formatTimecode(r.MaxDuration)
			}
			name := r.Name
			if r.Custom {
				name += " *"
			}
			table = append(table, []string{name, limit, r.Description})
		}
		ui.PrintTable([]string{"Politika", "En uzun", "Açıklama"}, table)
		if activeProjectConfigPath != "" {
			ui.PrintInfo(fmt.Sprintf("Proje yapılandırması: %s", activeProjectConfigPath))
		}
		return nil
	},
}

func policyRows() ([]policyRow, error) {
	overrides := projectPolicies()
	var rows []policyRow
	for _, name := range policy.Names(overrides) {
		def, err := resolvePolicy(name)
		if err != nil {
			return nil, err
		}
		rows = append(rows, policyRow{
			Name:        def.Name,
			MaxDuration: def.MaxDuration,
			Description: def.Description,
			Custom:      def.Custom,
		})
	}
	return rows, nil
}

func init() {
	rootCmd.AddCommand(policiesCmd)
}
