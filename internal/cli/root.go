// Пакет cli — команды faultdesk (cobra).
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "faultdesk",
	Short: "FaultDesk - учёт заявок о неисправностях",
	Long: `FaultDesk - сервис учёта заявок о неисправностях оборудования.

Хранит заявки и вложения, ведёт историю статусов, выдаёт
аналитику для дашборда и экспорт в CSV/XLSX.

Запуск HTTP API:
  faultdesk serve --config config.yaml`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute запускает корневую команду.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"путь к YAML-файлу конфигурации (по умолчанию FD_CONFIG_PATH)")
}
