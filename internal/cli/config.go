package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bigkaa/faultdesk/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Показать итоговую конфигурацию",
	Long: `Выводит конфигурацию в YAML после применения значений по умолчанию,
файла и переменных окружения FD_*. Конфигурация проверяется так же,
как при запуске serve.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		out, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("ошибка сериализации конфигурации: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
