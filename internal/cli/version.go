package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/bigkaa/faultdesk/internal/config"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Показать версию",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "faultdesk %s (%s)\n", config.Version, runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
