package cmd

import (
	"fmt"

	"github.com/msto63/spi/pkg/core/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Shows version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.Info()
		if outputFormat != "text" {
			return printValue(cmd.OutOrStdout(), info)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, info.String())
		for _, name := range []string{"language", "evaluator", "journal", "websocket"} {
			fmt.Fprintf(out, "  %-10s %s\n", name+":", version.ComponentVersion(name))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
