package cmd

import (
	"strings"

	"github.com/msto63/spi/foundation/pascal"
	"github.com/spf13/cobra"
)

var calcExpr string

var calcCmd = &cobra.Command{
	Use:   "calc [expression...]",
	Short: "Evaluates an integer expression",
	Long: `Evaluates a single integer expression and prints its value.
Arguments are joined with spaces; without arguments the expression is
read from -e or stdin.

Examples:
  spi calc '7 + 3 * (10 / (12 / (3 + 1) - 1))'
  spi calc -- -7 / 2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		input := strings.Join(args, " ")
		if input == "" {
			var err error
			if input, err = readInput(calcExpr, nil); err != nil {
				return err
			}
		}
		return evaluate(cmd, pascal.ModeCalc, input)
	},
}

func init() {
	rootCmd.AddCommand(calcCmd)
	calcCmd.Flags().StringVarP(&calcExpr, "expr", "e", "", "expression text")
}
