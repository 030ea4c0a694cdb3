package cmd

import (
	"fmt"

	mdwerror "github.com/msto63/spi/foundation/core/error"
	"github.com/msto63/spi/foundation/pascal"
	mdwast "github.com/msto63/spi/foundation/pascal/ast"
	"github.com/spf13/cobra"
)

var (
	astExpr      string
	astMode      string
	astFormat    string
	astPositions bool
)

var astCmd = &cobra.Command{
	Use:   "ast [file]",
	Short: "Parses the input and prints the syntax tree",
	Long: `Parses the input without evaluating it and prints the syntax tree
as YAML, or as canonical source with --format source.

Examples:
  spi ast -e 'BEGIN x := -(1 + 2) END.'
  spi ast --mode calc --format source -e '1+2*3'`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := pascal.ParseMode(astMode)
		if err != nil {
			return err
		}
		input, err := readInput(astExpr, args)
		if err != nil {
			return err
		}

		e, err := setup(false)
		if err != nil {
			return err
		}
		defer e.Close()

		tree, err := e.engine.Parse(cmd.Context(), mode, input)
		if err != nil {
			return reportEvalError(input, err)
		}

		out := cmd.OutOrStdout()
		switch astFormat {
		case "source":
			if program, ok := tree.(*mdwast.Compound); ok {
				_, err = fmt.Fprintln(out, mdwast.FormatProgram(program))
			} else {
				_, err = fmt.Fprintln(out, tree.String())
			}
			return err
		case "yaml":
			data, err := mdwast.Dump(tree, mdwast.DumpOptions{Positions: astPositions})
			if err != nil {
				return err
			}
			_, err = out.Write(data)
			return err
		default:
			return mdwerror.Newf("unknown ast format %q", astFormat).
				WithCode(mdwerror.CodeInvalidInput).
				WithDetail("valid", []string{"yaml", "source"})
		}
	},
}

func init() {
	rootCmd.AddCommand(astCmd)
	astCmd.Flags().StringVarP(&astExpr, "expr", "e", "", "source text")
	astCmd.Flags().StringVarP(&astMode, "mode", "m", string(pascal.ModeProgram), "grammar: program or calc")
	astCmd.Flags().StringVarP(&astFormat, "format", "f", "yaml", "tree format: yaml or source")
	astCmd.Flags().BoolVar(&astPositions, "positions", false, "add line:column to every node")
}
