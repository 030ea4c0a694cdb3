package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tokensExpr string

// tokenView is the yaml/json form of a token
type tokenView struct {
	Kind   string `json:"kind" yaml:"kind"`
	Lexeme string `json:"lexeme" yaml:"lexeme"`
	Offset int    `json:"offset" yaml:"offset"`
	Line   int    `json:"line" yaml:"line"`
	Column int    `json:"column" yaml:"column"`
}

var tokensCmd = &cobra.Command{
	Use:   "tokens [file]",
	Short: "Prints the token stream of the input",
	Long: `Prints the token stream of the input, one Token(KIND, lexeme) per
line, ending with EOF. On a lexical error the tokens read so far are
printed before the error.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := readInput(tokensExpr, args)
		if err != nil {
			return err
		}

		e, err := setup(false)
		if err != nil {
			return err
		}
		defer e.Close()

		tokens, lexErr := e.engine.Tokens(input)

		out := cmd.OutOrStdout()
		if outputFormat == "text" {
			for _, tok := range tokens {
				fmt.Fprintln(out, tok.String())
			}
		} else {
			views := make([]tokenView, len(tokens))
			for i, tok := range tokens {
				views[i] = tokenView{
					Kind:   tok.Kind.String(),
					Lexeme: tok.Lexeme,
					Offset: tok.Offset,
					Line:   tok.Line,
					Column: tok.Column,
				}
			}
			if err := printValue(out, views); err != nil {
				return err
			}
		}

		if lexErr != nil {
			return reportEvalError(input, lexErr)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokensCmd)
	tokensCmd.Flags().StringVarP(&tokensExpr, "expr", "e", "", "source text")
}
