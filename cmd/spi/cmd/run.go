package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/msto63/spi/foundation/pascal"
	"github.com/msto63/spi/internal/history"
	"github.com/spf13/cobra"
)

var runExpr string

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Runs a program and prints its variables",
	Long: `Runs a BEGIN ... END. program and prints the final variables sorted
by name, one "name = value" per line.

The program is read from -e, from the given file or from stdin.

Examples:
  spi run -e 'BEGIN a := 2; b := a * 3 END.'
  spi run examples/sum.pas
  echo 'BEGIN x := 7 / 2 END.' | spi run -o json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := readInput(runExpr, args)
		if err != nil {
			return err
		}
		return evaluate(cmd, pascal.ModeProgram, input)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runExpr, "expr", "e", "", "program text")
}

// evaluate executes input once, journals it and prints the result
func evaluate(cmd *cobra.Command, mode pascal.Mode, input string) error {
	e, err := setup(true)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = pascal.ContextWithRunID(ctx, uuid.NewString())

	res, err := e.engine.Execute(ctx, mode, input)
	if e.journal != nil {
		entry := history.NewEntry(history.SourceCLI, mode, input, res, err)
		if jerr := e.journal.Record(context.WithoutCancel(ctx), entry); jerr != nil {
			e.logger.WarnWithErr("Failed to journal evaluation", jerr)
		}
	}
	if err != nil {
		return reportEvalError(input, err)
	}
	return printValue(cmd.OutOrStdout(), res)
}
