package cmd

import (
	mdwlog "github.com/msto63/spi/foundation/core/log"
	"github.com/msto63/spi/foundation/pascal"
	"github.com/msto63/spi/internal/tui/repl"
	"github.com/msto63/spi/pkg/core/logging"
	"github.com/spf13/cobra"
)

var replMode string

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Starts the interactive shell",
	Long: `Starts the interactive terminal shell.

Every input runs in a fresh environment. In program mode lines are
collected until the program ends with ".".

Commands:
  :mode calc|program  switch the grammar
  :clear              clear the transcript
  :quit               leave the shell

Navigation:
  Up/Down   - input history
  Esc       - discard unfinished program
  Ctrl+L    - clear
  Ctrl+C    - quit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(true)
		if err != nil {
			return err
		}
		defer e.Close()

		modeName := e.config.Interpreter.DefaultMode
		if replMode != "" {
			modeName = replMode
		}
		mode, err := pascal.ParseMode(modeName)
		if err != nil {
			return err
		}

		// Log lines would draw over the alt screen
		logger, logFile, err := logging.Redirect(e.logger, e.config.REPL.LogFile)
		if err != nil {
			return err
		}
		defer logFile.Close()
		mdwlog.SetDefault(logger)

		return repl.Run(repl.Config{
			Engine: pascal.New(pascal.Options{
				Logger:         logger,
				MaxInputLength: e.config.Interpreter.MaxInputLength,
			}),
			Journal:    e.journal,
			Logger:     logging.Wrap(logger, "repl"),
			Mode:       mode,
			Prompt:     e.config.REPL.Prompt,
			CalcPrompt: e.config.REPL.CalcPrompt,
		})
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
	replCmd.Flags().StringVarP(&replMode, "mode", "m", "", "start mode: program or calc (default from config)")
}
