package cmd

import (
	"fmt"
	"io"
	"strings"

	mdwerror "github.com/msto63/spi/foundation/core/error"
	"github.com/msto63/spi/foundation/pascal"
	"github.com/msto63/spi/internal/history"
	"github.com/spf13/cobra"
)

var (
	historyLimit  int
	historySource string
	historyMode   string
	historyFailed bool
	historyClear  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Lists recorded evaluations",
	Long: `Lists the newest evaluations recorded in the run journal. The journal
is for inspection only; bindings are never carried into later runs.

Examples:
  spi history --limit 5
  spi history --source repl --failed
  spi history show 3f2a...
  spi history --clear`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Shows one recorded evaluation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openHistory()
		if err != nil {
			return err
		}
		defer e.Close()

		entry, err := e.store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if outputFormat != "text" {
			return printValue(cmd.OutOrStdout(), entry)
		}
		writeEntryDetail(cmd.OutOrStdout(), entry)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "number of entries (default from config)")
	historyCmd.Flags().StringVar(&historySource, "source", "", "filter by source: cli, repl, ws or grpc")
	historyCmd.Flags().StringVar(&historyMode, "mode", "", "filter by mode: program or calc")
	historyCmd.Flags().BoolVar(&historyFailed, "failed", false, "only failed evaluations")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "delete all entries")
}

// openHistory opens the journal or fails when it is disabled
func openHistory() (*env, error) {
	e, err := setup(true)
	if err != nil {
		return nil, err
	}
	if e.store == nil {
		return nil, mdwerror.New("history is disabled").
			WithCode(mdwerror.CodeConfigError).
			WithDetail("path", e.config.History.Path)
	}
	return e, nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	e, err := openHistory()
	if err != nil {
		return err
	}
	defer e.Close()

	out := cmd.OutOrStdout()
	if historyClear {
		n, err := e.store.Clear(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Deleted %d entries\n", n)
		return nil
	}

	filter := history.Filter{
		Source:     history.Source(historySource),
		FailedOnly: historyFailed,
		Limit:      historyLimit,
	}
	if historyMode != "" {
		mode, err := pascal.ParseMode(historyMode)
		if err != nil {
			return err
		}
		filter.Mode = mode
	}
	if filter.Limit <= 0 {
		filter.Limit = e.config.History.ListLimit
	}

	entries, err := e.store.List(cmd.Context(), filter)
	if err != nil {
		return err
	}
	if outputFormat != "text" {
		return printValue(out, entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(out, "No entries")
		return nil
	}
	for _, entry := range entries {
		status := "ok "
		if !entry.OK {
			status = "ERR"
		}
		fmt.Fprintf(out, "%s  %s  %-4s  %-7s  %s  %s\n",
			entry.ID[:8],
			entry.Timestamp.Local().Format("2006-01-02 15:04:05"),
			entry.Source,
			entry.Mode,
			status,
			summarize(entry.Input, 48),
		)
	}
	return nil
}

func writeEntryDetail(w io.Writer, entry *history.Entry) {
	fmt.Fprintf(w, "ID:        %s\n", entry.ID)
	fmt.Fprintf(w, "Time:      %s\n", entry.Timestamp.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Source:    %s\n", entry.Source)
	fmt.Fprintf(w, "Mode:      %s\n", entry.Mode)
	if entry.OK {
		fmt.Fprintf(w, "Duration:  %s\n", entry.Duration)
	}
	fmt.Fprintln(w, "Input:")
	for _, line := range strings.Split(strings.TrimRight(entry.Input, "\n"), "\n") {
		fmt.Fprintf(w, "  %s\n", line)
	}

	if !entry.OK {
		fmt.Fprintf(w, "Error:     [%s] %s\n", entry.ErrorCode, entry.Error)
		return
	}
	res := pascal.Result{Mode: entry.Mode, Value: entry.Value, Bindings: entry.Bindings}
	fmt.Fprintln(w, "Result:")
	for _, line := range strings.Split(res.String(), "\n") {
		fmt.Fprintf(w, "  %s\n", line)
	}
}

// summarize flattens input onto one line and cuts it to max runes
func summarize(input string, max int) string {
	flat := strings.Join(strings.Fields(input), " ")
	runes := []rune(flat)
	if len(runes) <= max {
		return flat
	}
	return string(runes[:max-3]) + "..."
}
