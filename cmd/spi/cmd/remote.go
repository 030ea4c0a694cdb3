package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/msto63/spi/foundation/pascal"
	"github.com/msto63/spi/internal/evalservice"
	"github.com/msto63/spi/pkg/core/logging"
	"github.com/spf13/cobra"
)

var (
	remoteAddr    string
	remoteTimeout time.Duration
	remoteHealth  bool
)

var remoteCmd = &cobra.Command{
	Use:   "remote <mode> [source...]",
	Short: "Evaluates on a running gRPC server",
	Long: `Sends the source to the evaluator service started with "spi serve --grpc"
and prints the result like run and calc do. Without source arguments the
source is read from stdin.

Examples:
  spi remote calc '2 * (3 + 4)'
  spi remote program 'BEGIN x := 1 END.' --addr 10.0.0.5:9765
  spi remote --health`,
	Args: func(cmd *cobra.Command, args []string) error {
		if remoteHealth {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.MinimumNArgs(1)(cmd, args)
	},
	RunE: runRemote,
}

func init() {
	rootCmd.AddCommand(remoteCmd)
	remoteCmd.Flags().StringVar(&remoteAddr, "addr", "", "evaluator address (default from config)")
	remoteCmd.Flags().DurationVar(&remoteTimeout, "timeout", 10*time.Second, "request timeout")
	remoteCmd.Flags().BoolVar(&remoteHealth, "health", false, "only query the health service")
}

func runRemote(cmd *cobra.Command, args []string) error {
	e, err := setup(false)
	if err != nil {
		return err
	}
	defer e.Close()

	addr := remoteAddr
	if addr == "" {
		addr = e.config.GRPCAddress()
	}

	client, err := evalservice.Dial(addr, logging.Wrap(e.logger, "remote"), remoteTimeout)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), remoteTimeout)
	defer cancel()

	if remoteHealth {
		serving, err := client.Healthy(ctx)
		if err != nil {
			return err
		}
		status := "SERVING"
		if !serving {
			status = "NOT_SERVING"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", addr, status)
		return nil
	}

	mode, err := pascal.ParseMode(args[0])
	if err != nil {
		return err
	}
	source := strings.Join(args[1:], " ")
	if source == "" {
		if source, err = readInput("", nil); err != nil {
			return err
		}
	}

	resp, err := client.Evaluate(ctx, mode, source)
	if err != nil {
		return err
	}
	if evalErr := resp.Err(); evalErr != nil {
		return reportEvalError(source, evalErr)
	}
	return printValue(cmd.OutOrStdout(), &pascal.Result{
		Mode:     resp.Mode,
		Value:    resp.Value,
		Bindings: resp.Bindings,
	})
}
