package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/msto63/spi/foundation/pascal"
	"github.com/msto63/spi/internal/evalservice"
	"github.com/msto63/spi/internal/server"
	"github.com/msto63/spi/pkg/core/cache"
	"github.com/msto63/spi/pkg/core/health"
	"github.com/msto63/spi/pkg/core/logging"
	"github.com/msto63/spi/pkg/core/version"
	"github.com/spf13/cobra"
)

const healthRefreshInterval = 30 * time.Second

var (
	serveGRPC bool
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the WebSocket and gRPC endpoints",
	Long: `Starts the WebSocket endpoint (/ws, /healthz) and, with --grpc or
grpc.enabled in the config, the gRPC evaluator service.

Examples:
  spi serve                 # WebSocket on 127.0.0.1:8765
  spi serve --grpc          # plus gRPC on 127.0.0.1:9765
  spi serve --port 9000`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&serveGRPC, "grpc", false, "also start the gRPC evaluator service")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "WebSocket listen host (default from config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "WebSocket listen port (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	e, err := setup(true)
	if err != nil {
		return err
	}
	defer e.Close()

	cfg := e.config
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	if serveGRPC {
		cfg.GRPC.Enabled = true
	}

	var executor pascal.Executor = e.engine
	registry := health.NewRegistry("spi", version.Platform)
	if cfg.Cache.Enabled {
		results := cache.NewResultCache(e.engine, cache.Config{
			MaxItems: cfg.Cache.MaxItems,
			TTL:      cfg.Cache.TTL.Duration,
		}, logging.Wrap(e.logger, "result-cache"))
		defer results.Close()
		executor = results

		registry.RegisterFunc("cache", func(ctx context.Context) health.CheckResult {
			return health.CheckResult{
				Name:    "cache",
				Status:  health.StatusHealthy,
				Message: "result cache enabled",
				Details: results.Stats(),
			}
		})
	}
	registry.Register(health.EngineCheck(e.engine))
	var pinger health.Pinger
	if e.store != nil {
		pinger = e.store
	}
	registry.Register(health.PingCheck("history", pinger, "history disabled"))

	httpCfg := server.DefaultConfig()
	httpCfg.Host = cfg.Server.Host
	httpCfg.Port = cfg.Server.Port
	httpCfg.ReadTimeout = cfg.Server.ReadTimeout.Duration
	httpCfg.WriteTimeout = cfg.Server.WriteTimeout.Duration
	httpCfg.MaxInputLength = cfg.Interpreter.MaxInputLength

	httpSrv := server.New(httpCfg, server.Options{
		Engine:  executor,
		Journal: e.journal,
		Health:  registry,
		Logger:  logging.Wrap(e.logger, "spi-server"),
	})

	errCh := make(chan error, 2)
	go func() {
		errCh <- httpSrv.Start()
	}()
	fmt.Printf("  [+] WebSocket  ws://%s/ws\n", httpSrv.Address())

	var grpcSrv *evalservice.Server
	if cfg.GRPC.Enabled {
		grpcSrv = evalservice.New(evalservice.Config{
			Host:             cfg.GRPC.Host,
			Port:             cfg.GRPC.Port,
			EnableReflection: true,
		}, evalservice.Options{
			Engine:  executor,
			Journal: e.journal,
			Logger:  logging.Wrap(e.logger, "evalservice"),
		}, registry)

		go func() {
			errCh <- grpcSrv.Start()
		}()
		fmt.Printf("  [+] gRPC       %s (%s)\n", grpcSrv.Address(), evalservice.ServiceName)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	ticker := time.NewTicker(healthRefreshInterval)
	defer ticker.Stop()

	var runErr error
loop:
	for {
		select {
		case <-sigCh:
			e.logger.Info("Shutting down")
			break loop
		case err := <-errCh:
			if err != nil {
				runErr = err
				break loop
			}
		case <-ticker.C:
			if grpcSrv != nil {
				grpcSrv.RefreshHealth(cmd.Context())
			}
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if grpcSrv != nil {
		grpcSrv.Stop(ctx)
	}
	if err := httpSrv.Stop(ctx); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}
