package evalservice

import (
	"context"
	"net"

	coreGrpc "github.com/msto63/spi/pkg/core/grpc"
	"github.com/msto63/spi/pkg/core/health"
	"github.com/msto63/spi/pkg/core/logging"
	"github.com/msto63/spi/pkg/core/version"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Config holds server configuration
type Config struct {
	Host             string
	Port             int
	EnableReflection bool
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		Host:             "127.0.0.1",
		Port:             9765,
		EnableReflection: true,
	}
}

// Server is the evaluator gRPC server
type Server struct {
	service   *Service
	grpc      *coreGrpc.Server
	health    *health.Registry
	healthSrv *grpchealth.Server
	logger    *logging.Logger
	config    Config
}

// New creates the evaluator server. A nil registry gets one with an engine
// self-check.
func New(cfg Config, opts Options, registry *health.Registry) *Server {
	svc := NewService(opts)

	grpcCfg := coreGrpc.DefaultServerConfig()
	grpcCfg.Host = cfg.Host
	grpcCfg.Port = cfg.Port
	grpcCfg.EnableReflection = cfg.EnableReflection
	grpcCfg.Logger = svc.logger

	grpcServer := coreGrpc.NewServer(grpcCfg)

	if registry == nil {
		registry = health.NewRegistry("spi-grpc", version.ComponentVersion("evaluator"))
		registry.Register(health.EngineCheck(svc.engine))
	}

	healthSrv := grpchealth.NewServer()

	RegisterEvaluatorServer(grpcServer.GRPCServer(), svc)
	healthpb.RegisterHealthServer(grpcServer.GRPCServer(), healthSrv)

	return &Server{
		service:   svc,
		grpc:      grpcServer,
		health:    registry,
		healthSrv: healthSrv,
		logger:    svc.logger,
		config:    cfg,
	}
}

// RefreshHealth runs the registry checks and publishes the result to the
// gRPC health service. Degraded components still count as serving.
func (s *Server) RefreshHealth(ctx context.Context) *health.Report {
	report := s.health.Check(ctx)

	servingStatus := healthpb.HealthCheckResponse_SERVING
	if report.Status == health.StatusUnhealthy {
		servingStatus = healthpb.HealthCheckResponse_NOT_SERVING
		s.logger.Warn("Evaluator unhealthy", "report", report.String())
	}
	s.healthSrv.SetServingStatus("", servingStatus)
	s.healthSrv.SetServingStatus(ServiceName, servingStatus)
	return report
}

// Start starts the server and blocks until it stops
func (s *Server) Start() error {
	s.logger.Info("Starting evaluator server", "host", s.config.Host, "port", s.config.Port)
	s.RefreshHealth(context.Background())
	return s.grpc.Start()
}

// Serve serves on an existing listener
func (s *Server) Serve(listener net.Listener) error {
	s.RefreshHealth(context.Background())
	return s.grpc.Serve(listener)
}

// Stop marks the service as not serving and stops the server
func (s *Server) Stop(ctx context.Context) {
	s.logger.Info("Stopping evaluator server")
	s.healthSrv.Shutdown()
	s.grpc.StopWithTimeout(ctx)
}

// Address returns the listen address
func (s *Server) Address() string {
	return s.grpc.Address()
}

// GRPCServer returns the underlying gRPC server
func (s *Server) GRPCServer() *grpc.Server {
	return s.grpc.GRPCServer()
}

// HealthRegistry returns the health check registry
func (s *Server) HealthRegistry() *health.Registry {
	return s.health
}
