package delivery_grpc

import (
	"fmt"
	"log/slog"
	"net"

	grpc_middleware "github.com/grpc-ecosystem/go-grpc-middleware"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/recovery"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	ports "tweetbot-service/internal/domain/ports/output"
	"tweetbot-service/internal/infrastructure/inbound/grpc/middleware"
)

// PipelineService is the name the pipeline reports its health under.
const PipelineService = "tweetbot.Pipeline"

// Server exposes the standard grpc.health.v1 service.
type Server struct {
	health  *health.Server
	server  *grpc.Server
	address string
	port    int
	log     ports.Logger
	metrics ports.MetricsProvider
}

func NewServer(address string, port int, log ports.Logger, metrics ports.MetricsProvider) *Server {
	s := &Server{
		health:  health.NewServer(),
		address: address,
		port:    port,
		log:     log,
		metrics: metrics,
	}
	s.server = grpc.NewServer(
		grpc.UnaryInterceptor(grpc_middleware.ChainUnaryServer(
			middleware.UnaryLoggerInterceptor(log),
			middleware.UnaryMetricsInterceptor(metrics),
			grpc_recovery.UnaryServerInterceptor(),
		)),
	)
	healthpb.RegisterHealthServer(s.server, s.health)
	return s
}

func (s *Server) Run() error {
	address := fmt.Sprintf("%s:%d", s.address, s.port)
	lis, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to listen: %v", err)
	}
	s.log.Info("Starting gRPC server", slog.Int("port", s.port))
	return s.Serve(lis)
}

func (s *Server) Serve(lis net.Listener) error {
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(PipelineService, healthpb.HealthCheckResponse_SERVING)
	return s.server.Serve(lis)
}

// SetPipelineHealth lets the owner of the pipeline report that it can no
// longer publish, e.g. when its storage is gone.
func (s *Server) SetPipelineHealth(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(PipelineService, st)
}

// Shutdown flips every service to NOT_SERVING before draining connections.
func (s *Server) Shutdown() error {
	s.health.Shutdown()
	s.server.GracefulStop()
	return nil
}
