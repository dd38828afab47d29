package grpc

import (
	"context"
	"net"
	"time"

	"github.com/charmbracelet/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health-check service name clients may query in
// addition to the overall "" status.
const ServiceName = "loan.LoanService"

// Checker reports whether a dependency (the database) is reachable.
type Checker func(ctx context.Context) error

type Server struct {
	GRPC   *grpc.Server
	Health *health.Server
	Check  Checker
	Logger *log.Logger
}

func NewServer(check Checker, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		GRPC:   grpc.NewServer(),
		Health: health.NewServer(),
		Check:  check,
		Logger: logger.With("component", "grpc"),
	}
	healthpb.RegisterHealthServer(s.GRPC, s.Health)
	return s
}

// Refresh runs the checker and publishes the result for both the overall and
// the named service.
func (s *Server) Refresh(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if s.Check != nil {
		if err := s.Check(ctx); err != nil {
			s.Logger.Warn("health check failed", "err", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.Health.SetServingStatus("", status)
	s.Health.SetServingStatus(ServiceName, status)
	return status
}

// Watch refreshes the health status every interval until ctx is done.
func (s *Server) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		checkCtx, cancel := context.WithTimeout(ctx, interval/2)
		s.Refresh(checkCtx)
		cancel()

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Server) Serve(lis net.Listener) error {
	s.Logger.Info("gRPC server listening", "addr", lis.Addr().String())
	return s.GRPC.Serve(lis)
}

// Stop marks every service NOT_SERVING and drains in-flight calls.
func (s *Server) Stop() {
	s.Health.Shutdown()
	s.GRPC.GracefulStop()
}

// StartGRPCServer listens on port and serves health checks until the server
// is stopped.
func StartGRPCServer(port string, s *Server) error {
	lis, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return err
	}
	return s.Serve(lis)
}
