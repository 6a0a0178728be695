package grpc

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	grpc_middleware "github.com/grpc-ecosystem/go-grpc-middleware"
	grpc_logging "github.com/grpc-ecosystem/go-grpc-middleware/logging/logrus"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/recovery"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"engagehub/internal/repository"
	"engagehub/pkg/logger"
	"engagehub/pkg/utils"
)

// ServiceName is the health-checked service reported alongside the
// overall server status
const ServiceName = "engagehub.v1.Engagement"

// DefaultCheckInterval is how often the store is pinged
const DefaultCheckInterval = 10 * time.Second

// Server represents the gRPC server
type Server struct {
	server   *grpc.Server
	addr     string
	store    repository.Store
	health   *health.Server
	interval time.Duration

	stopOnce sync.Once
	stop     chan struct{}
}

// NewServer creates a gRPC server exposing grpc.health.v1 and reflection.
// Serving status follows store reachability.
func NewServer(addr string, store repository.Store, interval time.Duration) *Server {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	grpcLogger := logrus.NewEntry(logger.Logrus()).WithField("protocol", "grpc")

	healthServer := health.NewServer()

	// Create gRPC server with middleware
	server := grpc.NewServer(
		grpc.UnaryInterceptor(grpc_middleware.ChainUnaryServer(
			grpc_logging.UnaryServerInterceptor(grpcLogger),
			grpc_recovery.UnaryServerInterceptor(),
		)),
		grpc.StreamInterceptor(grpc_middleware.ChainStreamServer(
			grpc_logging.StreamServerInterceptor(grpcLogger),
			grpc_recovery.StreamServerInterceptor(),
		)),
	)

	grpc_health_v1.RegisterHealthServer(server, healthServer)
	reflection.Register(server)

	return &Server{
		server:   server,
		addr:     addr,
		store:    store,
		health:   healthServer,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Start begins listening for gRPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.Serve(listener)
	return nil
}

// Serve accepts connections on lis in the background
func (s *Server) Serve(lis net.Listener) {
	s.checkStore(context.Background())
	go s.watchStore()

	go func() {
		logger.Infof("gRPC server listening on %s", lis.Addr())
		if err := s.server.Serve(lis); err != nil {
			logger.Errorf("gRPC server stopped: %v", err)
		}
	}()
}

// checkStore pings the store once and publishes the result
func (s *Server) checkStore(ctx context.Context) {
	ctx, cancel := utils.WithTimeout(ctx)
	defer cancel()

	status := grpc_health_v1.HealthCheckResponse_SERVING
	if err := s.store.Ping(ctx); err != nil {
		logger.Warnf("store ping failed: %v", err)
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

func (s *Server) watchStore() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.checkStore(context.Background())
		}
	}
}

// Stop gracefully shuts down the server
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		logger.Info("gRPC server stopping")
		close(s.stop)
		s.health.Shutdown()
		s.server.GracefulStop()
		logger.Info("gRPC server stopped")
	})
}

// WaitForShutdown blocks until ctx ends or Stop is called, stopping the
// server in the first case
func (s *Server) WaitForShutdown(ctx context.Context) {
	select {
	case <-ctx.Done():
		s.Stop()
	case <-s.stop:
	}
}
