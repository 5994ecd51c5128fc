// Package grpc exposes the standard grpc.health.v1 service so orchestrators
// can probe the journal server.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/rooznegar/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name reported for the journal API.
const ServiceName = "rooznegar.Journal"

// StorageProbe reports whether the backing store is reachable.
type StorageProbe interface {
	PingContext(ctx context.Context) error
}

type HealthServer struct {
	address string
	logger  logging.Logger
	health  *health.Server
	probe   StorageProbe
}

func NewHealthServer(a string, l logging.Logger, probe StorageProbe) *HealthServer {
	return &HealthServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		health:  health.NewServer(),
		probe:   probe,
	}
}

// Refresh sets the serving status from the storage probe.
func (s *HealthServer) Refresh(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if s.probe != nil {
		if err := s.probe.PingContext(ctx); err != nil {
			s.logger.Warn(ctx, "storage unreachable", "error", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
	return status
}

func (s *HealthServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.refreshInterceptor, s.loggingInterceptor))
	healthpb.RegisterHealthServer(srv, s.health)
	s.Refresh(ctx)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
