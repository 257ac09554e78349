package server

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-menu-service/pkg/logger"
	"github.com/fekuna/omnipos-menu-service/pkg/middleware"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the name reported to gRPC health probes.
const ServiceName = "menu.catalog"

// NewGRPCServer builds the ops gRPC server: the standard health service and
// reflection behind the logging interceptor.
func NewGRPCServer(log logger.ZapLogger) (*grpc.Server, *health.Server) {
	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(middleware.LoggingInterceptor(log)),
	)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	return grpcServer, healthServer
}

// WatchHealth keeps the gRPC health status in line with the dependency
// checks until ctx is done.
func WatchHealth(ctx context.Context, hs *health.Server, checks *HealthHandler, interval time.Duration, log logger.ZapLogger) {
	update := func() {
		ok, services := checks.Healthy(ctx)
		status := healthpb.HealthCheckResponse_SERVING
		if !ok {
			status = healthpb.HealthCheckResponse_NOT_SERVING
			log.Warn("dependency check failed", zap.Any("services", services))
		}
		hs.SetServingStatus("", status)
		hs.SetServingStatus(ServiceName, status)
	}

	update()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			hs.Shutdown()
			return
		case <-ticker.C:
			update()
		}
	}
}
