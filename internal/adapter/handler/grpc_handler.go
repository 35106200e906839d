package handler

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

// ServiceName is the health-check service name reported alongside the
// server-wide ("") status.
const ServiceName = "stockroom"

type GRPCHandler struct {
	server *grpc.Server
	health *health.Server
}

func NewGRPCHandler(logger *zap.Logger) *GRPCHandler {
	server := grpc.NewServer(grpc.ChainUnaryInterceptor(unaryLogger(logger)))

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)
	reflection.Register(server)

	return &GRPCHandler{server: server, health: healthServer}
}

func (h *GRPCHandler) Server() *grpc.Server {
	return h.server
}

// SetServing flips both the server-wide and the named service status.
func (h *GRPCHandler) SetServing(serving bool) {
	st := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if serving {
		st = grpc_health_v1.HealthCheckResponse_SERVING
	}
	h.health.SetServingStatus("", st)
	h.health.SetServingStatus(ServiceName, st)
}

// Shutdown marks every service NOT_SERVING and drains in-flight calls.
func (h *GRPCHandler) Shutdown() {
	h.health.Shutdown()
	h.server.GracefulStop()
}

func unaryLogger(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Debug("grpc request",
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("latency", time.Since(start)),
		)
		return resp, err
	}
}
