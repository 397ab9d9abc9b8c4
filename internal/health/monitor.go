// Package health exposes the standard gRPC health service, driven by
// periodic database pings.
package health

import (
	"context"
	"net"
	"time"

	"github.com/sbilibin2017/chat-forum/internal/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the name reported to health probes besides the overall "" entry.
const ServiceName = "chat-forum.auth"

// Pinger checks that a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor keeps a grpc health.Server in sync with the database state.
type Monitor struct {
	pinger   Pinger
	interval time.Duration
	server   *health.Server
}

func NewMonitor(pinger Pinger, interval time.Duration) *Monitor {
	return &Monitor{
		pinger:   pinger,
		interval: interval,
		server:   health.NewServer(),
	}
}

// Server returns the health service to register on a grpc.Server.
func (m *Monitor) Server() *health.Server {
	return m.server
}

// Check pings once and updates the reported status.
func (m *Monitor) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if err := m.pinger.Ping(ctx); err != nil {
		logger.Log.Warnw("health ping failed", "error", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}

	m.server.SetServingStatus("", status)
	m.server.SetServingStatus(ServiceName, status)
	return status
}

// Run checks every interval until ctx is done, then marks the service as
// not serving.
func (m *Monitor) Run(ctx context.Context) {
	m.Check(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.server.Shutdown()
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

// Serve runs a gRPC server with the health service on addr until ctx is done.
func (m *Monitor) Serve(ctx context.Context, addr string) error {
	listen, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, m.server)

	go func() {
		<-ctx.Done()
		logger.Log.Info("Stopping gRPC health server...")
		srv.GracefulStop()
	}()

	logger.Log.Infow("gRPC health server listening", "address", addr)
	return srv.Serve(listen)
}
