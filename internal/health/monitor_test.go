package health

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type stubPinger struct {
	fail atomic.Bool
}

func (p *stubPinger) Ping(ctx context.Context) error {
	if p.fail.Load() {
		return errors.New("connection refused")
	}
	return nil
}

func TestMonitor_Check(t *testing.T) {
	pinger := &stubPinger{}
	m := NewMonitor(pinger, time.Second)
	ctx := context.Background()

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, m.Check(ctx))

	resp, err := m.Server().Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)

	pinger.fail.Store(true)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, m.Check(ctx))

	resp, err = m.Server().Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.Status)
}

func TestMonitor_RunStopsOnCancel(t *testing.T) {
	m := NewMonitor(&stubPinger{}, 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop")
	}

	resp, err := m.Server().Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.Status)
}

func TestMonitor_Serve(t *testing.T) {
	m := NewMonitor(&stubPinger{}, time.Second)
	m.Check(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	const addr = "127.0.0.1:50761"
	errCh := make(chan error, 1)
	go func() { errCh <- m.Serve(ctx, addr) }()

	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	client := healthpb.NewHealthClient(conn)

	var resp *healthpb.HealthCheckResponse
	require.Eventually(t, func() bool {
		callCtx, callCancel := context.WithTimeout(ctx, 200*time.Millisecond)
		defer callCancel()
		resp, err = client.Check(callCtx, &healthpb.HealthCheckRequest{Service: ServiceName})
		return err == nil
	}, 3*time.Second, 50*time.Millisecond)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
