package grpc

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/rooznegar/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type countingProbe struct{ calls int }

func (p *countingProbe) PingContext(context.Context) error {
	p.calls++
	return nil
}

func TestRefreshInterceptor_OnlyOnCheck(t *testing.T) {
	probe := &countingProbe{}
	s := NewHealthServer(":0", logging.NewNop(), probe)

	h := func(ctx context.Context, req any) (any, error) { return "ok", nil }

	resp, err := s.refreshInterceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/pkg.Service/Other"}, h)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
	assert.Equal(t, 0, probe.calls)

	_, err = s.refreshInterceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: healthpb.Health_Check_FullMethodName}, h)
	require.NoError(t, err)
	assert.Equal(t, 1, probe.calls)
}

func TestLoggingInterceptor_PassesThrough(t *testing.T) {
	s := NewHealthServer(":0", logging.NewNop(), nil)
	boom := errors.New("boom")

	_, err := s.loggingInterceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/x/y"},
		func(ctx context.Context, req any) (any, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
}
