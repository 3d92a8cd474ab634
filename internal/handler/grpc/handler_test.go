// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package grpc

import (
	"context"
	"net"
	"testing"

	"github.com/MKhiriev/dealer-auth/internal/logger"
	"github.com/MKhiriev/dealer-auth/internal/mock"
	"github.com/MKhiriev/dealer-auth/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

// startServer serves h over an in-memory listener and returns a health
// client connected to it.
func startServer(t *testing.T, h *Handler) healthpb.HealthClient {
	t.Helper()

	listener := bufconn.Listen(1 << 20)
	server := grpc.NewServer()
	h.Register(server)
	go server.Serve(listener)
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return healthpb.NewHealthClient(conn)
}

func TestHandler_HealthServing(t *testing.T) {
	ctrl := gomock.NewController(t)
	info := mock.NewMockAppInfoService(ctrl)
	info.EXPECT().GetAppName(gomock.Any()).Return("dealer-auth")

	h := NewHandler(&service.Services{AppInfoService: info}, logger.Nop())
	client := startServer(t, h)
	ctx := context.Background()

	for _, name := range []string{"", "dealer-auth"} {
		resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: name})
		require.NoError(t, err)
		assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus(), "service %q", name)
	}
}

func TestHandler_ShutdownReportsNotServing(t *testing.T) {
	h := NewHandler(nil, logger.Nop())
	client := startServer(t, h)

	h.Shutdown()

	resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())
}

func TestNewHandler_NilServices(t *testing.T) {
	h := NewHandler(nil, logger.Nop())

	require.NotNil(t, h)
	assert.Empty(t, h.serviceName())
}
