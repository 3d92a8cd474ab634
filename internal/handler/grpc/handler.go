// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package grpc exposes the auth service over gRPC. Today that is the
// standard health checking service, reporting the process and the named
// auth service as serving until shutdown.
package grpc

import (
	"context"

	"github.com/MKhiriev/dealer-auth/internal/logger"
	"github.com/MKhiriev/dealer-auth/internal/service"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Handler is the root gRPC transport handler.
type Handler struct {
	services *service.Services
	health   *health.Server

	logger *logger.Logger
}

// NewHandler constructs a [Handler]. services may be nil, in which case
// only the overall server health is reported.
func NewHandler(services *service.Services, logger *logger.Logger) *Handler {
	logger.Debug().Msg("gRPC handler created")
	return &Handler{
		services: services,
		health:   health.NewServer(),
		logger:   logger,
	}
}

// Register mounts the handler's services on server and marks them serving.
func (h *Handler) Register(server *grpc.Server) {
	healthpb.RegisterHealthServer(server, h.health)

	h.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	if name := h.serviceName(); name != "" {
		h.health.SetServingStatus(name, healthpb.HealthCheckResponse_SERVING)
		h.logger.Info().Str("service", name).Msg("gRPC health service registered")
	}
}

// Shutdown reports every service as not serving. Health watchers are
// notified before the server stops.
func (h *Handler) Shutdown() {
	h.health.Shutdown()
}

func (h *Handler) serviceName() string {
	if h.services == nil || h.services.AppInfoService == nil {
		return ""
	}
	return h.services.AppInfoService.GetAppName(context.Background())
}
