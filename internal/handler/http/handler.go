// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/netip"
	"time"

	"github.com/MKhiriev/dealer-auth/internal/config"
	"github.com/MKhiriev/dealer-auth/internal/logger"
	"github.com/MKhiriev/dealer-auth/internal/metrics"
	"github.com/MKhiriev/dealer-auth/internal/service"
	"github.com/MKhiriev/dealer-auth/internal/validators"
	"github.com/prometheus/client_golang/prometheus"
)

type Handler struct {
	services  *service.Services
	validator validators.Validator

	metrics  metrics.Recorder
	gatherer prometheus.Gatherer

	throttle       *clientThrottle
	trustedProxies []netip.Prefix
	corsOrigins    []string
	timeout        time.Duration

	now    func() time.Time
	logger *logger.Logger
}

// Option customizes a Handler.
type Option func(*Handler)

// WithMetrics makes the handler record request metrics to recorder and
// serve gatherer under /metrics. Nil arguments keep the defaults.
func WithMetrics(recorder metrics.Recorder, gatherer prometheus.Gatherer) Option {
	return func(h *Handler) {
		if recorder != nil {
			h.metrics = recorder
		}
		h.gatherer = gatherer
	}
}

// WithClock replaces the clock used for error timestamps and throttling.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

func NewHandler(services *service.Services, cfg config.Server, logger *logger.Logger, opts ...Option) *Handler {
	h := &Handler{
		services:       services,
		validator:      validators.NewAuthRequestValidator(),
		metrics:        metrics.Nop(),
		trustedProxies: parseTrustedProxies(cfg.TrustedProxies, logger),
		corsOrigins:    cfg.CORSAllowedOrigins,
		timeout:        cfg.RequestTimeout,
		now:            time.Now,
		logger:         logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	if cfg.APIRate > 0 {
		h.throttle = newClientThrottle(cfg.APIRate, cfg.APIBurst, h.now)
	}

	logger.Info().Msg("http handler created")
	return h
}

// PurgeIdleClients drops throttling state of clients idle for longer than
// idle and returns how many were removed.
func (h *Handler) PurgeIdleClients(idle time.Duration) int {
	if h.throttle == nil {
		return 0
	}
	return h.throttle.purge(idle)
}
