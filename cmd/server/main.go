// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/MKhiriev/dealer-auth/internal/config"
	"github.com/MKhiriev/dealer-auth/internal/crypto"
	"github.com/MKhiriev/dealer-auth/internal/handler"
	"github.com/MKhiriev/dealer-auth/internal/handler/http"
	"github.com/MKhiriev/dealer-auth/internal/limiter"
	"github.com/MKhiriev/dealer-auth/internal/logger"
	"github.com/MKhiriev/dealer-auth/internal/metrics"
	"github.com/MKhiriev/dealer-auth/internal/server"
	"github.com/MKhiriev/dealer-auth/internal/service"
	"github.com/MKhiriev/dealer-auth/internal/store"
	"github.com/MKhiriev/dealer-auth/internal/token"
	"github.com/MKhiriev/dealer-auth/internal/utils"
	"github.com/MKhiriev/dealer-auth/internal/workers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	cfg, err := config.GetStructuredConfig()
	if err != nil {
		logger.NewLogger("dealer-auth").Fatal().Err(err).Msg("error getting configs")
	}
	if buildVersion != "N/A" {
		cfg.App.Version = buildVersion
	}

	log := logger.NewLoggerWithLevel(cfg.App.Name, cfg.App.LogLevel, os.Stdout)
	log.Debug().Str("version", cfg.App.Version).Msg("received configs")

	if err = run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
}

func run(cfg *config.StructuredConfig, log *logger.Logger) error {
	storages, err := store.NewStorages(context.Background(), cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("error creating storages: %w", err)
	}
	defer storages.Close()

	now := time.Now
	codec, err := token.NewCodec(cfg.Auth.TokenSecret, cfg.Auth.TokenIssuer, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL, now)
	if err != nil {
		return fmt.Errorf("error creating token codec: %w", err)
	}

	security := service.Security{
		Codec:     codec,
		Limiter:   limiter.NewFixedWindow(cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow, now),
		Blacklist: limiter.NewBlacklist(now),
		Hasher:    crypto.NewBcryptHasher(cfg.Auth.BcryptCost),
		Tokens:    crypto.NewTokenGenerator(),
		IDs:       utils.NewUUIDGenerator(),
		Now:       now,
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewCollector(registry)

	services, err := service.NewServices(storages, security, *cfg, recorder, log)
	if err != nil {
		return fmt.Errorf("error creating services: %w", err)
	}

	handlers, err := handler.NewHandlers(services, cfg.Server, log, http.WithMetrics(recorder, registry))
	if err != nil {
		return fmt.Errorf("error creating handlers: %w", err)
	}

	purgers := []workers.NamedPurger{
		{Kind: workers.KindBlacklist, Purger: security.Blacklist},
		{Kind: workers.KindLoginWindows, Purger: security.Limiter},
	}
	if handlers.HTTP != nil {
		purgeClients := workers.PurgerFunc(func() int {
			return handlers.HTTP.PurgeIdleClients(cfg.Workers.ClientIdleTimeout)
		})
		purgers = append(purgers, workers.NamedPurger{Kind: workers.KindAPIClients, Purger: purgeClients})
	}
	cleanup := workers.NewCleanupWorker(storages, cfg.Workers.CleanupInterval, now, recorder, log, purgers...)

	srv, err := server.NewServer(handlers, workers.NewWorkers(cleanup), cfg.Server, log)
	if err != nil {
		return fmt.Errorf("error creating server: %w", err)
	}

	srv.RunServer()
	return nil
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
