// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"github.com/MKhiriev/dealer-auth/internal/metrics"
	"github.com/MKhiriev/dealer-auth/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const compressionLevel = 5

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(h.withRealIP)
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)
	router.Use(h.withCORS)
	router.Use(middleware.Compress(compressionLevel, "application/json"))
	if h.timeout > 0 {
		router.Use(middleware.Timeout(h.timeout))
	}

	// probes are never throttled
	router.Get("/health", h.health)
	if h.gatherer != nil {
		router.Handle("/metrics", metrics.Handler(h.gatherer))
	}

	router.Group(func(r chi.Router) {
		r.Use(h.withThrottle)

		r.Get("/api/version", h.getServerVersion)

		r.Route("/api/v1/auth", func(r chi.Router) {
			// routes without authorization
			r.Post("/register", h.register)
			r.Post("/login", h.login)
			r.Post("/refresh", h.refresh)
			r.Post("/logout", h.logout)
			r.Get("/verify", h.verify)
			r.Post("/verify-email", h.verifyEmail)
			r.Get("/verify-email", h.verifyEmail)
			r.Post("/forgot-password", h.forgotPassword)
			r.Post("/reset-password", h.resetPassword)

			// routes with authorization
			r.Group(func(r chi.Router) {
				r.Use(h.auth)

				r.Post("/logout-all", h.logoutAll)
				r.Post("/change-password", h.changePassword)
				r.Post("/send-verification", h.sendVerification)

				r.Get("/profile", h.profile)
				r.Put("/profile", h.updateProfile)

				r.Get("/sessions", h.listSessions)
				r.Delete("/sessions/{id}", h.revokeSession)

				r.Group(func(r chi.Router) {
					r.Use(h.requireRole(models.RoleAdmin))

					r.Post("/promote-to-admin", h.promoteToAdmin)

					r.Route("/users", func(r chi.Router) {
						r.Get("/", h.listUsers)
						r.Get("/{id}", h.getUser)
						r.Put("/{id}", h.updateUser)
						r.Delete("/{id}", h.deleteUser)
						r.Put("/{id}/role", h.setRole)
						r.Put("/{id}/status", h.setStatus)
					})
				})
			})
		})
	})

	router.NotFound(h.notFound)
	router.MethodNotAllowed(h.methodNotAllowed(router))

	return router
}
