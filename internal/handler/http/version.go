// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"

	"github.com/MKhiriev/dealer-auth/internal/app"
	"github.com/MKhiriev/dealer-auth/models"
)

func (h *Handler) getServerVersion(w http.ResponseWriter, r *http.Request) {
	serverVersion := h.services.AppInfoService.GetAppVersion(r.Context())

	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte(serverVersion))
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	writeOK(w, r, models.HealthResponse{
		Status:  app.MsgServiceHealthy,
		Service: h.services.AppInfoService.GetAppName(ctx),
		Version: h.services.AppInfoService.GetAppVersion(ctx),
	})
}
