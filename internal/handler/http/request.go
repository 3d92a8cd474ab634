// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/MKhiriev/dealer-auth/internal/logger"
	"github.com/MKhiriev/dealer-auth/internal/utils"
	"github.com/MKhiriev/dealer-auth/models"
)

// decodeJSON decodes the request body into dst. The error wraps
// [ErrInvalidJSON].
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}
	return nil
}

// decodeAndValidate decodes the body into dst and runs the request
// validator on the decoded value.
func decodeAndValidate[T any](h *Handler, r *http.Request, dst *T) error {
	if err := decodeJSON(r, dst); err != nil {
		return err
	}
	return h.validator.Validate(r.Context(), *dst)
}

// clientInfo describes the caller's client for session bookkeeping.
func clientInfo(r *http.Request) models.ClientInfo {
	return models.ClientInfo{
		IPAddress:  utils.ClientIP(r),
		UserAgent:  r.UserAgent(),
		DeviceInfo: r.Header.Get("X-Device-Info"),
	}
}

// writeOK writes data with 200 OK, logging a failed write.
func writeOK(w http.ResponseWriter, r *http.Request, data any) {
	if _, err := utils.WriteJSON(w, data, http.StatusOK); err != nil {
		logger.FromRequest(r).Err(err).Msg("error writing response")
	}
}

func writeMessage(w http.ResponseWriter, r *http.Request, message string) {
	writeOK(w, r, models.MessageResponse{Message: message})
}
