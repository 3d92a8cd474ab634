// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/dealer-auth/internal/logger"
	"github.com/MKhiriev/dealer-auth/internal/service"
	"github.com/MKhiriev/dealer-auth/internal/utils"
	"github.com/MKhiriev/dealer-auth/internal/validators"
	"github.com/MKhiriev/dealer-auth/models"
)

const (
	msgValidationFailed = "Validation failed"
	msgInternalError    = "An unexpected error occurred"
)

var errorStatusMap = map[error]int{
	service.ErrInvalidDataProvided:      http.StatusBadRequest,
	service.ErrWeakPassword:             http.StatusBadRequest,
	service.ErrDuplicateEmail:           http.StatusBadRequest,
	service.ErrDuplicateUsername:        http.StatusBadRequest,
	service.ErrInvalidOrUsedToken:       http.StatusBadRequest,
	service.ErrInvalidVerificationToken: http.StatusBadRequest,
	service.ErrTokenAlreadyUsed:         http.StatusBadRequest,
	service.ErrVersionIsNotSpecified:    http.StatusBadRequest,
	ErrInvalidJSON:                      http.StatusBadRequest,

	service.ErrInvalidCredentials: http.StatusUnauthorized,
	service.ErrInvalidToken:       http.StatusUnauthorized,
	service.ErrTokenExpired:       http.StatusUnauthorized,
	ErrEmptyAuthorizationHeader:   http.StatusUnauthorized,
	ErrInvalidAuthorizationHeader: http.StatusUnauthorized,
	ErrNoCaller:                   http.StatusUnauthorized,

	service.ErrAccountDisabled: http.StatusForbidden,
	service.ErrForbidden:       http.StatusForbidden,

	service.ErrNotFound: http.StatusNotFound,

	service.ErrAccountLocked: http.StatusLocked,
	service.ErrRateLimited:   http.StatusTooManyRequests,
}

func statusFromError(err error) int {
	var fieldErrs validators.FieldErrors
	if errors.As(err, &fieldErrs) {
		return http.StatusBadRequest
	}
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// messageFromError returns the client-facing message for err. Internal
// failures are reported with a generic text.
func messageFromError(err error, status int) string {
	var fieldErrs validators.FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		return msgValidationFailed
	case status == http.StatusInternalServerError:
		return msgInternalError
	}
	for target := range errorStatusMap {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return http.StatusText(status)
}

// writeError logs err and writes the uniform error body.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromRequest(r)
	status := statusFromError(err)

	event := log.Warn()
	if status == http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).Int("status", status).Str("path", r.URL.Path).Msg("request failed")

	body := models.ErrorResponse{
		Status:    status,
		Message:   messageFromError(err, status),
		Timestamp: h.now().UTC(),
		Path:      r.URL.Path,
	}
	var fieldErrs validators.FieldErrors
	if errors.As(err, &fieldErrs) {
		body.Errors = fieldErrs
	}

	if _, writeErr := utils.WriteJSON(w, body, status); writeErr != nil {
		log.Err(writeErr).Msg("error writing error response")
	}
}

// writeStatus writes the uniform error body for a status without an
// underlying error.
func (h *Handler) writeStatus(w http.ResponseWriter, r *http.Request, status int, message string) {
	body := models.ErrorResponse{
		Status:    status,
		Message:   message,
		Timestamp: h.now().UTC(),
		Path:      r.URL.Path,
	}
	utils.WriteJSON(w, body, status)
}
