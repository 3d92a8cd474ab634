// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"

	"github.com/MKhiriev/dealer-auth/internal/app"
	"github.com/MKhiriev/dealer-auth/models"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.callerOrError(w, r)
	if !ok {
		return
	}

	user, err := h.services.AccountService.Profile(r.Context(), caller)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeOK(w, r, user)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.callerOrError(w, r)
	if !ok {
		return
	}

	var request models.ProfileUpdateRequest
	if err := decodeJSON(r, &request); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.services.AccountService.UpdateProfile(r.Context(), caller, request)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeOK(w, r, models.ProfileUpdateResponse{
		Message:   app.MsgProfileUpdated,
		FullName:  user.FullName,
		AvatarURL: user.AvatarURL,
	})
}

func (h *Handler) listSessions(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.callerOrError(w, r)
	if !ok {
		return
	}

	sessions, err := h.services.AccountService.ListSessions(r.Context(), caller)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if sessions == nil {
		sessions = []models.Session{}
	}

	writeOK(w, r, sessions)
}

func (h *Handler) revokeSession(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.callerOrError(w, r)
	if !ok {
		return
	}

	if err := h.services.AccountService.RevokeSession(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeMessage(w, r, app.MsgSessionRevoked)
}
