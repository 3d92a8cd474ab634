// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/MKhiriev/dealer-auth/internal/app"
	"github.com/MKhiriev/dealer-auth/internal/validators"
	"github.com/MKhiriev/dealer-auth/models"
	"github.com/go-chi/chi/v5"
)

// Query parameters of the admin user listing.
const (
	queryRole           = "role"
	queryActive         = "active"
	queryIncludeDeleted = "includeDeleted"
	queryLimit          = "limit"
	queryOffset         = "offset"
)

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	filter, err := userFilterFromQuery(r.URL.Query())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	users, err := h.services.UserAdminService.ListUsers(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}

	writeOK(w, r, users)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.services.UserAdminService.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeOK(w, r, user)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	var update models.UserUpdate
	if err := decodeAndValidate(h, r, &update); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.services.UserAdminService.UpdateUser(r.Context(), chi.URLParam(r, "id"), update)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeOK(w, r, user)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.services.UserAdminService.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeMessage(w, r, app.MsgUserDeactivated)
}

// setRole changes a user's role. Unlike registration, an unknown role is
// rejected instead of falling back to the default.
func (h *Handler) setRole(w http.ResponseWriter, r *http.Request) {
	var request models.RoleRequest
	if err := decodeAndValidate(h, r, &request); err != nil {
		h.writeError(w, r, err)
		return
	}
	role, _ := models.ParseRole(request.Role)

	user, err := h.services.UserAdminService.SetRole(r.Context(), chi.URLParam(r, "id"), role)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeOK(w, r, models.RoleResponse{Message: app.MsgRoleUpdated, Role: user.Role})
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	var request models.StatusRequest
	if err := decodeAndValidate(h, r, &request); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.services.UserAdminService.SetActive(r.Context(), chi.URLParam(r, "id"), *request.IsActive)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeOK(w, r, models.StatusResponse{Message: app.MsgStatusUpdated, IsActive: user.Active})
}

func userFilterFromQuery(query url.Values) (models.UserFilter, error) {
	var filter models.UserFilter
	errs := validators.FieldErrors{}

	if raw := query.Get(queryRole); raw != "" {
		role, ok := models.ParseRole(raw)
		if ok {
			filter.Role = &role
		} else {
			errs[queryRole] = "unknown role"
		}
	}
	if raw := query.Get(queryActive); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err == nil {
			filter.Active = &active
		} else {
			errs[queryActive] = "must be true or false"
		}
	}
	if raw := query.Get(queryIncludeDeleted); raw != "" {
		includeDeleted, err := strconv.ParseBool(raw)
		if err == nil {
			filter.IncludeDeleted = includeDeleted
		} else {
			errs[queryIncludeDeleted] = "must be true or false"
		}
	}
	if raw := query.Get(queryLimit); raw != "" {
		limit, err := strconv.ParseUint(raw, 10, 64)
		if err == nil {
			filter.Limit = limit
		} else {
			errs[queryLimit] = "must be a non-negative integer"
		}
	}
	if raw := query.Get(queryOffset); raw != "" {
		offset, err := strconv.ParseUint(raw, 10, 64)
		if err == nil {
			filter.Offset = offset
		} else {
			errs[queryOffset] = "must be a non-negative integer"
		}
	}

	if len(errs) > 0 {
		return models.UserFilter{}, errs
	}
	return filter, nil
}
