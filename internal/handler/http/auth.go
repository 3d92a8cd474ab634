// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/MKhiriev/dealer-auth/internal/app"
	"github.com/MKhiriev/dealer-auth/internal/logger"
	"github.com/MKhiriev/dealer-auth/internal/service"
	"github.com/MKhiriev/dealer-auth/internal/utils"
	"github.com/MKhiriev/dealer-auth/models"
)

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var registration models.Registration
	if err := decodeJSON(r, &registration); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.services.AuthService.Register(r.Context(), registration)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeOK(w, r, models.RegistrationResponse{
		Message: app.MsgRegistrationSuccessful,
		UserID:  user.ID,
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var credentials models.Credentials
	if err := decodeJSON(r, &credentials); err != nil {
		h.writeError(w, r, err)
		return
	}

	response, err := h.services.AuthService.Login(r.Context(), credentials, clientInfo(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	logger.FromRequest(r).Debug().Str("user_id", response.UserID).Msg("user successfully logged in")
	writeOK(w, r, response)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	var request models.RefreshRequest
	if err := decodeAndValidate(h, r, &request); err != nil {
		h.writeError(w, r, err)
		return
	}

	pair, err := h.services.AuthService.Refresh(r.Context(), request.RefreshToken)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeOK(w, r, pair)
}

// logout ends the session of the refresh token in the body. The access
// token, when sent, is denied for the rest of its lifetime.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	var request models.RefreshRequest
	if err := decodeAndValidate(h, r, &request); err != nil {
		h.writeError(w, r, err)
		return
	}

	accessToken, _ := utils.BearerToken(r)
	if err := h.services.AuthService.Logout(r.Context(), request.RefreshToken, accessToken); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeMessage(w, r, app.MsgLoggedOut)
}

// logoutAll ends every session of the caller. Admins may name another user
// in the body.
func (h *Handler) logoutAll(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.callerOrError(w, r)
	if !ok {
		return
	}

	var request models.LogoutAllRequest
	if err := decodeJSON(r, &request); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(w, r, err)
		return
	}

	userID := caller.UserID
	if request.UserID != "" && request.UserID != caller.UserID {
		if !caller.IsAdmin() {
			h.writeError(w, r, service.ErrForbidden)
			return
		}
		userID = request.UserID
	}

	if err := h.services.AuthService.LogoutAll(r.Context(), userID); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeMessage(w, r, app.MsgLoggedOutEverywhere)
}

// verify reports whether the bearer token is usable. Every failure collapses
// to valid=false with 200 OK.
func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	token, _ := utils.BearerToken(r)

	if h.services.AuthService.VerifyToken(r.Context(), token) {
		writeOK(w, r, models.VerifyResponse{Valid: true, Message: app.MsgTokenValid})
		return
	}
	writeOK(w, r, models.VerifyResponse{Valid: false, Message: app.MsgTokenInvalid})
}

// verifyEmail consumes an email verification token taken from the body or,
// for links opened in a browser, from the "token" query parameter.
func (h *Handler) verifyEmail(w http.ResponseWriter, r *http.Request) {
	request := models.TokenRequest{Token: r.URL.Query().Get("token")}
	if request.Token == "" {
		if err := decodeJSON(r, &request); err != nil {
			h.writeError(w, r, err)
			return
		}
	}

	if err := h.services.AuthService.VerifyEmail(r.Context(), request.Token); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeMessage(w, r, app.MsgEmailVerified)
}

func (h *Handler) sendVerification(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.callerOrError(w, r)
	if !ok {
		return
	}

	token, err := h.services.AuthService.CreateEmailVerificationToken(r.Context(), caller)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeOK(w, r, models.TokenIssuedResponse{Message: app.MsgVerificationCreated, Token: token})
}

func (h *Handler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var request models.EmailRequest
	if err := decodeJSON(r, &request); err != nil {
		h.writeError(w, r, err)
		return
	}

	token, err := h.services.AuthService.CreatePasswordResetToken(r.Context(), request.Email)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	// TODO: deliver the token by email once a mail sender exists and stop
	// returning it in the body.
	writeOK(w, r, models.TokenIssuedResponse{Message: app.MsgResetEmailSent, Token: token})
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var request models.ResetPasswordRequest
	if err := decodeJSON(r, &request); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.services.AuthService.ResetPassword(r.Context(), request); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeMessage(w, r, app.MsgPasswordReset)
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.callerOrError(w, r)
	if !ok {
		return
	}

	var request models.ChangePasswordRequest
	if err := decodeJSON(r, &request); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.services.AuthService.ChangePassword(r.Context(), caller, request); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeMessage(w, r, app.MsgPasswordChanged)
}

func (h *Handler) promoteToAdmin(w http.ResponseWriter, r *http.Request) {
	var request models.PromoteRequest
	if err := decodeJSON(r, &request); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.services.AuthService.PromoteToAdmin(r.Context(), request.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeOK(w, r, models.RoleResponse{Message: app.MsgUserPromoted, UserID: user.ID, Role: user.Role})
}
