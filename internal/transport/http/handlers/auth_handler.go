package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/scrollinondubs/DogTinder/internal/pkg/validate"
	authsvc "github.com/scrollinondubs/DogTinder/internal/services/auth"
	"github.com/scrollinondubs/DogTinder/internal/transport/http/dto"
	httperrors "github.com/scrollinondubs/DogTinder/internal/transport/http/errors"
)

type AuthHandler struct {
	service *authsvc.Service
}

func NewAuthHandler(service *authsvc.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	var req dto.SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidation(w, "invalid request body", decodeFailureDetails(err))
		return
	}
	if errs := validate.Struct(req); errs != nil {
		writeValidation(w, "request validation failed", toFieldErrors(errs))
		return
	}

	res, err := h.service.Signup(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, authsvc.ErrWeakPassword) {
			writeValidation(w, "request validation failed", []httperrors.FieldError{{
				Field:   "password",
				Message: fmt.Sprintf("must be at least %d characters", h.service.MinPasswordLength()),
			}})
			return
		}
		handleAuthError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, tokensResponse(res))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	var req dto.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidation(w, "invalid request body", decodeFailureDetails(err))
		return
	}
	if errs := validate.Struct(req); errs != nil {
		writeValidation(w, "request validation failed", toFieldErrors(errs))
		return
	}

	res, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleAuthError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, tokensResponse(res))
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	var req dto.RefreshRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	res, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		handleAuthError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, tokensResponse(res))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	if err := h.service.Logout(r.Context(), identity.SID); err != nil {
		handleAuthError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.LogoutResponse{OK: true})
}

func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	if err := h.service.LogoutAll(r.Context(), identity.UserID); err != nil {
		handleAuthError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.LogoutResponse{OK: true})
}

func tokensResponse(res authsvc.AuthResult) dto.AuthTokensResponse {
	return dto.AuthTokensResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresInSec: max(0, int64(time.Until(res.AccessExpires).Seconds())),
		Me: dto.AuthMeResponse{
			ID:    res.Me.ID,
			Email: res.Me.Email,
			Name:  res.Me.Name,
			Role:  res.Me.Role,
		},
	}
}

func handleAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authsvc.ErrInvalidInput):
		writeBadRequest(w, "INVALID_REQUEST", "request validation failed")
	case errors.Is(err, authsvc.ErrEmailTaken):
		writeConflict(w, "EMAIL_TAKEN", "email is already registered")
	case errors.Is(err, authsvc.ErrInvalidCredentials):
		writeUnauthorized(w, "INVALID_CREDENTIALS", "invalid email or password")
	case errors.Is(err, authsvc.ErrUnauthorized):
		writeUnauthorized(w, "UNAUTHORIZED", "authentication failed")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
