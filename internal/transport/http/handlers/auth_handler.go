package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	authsvc "github.com/vjzest/PropCIDBack/internal/services/auth"
	"github.com/vjzest/PropCIDBack/internal/transport/http/dto"
	httperrors "github.com/vjzest/PropCIDBack/internal/transport/http/errors"
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
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	user, err := h.service.Signup(r.Context(), authsvc.SignupInput{
		Name:          req.Name,
		Email:         req.Email,
		Password:      req.Password,
		UserType:      req.UserType,
		CompanyName:   req.CompanyName,
		LicenseNumber: req.LicenseNumber,
	})
	if err != nil {
		handleAuthError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.SignupResponse{
		Message:  "Signup successful! User created directly.",
		UserType: user.UserType,
		User: dto.UserInfo{
			Name:  user.Name,
			Email: user.Email,
		},
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	var req dto.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	res, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleAuthError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.LoginResponse{
		Message:  "Login successful",
		Token:    res.Token,
		UserType: res.User.UserType,
		User: dto.UserInfo{
			Name:  res.User.Name,
			Email: res.User.Email,
		},
	})
}

func (h *AuthHandler) Users(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		handleAuthError(w, err)
		return
	}

	items := make([]dto.UserItem, 0, len(users))
	for _, user := range users {
		items = append(items, dto.UserItem{
			UID:           user.UID,
			Name:          user.Name,
			Email:         user.Email,
			UserType:      user.UserType,
			CompanyName:   user.CompanyName,
			LicenseNumber: user.LicenseNumber,
			CreatedAt:     user.CreatedAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.UsersListResponse{
		Message: "User list fetched successfully",
		Users:   items,
	})
}

func handleAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authsvc.ErrInvalidInput):
		writeBadRequest(w, "INVALID_REQUEST", "request validation failed")
	case errors.Is(err, authsvc.ErrEmailTaken):
		writeBadRequest(w, "EMAIL_TAKEN", "email is already registered")
	case errors.Is(err, authsvc.ErrUnauthorized):
		writeUnauthorized(w, "UNAUTHORIZED", "authentication failed")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: code, Message: message})
}

func writeUnauthorized(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{Code: code, Message: message})
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{Code: code, Message: message})
}
