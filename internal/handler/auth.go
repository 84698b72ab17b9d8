package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/quicknotes/quicknotes-go/internal/middleware"
	"github.com/quicknotes/quicknotes-go/internal/model"
	"github.com/quicknotes/quicknotes-go/internal/service"
)

// AuthHandler handles HTTP requests for registration, login and refresh.
type AuthHandler struct {
	service    *service.AuthService
	useCookies bool
	refreshTTL time.Duration
}

// NewAuthHandler creates a new AuthHandler. When useCookies is true the
// token pair is additionally delivered as httpOnly cookies.
func NewAuthHandler(svc *service.AuthService, useCookies bool, refreshTTL time.Duration) *AuthHandler {
	return &AuthHandler{service: svc, useCookies: useCookies, refreshTTL: refreshTTL}
}

// HandleRegister handles POST /auth/register requests.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.service.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	h.setTokenCookies(w, resp)
	writeJSON(w, http.StatusOK, resp)
}

// HandleLogin handles POST /auth/login requests.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	h.setTokenCookies(w, resp)
	writeJSON(w, http.StatusOK, resp)
}

// HandleRefresh handles POST /auth/refresh requests.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req model.RefreshRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefreshToken) {
			writeJSON(w, http.StatusUnauthorized, errorResponse(err.Error()))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	h.setTokenCookies(w, resp)
	writeJSON(w, http.StatusOK, resp)
}

// setTokenCookies delivers the token pair as httpOnly cookies when cookie
// mode is enabled. Tokens remain in the response body either way.
func (h *AuthHandler) setTokenCookies(w http.ResponseWriter, resp model.AuthResponse) {
	if !h.useCookies {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    resp.AccessToken,
		Path:     "/",
		Expires:  resp.ExpiresAt,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     "refreshToken",
		Value:    resp.RefreshToken,
		Path:     "/auth",
		Expires:  time.Now().Add(h.refreshTTL),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}
