package handlers

import (
	"net/http"

	"bizflow_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service.
type AuthHandler struct {
	authService services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(as services.AuthService) *AuthHandler {
	return &AuthHandler{authService: as}
}

// Register creates a business and its admin and logs the admin in.
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if !bindJSON(c, &req, "Register") {
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "Register: Error from authService.Register")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Login handles staff login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if !bindJSON(c, &req, "Login") {
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "Login: Error from authService.Login")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CustomerLogin handles portal login by email or phone.
func (h *AuthHandler) CustomerLogin(c *gin.Context) {
	var req services.CustomerLoginRequest
	if !bindJSON(c, &req, "CustomerLogin") {
		return
	}

	resp, err := h.authService.CustomerLogin(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "CustomerLogin: Error from authService.CustomerLogin")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ForgotPassword answers the same way whether or not the email is known.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req services.ForgotPasswordRequest
	if !bindJSON(c, &req, "ForgotPassword") {
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), req); err != nil {
		respondServiceError(c, err, "ForgotPassword: Error from authService.ForgotPassword")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "If an account with that email exists, a new password has been sent to it"})
}

// GetProfile returns the caller and their business.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}

	profile, err := h.authService.GetProfile(c.Request.Context(), principal)
	if err != nil {
		respondServiceError(c, err, "GetProfile: Error from authService.GetProfile")
		return
	}
	c.JSON(http.StatusOK, profile)
}
