package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/healthwhisperer-backend/internal/http/response"
	"github.com/yungbote/healthwhisperer-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// POST /api/register
func (ah *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	user, err := ah.authService.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		response.RespondServiceError(c, "registration_failed", err)
		return
	}
	response.RespondCreated(c, gin.H{"user": user})
}

// POST /api/login
func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	pair, err := ah.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.RespondServiceError(c, "login_failed", err)
		return
	}
	response.RespondOK(c, pair)
}

// POST /api/refresh
func (ah *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	pair, err := ah.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.RespondServiceError(c, "refresh_failed", err)
		return
	}
	response.RespondOK(c, pair)
}

// POST /api/logout
func (ah *AuthHandler) Logout(c *gin.Context) {
	if err := ah.authService.Logout(c.Request.Context()); err != nil {
		response.RespondServiceError(c, "logout_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /api/password/reset
func (ah *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Email       string `json:"email"`
		NewPassword string `json:"new_password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := ah.authService.ResetPassword(c.Request.Context(), req.Email, req.NewPassword); err != nil {
		response.RespondServiceError(c, "reset_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
