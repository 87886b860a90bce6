package api

import (
	"net/http"
	"time"
	"vip-order-api/internal/middleware"
	"vip-order-api/internal/response"
	"vip-order-api/internal/services"
	"vip-order-api/pkg/logging"

	"github.com/gin-gonic/gin"
)

// LoginRequest represents the OAuth login request
type LoginRequest struct {
	Code string `json:"code" binding:"required"`
}

// LoginData is the payload returned on successful login
type LoginData struct {
	Token    string `json:"token"`
	UserID   uint   `json:"user_id"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
	IsVIP    bool   `json:"is_vip"`
}

// Login exchanges a one-time OAuth code for a session token
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format: "+err.Error())
		return
	}

	sessionService := services.NewSessionService(services.NewOAuthClient())
	user, token, err := sessionService.Login(c.Request.Context(), req.Code)
	if err != nil {
		logging.Warnf("Login failed: %v", err)
		status, code := errorStatus(err)
		response.ErrorJSON(c, status, code, "Login failed")
		return
	}

	response.SuccessJSON(c, LoginData{
		Token:    token,
		UserID:   user.ID,
		Nickname: user.Nickname,
		Avatar:   user.Avatar,
		IsVIP:    user.IsVIP(time.Now()),
	})
}

// Logout invalidates the current session
func Logout(c *gin.Context) {
	token := c.GetString("session_token")
	if token != "" {
		if err := middleware.SessionService.Logout(token); err != nil {
			logging.Warnf("Failed to delete session on logout: %v", err)
		}
	}
	response.SuccessJSON(c, nil)
}
