package admin

import (
	"errors"

	"github.com/stablefront/internal/http/response"
	"github.com/stablefront/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest 商户登录请求体
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 商户登录，签发 JWT
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	token, err := h.AuthService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			requestLog(c).Warnw("merchant_login_failed", "username", req.Username, "client_ip", c.ClientIP())
			response.Unauthorized(c, "invalid credentials")
			return
		}
		respondError(c, response.CodeInternal, "login failed", err)
		return
	}
	response.Success(c, gin.H{"token": token})
}
