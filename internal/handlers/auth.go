// internal/handlers/auth.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fiachehr/go-eav/internal/config"
	"github.com/fiachehr/go-eav/internal/utils"
)

// AuthHandler mints development tokens. The service validates bearer tokens
// but does not manage accounts; outside development an external identity
// provider issues them, so these routes are never registered in production.
type AuthHandler struct {
	cfg *config.Config
}

func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

type devTokenRequest struct {
	Username string `json:"username" validate:"required,min=2,max=64"`
	Role     string `json:"role,omitempty" validate:"omitempty,oneof=admin user"`
}

// POST /auth/dev-token
func (h *AuthHandler) DevToken(c *gin.Context) {
	var req devTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	role := req.Role
	if role == "" {
		role = "admin"
	}

	token, err := utils.GenerateJWT(uuid.New(), req.Username, role, h.cfg.JWT.AccessTokenTTL)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   h.cfg.JWT.AccessTokenTTL * 3600,
	})
}
