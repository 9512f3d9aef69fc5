// Package controllers handles HTTP request handling
package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appauth "github.com/yigit/projecthub/internal/app/auth"
	"github.com/yigit/projecthub/internal/app/models/dto"
	"github.com/yigit/projecthub/internal/app/services"
	"github.com/yigit/projecthub/internal/middleware"
)

// PermissionReader resolves the caller's console permissions
type PermissionReader interface {
	Permissions(ctx context.Context, userID int64) (appauth.Permissions, error)
}

// AuthController handles authentication related operations
type AuthController struct {
	authService services.IAuthService
	permissions PermissionReader
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService services.IAuthService, permissions PermissionReader, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		permissions: permissions,
		logger:      logger,
	}
}

// Login handles console login
// @Summary Console login
// @Description Authenticates an admin or temporary admin and returns an access token with the caller's tab permissions
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.AuthResponse} "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format or validation error"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 403 {object} dto.ErrorResponse "No console access"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.authService.Login(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Login successful"))
}

// MyPermissions returns the caller's tab permissions
// @Summary Current permissions
// @Description Returns which console tabs the caller may open. Unreadable grants are reported as RESTRICTED with an error message.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.PermissionsResponse} "Caller permissions"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /admin/me/permissions [get]
func (c *AuthController) MyPermissions(ctx *gin.Context) {
	userID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}

	perms, err := c.permissions.Permissions(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.logger.Debug().Int64("userID", userID).Str("level", string(perms.Level)).Msg("Permissions requested")

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(services.NewPermissionsResponse(perms), ""))
}
