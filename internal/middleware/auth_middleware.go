package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	appauth "github.com/yigit/projecthub/internal/app/auth"
	"github.com/yigit/projecthub/internal/app/models"
	"github.com/yigit/projecthub/internal/app/models/dto"
	"github.com/yigit/projecthub/internal/pkg/apperrors"
	"github.com/yigit/projecthub/internal/pkg/auth"
)

// Context keys set by the auth middleware
const (
	ContextUserID      = "userID"
	ContextEmail       = "email"
	ContextRole        = "roleType"
	ContextPermissions = "permissions"
)

// PermissionChecker resolves console access per request
type PermissionChecker interface {
	RequireAdmin(ctx context.Context, userID int64) (appauth.Permissions, error)
	RequireTab(ctx context.Context, userID int64, tab models.Tab) (appauth.Permissions, error)
	RequireFullAdmin(ctx context.Context, userID int64) (appauth.Permissions, error)
}

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService  *auth.JWTService
	permissions PermissionChecker
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService, permissions PermissionChecker) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:  jwtService,
		permissions: permissions,
	}
}

// JWTAuth validates the bearer token. Browsers cannot set headers on a websocket
// handshake, so a ?token= query parameter is accepted as well.
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			header = c.Query("token")
		}
		if header == "" {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Authentication required", "Authorization header missing")
			return
		}

		token, err := auth.ExtractBearerToken(header)
		if err != nil {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Authentication required", "Invalid token format")
			return
		}

		claims, err := m.jwtService.ValidateToken(token)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				abortUnauthorized(c, dto.ErrorCodeExpiredToken, "Authentication failed", "Token has expired")
				return
			}
			abortUnauthorized(c, dto.ErrorCodeInvalidToken, "Authentication failed", "Invalid token")
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// AdminRequired lets through admins and temporary admins holding at least one tab
func (m *AuthMiddleware) AdminRequired() gin.HandlerFunc {
	return m.guard(func(ctx context.Context, userID int64) (appauth.Permissions, error) {
		return m.permissions.RequireAdmin(ctx, userID)
	})
}

// TabRequired lets through users who may open tab
func (m *AuthMiddleware) TabRequired(tab models.Tab) gin.HandlerFunc {
	return m.guard(func(ctx context.Context, userID int64) (appauth.Permissions, error) {
		return m.permissions.RequireTab(ctx, userID, tab)
	})
}

// FullAdminRequired lets through permanent admins only
func (m *AuthMiddleware) FullAdminRequired() gin.HandlerFunc {
	return m.guard(func(ctx context.Context, userID int64) (appauth.Permissions, error) {
		return m.permissions.RequireFullAdmin(ctx, userID)
	})
}

func (m *AuthMiddleware) guard(check func(context.Context, int64) (appauth.Permissions, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Authentication required", "User information not found")
			return
		}

		perms, err := check(c.Request.Context(), userID)
		if err != nil {
			HandleAPIError(c, err)
			return
		}

		c.Set(ContextPermissions, perms)
		c.Next()
	}
}

// UserID returns the authenticated user's id
func UserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(ContextUserID)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id > 0
}

// Permissions returns the permissions resolved by the last guard, if any
func Permissions(c *gin.Context) (appauth.Permissions, bool) {
	v, exists := c.Get(ContextPermissions)
	if !exists {
		return appauth.Permissions{}, false
	}
	p, ok := v.(appauth.Permissions)
	return p, ok
}

// MustUserID returns the authenticated user's id or writes a 401
func MustUserID(c *gin.Context) (int64, bool) {
	id, ok := UserID(c)
	if !ok {
		HandleAPIError(c, apperrors.ErrTokenInvalid)
	}
	return id, ok
}

func abortUnauthorized(c *gin.Context, code dto.ErrorCode, message, details string) {
	detail := dto.NewErrorDetail(code, message).WithDetails(details)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
}
