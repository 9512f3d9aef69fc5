package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	appauth "github.com/yigit/projecthub/internal/app/auth"
	"github.com/yigit/projecthub/internal/app/models"
	"github.com/yigit/projecthub/internal/app/models/dto"
	"github.com/yigit/projecthub/internal/app/repositories"
	"github.com/yigit/projecthub/internal/pkg/apperrors"
	"github.com/yigit/projecthub/internal/pkg/auth"
)

// IAuthService issues console tokens
type IAuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
}

// AuthService handles authentication operations
type AuthService struct {
	userRepo   repositories.IUserRepository
	jwtService *auth.JWTService
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repositories.IUserRepository, jwtService *auth.JWTService, logger zerolog.Logger) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Login checks credentials and returns a token. Only users who can open at least
// one console tab are let in.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		s.logger.Warn().Int64("userID", user.ID).Msg("Failed login attempt")
		return nil, apperrors.ErrInvalidCredentials
	}

	perms := appauth.ParsePermissions(user)
	if !perms.IsAdmin() {
		s.logger.Warn().Int64("userID", user.ID).Str("role", string(user.Role)).Str("permissionError", perms.Error).
			Msg("Login refused for user without console access")
		return nil, apperrors.ErrPermissionDenied
	}

	token, expiresIn, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userID", user.ID).Str("level", string(perms.Level)).Msg("User logged in")

	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresIn:   int64(expiresIn),
		},
		User:        dto.NewUserResponse(user),
		Permissions: NewPermissionsResponse(perms),
	}, nil
}

// NewPermissionsResponse maps decoded permissions to the API shape
func NewPermissionsResponse(p appauth.Permissions) dto.PermissionsResponse {
	tabs := p.Tabs
	if tabs == nil {
		tabs = []models.Tab{}
	}
	return dto.PermissionsResponse{
		Role:  p.Role,
		Level: string(p.Level),
		Tabs:  tabs,
		Error: p.Error,
	}
}
