package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appauth "github.com/yigit/projecthub/internal/app/auth"
	"github.com/yigit/projecthub/internal/app/models"
	"github.com/yigit/projecthub/internal/app/models/dto"
	"github.com/yigit/projecthub/internal/pkg/apperrors"
	"github.com/yigit/projecthub/internal/pkg/auth"
)

func newAuthService(t *testing.T) (*AuthService, *userRepoMock, string) {
	t.Helper()
	hash, err := auth.HashPassword("changeme123")
	require.NoError(t, err)

	users := new(userRepoMock)
	jwt := auth.NewJWTService(auth.JWTConfig{SecretKey: "secret", AccessTokenExp: time.Hour, TokenIssuer: "projecthub"})
	return NewAuthService(users, jwt, zerolog.Nop()), users, hash
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("permanent admin", func(t *testing.T) {
		svc, users, hash := newAuthService(t)
		users.On("GetByEmail", ctx, "admin@college.edu").
			Return(&models.User{ID: 1, Email: "admin@college.edu", Password: hash, Role: models.RoleAdmin}, nil)

		resp, err := svc.Login(ctx, &dto.LoginRequest{Email: " Admin@College.edu ", Password: "changeme123"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token.AccessToken)
		assert.Equal(t, "Bearer", resp.Token.TokenType)
		assert.Equal(t, int64(3600), resp.Token.ExpiresIn)
		assert.Equal(t, string(appauth.AccessFull), resp.Permissions.Level)
		assert.Equal(t, models.AllTabs, resp.Permissions.Tabs)
	})

	t.Run("temporary admin", func(t *testing.T) {
		svc, users, hash := newAuthService(t)
		users.On("GetByEmail", ctx, "ta@college.edu").Return(&models.User{
			ID: 2, Email: "ta@college.edu", Password: hash, Role: models.RoleFaculty,
			IsTemporaryAdmin: true, TempAdminTabs: strPtr(`["teams"]`),
		}, nil)

		resp, err := svc.Login(ctx, &dto.LoginRequest{Email: "ta@college.edu", Password: "changeme123"})
		require.NoError(t, err)
		assert.Equal(t, string(appauth.AccessLimited), resp.Permissions.Level)
		assert.Equal(t, []models.Tab{models.TabTeams}, resp.Permissions.Tabs)
	})

	t.Run("no console access", func(t *testing.T) {
		svc, users, hash := newAuthService(t)
		users.On("GetByEmail", ctx, "student@college.edu").
			Return(&models.User{ID: 3, Password: hash, Role: models.RoleStudent}, nil)

		_, err := svc.Login(ctx, &dto.LoginRequest{Email: "student@college.edu", Password: "changeme123"})
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("malformed grant", func(t *testing.T) {
		svc, users, hash := newAuthService(t)
		users.On("GetByEmail", ctx, "ta@college.edu").Return(&models.User{
			ID: 2, Password: hash, Role: models.RoleFaculty, IsTemporaryAdmin: true, TempAdminTabs: strPtr(`[`),
		}, nil)

		_, err := svc.Login(ctx, &dto.LoginRequest{Email: "ta@college.edu", Password: "changeme123"})
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, users, hash := newAuthService(t)
		users.On("GetByEmail", ctx, "admin@college.edu").
			Return(&models.User{ID: 1, Password: hash, Role: models.RoleAdmin}, nil)

		_, err := svc.Login(ctx, &dto.LoginRequest{Email: "admin@college.edu", Password: "nope"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		svc, users, _ := newAuthService(t)
		users.On("GetByEmail", ctx, mock.Anything).Return(nil, apperrors.ErrUserNotFound)

		_, err := svc.Login(ctx, &dto.LoginRequest{Email: "ghost@college.edu", Password: "x"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})
}

func TestEnsureDefaultScope(t *testing.T) {
	ctx := context.Background()

	t.Run("existing", func(t *testing.T) {
		scopes := new(scopeRepoMock)
		scopes.On("GetByName", ctx, "2026").Return(&models.Scope{ID: 3, Name: "2026"}, nil)

		scope, err := NewScopeService(scopes, zerolog.Nop()).EnsureDefault(ctx, " 2026 ")
		require.NoError(t, err)
		assert.Equal(t, int64(3), scope.ID)
		scopes.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("created when missing", func(t *testing.T) {
		scopes := new(scopeRepoMock)
		scopes.On("GetByName", ctx, "2026").Return(nil, apperrors.ErrScopeNotFound)
		scopes.On("Create", ctx, mock.MatchedBy(func(s *models.Scope) bool {
			return s.Name == "2026" && s.NumberOfPhases == 2 && s.RequireGuide
		})).Return(nil)

		_, err := NewScopeService(scopes, zerolog.Nop()).EnsureDefault(ctx, "2026")
		require.NoError(t, err)
	})

	t.Run("blank name", func(t *testing.T) {
		_, err := NewScopeService(new(scopeRepoMock), zerolog.Nop()).EnsureDefault(ctx, " ")
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	})
}
