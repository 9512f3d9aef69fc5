package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yigit/projecthub/internal/app/models"
	"github.com/yigit/projecthub/internal/app/repositories"
	"github.com/yigit/projecthub/internal/pkg/apperrors"
)

// IScopeService lists batches for the scope dropdowns
type IScopeService interface {
	List(ctx context.Context) ([]models.Scope, error)
	EnsureDefault(ctx context.Context, name string) (*models.Scope, error)
}

// ScopeService manages scopes (batches)
type ScopeService struct {
	scopeRepo repositories.IScopeRepository
	logger    zerolog.Logger
}

// NewScopeService creates a new ScopeService
func NewScopeService(scopeRepo repositories.IScopeRepository, logger zerolog.Logger) *ScopeService {
	return &ScopeService{scopeRepo: scopeRepo, logger: logger}
}

// List returns every scope ordered by name
func (s *ScopeService) List(ctx context.Context) ([]models.Scope, error) {
	return s.scopeRepo.List(ctx)
}

// EnsureDefault returns the scope called name, creating it with two phases when missing
func (s *ScopeService) EnsureDefault(ctx context.Context, name string) (*models.Scope, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewBadRequestError("scope name cannot be empty")
	}

	scope, err := s.scopeRepo.GetByName(ctx, name)
	if err == nil {
		return scope, nil
	}
	if !errors.Is(err, apperrors.ErrScopeNotFound) {
		return nil, err
	}

	scope = &models.Scope{Name: name, NumberOfPhases: 2, RequireGuide: true}
	if err := s.scopeRepo.Create(ctx, scope); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("scopeID", scope.ID).Str("name", name).Msg("Default scope created")
	return scope, nil
}
