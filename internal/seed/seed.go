package seed

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	appModels "github.com/yigit/projecthub/internal/app/models"
	appRepos "github.com/yigit/projecthub/internal/app/repositories"
	"github.com/yigit/projecthub/internal/pkg/apperrors"
	"github.com/yigit/projecthub/internal/pkg/auth"
)

// Options controls what CreateDefaultData creates
type Options struct {
	AdminName     string
	AdminEmail    string
	AdminPassword string
	DefaultScope  string
}

// ScopeEnsurer creates the default scope when missing
type ScopeEnsurer interface {
	EnsureDefault(ctx context.Context, name string) (*appModels.Scope, error)
}

// CreateDefaultData creates the first admin account and the default scope when they don't exist.
// Every step runs; failures are collected and returned together.
func CreateDefaultData(ctx context.Context, users appRepos.IUserRepository, scopes ScopeEnsurer, opts Options, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data (admin account, default scope)...")
	var finalErr error

	if err := ensureAdmin(ctx, users, opts, lgr); err != nil {
		lgr.Error().Err(err).Msg("Error creating default admin")
		finalErr = errors.Join(finalErr, err)
	}

	if opts.DefaultScope != "" {
		if _, err := scopes.EnsureDefault(ctx, opts.DefaultScope); err != nil {
			lgr.Error().Err(err).Str("scope", opts.DefaultScope).Msg("Error creating default scope")
			finalErr = errors.Join(finalErr, err)
		}
	}

	if finalErr == nil {
		lgr.Info().Msg("Default data check/creation complete.")
	}
	return finalErr
}

func ensureAdmin(ctx context.Context, users appRepos.IUserRepository, opts Options, lgr zerolog.Logger) error {
	if opts.AdminEmail == "" {
		lgr.Debug().Msg("No seed admin configured, skipping")
		return nil
	}

	exists, err := users.AdminExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		lgr.Debug().Msg("An admin account already exists, skipping seed admin")
		return nil
	}

	hashed, err := auth.HashPassword(opts.AdminPassword)
	if err != nil {
		return err
	}

	admin := &appModels.User{
		Name:     opts.AdminName,
		Email:    strings.ToLower(strings.TrimSpace(opts.AdminEmail)),
		Password: hashed,
		Role:     appModels.RoleAdmin,
	}
	if err := users.Create(ctx, admin); err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			lgr.Warn().Str("email", admin.Email).Msg("Seed admin email belongs to a non-admin account, skipping")
			return nil
		}
		return err
	}

	lgr.Info().Int64("userID", admin.ID).Str("email", admin.Email).Msg("Default admin created")
	return nil
}
