package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/projecthub/internal/app/models"
	"github.com/yigit/projecthub/internal/pkg/apperrors"
	"github.com/yigit/projecthub/internal/pkg/dberrors"
)

var scopeColumns = []string{"id", "name", "number_of_phases", "require_guide", "require_subject_expert"}

// ScopeRepository handles database operations for scopes (batches)
type ScopeRepository struct {
	db *pgxpool.Pool
}

// NewScopeRepository creates a new ScopeRepository
func NewScopeRepository(db *pgxpool.Pool) *ScopeRepository {
	return &ScopeRepository{db: db}
}

// List returns every scope ordered by name
func (r *ScopeRepository) List(ctx context.Context) ([]models.Scope, error) {
	sql, args, err := psql.Select(scopeColumns...).From("scopes").OrderBy("name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building scope query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying scopes: %w", err)
	}
	defer rows.Close()

	scopes := make([]models.Scope, 0)
	for rows.Next() {
		var s models.Scope
		if err := rows.Scan(&s.ID, &s.Name, &s.NumberOfPhases, &s.RequireGuide, &s.RequireSubjectExpert); err != nil {
			return nil, fmt.Errorf("error scanning scope: %w", err)
		}
		scopes = append(scopes, s)
	}
	return scopes, rows.Err()
}

func (r *ScopeRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Scope, error) {
	sql, args, err := psql.Select(scopeColumns...).From("scopes").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building scope query: %w", err)
	}

	var s models.Scope
	err = r.db.QueryRow(ctx, sql, args...).Scan(&s.ID, &s.Name, &s.NumberOfPhases, &s.RequireGuide, &s.RequireSubjectExpert)
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrScopeNotFound
		}
		return nil, fmt.Errorf("error retrieving scope: %w", err)
	}
	return &s, nil
}

// GetByID retrieves a scope by ID
func (r *ScopeRepository) GetByID(ctx context.Context, id int64) (*models.Scope, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByName retrieves a scope by its unique name
func (r *ScopeRepository) GetByName(ctx context.Context, name string) (*models.Scope, error) {
	return r.getOne(ctx, squirrel.Eq{"name": name})
}

// Create inserts a scope
func (r *ScopeRepository) Create(ctx context.Context, s *models.Scope) error {
	sql, args, err := psql.Insert("scopes").
		Columns("name", "number_of_phases", "require_guide", "require_subject_expert").
		Values(s.Name, s.NumberOfPhases, s.RequireGuide, s.RequireSubjectExpert).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("error building create scope query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&s.ID); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "") {
			return apperrors.NewConflictError("a scope with this name already exists")
		}
		return fmt.Errorf("error creating scope: %w", err)
	}
	return nil
}
