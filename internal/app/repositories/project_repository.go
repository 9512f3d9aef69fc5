package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/projecthub/internal/app/models"
	"github.com/yigit/projecthub/internal/pkg/apperrors"
	"github.com/yigit/projecthub/internal/pkg/dberrors"
)

// ProjectRepository handles database operations for projects
type ProjectRepository struct {
	db *pgxpool.Pool
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// selectProjects joins the ids of assigned teams onto each project
func selectProjects() squirrel.SelectBuilder {
	return psql.Select(
		"p.id", "p.title", "p.category", "p.max_team_size", "p.status", "p.scope_id",
		"p.tech_stack", "p.srs", "p.description", "p.created_at",
		"COALESCE(array_agg(t.id ORDER BY t.id) FILTER (WHERE t.id IS NOT NULL), '{}') AS team_ids",
	).From("projects p").
		LeftJoin("teams t ON t.project_id = p.id").
		GroupBy("p.id")
}

func scanProject(row pgx.Row) (*models.Project, error) {
	var p models.Project
	err := row.Scan(
		&p.ID, &p.Title, &p.Category, &p.MaxTeamSize, &p.Status, &p.ScopeID,
		&p.TechStack, &p.SRS, &p.Description, &p.CreatedAt, &p.Teams,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns every project ordered by id
func (r *ProjectRepository) List(ctx context.Context) ([]models.Project, error) {
	sql, args, err := selectProjects().OrderBy("p.id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building project list query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying projects: %w", err)
	}
	defer rows.Close()

	projects := make([]models.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning project: %w", err)
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// GetByID retrieves a project by ID
func (r *ProjectRepository) GetByID(ctx context.Context, id int64) (*models.Project, error) {
	sql, args, err := selectProjects().Where(squirrel.Eq{"p.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building project query: %w", err)
	}

	p, err := scanProject(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrProjectNotFound
		}
		return nil, fmt.Errorf("error retrieving project: %w", err)
	}
	return p, nil
}

// GetByIDs retrieves the listed projects keyed by id
func (r *ProjectRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*models.Project, error) {
	out := make(map[int64]*models.Project, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	sql, args, err := selectProjects().Where(squirrel.Eq{"p.id": ids}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building project query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying projects: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning project: %w", err)
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

// Create inserts a project
func (r *ProjectRepository) Create(ctx context.Context, p *models.Project) error {
	if p.Status == "" {
		p.Status = models.ProjectAvailable
	}
	sql, args, err := psql.Insert("projects").
		Columns("title", "category", "max_team_size", "status", "scope_id", "tech_stack", "srs", "description").
		Values(p.Title, p.Category, p.MaxTeamSize, p.Status, p.ScopeID, p.TechStack, p.SRS, p.Description).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("error building create project query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&p.ID, &p.CreatedAt); err != nil {
		return fmt.Errorf("error creating project: %w", err)
	}
	p.Teams = []int64{}
	return nil
}

// Update saves the editable fields of a project
func (r *ProjectRepository) Update(ctx context.Context, p *models.Project) error {
	sql, args, err := psql.Update("projects").
		Set("title", p.Title).
		Set("category", p.Category).
		Set("max_team_size", p.MaxTeamSize).
		Set("status", p.Status).
		Set("scope_id", p.ScopeID).
		Set("tech_stack", p.TechStack).
		Set("srs", p.SRS).
		Set("description", p.Description).
		Where(squirrel.Eq{"id": p.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building update project query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsForeignKeyError(err) {
			return apperrors.ErrScopeNotFound
		}
		return fmt.Errorf("error updating project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrProjectNotFound
	}
	return nil
}

// Delete removes a project; teams assigned to it keep existing without a project
func (r *ProjectRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrProjectNotFound
	}
	return nil
}

// SetStatus changes the allocation status of a project
func (r *ProjectRepository) SetStatus(ctx context.Context, id int64, status models.ProjectStatus) error {
	return setProjectStatus(ctx, r.db, id, status)
}

// execer is satisfied by both the pool and a transaction
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func setProjectStatus(ctx context.Context, db execer, id int64, status models.ProjectStatus) error {
	tag, err := db.Exec(ctx, `UPDATE projects SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("error updating project status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrProjectNotFound
	}
	return nil
}
