package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/projecthub/internal/app/models"
)

// psql builds every query with $n placeholders
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// IUserRepository reads and writes accounts of every role
type IUserRepository interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []int64) ([]models.User, error)
	ListByRole(ctx context.Context, role models.RoleType) ([]models.User, error)
	ListAdmins(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id int64) error
	DeleteMany(ctx context.Context, ids []int64) (int64, error)
	SetTemporaryAdmin(ctx context.Context, id int64, granted bool, tabs *string) error
	AdminExists(ctx context.Context) (bool, error)
}

// ITeamRepository reads fully assembled teams and applies membership and assignment changes
type ITeamRepository interface {
	List(ctx context.Context) ([]models.Team, error)
	GetByID(ctx context.Context, id int64) (*models.Team, error)
	TeamIDOfMember(ctx context.Context, userID int64) (*int64, error)
	Create(ctx context.Context, team *models.Team, memberIDs []int64, leaderID *int64) error
	AddMember(ctx context.Context, teamID, userID int64) error
	RemoveMember(ctx context.Context, teamID, userID int64) error
	SetLeader(ctx context.Context, teamID, userID int64) error
	SetProject(ctx context.Context, teamID int64, projectID *int64) error
	SetFaculty(ctx context.Context, teamID int64, role models.FacultyRole, facultyID *int64) error
	MemberCountForProject(ctx context.Context, projectID int64) (int, error)
}

// IProjectRepository reads and writes projects
type IProjectRepository interface {
	List(ctx context.Context) ([]models.Project, error)
	GetByID(ctx context.Context, id int64) (*models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id int64) error
	SetStatus(ctx context.Context, id int64, status models.ProjectStatus) error
}

// IReviewRepository reads reviews with their marks and edits them
type IReviewRepository interface {
	ListByTeams(ctx context.Context, teamIDs []int64) ([]models.Review, error)
	GetByID(ctx context.Context, id int64) (*models.Review, error)
	GetMark(ctx context.Context, id int64) (*models.ReviewMark, error)
	UpdateMark(ctx context.Context, mark *models.ReviewMark) error
	UpdateReview(ctx context.Context, review *models.Review) error
}

// IScopeRepository reads and creates scopes
type IScopeRepository interface {
	List(ctx context.Context) ([]models.Scope, error)
	GetByID(ctx context.Context, id int64) (*models.Scope, error)
	GetByName(ctx context.Context, name string) (*models.Scope, error)
	Create(ctx context.Context, scope *models.Scope) error
}

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository    *UserRepository
	TeamRepository    *TeamRepository
	ProjectRepository *ProjectRepository
	ReviewRepository  *ReviewRepository
	ScopeRepository   *ScopeRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	users := NewUserRepository(db)
	projects := NewProjectRepository(db)
	reviews := NewReviewRepository(db)
	return &Repositories{
		UserRepository:    users,
		TeamRepository:    NewTeamRepository(db, users, projects, reviews),
		ProjectRepository: projects,
		ReviewRepository:  reviews,
		ScopeRepository:   NewScopeRepository(db),
	}
}
