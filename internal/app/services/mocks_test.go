package services

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/yigit/projecthub/internal/app/models"
	"github.com/yigit/projecthub/internal/app/repositories"
	"github.com/yigit/projecthub/internal/pkg/websocket"
)

type userRepoMock struct{ mock.Mock }

var _ repositories.IUserRepository = (*userRepoMock)(nil)

func (m *userRepoMock) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *userRepoMock) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *userRepoMock) GetByIDs(ctx context.Context, ids []int64) ([]models.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *userRepoMock) ListByRole(ctx context.Context, role models.RoleType) ([]models.User, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *userRepoMock) ListAdmins(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *userRepoMock) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *userRepoMock) Update(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *userRepoMock) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *userRepoMock) DeleteMany(ctx context.Context, ids []int64) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *userRepoMock) SetTemporaryAdmin(ctx context.Context, id int64, granted bool, tabs *string) error {
	return m.Called(ctx, id, granted, tabs).Error(0)
}

func (m *userRepoMock) AdminExists(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

type teamRepoMock struct{ mock.Mock }

var _ repositories.ITeamRepository = (*teamRepoMock)(nil)

func (m *teamRepoMock) List(ctx context.Context) ([]models.Team, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Team), args.Error(1)
}

func (m *teamRepoMock) GetByID(ctx context.Context, id int64) (*models.Team, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *teamRepoMock) TeamIDOfMember(ctx context.Context, userID int64) (*int64, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*int64), args.Error(1)
}

func (m *teamRepoMock) Create(ctx context.Context, team *models.Team, memberIDs []int64, leaderID *int64) error {
	return m.Called(ctx, team, memberIDs, leaderID).Error(0)
}

func (m *teamRepoMock) AddMember(ctx context.Context, teamID, userID int64) error {
	return m.Called(ctx, teamID, userID).Error(0)
}

func (m *teamRepoMock) RemoveMember(ctx context.Context, teamID, userID int64) error {
	return m.Called(ctx, teamID, userID).Error(0)
}

func (m *teamRepoMock) SetLeader(ctx context.Context, teamID, userID int64) error {
	return m.Called(ctx, teamID, userID).Error(0)
}

func (m *teamRepoMock) SetProject(ctx context.Context, teamID int64, projectID *int64) error {
	return m.Called(ctx, teamID, projectID).Error(0)
}

func (m *teamRepoMock) SetFaculty(ctx context.Context, teamID int64, role models.FacultyRole, facultyID *int64) error {
	return m.Called(ctx, teamID, role, facultyID).Error(0)
}

func (m *teamRepoMock) MemberCountForProject(ctx context.Context, projectID int64) (int, error) {
	args := m.Called(ctx, projectID)
	return args.Int(0), args.Error(1)
}

type projectRepoMock struct{ mock.Mock }

var _ repositories.IProjectRepository = (*projectRepoMock)(nil)

func (m *projectRepoMock) List(ctx context.Context) ([]models.Project, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Project), args.Error(1)
}

func (m *projectRepoMock) GetByID(ctx context.Context, id int64) (*models.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *projectRepoMock) Update(ctx context.Context, project *models.Project) error {
	return m.Called(ctx, project).Error(0)
}

func (m *projectRepoMock) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *projectRepoMock) SetStatus(ctx context.Context, id int64, status models.ProjectStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

type reviewRepoMock struct{ mock.Mock }

var _ repositories.IReviewRepository = (*reviewRepoMock)(nil)

func (m *reviewRepoMock) ListByTeams(ctx context.Context, teamIDs []int64) ([]models.Review, error) {
	args := m.Called(ctx, teamIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Review), args.Error(1)
}

func (m *reviewRepoMock) GetByID(ctx context.Context, id int64) (*models.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *reviewRepoMock) GetMark(ctx context.Context, id int64) (*models.ReviewMark, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReviewMark), args.Error(1)
}

func (m *reviewRepoMock) UpdateMark(ctx context.Context, mark *models.ReviewMark) error {
	return m.Called(ctx, mark).Error(0)
}

func (m *reviewRepoMock) UpdateReview(ctx context.Context, review *models.Review) error {
	return m.Called(ctx, review).Error(0)
}

type scopeRepoMock struct{ mock.Mock }

var _ repositories.IScopeRepository = (*scopeRepoMock)(nil)

func (m *scopeRepoMock) List(ctx context.Context) ([]models.Scope, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Scope), args.Error(1)
}

func (m *scopeRepoMock) GetByID(ctx context.Context, id int64) (*models.Scope, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Scope), args.Error(1)
}

func (m *scopeRepoMock) GetByName(ctx context.Context, name string) (*models.Scope, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Scope), args.Error(1)
}

func (m *scopeRepoMock) Create(ctx context.Context, scope *models.Scope) error {
	return m.Called(ctx, scope).Error(0)
}

type publishedEvent struct {
	Type     websocket.EventType
	Entity   string
	EntityID int64
	ActorID  int64
}

// recordingPublisher captures events instead of broadcasting them
type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(eventType websocket.EventType, entity string, entityID, actorID int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{eventType, entity, entityID, actorID})
}

func (p *recordingPublisher) all() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent(nil), p.events...)
}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func f64Ptr(f float64) *float64 { return &f }

func boolPtr(b bool) *bool { return &b }

func idPtr(n int64) *int64 { return &n }
