package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yigit/projecthub/internal/app/models"
	"github.com/yigit/projecthub/internal/app/models/dto"
	"github.com/yigit/projecthub/internal/pkg/apperrors"
	"github.com/yigit/projecthub/internal/pkg/listing"
	"github.com/yigit/projecthub/internal/pkg/websocket"
)

type teamFixture struct {
	svc      *TeamService
	users    *userRepoMock
	teams    *teamRepoMock
	projects *projectRepoMock
	events   *recordingPublisher
}

func newTeamFixture() *teamFixture {
	f := &teamFixture{
		users:    new(userRepoMock),
		teams:    new(teamRepoMock),
		projects: new(projectRepoMock),
		events:   &recordingPublisher{},
	}
	f.svc = NewTeamService(f.teams, f.projects, f.users, f.events, zerolog.Nop())
	return f
}

// freeStudents makes every id an existing student without a team
func (f *teamFixture) freeStudents(ctx context.Context, ids ...int64) {
	found := make([]models.User, 0, len(ids))
	for _, id := range ids {
		found = append(found, models.User{ID: id, Role: models.RoleStudent})
		f.teams.On("TeamIDOfMember", ctx, id).Return(nil, nil)
	}
	f.users.On("GetByIDs", ctx, ids).Return(found, nil)
}

func TestParseFacultyRole(t *testing.T) {
	for in, want := range map[string]models.FacultyRole{
		"guide":          models.FacultyRoleGuide,
		"GUIDE":          models.FacultyRoleGuide,
		"subject_expert": models.FacultyRoleSubjectExpert,
		"expert":         models.FacultyRoleSubjectExpert,
	} {
		got, err := ParseFacultyRole(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFacultyRole("reviewer")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestListTeamsFilters(t *testing.T) {
	f := newTeamFixture()
	ctx := context.Background()

	f.teams.On("List", ctx).Return([]models.Team{
		{ID: 1, ProjectID: idPtr(5), GuideID: idPtr(30), Members: []models.TeamMember{
			{UserID: 1, IsLeader: true, User: &models.User{Name: "alice"}},
		}},
		{ID: 2, SubjectExpertID: idPtr(30)},
		{ID: 3, GuideID: idPtr(31)},
	}, nil)

	view := listing.NewViewState(10)
	view.SetFilter(FilterFaculty, "30")
	page, err := f.svc.ListTeams(ctx, view)
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalItems)

	view.SetFilter(FilterStatus, dto.TeamNoProject)
	page, err = f.svc.ListTeams(ctx, view)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(2), page.Items[0].ID)

	view.Reset()
	view.SetSearch("alice")
	page, err = f.svc.ListTeams(ctx, view)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "alice", page.Items[0].LeaderName)
}

func TestCreateTeam(t *testing.T) {
	ctx := context.Background()

	t.Run("leader defaults to first member and faculty are approved", func(t *testing.T) {
		f := newTeamFixture()
		f.freeStudents(ctx, 4, 5)
		f.users.On("GetByID", ctx, int64(30)).Return(&models.User{ID: 30, Role: models.RoleFaculty}, nil)
		f.projects.On("GetByID", ctx, int64(8)).Return(&models.Project{ID: 8, MaxTeamSize: 4, ScopeID: idPtr(2)}, nil)
		f.teams.On("MemberCountForProject", ctx, int64(8)).Return(0, nil)
		f.teams.On("Create", ctx, mock.MatchedBy(func(team *models.Team) bool {
			return team.GuideStatus != nil && *team.GuideStatus == models.ApprovalApproved &&
				team.ScopeID != nil && *team.ScopeID == 2
		}), []int64{4, 5}, idPtr(4)).Run(func(args mock.Arguments) {
			args.Get(1).(*models.Team).ID = 11
		}).Return(nil)
		f.teams.On("GetByID", ctx, int64(11)).Return(&models.Team{
			ID: 11, ProjectID: idPtr(8), Members: []models.TeamMember{{UserID: 4, IsLeader: true}, {UserID: 5}},
		}, nil)

		row, err := f.svc.CreateTeam(ctx, 1, &dto.CreateTeamRequest{
			MemberIDs: []int64{4, 5, 4}, ProjectID: idPtr(8), GuideID: idPtr(30),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(11), row.ID)
		assert.Equal(t, 2, row.MemberCount)
		assert.Equal(t, []publishedEvent{
			{websocket.EventCreated, websocket.EntityTeam, 11, 1},
			{websocket.EventUpdated, websocket.EntityProject, 8, 1},
		}, f.events.all())
	})

	t.Run("project size limit", func(t *testing.T) {
		f := newTeamFixture()
		f.freeStudents(ctx, 4, 5)
		f.projects.On("GetByID", ctx, int64(8)).Return(&models.Project{ID: 8, MaxTeamSize: 3}, nil)
		f.teams.On("MemberCountForProject", ctx, int64(8)).Return(2, nil)

		_, err := f.svc.CreateTeam(ctx, 1, &dto.CreateTeamRequest{MemberIDs: []int64{4, 5}, ProjectID: idPtr(8)})
		assert.ErrorIs(t, err, apperrors.ErrTeamFull)
		f.teams.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("same guide and expert", func(t *testing.T) {
		f := newTeamFixture()
		f.freeStudents(ctx, 4)
		_, err := f.svc.CreateTeam(ctx, 1, &dto.CreateTeamRequest{
			MemberIDs: []int64{4}, GuideID: idPtr(30), SubjectExpertID: idPtr(30),
		})
		assert.ErrorIs(t, err, apperrors.ErrFacultyConflict)
	})

	t.Run("leader outside members", func(t *testing.T) {
		f := newTeamFixture()
		f.freeStudents(ctx, 4)
		_, err := f.svc.CreateTeam(ctx, 1, &dto.CreateTeamRequest{MemberIDs: []int64{4}, LeaderID: idPtr(9)})
		assert.ErrorIs(t, err, apperrors.ErrNotTeamMember)
	})

	t.Run("student already in a team", func(t *testing.T) {
		f := newTeamFixture()
		f.users.On("GetByIDs", ctx, []int64{4}).Return([]models.User{{ID: 4, Role: models.RoleStudent}}, nil)
		f.teams.On("TeamIDOfMember", ctx, int64(4)).Return(idPtr(2), nil)
		_, err := f.svc.CreateTeam(ctx, 1, &dto.CreateTeamRequest{MemberIDs: []int64{4}})
		assert.ErrorIs(t, err, apperrors.ErrAlreadyInTeam)
	})

	t.Run("non student member", func(t *testing.T) {
		f := newTeamFixture()
		f.users.On("GetByIDs", ctx, []int64{30}).Return([]models.User{{ID: 30, Role: models.RoleFaculty}}, nil)
		_, err := f.svc.CreateTeam(ctx, 1, &dto.CreateTeamRequest{MemberIDs: []int64{30}})
		assert.ErrorIs(t, err, apperrors.ErrNotAStudent)
	})
}

func TestAssignProject(t *testing.T) {
	ctx := context.Background()

	t.Run("same project is a no-op", func(t *testing.T) {
		f := newTeamFixture()
		f.teams.On("GetByID", ctx, int64(1)).Return(&models.Team{ID: 1, ProjectID: idPtr(8)}, nil)

		row, err := f.svc.AssignProject(ctx, 1, 1, 8)
		require.NoError(t, err)
		assert.Equal(t, int64(1), row.ID)
		f.teams.AssertNotCalled(t, "SetProject", mock.Anything, mock.Anything, mock.Anything)
		assert.Empty(t, f.events.all())
	})

	t.Run("replaces previous project", func(t *testing.T) {
		f := newTeamFixture()
		f.teams.On("GetByID", ctx, int64(1)).Return(&models.Team{
			ID: 1, ProjectID: idPtr(7), Members: []models.TeamMember{{UserID: 4}, {UserID: 5}},
		}, nil)
		f.projects.On("GetByID", ctx, int64(8)).Return(&models.Project{ID: 8, MaxTeamSize: 2}, nil)
		f.teams.On("MemberCountForProject", ctx, int64(8)).Return(0, nil)
		f.teams.On("SetProject", ctx, int64(1), idPtr(8)).Return(nil)

		_, err := f.svc.AssignProject(ctx, 1, 1, 8)
		require.NoError(t, err)
		assert.Contains(t, f.events.all(), publishedEvent{websocket.EventUpdated, websocket.EntityProject, 7, 1})
	})

	t.Run("team too large for project", func(t *testing.T) {
		f := newTeamFixture()
		f.teams.On("GetByID", ctx, int64(1)).Return(&models.Team{
			ID: 1, Members: []models.TeamMember{{UserID: 4}, {UserID: 5}, {UserID: 6}},
		}, nil)
		f.projects.On("GetByID", ctx, int64(8)).Return(&models.Project{ID: 8, MaxTeamSize: 2}, nil)
		f.teams.On("MemberCountForProject", ctx, int64(8)).Return(0, nil)

		_, err := f.svc.AssignProject(ctx, 1, 1, 8)
		assert.ErrorIs(t, err, apperrors.ErrTeamFull)
	})
}

func TestUnassignProjectWithoutProject(t *testing.T) {
	f := newTeamFixture()
	ctx := context.Background()
	f.teams.On("GetByID", ctx, int64(1)).Return(&models.Team{ID: 1}, nil)

	_, err := f.svc.UnassignProject(ctx, 1, 1)
	assert.ErrorIs(t, err, apperrors.ErrNoProjectAssigned)
}

func TestAssignFacultyConflict(t *testing.T) {
	f := newTeamFixture()
	ctx := context.Background()
	f.teams.On("GetByID", ctx, int64(1)).Return(&models.Team{ID: 1, GuideID: idPtr(30)}, nil)
	f.users.On("GetByID", ctx, int64(30)).Return(&models.User{ID: 30, Role: models.RoleFaculty}, nil)

	_, err := f.svc.AssignFaculty(ctx, 1, 1, 30, models.FacultyRoleSubjectExpert)
	assert.ErrorIs(t, err, apperrors.ErrFacultyConflict)

	f.users.On("GetByID", ctx, int64(4)).Return(&models.User{ID: 4, Role: models.RoleStudent}, nil)
	_, err = f.svc.AssignFaculty(ctx, 1, 1, 4, models.FacultyRoleGuide)
	assert.ErrorIs(t, err, apperrors.ErrNotFaculty)
}

func TestAddMemberChecksCapacity(t *testing.T) {
	f := newTeamFixture()
	ctx := context.Background()
	f.teams.On("GetByID", ctx, int64(1)).Return(&models.Team{
		ID: 1, ProjectID: idPtr(8), Members: []models.TeamMember{{UserID: 4}},
	}, nil)
	f.freeStudents(ctx, 5)
	f.projects.On("GetByID", ctx, int64(8)).Return(&models.Project{ID: 8, MaxTeamSize: 1}, nil)
	f.teams.On("MemberCountForProject", ctx, int64(8)).Return(1, nil)

	_, err := f.svc.AddMember(ctx, 1, 1, 5)
	assert.ErrorIs(t, err, apperrors.ErrTeamFull)

	_, err = f.svc.AddMember(ctx, 1, 1, 4)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyInTeam)
}
