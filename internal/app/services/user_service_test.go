package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

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

func newUserService(t *testing.T) (*UserService, *userRepoMock, *teamRepoMock, *recordingPublisher) {
	t.Helper()
	users := new(userRepoMock)
	teams := new(teamRepoMock)
	events := &recordingPublisher{}
	return NewUserService(users, teams, events, zerolog.Nop()), users, teams, events
}

func student(id int64, name, dept string, year int) models.User {
	return models.User{
		ID:         id,
		Name:       name,
		Email:      name + "@college.edu",
		Role:       models.RoleStudent,
		Department: strPtr(dept),
		Year:       intPtr(year),
		RollNumber: strPtr(fmt.Sprintf("21CS%03d", id)),
	}
}

func TestListStudentsFiltersSortsAndPaginates(t *testing.T) {
	svc, users, teams, _ := newUserService(t)
	ctx := context.Background()

	users.On("ListByRole", ctx, models.RoleStudent).Return([]models.User{
		student(1, "carol", "CSE", 3),
		student(2, "alice", "CSE", 3),
		student(3, "bob", "ECE", 2),
		student(4, "dave", "CSE", 4),
	}, nil)
	teams.On("List", ctx).Return([]models.Team{{
		ID:      10,
		Members: []models.TeamMember{{UserID: 2, IsLeader: true}, {UserID: 1}},
		Project: &models.Project{Title: "Compiler"},
	}}, nil)

	view := listing.NewViewState(2)
	view.SetFilter(FilterDepartment, "CSE")
	view.ToggleSort("name")

	page, err := svc.ListStudents(ctx, view)
	require.NoError(t, err)

	assert.Equal(t, 3, page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "alice", page.Items[0].Name)
	assert.True(t, page.Items[0].IsLeader)
	assert.Equal(t, dto.TeamStatusInTeam, page.Items[0].TeamStatus)
	assert.Equal(t, "Compiler", page.Items[0].ProjectTitle)
	assert.Equal(t, "carol", page.Items[1].Name)
	assert.False(t, page.Items[1].IsLeader)

	view.SetFilter(FilterStatus, dto.TeamStatusNoTeam)
	page, err = svc.ListStudents(ctx, view)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "dave", page.Items[0].Name)
	assert.Equal(t, "-", page.Items[0].ProjectTitle)
}

func TestListAdminsMarksMalformedPermissions(t *testing.T) {
	svc, users, _, _ := newUserService(t)
	ctx := context.Background()

	users.On("ListAdmins", ctx).Return([]models.User{
		{ID: 1, Name: "root", Role: models.RoleAdmin},
		{ID: 2, Name: "helper", Role: models.RoleFaculty, IsTemporaryAdmin: true, TempAdminTabs: strPtr(`["teams"]`)},
		{ID: 3, Name: "broken", Role: models.RoleFaculty, IsTemporaryAdmin: true, TempAdminTabs: strPtr(`{not json`)},
	}, nil)

	view := listing.NewViewState(10)
	view.ToggleSort("name")
	page, err := svc.ListAdmins(ctx, view)
	require.NoError(t, err)
	require.Len(t, page.Items, 3)

	assert.Equal(t, "broken", page.Items[0].Name)
	assert.NotEmpty(t, page.Items[0].PermissionError)
	assert.Empty(t, page.Items[0].Tabs)

	assert.Equal(t, "helper", page.Items[1].Name)
	assert.Equal(t, dto.AdminTemporary, page.Items[1].AdminType)
	assert.Equal(t, []models.Tab{models.TabTeams}, page.Items[1].Tabs)

	assert.Equal(t, dto.AdminPermanent, page.Items[2].AdminType)
}

func TestAddFacultyHashesPassword(t *testing.T) {
	svc, users, _, events := newUserService(t)
	ctx := context.Background()

	users.On("Create", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.Role == models.RoleFaculty && u.Email == "grace@college.edu" && u.Password != "password123"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.User).ID = 7
	}).Return(nil)

	resp, err := svc.AddFaculty(ctx, 1, &dto.CreateFacultyRequest{
		Name: " Grace ", Email: "Grace@College.edu", Password: "password123", Department: "CSE",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), resp.ID)
	assert.Equal(t, "Grace", resp.Name)
	assert.Equal(t, []publishedEvent{{websocket.EventCreated, websocket.EntityUser, 7, 1}}, events.all())
}

func TestUpdateUserRejectsStudentFieldsOnFaculty(t *testing.T) {
	svc, users, _, _ := newUserService(t)
	ctx := context.Background()

	users.On("GetByID", ctx, int64(5)).Return(&models.User{ID: 5, Role: models.RoleFaculty}, nil)

	_, err := svc.UpdateUser(ctx, 1, 5, &dto.UpdateUserRequest{Year: intPtr(2)})
	assert.ErrorIs(t, err, apperrors.ErrNotAStudent)
	users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateUserNormalizesRollNumber(t *testing.T) {
	svc, users, _, _ := newUserService(t)
	ctx := context.Background()

	u := student(3, "bob", "ECE", 2)
	users.On("GetByID", ctx, int64(3)).Return(&u, nil)
	users.On("Update", ctx, mock.Anything).Return(nil)

	resp, err := svc.UpdateUser(ctx, 1, 3, &dto.UpdateUserRequest{RollNumber: strPtr(" 21cs099 ")})
	require.NoError(t, err)
	require.NotNil(t, resp.RollNumber)
	assert.Equal(t, "21CS099", *resp.RollNumber)
}

func TestDeleteUserRefusesSelf(t *testing.T) {
	svc, users, _, events := newUserService(t)

	err := svc.DeleteUser(context.Background(), 4, 4)
	assert.ErrorIs(t, err, apperrors.ErrCannotDeleteSelf)
	users.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	assert.Empty(t, events.all())
}

func TestBulkDelete(t *testing.T) {
	t.Run("deduplicates ids", func(t *testing.T) {
		svc, users, _, events := newUserService(t)
		ctx := context.Background()
		users.On("DeleteMany", ctx, []int64{2, 3}).Return(int64(1), nil)

		resp, err := svc.BulkDelete(ctx, 1, &dto.BulkDeleteRequest{UserIDs: []int64{2, 3, 2}})
		require.NoError(t, err)
		assert.Equal(t, 2, resp.Requested)
		assert.Equal(t, int64(1), resp.Deleted)
		assert.Len(t, events.all(), 2)
	})

	t.Run("own id rejects the request", func(t *testing.T) {
		svc, users, _, _ := newUserService(t)
		_, err := svc.BulkDelete(context.Background(), 1, &dto.BulkDeleteRequest{UserIDs: []int64{2, 1}})
		assert.ErrorIs(t, err, apperrors.ErrCannotDeleteSelf)
		users.AssertNotCalled(t, "DeleteMany", mock.Anything, mock.Anything)
	})
}

func TestToggleTempAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("grant stores tabs in console order", func(t *testing.T) {
		svc, users, _, events := newUserService(t)
		users.On("GetByID", ctx, int64(9)).Return(&models.User{ID: 9, Role: models.RoleFaculty}, nil)
		users.On("SetTemporaryAdmin", ctx, int64(9), true, mock.MatchedBy(func(tabs *string) bool {
			return tabs != nil && *tabs == `["students","teams"]`
		})).Return(nil)

		row, err := svc.ToggleTempAdmin(ctx, 1, 9, &dto.TempAdminRequest{
			IsTemporaryAdmin: boolPtr(true),
			Tabs:             []string{"teams", "students", "teams"},
		})
		require.NoError(t, err)
		assert.Equal(t, dto.AdminTemporary, row.AdminType)
		assert.Equal(t, []models.Tab{models.TabStudents, models.TabTeams}, row.Tabs)
		assert.Len(t, events.all(), 1)
	})

	t.Run("revoke clears tabs", func(t *testing.T) {
		svc, users, _, _ := newUserService(t)
		users.On("GetByID", ctx, int64(9)).Return(&models.User{
			ID: 9, Role: models.RoleFaculty, IsTemporaryAdmin: true, TempAdminTabs: strPtr(`["teams"]`),
		}, nil)
		users.On("SetTemporaryAdmin", ctx, int64(9), false, (*string)(nil)).Return(nil)

		row, err := svc.ToggleTempAdmin(ctx, 1, 9, &dto.TempAdminRequest{IsTemporaryAdmin: boolPtr(false)})
		require.NoError(t, err)
		assert.Empty(t, row.Tabs)
	})

	t.Run("grant without tabs", func(t *testing.T) {
		svc, _, _, _ := newUserService(t)
		_, err := svc.ToggleTempAdmin(ctx, 1, 9, &dto.TempAdminRequest{IsTemporaryAdmin: boolPtr(true)})
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	})

	t.Run("unknown tab", func(t *testing.T) {
		svc, _, _, _ := newUserService(t)
		_, err := svc.ToggleTempAdmin(ctx, 1, 9, &dto.TempAdminRequest{
			IsTemporaryAdmin: boolPtr(true), Tabs: []string{"settings"},
		})
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	})

	t.Run("permanent admin", func(t *testing.T) {
		svc, users, _, _ := newUserService(t)
		users.On("GetByID", ctx, int64(2)).Return(&models.User{ID: 2, Role: models.RoleAdmin}, nil)
		_, err := svc.ToggleTempAdmin(ctx, 1, 2, &dto.TempAdminRequest{IsTemporaryAdmin: boolPtr(false)})
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
		users.AssertNotCalled(t, "SetTemporaryAdmin", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestToggleTempAdminCollapsesConcurrentRequests(t *testing.T) {
	svc, users, _, events := newUserService(t)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	users.On("GetByID", ctx, int64(9)).Return(&models.User{ID: 9, Role: models.RoleStudent}, nil)
	users.On("SetTemporaryAdmin", ctx, int64(9), true, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(nil).Once()

	grant := &dto.TempAdminRequest{IsTemporaryAdmin: boolPtr(true), Tabs: []string{"projects"}}

	var wg sync.WaitGroup
	results := make([]*dto.AdminRow, 2)
	errs := make([]error, 3)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], errs[0] = svc.ToggleTempAdmin(ctx, 1, 9, grant)
	}()
	<-started

	wg.Add(2)
	go func() {
		defer wg.Done()
		results[1], errs[1] = svc.ToggleTempAdmin(ctx, 1, 9, grant)
	}()
	go func() {
		defer wg.Done()
		_, errs[2] = svc.ToggleTempAdmin(ctx, 1, 9, &dto.TempAdminRequest{IsTemporaryAdmin: boolPtr(false)})
	}()

	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Same(t, results[0], results[1])
	assert.ErrorIs(t, errs[2], apperrors.ErrRequestInFlight)
	users.AssertNumberOfCalls(t, "SetTemporaryAdmin", 1)
	assert.Len(t, events.all(), 1)
}

func TestToggleTempAdminSharesFailureWithDuplicates(t *testing.T) {
	svc, users, _, events := newUserService(t)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	users.On("GetByID", ctx, int64(9)).Return(&models.User{ID: 9, Role: models.RoleStudent}, nil)
	users.On("SetTemporaryAdmin", ctx, int64(9), true, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(apperrors.ErrUserNotFound).Once()

	grant := &dto.TempAdminRequest{IsTemporaryAdmin: boolPtr(true), Tabs: []string{"projects"}}

	var wg sync.WaitGroup
	errs := make([]error, 3)

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, errs[0] = svc.ToggleTempAdmin(ctx, 1, 9, grant)
	}()
	<-started

	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[1] = svc.ToggleTempAdmin(ctx, 1, 9, grant)
	}()
	go func() {
		defer wg.Done()
		_, errs[2] = svc.ToggleTempAdmin(ctx, 1, 9, &dto.TempAdminRequest{IsTemporaryAdmin: boolPtr(false)})
	}()

	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.ErrorIs(t, errs[0], apperrors.ErrUserNotFound)
	assert.ErrorIs(t, errs[1], apperrors.ErrUserNotFound)
	assert.NotErrorIs(t, errs[1], apperrors.ErrRequestInFlight)
	assert.ErrorIs(t, errs[2], apperrors.ErrRequestInFlight)
	users.AssertNumberOfCalls(t, "SetTemporaryAdmin", 1)
	assert.Empty(t, events.all())
}
