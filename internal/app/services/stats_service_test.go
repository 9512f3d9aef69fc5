package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/projecthub/internal/app/models"
	"github.com/yigit/projecthub/internal/pkg/apperrors"
	"github.com/yigit/projecthub/internal/pkg/listing"
)

// reviewedTeams returns one team: students 1 and 2, guide 30, reviewed by 31 in
// phases 1 and 2. Student 2 was absent in phase 2.
func reviewedTeams() []models.Team {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return []models.Team{{
		ID:      10,
		ScopeID: idPtr(1),
		GuideID: idPtr(30),
		Project: &models.Project{Title: "Compiler"},
		Members: []models.TeamMember{
			{UserID: 1, IsLeader: true, User: &models.User{ID: 1, Name: "alice"}},
			{UserID: 2, User: &models.User{ID: 2, Name: "bob"}},
		},
		Reviews: []models.Review{
			{
				ID: 100, TeamID: 10, FacultyID: idPtr(31), ReviewPhase: intPtr(1), CreatedAt: base,
				ReviewMarks: []models.ReviewMark{
					{StudentID: 1, Marks: f64Ptr(80)},
					{StudentID: 2, Marks: f64Ptr(90)},
				},
			},
			{
				ID: 101, TeamID: 10, FacultyID: idPtr(31), ReviewPhase: intPtr(2), CreatedAt: base.Add(24 * time.Hour),
				ReviewMarks: []models.ReviewMark{
					{StudentID: 1, Marks: f64Ptr(60)},
					{StudentID: 2, IsAbsent: true},
				},
			},
		},
	}}
}

func statsStudents() []models.User {
	return []models.User{
		student(1, "alice", "CSE", 3),
		student(2, "bob", "CSE", 3),
		student(3, "carol", "ECE", 2),
	}
}

func newStatsService() (*StatsService, *userRepoMock, *teamRepoMock) {
	users := new(userRepoMock)
	teams := new(teamRepoMock)
	return NewStatsService(users, teams, zerolog.Nop()), users, teams
}

func TestStudentStatsScoresAndSorting(t *testing.T) {
	svc, users, teams := newStatsService()
	ctx := context.Background()
	users.On("ListByRole", ctx, models.RoleStudent).Return(statsStudents(), nil)
	teams.On("List", ctx).Return(reviewedTeams(), nil)

	view := listing.NewViewState(10)
	view.ToggleSort("overall")
	view.ToggleSort("overall")
	page, err := svc.StudentStats(ctx, view)
	require.NoError(t, err)
	require.Len(t, page.Items, 3)

	assert.Equal(t, "bob", page.Items[0].Name)
	assert.Equal(t, "90.00", page.Items[0].Overall)
	assert.Equal(t, "alice", page.Items[1].Name)
	assert.Equal(t, "70.00", page.Items[1].Overall)
	assert.Equal(t, "carol", page.Items[2].Name)
	assert.Equal(t, "-", page.Items[2].Overall)
	assert.Equal(t, "-", page.Items[2].ProjectTitle)
}

func TestFilteredStudentsFilters(t *testing.T) {
	svc, users, teams := newStatsService()
	ctx := context.Background()
	users.On("ListByRole", ctx, models.RoleStudent).Return(statsStudents(), nil)
	teams.On("List", ctx).Return(reviewedTeams(), nil)

	cases := []struct {
		name    string
		filters map[string]string
		want    []string
	}{
		{"reviewed by faculty", map[string]string{FilterFaculty: "31"}, []string{"alice", "bob"}},
		{"guide counts as reviewer", map[string]string{FilterFaculty: "30"}, []string{"alice", "bob"}},
		{"phase", map[string]string{FilterPhase: "2"}, []string{"alice", "bob"}},
		{"phase never held", map[string]string{FilterPhase: "3"}, nil},
		{"no team", map[string]string{FilterStatus: "no_team"}, []string{"carol"}},
		{"department and year", map[string]string{FilterDepartment: "cse", FilterYear: "3"}, []string{"alice", "bob"}},
		{"scope", map[string]string{FilterScope: "1"}, []string{"alice", "bob"}},
		{"all filters inactive", map[string]string{FilterPhase: "ALL", FilterDepartment: ""}, []string{"alice", "bob", "carol"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			view := listing.NewViewState(10)
			view.ToggleSort("name")
			for k, v := range tc.filters {
				view.SetFilter(k, v)
			}
			rows, err := svc.FilteredStudents(ctx, view)
			require.NoError(t, err)

			var names []string
			for _, r := range rows {
				names = append(names, r.Name)
			}
			assert.Equal(t, tc.want, names)
		})
	}
}

func TestStudentDetail(t *testing.T) {
	svc, users, teams := newStatsService()
	ctx := context.Background()
	alice := student(1, "alice", "CSE", 3)
	team := reviewedTeams()[0]
	users.On("GetByID", ctx, int64(1)).Return(&alice, nil)
	teams.On("TeamIDOfMember", ctx, int64(1)).Return(idPtr(10), nil)
	teams.On("GetByID", ctx, int64(10)).Return(&team, nil)

	detail, err := svc.StudentDetail(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, detail.Summary.ReviewCount)
	require.Len(t, detail.History.Phases, 2)
	require.Len(t, detail.History.Phases[0].Reviews, 1)
	require.Len(t, detail.History.Phases[0].Reviews[0].Teammates, 1)
	assert.Equal(t, "bob", detail.History.Phases[0].Reviews[0].Teammates[0].StudentName)

	users.On("GetByID", ctx, int64(30)).Return(&models.User{ID: 30, Role: models.RoleFaculty}, nil)
	_, err = svc.StudentDetail(ctx, 30)
	assert.ErrorIs(t, err, apperrors.ErrNotAStudent)
}

func TestFacultyDetail(t *testing.T) {
	svc, users, teams := newStatsService()
	ctx := context.Background()
	users.On("GetByID", ctx, int64(31)).Return(&models.User{ID: 31, Name: "turing", Role: models.RoleFaculty}, nil)
	users.On("GetByID", ctx, int64(1)).Return(&models.User{ID: 1, Role: models.RoleStudent}, nil)
	teams.On("List", ctx).Return(reviewedTeams(), nil)

	detail, err := svc.FacultyDetail(ctx, 31)
	require.NoError(t, err)
	assert.Equal(t, "turing", detail.Summary.Name)
	assert.Equal(t, 2, detail.Summary.ReviewsGiven)
	assert.Len(t, detail.Students, 2)

	_, err = svc.FacultyDetail(ctx, 1)
	assert.ErrorIs(t, err, apperrors.ErrNotFaculty)
}
