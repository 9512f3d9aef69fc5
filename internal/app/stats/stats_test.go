package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/projecthub/internal/app/models"
)

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }
func intp(v int) *int        { return &v }
func str(v string) *string   { return &v }

var base = time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

func review(id int64, phase *int, minutes int, faculty *int64, marks ...models.ReviewMark) models.Review {
	return models.Review{
		ID:          id,
		TeamID:      1,
		FacultyID:   faculty,
		ReviewPhase: phase,
		Status:      "COMPLETED",
		CreatedAt:   base.Add(time.Duration(minutes) * time.Minute),
		ReviewMarks: marks,
	}
}

func mark(student int64, v *float64, absent bool) models.ReviewMark {
	return models.ReviewMark{StudentID: student, Marks: v, IsAbsent: absent}
}

func TestBuildHistoryNoReviews(t *testing.T) {
	h := BuildHistory(7, nil, nil)
	assert.Equal(t, NotAvailable, h.Overall)
	assert.Nil(t, h.OverallScore)
	assert.Empty(t, h.Phases)
	assert.Equal(t, 0, h.ReviewCount)
}

func TestBuildHistoryAbsentMarksExcluded(t *testing.T) {
	reviews := []models.Review{
		review(1, intp(1), 0, nil, mark(7, f64(0), true)),
		review(2, intp(1), 5, nil, mark(7, f64(80), false)),
		review(3, intp(2), 0, nil, mark(7, f64(10), true)),
	}

	h := BuildHistory(7, reviews, nil)
	require.Len(t, h.Phases, 2)

	require.NotNil(t, h.Phases[0].Score)
	assert.Equal(t, 80.0, *h.Phases[0].Score)
	assert.False(t, h.Phases[0].Reviews[0].Counted)
	assert.True(t, h.Phases[0].Reviews[1].Counted)

	// phase 2 only has an absent mark, so it has no score and does not drag the average down
	assert.Nil(t, h.Phases[1].Score)
	require.NotNil(t, h.OverallScore)
	assert.Equal(t, 80.0, *h.OverallScore)
	assert.Equal(t, "80.00", h.Overall)
	assert.Equal(t, 3, h.ReviewCount)
}

func TestBuildHistoryFirstMarkPerPhaseOnly(t *testing.T) {
	// created out of order: the earliest review in phase 1 holds 60
	reviews := []models.Review{
		review(1, intp(1), 30, nil, mark(7, f64(100), false)),
		review(2, intp(1), 0, nil, mark(7, f64(60), false)),
		review(3, intp(2), 0, nil, mark(7, f64(90), false)),
	}

	h := BuildHistory(7, reviews, nil)
	require.Len(t, h.Phases, 2)
	assert.Equal(t, int64(2), h.Phases[0].Reviews[0].ReviewID)
	assert.Equal(t, 60.0, *h.Phases[0].Score)
	assert.Equal(t, map[int]float64{1: 60, 2: 90}, h.PhaseScores())
	assert.Equal(t, 75.0, *h.OverallScore)
}

func TestBuildHistoryDefaultsPhaseAndSkipsNullMarks(t *testing.T) {
	reviews := []models.Review{
		review(1, nil, 0, nil, mark(7, nil, false)),
		review(2, nil, 1, nil, mark(7, f64(55.5), false)),
	}

	h := BuildHistory(7, reviews, nil)
	require.Len(t, h.Phases, 1)
	assert.Equal(t, 1, h.Phases[0].Phase)
	assert.True(t, h.HasPhase(1))
	assert.False(t, h.HasPhase(2))
	assert.Equal(t, "55.50", h.Overall)
}

func TestBuildHistoryTeammatesAndNames(t *testing.T) {
	reviews := []models.Review{
		review(1, intp(1), 0, nil, mark(7, f64(70), false), mark(8, f64(65), false)),
	}

	h := BuildHistory(7, reviews, map[int64]string{7: "Ada", 8: "Grace"})
	view := h.Phases[0].Reviews[0]
	require.NotNil(t, view.Mark)
	assert.Equal(t, "Ada", view.Mark.StudentName)
	require.Len(t, view.Teammates, 1)
	assert.Equal(t, "Grace", view.Teammates[0].StudentName)
}

func TestBuildHistoryStudentWithoutMark(t *testing.T) {
	reviews := []models.Review{review(1, intp(1), 0, nil, mark(8, f64(65), false))}
	h := BuildHistory(7, reviews, nil)
	require.Len(t, h.Phases, 1)
	assert.Nil(t, h.Phases[0].Reviews[0].Mark)
	assert.Equal(t, NotAvailable, h.Overall)
}

func TestParseCriteria(t *testing.T) {
	assert.Equal(t, map[string]float64{"design": 8, "demo": 9}, ParseCriteria(str(`{"design":8,"demo":9}`)))
	assert.Equal(t, map[string]float64{"design": 8, "demo": 9},
		ParseCriteria(str(`[{"criterion":"design","marks":8},{"name":"demo","marks":9}]`)))

	assert.Nil(t, ParseCriteria(nil))
	assert.Nil(t, ParseCriteria(str("")))
	assert.Nil(t, ParseCriteria(str("{not json")))
	assert.Nil(t, ParseCriteria(str(`"text"`)))
	assert.Nil(t, ParseCriteria(str(`{}`)))
}

func TestCriteriaParseFailureDoesNotAffectScore(t *testing.T) {
	m := mark(7, f64(42), false)
	m.CriterionMarks = str("<<broken>>")

	h := BuildHistory(7, []models.Review{review(1, intp(1), 0, nil, m)}, nil)
	view := h.Phases[0].Reviews[0]
	require.NotNil(t, view.Mark)
	assert.Nil(t, view.Mark.Criteria)
	assert.Equal(t, "42.00", h.Overall)
}

func TestFormatScore(t *testing.T) {
	assert.Equal(t, NotAvailable, FormatScore(nil))
	assert.Equal(t, "0.00", FormatScore(f64(0)))
	assert.Equal(t, "66.67", FormatScore(f64(200.0/3)))
}

func sampleTeams() ([]models.User, []models.User, []models.Team) {
	students := []models.User{
		{ID: 7, Name: "Ada", Email: "ada@college.edu", RollNumber: str("21CS001"), Department: str("CSE"), Year: intp(3)},
		{ID: 8, Name: "Grace", Email: "grace@college.edu"},
		{ID: 9, Name: "Linus", Email: "linus@college.edu"},
	}
	faculty := []models.User{
		{ID: 100, Name: "Dr. Knuth", Role: models.RoleFaculty, Department: str("CSE")},
		{ID: 101, Name: "Dr. Hopper", Role: models.RoleFaculty},
		{ID: 102, Name: "Dr. Idle", Role: models.RoleFaculty},
	}
	pending := models.ApprovalPending
	approved := models.ApprovalApproved

	teams := []models.Team{
		{
			ID:              1,
			ScopeID:         i64(5),
			GuideID:         i64(100),
			GuideStatus:     &approved,
			SubjectExpertID: i64(101),
			ExpertStatus:    &pending,
			Project:         &models.Project{ID: 3, Title: "Compiler"},
			Members: []models.TeamMember{
				{UserID: 7, IsLeader: true, User: &students[0]},
				{UserID: 8, User: &students[1]},
			},
			Reviews: []models.Review{
				review(1, intp(1), 0, i64(100), mark(7, f64(80), false), mark(8, f64(60), false)),
				review(2, intp(2), 0, i64(101), mark(7, f64(90), false), mark(8, nil, true)),
			},
		},
	}
	return students, faculty, teams
}

func TestSummarize(t *testing.T) {
	students, _, teams := sampleTeams()

	rows := Summarize(students, teams)
	require.Len(t, rows, 3)

	ada := rows[0]
	assert.Equal(t, "21CS001", ada.RollNumber)
	assert.Equal(t, "Compiler", ada.ProjectTitle)
	assert.Equal(t, int64(1), *ada.TeamID)
	assert.Equal(t, []int{1, 2}, ada.Phases)
	assert.Equal(t, 2, ada.ReviewCount)
	assert.Equal(t, "85.00", ada.Overall)
	assert.True(t, ada.ReviewedBy(100))
	assert.True(t, ada.ReviewedBy(101))
	assert.False(t, ada.ReviewedBy(102))

	grace := rows[1]
	assert.Equal(t, "60.00", grace.Overall)
	assert.Equal(t, map[int]float64{1: 60}, grace.PhaseScores)

	linus := rows[2]
	assert.Nil(t, linus.TeamID)
	assert.Equal(t, NotAvailable, linus.ProjectTitle)
	assert.Equal(t, NotAvailable, linus.Overall)
	assert.Equal(t, 0, linus.ReviewCount)
	assert.Empty(t, linus.History().Phases)
}

func TestFacultyPerformance(t *testing.T) {
	_, faculty, teams := sampleTeams()

	rows := FacultyPerformance(faculty, teams)
	require.Len(t, rows, 3)

	knuth := rows[0]
	assert.Equal(t, 1, knuth.GuidedTeams)
	assert.Equal(t, 0, knuth.ExpertTeams)
	assert.Equal(t, 0, knuth.PendingApprovals)
	assert.Equal(t, 1, knuth.ReviewsGiven)
	assert.Equal(t, 2, knuth.StudentsEvaluated)
	assert.Equal(t, "70.00", knuth.Average)
	assert.Equal(t, "CSE", knuth.Department)

	hopper := rows[1]
	assert.Equal(t, 1, hopper.ExpertTeams)
	assert.Equal(t, 1, hopper.PendingApprovals)
	// the absent mark for student 8 is not counted
	assert.Equal(t, 1, hopper.StudentsEvaluated)
	assert.Equal(t, "90.00", hopper.Average)

	idle := rows[2]
	assert.Equal(t, 0, idle.ReviewsGiven)
	assert.Nil(t, idle.AverageMark)
	assert.Equal(t, NotAvailable, idle.Average)
}

func TestFacultyStudents(t *testing.T) {
	_, _, teams := sampleTeams()

	rows := FacultyStudents(101, teams)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(7), rows[0].StudentID)
	assert.Equal(t, int64(8), rows[1].StudentID)

	assert.Empty(t, FacultyStudents(102, teams))
}
