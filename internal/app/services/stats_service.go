package services

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yigit/projecthub/internal/app/models"
	"github.com/yigit/projecthub/internal/app/models/dto"
	"github.com/yigit/projecthub/internal/app/repositories"
	"github.com/yigit/projecthub/internal/app/stats"
	"github.com/yigit/projecthub/internal/pkg/apperrors"
	"github.com/yigit/projecthub/internal/pkg/listing"
)

// FilterPhase narrows statistics to students reviewed in one phase
const FilterPhase = "phase"

// maxSortablePhase bounds the phaseN sort keys
const maxSortablePhase = 10

var studentStatsSortKeys = func() listing.Keys[stats.StudentSummary] {
	keys := listing.Keys[stats.StudentSummary]{
		"name":       func(s stats.StudentSummary) listing.Value { return listing.Text(s.Name) },
		"rollNumber": func(s stats.StudentSummary) listing.Value { return listing.Text(s.RollNumber) },
		"department": func(s stats.StudentSummary) listing.Value { return listing.Text(s.Department) },
		"year":       func(s stats.StudentSummary) listing.Value { return listing.IntOrMissing(s.Year) },
		"project":    func(s stats.StudentSummary) listing.Value { return listing.Text(s.ProjectTitle) },
		"reviews":    func(s stats.StudentSummary) listing.Value { return listing.Number(float64(s.ReviewCount)) },
		"overall":    func(s stats.StudentSummary) listing.Value { return listing.ParseNumber(s.Overall) },
	}
	for p := 1; p <= maxSortablePhase; p++ {
		phase := p
		keys["phase"+strconv.Itoa(phase)] = func(s stats.StudentSummary) listing.Value {
			if score, ok := s.PhaseScores[phase]; ok {
				return listing.Number(score)
			}
			return listing.Number(listing.Missing)
		}
	}
	return keys
}()

var facultyStatsSortKeys = listing.Keys[stats.FacultySummary]{
	"name":              func(s stats.FacultySummary) listing.Value { return listing.Text(s.Name) },
	"department":        func(s stats.FacultySummary) listing.Value { return listing.Text(s.Department) },
	"guidedTeams":       func(s stats.FacultySummary) listing.Value { return listing.Number(float64(s.GuidedTeams)) },
	"expertTeams":       func(s stats.FacultySummary) listing.Value { return listing.Number(float64(s.ExpertTeams)) },
	"pending":           func(s stats.FacultySummary) listing.Value { return listing.Number(float64(s.PendingApprovals)) },
	"reviewsGiven":      func(s stats.FacultySummary) listing.Value { return listing.Number(float64(s.ReviewsGiven)) },
	"studentsEvaluated": func(s stats.FacultySummary) listing.Value { return listing.Number(float64(s.StudentsEvaluated)) },
	"average":           func(s stats.FacultySummary) listing.Value { return listing.ParseNumber(s.Average) },
}

// StudentDetail is the individual statistics drill-down
type StudentDetail struct {
	Summary stats.StudentSummary `json:"summary"`
	History stats.StudentHistory `json:"history"`
}

// IStatsService backs the faculty and individual statistics tabs
type IStatsService interface {
	StudentStats(ctx context.Context, view listing.ViewState) (listing.Page[stats.StudentSummary], error)
	FilteredStudents(ctx context.Context, view listing.ViewState) ([]stats.StudentSummary, error)
	StudentDetail(ctx context.Context, studentID int64) (*StudentDetail, error)
	FacultyStats(ctx context.Context, view listing.ViewState) (listing.Page[stats.FacultySummary], error)
	FacultyDetail(ctx context.Context, facultyID int64) (*stats.FacultyDetail, error)
}

// StatsService derives review statistics from a fresh snapshot on every call
type StatsService struct {
	userRepo repositories.IUserRepository
	teamRepo repositories.ITeamRepository
	logger   zerolog.Logger
}

// NewStatsService creates a new StatsService
func NewStatsService(userRepo repositories.IUserRepository, teamRepo repositories.ITeamRepository, logger zerolog.Logger) *StatsService {
	return &StatsService{userRepo: userRepo, teamRepo: teamRepo, logger: logger}
}

// FilteredStudents returns every student summary that passes the view's search and filters, sorted
func (s *StatsService) FilteredStudents(ctx context.Context, view listing.ViewState) ([]stats.StudentSummary, error) {
	students, err := s.userRepo.ListByRole(ctx, models.RoleStudent)
	if err != nil {
		return nil, err
	}
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	summaries := stats.Summarize(students, teams)

	filter := listing.NewFilter[stats.StudentSummary]().
		Search(view.Search, func(s stats.StudentSummary) []string {
			return []string{s.Name, s.Email, s.RollNumber, s.Department}
		}).
		Equals(view.Filter(FilterDepartment), func(s stats.StudentSummary) string { return s.Department }).
		Equals(view.Filter(FilterYear), func(s stats.StudentSummary) string { return optionalIntText(s.Year) }).
		Equals(view.Filter(FilterScope), func(s stats.StudentSummary) string { return optionalIDText(s.ScopeID) }).
		Matches(view.Filter(FilterStatus), func(s stats.StudentSummary, status string) bool {
			switch strings.ToUpper(status) {
			case dto.TeamStatusInTeam:
				return s.TeamID != nil
			case dto.TeamStatusNoTeam:
				return s.TeamID == nil
			default:
				return false
			}
		}).
		Matches(view.Filter(FilterPhase), func(s stats.StudentSummary, phase string) bool {
			p, err := strconv.Atoi(phase)
			return err == nil && s.History().HasPhase(p)
		}).
		Matches(view.Filter(FilterFaculty), func(s stats.StudentSummary, id string) bool {
			fid, err := strconv.ParseInt(id, 10, 64)
			return err == nil && s.ReviewedBy(fid)
		})

	return listing.SortBy(filter.Apply(summaries), view.Sort, studentStatsSortKeys), nil
}

// StudentStats returns a page of the individual statistics tab
func (s *StatsService) StudentStats(ctx context.Context, view listing.ViewState) (listing.Page[stats.StudentSummary], error) {
	rows, err := s.FilteredStudents(ctx, view)
	if err != nil {
		return listing.Page[stats.StudentSummary]{}, err
	}
	return listing.Paginate(rows, view.Page, view.PageSize), nil
}

// StudentDetail returns the summary and phase-by-phase history of one student
func (s *StatsService) StudentDetail(ctx context.Context, studentID int64) (*StudentDetail, error) {
	student, err := s.userRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if student.Role != models.RoleStudent {
		return nil, apperrors.ErrNotAStudent
	}

	var team *models.Team
	teamID, err := s.teamRepo.TeamIDOfMember(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if teamID != nil {
		team, err = s.teamRepo.GetByID(ctx, *teamID)
		if err != nil {
			return nil, err
		}
	}

	var names map[int64]string
	if team != nil {
		names = stats.MemberNames([]models.Team{*team})
	}
	summary := stats.SummarizeStudent(student, team, names)
	return &StudentDetail{Summary: summary, History: summary.History()}, nil
}

// FacultyStats returns a page of the faculty statistics tab
func (s *StatsService) FacultyStats(ctx context.Context, view listing.ViewState) (listing.Page[stats.FacultySummary], error) {
	faculty, err := s.userRepo.ListByRole(ctx, models.RoleFaculty)
	if err != nil {
		return listing.Page[stats.FacultySummary]{}, err
	}
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return listing.Page[stats.FacultySummary]{}, err
	}

	summaries := stats.FacultyPerformance(faculty, teams)

	filter := listing.NewFilter[stats.FacultySummary]().
		Search(view.Search, func(s stats.FacultySummary) []string {
			return []string{s.Name, s.Email, s.Department}
		}).
		Equals(view.Filter(FilterDepartment), func(s stats.FacultySummary) string { return s.Department })

	sorted := listing.SortBy(filter.Apply(summaries), view.Sort, facultyStatsSortKeys)
	return listing.Paginate(sorted, view.Page, view.PageSize), nil
}

// FacultyDetail returns a faculty member's summary with the students they guide, advise or reviewed
func (s *StatsService) FacultyDetail(ctx context.Context, facultyID int64) (*stats.FacultyDetail, error) {
	faculty, err := s.userRepo.GetByID(ctx, facultyID)
	if err != nil {
		return nil, err
	}
	if faculty.Role != models.RoleFaculty {
		return nil, apperrors.ErrNotFaculty
	}
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	summaries := stats.FacultyPerformance([]models.User{*faculty}, teams)
	return &stats.FacultyDetail{
		Summary:  summaries[0],
		Students: stats.FacultyStudents(facultyID, teams),
	}, nil
}
