package services

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yigit/projecthub/internal/app/models"
	"github.com/yigit/projecthub/internal/app/models/dto"
	"github.com/yigit/projecthub/internal/app/repositories"
	"github.com/yigit/projecthub/internal/pkg/apperrors"
	"github.com/yigit/projecthub/internal/pkg/listing"
	"github.com/yigit/projecthub/internal/pkg/websocket"
)

// FilterFaculty narrows teams and statistics to one guide, expert or reviewer
const FilterFaculty = "facultyId"

var teamSortKeys = listing.Keys[dto.TeamRow]{
	"id":      func(r dto.TeamRow) listing.Value { return listing.Number(float64(r.ID)) },
	"project": func(r dto.TeamRow) listing.Value { return listing.Text(r.ProjectTitle) },
	"leader":  func(r dto.TeamRow) listing.Value { return listing.Text(r.LeaderName) },
	"members": func(r dto.TeamRow) listing.Value { return listing.Number(float64(r.MemberCount)) },
	"reviews": func(r dto.TeamRow) listing.Value { return listing.Number(float64(r.ReviewCount)) },
	"guide": func(r dto.TeamRow) listing.Value {
		if r.Guide == nil {
			return listing.Text("")
		}
		return listing.Text(r.Guide.Name)
	},
}

// ParseFacultyRole reads a role from a path or body value such as "guide" or "SUBJECT_EXPERT"
func ParseFacultyRole(s string) (models.FacultyRole, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(models.FacultyRoleGuide):
		return models.FacultyRoleGuide, nil
	case string(models.FacultyRoleSubjectExpert), "EXPERT", "SUBJECT-EXPERT":
		return models.FacultyRoleSubjectExpert, nil
	default:
		return "", apperrors.NewBadRequestError("role must be GUIDE or SUBJECT_EXPERT")
	}
}

// ITeamService backs the teams tab and its callbacks
type ITeamService interface {
	ListTeams(ctx context.Context, view listing.ViewState) (listing.Page[dto.TeamRow], error)
	CreateTeam(ctx context.Context, actorID int64, req *dto.CreateTeamRequest) (*dto.TeamRow, error)
	AddMember(ctx context.Context, actorID, teamID, userID int64) (*dto.TeamRow, error)
	RemoveMember(ctx context.Context, actorID, teamID, userID int64) (*dto.TeamRow, error)
	ChangeLeader(ctx context.Context, actorID, teamID, userID int64) (*dto.TeamRow, error)
	AssignProject(ctx context.Context, actorID, teamID, projectID int64) (*dto.TeamRow, error)
	UnassignProject(ctx context.Context, actorID, teamID int64) (*dto.TeamRow, error)
	AssignFaculty(ctx context.Context, actorID, teamID, facultyID int64, role models.FacultyRole) (*dto.TeamRow, error)
	UnassignFaculty(ctx context.Context, actorID, teamID int64, role models.FacultyRole) (*dto.TeamRow, error)
}

// TeamService manages team membership and assignments
type TeamService struct {
	teamRepo    repositories.ITeamRepository
	projectRepo repositories.IProjectRepository
	userRepo    repositories.IUserRepository
	events      EventPublisher
	logger      zerolog.Logger
}

// NewTeamService creates a new TeamService
func NewTeamService(
	teamRepo repositories.ITeamRepository,
	projectRepo repositories.IProjectRepository,
	userRepo repositories.IUserRepository,
	events EventPublisher,
	logger zerolog.Logger,
) *TeamService {
	return &TeamService{
		teamRepo:    teamRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		events:      publisherOrNop(events),
		logger:      logger,
	}
}

// ListTeams returns a page of the teams tab
func (s *TeamService) ListTeams(ctx context.Context, view listing.ViewState) (listing.Page[dto.TeamRow], error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return listing.Page[dto.TeamRow]{}, err
	}

	rows := make([]dto.TeamRow, 0, len(teams))
	for i := range teams {
		rows = append(rows, dto.NewTeamRow(&teams[i]))
	}

	filter := listing.NewFilter[dto.TeamRow]().
		Search(view.Search, func(r dto.TeamRow) []string {
			fields := []string{strconv.FormatInt(r.ID, 10), r.ProjectTitle, r.LeaderName}
			for _, m := range r.Members {
				fields = append(fields, m.Name, m.RollNumber)
			}
			return fields
		}).
		Equals(view.Filter(FilterScope), func(r dto.TeamRow) string { return optionalIDText(r.ScopeID) }).
		Matches(view.Filter(FilterStatus), func(r dto.TeamRow, status string) bool {
			switch strings.ToUpper(status) {
			case dto.TeamHasProject:
				return r.ProjectID != nil
			case dto.TeamNoProject:
				return r.ProjectID == nil
			default:
				return false
			}
		}).
		Matches(view.Filter(FilterFaculty), func(r dto.TeamRow, id string) bool {
			return (r.Guide != nil && strconv.FormatInt(r.Guide.ID, 10) == id) ||
				(r.SubjectExpert != nil && strconv.FormatInt(r.SubjectExpert.ID, 10) == id)
		})

	sorted := listing.SortBy(filter.Apply(rows), view.Sort, teamSortKeys)
	return listing.Paginate(sorted, view.Page, view.PageSize), nil
}

// CreateTeam builds a team from students who are not yet in one. The leader
// defaults to the first listed member.
func (s *TeamService) CreateTeam(ctx context.Context, actorID int64, req *dto.CreateTeamRequest) (*dto.TeamRow, error) {
	memberIDs := uniqueIDs(req.MemberIDs)
	if err := s.checkStudents(ctx, memberIDs); err != nil {
		return nil, err
	}

	leaderID := req.LeaderID
	if leaderID == nil {
		leaderID = int64Ptr(memberIDs[0])
	} else if !containsID(memberIDs, *leaderID) {
		return nil, apperrors.ErrNotTeamMember
	}

	team := &models.Team{
		ScopeID:         req.ScopeID,
		ProjectID:       req.ProjectID,
		GuideID:         req.GuideID,
		SubjectExpertID: req.SubjectExpertID,
	}

	if req.GuideID != nil && req.SubjectExpertID != nil && *req.GuideID == *req.SubjectExpertID {
		return nil, apperrors.ErrFacultyConflict
	}
	approved := models.ApprovalApproved
	for _, id := range []*int64{req.GuideID, req.SubjectExpertID} {
		if id == nil {
			continue
		}
		if err := s.checkFaculty(ctx, *id); err != nil {
			return nil, err
		}
	}
	if req.GuideID != nil {
		team.GuideStatus = &approved
	}
	if req.SubjectExpertID != nil {
		team.ExpertStatus = &approved
	}

	if req.ProjectID != nil {
		project, err := s.checkCapacity(ctx, *req.ProjectID, len(memberIDs))
		if err != nil {
			return nil, err
		}
		if team.ScopeID == nil {
			team.ScopeID = project.ScopeID
		} else if project.ScopeID != nil && *project.ScopeID != *team.ScopeID {
			return nil, apperrors.NewBadRequestError("project belongs to a different scope")
		}
	}

	if err := s.teamRepo.Create(ctx, team, memberIDs, leaderID); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("teamID", team.ID).
		Int("members", len(memberIDs)).
		Int64("actorID", actorID).
		Msg("Team created")
	s.events.Publish(websocket.EventCreated, websocket.EntityTeam, team.ID, actorID)
	if team.ProjectID != nil {
		s.events.Publish(websocket.EventUpdated, websocket.EntityProject, *team.ProjectID, actorID)
	}

	return s.row(ctx, team.ID)
}

// AddMember adds a student who is not in any team
func (s *TeamService) AddMember(ctx context.Context, actorID, teamID, userID int64) (*dto.TeamRow, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if team.HasMember(userID) {
		return nil, apperrors.ErrAlreadyInTeam
	}
	if err := s.checkStudents(ctx, []int64{userID}); err != nil {
		return nil, err
	}
	if team.ProjectID != nil {
		if _, err := s.checkCapacity(ctx, *team.ProjectID, 1); err != nil {
			return nil, err
		}
	}

	if err := s.teamRepo.AddMember(ctx, teamID, userID); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("teamID", teamID).Int64("userID", userID).Int64("actorID", actorID).Msg("Team member added")
	s.events.Publish(websocket.EventUpdated, websocket.EntityTeam, teamID, actorID)
	return s.row(ctx, teamID)
}

// RemoveMember takes a student out of a team. Removing the leader leaves the team without one.
func (s *TeamService) RemoveMember(ctx context.Context, actorID, teamID, userID int64) (*dto.TeamRow, error) {
	if err := s.teamRepo.RemoveMember(ctx, teamID, userID); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("teamID", teamID).Int64("userID", userID).Int64("actorID", actorID).Msg("Team member removed")
	s.events.Publish(websocket.EventUpdated, websocket.EntityTeam, teamID, actorID)
	return s.row(ctx, teamID)
}

// ChangeLeader makes userID the only leader of the team
func (s *TeamService) ChangeLeader(ctx context.Context, actorID, teamID, userID int64) (*dto.TeamRow, error) {
	if _, err := s.teamRepo.GetByID(ctx, teamID); err != nil {
		return nil, err
	}
	if err := s.teamRepo.SetLeader(ctx, teamID, userID); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("teamID", teamID).Int64("leaderID", userID).Int64("actorID", actorID).Msg("Team leader changed")
	s.events.Publish(websocket.EventUpdated, websocket.EntityTeam, teamID, actorID)
	return s.row(ctx, teamID)
}

// AssignProject links a project to the team, replacing any previous one
func (s *TeamService) AssignProject(ctx context.Context, actorID, teamID, projectID int64) (*dto.TeamRow, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if team.ProjectID != nil && *team.ProjectID == projectID {
		row := dto.NewTeamRow(team)
		return &row, nil
	}

	project, err := s.checkCapacity(ctx, projectID, len(team.Members))
	if err != nil {
		return nil, err
	}
	if team.ScopeID != nil && project.ScopeID != nil && *team.ScopeID != *project.ScopeID {
		return nil, apperrors.NewBadRequestError("project belongs to a different scope")
	}

	if err := s.teamRepo.SetProject(ctx, teamID, &projectID); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("teamID", teamID).Int64("projectID", projectID).Int64("actorID", actorID).Msg("Project assigned to team")
	s.events.Publish(websocket.EventUpdated, websocket.EntityTeam, teamID, actorID)
	s.events.Publish(websocket.EventUpdated, websocket.EntityProject, projectID, actorID)
	if team.ProjectID != nil {
		s.events.Publish(websocket.EventUpdated, websocket.EntityProject, *team.ProjectID, actorID)
	}
	return s.row(ctx, teamID)
}

// UnassignProject detaches the team's project
func (s *TeamService) UnassignProject(ctx context.Context, actorID, teamID int64) (*dto.TeamRow, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if team.ProjectID == nil {
		return nil, apperrors.ErrNoProjectAssigned
	}
	previous := *team.ProjectID

	if err := s.teamRepo.SetProject(ctx, teamID, nil); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("teamID", teamID).Int64("projectID", previous).Int64("actorID", actorID).Msg("Project unassigned from team")
	s.events.Publish(websocket.EventUpdated, websocket.EntityTeam, teamID, actorID)
	s.events.Publish(websocket.EventUpdated, websocket.EntityProject, previous, actorID)
	return s.row(ctx, teamID)
}

// AssignFaculty attaches a guide or subject expert; the assignment is approved immediately
func (s *TeamService) AssignFaculty(ctx context.Context, actorID, teamID, facultyID int64, role models.FacultyRole) (*dto.TeamRow, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if err := s.checkFaculty(ctx, facultyID); err != nil {
		return nil, err
	}

	other := team.SubjectExpertID
	if role == models.FacultyRoleSubjectExpert {
		other = team.GuideID
	}
	if other != nil && *other == facultyID {
		return nil, apperrors.ErrFacultyConflict
	}

	if err := s.teamRepo.SetFaculty(ctx, teamID, role, &facultyID); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("teamID", teamID).
		Int64("facultyID", facultyID).
		Str("role", string(role)).
		Int64("actorID", actorID).
		Msg("Faculty assigned to team")
	s.events.Publish(websocket.EventUpdated, websocket.EntityTeam, teamID, actorID)
	return s.row(ctx, teamID)
}

// UnassignFaculty clears the guide or subject expert slot
func (s *TeamService) UnassignFaculty(ctx context.Context, actorID, teamID int64, role models.FacultyRole) (*dto.TeamRow, error) {
	if err := s.teamRepo.SetFaculty(ctx, teamID, role, nil); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("teamID", teamID).Str("role", string(role)).Int64("actorID", actorID).Msg("Faculty unassigned from team")
	s.events.Publish(websocket.EventUpdated, websocket.EntityTeam, teamID, actorID)
	return s.row(ctx, teamID)
}

func (s *TeamService) row(ctx context.Context, teamID int64) (*dto.TeamRow, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	row := dto.NewTeamRow(team)
	return &row, nil
}

// checkStudents verifies every id is an existing student without a team
func (s *TeamService) checkStudents(ctx context.Context, ids []int64) error {
	return checkStudents(ctx, s.userRepo, s.teamRepo, ids)
}

func (s *TeamService) checkFaculty(ctx context.Context, id int64) error {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user.Role != models.RoleFaculty {
		return apperrors.ErrNotFaculty
	}
	return nil
}

// checkCapacity verifies that adding extra members keeps the project's assigned teams within its size limit
func (s *TeamService) checkCapacity(ctx context.Context, projectID int64, extra int) (*models.Project, error) {
	return checkCapacity(ctx, s.projectRepo, s.teamRepo, projectID, extra)
}

func checkStudents(ctx context.Context, users repositories.IUserRepository, teams repositories.ITeamRepository, ids []int64) error {
	found, err := users.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[int64]*models.User, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}

	for _, id := range ids {
		u, ok := byID[id]
		if !ok {
			return apperrors.ErrUserNotFound
		}
		if u.Role != models.RoleStudent {
			return apperrors.ErrNotAStudent
		}
		teamID, err := teams.TeamIDOfMember(ctx, id)
		if err != nil {
			return err
		}
		if teamID != nil {
			return apperrors.ErrAlreadyInTeam
		}
	}
	return nil
}

func checkCapacity(ctx context.Context, projects repositories.IProjectRepository, teams repositories.ITeamRepository, projectID int64, extra int) (*models.Project, error) {
	project, err := projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	current, err := teams.MemberCountForProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if current+extra > project.MaxTeamSize {
		return nil, apperrors.ErrTeamFull
	}
	return project, nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
