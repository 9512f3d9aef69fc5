package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yigit/projecthub/internal/app/models"
	"github.com/yigit/projecthub/internal/app/models/dto"
	"github.com/yigit/projecthub/internal/app/repositories"
	"github.com/yigit/projecthub/internal/pkg/apperrors"
	"github.com/yigit/projecthub/internal/pkg/listing"
	"github.com/yigit/projecthub/internal/pkg/websocket"
)

// FilterCategory narrows the projects tab to one category
const FilterCategory = "category"

var projectSortKeys = listing.Keys[dto.ProjectRow]{
	"title":       func(r dto.ProjectRow) listing.Value { return listing.Text(r.Title) },
	"category":    func(r dto.ProjectRow) listing.Value { return listing.Text(r.Category) },
	"status":      func(r dto.ProjectRow) listing.Value { return listing.Text(string(r.Status)) },
	"maxTeamSize": func(r dto.ProjectRow) listing.Value { return listing.Number(float64(r.MaxTeamSize)) },
	"teams":       func(r dto.ProjectRow) listing.Value { return listing.Number(float64(r.TeamCount)) },
	"createdAt":   func(r dto.ProjectRow) listing.Value { return listing.Number(float64(r.CreatedAt.Unix())) },
}

// IProjectService backs the projects tab and its callbacks
type IProjectService interface {
	ListProjects(ctx context.Context, view listing.ViewState) (listing.Page[dto.ProjectRow], error)
	UpdateProject(ctx context.Context, actorID, projectID int64, req *dto.UpdateProjectRequest) (*dto.ProjectRow, error)
	DeleteProject(ctx context.Context, actorID, projectID int64) error
	AssignSolo(ctx context.Context, actorID, projectID, studentID int64) (*dto.TeamRow, error)
}

// ProjectService manages project proposals
type ProjectService struct {
	projectRepo repositories.IProjectRepository
	teamRepo    repositories.ITeamRepository
	userRepo    repositories.IUserRepository
	events      EventPublisher
	logger      zerolog.Logger
}

// NewProjectService creates a new ProjectService
func NewProjectService(
	projectRepo repositories.IProjectRepository,
	teamRepo repositories.ITeamRepository,
	userRepo repositories.IUserRepository,
	events EventPublisher,
	logger zerolog.Logger,
) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		teamRepo:    teamRepo,
		userRepo:    userRepo,
		events:      publisherOrNop(events),
		logger:      logger,
	}
}

// ListProjects returns a page of the projects tab
func (s *ProjectService) ListProjects(ctx context.Context, view listing.ViewState) (listing.Page[dto.ProjectRow], error) {
	projects, err := s.projectRepo.List(ctx)
	if err != nil {
		return listing.Page[dto.ProjectRow]{}, err
	}

	rows := make([]dto.ProjectRow, 0, len(projects))
	for i := range projects {
		rows = append(rows, dto.NewProjectRow(&projects[i]))
	}

	filter := listing.NewFilter[dto.ProjectRow]().
		Search(view.Search, func(r dto.ProjectRow) []string {
			return []string{r.Title, r.Category, optionalString(r.TechStack), optionalString(r.Description)}
		}).
		Equals(view.Filter(FilterStatus), func(r dto.ProjectRow) string { return string(r.Status) }).
		Equals(view.Filter(FilterCategory), func(r dto.ProjectRow) string { return r.Category }).
		Equals(view.Filter(FilterScope), func(r dto.ProjectRow) string { return optionalIDText(r.ScopeID) })

	sorted := listing.SortBy(filter.Apply(rows), view.Sort, projectSortKeys)
	return listing.Paginate(sorted, view.Page, view.PageSize), nil
}

// UpdateProject replaces the editable fields. The size limit cannot drop below the
// members already assigned.
func (s *ProjectService) UpdateProject(ctx context.Context, actorID, projectID int64, req *dto.UpdateProjectRequest) (*dto.ProjectRow, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	assigned, err := s.teamRepo.MemberCountForProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if req.MaxTeamSize < assigned {
		return nil, apperrors.NewBadRequestError("maxTeamSize is below the number of members already assigned")
	}

	project.Title = strings.TrimSpace(req.Title)
	project.Category = strings.TrimSpace(req.Category)
	project.MaxTeamSize = req.MaxTeamSize
	project.ScopeID = req.ScopeID
	project.TechStack = req.TechStack
	project.SRS = req.SRS
	project.Description = req.Description
	if req.Status != "" {
		project.Status = models.ProjectStatus(req.Status)
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("projectID", projectID).Int64("actorID", actorID).Msg("Project updated")
	s.events.Publish(websocket.EventUpdated, websocket.EntityProject, projectID, actorID)

	row := dto.NewProjectRow(project)
	return &row, nil
}

// DeleteProject removes a project; its teams stay without a project
func (s *ProjectService) DeleteProject(ctx context.Context, actorID, projectID int64) error {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if err := s.projectRepo.Delete(ctx, projectID); err != nil {
		return err
	}

	s.logger.Info().Int64("projectID", projectID).Int("teams", len(project.Teams)).Int64("actorID", actorID).Msg("Project deleted")
	s.events.Publish(websocket.EventDeleted, websocket.EntityProject, projectID, actorID)
	for _, teamID := range project.Teams {
		s.events.Publish(websocket.EventUpdated, websocket.EntityTeam, teamID, actorID)
	}
	return nil
}

// AssignSolo gives the project to one student by creating a single member team they lead.
// A project already held by a team cannot become a solo project.
func (s *ProjectService) AssignSolo(ctx context.Context, actorID, projectID, studentID int64) (*dto.TeamRow, error) {
	if err := checkStudents(ctx, s.userRepo, s.teamRepo, []int64{studentID}); err != nil {
		return nil, err
	}
	project, err := checkCapacity(ctx, s.projectRepo, s.teamRepo, projectID, 1)
	if err != nil {
		return nil, err
	}
	if project.Status == models.ProjectAssigned {
		return nil, apperrors.ErrProjectAssigned
	}

	team := &models.Team{ScopeID: project.ScopeID, ProjectID: &projectID}
	if err := s.teamRepo.Create(ctx, team, []int64{studentID}, &studentID); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("projectID", projectID).
		Int64("studentID", studentID).
		Int64("teamID", team.ID).
		Int64("actorID", actorID).
		Msg("Solo project assigned")
	s.events.Publish(websocket.EventCreated, websocket.EntityTeam, team.ID, actorID)
	s.events.Publish(websocket.EventUpdated, websocket.EntityProject, projectID, actorID)

	created, err := s.teamRepo.GetByID(ctx, team.ID)
	if err != nil {
		return nil, err
	}
	row := dto.NewTeamRow(created)
	return &row, nil
}
