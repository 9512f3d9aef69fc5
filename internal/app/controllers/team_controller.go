package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/projecthub/internal/app/models/dto"
	"github.com/yigit/projecthub/internal/app/services"
	"github.com/yigit/projecthub/internal/middleware"
	"github.com/yigit/projecthub/internal/pkg/helpers"
)

// TeamController serves the teams tab
type TeamController struct {
	teamService services.ITeamService
	pageSize    int
	logger      zerolog.Logger
}

// NewTeamController creates a new TeamController
func NewTeamController(teamService services.ITeamService, pageSize int, logger zerolog.Logger) *TeamController {
	return &TeamController{
		teamService: teamService,
		pageSize:    pageSize,
		logger:      logger,
	}
}

// ListTeams godoc
// @Summary List teams
// @Description One page of the teams tab with members, project, faculty and review counts
// @Tags teams
// @Produce json
// @Security BearerAuth
// @Param search query string false "Case-insensitive match on member names, roll numbers or project title"
// @Param scopeId query int false "Scope (batch) ID"
// @Param status query string false "HAS_PROJECT or NO_PROJECT"
// @Param facultyId query int false "Guide or subject expert ID"
// @Param sort query string false "Sort key (id, project, leader, members, reviews, guide)"
// @Param order query string false "asc or desc"
// @Param toggle query string false "Toggle sort on this key"
// @Param page query int false "Page number (default 1)"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse[dto.TeamRow]} "Teams"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Tab restricted"
// @Router /admin/teams [get]
func (c *TeamController) ListTeams(ctx *gin.Context) {
	view := helpers.ParseViewState(ctx, c.pageSize, services.FilterScope, services.FilterStatus, services.FilterFaculty)

	page, err := c.teamService.ListTeams(ctx.Request.Context(), view)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewListResponse(page, view), ""))
}

// CreateTeam godoc
// @Summary Create team
// @Description Builds a team from students without one. The leader defaults to the first member; faculty assigned here are approved.
// @Tags teams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateTeamRequest true "Team"
// @Success 201 {object} dto.APIResponse{data=dto.TeamRow} "Team created"
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 409 {object} dto.ErrorResponse "Student already in a team, team full or faculty conflict"
// @Router /admin/teams [post]
func (c *TeamController) CreateTeam(ctx *gin.Context) {
	actorID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}
	var req dto.CreateTeamRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	team, err := c.teamService.CreateTeam(ctx.Request.Context(), actorID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(team, "Team created"))
}

// AddMember godoc
// @Summary Add team member
// @Tags teams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Team ID"
// @Param request body dto.MemberRequest true "Student"
// @Success 200 {object} dto.APIResponse{data=dto.TeamRow} "Member added"
// @Failure 404 {object} dto.ErrorResponse "Team or student not found"
// @Failure 409 {object} dto.ErrorResponse "Student already in a team or team full"
// @Router /admin/teams/{id}/members [post]
func (c *TeamController) AddMember(ctx *gin.Context) {
	actorID, teamID, ok := c.actorAndTeam(ctx)
	if !ok {
		return
	}
	var req dto.MemberRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	team, err := c.teamService.AddMember(ctx.Request.Context(), actorID, teamID, req.UserID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(team, "Member added"))
}

// RemoveMember godoc
// @Summary Remove team member
// @Description Removes a student from the team. Removing the leader leaves the team without one.
// @Tags teams
// @Produce json
// @Security BearerAuth
// @Param id path int true "Team ID"
// @Param userId path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.TeamRow} "Member removed"
// @Failure 404 {object} dto.ErrorResponse "Team not found"
// @Failure 409 {object} dto.ErrorResponse "Student is not a member"
// @Router /admin/teams/{id}/members/{userId} [delete]
func (c *TeamController) RemoveMember(ctx *gin.Context) {
	actorID, teamID, ok := c.actorAndTeam(ctx)
	if !ok {
		return
	}
	userID, err := helpers.ParseIDParam(ctx, "userId")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	team, err := c.teamService.RemoveMember(ctx.Request.Context(), actorID, teamID, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(team, "Member removed"))
}

// ChangeLeader godoc
// @Summary Change team leader
// @Tags teams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Team ID"
// @Param request body dto.MemberRequest true "New leader"
// @Success 200 {object} dto.APIResponse{data=dto.TeamRow} "Leader changed"
// @Failure 409 {object} dto.ErrorResponse "Student is not a member"
// @Router /admin/teams/{id}/leader [put]
func (c *TeamController) ChangeLeader(ctx *gin.Context) {
	actorID, teamID, ok := c.actorAndTeam(ctx)
	if !ok {
		return
	}
	var req dto.MemberRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	team, err := c.teamService.ChangeLeader(ctx.Request.Context(), actorID, teamID, req.UserID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(team, "Leader changed"))
}

// AssignProject godoc
// @Summary Assign project to team
// @Description Links a project to the team, replacing any previous one. Fails when the project's team size limit would be exceeded.
// @Tags teams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Team ID"
// @Param request body dto.AssignProjectRequest true "Project"
// @Success 200 {object} dto.APIResponse{data=dto.TeamRow} "Project assigned"
// @Failure 404 {object} dto.ErrorResponse "Team or project not found"
// @Failure 409 {object} dto.ErrorResponse "Team size limit reached"
// @Router /admin/teams/{id}/project [put]
func (c *TeamController) AssignProject(ctx *gin.Context) {
	actorID, teamID, ok := c.actorAndTeam(ctx)
	if !ok {
		return
	}
	var req dto.AssignProjectRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	team, err := c.teamService.AssignProject(ctx.Request.Context(), actorID, teamID, req.ProjectID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(team, "Project assigned"))
}

// UnassignProject godoc
// @Summary Unassign project
// @Tags teams
// @Produce json
// @Security BearerAuth
// @Param id path int true "Team ID"
// @Success 200 {object} dto.APIResponse{data=dto.TeamRow} "Project unassigned"
// @Failure 409 {object} dto.ErrorResponse "Team has no project"
// @Router /admin/teams/{id}/project [delete]
func (c *TeamController) UnassignProject(ctx *gin.Context) {
	actorID, teamID, ok := c.actorAndTeam(ctx)
	if !ok {
		return
	}

	team, err := c.teamService.UnassignProject(ctx.Request.Context(), actorID, teamID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(team, "Project unassigned"))
}

// AssignFaculty godoc
// @Summary Assign faculty to team
// @Description Attaches a guide or subject expert. The same person cannot hold both roles on one team.
// @Tags teams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Team ID"
// @Param request body dto.AssignFacultyRequest true "Faculty and role"
// @Success 200 {object} dto.APIResponse{data=dto.TeamRow} "Faculty assigned"
// @Failure 400 {object} dto.ErrorResponse "User is not faculty"
// @Failure 409 {object} dto.ErrorResponse "Guide and subject expert must differ"
// @Router /admin/teams/{id}/faculty [put]
func (c *TeamController) AssignFaculty(ctx *gin.Context) {
	actorID, teamID, ok := c.actorAndTeam(ctx)
	if !ok {
		return
	}
	var req dto.AssignFacultyRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	role, err := services.ParseFacultyRole(req.Role)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	team, err := c.teamService.AssignFaculty(ctx.Request.Context(), actorID, teamID, req.FacultyID, role)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(team, "Faculty assigned"))
}

// UnassignFaculty godoc
// @Summary Unassign faculty from team
// @Tags teams
// @Produce json
// @Security BearerAuth
// @Param id path int true "Team ID"
// @Param role path string true "GUIDE or SUBJECT_EXPERT"
// @Success 200 {object} dto.APIResponse{data=dto.TeamRow} "Faculty unassigned"
// @Failure 400 {object} dto.ErrorResponse "Unknown role"
// @Router /admin/teams/{id}/faculty/{role} [delete]
func (c *TeamController) UnassignFaculty(ctx *gin.Context) {
	actorID, teamID, ok := c.actorAndTeam(ctx)
	if !ok {
		return
	}
	role, err := services.ParseFacultyRole(ctx.Param("role"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	team, err := c.teamService.UnassignFaculty(ctx.Request.Context(), actorID, teamID, role)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(team, "Faculty unassigned"))
}

func (c *TeamController) actorAndTeam(ctx *gin.Context) (int64, int64, bool) {
	actorID, ok := middleware.MustUserID(ctx)
	if !ok {
		return 0, 0, false
	}
	teamID, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return 0, 0, false
	}
	return actorID, teamID, true
}
