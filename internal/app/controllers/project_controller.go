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

// ProjectController serves the projects tab and the scope dropdown
type ProjectController struct {
	projectService services.IProjectService
	scopeService   services.IScopeService
	pageSize       int
	logger         zerolog.Logger
}

// NewProjectController creates a new ProjectController
func NewProjectController(projectService services.IProjectService, scopeService services.IScopeService, pageSize int, logger zerolog.Logger) *ProjectController {
	return &ProjectController{
		projectService: projectService,
		scopeService:   scopeService,
		pageSize:       pageSize,
		logger:         logger,
	}
}

// ListProjects godoc
// @Summary List projects
// @Description One page of the projects tab
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Param search query string false "Case-insensitive match on title, category or tech stack"
// @Param status query string false "AVAILABLE, REQUESTED or ASSIGNED"
// @Param category query string false "Category"
// @Param scopeId query int false "Scope (batch) ID"
// @Param sort query string false "Sort key (title, category, status, maxTeamSize, teams)"
// @Param order query string false "asc or desc"
// @Param toggle query string false "Toggle sort on this key"
// @Param page query int false "Page number (default 1)"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse[dto.ProjectRow]} "Projects"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Tab restricted"
// @Router /admin/projects [get]
func (c *ProjectController) ListProjects(ctx *gin.Context) {
	view := helpers.ParseViewState(ctx, c.pageSize, services.FilterStatus, services.FilterCategory, services.FilterScope)

	page, err := c.projectService.ListProjects(ctx.Request.Context(), view)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewListResponse(page, view), ""))
}

// UpdateProject godoc
// @Summary Update project
// @Description Replaces the editable fields. The team size limit cannot drop below the students already assigned.
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Param request body dto.UpdateProjectRequest true "Project fields"
// @Success 200 {object} dto.APIResponse{data=dto.ProjectRow} "Project updated"
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 404 {object} dto.ErrorResponse "Project not found"
// @Router /admin/projects/{id} [put]
func (c *ProjectController) UpdateProject(ctx *gin.Context) {
	actorID, projectID, ok := c.actorAndProject(ctx)
	if !ok {
		return
	}
	var req dto.UpdateProjectRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	project, err := c.projectService.UpdateProject(ctx.Request.Context(), actorID, projectID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(project, "Project updated"))
}

// DeleteProject godoc
// @Summary Delete project
// @Description Deletes the project; teams working on it are left without one.
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Success 200 {object} dto.APIResponse "Project deleted"
// @Failure 404 {object} dto.ErrorResponse "Project not found"
// @Router /admin/projects/{id} [delete]
func (c *ProjectController) DeleteProject(ctx *gin.Context) {
	actorID, projectID, ok := c.actorAndProject(ctx)
	if !ok {
		return
	}

	if err := c.projectService.DeleteProject(ctx.Request.Context(), actorID, projectID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Project deleted"))
}

// AssignSolo godoc
// @Summary Assign project to one student
// @Description Creates a one-person team for a student without a team and assigns the project to it
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Param request body dto.AssignSoloRequest true "Student"
// @Success 201 {object} dto.APIResponse{data=dto.TeamRow} "Solo team created"
// @Failure 404 {object} dto.ErrorResponse "Project or student not found"
// @Failure 409 {object} dto.ErrorResponse "Student already in a team or team size limit reached"
// @Router /admin/projects/{id}/solo [post]
func (c *ProjectController) AssignSolo(ctx *gin.Context) {
	actorID, projectID, ok := c.actorAndProject(ctx)
	if !ok {
		return
	}
	var req dto.AssignSoloRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	team, err := c.projectService.AssignSolo(ctx.Request.Context(), actorID, projectID, req.StudentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(team, "Project assigned"))
}

// ListScopes godoc
// @Summary List scopes
// @Description Every scope (batch), for the filter dropdowns
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Scope} "Scopes"
// @Router /admin/scopes [get]
func (c *ProjectController) ListScopes(ctx *gin.Context) {
	scopes, err := c.scopeService.List(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(scopes, ""))
}

func (c *ProjectController) actorAndProject(ctx *gin.Context) (int64, int64, bool) {
	actorID, ok := middleware.MustUserID(ctx)
	if !ok {
		return 0, 0, false
	}
	projectID, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return 0, 0, false
	}
	return actorID, projectID, true
}
