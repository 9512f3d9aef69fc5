package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/projecthub/internal/app/models/dto"
	"github.com/yigit/projecthub/internal/app/services"
	"github.com/yigit/projecthub/internal/middleware"
	"github.com/yigit/projecthub/internal/pkg/helpers"
)

// studentStatsFilters are shared by the individual statistics tab and its export
var studentStatsFilters = []string{
	services.FilterStatus,
	services.FilterDepartment,
	services.FilterYear,
	services.FilterPhase,
	services.FilterScope,
	services.FilterFaculty,
}

// ExportRecorder counts generated reports
type ExportRecorder interface {
	ObserveExport(err error, rows int)
}

// StatsController serves the statistics tabs and the report download
type StatsController struct {
	statsService  services.IStatsService
	exportService services.IExportService
	exports       ExportRecorder
	pageSize      int
	logger        zerolog.Logger
}

// NewStatsController creates a new StatsController. exports may be nil.
func NewStatsController(
	statsService services.IStatsService,
	exportService services.IExportService,
	exports ExportRecorder,
	pageSize int,
	logger zerolog.Logger,
) *StatsController {
	return &StatsController{
		statsService:  statsService,
		exportService: exportService,
		exports:       exports,
		pageSize:      pageSize,
		logger:        logger,
	}
}

// StudentStats godoc
// @Summary Individual statistics
// @Description One page of per-student review aggregates. Absent marks are never counted; only the first mark per phase counts.
// @Tags stats
// @Produce json
// @Security BearerAuth
// @Param search query string false "Case-insensitive match on name, email, roll number or department"
// @Param status query string false "IN_TEAM or NO_TEAM"
// @Param department query string false "Department"
// @Param year query int false "Year of study"
// @Param phase query int false "Only students with a mark in this phase"
// @Param scopeId query int false "Scope (batch) ID"
// @Param facultyId query int false "Only students reviewed by this faculty member"
// @Param sort query string false "Sort key (name, rollNumber, department, year, reviews, overall, phase1, phase2...)"
// @Param order query string false "asc or desc"
// @Param toggle query string false "Toggle sort on this key"
// @Param page query int false "Page number (default 1)"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse[stats.StudentSummary]} "Student statistics"
// @Failure 403 {object} dto.ErrorResponse "Tab restricted"
// @Router /admin/stats/students [get]
func (c *StatsController) StudentStats(ctx *gin.Context) {
	view := helpers.ParseViewState(ctx, c.pageSize, studentStatsFilters...)

	page, err := c.statsService.StudentStats(ctx.Request.Context(), view)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewListResponse(page, view), ""))
}

// StudentDetail godoc
// @Summary Student statistics detail
// @Description Review history of one student grouped by phase, with reviewer names and criterion marks
// @Tags stats
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=services.StudentDetail} "Student detail"
// @Failure 400 {object} dto.ErrorResponse "User is not a student"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /admin/stats/students/{id} [get]
func (c *StatsController) StudentDetail(ctx *gin.Context) {
	studentID, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	detail, err := c.statsService.StudentDetail(ctx.Request.Context(), studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(detail, ""))
}

// FacultyStats godoc
// @Summary Faculty statistics
// @Description One page of faculty performance: teams guided and advised, pending approvals, reviews given and average mark awarded
// @Tags stats
// @Produce json
// @Security BearerAuth
// @Param search query string false "Case-insensitive match on name, email or department"
// @Param department query string false "Department"
// @Param sort query string false "Sort key (name, department, guidedTeams, expertTeams, pending, reviewsGiven, studentsEvaluated, average)"
// @Param order query string false "asc or desc"
// @Param toggle query string false "Toggle sort on this key"
// @Param page query int false "Page number (default 1)"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse[stats.FacultySummary]} "Faculty statistics"
// @Failure 403 {object} dto.ErrorResponse "Tab restricted"
// @Router /admin/stats/faculty [get]
func (c *StatsController) FacultyStats(ctx *gin.Context) {
	view := helpers.ParseViewState(ctx, c.pageSize, services.FilterDepartment)

	page, err := c.statsService.FacultyStats(ctx.Request.Context(), view)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewListResponse(page, view), ""))
}

// FacultyDetail godoc
// @Summary Faculty statistics detail
// @Description A faculty member's summary with the students of the teams they guide, advise or reviewed
// @Tags stats
// @Produce json
// @Security BearerAuth
// @Param id path int true "Faculty ID"
// @Success 200 {object} dto.APIResponse{data=stats.FacultyDetail} "Faculty detail"
// @Failure 400 {object} dto.ErrorResponse "User is not faculty"
// @Failure 404 {object} dto.ErrorResponse "Faculty not found"
// @Router /admin/stats/faculty/{id} [get]
func (c *StatsController) FacultyDetail(ctx *gin.Context) {
	facultyID, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	detail, err := c.statsService.FacultyDetail(ctx.Request.Context(), facultyID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(detail, ""))
}

// ExportStudents godoc
// @Summary Download student report
// @Description Every student passing the current search and filters, in the current sort order, as an xlsx workbook. Pagination is ignored.
// @Tags stats
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param search query string false "Case-insensitive match on name, email, roll number or department"
// @Param status query string false "IN_TEAM or NO_TEAM"
// @Param department query string false "Department"
// @Param year query int false "Year of study"
// @Param phase query int false "Phase"
// @Param scopeId query int false "Scope (batch) ID"
// @Param sort query string false "Sort key"
// @Param order query string false "asc or desc"
// @Success 200 {file} file "student_report_YYYY-MM-DD.xlsx"
// @Failure 403 {object} dto.ErrorResponse "Tab restricted"
// @Failure 500 {object} dto.ErrorResponse "Failed to generate report"
// @Router /admin/export/students [get]
func (c *StatsController) ExportStudents(ctx *gin.Context) {
	view := helpers.ParseViewState(ctx, c.pageSize, studentStatsFilters...)

	file, err := c.exportService.ExportStudents(ctx.Request.Context(), view)
	if c.exports != nil {
		rows := 0
		if file != nil {
			rows = file.Rows
		}
		c.exports.ObserveExport(err, rows)
	}
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	ctx.Header("Content-Length", strconv.Itoa(len(file.Content)))
	ctx.Data(http.StatusOK, services.XLSXContentType, file.Content)
}
