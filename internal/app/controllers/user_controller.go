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

// UserController serves the students, faculty and admins tabs
type UserController struct {
	userService services.IUserService
	pageSize    int
	logger      zerolog.Logger
}

// NewUserController creates a new UserController
func NewUserController(userService services.IUserService, pageSize int, logger zerolog.Logger) *UserController {
	return &UserController{
		userService: userService,
		pageSize:    pageSize,
		logger:      logger,
	}
}

// ListStudents godoc
// @Summary List students
// @Description One page of the students tab. Filters combine with AND; sort toggles between ascending and descending.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param search query string false "Case-insensitive match on name, email or roll number"
// @Param department query string false "Department"
// @Param year query int false "Year of study"
// @Param scopeId query int false "Scope (batch) ID"
// @Param status query string false "IN_TEAM or NO_TEAM"
// @Param sort query string false "Sort key (name, email, rollNumber, department, year, team, project)"
// @Param order query string false "asc or desc"
// @Param toggle query string false "Toggle sort on this key"
// @Param page query int false "Page number (default 1)"
// @Param size query int false "Page size"
// @Param view query string false "Fingerprint of the previous view; the page resets when filters change"
// @Param reset query bool false "Clear search, filters and sort"
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse[dto.StudentRow]} "Students"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Tab restricted"
// @Router /admin/students [get]
func (c *UserController) ListStudents(ctx *gin.Context) {
	view := helpers.ParseViewState(ctx, c.pageSize,
		services.FilterDepartment, services.FilterYear, services.FilterScope, services.FilterStatus)

	page, err := c.userService.ListStudents(ctx.Request.Context(), view)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewListResponse(page, view), ""))
}

// ListFaculty godoc
// @Summary List faculty
// @Description One page of the faculty tab with guided and expert team counts
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param search query string false "Case-insensitive match on name or email"
// @Param department query string false "Department"
// @Param sort query string false "Sort key (name, email, department, guidedTeams, expertTeams)"
// @Param order query string false "asc or desc"
// @Param toggle query string false "Toggle sort on this key"
// @Param page query int false "Page number (default 1)"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse[dto.FacultyRow]} "Faculty"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Tab restricted"
// @Router /admin/faculty [get]
func (c *UserController) ListFaculty(ctx *gin.Context) {
	view := helpers.ParseViewState(ctx, c.pageSize, services.FilterDepartment)

	page, err := c.userService.ListFaculty(ctx.Request.Context(), view)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewListResponse(page, view), ""))
}

// ListAdmins godoc
// @Summary List admins
// @Description One page of the admins tab. Temporary admins with unreadable grants show a permission error and no tabs.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param search query string false "Case-insensitive match on name or email"
// @Param status query string false "PERMANENT or TEMPORARY"
// @Param sort query string false "Sort key (name, email, type, tabs)"
// @Param order query string false "asc or desc"
// @Param page query int false "Page number (default 1)"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse[dto.AdminRow]} "Admins"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Tab restricted"
// @Router /admin/admins [get]
func (c *UserController) ListAdmins(ctx *gin.Context) {
	view := helpers.ParseViewState(ctx, c.pageSize, services.FilterStatus)

	page, err := c.userService.ListAdmins(ctx.Request.Context(), view)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewListResponse(page, view), ""))
}

// AddAdmin godoc
// @Summary Add admin
// @Description Creates a permanent admin account
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateAdminRequest true "Admin account"
// @Success 201 {object} dto.APIResponse{data=dto.UserResponse} "Admin created"
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 409 {object} dto.ErrorResponse "Email already exists"
// @Router /admin/admins [post]
func (c *UserController) AddAdmin(ctx *gin.Context) {
	actorID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}
	var req dto.CreateAdminRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	user, err := c.userService.AddAdmin(ctx.Request.Context(), actorID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(user, "Admin added"))
}

// AddFaculty godoc
// @Summary Add faculty
// @Description Creates a faculty account
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateFacultyRequest true "Faculty account"
// @Success 201 {object} dto.APIResponse{data=dto.UserResponse} "Faculty created"
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 409 {object} dto.ErrorResponse "Email already exists"
// @Router /admin/faculty [post]
func (c *UserController) AddFaculty(ctx *gin.Context) {
	actorID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}
	var req dto.CreateFacultyRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	user, err := c.userService.AddFaculty(ctx.Request.Context(), actorID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(user, "Faculty added"))
}

// UpdateUser godoc
// @Summary Update user
// @Description Changes profile fields; omitted fields keep their value. Roll number, department and year apply to students only.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body dto.UpdateUserRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse} "User updated"
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Failure 409 {object} dto.ErrorResponse "Email or roll number already exists"
// @Router /admin/users/{id} [put]
func (c *UserController) UpdateUser(ctx *gin.Context) {
	actorID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}
	userID, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	var req dto.UpdateUserRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	user, err := c.userService.UpdateUser(ctx.Request.Context(), actorID, userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(user, "User updated"))
}

// DeleteUser godoc
// @Summary Delete user
// @Description Deletes one user. Admins cannot delete themselves.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse "User deleted"
// @Failure 400 {object} dto.ErrorResponse "Cannot delete own account"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /admin/users/{id} [delete]
func (c *UserController) DeleteUser(ctx *gin.Context) {
	actorID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}
	userID, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.userService.DeleteUser(ctx.Request.Context(), actorID, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "User deleted"))
}

// BulkDelete godoc
// @Summary Delete users
// @Description Deletes several users at once. Duplicate IDs are collapsed and the caller's own ID is refused.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BulkDeleteRequest true "User IDs"
// @Success 200 {object} dto.APIResponse{data=dto.BulkDeleteResponse} "Users deleted"
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Router /admin/users/bulk-delete [post]
func (c *UserController) BulkDelete(ctx *gin.Context) {
	actorID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}
	var req dto.BulkDeleteRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.userService.BulkDelete(ctx.Request.Context(), actorID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("actorID", actorID).Int64("deleted", resp.Deleted).Msg("Bulk delete completed")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Users deleted"))
}

// ToggleTempAdmin godoc
// @Summary Grant or revoke temporary admin
// @Description Grants a faculty member access to the listed tabs, or revokes it. Only permanent admins may call this. A second submit for the same user while the first is running is rejected unless identical.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body dto.TempAdminRequest true "Grant"
// @Success 200 {object} dto.APIResponse{data=dto.AdminRow} "Grant updated"
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 403 {object} dto.ErrorResponse "Permanent admins only"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Failure 409 {object} dto.ErrorResponse "Request already in progress"
// @Router /admin/users/{id}/temp-admin [post]
func (c *UserController) ToggleTempAdmin(ctx *gin.Context) {
	actorID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}
	userID, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	var req dto.TempAdminRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	row, err := c.userService.ToggleTempAdmin(ctx.Request.Context(), actorID, userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	message := "Temporary admin access revoked"
	if *req.IsTemporaryAdmin {
		message = "Temporary admin access granted"
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(row, message))
}
