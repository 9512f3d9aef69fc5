package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/projecthub/internal/app/models/dto"
	"github.com/yigit/projecthub/internal/pkg/apperrors"
	"github.com/yigit/projecthub/internal/pkg/logger"
)

type errorMapping struct {
	err      error
	status   int
	code     dto.ErrorCode
	message  string
	severity dto.ErrorSeverity
}

// errorMappings is checked in order; specific sentinels precede the generic ones they may wrap
var errorMappings = []errorMapping{
	// authentication
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials", dto.ErrorSeverityError},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired", dto.ErrorSeverityError},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token", dto.ErrorSeverityError},

	// authorization
	{apperrors.ErrTabRestricted, http.StatusForbidden, dto.ErrorCodeTabRestricted, "Access to this section is restricted", dto.ErrorSeverityWarning},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied", dto.ErrorSeverityError},

	// validation
	{apperrors.ErrMarkOutOfRange, http.StatusBadRequest, dto.ErrorCodeMarkOutOfRange, "Marks must be a number between 0 and 100", dto.ErrorSeverityWarning},
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed", dto.ErrorSeverityWarning},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Bad request", dto.ErrorSeverityWarning},
	{apperrors.ErrNotAStudent, http.StatusBadRequest, dto.ErrorCodeBadRequest, "User is not a student", dto.ErrorSeverityWarning},
	{apperrors.ErrNotFaculty, http.StatusBadRequest, dto.ErrorCodeBadRequest, "User is not a faculty member", dto.ErrorSeverityWarning},
	{apperrors.ErrCannotDeleteSelf, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Admins cannot delete their own account", dto.ErrorSeverityWarning},

	// not found
	{apperrors.ErrUserNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "User not found", dto.ErrorSeverityError},
	{apperrors.ErrTeamNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Team not found", dto.ErrorSeverityError},
	{apperrors.ErrProjectNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Project not found", dto.ErrorSeverityError},
	{apperrors.ErrScopeNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Scope not found", dto.ErrorSeverityError},
	{apperrors.ErrReviewNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Review not found", dto.ErrorSeverityError},
	{apperrors.ErrMarkNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Review mark not found", dto.ErrorSeverityError},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found", dto.ErrorSeverityError},

	// conflicts
	{apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Email already exists", dto.ErrorSeverityWarning},
	{apperrors.ErrRollNumberExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Roll number already exists", dto.ErrorSeverityWarning},
	{apperrors.ErrAlreadyInTeam, http.StatusConflict, dto.ErrorCodeConflict, "Student already belongs to a team", dto.ErrorSeverityWarning},
	{apperrors.ErrNotTeamMember, http.StatusConflict, dto.ErrorCodeConflict, "Student is not a member of this team", dto.ErrorSeverityWarning},
	{apperrors.ErrTeamFull, http.StatusConflict, dto.ErrorCodeConflict, "Project team size limit reached", dto.ErrorSeverityWarning},
	{apperrors.ErrProjectAssigned, http.StatusConflict, dto.ErrorCodeConflict, "Project is already assigned", dto.ErrorSeverityWarning},
	{apperrors.ErrNoProjectAssigned, http.StatusConflict, dto.ErrorCodeConflict, "Team has no project assigned", dto.ErrorSeverityWarning},
	{apperrors.ErrFacultyConflict, http.StatusConflict, dto.ErrorCodeConflict, "Guide and subject expert must be different people", dto.ErrorSeverityWarning},
	{apperrors.ErrRequestInFlight, http.StatusConflict, dto.ErrorCodeRequestInFlight, "A request for this user is already in progress", dto.ErrorSeverityInfo},
	{apperrors.ErrResourceAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists", dto.ErrorSeverityWarning},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeConflict, "Conflict", dto.ErrorSeverityWarning},

	// server
	{apperrors.ErrExportFailed, http.StatusInternalServerError, dto.ErrorCodeExportFailed, "Failed to generate report", dto.ErrorSeverityWarning},
}

// ResolveError returns the HTTP status and error detail for err. A CustomError's
// message replaces the generic one.
func ResolveError(err error) (int, *dto.ErrorDetail) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.err) {
			continue
		}
		message := m.message
		var custom *apperrors.CustomError
		if errors.As(err, &custom) && custom.Message != "" {
			message = custom.Message
		}
		detail := dto.NewErrorDetail(m.code, message).WithSeverity(m.severity)
		if custom != nil && custom.Details != nil {
			detail.WithDetails(custom.Details)
		}
		return m.status, detail
	}
	return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
}

// HandleAPIError writes the error envelope for err and aborts the chain
func HandleAPIError(c *gin.Context, err error) {
	status, detail := ResolveError(err)

	event := logger.Ctx(c.Request.Context()).Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Ctx(c.Request.Context()).Error()
	}
	event.Err(err).
		Int("status", status).
		Str("code", string(detail.Code)).
		Str("path", c.FullPath()).
		Msg("Request failed")

	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}
