package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")
	ErrTabRestricted    = errors.New("access to this section is restricted")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrRollNumberExists   = errors.New("roll number already exists")
	ErrNotAStudent        = errors.New("user is not a student")
	ErrNotFaculty         = errors.New("user is not a faculty member")
	ErrCannotDeleteSelf   = errors.New("admins cannot delete their own account")
)

// Team and project errors
var (
	ErrTeamNotFound      = errors.New("team not found")
	ErrProjectNotFound   = errors.New("project not found")
	ErrScopeNotFound     = errors.New("scope not found")
	ErrAlreadyInTeam     = errors.New("student already belongs to a team")
	ErrNotTeamMember     = errors.New("student is not a member of this team")
	ErrTeamFull          = errors.New("project team size limit reached")
	ErrProjectAssigned   = errors.New("project is already assigned")
	ErrNoProjectAssigned = errors.New("team has no project assigned")
	ErrFacultyConflict   = errors.New("guide and subject expert must be different people")
)

// Review errors
var (
	ErrReviewNotFound  = errors.New("review not found")
	ErrMarkNotFound    = errors.New("review mark not found")
	ErrMarkOutOfRange  = errors.New("marks must be a number between 0 and 100")
	ErrRequestInFlight = errors.New("a request for this user is already in progress")
)

// Export errors
var (
	ErrExportFailed = errors.New("failed to generate report")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// Is returns whether err matches target or any of errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err       error
	Message   string
	StatusMsg string
	Code      string
	Details   map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}
