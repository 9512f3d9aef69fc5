package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	appauth "github.com/yigit/projecthub/internal/app/auth"
	"github.com/yigit/projecthub/internal/app/models"
	"github.com/yigit/projecthub/internal/app/models/dto"
	"github.com/yigit/projecthub/internal/app/repositories"
	"github.com/yigit/projecthub/internal/app/stats"
	"github.com/yigit/projecthub/internal/pkg/apperrors"
	"github.com/yigit/projecthub/internal/pkg/auth"
	"github.com/yigit/projecthub/internal/pkg/listing"
	"github.com/yigit/projecthub/internal/pkg/websocket"
)

// Filter names of the user tabs
const (
	FilterDepartment = "department"
	FilterYear       = "year"
	FilterScope      = "scopeId"
	FilterStatus     = "status"
)

var studentSortKeys = listing.Keys[dto.StudentRow]{
	"name":       func(r dto.StudentRow) listing.Value { return listing.Text(r.Name) },
	"email":      func(r dto.StudentRow) listing.Value { return listing.Text(r.Email) },
	"rollNumber": func(r dto.StudentRow) listing.Value { return listing.Text(optionalString(r.RollNumber)) },
	"department": func(r dto.StudentRow) listing.Value { return listing.Text(optionalString(r.Department)) },
	"year":       func(r dto.StudentRow) listing.Value { return listing.IntOrMissing(r.Year) },
	"team": func(r dto.StudentRow) listing.Value {
		if r.TeamID == nil {
			return listing.Number(listing.Missing)
		}
		return listing.Number(float64(*r.TeamID))
	},
	"project": func(r dto.StudentRow) listing.Value { return listing.Text(r.ProjectTitle) },
}

var facultySortKeys = listing.Keys[dto.FacultyRow]{
	"name":        func(r dto.FacultyRow) listing.Value { return listing.Text(r.Name) },
	"email":       func(r dto.FacultyRow) listing.Value { return listing.Text(r.Email) },
	"department":  func(r dto.FacultyRow) listing.Value { return listing.Text(optionalString(r.Department)) },
	"guidedTeams": func(r dto.FacultyRow) listing.Value { return listing.Number(float64(r.GuidedTeams)) },
	"expertTeams": func(r dto.FacultyRow) listing.Value { return listing.Number(float64(r.ExpertTeams)) },
}

var adminSortKeys = listing.Keys[dto.AdminRow]{
	"name":  func(r dto.AdminRow) listing.Value { return listing.Text(r.Name) },
	"email": func(r dto.AdminRow) listing.Value { return listing.Text(r.Email) },
	"type":  func(r dto.AdminRow) listing.Value { return listing.Text(r.AdminType) },
	"tabs":  func(r dto.AdminRow) listing.Value { return listing.Number(float64(len(r.Tabs))) },
}

// IUserService backs the students, faculty and admins tabs
type IUserService interface {
	ListStudents(ctx context.Context, view listing.ViewState) (listing.Page[dto.StudentRow], error)
	ListFaculty(ctx context.Context, view listing.ViewState) (listing.Page[dto.FacultyRow], error)
	ListAdmins(ctx context.Context, view listing.ViewState) (listing.Page[dto.AdminRow], error)
	AddAdmin(ctx context.Context, actorID int64, req *dto.CreateAdminRequest) (*dto.UserResponse, error)
	AddFaculty(ctx context.Context, actorID int64, req *dto.CreateFacultyRequest) (*dto.UserResponse, error)
	UpdateUser(ctx context.Context, actorID, userID int64, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	DeleteUser(ctx context.Context, actorID, userID int64) error
	BulkDelete(ctx context.Context, actorID int64, req *dto.BulkDeleteRequest) (*dto.BulkDeleteResponse, error)
	ToggleTempAdmin(ctx context.Context, actorID, userID int64, req *dto.TempAdminRequest) (*dto.AdminRow, error)
}

// UserService manages accounts of every role
type UserService struct {
	userRepo repositories.IUserRepository
	teamRepo repositories.ITeamRepository
	events   EventPublisher
	logger   zerolog.Logger

	// collapses double-submitted temp admin toggles per user
	inflight singleflight.Group
}

// NewUserService creates a new UserService
func NewUserService(
	userRepo repositories.IUserRepository,
	teamRepo repositories.ITeamRepository,
	events EventPublisher,
	logger zerolog.Logger,
) *UserService {
	return &UserService{
		userRepo: userRepo,
		teamRepo: teamRepo,
		events:   publisherOrNop(events),
		logger:   logger,
	}
}

// ListStudents returns a page of the students tab
func (s *UserService) ListStudents(ctx context.Context, view listing.ViewState) (listing.Page[dto.StudentRow], error) {
	students, err := s.userRepo.ListByRole(ctx, models.RoleStudent)
	if err != nil {
		return listing.Page[dto.StudentRow]{}, err
	}
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return listing.Page[dto.StudentRow]{}, err
	}

	byStudent := stats.TeamsByStudent(teams)
	rows := make([]dto.StudentRow, 0, len(students))
	for i := range students {
		rows = append(rows, newStudentRow(&students[i], byStudent[students[i].ID]))
	}

	filter := listing.NewFilter[dto.StudentRow]().
		Search(view.Search, func(r dto.StudentRow) []string {
			return []string{r.Name, r.Email, optionalString(r.RollNumber), optionalString(r.Department)}
		}).
		Equals(view.Filter(FilterDepartment), func(r dto.StudentRow) string { return optionalString(r.Department) }).
		Equals(view.Filter(FilterYear), func(r dto.StudentRow) string { return optionalIntText(r.Year) }).
		Equals(view.Filter(FilterScope), func(r dto.StudentRow) string {
			if t := byStudent[r.ID]; t != nil {
				return optionalIDText(t.ScopeID)
			}
			return ""
		}).
		Equals(view.Filter(FilterStatus), func(r dto.StudentRow) string { return r.TeamStatus })

	sorted := listing.SortBy(filter.Apply(rows), view.Sort, studentSortKeys)
	return listing.Paginate(sorted, view.Page, view.PageSize), nil
}

func newStudentRow(u *models.User, team *models.Team) dto.StudentRow {
	row := dto.StudentRow{
		UserResponse: dto.NewUserResponse(u),
		TeamStatus:   dto.TeamStatusNoTeam,
		ProjectTitle: stats.NotAvailable,
	}
	if team == nil {
		return row
	}
	row.TeamID = &team.ID
	row.TeamStatus = dto.TeamStatusInTeam
	if leader := team.Leader(); leader != nil && leader.UserID == u.ID {
		row.IsLeader = true
	}
	if team.Project != nil {
		row.ProjectTitle = team.Project.Title
	}
	return row
}

// ListFaculty returns a page of the faculty tab
func (s *UserService) ListFaculty(ctx context.Context, view listing.ViewState) (listing.Page[dto.FacultyRow], error) {
	faculty, err := s.userRepo.ListByRole(ctx, models.RoleFaculty)
	if err != nil {
		return listing.Page[dto.FacultyRow]{}, err
	}
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return listing.Page[dto.FacultyRow]{}, err
	}

	guided := make(map[int64]int)
	advised := make(map[int64]int)
	for _, t := range teams {
		if t.GuideID != nil {
			guided[*t.GuideID]++
		}
		if t.SubjectExpertID != nil {
			advised[*t.SubjectExpertID]++
		}
	}

	rows := make([]dto.FacultyRow, 0, len(faculty))
	for i := range faculty {
		rows = append(rows, dto.FacultyRow{
			UserResponse: dto.NewUserResponse(&faculty[i]),
			GuidedTeams:  guided[faculty[i].ID],
			ExpertTeams:  advised[faculty[i].ID],
		})
	}

	filter := listing.NewFilter[dto.FacultyRow]().
		Search(view.Search, func(r dto.FacultyRow) []string {
			return []string{r.Name, r.Email, optionalString(r.Department)}
		}).
		Equals(view.Filter(FilterDepartment), func(r dto.FacultyRow) string { return optionalString(r.Department) })

	sorted := listing.SortBy(filter.Apply(rows), view.Sort, facultySortKeys)
	return listing.Paginate(sorted, view.Page, view.PageSize), nil
}

// ListAdmins returns a page of the admins tab
func (s *UserService) ListAdmins(ctx context.Context, view listing.ViewState) (listing.Page[dto.AdminRow], error) {
	admins, err := s.userRepo.ListAdmins(ctx)
	if err != nil {
		return listing.Page[dto.AdminRow]{}, err
	}

	rows := make([]dto.AdminRow, 0, len(admins))
	for i := range admins {
		rows = append(rows, newAdminRow(&admins[i]))
	}

	filter := listing.NewFilter[dto.AdminRow]().
		Search(view.Search, func(r dto.AdminRow) []string { return []string{r.Name, r.Email} }).
		Equals(view.Filter(FilterStatus), func(r dto.AdminRow) string { return r.AdminType })

	sorted := listing.SortBy(filter.Apply(rows), view.Sort, adminSortKeys)
	return listing.Paginate(sorted, view.Page, view.PageSize), nil
}

func newAdminRow(u *models.User) dto.AdminRow {
	p := appauth.ParsePermissions(u)
	row := dto.AdminRow{
		UserResponse:    dto.NewUserResponse(u),
		AdminType:       dto.AdminTemporary,
		Tabs:            p.Tabs,
		PermissionError: p.Error,
	}
	if u.Role == models.RoleAdmin {
		row.AdminType = dto.AdminPermanent
	}
	return row
}

// AddAdmin creates a permanent admin account
func (s *UserService) AddAdmin(ctx context.Context, actorID int64, req *dto.CreateAdminRequest) (*dto.UserResponse, error) {
	user := &models.User{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.ToLower(strings.TrimSpace(req.Email)),
		Role:  models.RoleAdmin,
	}
	return s.create(ctx, actorID, user, req.Password)
}

// AddFaculty creates a faculty account
func (s *UserService) AddFaculty(ctx context.Context, actorID int64, req *dto.CreateFacultyRequest) (*dto.UserResponse, error) {
	department := strings.TrimSpace(req.Department)
	user := &models.User{
		Name:       strings.TrimSpace(req.Name),
		Email:      strings.ToLower(strings.TrimSpace(req.Email)),
		Role:       models.RoleFaculty,
		Department: &department,
	}
	return s.create(ctx, actorID, user, req.Password)
}

func (s *UserService) create(ctx context.Context, actorID int64, user *models.User, password string) (*dto.UserResponse, error) {
	hashed, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}
	user.Password = hashed

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("userID", user.ID).
		Str("role", string(user.Role)).
		Int64("actorID", actorID).
		Msg("User created")
	s.events.Publish(websocket.EventCreated, websocket.EntityUser, user.ID, actorID)

	resp := dto.NewUserResponse(user)
	return &resp, nil
}

// UpdateUser changes the profile fields present in req
func (s *UserService) UpdateUser(ctx context.Context, actorID, userID int64, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Department != nil {
		department := strings.TrimSpace(*req.Department)
		user.Department = &department
	}
	if req.RollNumber != nil || req.Year != nil {
		if user.Role != models.RoleStudent {
			return nil, apperrors.ErrNotAStudent
		}
		if req.RollNumber != nil {
			roll := strings.ToUpper(strings.TrimSpace(*req.RollNumber))
			user.RollNumber = &roll
		}
		if req.Year != nil {
			user.Year = req.Year
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userID", userID).Int64("actorID", actorID).Msg("User updated")
	s.events.Publish(websocket.EventUpdated, websocket.EntityUser, userID, actorID)

	resp := dto.NewUserResponse(user)
	return &resp, nil
}

// DeleteUser removes one account; admins cannot remove themselves
func (s *UserService) DeleteUser(ctx context.Context, actorID, userID int64) error {
	if actorID == userID {
		return apperrors.ErrCannotDeleteSelf
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}

	s.logger.Info().Int64("userID", userID).Int64("actorID", actorID).Msg("User deleted")
	s.events.Publish(websocket.EventDeleted, websocket.EntityUser, userID, actorID)
	return nil
}

// BulkDelete removes every listed account in one statement. Ids that no longer
// exist are skipped; the caller's own id rejects the whole request.
func (s *UserService) BulkDelete(ctx context.Context, actorID int64, req *dto.BulkDeleteRequest) (*dto.BulkDeleteResponse, error) {
	seen := make(map[int64]bool, len(req.UserIDs))
	ids := make([]int64, 0, len(req.UserIDs))
	for _, id := range req.UserIDs {
		if id == actorID {
			return nil, apperrors.ErrCannotDeleteSelf
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	deleted, err := s.userRepo.DeleteMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int("requested", len(ids)).Int64("deleted", deleted).Int64("actorID", actorID).Msg("Users bulk deleted")
	for _, id := range ids {
		s.events.Publish(websocket.EventDeleted, websocket.EntityUser, id, actorID)
	}
	return &dto.BulkDeleteResponse{Requested: len(ids), Deleted: deleted}, nil
}

type tempAdminResult struct {
	payload string
	row     *dto.AdminRow
}

// tempAdminFailure carries the payload of a failed call so joined requests can tell
// whether the failure answers their own request
type tempAdminFailure struct {
	payload string
	err     error
}

func (f *tempAdminFailure) Error() string { return f.err.Error() }

func (f *tempAdminFailure) Unwrap() error { return f.err }

// ToggleTempAdmin grants or revokes temporary admin access. Concurrent requests for
// the same user run once: identical duplicates share the result, a different
// request arriving meanwhile gets ErrRequestInFlight.
func (s *UserService) ToggleTempAdmin(ctx context.Context, actorID, userID int64, req *dto.TempAdminRequest) (*dto.AdminRow, error) {
	grant := req.IsTemporaryAdmin != nil && *req.IsTemporaryAdmin

	payload := "revoke"
	var tabs *string
	if grant {
		if len(req.Tabs) == 0 {
			return nil, apperrors.NewBadRequestError("at least one tab must be granted")
		}
		granted := make([]models.Tab, 0, len(req.Tabs))
		for _, t := range req.Tabs {
			granted = append(granted, models.Tab(t))
		}
		encoded, err := appauth.EncodeTabs(granted)
		if err != nil {
			return nil, err
		}
		tabs = &encoded
		payload = "grant:" + encoded
	}

	key := fmt.Sprintf("temp-admin:%d", userID)
	executed := false
	v, err, shared := s.inflight.Do(key, func() (interface{}, error) {
		executed = true
		row, err := s.setTempAdmin(ctx, actorID, userID, grant, tabs)
		if err != nil {
			return nil, &tempAdminFailure{payload: payload, err: err}
		}
		return tempAdminResult{payload: payload, row: row}, nil
	})
	joined := shared && !executed

	if err != nil {
		var failure *tempAdminFailure
		if !errors.As(err, &failure) {
			return nil, err
		}
		if joined && failure.payload != payload {
			s.logger.Warn().Int64("userID", userID).Int64("actorID", actorID).Msg("Temporary admin change already in progress")
			return nil, apperrors.ErrRequestInFlight
		}
		return nil, failure.err
	}

	res := v.(tempAdminResult)
	if joined && res.payload != payload {
		s.logger.Warn().Int64("userID", userID).Int64("actorID", actorID).Msg("Temporary admin change already in progress")
		return nil, apperrors.ErrRequestInFlight
	}
	return res.row, nil
}

func (s *UserService) setTempAdmin(ctx context.Context, actorID, userID int64, grant bool, tabs *string) (*dto.AdminRow, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role == models.RoleAdmin {
		return nil, apperrors.NewBadRequestError("permanent admins already have full access")
	}

	if err := s.userRepo.SetTemporaryAdmin(ctx, userID, grant, tabs); err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error changing temporary admin access: %w", err)
	}

	user.IsTemporaryAdmin = grant
	user.TempAdminTabs = tabs
	if !grant {
		user.TempAdminTabs = nil
	}

	s.logger.Info().
		Int64("userID", userID).
		Bool("granted", grant).
		Int64("actorID", actorID).
		Msg("Temporary admin access changed")
	s.events.Publish(websocket.EventUpdated, websocket.EntityUser, userID, actorID)

	row := newAdminRow(user)
	return &row, nil
}
