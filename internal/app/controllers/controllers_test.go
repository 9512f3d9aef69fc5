package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appauth "github.com/yigit/projecthub/internal/app/auth"
	"github.com/yigit/projecthub/internal/app/models"
	"github.com/yigit/projecthub/internal/app/models/dto"
	"github.com/yigit/projecthub/internal/app/services"
	"github.com/yigit/projecthub/internal/middleware"
	"github.com/yigit/projecthub/internal/pkg/apperrors"
	"github.com/yigit/projecthub/internal/pkg/listing"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Service mocks implement only what the tests drive; the embedded interface
// satisfies the rest.

type userServiceMock struct {
	services.IUserService
	mock.Mock
}

func (m *userServiceMock) ListStudents(ctx context.Context, view listing.ViewState) (listing.Page[dto.StudentRow], error) {
	args := m.Called(ctx, view)
	return args.Get(0).(listing.Page[dto.StudentRow]), args.Error(1)
}

func (m *userServiceMock) DeleteUser(ctx context.Context, actorID, userID int64) error {
	return m.Called(ctx, actorID, userID).Error(0)
}

type reviewServiceMock struct {
	services.IReviewService
	mock.Mock
}

func (m *reviewServiceMock) UpdateMark(ctx context.Context, actorID, markID int64, req *dto.UpdateMarkRequest) (*models.ReviewMark, error) {
	args := m.Called(ctx, actorID, markID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReviewMark), args.Error(1)
}

type exportServiceMock struct {
	mock.Mock
}

func (m *exportServiceMock) ExportStudents(ctx context.Context, view listing.ViewState) (*services.ExportFile, error) {
	args := m.Called(ctx, view)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ExportFile), args.Error(1)
}

type exportCounter struct {
	errs []error
	rows []int
}

func (c *exportCounter) ObserveExport(err error, rows int) {
	c.errs = append(c.errs, err)
	c.rows = append(c.rows, rows)
}

type permissionReaderStub struct {
	perms appauth.Permissions
	err   error
}

func (s permissionReaderStub) Permissions(context.Context, int64) (appauth.Permissions, error) {
	return s.perms, s.err
}

// authenticated plays the part of JWTAuth
func authenticated(userID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Next()
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestListStudentsParsesView(t *testing.T) {
	svc := &userServiceMock{}
	ctrl := NewUserController(svc, 10, zerolog.Nop())

	router := gin.New()
	router.GET("/admin/students", authenticated(1), ctrl.ListStudents)

	svc.On("ListStudents", mock.Anything, mock.MatchedBy(func(v listing.ViewState) bool {
		return v.Search == "ada" &&
			v.Filter(services.FilterDepartment) == "CSE" &&
			v.Filter(services.FilterStatus) == "NO_TEAM" &&
			v.Sort.Key == "name" && v.Sort.Direction == listing.Desc &&
			v.Page == 2 && v.PageSize == 5
	})).Return(listing.Paginate([]dto.StudentRow{{UserResponse: dto.UserResponse{ID: 3, Name: "Ada"}}}, 1, 5), nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/students?search=ada&department=CSE&status=NO_TEAM&sort=name&order=desc&page=2&size=5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]interface{})
	assert.Len(t, data["items"], 1)
	view := data["view"].(map[string]interface{})
	assert.Equal(t, "desc", view["order"])
	assert.NotEmpty(t, view["view"])
	svc.AssertExpectations(t)
}

func TestDeleteUserErrors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		err    error
		status int
		code   string
	}{
		{"self", "/admin/users/1", apperrors.ErrCannotDeleteSelf, http.StatusBadRequest, string(dto.ErrorCodeBadRequest)},
		{"missing", "/admin/users/9", apperrors.ErrUserNotFound, http.StatusNotFound, string(dto.ErrorCodeResourceNotFound)},
		{"bad id", "/admin/users/abc", nil, http.StatusBadRequest, string(dto.ErrorCodeBadRequest)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &userServiceMock{}
			ctrl := NewUserController(svc, 10, zerolog.Nop())
			router := gin.New()
			router.DELETE("/admin/users/:id", authenticated(1), ctrl.DeleteUser)

			if tt.err != nil {
				svc.On("DeleteUser", mock.Anything, int64(1), mock.AnythingOfType("int64")).Return(tt.err)
			}

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, tt.path, nil))

			assert.Equal(t, tt.status, rec.Code)
			errBody := decode(t, rec)["error"].(map[string]interface{})
			assert.Equal(t, tt.code, errBody["code"])
		})
	}
}

func TestUpdateMarkRejectsOutOfRange(t *testing.T) {
	bodies := map[string]string{
		"above max":          `{"marks": 100.5}`,
		"negative":           `{"marks": -1}`,
		"missing":            `{}`,
		"criterion too high": `{"marks": 50, "criterionMarks": {"design": 120}}`,
		"non-numeric":        `{"marks": "abc"}`,
	}

	for name, payload := range bodies {
		t.Run(name, func(t *testing.T) {
			svc := &reviewServiceMock{}
			ctrl := NewReviewController(svc, zerolog.Nop())
			router := gin.New()
			router.PUT("/admin/marks/:id", authenticated(1), ctrl.UpdateMark)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPut, "/admin/marks/4", bytes.NewBufferString(payload))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(rec, req)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			errBody := decode(t, rec)["error"].(map[string]interface{})
			assert.Equal(t, string(dto.ErrorCodeMarkOutOfRange), errBody["code"])
			svc.AssertNotCalled(t, "UpdateMark", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestUpdateMarkAcceptsBoundary(t *testing.T) {
	svc := &reviewServiceMock{}
	ctrl := NewReviewController(svc, zerolog.Nop())
	router := gin.New()
	router.PUT("/admin/marks/:id", authenticated(1), ctrl.UpdateMark)

	full := 100.0
	svc.On("UpdateMark", mock.Anything, int64(1), int64(4), mock.MatchedBy(func(r *dto.UpdateMarkRequest) bool {
		return r.Marks != nil && *r.Marks == 100
	})).Return(&models.ReviewMark{ID: 4, Marks: &full}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/admin/marks/4", bytes.NewBufferString(`{"marks": 100}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestExportStudentsDownload(t *testing.T) {
	svc := &exportServiceMock{}
	counter := &exportCounter{}
	ctrl := NewStatsController(nil, svc, counter, 10, zerolog.Nop())
	router := gin.New()
	router.GET("/admin/export/students", authenticated(1), ctrl.ExportStudents)

	content := []byte("PK\x03\x04workbook")
	svc.On("ExportStudents", mock.Anything, mock.MatchedBy(func(v listing.ViewState) bool {
		return v.Filter(services.FilterPhase) == "2"
	})).Return(&services.ExportFile{Filename: "student_report_2026-10-19.xlsx", Rows: 3, Content: content}, nil).Once()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/export/students?phase=2", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, services.XLSXContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="student_report_2026-10-19.xlsx"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, content, rec.Body.Bytes())
	assert.Equal(t, []int{3}, counter.rows)
	assert.Nil(t, counter.errs[0])
}

func TestExportStudentsFailure(t *testing.T) {
	svc := &exportServiceMock{}
	counter := &exportCounter{}
	ctrl := NewStatsController(nil, svc, counter, 10, zerolog.Nop())
	router := gin.New()
	router.GET("/admin/export/students", authenticated(1), ctrl.ExportStudents)

	svc.On("ExportStudents", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: zip: write failed", apperrors.ErrExportFailed)).Once()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/export/students", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	errBody := decode(t, rec)["error"].(map[string]interface{})
	assert.Equal(t, string(dto.ErrorCodeExportFailed), errBody["code"])
	assert.Equal(t, string(dto.ErrorSeverityWarning), errBody["severity"])
	require.Len(t, counter.errs, 1)
	assert.Error(t, counter.errs[0])
}

func TestMyPermissionsReportsMalformedGrant(t *testing.T) {
	reader := permissionReaderStub{perms: appauth.Permissions{
		UserID: 7,
		Role:   models.RoleFaculty,
		Level:  appauth.AccessRestricted,
		Error:  appauth.ErrMalformedPermissions,
	}}
	ctrl := NewAuthController(nil, reader, zerolog.Nop())
	router := gin.New()
	router.GET("/admin/me/permissions", authenticated(7), ctrl.MyPermissions)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/me/permissions", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "RESTRICTED", data["level"])
	assert.Equal(t, "error parsing permissions", data["error"])
	assert.Empty(t, data["tabs"])
}
