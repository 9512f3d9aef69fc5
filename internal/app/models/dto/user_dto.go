package dto

import (
	"time"

	"github.com/yigit/projecthub/internal/app/models"
)

// UserResponse represents basic user information
type UserResponse struct {
	ID               int64           `json:"id" example:"12"`
	Name             string          `json:"name" example:"Ada Lovelace"`
	Email            string          `json:"email" example:"ada@college.edu"`
	Role             models.RoleType `json:"role" example:"STUDENT"`
	RollNumber       *string         `json:"rollNumber,omitempty" example:"21CS042"`
	Department       *string         `json:"department,omitempty" example:"CSE"`
	Year             *int            `json:"year,omitempty" example:"3"`
	IsTemporaryAdmin bool            `json:"isTemporaryAdmin"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// NewUserResponse maps a user without its credentials
func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:               u.ID,
		Name:             u.Name,
		Email:            u.Email,
		Role:             u.Role,
		RollNumber:       u.RollNumber,
		Department:       u.Department,
		Year:             u.Year,
		IsTemporaryAdmin: u.IsTemporaryAdmin,
		CreatedAt:        u.CreatedAt,
	}
}

// StudentRow is one row of the students tab
type StudentRow struct {
	UserResponse
	TeamID       *int64 `json:"teamId,omitempty"`
	TeamStatus   string `json:"teamStatus" example:"IN_TEAM"`
	IsLeader     bool   `json:"isLeader"`
	ProjectTitle string `json:"projectTitle" example:"-"`
}

// Team status filter values of the students tab
const (
	TeamStatusInTeam = "IN_TEAM"
	TeamStatusNoTeam = "NO_TEAM"
)

// FacultyRow is one row of the faculty tab
type FacultyRow struct {
	UserResponse
	GuidedTeams int `json:"guidedTeams"`
	ExpertTeams int `json:"expertTeams"`
}

// AdminRow is one row of the admins tab
type AdminRow struct {
	UserResponse
	AdminType       string       `json:"adminType" example:"TEMPORARY"`
	Tabs            []models.Tab `json:"tabs"`
	PermissionError string       `json:"permissionError,omitempty"`
}

// Admin type filter values of the admins tab
const (
	AdminPermanent = "PERMANENT"
	AdminTemporary = "TEMPORARY"
)

// CreateAdminRequest adds a permanent admin
type CreateAdminRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// CreateFacultyRequest adds a faculty member
type CreateFacultyRequest struct {
	Name       string `json:"name" binding:"required,min=2,max=100"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	Department string `json:"department" binding:"required,max=50"`
}

// UpdateUserRequest changes profile fields; omitted fields keep their value
type UpdateUserRequest struct {
	Name       *string `json:"name" binding:"omitempty,min=2,max=100"`
	Email      *string `json:"email" binding:"omitempty,email"`
	RollNumber *string `json:"rollNumber" binding:"omitempty,rollno"`
	Department *string `json:"department" binding:"omitempty,max=50"`
	Year       *int    `json:"year" binding:"omitempty,min=1,max=6"`
}

// TempAdminRequest grants or revokes temporary admin access
type TempAdminRequest struct {
	IsTemporaryAdmin *bool    `json:"isTemporaryAdmin" binding:"required"`
	Tabs             []string `json:"tabs" binding:"omitempty,dive,tab" example:"students,teams"`
}

// BulkDeleteRequest deletes several users at once
type BulkDeleteRequest struct {
	UserIDs []int64 `json:"userIds" binding:"required,min=1,dive,gt=0"`
}

// BulkDeleteResponse reports how many users were removed
type BulkDeleteResponse struct {
	Requested int   `json:"requested"`
	Deleted   int64 `json:"deleted"`
}
