package dto

import "github.com/yigit/projecthub/internal/app/models"

// UpdateProjectRequest replaces the editable fields of a project
type UpdateProjectRequest struct {
	Title       string  `json:"title" binding:"required,min=2,max=200"`
	Category    string  `json:"category" binding:"required,max=100"`
	MaxTeamSize int     `json:"maxTeamSize" binding:"required,min=1,max=20"`
	Status      string  `json:"status" binding:"omitempty,oneof=AVAILABLE REQUESTED ASSIGNED"`
	ScopeID     *int64  `json:"scopeId" binding:"omitempty,gt=0"`
	TechStack   *string `json:"techStack"`
	SRS         *string `json:"srs"`
	Description *string `json:"description"`
}

// AssignSoloRequest gives a project to a single student as a one-person team
type AssignSoloRequest struct {
	StudentID int64 `json:"studentId" binding:"required,gt=0"`
}

// ProjectRow is one row of the projects tab
type ProjectRow struct {
	models.Project
	TeamCount int `json:"teamCount"`
}

// NewProjectRow maps a project with its assignment count
func NewProjectRow(p *models.Project) ProjectRow {
	return ProjectRow{Project: *p, TeamCount: len(p.Teams)}
}
