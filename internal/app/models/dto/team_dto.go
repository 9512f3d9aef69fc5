package dto

import "github.com/yigit/projecthub/internal/app/models"

// CreateTeamRequest builds a team by hand
type CreateTeamRequest struct {
	MemberIDs       []int64 `json:"memberIds" binding:"required,min=1,dive,gt=0"`
	LeaderID        *int64  `json:"leaderId" binding:"omitempty,gt=0"`
	ScopeID         *int64  `json:"scopeId" binding:"omitempty,gt=0"`
	ProjectID       *int64  `json:"projectId" binding:"omitempty,gt=0"`
	GuideID         *int64  `json:"guideId" binding:"omitempty,gt=0"`
	SubjectExpertID *int64  `json:"subjectExpertId" binding:"omitempty,gt=0"`
}

// MemberRequest names a student for membership and leadership changes
type MemberRequest struct {
	UserID int64 `json:"userId" binding:"required,gt=0"`
}

// AssignProjectRequest links a project to a team
type AssignProjectRequest struct {
	ProjectID int64 `json:"projectId" binding:"required,gt=0"`
}

// AssignFacultyRequest attaches a guide or subject expert
type AssignFacultyRequest struct {
	FacultyID int64  `json:"facultyId" binding:"required,gt=0"`
	Role      string `json:"role" binding:"required,oneof=GUIDE SUBJECT_EXPERT" example:"GUIDE"`
}

// TeamMemberResponse is a member as shown in the teams tab
type TeamMemberResponse struct {
	UserID     int64  `json:"userId"`
	Name       string `json:"name"`
	RollNumber string `json:"rollNumber"`
	IsLeader   bool   `json:"isLeader"`
}

// FacultyRef is a faculty member attached to a team
type FacultyRef struct {
	ID     int64                  `json:"id"`
	Name   string                 `json:"name"`
	Status *models.ApprovalStatus `json:"status,omitempty"`
}

// TeamRow is one row of the teams tab
type TeamRow struct {
	ID            int64                `json:"id"`
	ScopeID       *int64               `json:"scopeId,omitempty"`
	Members       []TeamMemberResponse `json:"members"`
	MemberCount   int                  `json:"memberCount"`
	LeaderName    string               `json:"leaderName" example:"-"`
	ProjectID     *int64               `json:"projectId,omitempty"`
	ProjectTitle  string               `json:"projectTitle" example:"-"`
	Guide         *FacultyRef          `json:"guide,omitempty"`
	SubjectExpert *FacultyRef          `json:"subjectExpert,omitempty"`
	ReviewCount   int                  `json:"reviewCount"`
}

// Project status filter values of the teams tab
const (
	TeamHasProject = "HAS_PROJECT"
	TeamNoProject  = "NO_PROJECT"
)

// NewTeamRow flattens an assembled team for the teams tab
func NewTeamRow(t *models.Team) TeamRow {
	row := TeamRow{
		ID:           t.ID,
		ScopeID:      t.ScopeID,
		Members:      make([]TeamMemberResponse, 0, len(t.Members)),
		MemberCount:  len(t.Members),
		LeaderName:   "-",
		ProjectID:    t.ProjectID,
		ProjectTitle: "-",
		ReviewCount:  len(t.Reviews),
	}
	for _, m := range t.Members {
		member := TeamMemberResponse{UserID: m.UserID, IsLeader: m.IsLeader}
		if m.User != nil {
			member.Name = m.User.Name
			member.RollNumber = m.User.RollNumberOrEmpty()
		}
		if m.IsLeader && member.Name != "" {
			row.LeaderName = member.Name
		}
		row.Members = append(row.Members, member)
	}
	if t.Project != nil {
		row.ProjectTitle = t.Project.Title
	}
	if t.GuideID != nil {
		row.Guide = &FacultyRef{ID: *t.GuideID, Status: t.GuideStatus}
		if t.Guide != nil {
			row.Guide.Name = t.Guide.Name
		}
	}
	if t.SubjectExpertID != nil {
		row.SubjectExpert = &FacultyRef{ID: *t.SubjectExpertID, Status: t.ExpertStatus}
		if t.SubjectExpert != nil {
			row.SubjectExpert.Name = t.SubjectExpert.Name
		}
	}
	return row
}
