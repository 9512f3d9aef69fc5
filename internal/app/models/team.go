package models

import "time"

// Team is a group of students working on one project within a scope
type Team struct {
	ID              int64           `json:"id" db:"id"`
	ScopeID         *int64          `json:"scopeId,omitempty" db:"scope_id"`
	GuideID         *int64          `json:"guideId,omitempty" db:"guide_id"`
	GuideStatus     *ApprovalStatus `json:"guideStatus,omitempty" db:"guide_status"`
	SubjectExpertID *int64          `json:"subjectExpertId,omitempty" db:"subject_expert_id"`
	ExpertStatus    *ApprovalStatus `json:"expertStatus,omitempty" db:"expert_status"`
	ProjectID       *int64          `json:"projectId,omitempty" db:"project_id"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`

	// Relations (populated by the team repository)
	Members       []TeamMember `json:"members"`
	Project       *Project     `json:"project,omitempty"`
	Guide         *User        `json:"guide,omitempty"`
	SubjectExpert *User        `json:"subjectExpert,omitempty"`
	Reviews       []Review     `json:"reviews"`
}

// TeamMember is one row of 'team_members'; the order of Members is join order
type TeamMember struct {
	UserID   int64 `json:"userId" db:"user_id"`
	IsLeader bool  `json:"isLeader" db:"is_leader"`
	User     *User `json:"user,omitempty"`
}

// Leader returns the team leader, if any
func (t *Team) Leader() *TeamMember {
	for i := range t.Members {
		if t.Members[i].IsLeader {
			return &t.Members[i]
		}
	}
	return nil
}

// HasMember reports whether userID belongs to the team
func (t *Team) HasMember(userID int64) bool {
	for _, m := range t.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// HasFaculty reports whether facultyID is the guide or the subject expert
func (t *Team) HasFaculty(facultyID int64) bool {
	return (t.GuideID != nil && *t.GuideID == facultyID) ||
		(t.SubjectExpertID != nil && *t.SubjectExpertID == facultyID)
}
