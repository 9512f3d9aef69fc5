package models

import "time"

// Project is a proposal teams can be assigned to
type Project struct {
	ID          int64         `json:"id" db:"id"`
	Title       string        `json:"title" db:"title"`
	Category    string        `json:"category" db:"category"`
	MaxTeamSize int           `json:"maxTeamSize" db:"max_team_size"`
	Status      ProjectStatus `json:"status" db:"status"`
	ScopeID     *int64        `json:"scopeId,omitempty" db:"scope_id"`
	TechStack   *string       `json:"techStack,omitempty" db:"tech_stack"`
	SRS         *string       `json:"srs,omitempty" db:"srs"`
	Description *string       `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time     `json:"createdAt" db:"created_at"`

	// IDs of teams the project is assigned to
	Teams []int64 `json:"teams"`
}

// Scope is a batch of teams and projects sharing review rules
type Scope struct {
	ID                   int64  `json:"id" db:"id"`
	Name                 string `json:"name" db:"name"`
	NumberOfPhases       int    `json:"numberOfPhases" db:"number_of_phases"`
	RequireGuide         bool   `json:"requireGuide" db:"require_guide"`
	RequireSubjectExpert bool   `json:"requireSubjectExpert" db:"require_subject_expert"`
}
