package models

// RoleType defines the user role type
type RoleType string

const (
	RoleStudent RoleType = "STUDENT"
	RoleFaculty RoleType = "FACULTY"
	RoleAdmin   RoleType = "ADMIN"
)

// ProjectStatus is the allocation state of a project
type ProjectStatus string

const (
	ProjectAvailable ProjectStatus = "AVAILABLE"
	ProjectRequested ProjectStatus = "REQUESTED"
	ProjectAssigned  ProjectStatus = "ASSIGNED"
)

// ApprovalStatus tracks a faculty member's answer to a team request
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

// FacultyRole is the capacity in which a faculty member is attached to a team
type FacultyRole string

const (
	FacultyRoleGuide         FacultyRole = "GUIDE"
	FacultyRoleSubjectExpert FacultyRole = "SUBJECT_EXPERT"
)

// Tab identifies an admin console section. Temporary admins are limited to a subset.
type Tab string

const (
	TabStudents        Tab = "students"
	TabFaculty         Tab = "faculty"
	TabAdmins          Tab = "admins"
	TabProjects        Tab = "projects"
	TabTeams           Tab = "teams"
	TabFacultyStats    Tab = "faculty-stats"
	TabIndividualStats Tab = "individual-stats"
)

// AllTabs lists every console tab in display order
var AllTabs = []Tab{
	TabStudents,
	TabFaculty,
	TabAdmins,
	TabProjects,
	TabTeams,
	TabFacultyStats,
	TabIndividualStats,
}

// IsValidTab reports whether s names a known tab
func IsValidTab(s string) bool {
	for _, t := range AllTabs {
		if string(t) == s {
			return true
		}
	}
	return false
}
