package stats

import (
	"sort"

	"github.com/yigit/projecthub/internal/app/models"
)

// StudentSummary is one row of the individual statistics tab
type StudentSummary struct {
	StudentID       int64           `json:"studentId"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	RollNumber      string          `json:"rollNumber"`
	Department      string          `json:"department"`
	Year            *int            `json:"year,omitempty"`
	TeamID          *int64          `json:"teamId,omitempty"`
	ScopeID         *int64          `json:"scopeId,omitempty"`
	ProjectTitle    string          `json:"projectTitle"`
	GuideID         *int64          `json:"guideId,omitempty"`
	SubjectExpertID *int64          `json:"subjectExpertId,omitempty"`
	ReviewCount     int             `json:"reviewCount"`
	Phases          []int           `json:"phases"`
	PhaseScores     map[int]float64 `json:"phaseScores"`
	OverallScore    *float64        `json:"overallScore"`
	Overall         string          `json:"overall"`

	reviewers map[int64]bool
	history   StudentHistory
}

// History returns the full review history behind the summary
func (s StudentSummary) History() StudentHistory {
	return s.history
}

// ReviewedBy reports whether facultyID is attached to the student's team or reviewed it
func (s StudentSummary) ReviewedBy(facultyID int64) bool {
	if s.GuideID != nil && *s.GuideID == facultyID {
		return true
	}
	if s.SubjectExpertID != nil && *s.SubjectExpertID == facultyID {
		return true
	}
	return s.reviewers[facultyID]
}

// MemberNames indexes the display names of every team member
func MemberNames(teams []models.Team) map[int64]string {
	names := make(map[int64]string)
	for _, t := range teams {
		for _, m := range t.Members {
			if m.User != nil {
				names[m.UserID] = m.User.Name
			}
		}
	}
	return names
}

// TeamsByStudent indexes teams by member id. A student listed in two teams keeps the first.
func TeamsByStudent(teams []models.Team) map[int64]*models.Team {
	out := make(map[int64]*models.Team)
	for i := range teams {
		for _, m := range teams[i].Members {
			if _, seen := out[m.UserID]; !seen {
				out[m.UserID] = &teams[i]
			}
		}
	}
	return out
}

// Summarize builds one summary per student, in the order students were given
func Summarize(students []models.User, teams []models.Team) []StudentSummary {
	byStudent := TeamsByStudent(teams)
	names := MemberNames(teams)

	out := make([]StudentSummary, 0, len(students))
	for i := range students {
		out = append(out, SummarizeStudent(&students[i], byStudent[students[i].ID], names))
	}
	return out
}

// SummarizeStudent builds the summary of one student; team may be nil
func SummarizeStudent(student *models.User, team *models.Team, names map[int64]string) StudentSummary {
	s := StudentSummary{
		StudentID:    student.ID,
		Name:         student.Name,
		Email:        student.Email,
		RollNumber:   student.RollNumberOrEmpty(),
		Department:   student.DepartmentOrEmpty(),
		Year:         student.Year,
		ProjectTitle: NotAvailable,
		Phases:       []int{},
		PhaseScores:  map[int]float64{},
		Overall:      NotAvailable,
		reviewers:    map[int64]bool{},
	}
	if team == nil {
		s.history = BuildHistory(student.ID, nil, names)
		return s
	}

	s.TeamID = &team.ID
	s.ScopeID = team.ScopeID
	s.GuideID = team.GuideID
	s.SubjectExpertID = team.SubjectExpertID
	if team.Project != nil {
		s.ProjectTitle = team.Project.Title
	}
	for _, r := range team.Reviews {
		if r.FacultyID != nil {
			s.reviewers[*r.FacultyID] = true
		}
	}

	h := BuildHistory(student.ID, team.Reviews, names)
	s.history = h
	s.ReviewCount = h.ReviewCount
	for _, p := range h.Phases {
		s.Phases = append(s.Phases, p.Phase)
	}
	s.PhaseScores = h.PhaseScores()
	s.OverallScore = h.OverallScore
	s.Overall = h.Overall
	return s
}

// FacultySummary is one row of the faculty statistics tab
type FacultySummary struct {
	FacultyID         int64    `json:"facultyId"`
	Name              string   `json:"name"`
	Email             string   `json:"email"`
	Department        string   `json:"department"`
	GuidedTeams       int      `json:"guidedTeams"`
	ExpertTeams       int      `json:"expertTeams"`
	PendingApprovals  int      `json:"pendingApprovals"`
	ReviewsGiven      int      `json:"reviewsGiven"`
	StudentsEvaluated int      `json:"studentsEvaluated"`
	AverageMark       *float64 `json:"averageMark"`
	Average           string   `json:"average"`
}

type facultyAcc struct {
	summary  FacultySummary
	sum      float64
	marks    int
	students map[int64]bool
}

// FacultyPerformance aggregates team assignments and review marks per faculty member in a
// single pass over teams. Absent and ungraded marks never count towards the average.
func FacultyPerformance(faculty []models.User, teams []models.Team) []FacultySummary {
	acc := make(map[int64]*facultyAcc, len(faculty))
	for _, f := range faculty {
		acc[f.ID] = &facultyAcc{
			summary: FacultySummary{
				FacultyID:  f.ID,
				Name:       f.Name,
				Email:      f.Email,
				Department: f.DepartmentOrEmpty(),
			},
			students: map[int64]bool{},
		}
	}

	for _, t := range teams {
		if t.GuideID != nil {
			if a, ok := acc[*t.GuideID]; ok {
				a.summary.GuidedTeams++
				if t.GuideStatus != nil && *t.GuideStatus == models.ApprovalPending {
					a.summary.PendingApprovals++
				}
			}
		}
		if t.SubjectExpertID != nil {
			if a, ok := acc[*t.SubjectExpertID]; ok {
				a.summary.ExpertTeams++
				if t.ExpertStatus != nil && *t.ExpertStatus == models.ApprovalPending {
					a.summary.PendingApprovals++
				}
			}
		}
		for _, r := range t.Reviews {
			if r.FacultyID == nil {
				continue
			}
			a, ok := acc[*r.FacultyID]
			if !ok {
				continue
			}
			a.summary.ReviewsGiven++
			for _, m := range r.ReviewMarks {
				if m.IsAbsent || m.Marks == nil {
					continue
				}
				a.sum += *m.Marks
				a.marks++
				a.students[m.StudentID] = true
			}
		}
	}

	out := make([]FacultySummary, 0, len(faculty))
	for _, f := range faculty {
		a := acc[f.ID]
		a.summary.StudentsEvaluated = len(a.students)
		if a.marks > 0 {
			avg := a.sum / float64(a.marks)
			a.summary.AverageMark = &avg
		}
		a.summary.Average = FormatScore(a.summary.AverageMark)
		out = append(out, a.summary)
	}
	return out
}

// FacultyDetail is the drill-down view of one faculty member
type FacultyDetail struct {
	Summary  FacultySummary   `json:"summary"`
	Students []StudentSummary `json:"students"`
}

// FacultyStudents summarizes every student in teams the faculty member guides, advises or
// reviewed, ordered by team then join order.
func FacultyStudents(facultyID int64, teams []models.Team) []StudentSummary {
	names := MemberNames(teams)
	related := make([]*models.Team, 0)
	for i := range teams {
		t := &teams[i]
		if t.HasFaculty(facultyID) || reviewedBy(t, facultyID) {
			related = append(related, t)
		}
	}
	sort.SliceStable(related, func(i, j int) bool { return related[i].ID < related[j].ID })

	out := make([]StudentSummary, 0)
	for _, t := range related {
		for _, m := range t.Members {
			student := m.User
			if student == nil {
				student = &models.User{ID: m.UserID, Name: names[m.UserID]}
			}
			out = append(out, SummarizeStudent(student, t, names))
		}
	}
	return out
}

func reviewedBy(t *models.Team, facultyID int64) bool {
	for _, r := range t.Reviews {
		if r.FacultyID != nil && *r.FacultyID == facultyID {
			return true
		}
	}
	return false
}
