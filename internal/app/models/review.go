package models

import "time"

// Review is one evaluation of a team by a faculty member in a given phase
type Review struct {
	ID          int64        `json:"id" db:"id"`
	TeamID      int64        `json:"teamId" db:"team_id"`
	FacultyID   *int64       `json:"facultyId,omitempty" db:"faculty_id"`
	ReviewPhase *int         `json:"reviewPhase,omitempty" db:"review_phase"`
	Status      string       `json:"status" db:"status"`
	Content     *string      `json:"content,omitempty" db:"content"`
	CreatedAt   time.Time    `json:"createdAt" db:"created_at"`
	ReviewMarks []ReviewMark `json:"reviewMarks"`
}

// ReviewMark is the mark a single student received in a review
type ReviewMark struct {
	ID             int64    `json:"id" db:"id"`
	ReviewID       int64    `json:"reviewId" db:"review_id"`
	StudentID      int64    `json:"studentId" db:"student_id"`
	Marks          *float64 `json:"marks,omitempty" db:"marks"`
	CriterionMarks *string  `json:"criterionMarks,omitempty" db:"criterion_marks"` // serialized JSON
	IsAbsent       bool     `json:"isAbsent" db:"is_absent"`
}

// Phase returns the review phase, defaulting to 1 when unset
func (r *Review) Phase() int {
	if r.ReviewPhase == nil {
		return 1
	}
	return *r.ReviewPhase
}

// MarkFor finds the mark entry for studentID
func (r *Review) MarkFor(studentID int64) *ReviewMark {
	for i := range r.ReviewMarks {
		if r.ReviewMarks[i].StudentID == studentID {
			return &r.ReviewMarks[i]
		}
	}
	return nil
}
