package dto

// UpdateMarkRequest edits one student's mark in a review. Marks may be omitted only when the student was absent.
type UpdateMarkRequest struct {
	Marks          *float64           `json:"marks" binding:"required_without=IsAbsent,omitempty,min=0,max=100" example:"78.5"`
	IsAbsent       bool               `json:"isAbsent"`
	CriterionMarks map[string]float64 `json:"criterionMarks" binding:"omitempty,dive,min=0,max=100"`
}

// UpdateReviewRequest edits a review; omitted fields keep their value
type UpdateReviewRequest struct {
	Status      *string `json:"status" binding:"omitempty,oneof=PENDING COMPLETED"`
	Content     *string `json:"content" binding:"omitempty,max=5000"`
	ReviewPhase *int    `json:"reviewPhase" binding:"omitempty,min=1,max=10"`
}
