// Package stats derives review statistics for students and faculty from team snapshots.
package stats

import (
	"encoding/json"
	"sort"
	"strconv"
	"time"

	"github.com/yigit/projecthub/internal/app/models"
)

// NotAvailable is shown in place of a score that cannot be computed
const NotAvailable = "-"

// MarkView is one student's entry in a review
type MarkView struct {
	StudentID   int64              `json:"studentId"`
	StudentName string             `json:"studentName,omitempty"`
	Marks       *float64           `json:"marks"`
	IsAbsent    bool               `json:"isAbsent"`
	Criteria    map[string]float64 `json:"criteria,omitempty"`
}

// ReviewView is a review annotated for one student
type ReviewView struct {
	ReviewID  int64      `json:"reviewId"`
	Phase     int        `json:"phase"`
	FacultyID *int64     `json:"facultyId,omitempty"`
	Status    string     `json:"status"`
	Content   string     `json:"content,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	Mark      *MarkView  `json:"mark"`
	Teammates []MarkView `json:"teammates"`
	Counted   bool       `json:"counted"` // the mark is the one used for its phase score
}

// PhaseGroup holds the reviews of one phase in creation order
type PhaseGroup struct {
	Phase   int          `json:"phase"`
	Reviews []ReviewView `json:"reviews"`
	Score   *float64     `json:"score"`
}

// StudentHistory is the per-phase review history of one student
type StudentHistory struct {
	StudentID    int64        `json:"studentId"`
	Phases       []PhaseGroup `json:"phases"`
	ReviewCount  int          `json:"reviewCount"`
	OverallScore *float64     `json:"overallScore"`
	Overall      string       `json:"overall"`
}

// PhaseScores returns the counted score per phase
func (h StudentHistory) PhaseScores() map[int]float64 {
	out := make(map[int]float64, len(h.Phases))
	for _, p := range h.Phases {
		if p.Score != nil {
			out[p.Phase] = *p.Score
		}
	}
	return out
}

// HasPhase reports whether the student was reviewed in phase
func (h StudentHistory) HasPhase(phase int) bool {
	for _, p := range h.Phases {
		if p.Phase == phase {
			return true
		}
	}
	return false
}

// BuildHistory groups reviews by phase and scores studentID. Within a phase only the
// first non-absent, non-null mark counts; the overall score averages those phase scores.
// names resolves teammate names and may be nil.
func BuildHistory(studentID int64, reviews []models.Review, names map[int64]string) StudentHistory {
	byPhase := make(map[int][]models.Review)
	for _, r := range reviews {
		byPhase[r.Phase()] = append(byPhase[r.Phase()], r)
	}

	phases := make([]int, 0, len(byPhase))
	for p := range byPhase {
		phases = append(phases, p)
	}
	sort.Ints(phases)

	h := StudentHistory{StudentID: studentID, Phases: make([]PhaseGroup, 0, len(phases))}
	var sum float64
	var counted int

	for _, phase := range phases {
		list := byPhase[phase]
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		})

		group := PhaseGroup{Phase: phase, Reviews: make([]ReviewView, 0, len(list))}
		for _, r := range list {
			view := ReviewView{
				ReviewID:  r.ID,
				Phase:     phase,
				FacultyID: r.FacultyID,
				Status:    r.Status,
				CreatedAt: r.CreatedAt,
				Teammates: []MarkView{},
			}
			if r.Content != nil {
				view.Content = *r.Content
			}

			if m := r.MarkFor(studentID); m != nil {
				mv := toMarkView(*m, names)
				view.Mark = &mv
				if group.Score == nil && !m.IsAbsent && m.Marks != nil {
					score := *m.Marks
					group.Score = &score
					view.Counted = true
				}
			}
			for _, m := range r.ReviewMarks {
				if m.StudentID != studentID {
					view.Teammates = append(view.Teammates, toMarkView(m, names))
				}
			}

			group.Reviews = append(group.Reviews, view)
			h.ReviewCount++
		}

		if group.Score != nil {
			sum += *group.Score
			counted++
		}
		h.Phases = append(h.Phases, group)
	}

	h.Overall = NotAvailable
	if counted > 0 {
		avg := sum / float64(counted)
		h.OverallScore = &avg
		h.Overall = FormatScore(&avg)
	}
	return h
}

func toMarkView(m models.ReviewMark, names map[int64]string) MarkView {
	mv := MarkView{
		StudentID: m.StudentID,
		Marks:     m.Marks,
		IsAbsent:  m.IsAbsent,
		Criteria:  ParseCriteria(m.CriterionMarks),
	}
	if names != nil {
		mv.StudentName = names[m.StudentID]
	}
	return mv
}

type criterionEntry struct {
	Criterion string  `json:"criterion"`
	Name      string  `json:"name"`
	Marks     float64 `json:"marks"`
}

// ParseCriteria decodes a serialized criterion breakdown. Both {"name": marks} objects and
// [{"criterion": name, "marks": n}] arrays are accepted; anything else yields nil.
func ParseCriteria(raw *string) map[string]float64 {
	if raw == nil || *raw == "" {
		return nil
	}

	var asMap map[string]float64
	if err := json.Unmarshal([]byte(*raw), &asMap); err == nil {
		if len(asMap) == 0 {
			return nil
		}
		return asMap
	}

	var entries []criterionEntry
	if err := json.Unmarshal([]byte(*raw), &entries); err != nil {
		return nil
	}
	out := make(map[string]float64, len(entries))
	for _, e := range entries {
		name := e.Criterion
		if name == "" {
			name = e.Name
		}
		if name == "" {
			continue
		}
		out[name] = e.Marks
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// FormatScore renders a score with two decimals, or NotAvailable
func FormatScore(score *float64) string {
	if score == nil {
		return NotAvailable
	}
	return strconv.FormatFloat(*score, 'f', 2, 64)
}
