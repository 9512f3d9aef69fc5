package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/projecthub/internal/app/models"
	"github.com/yigit/projecthub/internal/pkg/apperrors"
	"github.com/yigit/projecthub/internal/pkg/dberrors"
)

var reviewColumns = []string{"id", "team_id", "faculty_id", "review_phase", "status", "content", "created_at"}

var markColumns = []string{"id", "review_id", "student_id", "marks", "criterion_marks", "is_absent"}

// ReviewRepository handles database operations for reviews and review marks
type ReviewRepository struct {
	db *pgxpool.Pool
}

// NewReviewRepository creates a new ReviewRepository
func NewReviewRepository(db *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// ListByTeams returns the reviews of the given teams, in creation order, each with its marks
func (r *ReviewRepository) ListByTeams(ctx context.Context, teamIDs []int64) ([]models.Review, error) {
	if len(teamIDs) == 0 {
		return []models.Review{}, nil
	}

	sql, args, err := psql.Select(reviewColumns...).From("reviews").
		Where(squirrel.Eq{"team_id": teamIDs}).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building review query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]models.Review, 0)
	index := make(map[int64]int)
	for rows.Next() {
		var rv models.Review
		if err := rows.Scan(&rv.ID, &rv.TeamID, &rv.FacultyID, &rv.ReviewPhase, &rv.Status, &rv.Content, &rv.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning review: %w", err)
		}
		rv.ReviewMarks = []models.ReviewMark{}
		index[rv.ID] = len(reviews)
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(reviews) == 0 {
		return reviews, nil
	}

	ids := make([]int64, 0, len(reviews))
	for _, rv := range reviews {
		ids = append(ids, rv.ID)
	}
	marks, err := r.marksFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, m := range marks {
		if i, ok := index[m.ReviewID]; ok {
			reviews[i].ReviewMarks = append(reviews[i].ReviewMarks, m)
		}
	}
	return reviews, nil
}

func (r *ReviewRepository) marksFor(ctx context.Context, reviewIDs []int64) ([]models.ReviewMark, error) {
	sql, args, err := psql.Select(markColumns...).From("review_marks").
		Where(squirrel.Eq{"review_id": reviewIDs}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building review mark query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying review marks: %w", err)
	}
	defer rows.Close()

	marks := make([]models.ReviewMark, 0)
	for rows.Next() {
		var m models.ReviewMark
		if err := rows.Scan(&m.ID, &m.ReviewID, &m.StudentID, &m.Marks, &m.CriterionMarks, &m.IsAbsent); err != nil {
			return nil, fmt.Errorf("error scanning review mark: %w", err)
		}
		marks = append(marks, m)
	}
	return marks, rows.Err()
}

// GetByID retrieves a review with its marks
func (r *ReviewRepository) GetByID(ctx context.Context, id int64) (*models.Review, error) {
	sql, args, err := psql.Select(reviewColumns...).From("reviews").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building review query: %w", err)
	}

	var rv models.Review
	err = r.db.QueryRow(ctx, sql, args...).Scan(&rv.ID, &rv.TeamID, &rv.FacultyID, &rv.ReviewPhase, &rv.Status, &rv.Content, &rv.CreatedAt)
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrReviewNotFound
		}
		return nil, fmt.Errorf("error retrieving review: %w", err)
	}

	rv.ReviewMarks, err = r.marksFor(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

// GetMark retrieves a single review mark
func (r *ReviewRepository) GetMark(ctx context.Context, id int64) (*models.ReviewMark, error) {
	sql, args, err := psql.Select(markColumns...).From("review_marks").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building review mark query: %w", err)
	}

	var m models.ReviewMark
	err = r.db.QueryRow(ctx, sql, args...).Scan(&m.ID, &m.ReviewID, &m.StudentID, &m.Marks, &m.CriterionMarks, &m.IsAbsent)
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrMarkNotFound
		}
		return nil, fmt.Errorf("error retrieving review mark: %w", err)
	}
	return &m, nil
}

// UpdateMark saves the marks, criterion breakdown and attendance of a mark entry
func (r *ReviewRepository) UpdateMark(ctx context.Context, m *models.ReviewMark) error {
	sql, args, err := psql.Update("review_marks").
		Set("marks", m.Marks).
		Set("criterion_marks", m.CriterionMarks).
		Set("is_absent", m.IsAbsent).
		Where(squirrel.Eq{"id": m.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building update mark query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating review mark: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrMarkNotFound
	}
	return nil
}

// UpdateReview saves the status and content of a review
func (r *ReviewRepository) UpdateReview(ctx context.Context, rv *models.Review) error {
	sql, args, err := psql.Update("reviews").
		Set("status", rv.Status).
		Set("content", rv.Content).
		Set("review_phase", rv.ReviewPhase).
		Where(squirrel.Eq{"id": rv.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building update review query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrReviewNotFound
	}
	return nil
}
