package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yigit/projecthub/internal/app/models"
	"github.com/yigit/projecthub/internal/app/models/dto"
	"github.com/yigit/projecthub/internal/app/repositories"
	"github.com/yigit/projecthub/internal/pkg/apperrors"
	"github.com/yigit/projecthub/internal/pkg/validation"
	"github.com/yigit/projecthub/internal/pkg/websocket"
)

// IReviewService edits reviews and marks
type IReviewService interface {
	UpdateMark(ctx context.Context, actorID, markID int64, req *dto.UpdateMarkRequest) (*models.ReviewMark, error)
	UpdateReview(ctx context.Context, actorID, reviewID int64, req *dto.UpdateReviewRequest) (*models.Review, error)
}

// ReviewService corrects review records on behalf of faculty
type ReviewService struct {
	reviewRepo repositories.IReviewRepository
	teamRepo   repositories.ITeamRepository
	events     EventPublisher
	logger     zerolog.Logger
}

// NewReviewService creates a new ReviewService
func NewReviewService(
	reviewRepo repositories.IReviewRepository,
	teamRepo repositories.ITeamRepository,
	events EventPublisher,
	logger zerolog.Logger,
) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo,
		teamRepo:   teamRepo,
		events:     publisherOrNop(events),
		logger:     logger,
	}
}

// UpdateMark replaces a student's mark. Marks outside 0-100 are rejected before
// anything is written; an absent student's mark is cleared.
func (s *ReviewService) UpdateMark(ctx context.Context, actorID, markID int64, req *dto.UpdateMarkRequest) (*models.ReviewMark, error) {
	if !req.IsAbsent {
		if req.Marks == nil || !validation.ValidMark(*req.Marks) {
			return nil, apperrors.ErrMarkOutOfRange
		}
	}
	for name, value := range req.CriterionMarks {
		if strings.TrimSpace(name) == "" {
			return nil, apperrors.NewBadRequestError("criterion names cannot be empty")
		}
		if !validation.ValidMark(value) {
			return nil, apperrors.ErrMarkOutOfRange
		}
	}

	mark, err := s.reviewRepo.GetMark(ctx, markID)
	if err != nil {
		return nil, err
	}
	review, err := s.reviewRepo.GetByID(ctx, mark.ReviewID)
	if err != nil {
		return nil, err
	}
	team, err := s.teamRepo.GetByID(ctx, review.TeamID)
	if err != nil {
		return nil, err
	}
	if !team.HasMember(mark.StudentID) {
		return nil, apperrors.ErrNotTeamMember
	}

	mark.IsAbsent = req.IsAbsent
	mark.Marks = req.Marks
	if req.IsAbsent {
		mark.Marks = nil
	}
	if req.CriterionMarks != nil {
		mark.CriterionMarks = nil
		if len(req.CriterionMarks) > 0 {
			data, err := json.Marshal(req.CriterionMarks)
			if err != nil {
				return nil, fmt.Errorf("error encoding criterion marks: %w", err)
			}
			encoded := string(data)
			mark.CriterionMarks = &encoded
		}
	}

	if err := s.reviewRepo.UpdateMark(ctx, mark); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("markID", markID).
		Int64("reviewID", mark.ReviewID).
		Int64("studentID", mark.StudentID).
		Bool("absent", mark.IsAbsent).
		Int64("actorID", actorID).
		Msg("Review mark updated")
	s.events.Publish(websocket.EventUpdated, websocket.EntityReview, mark.ReviewID, actorID)
	return mark, nil
}

// UpdateReview changes the status, content or phase of a review
func (s *ReviewService) UpdateReview(ctx context.Context, actorID, reviewID int64, req *dto.UpdateReviewRequest) (*models.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		review.Status = *req.Status
	}
	if req.Content != nil {
		content := strings.TrimSpace(*req.Content)
		review.Content = &content
	}
	if req.ReviewPhase != nil {
		review.ReviewPhase = req.ReviewPhase
	}

	if err := s.reviewRepo.UpdateReview(ctx, review); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("reviewID", reviewID).Int64("actorID", actorID).Msg("Review updated")
	s.events.Publish(websocket.EventUpdated, websocket.EntityReview, reviewID, actorID)
	return review, nil
}
