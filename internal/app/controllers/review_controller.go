package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/projecthub/internal/app/models/dto"
	"github.com/yigit/projecthub/internal/app/services"
	"github.com/yigit/projecthub/internal/middleware"
	"github.com/yigit/projecthub/internal/pkg/helpers"
)

// ReviewController corrects reviews and marks
type ReviewController struct {
	reviewService services.IReviewService
	logger        zerolog.Logger
}

// NewReviewController creates a new ReviewController
func NewReviewController(reviewService services.IReviewService, logger zerolog.Logger) *ReviewController {
	return &ReviewController{
		reviewService: reviewService,
		logger:        logger,
	}
}

// UpdateMark godoc
// @Summary Update a student's mark
// @Description Sets the mark of one student in a review. Marks must lie in 0-100; marking a student absent clears the mark. Nothing is written when validation fails.
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Review mark ID"
// @Param request body dto.UpdateMarkRequest true "Mark"
// @Success 200 {object} dto.APIResponse{data=models.ReviewMark} "Mark updated"
// @Failure 400 {object} dto.ErrorResponse "Mark out of range"
// @Failure 404 {object} dto.ErrorResponse "Mark not found"
// @Router /admin/marks/{id} [put]
func (c *ReviewController) UpdateMark(ctx *gin.Context) {
	actorID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}
	markID, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	var req dto.UpdateMarkRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	mark, err := c.reviewService.UpdateMark(ctx.Request.Context(), actorID, markID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(mark, "Mark updated"))
}

// UpdateReview godoc
// @Summary Update review
// @Description Changes status, content or phase of a review; omitted fields keep their value
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Review ID"
// @Param request body dto.UpdateReviewRequest true "Review fields"
// @Success 200 {object} dto.APIResponse{data=models.Review} "Review updated"
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 404 {object} dto.ErrorResponse "Review not found"
// @Router /admin/reviews/{id} [put]
func (c *ReviewController) UpdateReview(ctx *gin.Context) {
	actorID, ok := middleware.MustUserID(ctx)
	if !ok {
		return
	}
	reviewID, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	var req dto.UpdateReviewRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	review, err := c.reviewService.UpdateReview(ctx.Request.Context(), actorID, reviewID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(review, "Review updated"))
}
