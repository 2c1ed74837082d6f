package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/bizreview-backend/internal/app/model"
	"github.com/ikkim/bizreview-backend/internal/app/service"
	apperrors "github.com/ikkim/bizreview-backend/internal/errors"
	"github.com/ikkim/bizreview-backend/internal/middleware"
)

type ReviewController struct {
	reviewService service.ReviewService
}

func NewReviewController(reviewService service.ReviewService) *ReviewController {
	return &ReviewController{reviewService: reviewService}
}

// CreateReview POST /reviews
func (ctrl *ReviewController) CreateReview(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var payload model.Payload
	if err := c.ShouldBindJSON(&payload); err != nil {
		log.Warn("Invalid review payload", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, apperrors.MsgMissingAttributes)
		return
	}

	review, err := ctrl.reviewService.CreateReview(c.Request.Context(), payload)
	if err != nil {
		apperrors.RespondWithServiceError(c, err)
		return
	}

	log.Info("Review created", map[string]interface{}{
		"review_id": review.ID,
	})
	c.JSON(http.StatusCreated, review)
}

// GetReview GET /reviews/:id
func (ctrl *ReviewController) GetReview(c *gin.Context) {
	id, ok := parseID(c, "id", apperrors.ReviewNotFound, apperrors.MsgReviewNotFound)
	if !ok {
		return
	}

	review, err := ctrl.reviewService.GetReview(c.Request.Context(), id)
	if err != nil {
		apperrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

// UpdateReview PUT /reviews/:id
func (ctrl *ReviewController) UpdateReview(c *gin.Context) {
	id, ok := parseID(c, "id", apperrors.ReviewNotFound, apperrors.MsgReviewNotFound)
	if !ok {
		return
	}

	var payload model.Payload
	if err := c.ShouldBindJSON(&payload); err != nil {
		if _, err := ctrl.reviewService.GetReview(c.Request.Context(), id); err != nil {
			apperrors.RespondWithServiceError(c, err)
			return
		}
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, apperrors.MsgMissingAttributes)
		return
	}

	review, err := ctrl.reviewService.UpdateReview(c.Request.Context(), id, payload)
	if err != nil {
		apperrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

// DeleteReview DELETE /reviews/:id
func (ctrl *ReviewController) DeleteReview(c *gin.Context) {
	id, ok := parseID(c, "id", apperrors.ReviewNotFound, apperrors.MsgReviewNotFound)
	if !ok {
		return
	}

	if err := ctrl.reviewService.DeleteReview(c.Request.Context(), id); err != nil {
		apperrors.RespondWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListReviewsByUser GET /users/:id/reviews
func (ctrl *ReviewController) ListReviewsByUser(c *gin.Context) {
	userID := pathScalar(c, "id")

	reviews, err := ctrl.reviewService.ListReviewsByUser(c.Request.Context(), userID)
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to list reviews by user", err, map[string]interface{}{
			"user_id": userID.String(),
		})
		apperrors.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}
