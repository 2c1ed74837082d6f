package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ikkim/bizreview-backend/internal/app/model"
	"github.com/ikkim/bizreview-backend/internal/app/repository"
	"github.com/ikkim/bizreview-backend/internal/datastore"
	"github.com/ikkim/bizreview-backend/pkg/logger"
)

type ReviewService interface {
	CreateReview(ctx context.Context, payload model.Payload) (*model.ReviewView, error)
	GetReview(ctx context.Context, id int64) (*model.ReviewView, error)
	UpdateReview(ctx context.Context, id int64, payload model.Payload) (*model.ReviewView, error)
	DeleteReview(ctx context.Context, id int64) error
	ListReviewsByUser(ctx context.Context, userID model.Scalar) ([]model.ReviewView, error)
}

type reviewService struct {
	businessRepo repository.BusinessRepository
	reviewRepo   repository.ReviewRepository
	events       EventPublisher
}

func NewReviewService(
	businessRepo repository.BusinessRepository,
	reviewRepo repository.ReviewRepository,
	events EventPublisher,
) ReviewService {
	return &reviewService{
		businessRepo: businessRepo,
		reviewRepo:   reviewRepo,
		events:       publisherOrNop(events),
	}
}

// CreateReview checks, in order: required attributes, that the business
// exists, and that the user has no review of that business yet. The checks
// are not atomic with the write.
func (s *reviewService) CreateReview(ctx context.Context, payload model.Payload) (*model.ReviewView, error) {
	review, err := model.DecodeReview(payload)
	if err != nil {
		return nil, err
	}

	businessID, ok := review.BusinessID.Int64()
	if !ok || businessID <= 0 {
		return nil, ErrBusinessNotFound
	}
	if _, err := s.businessRepo.FindByID(ctx, businessID); err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, fmt.Errorf("load business %d: %w", businessID, err)
	}

	existing, err := s.reviewRepo.FindByUserID(ctx, review.UserID)
	if err != nil {
		return nil, fmt.Errorf("load reviews of user %s: %w", review.UserID, err)
	}
	for _, other := range existing {
		if other.BusinessID.Equal(review.BusinessID) {
			logger.Warn("Duplicate review rejected", map[string]interface{}{
				"user_id":     review.UserID.String(),
				"business_id": businessID,
				"review_id":   other.ID,
			})
			return nil, ErrDuplicateReview
		}
	}

	id, err := s.reviewRepo.Create(ctx, review)
	if err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	view := model.AttachReviewID(id, *review)
	logger.Info("Review created", map[string]interface{}{
		"review_id":   id,
		"business_id": businessID,
	})
	s.events.Publish(newEvent(EventReviewCreated, id, view))
	return &view, nil
}

func (s *reviewService) GetReview(ctx context.Context, id int64) (*model.ReviewView, error) {
	if id <= 0 {
		return nil, ErrReviewNotFound
	}
	review, err := s.reviewRepo.FindByID(ctx, id)
	if errors.Is(err, datastore.ErrNotFound) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load review %d: %w", id, err)
	}
	return review, nil
}

// UpdateReview applies a partial update: stars is required, user_id,
// business_id and review_text change only when supplied. Neither the business
// reference nor per-user uniqueness is re-checked.
func (s *reviewService) UpdateReview(ctx context.Context, id int64, payload model.Payload) (*model.ReviewView, error) {
	current, err := s.GetReview(ctx, id)
	if err != nil {
		return nil, err
	}

	patch, err := model.DecodeReviewPatch(payload)
	if err != nil {
		return nil, err
	}

	review := current.Review
	review.Apply(*patch)

	if err := s.reviewRepo.Update(ctx, id, &review); err != nil {
		return nil, fmt.Errorf("update review %d: %w", id, err)
	}

	view := model.AttachReviewID(id, review)
	s.events.Publish(newEvent(EventReviewUpdated, id, view))
	return &view, nil
}

func (s *reviewService) DeleteReview(ctx context.Context, id int64) error {
	if _, err := s.GetReview(ctx, id); err != nil {
		return err
	}
	if err := s.reviewRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete review %d: %w", id, err)
	}
	s.events.Publish(newEvent(EventReviewDeleted, id, nil))
	return nil
}

func (s *reviewService) ListReviewsByUser(ctx context.Context, userID model.Scalar) ([]model.ReviewView, error) {
	return s.reviewRepo.FindByUserID(ctx, userID)
}
