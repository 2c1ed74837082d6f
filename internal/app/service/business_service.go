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

var (
	ErrBusinessNotFound = errors.New("business not found")
	ErrReviewNotFound   = errors.New("review not found")
	ErrDuplicateReview  = errors.New("user already reviewed this business")
)

// CascadeError reports a business delete that removed the business but left
// some of its reviews behind. It only occurs on stores without transactions.
type CascadeError struct {
	BusinessID int64
	Deleted    []int64
	Err        error
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("business %d deleted but review cascade stopped after %d reviews: %v",
		e.BusinessID, len(e.Deleted), e.Err)
}

func (e *CascadeError) Unwrap() error {
	return e.Err
}

type BusinessService interface {
	ListBusinesses(ctx context.Context) ([]model.BusinessView, error)
	ListBusinessesByOwner(ctx context.Context, ownerID model.Scalar) ([]model.BusinessView, error)
	GetBusiness(ctx context.Context, id int64) (*model.BusinessView, error)
	CreateBusiness(ctx context.Context, payload model.Payload) (*model.BusinessView, error)
	ReplaceBusiness(ctx context.Context, id int64, payload model.Payload) (*model.BusinessView, error)
	DeleteBusiness(ctx context.Context, id int64) error
}

type businessService struct {
	store        datastore.Store
	businessRepo repository.BusinessRepository
	reviewRepo   repository.ReviewRepository
	events       EventPublisher
}

func NewBusinessService(
	store datastore.Store,
	businessRepo repository.BusinessRepository,
	reviewRepo repository.ReviewRepository,
	events EventPublisher,
) BusinessService {
	return &businessService{
		store:        store,
		businessRepo: businessRepo,
		reviewRepo:   reviewRepo,
		events:       publisherOrNop(events),
	}
}

func (s *businessService) ListBusinesses(ctx context.Context) ([]model.BusinessView, error) {
	return s.businessRepo.FindAll(ctx)
}

func (s *businessService) ListBusinessesByOwner(ctx context.Context, ownerID model.Scalar) ([]model.BusinessView, error) {
	return s.businessRepo.FindByOwnerID(ctx, ownerID)
}

func (s *businessService) GetBusiness(ctx context.Context, id int64) (*model.BusinessView, error) {
	if id <= 0 {
		return nil, ErrBusinessNotFound
	}
	business, err := s.businessRepo.FindByID(ctx, id)
	if errors.Is(err, datastore.ErrNotFound) {
		return nil, ErrBusinessNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load business %d: %w", id, err)
	}
	return business, nil
}

func (s *businessService) CreateBusiness(ctx context.Context, payload model.Payload) (*model.BusinessView, error) {
	business, err := model.DecodeBusiness(payload)
	if err != nil {
		return nil, err
	}

	id, err := s.businessRepo.Create(ctx, business)
	if err != nil {
		return nil, fmt.Errorf("create business: %w", err)
	}

	view := model.AttachBusinessID(id, *business)
	logger.Info("Business created", map[string]interface{}{
		"business_id": id,
		"owner_id":    business.OwnerID.String(),
	})
	s.events.Publish(newEvent(EventBusinessCreated, id, view))
	return &view, nil
}

// ReplaceBusiness overwrites every attribute; the body must be complete.
func (s *businessService) ReplaceBusiness(ctx context.Context, id int64, payload model.Payload) (*model.BusinessView, error) {
	if _, err := s.GetBusiness(ctx, id); err != nil {
		return nil, err
	}

	business, err := model.DecodeBusiness(payload)
	if err != nil {
		return nil, err
	}

	if err := s.businessRepo.Update(ctx, id, business); err != nil {
		return nil, fmt.Errorf("update business %d: %w", id, err)
	}

	view := model.AttachBusinessID(id, *business)
	s.events.Publish(newEvent(EventBusinessUpdated, id, view))
	return &view, nil
}

// DeleteBusiness removes the business and every review that references it.
// Stores implementing datastore.Transactor apply both in one transaction.
func (s *businessService) DeleteBusiness(ctx context.Context, id int64) error {
	if _, err := s.GetBusiness(ctx, id); err != nil {
		return err
	}

	var removed []int64
	cascade := func(businessRepo repository.BusinessRepository, reviewRepo repository.ReviewRepository) error {
		removed = removed[:0]
		if err := businessRepo.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete business %d: %w", id, err)
		}

		reviews, err := reviewRepo.FindByBusinessID(ctx, model.IntScalar(id))
		if err != nil {
			return &CascadeError{BusinessID: id, Err: err}
		}
		for _, review := range reviews {
			if err := reviewRepo.Delete(ctx, review.ID); err != nil {
				return &CascadeError{BusinessID: id, Deleted: removed, Err: err}
			}
			removed = append(removed, review.ID)
		}
		return nil
	}

	tx, transactional := s.store.(datastore.Transactor)
	var err error
	if transactional {
		err = tx.RunInTransaction(ctx, func(store datastore.Store) error {
			return cascade(repository.NewBusinessRepository(store), repository.NewReviewRepository(store))
		})
	} else {
		err = cascade(s.businessRepo, s.reviewRepo)
	}

	if err != nil {
		var cascadeErr *CascadeError
		if !transactional && errors.As(err, &cascadeErr) {
			logger.Error("Business deleted with dangling reviews", err, map[string]interface{}{
				"business_id":     id,
				"deleted_reviews": cascadeErr.Deleted,
			})
		}
		return err
	}

	logger.Info("Business deleted", map[string]interface{}{
		"business_id":     id,
		"deleted_reviews": len(removed),
	})
	event := newEvent(EventBusinessDeleted, id, nil)
	event.Cascaded = removed
	s.events.Publish(event)
	return nil
}
