package repository

import (
	"context"

	"github.com/ikkim/bizreview-backend/internal/app/model"
	"github.com/ikkim/bizreview-backend/internal/datastore"
	"github.com/ikkim/bizreview-backend/pkg/logger"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) (int64, error)
	Update(ctx context.Context, id int64, review *model.Review) error
	Delete(ctx context.Context, id int64) error
	FindAll(ctx context.Context) ([]model.ReviewView, error)
	FindByID(ctx context.Context, id int64) (*model.ReviewView, error)
	FindByUserID(ctx context.Context, userID model.Scalar) ([]model.ReviewView, error)
	FindByBusinessID(ctx context.Context, businessID model.Scalar) ([]model.ReviewView, error)
}

type reviewRepository struct {
	store datastore.Store
}

func NewReviewRepository(store datastore.Store) ReviewRepository {
	return &reviewRepository{store: store}
}

func (r *reviewRepository) Create(ctx context.Context, review *model.Review) (int64, error) {
	props, err := toProperties(review)
	if err != nil {
		return 0, err
	}
	key, err := r.store.Put(ctx, &datastore.Entity{Key: datastore.IncompleteKey(ReviewKind), Properties: props})
	if err != nil {
		logger.Error("Failed to create review in datastore", err, map[string]interface{}{
			"user_id":     review.UserID.String(),
			"business_id": review.BusinessID.String(),
		})
		return 0, err
	}

	logger.Debug("Review created in datastore", map[string]interface{}{
		"review_id": key.ID,
	})
	return key.ID, nil
}

func (r *reviewRepository) Update(ctx context.Context, id int64, review *model.Review) error {
	props, err := toProperties(review)
	if err != nil {
		return err
	}
	if _, err := r.store.Put(ctx, &datastore.Entity{Key: datastore.NewKey(ReviewKind, id), Properties: props}); err != nil {
		logger.Error("Failed to update review in datastore", err, map[string]interface{}{
			"review_id": id,
		})
		return err
	}
	return nil
}

func (r *reviewRepository) Delete(ctx context.Context, id int64) error {
	if err := r.store.Delete(ctx, datastore.NewKey(ReviewKind, id)); err != nil {
		logger.Error("Failed to delete review from datastore", err, map[string]interface{}{
			"review_id": id,
		})
		return err
	}
	return nil
}

func (r *reviewRepository) FindAll(ctx context.Context) ([]model.ReviewView, error) {
	return r.find(ctx, datastore.NewQuery(ReviewKind))
}

// FindByID returns datastore.ErrNotFound when no review has the id
func (r *reviewRepository) FindByID(ctx context.Context, id int64) (*model.ReviewView, error) {
	entity, err := r.store.Get(ctx, datastore.NewKey(ReviewKind, id))
	if err != nil {
		return nil, err
	}
	view, err := reviewFromEntity(entity)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (r *reviewRepository) FindByUserID(ctx context.Context, userID model.Scalar) ([]model.ReviewView, error) {
	return r.find(ctx, datastore.NewQuery(ReviewKind).FilterEqual("user_id", userID.Value()))
}

func (r *reviewRepository) FindByBusinessID(ctx context.Context, businessID model.Scalar) ([]model.ReviewView, error) {
	return r.find(ctx, datastore.NewQuery(ReviewKind).FilterEqual("business_id", businessID.Value()))
}

func (r *reviewRepository) find(ctx context.Context, q *datastore.Query) ([]model.ReviewView, error) {
	entities, err := r.store.Query(ctx, q)
	if err != nil {
		logger.Error("Failed to query reviews", err, nil)
		return nil, err
	}

	reviews := make([]model.ReviewView, 0, len(entities))
	for _, entity := range entities {
		view, err := reviewFromEntity(entity)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, view)
	}
	return reviews, nil
}

func reviewFromEntity(entity *datastore.Entity) (model.ReviewView, error) {
	var review model.Review
	if err := fromProperties(entity.Properties, &review); err != nil {
		return model.ReviewView{}, err
	}
	return model.AttachReviewID(entity.Key.ID, review), nil
}
