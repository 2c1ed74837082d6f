package repository

import (
	"context"

	"github.com/ikkim/bizreview-backend/internal/app/model"
	"github.com/ikkim/bizreview-backend/internal/datastore"
	"github.com/ikkim/bizreview-backend/pkg/logger"
)

type BusinessRepository interface {
	Create(ctx context.Context, business *model.Business) (int64, error)
	Update(ctx context.Context, id int64, business *model.Business) error
	Delete(ctx context.Context, id int64) error
	FindAll(ctx context.Context) ([]model.BusinessView, error)
	FindByID(ctx context.Context, id int64) (*model.BusinessView, error)
	FindByOwnerID(ctx context.Context, ownerID model.Scalar) ([]model.BusinessView, error)
}

type businessRepository struct {
	store datastore.Store
}

func NewBusinessRepository(store datastore.Store) BusinessRepository {
	return &businessRepository{store: store}
}

func (r *businessRepository) Create(ctx context.Context, business *model.Business) (int64, error) {
	logger.Debug("Creating business in datastore", map[string]interface{}{
		"name":     business.Name,
		"owner_id": business.OwnerID.String(),
	})

	props, err := toProperties(business)
	if err != nil {
		return 0, err
	}
	key, err := r.store.Put(ctx, &datastore.Entity{Key: datastore.IncompleteKey(BusinessKind), Properties: props})
	if err != nil {
		logger.Error("Failed to create business in datastore", err, map[string]interface{}{
			"name": business.Name,
		})
		return 0, err
	}

	logger.Debug("Business created in datastore", map[string]interface{}{
		"business_id": key.ID,
	})
	return key.ID, nil
}

func (r *businessRepository) Update(ctx context.Context, id int64, business *model.Business) error {
	props, err := toProperties(business)
	if err != nil {
		return err
	}
	if _, err := r.store.Put(ctx, &datastore.Entity{Key: datastore.NewKey(BusinessKind, id), Properties: props}); err != nil {
		logger.Error("Failed to update business in datastore", err, map[string]interface{}{
			"business_id": id,
		})
		return err
	}

	logger.Debug("Business updated in datastore", map[string]interface{}{
		"business_id": id,
	})
	return nil
}

func (r *businessRepository) Delete(ctx context.Context, id int64) error {
	if err := r.store.Delete(ctx, datastore.NewKey(BusinessKind, id)); err != nil {
		logger.Error("Failed to delete business from datastore", err, map[string]interface{}{
			"business_id": id,
		})
		return err
	}
	logger.Debug("Business deleted from datastore", map[string]interface{}{
		"business_id": id,
	})
	return nil
}

func (r *businessRepository) FindAll(ctx context.Context) ([]model.BusinessView, error) {
	return r.find(ctx, datastore.NewQuery(BusinessKind))
}

// FindByID returns datastore.ErrNotFound when no business has the id
func (r *businessRepository) FindByID(ctx context.Context, id int64) (*model.BusinessView, error) {
	entity, err := r.store.Get(ctx, datastore.NewKey(BusinessKind, id))
	if err != nil {
		return nil, err
	}
	view, err := businessFromEntity(entity)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (r *businessRepository) FindByOwnerID(ctx context.Context, ownerID model.Scalar) ([]model.BusinessView, error) {
	return r.find(ctx, datastore.NewQuery(BusinessKind).FilterEqual("owner_id", ownerID.Value()))
}

func (r *businessRepository) find(ctx context.Context, q *datastore.Query) ([]model.BusinessView, error) {
	entities, err := r.store.Query(ctx, q)
	if err != nil {
		logger.Error("Failed to query businesses", err, nil)
		return nil, err
	}

	businesses := make([]model.BusinessView, 0, len(entities))
	for _, entity := range entities {
		view, err := businessFromEntity(entity)
		if err != nil {
			return nil, err
		}
		businesses = append(businesses, view)
	}

	logger.Debug("Businesses found", map[string]interface{}{
		"count": len(businesses),
	})
	return businesses, nil
}

func businessFromEntity(entity *datastore.Entity) (model.BusinessView, error) {
	var business model.Business
	if err := fromProperties(entity.Properties, &business); err != nil {
		return model.BusinessView{}, err
	}
	return model.AttachBusinessID(entity.Key.ID, business), nil
}
