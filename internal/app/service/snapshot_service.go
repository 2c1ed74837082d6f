package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ikkim/bizreview-backend/internal/app/model"
	"github.com/ikkim/bizreview-backend/internal/app/repository"
)

// Snapshot is a point-in-time dump of every business and review.
type Snapshot struct {
	TakenAt    time.Time            `json:"taken_at"`
	Businesses []model.BusinessView `json:"businesses"`
	Reviews    []model.ReviewView   `json:"reviews"`
}

type SnapshotService interface {
	TakeSnapshot(ctx context.Context) (*Snapshot, error)
}

type snapshotService struct {
	businessRepo repository.BusinessRepository
	reviewRepo   repository.ReviewRepository
}

func NewSnapshotService(businessRepo repository.BusinessRepository, reviewRepo repository.ReviewRepository) SnapshotService {
	return &snapshotService{businessRepo: businessRepo, reviewRepo: reviewRepo}
}

// TakeSnapshot reads the two kinds one after the other; writes landing in
// between may be reflected in only one of them.
func (s *snapshotService) TakeSnapshot(ctx context.Context) (*Snapshot, error) {
	businesses, err := s.businessRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list businesses: %w", err)
	}
	reviews, err := s.reviewRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return &Snapshot{
		TakenAt:    time.Now().UTC(),
		Businesses: businesses,
		Reviews:    reviews,
	}, nil
}
