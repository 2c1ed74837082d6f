package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/ikkim/bizreview-backend/internal/app/model"
	"github.com/ikkim/bizreview-backend/internal/app/repository"
	"github.com/ikkim/bizreview-backend/internal/app/service"
	"github.com/ikkim/bizreview-backend/internal/datastore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	key         string
	body        []byte
	contentType string
	err         error
}

func (u *fakeUploader) Upload(ctx context.Context, key string, body []byte, contentType string) error {
	if u.err != nil {
		return u.err
	}
	u.key, u.body, u.contentType = key, body, contentType
	return nil
}

func seededSnapshots(t *testing.T) service.SnapshotService {
	t.Helper()
	store := datastore.NewMemoryStore()
	businesses := repository.NewBusinessRepository(store)
	reviews := repository.NewReviewRepository(store)
	ctx := context.Background()

	id, err := businesses.Create(ctx, &model.Business{
		OwnerID: model.IntScalar(1), Name: "Bakery", StreetAddress: "1 Main St",
		City: "Corvallis", State: "OR", ZipCode: model.StringScalar("97330"),
	})
	require.NoError(t, err)
	_, err = reviews.Create(ctx, &model.Review{UserID: model.StringScalar("u1"), BusinessID: model.IntScalar(id), Stars: 5})
	require.NoError(t, err)

	return service.NewSnapshotService(businesses, reviews)
}

func TestBackupScheduler_RunOnce(t *testing.T) {
	uploader := &fakeUploader{}
	s := NewBackupScheduler("@daily", "snapshots", seededSnapshots(t), uploader)

	key, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, key, uploader.key)
	assert.True(t, strings.HasPrefix(key, "snapshots/"))
	assert.Equal(t, "application/json", uploader.contentType)

	var snapshot service.Snapshot
	require.NoError(t, json.Unmarshal(uploader.body, &snapshot))
	require.Len(t, snapshot.Businesses, 1)
	require.Len(t, snapshot.Reviews, 1)
	assert.Equal(t, "Bakery", snapshot.Businesses[0].Name)
	businessID, ok := snapshot.Reviews[0].BusinessID.Int64()
	require.True(t, ok)
	assert.Equal(t, snapshot.Businesses[0].ID, businessID)
}

func TestBackupScheduler_UploadFailure(t *testing.T) {
	uploader := &fakeUploader{err: errors.New("access denied")}
	s := NewBackupScheduler("@daily", "snapshots", seededSnapshots(t), uploader)

	_, err := s.RunOnce(context.Background())
	assert.EqualError(t, err, "access denied")
}

func TestBackupScheduler_InvalidSchedule(t *testing.T) {
	s := NewBackupScheduler("not a schedule", "", seededSnapshots(t), &fakeUploader{})
	assert.Error(t, s.Start())
}
