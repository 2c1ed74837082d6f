package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ikkim/bizreview-backend/internal/app/service"
	"github.com/ikkim/bizreview-backend/internal/metrics"
	"github.com/ikkim/bizreview-backend/internal/storage"
	"github.com/ikkim/bizreview-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Uploader stores a snapshot object. *storage.S3Storage implements it.
type Uploader interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) error
}

// BackupScheduler periodically uploads a JSON snapshot of the store.
type BackupScheduler struct {
	cron      *cron.Cron
	schedule  string
	prefix    string
	timeout   time.Duration
	snapshots service.SnapshotService
	uploader  Uploader
}

func NewBackupScheduler(schedule, prefix string, snapshots service.SnapshotService, uploader Uploader) *BackupScheduler {
	return &BackupScheduler{
		cron:      cron.New(),
		schedule:  schedule,
		prefix:    prefix,
		timeout:   5 * time.Minute,
		snapshots: snapshots,
		uploader:  uploader,
	}
}

// Start registers the job and starts the cron runner.
func (s *BackupScheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		logger.Info("Starting scheduled store backup", nil)
		if _, err := s.RunOnce(ctx); err != nil {
			logger.Error("Scheduled store backup failed", err)
		}
	})
	if err != nil {
		logger.Error("Failed to add cron job for store backup", err, map[string]interface{}{
			"schedule": s.schedule,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Backup scheduler started", map[string]interface{}{
		"schedule": s.schedule,
	})
	return nil
}

// Stop waits for a running backup to finish.
func (s *BackupScheduler) Stop() {
	logger.Info("Stopping backup scheduler...", nil)
	<-s.cron.Stop().Done()
	logger.Info("Backup scheduler stopped", nil)
}

// RunOnce takes and uploads one snapshot, returning the object key.
func (s *BackupScheduler) RunOnce(ctx context.Context) (string, error) {
	snapshot, err := s.snapshots.TakeSnapshot(ctx)
	if err != nil {
		metrics.RecordBackup(false)
		return "", err
	}

	body, err := json.Marshal(snapshot)
	if err != nil {
		metrics.RecordBackup(false)
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	key := storage.SnapshotKey(s.prefix, snapshot.TakenAt)
	if err := s.uploader.Upload(ctx, key, body, "application/json"); err != nil {
		metrics.RecordBackup(false)
		return "", err
	}

	metrics.RecordBackup(true)
	logger.Info("Store backup uploaded", map[string]interface{}{
		"key":        key,
		"businesses": len(snapshot.Businesses),
		"reviews":    len(snapshot.Reviews),
		"bytes":      len(body),
	})
	return key, nil
}
