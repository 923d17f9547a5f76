package jobs

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// MessagePruner is implemented by *database.PredictionMessageStore
type MessagePruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// MessageCleanupJob forgets announcement references past their retention, so
// long-judged predictions stop being refreshed
type MessageCleanupJob struct {
	store     MessagePruner
	retention time.Duration
	now       func() time.Time
}

func NewMessageCleanupJob(store MessagePruner, retention time.Duration) *MessageCleanupJob {
	return &MessageCleanupJob{store: store, retention: retention, now: time.Now}
}

func (j *MessageCleanupJob) Run(ctx context.Context) error {
	logrus.Info("Starting Message Cleanup Job")
	ctx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	cutoff := j.now().Add(-j.retention)
	removed, err := j.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		logrus.WithError(err).Error("Message Cleanup Job failed")
		return err
	}
	logrus.WithFields(logrus.Fields{
		"removed": removed,
		"cutoff":  cutoff,
	}).Info("Message Cleanup Job completed")
	return nil
}
