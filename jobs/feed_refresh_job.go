package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// FeedRefresher is implemented by *services.FeedService
type FeedRefresher interface {
	Refresh(ctx context.Context) error
	ShowNames() []string
}

// FeedRefreshJob handles periodic show feed refreshes
type FeedRefreshJob struct {
	feeds     FeedRefresher
	timeout   time.Duration
	logger    *logrus.Entry
	mutex     sync.Mutex
	isRunning bool
	lastRun   time.Time
	lastErr   error
}

// NewFeedRefreshJob creates a new feed refresh job
func NewFeedRefreshJob(feeds FeedRefresher, timeout time.Duration) *FeedRefreshJob {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &FeedRefreshJob{
		feeds:   feeds,
		timeout: timeout,
		logger:  logrus.WithField("component", "FeedRefreshJob"),
	}
}

// Run refreshes every feed once. A run that starts while another is in
// progress is skipped.
func (j *FeedRefreshJob) Run(ctx context.Context) error {
	j.mutex.Lock()
	if j.isRunning {
		j.mutex.Unlock()
		j.logger.Warn("Feed refresh already running, skipping")
		return nil
	}
	j.isRunning = true
	j.mutex.Unlock()

	defer func() {
		j.mutex.Lock()
		j.isRunning = false
		j.mutex.Unlock()
	}()

	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	startTime := time.Now()
	j.logger.Info("Starting feed refresh job")

	err := j.feeds.Refresh(ctx)

	j.mutex.Lock()
	j.lastRun = startTime
	j.lastErr = err
	j.mutex.Unlock()

	processingTime := time.Since(startTime)
	if err != nil {
		j.logger.WithError(err).WithField("processing_time", processingTime).Error("Feed refresh finished with errors")
		return err
	}

	j.logger.WithFields(logrus.Fields{
		"shows":           len(j.feeds.ShowNames()),
		"processing_time": processingTime,
	}).Info("Successfully completed feed refresh job")
	return nil
}

// StartPeriodicUpdates refreshes feeds every interval until ctx is done
func (j *FeedRefreshJob) StartPeriodicUpdates(ctx context.Context, interval time.Duration) {
	j.logger.WithField("interval", interval).Info("Starting periodic feed refreshes")

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := j.Run(ctx); err != nil {
					j.logger.WithError(err).Error("Periodic feed refresh failed")
				}
			}
		}
	}()
}

// IsRunning returns whether the job is currently running
func (j *FeedRefreshJob) IsRunning() bool {
	j.mutex.Lock()
	defer j.mutex.Unlock()
	return j.isRunning
}

// LastRun returns when the last run started and how it ended
func (j *FeedRefreshJob) LastRun() (time.Time, error) {
	j.mutex.Lock()
	defer j.mutex.Unlock()
	return j.lastRun, j.lastErr
}
