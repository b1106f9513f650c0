package jobs

import (
	"context"

	"github.com/asherrising888-debug/NasdaqETF/internal/market/cache"
	"github.com/asherrising888-debug/NasdaqETF/pkg/logger"
)

// CacheJanitorJob sweeps expired entries out of the market data cache.
// Reads already treat expired entries as misses; the sweep just frees
// the memory behind them.
type CacheJanitorJob struct {
	store    cache.Store
	schedule string
	logger   *logger.Logger
}

// NewCacheJanitorJob creates a janitor on the given cron schedule.
func NewCacheJanitorJob(store cache.Store, schedule string, log *logger.Logger) *CacheJanitorJob {
	return &CacheJanitorJob{
		store:    store,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name.
func (j *CacheJanitorJob) Name() string {
	return "cache_janitor"
}

// Schedule returns the cron schedule.
func (j *CacheJanitorJob) Schedule() string {
	return j.schedule
}

// Run executes the sweep.
func (j *CacheJanitorJob) Run(ctx context.Context) error {
	count, err := j.store.CleanExpired(ctx)
	if err != nil {
		return err
	}

	if count > 0 {
		j.logger.WithField("removed", count).Info("Cache janitor completed")
	}
	return nil
}
