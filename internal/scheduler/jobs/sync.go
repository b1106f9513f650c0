package jobs

import (
	"context"

	"github.com/asherrising888-debug/NasdaqETF/internal/contracts"
	"github.com/asherrising888-debug/NasdaqETF/pkg/logger"
)

// ArchiveSyncJob refreshes weekly history and NAVs through the archive
// write-through path, so the archive stays current even when nobody
// opens the dashboard. It must run against the raw provider chain, not
// the cached gateway: a cache hit would skip the write-through.
type ArchiveSyncJob struct {
	provider contracts.MarketDataGateway
	schedule string
	logger   *logger.Logger
}

// NewArchiveSyncJob creates a sync job on the given cron schedule.
func NewArchiveSyncJob(provider contracts.MarketDataGateway, schedule string, log *logger.Logger) *ArchiveSyncJob {
	return &ArchiveSyncJob{
		provider: provider,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name.
func (j *ArchiveSyncJob) Name() string {
	return "archive_sync"
}

// Schedule returns the cron schedule.
func (j *ArchiveSyncJob) Schedule() string {
	return j.schedule
}

// Run fetches both archived kinds. Both are attempted even if the
// first fails.
func (j *ArchiveSyncJob) Run(ctx context.Context) error {
	bars, histErr := j.provider.GetWeeklyHistory(ctx)
	nav, navErr := j.provider.GetNavByDate(ctx)

	if histErr != nil {
		j.logger.WithError(histErr).Warn("Archive sync: history fetch failed")
	}
	if navErr != nil {
		j.logger.WithError(navErr).Warn("Archive sync: NAV fetch failed")
	}

	if histErr != nil {
		return histErr
	}
	if navErr != nil {
		return navErr
	}

	j.logger.WithFields(map[string]interface{}{
		"bars": len(bars),
		"days": len(nav),
	}).Info("Archive sync completed")
	return nil
}
