package report

import (
	"context"
	"sync"
	"time"

	"github.com/asherrising888-debug/NasdaqETF/internal/contracts"
	"github.com/asherrising888-debug/NasdaqETF/internal/market"
	"github.com/asherrising888-debug/NasdaqETF/pkg/logger"
)

// Refresher runs the user-triggered fetch-and-judge cycle and keeps the
// most recent result. At most one refresh is in flight: concurrent
// triggers queue behind the lock and each still computes with its own
// cost basis, the second pass riding the gateway cache.
type Refresher struct {
	gateway   contracts.MarketDataGateway
	assembler *Assembler
	logger    *logger.Logger

	refreshMu sync.Mutex // serializes refresh cycles

	mu   sync.RWMutex // guards last
	last *contracts.Report
}

// NewRefresher creates a refresher over a gateway and assembler.
func NewRefresher(gw contracts.MarketDataGateway, assembler *Assembler, log *logger.Logger) *Refresher {
	return &Refresher{
		gateway:   gw,
		assembler: assembler,
		logger:    log,
	}
}

// Refresh fetches a snapshot and assembles a fresh report. Fetch
// failures never surface as errors; they come back as the report's
// status.
func (r *Refresher) Refresh(ctx context.Context, basis contracts.CostBasis) *contracts.Report {
	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()

	started := time.Now()
	snap := market.TakeSnapshot(ctx, r.gateway, r.logger)
	report := r.assembler.Assemble(snap, basis)

	r.mu.Lock()
	r.last = report
	r.mu.Unlock()

	r.logger.WithFields(map[string]interface{}{
		"status":     report.Status,
		"records":    len(report.Records),
		"elapsed_ms": time.Since(started).Milliseconds(),
	}).Info("Report refreshed")

	return report
}

// Last returns the most recently assembled report, or nil before the
// first refresh.
func (r *Refresher) Last() *contracts.Report {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.last
}
