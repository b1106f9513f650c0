package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/asherrising888-debug/NasdaqETF/internal/contracts"
	"github.com/asherrising888-debug/NasdaqETF/internal/decision"
	"github.com/asherrising888-debug/NasdaqETF/internal/indicator"
	"github.com/asherrising888-debug/NasdaqETF/internal/rules"
	"github.com/asherrising888-debug/NasdaqETF/pkg/logger"
)

// Assembler turns one market snapshot into the decision report: the
// realtime verdict first, then up to the window size of historical
// weeks, newest first. Everything is recomputed from scratch on every
// call; records never carry state between refreshes.
type Assembler struct {
	instrument contracts.Instrument
	rules      *rules.Config
	builder    *indicator.Builder
	engine     *decision.Engine
	logger     *logger.Logger
}

// NewAssembler creates an assembler for one instrument and ruleset.
func NewAssembler(cfg *rules.Config, instrument contracts.Instrument, log *logger.Logger) *Assembler {
	return &Assembler{
		instrument: instrument,
		rules:      cfg,
		builder:    indicator.NewBuilder(cfg.Indicator.MAPeriod, log),
		engine:     decision.NewEngine(cfg.Gate),
		logger:     log,
	}
}

// Assemble builds the report. A snapshot missing the quote or the
// weekly history yields an unavailable report with no records; failed
// optional sources degrade it but the records still come out, with
// premium unknown where no reference existed.
func (a *Assembler) Assemble(snap *contracts.MarketSnapshot, basis contracts.CostBasis) *contracts.Report {
	report := &contracts.Report{
		GeneratedAt: time.Now(),
		Instrument:  a.instrument,
		Status:      contracts.ReportStatusOK,
		Records:     []contracts.VerdictRecord{},
	}

	if !snap.Complete() {
		report.Status = contracts.ReportStatusUnavailable
		report.StatusReason = unavailableReason(snap)
		a.logger.WithField("reason", report.StatusReason).Warn("Report unavailable")
		return report
	}

	points, err := a.builder.Build(snap.Bars)
	if err != nil {
		report.Status = contracts.ReportStatusUnavailable
		report.StatusReason = fmt.Sprintf("weekly history unusable: %v", err)
		a.logger.WithError(err).Warn("Report unavailable")
		return report
	}

	resolver := decision.NewResolver(snap.Valuation, snap.Nav)
	newest := len(points) - 1

	// Realtime record. Its M20 pair comes from the newest completed
	// week; the label is the provider's quote time so identical inputs
	// assemble identically.
	in := decision.Input{
		PeriodLabel: realtimeLabel(snap.Quote),
		IsRealtime:  true,
		Price:       snap.Quote.Price,
		M20:         points[newest].M20,
		HasM20:      points[newest].HasM20,
		Premium:     resolver.Realtime(snap.Quote),
		Basis:       basis,
	}
	in.PrevM20, in.HasPrevM20 = indicator.PrevM20(points, newest)
	report.Records = append(report.Records, a.engine.Evaluate(in))

	// Historical records, newest first. Each needs the bar before it
	// for the trend comparison, so at most len-1 are produced.
	count := a.rules.Window.Size
	if max := len(points) - 1; count > max {
		count = max
	}
	for i := 0; i < count; i++ {
		idx := newest - i
		point := points[idx]

		in := decision.Input{
			PeriodLabel: point.Date,
			Price:       point.Close,
			M20:         point.M20,
			HasM20:      point.HasM20,
			Premium:     resolver.Historical(point.Close, point.Date, i == 0),
			Basis:       basis,
		}
		in.PrevM20, in.HasPrevM20 = indicator.PrevM20(points, idx)
		report.Records = append(report.Records, a.engine.Evaluate(in))
	}

	current := report.Records[0]
	report.Summary = contracts.ReportSummary{
		Price:      current.Price,
		PremiumPct: current.PremiumPct,
		HasPremium: current.HasPremium,
		M20:        current.M20,
		HasM20:     current.HasM20,
		Passed:     current.Passed,
	}

	if snap.Degraded() {
		report.Status = contracts.ReportStatusDegraded
		report.StatusReason = fmt.Sprintf("sources unavailable: %s", strings.Join(snap.Failed, ", "))
	}

	a.logger.WithFields(map[string]interface{}{
		"records": len(report.Records),
		"status":  report.Status,
		"passed":  current.Passed,
	}).Info("Report assembled")

	return report
}

func realtimeLabel(quote contracts.Quote) string {
	if quote.Timestamp != "" {
		return quote.Timestamp
	}
	return "realtime"
}

func unavailableReason(snap *contracts.MarketSnapshot) string {
	switch {
	case !snap.HasQuote || snap.Quote.Price <= 0:
		return "realtime quote unavailable"
	case len(snap.Bars) == 0:
		return "weekly history unavailable"
	}
	return "market data unavailable"
}
