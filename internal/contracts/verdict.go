package contracts

import (
	"strings"
	"time"
)

// PricePoint is one weekly period with its 20-week moving average.
// Produced by the indicator builder from raw bars, ordered ascending by
// date. M20 is undefined until 20 closes exist up to that point.
type PricePoint struct {
	Date   string  `json:"date"`
	Close  float64 `json:"close"`
	M20    float64 `json:"m20"`
	HasM20 bool    `json:"has_m20"`
}

// VerdictRecord is the gate's output for one period. Numeric fields are
// pre-rounded (prices and premium to 3 decimals, profits to 2) and the
// rules compare the rounded values, so a record renders exactly as it
// was judged. Absent values carry a false Has flag, never a zero.
type VerdictRecord struct {
	PeriodLabel string `json:"period"`
	IsRealtime  bool   `json:"is_realtime"`

	PremiumPct float64 `json:"premium_pct"`
	HasPremium bool    `json:"has_premium"`

	Price  float64 `json:"price"`
	M20    float64 `json:"m20"`
	HasM20 bool    `json:"has_m20"`

	AboveM20    bool `json:"above_m20"`
	M20Trending bool `json:"m20_trending"`

	ProfitPct      float64 `json:"profit_pct"`
	HasProfit      bool    `json:"has_profit"`
	ProfitVsM20Pct float64 `json:"profit_vs_m20_pct"`
	HasProfitVsM20 bool    `json:"has_profit_vs_m20"`

	Passed         bool     `json:"passed"`
	FailureReasons []string `json:"failure_reasons"`
}

// ReasonText joins the failure reasons for table display. Empty when the
// period passed.
func (r *VerdictRecord) ReasonText() string {
	return strings.Join(r.FailureReasons, ", ")
}

// Report status values.
const (
	ReportStatusOK          = "ok"
	ReportStatusDegraded    = "degraded"
	ReportStatusUnavailable = "unavailable"
)

// Instrument identifies the tracked ETF for display.
type Instrument struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ReportSummary holds the headline metrics for the current moment.
type ReportSummary struct {
	Price      float64 `json:"price"`
	PremiumPct float64 `json:"premium_pct"`
	HasPremium bool    `json:"has_premium"`
	M20        float64 `json:"m20"`
	HasM20     bool    `json:"has_m20"`
	Passed     bool    `json:"passed"`
}

// Report is the assembled decision report: the realtime record first,
// then up to the window size of historical weeks, newest first.
type Report struct {
	GeneratedAt  time.Time       `json:"generated_at"`
	Instrument   Instrument      `json:"instrument"`
	Status       string          `json:"status"`
	StatusReason string          `json:"status_reason,omitempty"`
	Summary      ReportSummary   `json:"summary"`
	Records      []VerdictRecord `json:"records"`
}

// Available reports whether the report carries usable records.
func (r *Report) Available() bool {
	return r.Status != ReportStatusUnavailable && len(r.Records) > 0
}

// PassedCount returns how many records passed the gate.
func (r *Report) PassedCount() int {
	n := 0
	for i := range r.Records {
		if r.Records[i].Passed {
			n++
		}
	}
	return n
}
