package decision

import (
	"fmt"
	"strconv"

	"github.com/asherrising888-debug/NasdaqETF/internal/contracts"
	"github.com/asherrising888-debug/NasdaqETF/internal/rules"
)

// Input carries one period's facts into the gate. Price and the moving
// averages come in unrounded; the engine rounds once and judges the
// rounded values, except the trend comparison which keeps full
// precision (consecutive weekly averages often differ past the third
// decimal).
type Input struct {
	PeriodLabel string
	IsRealtime  bool

	Price float64

	M20        float64
	HasM20     bool
	PrevM20    float64
	HasPrevM20 bool

	Premium Premium
	Basis   contracts.CostBasis
}

// Engine applies the four-rule gate to one period.
//
// 1. premium rule    known premium must stay under the limit
// 2. position rule   price must be above a defined M20
// 3. momentum rule   M20 must be rising against the previous period
// 4. drawdown rule   active basis must not be down past the limit
//
// Every violated rule appends its reason; passed is the AND of all
// four, with inapplicable rules never failing.
type Engine struct {
	gate rules.Gate

	premiumReason  string
	positionReason string
	momentumReason string
	drawdownReason string
}

// NewEngine creates an engine for the given gate thresholds.
func NewEngine(gate rules.Gate) *Engine {
	return &Engine{
		gate:           gate,
		premiumReason:  fmt.Sprintf("premium >= %s%%", trimFloat(gate.PremiumMaxPct)),
		positionReason: "price below M20",
		momentumReason: "M20 not trending up",
		drawdownReason: fmt.Sprintf("drawdown over %s%%", trimFloat(-gate.DrawdownLimitPct)),
	}
}

// Evaluate judges one period and returns its complete record.
func (e *Engine) Evaluate(in Input) contracts.VerdictRecord {
	rec := contracts.VerdictRecord{
		PeriodLabel:    in.PeriodLabel,
		IsRealtime:     in.IsRealtime,
		Price:          contracts.Round3(in.Price),
		FailureReasons: []string{},
	}

	if in.HasM20 {
		rec.M20 = contracts.Round3(in.M20)
		rec.HasM20 = true
	}
	if in.Premium.Known {
		rec.PremiumPct = contracts.Round3(in.Premium.Pct)
		rec.HasPremium = true
	}

	rec.AboveM20 = rec.HasM20 && rec.Price > rec.M20
	rec.M20Trending = in.HasM20 && in.HasPrevM20 && in.M20 > in.PrevM20

	if in.Basis.Active() {
		rec.ProfitPct = contracts.Round2((rec.Price - in.Basis.UnitCost) / in.Basis.UnitCost * 100)
		rec.HasProfit = true

		if rec.HasM20 {
			rec.ProfitVsM20Pct = contracts.Round2((rec.M20 - in.Basis.UnitCost) / in.Basis.UnitCost * 100)
			rec.HasProfitVsM20 = true
		}
	}

	if rec.HasPremium && rec.PremiumPct >= e.gate.PremiumMaxPct {
		rec.FailureReasons = append(rec.FailureReasons, e.premiumReason)
	}
	if !rec.AboveM20 {
		rec.FailureReasons = append(rec.FailureReasons, e.positionReason)
	}
	if !rec.M20Trending {
		rec.FailureReasons = append(rec.FailureReasons, e.momentumReason)
	}
	if rec.HasProfit && rec.ProfitPct <= e.gate.DrawdownLimitPct {
		rec.FailureReasons = append(rec.FailureReasons, e.drawdownReason)
	}

	rec.Passed = len(rec.FailureReasons) == 0

	return rec
}

// trimFloat renders a threshold without trailing zeros (1 not 1.0).
func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
