package rules

// Config is the decision ruleset: indicator window, report window and
// gate thresholds. Kept in one place so the engine, the assembler and
// the dashboard judge and render with the same numbers.
type Config struct {
	Meta      Meta      `yaml:"meta" json:"meta"`
	Indicator Indicator `yaml:"indicator" json:"indicator"`
	Window    Window    `yaml:"window" json:"window"`
	Gate      Gate      `yaml:"gate" json:"gate"`
}

// Meta identifies the ruleset.
type Meta struct {
	RulesetID string `yaml:"ruleset_id" json:"ruleset_id"`
	Version   string `yaml:"version" json:"version"`
}

// Indicator holds moving-average parameters.
type Indicator struct {
	MAPeriod int `yaml:"ma_period" json:"ma_period"` // weekly M20
}

// Window bounds the historical portion of the report.
type Window struct {
	Size int `yaml:"size" json:"size"`
}

// Gate holds the pass/fail thresholds.
type Gate struct {
	// PremiumMaxPct fails the premium rule when a known premium is at
	// or above this value (percent).
	PremiumMaxPct float64 `yaml:"premium_max_pct" json:"premium_max_pct"`

	// DrawdownLimitPct fails the drawdown rule when profit against the
	// cost basis is at or below this value (percent, negative).
	DrawdownLimitPct float64 `yaml:"drawdown_limit_pct" json:"drawdown_limit_pct"`
}

// Default returns the built-in ruleset: premium < 1%, price above a
// rising 20-week average, drawdown no worse than -8%, over the last 50
// weeks.
func Default() *Config {
	return &Config{
		Meta: Meta{
			RulesetID: "etf_weekly_m20",
			Version:   "v1",
		},
		Indicator: Indicator{MAPeriod: 20},
		Window:    Window{Size: 50},
		Gate: Gate{
			PremiumMaxPct:    1.0,
			DrawdownLimitPct: -8.0,
		},
	}
}
