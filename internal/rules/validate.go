package rules

import "fmt"

// ValidationError is a fatal ruleset problem.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all ruleset constraints.
func Validate(cfg *Config) error {
	if cfg.Meta.RulesetID == "" {
		return ValidationError{"meta.ruleset_id", "required"}
	}

	if cfg.Indicator.MAPeriod < 2 {
		return ValidationError{"indicator.ma_period", "must be >= 2"}
	}

	if cfg.Window.Size < 1 {
		return ValidationError{"window.size", "must be >= 1"}
	}

	if cfg.Gate.PremiumMaxPct <= 0 {
		return ValidationError{"gate.premium_max_pct", "must be > 0"}
	}

	if cfg.Gate.DrawdownLimitPct >= 0 {
		return ValidationError{"gate.drawdown_limit_pct", "must be < 0"}
	}

	return nil
}
