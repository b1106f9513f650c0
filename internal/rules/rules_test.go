package rules

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleYAML = `meta:
  ruleset_id: etf_weekly_m20
  version: v2
indicator:
  ma_period: 20
window:
  size: 50
gate:
  premium_max_pct: 1.0
  drawdown_limit_pct: -8.0
`

func writeRules(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write rules file: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := Validate(cfg); err != nil {
		t.Fatalf("default ruleset must validate: %v", err)
	}

	if cfg.Indicator.MAPeriod != 20 {
		t.Errorf("expected ma_period=20, got %d", cfg.Indicator.MAPeriod)
	}
	if cfg.Window.Size != 50 {
		t.Errorf("expected window size=50, got %d", cfg.Window.Size)
	}
	if cfg.Gate.PremiumMaxPct != 1.0 {
		t.Errorf("expected premium_max_pct=1.0, got %v", cfg.Gate.PremiumMaxPct)
	}
	if cfg.Gate.DrawdownLimitPct != -8.0 {
		t.Errorf("expected drawdown_limit_pct=-8.0, got %v", cfg.Gate.DrawdownLimitPct)
	}
}

func TestLoad(t *testing.T) {
	path := writeRules(t, sampleYAML)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Meta.RulesetID != "etf_weekly_m20" {
		t.Errorf("expected ruleset_id=etf_weekly_m20, got %s", cfg.Meta.RulesetID)
	}
	if cfg.Meta.Version != "v2" {
		t.Errorf("expected version=v2, got %s", cfg.Meta.Version)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeRules(t, sampleYAML+"unknown_field: 1\n")

	if _, err := Load(path); err == nil {
		t.Error("expected error for unknown field, got nil")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault failed: %v", err)
	}
	if cfg.Meta.RulesetID != Default().Meta.RulesetID {
		t.Error("empty path must return the built-in defaults")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty ruleset id", func(c *Config) { c.Meta.RulesetID = "" }},
		{"ma period too small", func(c *Config) { c.Indicator.MAPeriod = 1 }},
		{"window size zero", func(c *Config) { c.Window.Size = 0 }},
		{"premium limit zero", func(c *Config) { c.Gate.PremiumMaxPct = 0 }},
		{"drawdown limit positive", func(c *Config) { c.Gate.DrawdownLimitPct = 8.0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := Validate(cfg); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestHash(t *testing.T) {
	cfg := Default()

	hash, err := Hash(cfg)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if len(hash) != 64 {
		t.Errorf("expected 64 char hash, got %d", len(hash))
	}

	hash2, _ := Hash(cfg)
	if hash != hash2 {
		t.Error("hash not deterministic")
	}

	cfg.Gate.PremiumMaxPct = 2.0
	hash3, _ := Hash(cfg)
	if hash == hash3 {
		t.Error("different thresholds must hash differently")
	}
}
