package contracts

import (
	"encoding/json"
	"testing"
)

func TestVerdictRecord_ReasonText(t *testing.T) {
	passed := VerdictRecord{Passed: true}
	if got := passed.ReasonText(); got != "" {
		t.Errorf("ReasonText() on passed record = %q, want empty", got)
	}

	failed := VerdictRecord{
		Passed:         false,
		FailureReasons: []string{"premium >= 1%", "price below M20"},
	}
	want := "premium >= 1%, price below M20"
	if got := failed.ReasonText(); got != want {
		t.Errorf("ReasonText() = %q, want %q", got, want)
	}
}

func TestVerdictRecord_JSON(t *testing.T) {
	original := VerdictRecord{
		PeriodLabel:    "2024-01-05",
		PremiumPct:     0.523,
		HasPremium:     true,
		Price:          1.234,
		M20:            1.201,
		HasM20:         true,
		AboveM20:       true,
		M20Trending:    true,
		Passed:         true,
		FailureReasons: []string{},
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}

	var decoded VerdictRecord
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}

	if decoded.PeriodLabel != original.PeriodLabel {
		t.Errorf("PeriodLabel mismatch: got %q, want %q", decoded.PeriodLabel, original.PeriodLabel)
	}
	if decoded.PremiumPct != original.PremiumPct {
		t.Errorf("PremiumPct mismatch: got %f, want %f", decoded.PremiumPct, original.PremiumPct)
	}
	if !decoded.HasM20 || decoded.M20 != original.M20 {
		t.Errorf("M20 mismatch: got %f (has=%v), want %f", decoded.M20, decoded.HasM20, original.M20)
	}
	if decoded.Passed != original.Passed {
		t.Errorf("Passed mismatch: got %v, want %v", decoded.Passed, original.Passed)
	}
}

func TestReport_Available(t *testing.T) {
	tests := []struct {
		name   string
		report Report
		want   bool
	}{
		{
			name: "ok with records",
			report: Report{
				Status:  ReportStatusOK,
				Records: []VerdictRecord{{PeriodLabel: "2024-01-05"}},
			},
			want: true,
		},
		{
			name: "degraded with records",
			report: Report{
				Status:  ReportStatusDegraded,
				Records: []VerdictRecord{{PeriodLabel: "2024-01-05"}},
			},
			want: true,
		},
		{
			name:   "unavailable",
			report: Report{Status: ReportStatusUnavailable},
			want:   false,
		},
		{
			name:   "ok but empty",
			report: Report{Status: ReportStatusOK},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.report.Available(); got != tt.want {
				t.Errorf("Available() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReport_PassedCount(t *testing.T) {
	report := Report{
		Records: []VerdictRecord{
			{Passed: true},
			{Passed: false},
			{Passed: true},
		},
	}

	if got := report.PassedCount(); got != 2 {
		t.Errorf("PassedCount() = %d, want 2", got)
	}
}
