package domain

import (
	"math"
	"testing"
)

func TestAnalysisSettingsValidate(t *testing.T) {
	tests := []struct {
		name     string
		settings AnalysisSettings
		wantErr  bool
	}{
		{name: "valid", settings: AnalysisSettings{TargetName: "Goto", HourlyWage: 1200, YearMonth: "2026-01"}},
		{name: "zero wage", settings: AnalysisSettings{TargetName: "Goto", HourlyWage: 0, YearMonth: "2026-12"}},
		{name: "blank name", settings: AnalysisSettings{TargetName: "  ", HourlyWage: 1200, YearMonth: "2026-01"}, wantErr: true},
		{name: "negative wage", settings: AnalysisSettings{TargetName: "Goto", HourlyWage: -1, YearMonth: "2026-01"}, wantErr: true},
		{name: "nan wage", settings: AnalysisSettings{TargetName: "Goto", HourlyWage: math.NaN(), YearMonth: "2026-01"}, wantErr: true},
		{name: "month 13", settings: AnalysisSettings{TargetName: "Goto", HourlyWage: 1200, YearMonth: "2026-13"}, wantErr: true},
		{name: "full date", settings: AnalysisSettings{TargetName: "Goto", HourlyWage: 1200, YearMonth: "2026-01-01"}, wantErr: true},
	}
	for _, tt := range tests {
		err := tt.settings.Validate()
		if (err != nil) != tt.wantErr {
			t.Fatalf("%s: Validate() err=%v, wantErr=%v", tt.name, err, tt.wantErr)
		}
	}
}

func TestValidatedShiftDuration(t *testing.T) {
	s := ValidatedShift{Date: "2026-01-01", Start: "09:00", End: "18:30", StartMinute: 540, EndMinute: 1110}
	if got := s.DurationMinutes(); got != 570 {
		t.Fatalf("DurationMinutes() = %d, want 570", got)
	}
	if got := s.Key(); got != "2026-01-01 09:00-18:30" {
		t.Fatalf("Key() = %q", got)
	}
}
