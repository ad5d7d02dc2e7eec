package shifts

import (
	"errors"
	"math"
	"testing"

	"shiftscan/internal/domain"
)

func shiftOf(startMinute, endMinute int) domain.ValidatedShift {
	return domain.ValidatedShift{Date: "2026-01-01", StartMinute: startMinute, EndMinute: endMinute}
}

func TestComputePay(t *testing.T) {
	tests := []struct {
		name      string
		shift     domain.ValidatedShift
		wage      float64
		wantHours float64
		wantFloor int64
	}{
		{name: "nine hours", shift: shiftOf(9*60, 18*60), wage: 1200, wantHours: 9, wantFloor: 10800},
		{name: "twenty minutes", shift: shiftOf(9*60, 9*60+20), wage: 1200, wantHours: 20.0 / 60, wantFloor: 400},
		{name: "fractional wage", shift: shiftOf(9*60, 10*60), wage: 10.9, wantHours: 1, wantFloor: 10},
		{name: "zero wage", shift: shiftOf(9*60, 10*60), wage: 0, wantHours: 1, wantFloor: 0},
		{name: "decimal wage lands on a whole unit", shift: shiftOf(0, 1350), wage: 2.8, wantHours: 22.5, wantFloor: 63},
		{name: "two-decimal wage lands on a whole unit", shift: shiftOf(0, 400), wage: 2.55, wantHours: 400.0 / 60, wantFloor: 17},
	}
	for _, tt := range tests {
		got, err := ComputePay(tt.shift, tt.wage)
		if err != nil {
			t.Fatalf("%s: ComputePay error: %v", tt.name, err)
		}
		if got.DurationHours != tt.wantHours {
			t.Fatalf("%s: hours = %v, want %v", tt.name, got.DurationHours, tt.wantHours)
		}
		if got.PayFloor != tt.wantFloor {
			t.Fatalf("%s: pay floor = %d, want %d", tt.name, got.PayFloor, tt.wantFloor)
		}
	}
}

func TestComputePay_RejectsBadWage(t *testing.T) {
	for _, wage := range []float64{-1, math.NaN(), math.Inf(1)} {
		if _, err := ComputePay(shiftOf(0, 60), wage); !errors.Is(err, ErrInvalidWage) {
			t.Fatalf("ComputePay(wage=%v) expected ErrInvalidWage, got %v", wage, err)
		}
	}
}

func TestTally_FloorsTotalOnce(t *testing.T) {
	result := domain.ShiftBatchResult{
		Shifts: []domain.ValidatedShift{shiftOf(540, 600), shiftOf(600, 660), shiftOf(660, 720)},
	}
	tallied, err := Tally(result, 10.9)
	if err != nil {
		t.Fatalf("Tally error: %v", err)
	}

	var sumOfFloors int64
	for _, p := range tallied.Pay {
		sumOfFloors += p.PayFloor
	}
	if sumOfFloors != 30 {
		t.Fatalf("sum of per-shift floors = %d, want 30", sumOfFloors)
	}
	if tallied.Totals.PayFloor != 32 {
		t.Fatalf("total = %d, want floor(32.7) = 32", tallied.Totals.PayFloor)
	}
	if tallied.Wage != 10.9 {
		t.Fatalf("wage = %v, want 10.9", tallied.Wage)
	}
}

func TestTally_DecimalWageTotalIsExact(t *testing.T) {
	// 3 x 450 minutes at 2.8/h is exactly 63.
	result := domain.ShiftBatchResult{
		Shifts: []domain.ValidatedShift{shiftOf(0, 450), shiftOf(460, 910), shiftOf(920, 1370)},
	}
	tallied, err := Tally(result, 2.8)
	if err != nil {
		t.Fatalf("Tally error: %v", err)
	}
	if tallied.Totals.PayFloor != 63 {
		t.Fatalf("total = %d, want 63", tallied.Totals.PayFloor)
	}
	if tallied.Totals.Hours != 22.5 {
		t.Fatalf("hours = %v, want 22.5", tallied.Totals.Hours)
	}
}

func TestTally_DoesNotMutateInput(t *testing.T) {
	result := domain.ShiftBatchResult{Shifts: []domain.ValidatedShift{shiftOf(0, 60)}}
	if _, err := Tally(result, 1000); err != nil {
		t.Fatalf("Tally error: %v", err)
	}
	if result.Pay != nil || result.Totals.PayFloor != 0 {
		t.Fatalf("expected input result to be left alone, got %+v", result)
	}
}

func TestTally_RejectsNegativeWage(t *testing.T) {
	result := domain.ShiftBatchResult{Shifts: []domain.ValidatedShift{shiftOf(0, 60)}}
	if _, err := Tally(result, -5); !errors.Is(err, ErrInvalidWage) {
		t.Fatalf("expected ErrInvalidWage, got %v", err)
	}
}
