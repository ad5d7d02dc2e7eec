package shifts

import (
	"fmt"
	"math"
	"math/big"
	"strconv"

	"shiftscan/internal/domain"
)

// ComputePay returns the duration and pay of a single shift. The wage is taken
// at its decimal value and pay is floored exactly, so 2.8/h for 1350 minutes
// is 63, not 62.
func ComputePay(shift domain.ValidatedShift, hourlyWage float64) (domain.ShiftPay, error) {
	wage, err := wageRat(hourlyWage)
	if err != nil {
		return domain.ShiftPay{}, err
	}
	return shiftPay(shift, wage), nil
}

// Tally applies the wage to every accepted shift. The total is floored once
// from the unrounded per-shift amounts, not summed from the floored ones.
func Tally(result domain.ShiftBatchResult, hourlyWage float64) (domain.ShiftBatchResult, error) {
	wage, err := wageRat(hourlyWage)
	if err != nil {
		return result, err
	}

	out := result
	out.Wage = hourlyWage
	out.Pay = make([]domain.ShiftPay, 0, len(result.Shifts))
	out.Totals = domain.BatchTotals{}
	total := new(big.Rat)
	var minutes int64
	for _, shift := range result.Shifts {
		out.Pay = append(out.Pay, shiftPay(shift, wage))
		total.Add(total, payRat(shift.DurationMinutes(), wage))
		minutes += int64(shift.DurationMinutes())
	}
	out.Totals.Hours = float64(minutes) / 60
	out.Totals.Pay, _ = total.Float64()
	out.Totals.PayFloor = floorRat(total)
	return out, nil
}

func shiftPay(shift domain.ValidatedShift, wage *big.Rat) domain.ShiftPay {
	minutes := shift.DurationMinutes()
	pay := payRat(minutes, wage)
	f, _ := pay.Float64()
	return domain.ShiftPay{
		DurationHours: float64(minutes) / 60,
		Pay:           f,
		PayFloor:      floorRat(pay),
	}
}

// payRat is minutes x wage / 60.
func payRat(minutes int, wage *big.Rat) *big.Rat {
	return new(big.Rat).Mul(big.NewRat(int64(minutes), 60), wage)
}

// floorRat relies on Denom being positive; big.Int.Div is Euclidean.
func floorRat(r *big.Rat) int64 {
	return new(big.Int).Div(r.Num(), r.Denom()).Int64()
}

// wageRat reads the wage through its shortest decimal form.
func wageRat(w float64) (*big.Rat, error) {
	if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWage, w)
	}
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(w, 'f', -1, 64))
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWage, w)
	}
	return r, nil
}
