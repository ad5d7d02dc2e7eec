package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"
)

type Reason string

const (
	ReasonMissingField    Reason = "MissingField"
	ReasonInvalidFormat   Reason = "InvalidFormat"
	ReasonInvalidInterval Reason = "InvalidInterval"
)

// Reasons lists rejection reasons in reporting order.
var Reasons = []Reason{ReasonMissingField, ReasonInvalidFormat, ReasonInvalidInterval}

// CandidateShiftRecord is one element of the recognizer's list, before any checks.
// Fields is nil when the element was not a JSON object.
type CandidateShiftRecord struct {
	Position int
	Raw      json.RawMessage
	Fields   map[string]json.RawMessage
}

// ValidatedShift is a same-day interval that is safe to use in arithmetic.
type ValidatedShift struct {
	Position    int
	Date        string // YYYY-MM-DD
	Start       string // HH:MM
	End         string // HH:MM
	StartMinute int
	EndMinute   int
}

func (s ValidatedShift) DurationMinutes() int {
	return s.EndMinute - s.StartMinute
}

func (s ValidatedShift) Key() string {
	return s.Date + " " + s.Start + "-" + s.End
}

type RejectedEntry struct {
	Candidate CandidateShiftRecord
	Reason    Reason
	Detail    string
}

type ShiftPay struct {
	DurationHours float64
	Pay           float64
	PayFloor      int64
}

type BatchTotals struct {
	Hours    float64
	Pay      float64
	PayFloor int64
}

// ShiftBatchResult holds one analysis pass. Pay is parallel to Shifts and is
// only populated once a wage has been applied.
type ShiftBatchResult struct {
	Shifts   []ValidatedShift
	Rejected []RejectedEntry
	Pay      []ShiftPay
	Totals   BatchTotals
	Wage     float64
}

var yearMonthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// AnalysisSettings is the operator input for a single run.
type AnalysisSettings struct {
	TargetName string
	HourlyWage float64
	YearMonth  string
}

func (s AnalysisSettings) Validate() error {
	if strings.TrimSpace(s.TargetName) == "" {
		return fmt.Errorf("target name is required")
	}
	if math.IsNaN(s.HourlyWage) || math.IsInf(s.HourlyWage, 0) || s.HourlyWage < 0 {
		return fmt.Errorf("hourly wage must be a non-negative number, got %v", s.HourlyWage)
	}
	if !ValidYearMonth(s.YearMonth) {
		return fmt.Errorf("year-month must look like 2026-01, got %q", s.YearMonth)
	}
	return nil
}

func ValidYearMonth(s string) bool {
	return yearMonthPattern.MatchString(s)
}
