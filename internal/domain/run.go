package domain

import "time"

// RunRecord is the audit trail of one analysis. Shift records are not kept.
type RunRecord struct {
	ID              int64
	RunID           string
	UserID          string
	TargetName      string
	YearMonth       string
	HourlyWage      float64
	Provider        string
	Model           string
	Accepted        int
	Rejected        int
	ReasonBreakdown string // "MissingField=1,InvalidInterval=2"
	TotalPayFloor   int64
	Malformed       bool
	CreatedAt       time.Time
}

type UserSettings struct {
	UserID     string
	TargetName string
	HourlyWage float64
	// WageSet distinguishes a stored wage of 0 from no stored wage.
	WageSet    bool
	YearMonth  string
	UpdatedAt  time.Time
}

func (u UserSettings) AnalysisSettings() AnalysisSettings {
	return AnalysisSettings{
		TargetName: u.TargetName,
		HourlyWage: u.HourlyWage,
		YearMonth:  u.YearMonth,
	}
}
