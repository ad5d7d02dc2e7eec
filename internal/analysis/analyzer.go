package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shiftscan/internal/domain"
	"shiftscan/internal/integrations/recognizer"
	"shiftscan/internal/metrics"
	"shiftscan/internal/shifts"
)

// Analysis is everything one pass over one image produced.
type Analysis struct {
	RunID     string
	Settings  domain.AnalysisSettings
	Provider  string
	Model     string
	RawText   string
	Candidate string
	Result    domain.ShiftBatchResult
	Report    shifts.Report
	Usage     recognizer.Usage
	Elapsed   time.Duration
}

// Malformed reports whether the recognizer output could not be read as a list.
func (a Analysis) Malformed() bool {
	return a.Report.Malformed
}

type Options struct {
	IncludeCandidates bool
}

type Analyzer struct {
	recognizer recognizer.Recognizer
	now        func() time.Time
}

func NewAnalyzer(r recognizer.Recognizer) *Analyzer {
	return &Analyzer{recognizer: r, now: time.Now}
}

// Analyze runs the recognizer once and validates its output. A malformed batch
// returns the Analysis (with a Malformed report) together with the error.
func (a *Analyzer) Analyze(ctx context.Context, img recognizer.Image, settings domain.AnalysisSettings, opts Options) (Analysis, error) {
	out := Analysis{
		RunID:    uuid.NewString(),
		Settings: settings,
		Provider: a.recognizer.Provider(),
		Model:    a.recognizer.Model(),
	}
	if err := settings.Validate(); err != nil {
		return out, fmt.Errorf("invalid settings: %w", err)
	}

	started := a.now()
	instruction := shifts.BuildInstruction(settings.TargetName, settings.YearMonth)
	resp, err := a.recognizer.Recognize(ctx, img, instruction)
	metrics.ObserveRecognizer(out.Provider, a.now().Sub(started))
	if err != nil {
		metrics.ObserveAnalysis(metrics.OutcomeUpstream)
		zap.S().Warnf("analysis run=%s provider=%s model=%s upstream error: %v", out.RunID, out.Provider, out.Model, err)
		if !errors.Is(err, recognizer.ErrUpstreamFailure) {
			err = fmt.Errorf("%w: %v", recognizer.ErrUpstreamFailure, err)
		}
		return out, err
	}
	out.RawText = resp.Text
	out.Usage = resp.Usage
	out.Candidate = shifts.Sanitize(resp.Text)

	diagOpts := shifts.DiagnosticsOptions{IncludeCandidates: opts.IncludeCandidates, YearMonth: settings.YearMonth}
	result, err := shifts.Validate(out.Candidate)
	if err != nil {
		out.Report = shifts.DiagnoseFailure(err, diagOpts)
		out.Elapsed = a.now().Sub(started)
		metrics.ObserveAnalysis(metrics.OutcomeMalformed)
		zap.S().Warnf("analysis run=%s provider=%s model=%s malformed response size=%d: %v", out.RunID, out.Provider, out.Model, len(resp.Text), err)
		return out, err
	}

	result, err = shifts.Tally(result, settings.HourlyWage)
	if err != nil {
		return out, err
	}
	out.Result = result
	out.Report = shifts.Diagnose(result, diagOpts)
	out.Elapsed = a.now().Sub(started)

	rejected := make(map[string]int, len(out.Report.ByReason))
	for _, rc := range out.Report.ByReason {
		rejected[string(rc.Reason)] = rc.Count
	}
	metrics.ObserveRecords(out.Report.Accepted, rejected)
	metrics.ObserveAnalysis(metrics.OutcomeSuccess)

	zap.S().Infof("analysis run=%s provider=%s model=%s accepted=%d rejected=%d reasons=%q total=%d tokens=%d elapsed=%s",
		out.RunID, out.Provider, out.Model, out.Report.Accepted, out.Report.Rejected, out.Report.ReasonBreakdown(),
		result.Totals.PayFloor, out.Usage.TotalTokens(), out.Elapsed.Round(time.Millisecond))
	return out, nil
}

// RunRecord summarizes the analysis for the audit log.
func (a Analysis) RunRecord(userID string) domain.RunRecord {
	return domain.RunRecord{
		RunID:           a.RunID,
		UserID:          userID,
		TargetName:      a.Settings.TargetName,
		YearMonth:       a.Settings.YearMonth,
		HourlyWage:      a.Settings.HourlyWage,
		Provider:        a.Provider,
		Model:           a.Model,
		Accepted:        a.Report.Accepted,
		Rejected:        a.Report.Rejected,
		ReasonBreakdown: a.Report.ReasonBreakdown(),
		TotalPayFloor:   a.Result.Totals.PayFloor,
		Malformed:       a.Report.Malformed,
	}
}
