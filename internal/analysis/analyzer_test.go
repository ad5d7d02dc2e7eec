package analysis

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"shiftscan/internal/domain"
	"shiftscan/internal/integrations/recognizer"
	"shiftscan/internal/shifts"
)

type fakeRecognizer struct {
	mu           sync.Mutex
	text         string
	err          error
	instructions []string
}

func (f *fakeRecognizer) Recognize(_ context.Context, _ recognizer.Image, instruction string) (recognizer.Response, error) {
	f.mu.Lock()
	f.instructions = append(f.instructions, instruction)
	f.mu.Unlock()
	if f.err != nil {
		return recognizer.Response{}, f.err
	}
	return recognizer.Response{Text: f.text, Usage: recognizer.Usage{InputTokens: 10, OutputTokens: 5}}, nil
}

func (f *fakeRecognizer) Provider() string { return "fake" }
func (f *fakeRecognizer) Model() string    { return "fake-vision-1" }

var testImage = recognizer.Image{Data: []byte("img"), MIMEType: "image/png"}

var testSettings = domain.AnalysisSettings{TargetName: "後藤", HourlyWage: 1200, YearMonth: "2026-01"}

func TestAnalyze_FencedMixedBatch(t *testing.T) {
	fake := &fakeRecognizer{text: "```json\n" + `[
		{"date":"2026-01-01","start":"09:00","end":"18:00"},
		{"date":"2026-01-02","start":"12:00"},
		{"date":"2026-01-03","start":"20:00","end":"09:00"},
		{"date":"2026-01-04","start":"10:00","end":"15:30"}
	]` + "\n```"}
	a := NewAnalyzer(fake)

	got, err := a.Analyze(context.Background(), testImage, testSettings, Options{})
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	if len(got.Result.Shifts) != 2 || len(got.Result.Rejected) != 2 {
		t.Fatalf("expected 2 shifts and 2 rejections, got %d/%d", len(got.Result.Shifts), len(got.Result.Rejected))
	}
	// 9h + 5.5h at 1200/h
	if got.Result.Totals.PayFloor != 17400 {
		t.Fatalf("total = %d, want 17400", got.Result.Totals.PayFloor)
	}
	if got.Report.ReasonBreakdown() != "MissingField=1,InvalidInterval=1" {
		t.Fatalf("unexpected breakdown: %q", got.Report.ReasonBreakdown())
	}
	if got.RunID == "" || got.Provider != "fake" || got.Model != "fake-vision-1" {
		t.Fatalf("unexpected run metadata: %+v", got)
	}
	if len(fake.instructions) != 1 || !strings.Contains(fake.instructions[0], `"後藤"`) {
		t.Fatalf("expected one instruction naming the target, got %v", fake.instructions)
	}

	rec := got.RunRecord("U123")
	if rec.UserID != "U123" || rec.Accepted != 2 || rec.Rejected != 2 || rec.TotalPayFloor != 17400 || rec.Malformed {
		t.Fatalf("unexpected run record: %+v", rec)
	}
}

func TestAnalyze_EmptyResponseIsMalformed(t *testing.T) {
	a := NewAnalyzer(&fakeRecognizer{text: ""})

	got, err := a.Analyze(context.Background(), testImage, testSettings, Options{IncludeCandidates: true})
	if !errors.Is(err, shifts.ErrMalformedBatch) {
		t.Fatalf("expected ErrMalformedBatch, got %v", err)
	}
	if !got.Malformed() {
		t.Fatalf("expected malformed report")
	}
	if len(got.Result.Shifts) != 0 || len(got.Result.Rejected) != 0 {
		t.Fatalf("expected no records on either side")
	}
	if !got.RunRecord("U1").Malformed {
		t.Fatalf("expected run record to be flagged malformed")
	}
}

func TestAnalyze_ProseIsMalformed(t *testing.T) {
	a := NewAnalyzer(&fakeRecognizer{text: "I could not find any shifts for that person."})

	got, err := a.Analyze(context.Background(), testImage, testSettings, Options{IncludeCandidates: true})
	if !errors.Is(err, shifts.ErrMalformedBatch) {
		t.Fatalf("expected ErrMalformedBatch, got %v", err)
	}
	if !strings.Contains(got.Report.MalformedText, "could not find") {
		t.Fatalf("expected offending text to be kept, got %q", got.Report.MalformedText)
	}
}

func TestAnalyze_UpstreamFailure(t *testing.T) {
	a := NewAnalyzer(&fakeRecognizer{err: errors.New("connection reset")})

	_, err := a.Analyze(context.Background(), testImage, testSettings, Options{})
	if !errors.Is(err, recognizer.ErrUpstreamFailure) {
		t.Fatalf("expected ErrUpstreamFailure, got %v", err)
	}
	if errors.Is(err, shifts.ErrMalformedBatch) {
		t.Fatalf("upstream failure must not be reported as malformed")
	}
}

func TestAnalyze_InvalidSettingsSkipRecognizer(t *testing.T) {
	fake := &fakeRecognizer{text: "[]"}
	a := NewAnalyzer(fake)

	_, err := a.Analyze(context.Background(), testImage, domain.AnalysisSettings{TargetName: "", HourlyWage: 1200, YearMonth: "2026-01"}, Options{})
	if err == nil || !strings.Contains(err.Error(), "invalid settings") {
		t.Fatalf("expected invalid settings error, got %v", err)
	}
	if len(fake.instructions) != 0 {
		t.Fatalf("recognizer must not be called with invalid settings")
	}
}

func TestAnalyze_ConcurrentRequestsDoNotShareState(t *testing.T) {
	// genai pulls in opencensus, whose view worker starts at init.
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))

	a := NewAnalyzer(&fakeRecognizer{text: `[{"date":"2026-01-01","start":"09:00","end":"10:00"}]`})

	var wg sync.WaitGroup
	totals := make([]int64, 8)
	for i := range totals {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			settings := testSettings
			settings.HourlyWage = float64(1000 + i)
			got, err := a.Analyze(context.Background(), testImage, settings, Options{})
			if err != nil {
				t.Errorf("Analyze error: %v", err)
				return
			}
			totals[i] = got.Result.Totals.PayFloor
		}(i)
	}
	wg.Wait()
	for i, total := range totals {
		if total != int64(1000+i) {
			t.Fatalf("request %d total = %d, want %d", i, total, 1000+i)
		}
	}
}
