package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterIsIdempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("first Register error: %v", err)
	}
	if err := Register(reg); err != nil {
		t.Fatalf("second Register error: %v", err)
	}
}

func TestObserveAnalysisNormalizesOutcome(t *testing.T) {
	before := testutil.ToFloat64(analysesTotal.WithLabelValues(OutcomeSuccess))
	ObserveAnalysis("something-else")
	after := testutil.ToFloat64(analysesTotal.WithLabelValues(OutcomeSuccess))
	if after-before != 1 {
		t.Fatalf("expected unknown outcome to count as success, delta=%v", after-before)
	}

	before = testutil.ToFloat64(analysesTotal.WithLabelValues(OutcomeMalformed))
	ObserveAnalysis(OutcomeMalformed)
	after = testutil.ToFloat64(analysesTotal.WithLabelValues(OutcomeMalformed))
	if after-before != 1 {
		t.Fatalf("expected malformed counter to grow by one, delta=%v", after-before)
	}
}

func TestObserveRecords(t *testing.T) {
	acceptedBefore := testutil.ToFloat64(recordsTotal.WithLabelValues(RecordAccepted))
	missingBefore := testutil.ToFloat64(recordsTotal.WithLabelValues("MissingField"))

	ObserveRecords(3, map[string]int{"MissingField": 2, "InvalidFormat": 0})

	if d := testutil.ToFloat64(recordsTotal.WithLabelValues(RecordAccepted)) - acceptedBefore; d != 3 {
		t.Fatalf("accepted delta = %v, want 3", d)
	}
	if d := testutil.ToFloat64(recordsTotal.WithLabelValues("MissingField")) - missingBefore; d != 2 {
		t.Fatalf("MissingField delta = %v, want 2", d)
	}
}

func TestObserveRecognizerClampsNegative(t *testing.T) {
	ObserveRecognizer("gemini", -time.Second)
	if n := testutil.CollectAndCount(recognizerSeconds); n < 1 {
		t.Fatalf("expected recognizer histogram to have a series, got %d", n)
	}
}
