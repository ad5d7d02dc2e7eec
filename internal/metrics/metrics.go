package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels batches that parsed, whatever their rejections.
	OutcomeSuccess = "success"
	// OutcomeMalformed labels batches that were not a JSON list.
	OutcomeMalformed = "malformed"
	// OutcomeUpstream labels failed recognizer calls.
	OutcomeUpstream = "upstream_error"

	// RecordAccepted labels records that became shifts; rejected records use their reason.
	RecordAccepted = "accepted"
)

var (
	analysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shiftscan",
			Name:      "analyses_total",
			Help:      "Total number of schedule analyses, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	recordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shiftscan",
			Name:      "records_total",
			Help:      "Shift records seen by the validator, partitioned by result.",
		},
		[]string{"result"},
	)

	recognizerSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "shiftscan",
			Name:      "recognizer_seconds",
			Help:      "Recognizer call latency in seconds.",
			Buckets:   []float64{0.5, 1, 2, 4, 8, 15, 30, 60, 90},
		},
		[]string{"provider"},
	)
)

// Register attaches shiftscan collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		analysesTotal,
		recordsTotal,
		recognizerSeconds,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

func ObserveAnalysis(outcome string) {
	switch outcome {
	case OutcomeMalformed, OutcomeUpstream:
	default:
		outcome = OutcomeSuccess
	}
	analysesTotal.WithLabelValues(outcome).Inc()
}

// ObserveRecords adds accepted and per-reason rejected counts.
func ObserveRecords(accepted int, rejected map[string]int) {
	if accepted > 0 {
		recordsTotal.WithLabelValues(RecordAccepted).Add(float64(accepted))
	}
	for reason, n := range rejected {
		if n > 0 {
			recordsTotal.WithLabelValues(reason).Add(float64(n))
		}
	}
}

func ObserveRecognizer(provider string, duration time.Duration) {
	if duration < 0 {
		duration = 0
	}
	recognizerSeconds.WithLabelValues(provider).Observe(duration.Seconds())
}
