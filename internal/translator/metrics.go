package translator

import "github.com/prometheus/client_golang/prometheus"

var (
	translationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kulyk",
			Subsystem: "translator",
			Name:      "requests_total",
			Help:      "Total translation requests by direction and outcome",
		},
		[]string{"direction", "outcome"},
	)

	tokensGeneratedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kulyk",
			Subsystem: "translator",
			Name:      "tokens_generated_total",
			Help:      "Total tokens generated by direction",
		},
		[]string{"direction"},
	)

	generateDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kulyk",
			Subsystem: "translator",
			Name:      "generate_duration_seconds",
			Help:      "Time spent in the generation loop",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"direction"},
	)

	queueWait = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kulyk",
			Subsystem: "translator",
			Name:      "queue_wait_seconds",
			Help:      "Time spent waiting for a free decoding context",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5, 15, 30},
		},
		[]string{"direction"},
	)

	contextsInUse = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "kulyk",
			Subsystem: "translator",
			Name:      "contexts_in_use",
			Help:      "Decoding contexts currently checked out",
		},
		[]string{"direction"},
	)
)

func init() {
	prometheus.MustRegister(translationsTotal, tokensGeneratedTotal, generateDuration, queueWait, contextsInUse)
}
