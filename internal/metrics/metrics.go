package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeValid   = "valid"
	OutcomeInvalid = "invalid"
)

var (
	SharesIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fieldorder",
		Subsystem: "share",
		Name:      "issued_total",
		Help:      "Share tokens issued, by resource kind.",
	}, []string{"kind"})

	SharesRevoked = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fieldorder",
		Subsystem: "share",
		Name:      "revoked_total",
		Help:      "Share tokens transitioned to revoked.",
	})

	ShareValidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fieldorder",
		Subsystem: "share",
		Name:      "validations_total",
		Help:      "Share token validations, by outcome.",
	}, []string{"outcome"})

	JobRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fieldorder",
		Subsystem: "job",
		Name:      "runs_total",
		Help:      "Scheduled job runs, by job and result.",
	}, []string{"job", "result"})

	JobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fieldorder",
		Subsystem: "job",
		Name:      "duration_seconds",
		Help:      "Scheduled job run duration.",
		Buckets:   []float64{0.1, 1, 10, 60, 300, 1800},
	}, []string{"job"})
)
