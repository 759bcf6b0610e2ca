package grade

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	pathBatch  = "batch"
	pathSingle = "single"
)

var (
	gradesSaved = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "masomo",
		Subsystem: "grades",
		Name:      "saved_total",
		Help:      "Number of grades saved, by ingestion path.",
	}, []string{"path"})

	batchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "masomo",
		Subsystem: "grades",
		Name:      "batch_failures_total",
		Help:      "Number of batch saves rolled back.",
	})
)
