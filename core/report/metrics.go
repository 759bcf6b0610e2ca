package report

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var reportDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "masomo",
	Subsystem: "reports",
	Name:      "build_duration_seconds",
	Help:      "Time spent assembling reports, by report.",
	Buckets:   prometheus.DefBuckets,
}, []string{"report"})

func observe(name string) func() {
	timer := prometheus.NewTimer(reportDuration.WithLabelValues(name))
	return func() { timer.ObserveDuration() }
}
