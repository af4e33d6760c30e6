package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	resultOK         = "ok"
	resultCached     = "cached"
	resultNotFound   = "not_found"
	resultBadRequest = "bad_request"
	resultError      = "error"
)

type metrics struct {
	lookups  *prometheus.CounterVec
	duration prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ipdb",
			Name:      "lookups_total",
			Help:      "IP lookups by result.",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ipdb",
			Name:      "lookup_duration_seconds",
			Help:      "Time spent serving a lookup request.",
			Buckets:   prometheus.ExponentialBuckets(0.000005, 4, 8),
		}),
	}
	for _, c := range []prometheus.Collector{m.lookups, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *metrics) observe(result string, start time.Time) {
	m.lookups.WithLabelValues(result).Inc()
	m.duration.Observe(time.Since(start).Seconds())
}
