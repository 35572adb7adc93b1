package sftpinventory

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics instruments ListFiles. A nil *Metrics records nothing.
type Metrics struct {
	lists    *prometheus.CounterVec
	duration prometheus.Histogram
	records  prometheus.Counter
}

// NewMetrics creates the list metrics and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		lists: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sftpinventory",
			Name:      "list_total",
			Help:      "ListFiles calls by result.",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sftpinventory",
			Name:      "list_duration_seconds",
			Help:      "Time spent in ListFiles, including connect and disconnect.",
			Buckets:   prometheus.DefBuckets,
		}),
		records: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sftpinventory",
			Name:      "records_total",
			Help:      "Records returned by ListFiles.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.lists, m.duration, m.records)
	}
	return m
}

func (m *Metrics) observeList(start time.Time, n int, err error) {
	if m == nil {
		return
	}
	m.lists.WithLabelValues(resultLabel(err)).Inc()
	m.duration.Observe(time.Since(start).Seconds())
	m.records.Add(float64(n))
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	switch KindOf(err) {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindConnection:
		return "connection_error"
	case KindList:
		return "list_error"
	case KindIllegalState:
		return "illegal_state"
	default:
		return "unknown"
	}
}
