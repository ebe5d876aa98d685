package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"blocc-dashboard/internal/poller"
)

var (
	pollFetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blocc_dashboard",
		Subsystem: "poller",
		Name:      "fetch_total",
		Help:      "Count of backend fetches issued by pollers.",
	}, []string{"poller", "status"})

	pollFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "blocc_dashboard",
		Subsystem: "poller",
		Name:      "fetch_duration_seconds",
		Help:      "Duration of backend fetches issued by pollers.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"poller", "status"})

	pollDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blocc_dashboard",
		Subsystem: "poller",
		Name:      "dropped_responses_total",
		Help:      "Count of responses discarded because a newer query or response superseded them.",
	}, []string{"poller"})

	pollState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "blocc_dashboard",
		Subsystem: "poller",
		Name:      "state",
		Help:      "Current poller state: 0 loading, 1 success, 2 failure.",
	}, []string{"poller"})
)

// Poller records metrics for one named poller.
type Poller struct {
	name string
}

// NewPoller constructs a metrics collector for the named poller.
func NewPoller(name string) *Poller {
	if name == "" {
		name = "unknown"
	}
	return &Poller{name: name}
}

// ObserveFetch records a single fetch outcome and duration.
func (m Poller) ObserveFetch(err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	pollFetchTotal.WithLabelValues(m.name, status).Inc()
	pollFetchDuration.WithLabelValues(m.name, status).Observe(time.Since(started).Seconds())
}

// ObserveDropped records a discarded response.
func (m Poller) ObserveDropped() {
	pollDroppedTotal.WithLabelValues(m.name).Inc()
}

// ObserveState publishes the current poller state.
func (m Poller) ObserveState(state poller.State) {
	pollState.WithLabelValues(m.name).Set(float64(state))
}

var _ poller.Metrics = (*Poller)(nil)
