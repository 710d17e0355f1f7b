package metrics

import "github.com/prometheus/client_golang/prometheus"

// PortalMetrics exposes counters/histograms for backend fetches and calendar
// interactions. All Observe methods are nil-safe so wiring stays optional.
type PortalMetrics struct {
	upstreamTotal   *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
	mergeDegraded   *prometheus.CounterVec
	slotClicks      *prometheus.CounterVec
}

func NewPortalMetrics(reg prometheus.Registerer) *PortalMetrics {
	m := &PortalMetrics{
		upstreamTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicportal",
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Total backend API requests by endpoint and outcome",
		}, []string{"endpoint", "outcome"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinicportal",
			Subsystem: "upstream",
			Name:      "request_latency_seconds",
			Help:      "Latency of backend API requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		mergeDegraded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicportal",
			Subsystem: "calendar",
			Name:      "merge_degraded_total",
			Help:      "Merge cycles where a source degraded to empty",
		}, []string{"source"}),
		slotClicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicportal",
			Subsystem: "calendar",
			Name:      "slot_clicks_total",
			Help:      "Slot-click gate decisions",
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.upstreamTotal, m.upstreamLatency, m.mergeDegraded, m.slotClicks)
	return m
}

// ObserveUpstream implements clinicapi.MetricsRecorder.
func (m *PortalMetrics) ObserveUpstream(endpoint, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.upstreamTotal.WithLabelValues(endpoint, outcome).Inc()
	m.upstreamLatency.WithLabelValues(endpoint).Observe(seconds)
}

// ObserveMergeDegraded implements calendar.DegradeRecorder.
func (m *PortalMetrics) ObserveMergeDegraded(source string) {
	if m == nil {
		return
	}
	m.mergeDegraded.WithLabelValues(source).Inc()
}

func (m *PortalMetrics) ObserveSlotClick(accepted bool) {
	if m == nil {
		return
	}
	outcome := "accepted"
	if !accepted {
		outcome = "capacity_rejected"
	}
	m.slotClicks.WithLabelValues(outcome).Inc()
}
