package handlers

import (
	"fmt"
	"math"
	"net/http"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/oakpark-dental/clinic-portal/internal/calendar"
	"github.com/oakpark-dental/clinic-portal/internal/clinicapi"
	"github.com/oakpark-dental/clinic-portal/pkg/logging"
)

const upstreamLatencyMetric = "clinicportal_upstream_request_latency_seconds"

// SessionCounter reports how many live calendar sessions are connected.
type SessionCounter interface {
	SessionCount() int
}

// DashboardHandler serves the back-office operational snapshot: today's slot
// occupancy, live session count, and backend latency distilled from the
// Prometheus registry.
type DashboardHandler struct {
	merger   Merger
	sessions SessionCounter
	gatherer prometheus.Gatherer
	logger   *logging.Logger
	now      func() time.Time
}

func NewDashboardHandler(merger Merger, sessions SessionCounter, gatherer prometheus.Gatherer, logger *logging.Logger) *DashboardHandler {
	if logger == nil {
		logger = logging.Default()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &DashboardHandler{
		merger:   merger,
		sessions: sessions,
		gatherer: gatherer,
		logger:   logger.Component("dashboard"),
		now:      time.Now,
	}
}

// LatencyBucket is one histogram bucket of the backend latency snapshot.
type LatencyBucket struct {
	LeSeconds float64 `json:"le_seconds"`
	Label     string  `json:"label,omitempty"`
	Count     int64   `json:"count"`
}

// LatencySnapshot summarizes the backend request latency histogram.
type LatencySnapshot struct {
	Total   int64           `json:"total"`
	P90Ms   float64         `json:"p90_ms"`
	P95Ms   float64         `json:"p95_ms"`
	Buckets []LatencyBucket `json:"buckets,omitempty"`
}

// SlotOccupancy is one hour of today's schedule.
type SlotOccupancy struct {
	Hour       int  `json:"hour"`
	Count      int  `json:"count"`
	AtCapacity bool `json:"at_capacity"`
}

// DashboardResponse is the back-office snapshot payload.
type DashboardResponse struct {
	Date            string            `json:"date"`
	TotalToday      int               `json:"total_today"`
	FullSlots       int               `json:"full_slots"`
	Occupancy       []SlotOccupancy   `json:"occupancy"`
	LiveSessions    int               `json:"live_sessions"`
	BackendLatency  LatencySnapshot   `json:"backend_latency"`
	Errors          map[string]string `json:"errors,omitempty"`
}

// GetDashboard returns the operational snapshot. GET /api/admin/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	today := h.now().Format("2006-01-02")
	scope := clinicapi.Scope{StartDate: today, EndDate: today}

	result := h.merger.Merge(r.Context(), scope)
	grid := calendar.BuildGrid(result.Appointments, h.logger)

	resp := DashboardResponse{
		Date:           today,
		TotalToday:     len(result.Appointments),
		Occupancy:      make([]SlotOccupancy, 0),
		BackendLatency: snapshotUpstreamLatency(h.gatherer),
		Errors:         sourceErrors(result),
	}
	if h.sessions != nil {
		resp.LiveSessions = h.sessions.SessionCount()
	}
	for _, key := range grid.Keys() {
		if key.Date != today {
			continue
		}
		occ := SlotOccupancy{
			Hour:       key.Hour,
			Count:      grid.Count(key.Date, key.Hour),
			AtCapacity: grid.IsAtCapacity(key.Date, key.Hour),
		}
		if occ.AtCapacity {
			resp.FullSlots++
		}
		resp.Occupancy = append(resp.Occupancy, occ)
	}

	writeJSON(w, http.StatusOK, resp)
}

func snapshotUpstreamLatency(gatherer prometheus.Gatherer) LatencySnapshot {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	mfs, err := gatherer.Gather()
	if err != nil {
		return LatencySnapshot{}
	}

	var family *dto.MetricFamily
	for _, mf := range mfs {
		if mf != nil && mf.GetName() == upstreamLatencyMetric {
			family = mf
			break
		}
	}
	if family == nil {
		return LatencySnapshot{}
	}

	// Aggregate histograms across endpoints.
	cumulativeByUpper := map[float64]uint64{}
	var sampleCount uint64

	for _, metric := range family.Metric {
		if metric == nil {
			continue
		}
		hist := metric.GetHistogram()
		if hist == nil {
			continue
		}
		sampleCount += hist.GetSampleCount()
		for _, b := range hist.Bucket {
			if b == nil {
				continue
			}
			cumulativeByUpper[b.GetUpperBound()] += b.GetCumulativeCount()
		}
	}

	if sampleCount == 0 || len(cumulativeByUpper) == 0 {
		return LatencySnapshot{}
	}

	uppers := make([]float64, 0, len(cumulativeByUpper))
	for upper := range cumulativeByUpper {
		uppers = append(uppers, upper)
	}
	sort.Float64s(uppers)

	buckets := make([]LatencyBucket, 0, len(uppers))
	var prev uint64
	var lastFiniteUpper float64
	for _, upper := range uppers {
		cum := cumulativeByUpper[upper]
		if math.IsInf(upper, 1) {
			overflow := int64(0)
			if cum >= prev {
				overflow = int64(cum - prev)
			} else {
				overflow = int64(cum)
			}
			if overflow > 0 {
				buckets = append(buckets, LatencyBucket{
					LeSeconds: lastFiniteUpper,
					Label:     fmt.Sprintf(">%s", formatSeconds(lastFiniteUpper)),
					Count:     overflow,
				})
			}
			prev = cum
			continue
		}

		lastFiniteUpper = upper
		count := int64(0)
		if cum >= prev {
			count = int64(cum - prev)
		} else {
			count = int64(cum)
		}
		buckets = append(buckets, LatencyBucket{
			LeSeconds: upper,
			Count:     count,
		})
		prev = cum
	}

	p90 := histogramQuantile(0.90, sampleCount, uppers, cumulativeByUpper)
	p95 := histogramQuantile(0.95, sampleCount, uppers, cumulativeByUpper)

	return LatencySnapshot{
		Total:   int64(sampleCount),
		P90Ms:   p90 * 1000.0,
		P95Ms:   p95 * 1000.0,
		Buckets: buckets,
	}
}

func histogramQuantile(q float64, total uint64, uppers []float64, cumulativeByUpper map[float64]uint64) float64 {
	if total == 0 || q <= 0 {
		return 0
	}
	if q >= 1 {
		for i := len(uppers) - 1; i >= 0; i-- {
			if !math.IsInf(uppers[i], 1) {
				return uppers[i]
			}
		}
		return 0
	}

	target := q * float64(total)
	var prevUpper float64
	var prevCum float64

	for _, upper := range uppers {
		cum := float64(cumulativeByUpper[upper])
		if cum < target {
			prevUpper = upper
			prevCum = cum
			continue
		}

		// If we can't interpolate, return the bucket upper bound.
		bucketCount := cum - prevCum
		if bucketCount <= 0 || upper == prevUpper {
			return upper
		}
		if math.IsInf(upper, 1) {
			return prevUpper
		}

		fraction := (target - prevCum) / bucketCount
		if fraction < 0 {
			fraction = 0
		}
		if fraction > 1 {
			fraction = 1
		}

		lower := prevUpper
		return lower + fraction*(upper-lower)
	}

	return uppers[len(uppers)-1]
}

func formatSeconds(seconds float64) string {
	if seconds <= 0 {
		return "0s"
	}
	if seconds < 1 {
		return fmt.Sprintf("%.2fs", seconds)
	}
	if seconds < 10 {
		return fmt.Sprintf("%.1fs", seconds)
	}
	return fmt.Sprintf("%.0fs", seconds)
}
