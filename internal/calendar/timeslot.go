package calendar

import (
	"sort"

	"github.com/oakpark-dental/clinic-portal/pkg/logging"
)

// SlotCapacity is the maximum number of appointments laid out side by side
// within one hourly slot. Entries beyond it stay counted but unpositioned.
const SlotCapacity = 3

// SlotKey identifies an hourly bucket.
type SlotKey struct {
	Date string `json:"date"` // "2006-01-02"
	Hour int    `json:"hour"` // local hour of day, 0-23
}

// Positioned wraps an appointment with its horizontal layout within a slot.
// Columns are equal width and never overlap: width 100/total, left index*width.
type Positioned struct {
	Appointment
	Index       int     `json:"index"`         // 0-based position within the slot
	TotalInSlot int     `json:"total_in_slot"` // laid-out entries in this slot (<= SlotCapacity)
	WidthPct    float64 `json:"width_pct"`
	LeftPct     float64 `json:"left_pct"`
}

// SlotGrid buckets appointments by (date, hour) and answers layout and
// capacity queries. It is rebuilt per render cycle and is read-only after
// BuildGrid returns.
type SlotGrid struct {
	buckets map[SlotKey][]Appointment
}

// BuildGrid buckets entries by the local hour of their start time, preserving
// input order within each bucket. Entries without a parseable start are
// skipped with a warning; they can never crash the pass.
func BuildGrid(appts []Appointment, logger *logging.Logger) *SlotGrid {
	if logger == nil {
		logger = logging.Default()
	}

	grid := &SlotGrid{buckets: make(map[SlotKey][]Appointment)}
	for _, appt := range appts {
		if appt.Start.IsZero() {
			logger.Warn("skipping appointment without a parseable start time",
				"source", appt.Source,
				"id", appt.ID,
			)
			continue
		}
		key := SlotKey{Date: appt.Start.Format("2006-01-02"), Hour: appt.Start.Hour()}
		grid.buckets[key] = append(grid.buckets[key], appt)
	}
	return grid
}

// Positioned returns the laid-out entries for a slot: the first SlotCapacity
// entries in arrival order, each with its column geometry.
func (g *SlotGrid) Positioned(key SlotKey) []Positioned {
	bucket := g.buckets[key]
	if len(bucket) == 0 {
		return nil
	}

	total := len(bucket)
	if total > SlotCapacity {
		total = SlotCapacity
	}

	width := 100.0 / float64(total)
	out := make([]Positioned, 0, total)
	for i := 0; i < total; i++ {
		out = append(out, Positioned{
			Appointment: bucket[i],
			Index:       i,
			TotalInSlot: total,
			WidthPct:    width,
			LeftPct:     float64(i) * width,
		})
	}
	return out
}

// Count returns the raw number of entries bucketed at (date, hour), including
// any beyond capacity.
func (g *SlotGrid) Count(date string, hour int) int {
	return len(g.buckets[SlotKey{Date: date, Hour: hour}])
}

// IsAtCapacity reports whether a slot already holds SlotCapacity or more
// entries; full slots refuse new selections.
func (g *SlotGrid) IsAtCapacity(date string, hour int) bool {
	return g.Count(date, hour) >= SlotCapacity
}

// Overflow returns how many entries in a slot exceed the layout capacity,
// for "+N more" affordances.
func (g *SlotGrid) Overflow(key SlotKey) int {
	if extra := len(g.buckets[key]) - SlotCapacity; extra > 0 {
		return extra
	}
	return 0
}

// Keys returns every occupied slot in chronological order.
func (g *SlotGrid) Keys() []SlotKey {
	keys := make([]SlotKey, 0, len(g.buckets))
	for key := range g.buckets {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Date != keys[j].Date {
			return keys[i].Date < keys[j].Date
		}
		return keys[i].Hour < keys[j].Hour
	})
	return keys
}
