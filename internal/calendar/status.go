package calendar

import (
	"strings"
	"time"

	"github.com/oakpark-dental/clinic-portal/internal/clinicapi"
)

// DisplayStatus is the label a calendar surface shows for one entry.
type DisplayStatus string

const (
	StatusPending   DisplayStatus = "Pending"
	StatusApproved  DisplayStatus = "Approved"
	StatusOverdue   DisplayStatus = "Overdue"
	StatusRejected  DisplayStatus = "Rejected"
	StatusVisited   DisplayStatus = "Visited"
	StatusUnvisited DisplayStatus = "Unvisited"
	StatusUnknown   DisplayStatus = "Unknown"
)

// Resolve maps an entry plus "now" to exactly one display status. It is a
// pure function; now is always injected so tests can pin the clock.
//
// Priority order, first match wins:
//  1. history entries with a visit field resolve on the visit axis alone
//  2. PENDING
//  3. APPROVED, split into Approved/Overdue at the scheduled instant
//  4. REJECTED
//  5. anything else is Unknown
func Resolve(a Appointment, now time.Time) DisplayStatus {
	if a.Source == SourceHistory && a.Visit != "" {
		if strings.EqualFold(a.Visit, clinicapi.VisitVisited) {
			return StatusVisited
		}
		return StatusUnvisited
	}

	switch strings.ToUpper(strings.TrimSpace(a.Status)) {
	case clinicapi.StatusPending:
		return StatusPending
	case clinicapi.StatusApproved:
		// No comparable scheduled instant means the entry can never be
		// Overdue; keep the raw label.
		if a.Start.IsZero() {
			return StatusApproved
		}
		if !now.Before(a.Start) {
			return StatusOverdue
		}
		return StatusApproved
	case clinicapi.StatusRejected:
		return StatusRejected
	default:
		return StatusUnknown
	}
}
